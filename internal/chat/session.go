package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"investor-assist/internal/advisor"
	"investor-assist/internal/market"
)

type Stage string

const (
	StageGreeting      Stage = "greeting"
	StageWelcome       Stage = "welcome"
	StageCheckingStock Stage = "checking_stock"
	StageInSurvey      Stage = "in_survey"
	StageDone          Stage = "done"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrBusy             = errors.New("session is busy")
	ErrActionNotAllowed = errors.New("action not allowed in current stage")
)

// MarketData is the subset of market.Client a session needs. All methods
// return nil on failure.
type MarketData interface {
	QuoteFetcher
	FetchTimeSeries(ctx context.Context, symbol string) []market.Point
	SearchSymbol(ctx context.Context, query string) []market.Candidate
}

type Summarizer interface {
	Summarize(ctx context.Context, in advisor.Input) (string, error)
}

type Deps struct {
	Market  MarketData
	Advisor Summarizer
}

// Session runs one conversation. Steps on a session are serialized: a step
// that arrives while another is running fails with ErrBusy. The mutex is
// never held across a market or advisor call.
type Session struct {
	id   string
	deps Deps

	mu         sync.Mutex
	stage      Stage
	name       string
	current    string
	responses  map[string]string
	summarized bool
	messages   []Message
	typing     bool
	inflight   bool
	lastActive time.Time
}

type Snapshot struct {
	ID       string    `json:"id"`
	Stage    Stage     `json:"stage"`
	Typing   bool      `json:"typing"`
	Messages []Message `json:"messages"`
}

func NewSession(id string, deps Deps) *Session {
	return &Session{
		id:         id,
		deps:       deps,
		stage:      StageGreeting,
		responses:  map[string]string{},
		messages:   []Message{botMessage(greetingText)},
		lastActive: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Responses returns the survey answers keyed by question id.
func (s *Session) Responses() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{ID: s.id, Stage: s.stage, Typing: s.typing, Messages: msgs}
}

// Send handles one user text message and returns the bot replies it produced.
func (s *Session) Send(ctx context.Context, text string) ([]Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	stage, err := s.begin(Message{Text: text}, nil)
	if err != nil {
		return nil, err
	}
	defer s.finish()

	var replies []Message
	switch stage {
	case StageGreeting:
		replies = s.greet(text)
	case StageWelcome, StageDone:
		replies = s.dispatch(ctx, text)
	case StageCheckingStock:
		replies = s.stockQuery(ctx, text)
	case StageInSurvey:
		replies = s.answer(ctx, text)
	}
	return replies, nil
}

// HandleAction handles a button press. Buttons are only offered in welcome,
// so any other stage rejects the action.
func (s *Session) HandleAction(ctx context.Context, token string) ([]Message, error) {
	action, err := ParseAction(token)
	if err != nil {
		return nil, err
	}
	handler, ok := s.actionHandlers()[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, token)
	}
	_, err = s.begin(Message{Text: action.Label()}, func(st Stage) error {
		if st != StageWelcome {
			return fmt.Errorf("%w: %s in %s", ErrActionNotAllowed, action.Token(), st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer s.finish()
	return handler(ctx), nil
}

func (s *Session) actionHandlers() map[Action]func(context.Context) []Message {
	return map[Action]func(context.Context) []Message{
		ActionStartSurvey: s.startSurvey,
		ActionCheckStocks: s.checkStocks,
	}
}

// begin claims the session for one step and records the user message.
func (s *Session) begin(user Message, guard func(Stage) error) (Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight {
		return s.stage, ErrBusy
	}
	if guard != nil {
		if err := guard(s.stage); err != nil {
			return s.stage, err
		}
	}
	s.inflight = true
	s.lastActive = time.Now()
	s.messages = append(s.messages, user)
	return s.stage, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight = false
	s.typing = false
	s.lastActive = time.Now()
}

func (s *Session) reply(msgs ...Message) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
	return msgs
}

func (s *Session) setTyping(v bool) {
	s.mu.Lock()
	s.typing = v
	s.mu.Unlock()
}

func (s *Session) setStage(st Stage) {
	s.mu.Lock()
	s.stage = st
	s.mu.Unlock()
}

func (s *Session) greet(name string) []Message {
	s.mu.Lock()
	s.name = name
	s.stage = StageWelcome
	s.mu.Unlock()
	return s.reply(welcomeMessage(name))
}

func (s *Session) startSurvey(context.Context) []Message {
	s.mu.Lock()
	first, _ := questionByID(firstQuestion)
	s.stage = StageInSurvey
	s.current = first.ID
	s.responses = map[string]string{}
	s.summarized = false
	s.mu.Unlock()
	return s.reply(questionMessage(first))
}

func (s *Session) checkStocks(context.Context) []Message {
	s.setStage(StageCheckingStock)
	return s.reply(botMessage(askSymbolText))
}

func (s *Session) dispatch(ctx context.Context, text string) []Message {
	q := Classify(text)
	if q.Intent == IntentStock && q.Symbol != "" {
		return s.reply(s.lookup(ctx, q.Symbol))
	}
	return s.reply(intentMessage(q.Intent))
}

func (s *Session) stockQuery(ctx context.Context, text string) []Message {
	symbol := ExtractSymbol(text)
	if symbol == "" && len(strings.Fields(text)) == 1 {
		symbol = s.searchTop(ctx, text)
	}
	if symbol == "" {
		return s.reply(botMessage(clarifySymbolText))
	}
	return s.reply(s.lookup(ctx, symbol))
}

func (s *Session) searchTop(ctx context.Context, query string) string {
	if s.deps.Market == nil {
		return ""
	}
	s.setTyping(true)
	defer s.setTyping(false)
	matches := s.deps.Market.SearchSymbol(ctx, query)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Symbol
}

func (s *Session) lookup(ctx context.Context, symbol string) Message {
	if s.deps.Market == nil {
		return botMessage(fmt.Sprintf(quoteFailedFormat, symbol))
	}
	s.setTyping(true)
	defer s.setTyping(false)

	quote := s.deps.Market.FetchQuote(ctx, symbol)
	if quote == nil {
		return botMessage(fmt.Sprintf(quoteFailedFormat, symbol))
	}
	series := s.deps.Market.FetchTimeSeries(ctx, quote.Symbol)
	return quoteMessage(*quote, series)
}

func (s *Session) answer(ctx context.Context, text string) []Message {
	s.mu.Lock()
	cur, ok := questionByID(s.current)
	if !ok || s.summarized {
		s.mu.Unlock()
		return s.reply(intentMessage(IntentGeneral))
	}
	s.responses[cur.ID] = text
	if cur.Next != "" {
		next, ok := questionByID(cur.Next)
		if ok {
			s.current = next.ID
			s.mu.Unlock()
			return s.reply(questionMessage(next))
		}
	}
	s.current = ""
	s.summarized = true
	in := advisor.Input{Name: s.name}
	for _, q := range Questions() {
		if ans, ok := s.responses[q.ID]; ok {
			in.Answers = append(in.Answers, advisor.Answer{Label: q.Label, Text: ans})
		}
	}
	risk := s.responses["risk"]
	s.mu.Unlock()

	in.Profile = string(ProfileFor(risk))
	s.setTyping(true)
	summary := s.summarize(ctx, in)
	out := s.reply(botMessage(summary))

	var rec Recommendation
	if s.deps.Market != nil {
		rec = Recommend(ctx, s.deps.Market, risk)
	} else {
		rec = Recommendation{Profile: ProfileFor(risk)}
	}
	out = append(out, s.reply(recommendationMessage(rec))...)
	s.setStage(StageDone)
	return out
}

func (s *Session) summarize(ctx context.Context, in advisor.Input) string {
	if s.deps.Advisor == nil {
		return advisor.FallbackSummary(in)
	}
	text, err := s.deps.Advisor.Summarize(ctx, in)
	if err != nil {
		hlog.CtxWarnf(ctx, "session %s: advisor summary failed: %v", s.id, err)
	}
	if text == "" {
		return advisor.FallbackSummary(in)
	}
	return text
}

func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.inflight && now.Sub(s.lastActive) > ttl
}
