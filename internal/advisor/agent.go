package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"investor-assist/internal/config"
)

// Answer is one survey answer, labelled the way it should read in a summary.
type Answer struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Input struct {
	Name    string   `json:"name"`
	Profile string   `json:"profile"`
	Answers []Answer `json:"answers"`
}

type Agent struct {
	enabled        bool
	model          *openai.ChatModel
	modelName      string
	disabledReason string
}

func New(cfg config.AdvisorConfig) *Agent {
	if !cfg.Enabled {
		return &Agent{disabledReason: "disabled by config"}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.APIKey == "" || cfg.Model == "" {
		hlog.Warnf("advisor disabled: missing api key or model")
		return &Agent{disabledReason: "api_key or model missing"}
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	model, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		ByAzure:    cfg.ByAzure,
		APIVersion: cfg.APIVersion,
		Timeout:    timeout,
	})
	if err != nil {
		hlog.Errorf("advisor init error: %v", err)
		return &Agent{disabledReason: "init failed"}
	}
	return &Agent{enabled: true, model: model, modelName: cfg.Model}
}

func (a *Agent) Enabled() bool {
	return a != nil && a.enabled && a.model != nil
}

// Mode reports "llm" or "fallback" along with the reason for the latter.
func (a *Agent) Mode() (string, string) {
	if a.Enabled() {
		return "llm", a.modelName
	}
	if a == nil || a.disabledReason == "" {
		return "fallback", "not configured"
	}
	return "fallback", a.disabledReason
}

// Summarize always returns a usable summary. The error is non-nil only when
// the model was asked and failed, in which case the fallback text is returned.
func (a *Agent) Summarize(ctx context.Context, in Input) (string, error) {
	if !a.Enabled() {
		return FallbackSummary(in), nil
	}

	payload, _ := json.Marshal(in)
	system := `You are an investment assistant on a retail brokerage site.
Write a short, friendly summary (at most 120 words) of the user's survey answers and their risk profile.
Address the user by name. Do not recommend specific securities and do not promise returns. Plain text only.`

	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(fmt.Sprintf("Survey: %s", string(payload))),
	}
	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		logLLMError(err)
		return FallbackSummary(in), err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return FallbackSummary(in), errors.New("advisor: empty completion")
	}
	return text, nil
}

func FallbackSummary(in Input) string {
	var b strings.Builder
	if in.Name != "" {
		fmt.Fprintf(&b, "Thanks, %s! Here's a summary of your profile:\n", in.Name)
	} else {
		b.WriteString("Thanks! Here's a summary of your profile:\n")
	}
	for _, ans := range in.Answers {
		fmt.Fprintf(&b, "- %s: %s\n", ans.Label, ans.Text)
	}
	fmt.Fprintf(&b, "Based on your answers, your risk profile is %s.", in.Profile)
	return b.String()
}

func logLLMError(err error) {
	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		hlog.Errorf("advisor api error: status=%d message=%s", apiErr.HTTPStatusCode, msg)
		return
	}
	hlog.Errorf("advisor error: %v", err)
}
