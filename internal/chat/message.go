package chat

import (
	"errors"
	"fmt"
	"strings"
)

type ChartType string

const (
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

type ChartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type Chart struct {
	Type ChartType    `json:"type"`
	Data []ChartPoint `json:"data"`
}

// ActionButton is rendered by the widget; Value is posted back verbatim.
type ActionButton struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Message struct {
	Text    string         `json:"text"`
	IsBot   bool           `json:"isBot"`
	Actions []ActionButton `json:"actions,omitempty"`
	Chart   *Chart         `json:"chart,omitempty"`
}

func botMessage(text string) Message {
	return Message{Text: text, IsBot: true}
}

type Action int

const (
	ActionStartSurvey Action = iota + 1
	ActionCheckStocks
)

var ErrUnknownAction = errors.New("unknown action")

var actionTokens = map[string]Action{
	"start":  ActionStartSurvey,
	"stocks": ActionCheckStocks,
}

// ParseAction maps a button token to its Action.
func ParseAction(token string) (Action, error) {
	a, ok := actionTokens[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, token)
	}
	return a, nil
}

func (a Action) Token() string {
	switch a {
	case ActionStartSurvey:
		return "start"
	case ActionCheckStocks:
		return "stocks"
	}
	return ""
}

func (a Action) Label() string {
	switch a {
	case ActionStartSurvey:
		return "Start survey"
	case ActionCheckStocks:
		return "Check investments"
	}
	return ""
}

func (a Action) Button() ActionButton {
	return ActionButton{Label: a.Label(), Value: a.Token()}
}
