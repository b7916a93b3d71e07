package advisor

import (
	"context"
	"strings"
	"testing"

	"investor-assist/internal/config"
)

func sampleInput() Input {
	return Input{
		Name:    "Ada",
		Profile: "aggressive",
		Answers: []Answer{
			{Label: "Goal", Text: "retirement"},
			{Label: "Risk tolerance", Text: "high"},
		},
	}
}

func TestDisabledAgentUsesFallback(t *testing.T) {
	a := New(config.AdvisorConfig{Enabled: false})
	if a.Enabled() {
		t.Fatal("agent should be disabled")
	}
	got, err := a.Summarize(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Summarize() returned error: %v", err)
	}
	if got != FallbackSummary(sampleInput()) {
		t.Errorf("Summarize() = %q, want fallback", got)
	}
	if mode, reason := a.Mode(); mode != "fallback" || reason != "disabled by config" {
		t.Errorf("Mode() = %q, %q", mode, reason)
	}
}

func TestMissingKeyDisables(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	a := New(config.AdvisorConfig{Enabled: true, Model: "gpt-4.1-mini"})
	if a.Enabled() {
		t.Fatal("agent without key should be disabled")
	}
	if _, reason := a.Mode(); reason != "api_key or model missing" {
		t.Errorf("reason = %q", reason)
	}
}

func TestNilAgentFallsBack(t *testing.T) {
	var a *Agent
	got, err := a.Summarize(context.Background(), sampleInput())
	if err != nil || got == "" {
		t.Fatalf("Summarize() = %q, %v", got, err)
	}
}

func TestFallbackSummary(t *testing.T) {
	got := FallbackSummary(sampleInput())
	for _, want := range []string{"Thanks, Ada!", "- Goal: retirement", "- Risk tolerance: high", "risk profile is aggressive."} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if anon := FallbackSummary(Input{Profile: "balanced"}); !strings.HasPrefix(anon, "Thanks! ") {
		t.Errorf("anonymous summary = %q", anon)
	}
}
