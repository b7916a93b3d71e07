package chat

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"investor-assist/internal/market"
)

type Profile string

const (
	ProfileConservative Profile = "conservative"
	ProfileBalanced     Profile = "balanced"
	ProfileAggressive   Profile = "aggressive"
)

var profileKeywords = map[string]Profile{
	"conservative": ProfileConservative,
	"low":          ProfileConservative,
	"safe":         ProfileConservative,
	"cautious":     ProfileConservative,
	"aggressive":   ProfileAggressive,
	"high":         ProfileAggressive,
	"growth":       ProfileAggressive,
	"balanced":     ProfileBalanced,
	"moderate":     ProfileBalanced,
	"medium":       ProfileBalanced,
}

var profileCandidates = map[Profile][]string{
	ProfileConservative: {"BND", "VYM", "JNJ", "PG", "KO"},
	ProfileBalanced:     {"SPY", "VTI", "AAPL", "MSFT", "JNJ"},
	ProfileAggressive:   {"QQQ", "NVDA", "TSLA", "AMZN", "META"},
}

// ProfileFor uses the first keyword found in the answer; anything else is
// balanced.
func ProfileFor(risk string) Profile {
	words := strings.FieldsFunc(risk, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, tok := range words {
		if p, ok := profileKeywords[strings.ToLower(tok)]; ok {
			return p
		}
	}
	return ProfileBalanced
}

func Candidates(p Profile) []string {
	syms, ok := profileCandidates[p]
	if !ok {
		syms = profileCandidates[ProfileBalanced]
	}
	out := make([]string, len(syms))
	copy(out, syms)
	return out
}

type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) *market.Quote
}

type Recommendation struct {
	Profile Profile        `json:"profile"`
	Picks   []market.Quote `json:"picks"`
}

// Recommend quotes every candidate for the risk answer concurrently. Picks
// keep the candidate order; symbols without a quote are left out.
func Recommend(ctx context.Context, fetcher QuoteFetcher, risk string) Recommendation {
	profile := ProfileFor(risk)
	symbols := Candidates(profile)
	slots := make([]*market.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		g.Go(func() error {
			slots[i] = fetcher.FetchQuote(gctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	rec := Recommendation{Profile: profile, Picks: []market.Quote{}}
	for _, q := range slots {
		if q != nil {
			rec.Picks = append(rec.Picks, *q)
		}
	}
	return rec
}
