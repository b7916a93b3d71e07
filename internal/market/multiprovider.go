package market

import (
	"context"
	"fmt"
	"strings"
)

// MultiProvider tries each provider in order; the first non-empty result wins.
type MultiProvider struct {
	providers []MarketProvider
}

func NewMultiProvider(providers ...MarketProvider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

func (m *MultiProvider) Name() string {
	names := make([]string, 0, len(m.providers))
	for _, p := range m.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (m *MultiProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	if len(m.providers) == 0 {
		return Quote{}, fmt.Errorf("no market providers configured")
	}
	var lastErr error
	for _, p := range m.providers {
		q, err := p.GetQuote(ctx, symbol)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	return Quote{}, lastErr
}

func (m *MultiProvider) GetDailySeries(ctx context.Context, symbol string, points int) ([]Point, error) {
	if len(m.providers) == 0 {
		return nil, fmt.Errorf("no market providers configured")
	}
	var lastErr error
	for _, p := range m.providers {
		series, err := p.GetDailySeries(ctx, symbol, points)
		if err == nil && len(series) > 0 {
			return series, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all providers failed")
	}
	return nil, lastErr
}

func (m *MultiProvider) Search(ctx context.Context, query string) ([]Candidate, error) {
	if len(m.providers) == 0 {
		return nil, fmt.Errorf("no market providers configured")
	}
	var lastErr error
	for _, p := range m.providers {
		out, err := p.Search(ctx, query)
		if err == nil && len(out) > 0 {
			return out, nil
		}
		lastErr = err
	}
	// An empty match list from every provider is not an error.
	return nil, lastErr
}
