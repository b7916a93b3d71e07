package chat

import (
	"context"
	"sync"

	"investor-assist/internal/market"
)

type fakeMarket struct {
	mu         sync.Mutex
	quotes     map[string]market.Quote
	series     []market.Point
	matches    []market.Candidate
	quoteCalls map[string]int

	// entered is signalled and gate awaited inside FetchQuote when set.
	entered chan struct{}
	gate    chan struct{}
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{quotes: map[string]market.Quote{}, quoteCalls: map[string]int{}}
}

func (f *fakeMarket) FetchQuote(_ context.Context, symbol string) *market.Quote {
	f.mu.Lock()
	f.quoteCalls[symbol]++
	q, ok := f.quotes[symbol]
	entered, gate := f.entered, f.gate
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if !ok {
		return nil
	}
	return &q
}

func (f *fakeMarket) FetchTimeSeries(_ context.Context, _ string) []market.Point {
	return f.series
}

func (f *fakeMarket) SearchSymbol(_ context.Context, _ string) []market.Candidate {
	return f.matches
}

func (f *fakeMarket) calls(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quoteCalls[symbol]
}

func (f *fakeMarket) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.quoteCalls {
		n += c
	}
	return n
}
