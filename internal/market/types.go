package market

import (
	"context"
	"errors"
)

var (
	// ErrProvider is returned when the provider reports an error for the request.
	ErrProvider = errors.New("provider error")
	// ErrRateLimited is returned when the provider throttles the API key.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrNoData is returned when the response is well formed but carries nothing usable.
	ErrNoData = errors.New("no data")
)

type Quote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Source    string  `json:"source,omitempty"`
	TS        int64   `json:"ts"`
}

// Point is one daily close.
type Point struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type Candidate struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

type MarketProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (Quote, error)
	// GetDailySeries returns at most points closes, oldest first.
	GetDailySeries(ctx context.Context, symbol string, points int) ([]Point, error)
	// Search returns equity instruments only.
	Search(ctx context.Context, query string) ([]Candidate, error)
}
