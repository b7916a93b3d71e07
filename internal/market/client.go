package market

import (
	"context"
	"strings"

	"investor-assist/internal/store"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Client applies the chat's failure policy on top of a provider: every
// failure is logged once and turned into an empty result.
type Client struct {
	provider     MarketProvider
	store        *store.Store
	seriesPoints int
}

func NewClient(provider MarketProvider, st *store.Store, seriesPoints int) *Client {
	if seriesPoints <= 0 {
		seriesPoints = 30
	}
	return &Client{provider: provider, store: st, seriesPoints: seriesPoints}
}

// FetchQuote returns nil when the quote cannot be fetched.
func (c *Client) FetchQuote(ctx context.Context, symbol string) *Quote {
	symbol = normalizeSymbol(symbol)
	if symbol == "" || c.provider == nil {
		return nil
	}
	q, err := c.provider.GetQuote(ctx, symbol)
	if err != nil {
		hlog.CtxWarnf(ctx, "market quote %s failed: %v", symbol, err)
		c.record(store.LookupRecord{Symbol: symbol, Source: c.provider.Name()})
		return nil
	}
	c.record(store.LookupRecord{
		TS:        q.TS,
		Symbol:    symbol,
		OK:        true,
		Price:     q.Price,
		ChangePct: q.ChangePct,
		Volume:    q.Volume,
		Source:    q.Source,
	})
	return &q
}

// FetchTimeSeries returns up to the configured number of daily closes,
// oldest first, or nil.
func (c *Client) FetchTimeSeries(ctx context.Context, symbol string) []Point {
	symbol = normalizeSymbol(symbol)
	if symbol == "" || c.provider == nil {
		return nil
	}
	series, err := c.provider.GetDailySeries(ctx, symbol, c.seriesPoints)
	if err != nil {
		hlog.CtxWarnf(ctx, "market series %s failed: %v", symbol, err)
		return nil
	}
	return lastPoints(series, c.seriesPoints)
}

func (c *Client) SearchSymbol(ctx context.Context, query string) []Candidate {
	query = strings.TrimSpace(query)
	if query == "" || c.provider == nil {
		return nil
	}
	out, err := c.provider.Search(ctx, query)
	if err != nil {
		hlog.CtxWarnf(ctx, "market search %q failed: %v", query, err)
		return nil
	}
	return out
}

func (c *Client) record(rec store.LookupRecord) {
	if c.store == nil {
		return
	}
	if err := c.store.InsertLookup(rec); err != nil {
		hlog.Errorf("insert lookup error: %v", err)
	}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
