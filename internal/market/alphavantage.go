package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type AlphaVantageProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// avStatus holds the fields Alpha Vantage uses instead of HTTP status codes.
type avStatus struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

type avQuoteResp struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

type avSeriesResp struct {
	Series map[string]map[string]string `json:"Time Series (Daily)"`
}

type avSearchResp struct {
	BestMatches []map[string]string `json:"bestMatches"`
}

func NewAlphaVantageProvider(baseURL, apiKey string, timeout time.Duration) *AlphaVantageProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co/query"
	}
	return &AlphaVantageProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

func (p *AlphaVantageProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	var payload avQuoteResp
	if err := p.get(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}, &payload); err != nil {
		return Quote{}, err
	}
	fields := payload.GlobalQuote
	if len(fields) == 0 {
		return Quote{}, fmt.Errorf("alphavantage quote %s: %w", symbol, ErrNoData)
	}
	price, ok := parseNumber(fields["05. price"])
	if !ok || price <= 0 {
		return Quote{}, fmt.Errorf("alphavantage quote %s: invalid price %q", symbol, fields["05. price"])
	}
	changePct, ok := parseNumber(strings.TrimSuffix(fields["10. change percent"], "%"))
	if !ok {
		return Quote{}, fmt.Errorf("alphavantage quote %s: invalid change percent %q", symbol, fields["10. change percent"])
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(fields["06. volume"]), 10, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("alphavantage quote %s: invalid volume %q", symbol, fields["06. volume"])
	}
	sym := fields["01. symbol"]
	if sym == "" {
		sym = symbol
	}
	return Quote{
		Symbol:    strings.ToUpper(sym),
		Price:     price,
		ChangePct: changePct,
		Volume:    volume,
		Source:    p.Name(),
		TS:        time.Now().Unix(),
	}, nil
}

func (p *AlphaVantageProvider) GetDailySeries(ctx context.Context, symbol string, points int) ([]Point, error) {
	var payload avSeriesResp
	params := url.Values{"function": {"TIME_SERIES_DAILY"}, "symbol": {symbol}, "outputsize": {"compact"}}
	if err := p.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("alphavantage series %s: %w", symbol, ErrNoData)
	}

	dates := make([]string, 0, len(payload.Series))
	for d := range payload.Series {
		dates = append(dates, d)
	}
	// ISO dates sort chronologically as strings.
	sort.Strings(dates)

	out := make([]Point, 0, len(dates))
	for _, d := range dates {
		c, ok := parseNumber(payload.Series[d]["4. close"])
		if !ok {
			continue
		}
		out = append(out, Point{Date: d, Close: c})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("alphavantage series %s: %w", symbol, ErrNoData)
	}
	return lastPoints(out, points), nil
}

func (p *AlphaVantageProvider) Search(ctx context.Context, query string) ([]Candidate, error) {
	var payload avSearchResp
	if err := p.get(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}}, &payload); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(payload.BestMatches))
	for _, m := range payload.BestMatches {
		if !strings.EqualFold(m["3. type"], "Equity") || m["1. symbol"] == "" {
			continue
		}
		out = append(out, Candidate{
			Symbol:   m["1. symbol"],
			Name:     m["2. name"],
			Exchange: m["4. region"],
		})
	}
	return out, nil
}

func (p *AlphaVantageProvider) get(ctx context.Context, params url.Values, out any) error {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("apikey", p.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request alphavantage: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read alphavantage: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alphavantage: status %d", resp.StatusCode)
	}

	var status avStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("decode alphavantage: %w", err)
	}
	if status.ErrorMessage != "" {
		return fmt.Errorf("alphavantage: %w: %s", ErrProvider, status.ErrorMessage)
	}
	if status.Note != "" {
		return fmt.Errorf("alphavantage: %w: %s", ErrRateLimited, status.Note)
	}
	if status.Information != "" {
		return fmt.Errorf("alphavantage: %w: %s", ErrRateLimited, status.Information)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode alphavantage: %w", err)
	}
	return nil
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func lastPoints(points []Point, n int) []Point {
	if n > 0 && len(points) > n {
		return points[len(points)-n:]
	}
	return points
}
