package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// YahooProvider reads the public Yahoo Finance chart and search endpoints.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
				RegularMarketVol   float64 `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		ExchDisp  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
	Finance *struct {
		Error *yahooError `json:"error"`
	} `json:"finance"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	chart, err := p.fetchChart(ctx, symbol, "5d")
	if err != nil {
		return Quote{}, err
	}
	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return Quote{}, fmt.Errorf("yahoo quote %s: invalid price", symbol)
	}
	prev := meta.ChartPreviousClose
	if meta.PreviousClose > 0 {
		prev = meta.PreviousClose
	}
	changePct := 0.0
	if prev > 0 {
		changePct = (meta.RegularMarketPrice - prev) / prev * 100
	}
	sym := meta.Symbol
	if sym == "" {
		sym = symbol
	}
	return Quote{
		Symbol:    strings.ToUpper(sym),
		Name:      meta.LongName,
		Price:     meta.RegularMarketPrice,
		ChangePct: changePct,
		Volume:    int64(meta.RegularMarketVol),
		Source:    p.Name(),
		TS:        time.Now().Unix(),
	}, nil
}

func (p *YahooProvider) GetDailySeries(ctx context.Context, symbol string, points int) ([]Point, error) {
	rng := "1y"
	switch {
	case points <= 20:
		rng = "1mo"
	case points <= 60:
		rng = "3mo"
	case points <= 120:
		rng = "6mo"
	}
	chart, err := p.fetchChart(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo series %s: %w", symbol, ErrNoData)
	}
	closes := result.Indicators.Quote[0].Close
	out := make([]Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue // null bars on holidays
		}
		out = append(out, Point{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *closes[i],
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("yahoo series %s: %w", symbol, ErrNoData)
	}
	return lastPoints(out, points), nil
}

func (p *YahooProvider) Search(ctx context.Context, query string) ([]Candidate, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", "10")
	q.Set("newsCount", "0")
	var payload yahooSearch
	if err := p.getJSON(ctx, p.baseURL+"/v1/finance/search?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	if payload.Finance != nil && payload.Finance.Error != nil {
		return nil, fmt.Errorf("yahoo: %w: %s", ErrProvider, payload.Finance.Error.Description)
	}
	out := make([]Candidate, 0, len(payload.Quotes))
	for _, item := range payload.Quotes {
		if !strings.EqualFold(item.QuoteType, "EQUITY") || item.Symbol == "" {
			continue
		}
		name := item.LongName
		if name == "" {
			name = item.ShortName
		}
		exchange := item.ExchDisp
		if exchange == "" {
			exchange = item.Exchange
		}
		out = append(out, Candidate{Symbol: item.Symbol, Name: name, Exchange: exchange})
	}
	return out, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", p.baseURL, url.PathEscape(symbol), rng)
	var chart yahooChart
	if err := p.getJSON(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %w: %s", ErrProvider, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	return &chart, nil
}

func (p *YahooProvider) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request yahoo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read yahoo: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("yahoo: %w", ErrRateLimited)
	}
	// Yahoo reports unknown symbols as 404 with a chart.error body.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if desc := errorDescription(body); desc != "" {
			return fmt.Errorf("yahoo: %w: status %d: %s", ErrProvider, resp.StatusCode, desc)
		}
		return fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode yahoo: %w", err)
	}
	return nil
}

func errorDescription(body []byte) string {
	var payload struct {
		Chart *struct {
			Error *yahooError `json:"error"`
		} `json:"chart"`
		Finance *struct {
			Error *yahooError `json:"error"`
		} `json:"finance"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Chart != nil && payload.Chart.Error != nil {
		return payload.Chart.Error.Description
	}
	if payload.Finance != nil && payload.Finance.Error != nil {
		return payload.Finance.Error.Description
	}
	return ""
}
