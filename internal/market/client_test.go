package market

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"investor-assist/internal/store"
)

type stubProvider struct {
	name       string
	quote      Quote
	quoteErr   error
	series     []Point
	seriesErr  error
	matches    []Candidate
	searchErr  error
	quoteCalls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) GetQuote(_ context.Context, symbol string) (Quote, error) {
	s.quoteCalls++
	if s.quoteErr != nil {
		return Quote{}, s.quoteErr
	}
	q := s.quote
	q.Symbol = symbol
	q.Source = s.name
	return q, nil
}

func (s *stubProvider) GetDailySeries(_ context.Context, _ string, _ int) ([]Point, error) {
	return s.series, s.seriesErr
}

func (s *stubProvider) Search(_ context.Context, _ string) ([]Candidate, error) {
	return s.matches, s.searchErr
}

func TestClientFetchQuoteSwallowsErrors(t *testing.T) {
	p := &stubProvider{name: "stub", quoteErr: errors.New("alphavantage: provider rate limited")}
	c := NewClient(p, nil, 30)

	if q := c.FetchQuote(context.Background(), "AAPL"); q != nil {
		t.Errorf("FetchQuote() = %+v, want nil", q)
	}
	if p.quoteCalls != 1 {
		t.Errorf("quoteCalls = %d, want 1", p.quoteCalls)
	}
}

func TestClientFetchQuoteNormalizesSymbol(t *testing.T) {
	p := &stubProvider{name: "stub", quote: Quote{Price: 10}}
	c := NewClient(p, nil, 30)

	q := c.FetchQuote(context.Background(), "  aapl ")
	if q == nil || q.Symbol != "AAPL" {
		t.Fatalf("FetchQuote() = %+v", q)
	}
	if c.FetchQuote(context.Background(), "   ") != nil {
		t.Error("blank symbol should yield nil")
	}
	if p.quoteCalls != 1 {
		t.Errorf("quoteCalls = %d, want 1", p.quoteCalls)
	}
}

func TestClientFetchTimeSeries(t *testing.T) {
	points := make([]Point, 40)
	for i := range points {
		points[i] = Point{Date: "d", Close: float64(i)}
	}
	c := NewClient(&stubProvider{name: "stub", series: points}, nil, 30)
	got := c.FetchTimeSeries(context.Background(), "AAPL")
	if len(got) != 30 || got[0].Close != 10 {
		t.Errorf("len = %d first = %+v", len(got), got)
	}

	failing := NewClient(&stubProvider{name: "stub", seriesErr: ErrNoData}, nil, 30)
	if got := failing.FetchTimeSeries(context.Background(), "AAPL"); len(got) != 0 {
		t.Errorf("failing series = %+v, want empty", got)
	}
}

func TestClientSearchSymbol(t *testing.T) {
	c := NewClient(&stubProvider{name: "stub", searchErr: ErrProvider}, nil, 30)
	if got := c.SearchSymbol(context.Background(), "apple"); got != nil {
		t.Errorf("SearchSymbol() = %+v, want nil", got)
	}
}

func TestClientRecordsLookups(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "assist.db"))
	if err != nil {
		t.Fatalf("store.Open() returned error: %v", err)
	}
	defer st.Close()

	ok := NewClient(&stubProvider{name: "stub", quote: Quote{Price: 150, ChangePct: 1.2, Volume: 7}}, st, 30)
	bad := NewClient(&stubProvider{name: "stub", quoteErr: ErrNoData}, st, 30)
	ok.FetchQuote(context.Background(), "AAPL")
	bad.FetchQuote(context.Background(), "MSFT")

	recs, err := st.QueryLookups("", 10, 0)
	if err != nil {
		t.Fatalf("QueryLookups() returned error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	bySymbol := map[string]store.LookupRecord{}
	for _, r := range recs {
		bySymbol[r.Symbol] = r
	}
	if r := bySymbol["AAPL"]; !r.OK || r.Price != 150 {
		t.Errorf("AAPL record = %+v", r)
	}
	if r := bySymbol["MSFT"]; r.OK {
		t.Errorf("MSFT record = %+v, want failed lookup", r)
	}
}

func TestMultiProviderFailover(t *testing.T) {
	primary := &stubProvider{name: "a", quoteErr: ErrRateLimited, seriesErr: ErrRateLimited}
	secondary := &stubProvider{name: "b", quote: Quote{Price: 5}, series: []Point{{Date: "2024-01-02", Close: 5}}}
	m := NewMultiProvider(primary, secondary)

	q, err := m.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote() returned error: %v", err)
	}
	if q.Source != "b" {
		t.Errorf("Source = %q, want b", q.Source)
	}
	series, err := m.GetDailySeries(context.Background(), "AAPL", 30)
	if err != nil || len(series) != 1 {
		t.Errorf("series = %+v, err = %v", series, err)
	}
	if m.Name() != "a+b" {
		t.Errorf("Name() = %q", m.Name())
	}

	allBad := NewMultiProvider(primary)
	if _, err := allBad.GetQuote(context.Background(), "AAPL"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
	if _, err := NewMultiProvider().GetQuote(context.Background(), "AAPL"); err == nil {
		t.Error("empty MultiProvider should fail")
	}
}
