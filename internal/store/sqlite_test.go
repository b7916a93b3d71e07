package store

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "assist.db"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestInsertAndQueryLookups(t *testing.T) {
	st := openTemp(t)

	recs := []LookupRecord{
		{TS: 100, Symbol: "AAPL", OK: true, Price: 150, ChangePct: 1.2, Volume: 1000000, Source: "alphavantage"},
		{TS: 200, Symbol: "MSFT", OK: false, Source: "alphavantage"},
		{TS: 300, Symbol: "AAPL", OK: false, Source: "alphavantage"},
	}
	for _, r := range recs {
		if err := st.InsertLookup(r); err != nil {
			t.Fatalf("InsertLookup(%s) returned error: %v", r.Symbol, err)
		}
	}

	all, err := st.QueryLookups("", 10, 0)
	if err != nil {
		t.Fatalf("QueryLookups() returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].TS != 300 || all[2].TS != 100 {
		t.Errorf("order = %d,%d,%d, want newest first", all[0].TS, all[1].TS, all[2].TS)
	}

	aapl, err := st.QueryLookups("AAPL", 10, 0)
	if err != nil {
		t.Fatalf("QueryLookups(AAPL) returned error: %v", err)
	}
	if len(aapl) != 2 {
		t.Fatalf("len(aapl) = %d, want 2", len(aapl))
	}
	got := aapl[1]
	if !got.OK || got.Price != 150 || got.ChangePct != 1.2 || got.Volume != 1000000 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.CreatedAt == "" {
		t.Error("CreatedAt should be filled in")
	}

	page, err := st.QueryLookups("", 1, 1)
	if err != nil {
		t.Fatalf("QueryLookups(page) returned error: %v", err)
	}
	if len(page) != 1 || page[0].Symbol != "MSFT" {
		t.Errorf("page = %+v, want the MSFT record", page)
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var st *Store
	if err := st.InsertLookup(LookupRecord{Symbol: "AAPL"}); err != nil {
		t.Errorf("InsertLookup on nil store returned %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close on nil store returned %v", err)
	}
	if _, err := st.QueryLookups("", 10, 0); err == nil {
		t.Error("QueryLookups on nil store should fail")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
