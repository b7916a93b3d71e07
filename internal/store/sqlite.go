package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps the operational log of quote lookups. Chat sessions are never
// written here.
type Store struct {
	db *sql.DB
}

type LookupRecord struct {
	TS        int64   `json:"ts"`
	Symbol    string  `json:"symbol"`
	OK        bool    `json:"ok"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Source    string  `json:"source"`
	CreatedAt string  `json:"created_at"`
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quote_lookup (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			symbol TEXT,
			ok INTEGER,
			price REAL,
			change_pct REAL,
			volume INTEGER,
			source TEXT,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_lookup_ts ON quote_lookup(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_lookup_symbol ON quote_lookup(symbol);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) InsertLookup(rec LookupRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	if rec.TS == 0 {
		rec.TS = time.Now().Unix()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().Format(time.RFC3339)
	}
	ok := 0
	if rec.OK {
		ok = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO quote_lookup (ts, symbol, ok, price, change_pct, volume, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TS, rec.Symbol, ok, rec.Price, rec.ChangePct, rec.Volume, rec.Source, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

// QueryLookups returns the newest lookups first. An empty symbol matches all.
func (s *Store) QueryLookups(symbol string, limit int, offset int) ([]LookupRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ts, symbol, ok, price, change_pct, volume, source, created_at FROM quote_lookup`
	var args []any
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var out []LookupRecord
	for rows.Next() {
		var rec LookupRecord
		var ok int
		if err := rows.Scan(&rec.TS, &rec.Symbol, &ok, &rec.Price, &rec.ChangePct, &rec.Volume, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		rec.OK = ok == 1
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows lookup: %w", err)
	}
	return out, nil
}
