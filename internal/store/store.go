// Package store persists client-local state in SQLite: the single
// credential slot and a best-effort cache of fetched expense lists.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

// slotName is the single named slot the credential lives under.
const slotName = "default"

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveCredential writes the bearer token into the slot, replacing any
// previous value. The slot has a single writer, the session manager.
func (s *Store) SaveCredential(ctx context.Context, tok string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credential (slot, token, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		slotName, tok, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Credential reads the persisted token. An empty slot returns ok=false
// and no error.
func (s *Store) Credential(ctx context.Context) (string, bool, error) {
	var tok string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM credential WHERE slot = ?`, slotName).Scan(&tok)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read credential: %w", err)
	}
	return tok, tok != "", nil
}

// ClearCredential erases the slot. Clearing an empty slot is a no-op.
func (s *Store) ClearCredential(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM credential WHERE slot = ?`, slotName); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// PutResult caches the expenses fetched for a resolved query, keyed by
// its fingerprint. Only the latest result per fingerprint is kept.
func (s *Store) PutResult(ctx context.Context, fingerprint string, expenses []core.Expense) error {
	payload, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_cache (fingerprint, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		fingerprint, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache result: %w", err)
	}
	return nil
}

// Result returns the cached expenses for a query fingerprint, with the
// time they were fetched. A miss returns ok=false and no error.
func (s *Store) Result(ctx context.Context, fingerprint string) ([]core.Expense, time.Time, bool, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM query_cache WHERE fingerprint = ?`,
		fingerprint).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read cached result: %w", err)
	}

	var expenses []core.Expense
	if err := json.Unmarshal([]byte(payload), &expenses); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return expenses, fetchedAt, true, nil
}

// ClearResults drops every cached query result. Called on session
// teardown so a different account never sees a previous user's lists.
func (s *Store) ClearResults(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM query_cache`); err != nil {
		return fmt.Errorf("clear cached results: %w", err)
	}
	return nil
}
