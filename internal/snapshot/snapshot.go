// Package snapshot persists the last-known item collection between runs.
// It is the fallback data source when the remote API is unreachable and
// the staging area for optimistic local writes.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/erazemk/najdeno/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
    key      TEXT PRIMARY KEY,
    value    TEXT NOT NULL,
    saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const itemsKey = "items"

// Store is a durable whole-collection cache. Persistence is always the
// full collection; concurrent writers are resolved by last save wins.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the cached item collection. A missing snapshot loads as an
// empty collection, not an error.
func (s *Store) Load() ([]model.Item, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM snapshot WHERE key = ?`, itemsKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var items []model.Item
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return items, nil
}

// Save replaces the cached collection wholesale.
func (s *Store) Save(items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshot (key, value, saved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`,
		itemsKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// SavedAt returns when the snapshot was last written, if ever.
func (s *Store) SavedAt() (time.Time, bool, error) {
	var saved time.Time
	err := s.db.QueryRow(
		`SELECT saved_at FROM snapshot WHERE key = ?`, itemsKey,
	).Scan(&saved)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading snapshot time: %w", err)
	}
	return saved, true, nil
}
