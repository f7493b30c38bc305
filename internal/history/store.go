// Package history keeps a ledger of every request issued to the puzzle
// service, so the rate policy can be audited after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aoc/internal/puzzle"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one issued request.
type Entry struct {
	ID       string
	Key      puzzle.Key
	IssuedAt time.Time
	Status   int    // HTTP status, 0 if no response arrived
	Bytes    int    // body length on success
	Error    string // failure summary, empty on success
}

// Store is the sqlite-backed ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Several aoc processes may write at once.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		day INTEGER NOT NULL,
		issued_at INTEGER NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_requests_issued_at ON requests(issued_at);
	CREATE INDEX IF NOT EXISTS idx_requests_key ON requests(year, day);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create requests table: %w", err)
	}
	return nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Record appends e to the ledger, assigning an ID if it has none.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, year, day, issued_at, status, bytes, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Key.Year, e.Key.Day, e.IssuedAt.UnixNano(), e.Status, e.Bytes, e.Error)
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, year, day, issued_at, status, bytes, error FROM requests ORDER BY issued_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ForKey returns every request issued for key, oldest first.
func (s *Store) ForKey(ctx context.Context, key puzzle.Key) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, year, day, issued_at, status, bytes, error FROM requests WHERE year = ? AND day = ? ORDER BY issued_at ASC`,
		key.Year, key.Day)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			issued int64
		)
		if err := rows.Scan(&e.ID, &e.Key.Year, &e.Key.Day, &issued, &e.Status, &e.Bytes, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		e.IssuedAt = time.Unix(0, issued).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
