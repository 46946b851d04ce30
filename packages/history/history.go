// Package history records fetches in a SQLite database so earlier responses
// can be listed and inspected again.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS fetches (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	fetched_at  INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	reason      TEXT NOT NULL DEFAULT '',
	headers     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	error_kind  TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS fetches_fetched_at ON fetches (fetched_at);
`

// Entry is one recorded fetch. A failed fetch has ErrorKind set and no
// status.
type Entry struct {
	ID         string
	URL        string
	FetchedAt  time.Time
	Duration   time.Duration
	StatusCode int
	Reason     string
	Headers    string // raw header block, one "Name: value" per line
	Body       string
	ErrorKind  string
	Error      string
}

func (e *Entry) Failed() bool {
	return e.ErrorKind != "" || e.Error != ""
}

// Store is a history database
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens (and creates if needed) the history database named by a
// connection string such as sqlite://.hitget/history.db.
func Open(connectionString string) (*Store, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add stores e, assigning an ID and timestamp when missing.
func (s *Store) Add(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetches (id, url, fetched_at, duration_us, status_code, reason, headers, body, error_kind, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.URL, e.FetchedAt.UnixMicro(), e.Duration.Microseconds(),
		e.StatusCode, e.Reason, e.Headers, e.Body, e.ErrorKind, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. urlFilter, when not
// empty, keeps only entries whose URL contains it.
func (s *Store) Recent(limit int, urlFilter string) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, fetched_at, duration_us, status_code, reason, headers, body, error_kind, error
		FROM fetches
		WHERE instr(url, ?) > 0
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT ?`, urlFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Get returns the entry whose ID starts with idPrefix. The prefix must be
// unambiguous.
func (s *Store) Get(idPrefix string) (*Entry, error) {
	if idPrefix == "" {
		return nil, fmt.Errorf("empty history id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, fetched_at, duration_us, status_code, reason, headers, body, error_kind, error
		FROM fetches
		WHERE substr(id, 1, ?) = ?
		LIMIT 2`, len(idPrefix), idPrefix)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var found []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no history entry with id %s", idPrefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("history id %s is ambiguous", idPrefix)
	}
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM fetches`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e          Entry
		fetchedAt  int64
		durationUs int64
	)
	if err := rows.Scan(&e.ID, &e.URL, &fetchedAt, &durationUs, &e.StatusCode, &e.Reason, &e.Headers, &e.Body, &e.ErrorKind, &e.Error); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	e.FetchedAt = time.UnixMicro(fetchedAt)
	e.Duration = time.Duration(durationUs) * time.Microsecond
	return &e, nil
}

// parseConnectionString turns a connection string into a SQLite DSN
// Supported formats:
// - sqlite://path/to/db.sqlite
// - sqlite:./history.db
// - sqlite::memory:
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	var dsn string
	switch {
	case strings.HasPrefix(connStr, "sqlite://"):
		dsn = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		dsn = strings.TrimPrefix(connStr, "sqlite:")
	default:
		return "", fmt.Errorf("unsupported history database %q (expected sqlite://path)", connStr)
	}

	if dsn == "" {
		return "", fmt.Errorf("missing database path in %q", connStr)
	}
	return dsn, nil
}
