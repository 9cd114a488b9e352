package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
`

// DefaultMaxValueBytes is the per-value quota of the synchronous tier.
// Values past this size skip the tier preemptively and go straight to
// the asynchronous tier, which has a far larger practical quota.
const DefaultMaxValueBytes = 256 * 1024

// SQLiteTier is the synchronous durable tier: a local single-file
// key/value table. Writes here complete before Save returns, which is
// what the teardown flush path relies on.
type SQLiteTier struct {
	db            *sql.DB
	path          string
	maxValueBytes int
}

// OpenSQLiteTier creates or opens the SQLite file at path and prepares
// the kv table. Safe to call repeatedly on the same path.
func OpenSQLiteTier(path string, maxValueBytes int) (*SQLiteTier, error) {
	if maxValueBytes <= 0 {
		maxValueBytes = DefaultMaxValueBytes
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteTier{
		db:            db,
		path:          path,
		maxValueBytes: maxValueBytes,
	}, nil
}

// Name implements Tier.
func (s *SQLiteTier) Name() string { return "sqlite" }

// Available implements Tier.
func (s *SQLiteTier) Available() bool { return s != nil && s.db != nil }

// Save upserts the value. Values over the per-value quota are refused
// with ErrValueTooLarge so the coordinator can route them onward.
func (s *SQLiteTier) Save(ctx context.Context, key string, value []byte) error {
	if !s.Available() {
		return ErrTierUnavailable
	}
	if len(value) > s.maxValueBytes {
		return fmt.Errorf("%w: %d bytes over %d limit", ErrValueTooLarge, len(value), s.maxValueBytes)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite save: %w", err)
	}
	return nil
}

// Load implements Tier.
func (s *SQLiteTier) Load(ctx context.Context, key string) ([]byte, error) {
	if !s.Available() {
		return nil, ErrTierUnavailable
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load: %w", err)
	}
	return value, nil
}

// Remove implements Tier.
func (s *SQLiteTier) Remove(ctx context.Context, key string) error {
	if !s.Available() {
		return ErrTierUnavailable
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite remove: %w", err)
	}
	return nil
}

// Clear implements Tier.
func (s *SQLiteTier) Clear(ctx context.Context) error {
	if !s.Available() {
		return ErrTierUnavailable
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

// FileSize reports the size in bytes of the backing database file.
func (s *SQLiteTier) FileSize() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Durable checks whether the file survives power loss with the current
// journal configuration. Best-effort: a failed pragma query reports
// not durable rather than erroring.
func (s *SQLiteTier) Durable(ctx context.Context) bool {
	if !s.Available() {
		return false
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		return false
	}
	return mode == "wal" || mode == "delete" || mode == "truncate"
}

// Close closes the database file.
func (s *SQLiteTier) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
