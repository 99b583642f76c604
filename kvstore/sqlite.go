// ABOUTME: SQLite-backed Store keeping one row per key in a WAL-mode database.
// ABOUTME: Every Set upserts the value and stamps a fresh ULID revision for diagnostics.
package kvstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// SqliteStore is the default on-disk backend.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates the database at path, creating parent
// directories and the kv table as needed.
func OpenSqlite(path string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent dirs: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			revision TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return value, true, nil
}

func (s *SqliteStore) Set(ctx context.Context, key, value string) error {
	rev := ulid.MustNew(ulid.Now(), rand.Reader)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = excluded.revision,
			updated_at = excluded.updated_at`,
		key, value, rev.String(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Revision returns the ULID stamped by the most recent Set of key.
func (s *SqliteStore) Revision(ctx context.Context, key string) (ulid.ULID, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT revision FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ulid.ULID{}, false, nil
	}
	if err != nil {
		return ulid.ULID{}, false, unavailable("revision", key, err)
	}
	id, err := ulid.Parse(raw)
	if err != nil {
		return ulid.ULID{}, false, fmt.Errorf("parse revision for %q: %w", key, err)
	}
	return id, true, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
