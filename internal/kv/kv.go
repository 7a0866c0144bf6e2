// Package kv persists JSON documents in a local SQLite database under
// fixed keys. It plays the role browser local storage plays for the web
// client: one self-contained document per key, overwritten wholesale on
// every write.
package kv

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Document keys used by the stores.
const (
	UsersKey   = "taskmaster_users"
	TasksKey   = "taskmaster_tasks"
	SessionKey = "taskmaster_auth"
)

// ErrNoDocument is returned by Load when no usable document exists under
// the requested key, either because the key is absent or because the
// stored value does not unmarshal. Callers substitute their default.
var ErrNoDocument = errors.New("no document")

// Store is a SQLite-backed key-value store of JSON documents.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode,
// and runs any pending schema migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Load unmarshals the document stored under key into out. It returns
// ErrNoDocument when the key is absent or the stored value fails to
// unmarshal; out is left untouched in that case.
func (s *Store) Load(key string, out any) error {
	var raw string
	err := s.db.Get(&raw, "SELECT value FROM documents WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("loading document %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// Corrupt documents are indistinguishable from absent ones to
		// the caller; both fall back to the default.
		return ErrNoDocument
	}
	return nil
}

// Save marshals value and stores it under key, overwriting any prior
// document.
func (s *Store) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling document %q: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO documents (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("saving document %q: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key, if any.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM documents WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting document %q: %w", key, err)
	}
	return nil
}
