// Package sqlite provides a SQLite-backed implementation of the
// storage.SessionStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/circleshare/circleshare/internal/storage"
)

// sessionKey is the fixed row key for the single current session, the
// equivalent of the browser's "authToken" localStorage key.
const sessionKey = "authToken"

// Ensure SessionStore implements storage.SessionStore
var _ storage.SessionStore = (*SessionStore)(nil)

// SessionStore implements storage.SessionStore using SQLite.
type SessionStore struct {
	db *sql.DB
}

// New creates a new SessionStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SessionStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Token returns the stored token, or storage.ErrNoSession when the slot is
// empty.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT token FROM sessions WHERE key = ?",
		sessionKey,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return "", storage.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, nil
}

// SetToken persists the token, replacing any previous session.
func (s *SessionStore) SetToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (key, token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		sessionKey, token, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// ClearToken removes the stored session. Clearing an empty store succeeds.
func (s *SessionStore) ClearToken(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE key = ?",
		sessionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
