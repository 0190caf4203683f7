package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/circleshare/circleshare/internal/storage"
)

func newTestStore(t *testing.T) (*SessionStore, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "session.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func TestTokenEmptyStore(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Token(context.Background())
	if !errors.Is(err, storage.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSetAndGetToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetToken(ctx, "token-1"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	token, err := store.Token(ctx)
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "token-1" {
		t.Errorf("token: expected 'token-1', got '%s'", token)
	}

	// Setting again replaces the previous session
	if err := store.SetToken(ctx, "token-2"); err != nil {
		t.Fatalf("SetToken (replace) failed: %v", err)
	}
	token, err = store.Token(ctx)
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "token-2" {
		t.Errorf("token: expected 'token-2', got '%s'", token)
	}
}

func TestClearToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetToken(ctx, "token-1"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := store.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken failed: %v", err)
	}

	_, err := store.Token(ctx)
	if !errors.Is(err, storage.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}

	// Logout must be idempotent
	if err := store.ClearToken(ctx); err != nil {
		t.Errorf("ClearToken on empty store failed: %v", err)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "session.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.SetToken(ctx, "persisted"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	token, err := reopened.Token(ctx)
	if err != nil {
		t.Fatalf("Token after reopen failed: %v", err)
	}
	if token != "persisted" {
		t.Errorf("token: expected 'persisted', got '%s'", token)
	}
}

func TestNewCreatesParentDirs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "session.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store in nested dir: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}
