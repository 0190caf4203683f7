package storage

import (
	"context"
	"sync"
)

// Ensure MemoryStore implements SessionStore
var _ SessionStore = (*MemoryStore)(nil)

// MemoryStore is a SessionStore that keeps the token in process memory.
// Used by tests and by one-shot CLI invocations that pass the token on the
// command line.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", ErrNoSession
	}
	return s.token, nil
}

func (s *MemoryStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

func (s *MemoryStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}

func (s *MemoryStore) Close() error { return nil }
