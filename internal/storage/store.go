// Package storage provides abstractions for persistent client-side state.
package storage

import (
	"context"
	"errors"
)

// ErrNoSession is returned by Token when no session has been stored, or when
// a previous session was cleared by logout.
var ErrNoSession = errors.New("no stored session")

// SessionStore holds the single current session token. It is the Go
// counterpart of the browser's fixed localStorage slot: one opaque value,
// present meaning "logged in".
//
// The store is injected explicitly into the API client and the controllers
// rather than read from ambient global state, so tests can substitute an
// in-memory implementation.
type SessionStore interface {
	// Token returns the stored token, or ErrNoSession when absent.
	// Token has no side effects.
	Token(ctx context.Context) (string, error)

	// SetToken persists the token for subsequent requests, replacing any
	// previous value.
	SetToken(ctx context.Context, token string) error

	// ClearToken removes the stored token. Clearing an empty store is not an
	// error; logout must be idempotent.
	ClearToken(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
