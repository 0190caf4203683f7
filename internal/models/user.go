package models

import "time"

// User represents a registered account. The client only ever sees users
// through CircleMember and the denormalized author fields on posts; the full
// shape exists for the in-process reference server.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the account password. Never
	// serialized to clients.
	PasswordHash string `json:"-"`

	// FirstAccess is when the account was created.
	FirstAccess time.Time `json:"first_access"`
}

// TokenPair is the credential returned by a successful login. The client is
// responsible for persisting AccessToken explicitly; login itself has no
// storage side effect.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
