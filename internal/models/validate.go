package models

import (
	"errors"
	"fmt"
	"strings"
)

// Content bounds enforced client-side before any network call. The backend
// enforces them too; the client checks first so a too-long body never costs a
// round trip.
const (
	MaxPostContentLen    = 280
	MaxCommentContentLen = 500
	MinPasswordLen       = 8
)

var (
	ErrNameRequired  = errors.New("your name is required")
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("enter a valid email like name@example.com")
	ErrWeakPassword  = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	ErrEmptyContent  = errors.New("content must not be empty")
)

// ValidateName checks a registration display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateEmail applies the same shallow shape check the forms use: the
// address must contain an "@" and a dot. Full RFC 5322 parsing is left to the
// backend's mailer.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks minimum length only.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

// ValidatePostContent checks a post body against MaxPostContentLen.
func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if n := len([]rune(content)); n > MaxPostContentLen {
		return fmt.Errorf("post is %d characters, the limit is %d", n, MaxPostContentLen)
	}
	return nil
}

// ValidateCommentContent checks a comment body against MaxCommentContentLen.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if n := len([]rune(content)); n > MaxCommentContentLen {
		return fmt.Errorf("comment is %d characters, the limit is %d", n, MaxCommentContentLen)
	}
	return nil
}
