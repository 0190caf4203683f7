package api

import (
	"encoding/json"
	"errors"
	"strings"
)

// Error codes reported by the backend. Callers switch on Code instead of
// matching substrings of the human-readable message; the message is for
// display only.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeAccessDenied       = "access_denied"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserNotFound       = "user_not_found"
	CodeEmailExists        = "email_exists"
	CodeAlreadyMember      = "already_member"
	CodeNotInCircle        = "not_in_circle"
	CodeCircleNotFound     = "circle_not_found"
	CodePostNotFound       = "post_not_found"
	CodeInviteNotFound     = "invite_not_found"
	CodeInviteAlreadySent  = "invite_already_sent"
	CodeInviteResponded    = "invite_responded"
	CodeValidation         = "validation_failed"
	CodeUnknown            = "unknown"
)

// ErrNoToken is returned by authenticated operations when the session store
// holds no token. The client refuses to make the network call; the caller is
// expected to force a logout / show the login gate.
var ErrNoToken = &Error{Status: 0, Code: CodeUnauthenticated, Message: "no auth token found"}

// Error is the normalized form of a failed backend call.
type Error struct {
	// Status is the HTTP status code, 0 when the request never left the
	// client (missing token, local validation).
	Status int

	// Code is one of the Code* constants, CodeUnknown when the backend gave
	// no structured code and none could be inferred.
	Code string

	// Message is a single human-readable string suitable for inline display.
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrNoToken) work for any unauthenticated Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// errorBody is the wire shape of a backend error response. Current servers
// send code+detail; older snapshots send only detail or message.
type errorBody struct {
	Code    string `json:"code"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// parseError turns a non-2xx response body into an *Error. The structured
// code field wins; when absent the detail/message text is kept for display
// and mapped to a code by inferCode. inferCode is the only place in the
// client that looks at error text, kept for servers that predate codes.
func parseError(status int, body []byte, fallback string) *Error {
	msg := strings.TrimSpace(string(body))

	var wire errorBody
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Detail != "" {
			msg = wire.Detail
		} else if wire.Message != "" {
			msg = wire.Message
		}
		if wire.Code != "" {
			return &Error{Status: status, Code: wire.Code, Message: msg}
		}
	}

	if msg == "" {
		msg = fallback
	}
	return &Error{Status: status, Code: inferCode(status, msg), Message: msg}
}

// inferCode maps legacy free-text errors onto structured codes.
func inferCode(status int, msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case status == 401:
		if strings.Contains(lower, "password") || strings.Contains(lower, "credential") {
			return CodeInvalidCredentials
		}
		return CodeUnauthenticated
	case status == 403:
		return CodeAccessDenied
	case strings.Contains(lower, "not found"):
		switch {
		case strings.Contains(lower, "user"):
			return CodeUserNotFound
		case strings.Contains(lower, "circle"):
			return CodeCircleNotFound
		case strings.Contains(lower, "post"):
			return CodePostNotFound
		case strings.Contains(lower, "invit"):
			return CodeInviteNotFound
		}
		return CodeUnknown
	case strings.Contains(lower, "already registered"):
		return CodeEmailExists
	case strings.Contains(lower, "already joined"), strings.Contains(lower, "already in"):
		return CodeAlreadyMember
	case strings.Contains(lower, "already sent"), strings.Contains(lower, "already invited"):
		return CodeInviteAlreadySent
	case strings.Contains(lower, "already responded"):
		return CodeInviteResponded
	default:
		return CodeUnknown
	}
}

// validationError wraps a local pre-flight validation failure.
func validationError(err error) *Error {
	return &Error{Status: 0, Code: CodeValidation, Message: err.Error()}
}

// AsError extracts an *Error from err, returning nil when err is not one.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// CodeOf returns the code of err, or CodeUnknown for non-API errors. Network
// failures (DNS, refused connections) come back as plain errors from
// net/http and land in the CodeUnknown bucket.
func CodeOf(err error) string {
	if apiErr := AsError(err); apiErr != nil {
		return apiErr.Code
	}
	return CodeUnknown
}
