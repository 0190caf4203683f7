package models

import "time"

// CircleMember is one user in the viewer's circle roster. The viewer
// themselves is excluded from member listings by the backend.
type CircleMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Invitation statuses. Only pending invitations are ever listed; accepted and
// declined invitations are deleted server-side when responded to.
const (
	InvitationPending = "pending"
)

// Invitation actions accepted by the respond endpoint.
const (
	InvitationAccept  = "accept"
	InvitationDecline = "decline"
)

// Invitation is a pending request asking the viewer to join the sender's
// circle.
type Invitation struct {
	ID int64 `json:"id"`

	// FromName and FromEmail identify the sender, denormalized for display.
	FromName  string `json:"from_user_name"`
	FromEmail string `json:"from_user_email"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
