// Package circle owns the member roster and received-invitation list.
package circle

import (
	"context"
	"fmt"
	"sync"

	"github.com/circleshare/circleshare/internal/api"
	"github.com/circleshare/circleshare/internal/events"
	"github.com/circleshare/circleshare/internal/models"
)

// MembershipService is the slice of the API client the circle screen needs.
type MembershipService interface {
	Members(ctx context.Context) ([]models.CircleMember, error)
	Invite(ctx context.Context, email string) error
	RemoveMember(ctx context.Context, id int64) error
	Invitations(ctx context.Context) ([]models.Invitation, error)
	RespondInvitation(ctx context.Context, id int64, action string) error
}

// Controller fetches and holds the circle roster and the viewer's pending
// invitations. The two collections load independently. Mutations are followed
// by a full refetch of the affected collection, except invitation responses,
// which remove the responded entry from the local pending list by identifier.
type Controller struct {
	svc MembershipService
	bus *events.Bus

	mu          sync.Mutex
	members     []models.CircleMember
	invitations []models.Invitation
	err         error
}

// NewController creates an empty controller. bus may be nil; when set,
// roster changes are announced on events.TopicMembers.
func NewController(svc MembershipService, bus *events.Bus) *Controller {
	return &Controller{svc: svc, bus: bus}
}

// LoadMembers fetches the roster.
func (c *Controller) LoadMembers(ctx context.Context) error {
	members, err := c.svc.Members(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err
		return err
	}
	c.members = members
	c.err = nil
	return nil
}

// LoadInvitations fetches the pending invitations the viewer received.
func (c *Controller) LoadInvitations(ctx context.Context) error {
	invitations, err := c.svc.Invitations(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err
		return err
	}
	c.invitations = invitations
	c.err = nil
	return nil
}

// Invite sends an invitation to the given email. On failure the returned
// error carries a message tailored by the backend's structured error code;
// see InviteMessage.
func (c *Controller) Invite(ctx context.Context, email string) error {
	if err := c.svc.Invite(ctx, email); err != nil {
		return fmt.Errorf("%s", InviteMessage(email, err))
	}
	return nil
}

// InviteMessage selects the user-facing copy for a failed invitation by
// switching on the structured error code. The error text itself is never
// pattern-matched here.
func InviteMessage(email string, err error) string {
	switch api.CodeOf(err) {
	case api.CodeUserNotFound:
		return fmt.Sprintf("%s is not registered on CircleShare", email)
	case api.CodeAlreadyMember, api.CodeInviteAlreadySent:
		return fmt.Sprintf("%s is already in your circle", email)
	case api.CodeUnauthenticated:
		return "Your session has expired, please log in again"
	case api.CodeValidation:
		return err.Error()
	default:
		return "Failed to send invite, please try again"
	}
}

// Respond accepts or declines an invitation. On success the invitation is
// removed from the local pending list exactly once; it never moves to an
// accepted or declined state client-side. Accepting changes the roster, so
// a members notification is published.
func (c *Controller) Respond(ctx context.Context, id int64, action string) error {
	if err := c.svc.RespondInvitation(ctx, id, action); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.invitations[:0]
	for _, inv := range c.invitations {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	c.invitations = kept
	c.mu.Unlock()

	if action == models.InvitationAccept && c.bus != nil {
		c.bus.Publish(events.TopicMembers)
	}
	return nil
}

// Remove deletes a member from the roster and refetches the whole list.
// Confirmation is the caller's concern.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	if err := c.svc.RemoveMember(ctx, id); err != nil {
		return err
	}
	if c.bus != nil {
		c.bus.Publish(events.TopicMembers)
	}
	return c.LoadMembers(ctx)
}

// Members returns a copy of the loaded roster.
func (c *Controller) Members() []models.CircleMember {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CircleMember, len(c.members))
	copy(out, c.members)
	return out
}

// Invitations returns a copy of the pending invitations.
func (c *Controller) Invitations() []models.Invitation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Invitation, len(c.invitations))
	copy(out, c.invitations)
	return out
}

// Err returns the error from the most recent failed load.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
