package circle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleshare/circleshare/internal/api"
	"github.com/circleshare/circleshare/internal/events"
	"github.com/circleshare/circleshare/internal/models"
)

type fakeService struct {
	mu          sync.Mutex
	members     []models.CircleMember
	invitations []models.Invitation
	inviteErr   error
	responded   []int64
	removed     []int64
}

func (f *fakeService) Members(ctx context.Context) ([]models.CircleMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CircleMember(nil), f.members...), nil
}

func (f *fakeService) Invite(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inviteErr
}

func (f *fakeService) RemoveMember(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	kept := f.members[:0]
	for _, m := range f.members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	f.members = kept
	return nil
}

func (f *fakeService) Invitations(ctx context.Context) ([]models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Invitation(nil), f.invitations...), nil
}

func (f *fakeService) RespondInvitation(ctx context.Context, id int64, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responded = append(f.responded, id)
	return nil
}

func pendingInvite(id int64, from string) models.Invitation {
	return models.Invitation{ID: id, FromName: from, Status: models.InvitationPending, CreatedAt: time.Now()}
}

func TestRespondRemovesInvitationExactlyOnce(t *testing.T) {
	svc := &fakeService{invitations: []models.Invitation{
		pendingInvite(1, "Alice"),
		pendingInvite(2, "Bob"),
	}}
	c := NewController(svc, nil)
	require.NoError(t, c.LoadInvitations(context.Background()))
	require.Len(t, c.Invitations(), 2)

	require.NoError(t, c.Respond(context.Background(), 1, models.InvitationAccept))

	got := c.Invitations()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	// Responding to the already-removed ID leaves the list unchanged.
	require.NoError(t, c.Respond(context.Background(), 1, models.InvitationDecline))
	assert.Len(t, c.Invitations(), 1)
}

func TestAcceptPublishesMembersChange(t *testing.T) {
	svc := &fakeService{invitations: []models.Invitation{pendingInvite(1, "Alice"), pendingInvite(2, "Bob")}}
	bus := events.NewBus()
	var notified int
	bus.Subscribe(events.TopicMembers, func(events.Topic) { notified++ })

	c := NewController(svc, bus)
	require.NoError(t, c.LoadInvitations(context.Background()))

	require.NoError(t, c.Respond(context.Background(), 1, models.InvitationAccept))
	assert.Equal(t, 1, notified)

	// Declining does not change the roster.
	require.NoError(t, c.Respond(context.Background(), 2, models.InvitationDecline))
	assert.Equal(t, 1, notified)
}

func TestRemoveRefetchesRoster(t *testing.T) {
	svc := &fakeService{members: []models.CircleMember{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}}
	c := NewController(svc, nil)
	require.NoError(t, c.LoadMembers(context.Background()))
	require.Len(t, c.Members(), 2)

	require.NoError(t, c.Remove(context.Background(), 1))

	got := c.Members()
	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].Name)
	assert.Equal(t, []int64{1}, svc.removed)
}

func TestInviteMessageByCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unregistered email",
			err:  &api.Error{Status: 404, Code: api.CodeUserNotFound, Message: "User not found"},
			want: "ghost@nowhere.com is not registered on CircleShare",
		},
		{
			name: "already a member",
			err:  &api.Error{Status: 409, Code: api.CodeAlreadyMember, Message: "User already joined"},
			want: "ghost@nowhere.com is already in your circle",
		},
		{
			name: "invite already pending",
			err:  &api.Error{Status: 409, Code: api.CodeInviteAlreadySent, Message: "Invite already sent"},
			want: "ghost@nowhere.com is already in your circle",
		},
		{
			name: "expired session",
			err:  api.ErrNoToken,
			want: "Your session has expired, please log in again",
		},
		{
			name: "anything else",
			err:  &api.Error{Status: 500, Code: api.CodeUnknown, Message: "boom"},
			want: "Failed to send invite, please try again",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InviteMessage("ghost@nowhere.com", tc.err))
		})
	}
}

func TestInviteWrapsTailoredMessage(t *testing.T) {
	svc := &fakeService{inviteErr: &api.Error{Status: 404, Code: api.CodeUserNotFound, Message: "User not found"}}
	c := NewController(svc, nil)

	err := c.Invite(context.Background(), "ghost@nowhere.com")
	require.Error(t, err)
	assert.Equal(t, "ghost@nowhere.com is not registered on CircleShare", err.Error())
}
