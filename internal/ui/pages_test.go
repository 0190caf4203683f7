package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/circleshare/circleshare/internal/feed"
	"github.com/circleshare/circleshare/internal/models"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoginPageRejectsBadEmailLocally(t *testing.T) {
	p := newLoginPage(DefaultStyles())

	p.inputs[fieldEmail].SetValue("not-an-email")
	p.inputs[fieldPassword].SetValue("secret1")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no intent for an invalid email")
	}
	if p.errMsg == "" {
		t.Fatalf("expected a validation message")
	}
}

func TestLoginPageEmitsLoginIntent(t *testing.T) {
	p := newLoginPage(DefaultStyles())

	p.inputs[fieldEmail].SetValue("a@example.com")
	p.inputs[fieldPassword].SetValue("secret1")

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected an intent command")
	}
	intent, ok := cmd().(loginIntent)
	if !ok {
		t.Fatalf("expected loginIntent, got %T", cmd())
	}
	if intent.email != "a@example.com" || intent.password != "secret1" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestRegisterModeRequiresStrongerPassword(t *testing.T) {
	p := newLoginPage(DefaultStyles())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	p.inputs[fieldName].SetValue("Ada")
	p.inputs[fieldEmail].SetValue("ada@example.com")
	p.inputs[fieldPassword].SetValue("short")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no intent for a weak password")
	}
	if p.errMsg == "" {
		t.Fatalf("expected a validation message")
	}
}

func TestFeedPageRendersPostsAndSelection(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	p := newFeedPage(DefaultStyles())
	p.now = func() time.Time { return now }

	p.SetState([]models.Post{
		{ID: 2, AuthorName: "Grace", Content: "newer post", CreatedAt: now.Add(-2 * time.Minute), LikeCount: 3, ViewerLiked: true},
		{ID: 1, AuthorName: "Ada", Content: "older post", CreatedAt: now.Add(-3 * time.Hour)},
	}, feed.PhaseReady, nil)

	view := p.View()
	for _, want := range []string{"Grace", "newer post", "2m ago", "Ada", "3h ago", "♥ 3", "♡ 0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFeedPageLikeIntentTargetsSelectedPost(t *testing.T) {
	p := newFeedPage(DefaultStyles())
	p.SetState([]models.Post{
		{ID: 7, AuthorName: "Grace", Content: "first"},
		{ID: 8, AuthorName: "Ada", Content: "second"},
	}, feed.PhaseReady, nil)

	p, _ = p.Update(keyRunes("j"))
	_, cmd := p.Update(keyRunes("l"))
	if cmd == nil {
		t.Fatalf("expected a like intent")
	}
	intent, ok := cmd().(toggleLikeIntent)
	if !ok || intent.postID != 8 {
		t.Fatalf("expected like on post 8, got %#v", cmd())
	}
}

func TestFeedPageApplyLikeAdjustsCountOnce(t *testing.T) {
	p := newFeedPage(DefaultStyles())
	p.SetState([]models.Post{
		{ID: 7, Content: "x", LikeCount: 2, ViewerLiked: false},
	}, feed.PhaseReady, nil)

	p.ApplyLike(7, true)
	if p.posts[0].LikeCount != 3 || !p.posts[0].ViewerLiked {
		t.Fatalf("like not applied: %+v", p.posts[0])
	}

	// A repeated identical result must not double-count.
	p.ApplyLike(7, true)
	if p.posts[0].LikeCount != 3 {
		t.Fatalf("like double-counted: %+v", p.posts[0])
	}

	p.ApplyLike(7, false)
	if p.posts[0].LikeCount != 2 || p.posts[0].ViewerLiked {
		t.Fatalf("unlike not applied: %+v", p.posts[0])
	}
}

func TestFeedPageComposerRejectsEmptyPost(t *testing.T) {
	p := newFeedPage(DefaultStyles())
	p.SetState(nil, feed.PhaseReady, nil)

	p, _ = p.Update(keyRunes("n"))
	if !p.composing {
		t.Fatalf("expected composer to open")
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no intent for an empty post")
	}
	if p.errMsg == "" {
		t.Fatalf("expected a validation message")
	}
}

func TestCirclePageCursorSpansMembersAndInvitations(t *testing.T) {
	p := newCirclePage(DefaultStyles())
	p.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	p.SetState(
		[]models.CircleMember{{ID: 1, Name: "Grace", Email: "g@example.com"}},
		[]models.Invitation{{ID: 9, FromName: "Ada", FromEmail: "ada@example.com", Status: models.InvitationPending, CreatedAt: time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)}},
		nil,
	)

	// On the member row: accept must be a no-op, remove targets the member.
	_, cmd := p.Update(keyRunes("a"))
	if cmd != nil {
		t.Fatalf("accept on a member row should do nothing")
	}
	_, cmd = p.Update(keyRunes("r"))
	if intent, ok := cmd().(removeMemberIntent); !ok || intent.memberID != 1 {
		t.Fatalf("expected remove intent for member 1, got %#v", cmd())
	}

	// Move into the invitation section.
	p, _ = p.Update(keyRunes("j"))
	_, cmd = p.Update(keyRunes("a"))
	intent, ok := cmd().(respondInvitationIntent)
	if !ok || intent.invitationID != 9 || intent.action != models.InvitationAccept {
		t.Fatalf("expected accept intent for invitation 9, got %#v", cmd())
	}
}

func TestCommentsPageRejectsEmptyComment(t *testing.T) {
	p := newCommentsPage(DefaultStyles())
	p.Open(models.Post{ID: 1, AuthorName: "Ada", Content: "hi"})
	p.SetState(nil, false, nil)

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no intent for an empty comment")
	}
	if p.errMsg == "" {
		t.Fatalf("expected a validation message")
	}
}
