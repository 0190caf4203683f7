package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/circleshare/circleshare/internal/models"
)

// circlePage shows the member roster and pending invitations. The cursor
// moves through members first, then invitations.
type circlePage struct {
	members     []models.CircleMember
	invitations []models.Invitation
	errMsg      string
	notice      string

	cursor   int
	invite   textinput.Model
	inviting bool

	now    func() time.Time
	styles Styles
}

func newCirclePage(styles Styles) circlePage {
	invite := textinput.New()
	invite.Placeholder = "friend@example.com"
	invite.CharLimit = 120

	return circlePage{
		invite: invite,
		now:    time.Now,
		styles: styles,
	}
}

// SetState replaces the display copies after a roster load.
func (p *circlePage) SetState(members []models.CircleMember, invitations []models.Invitation, err error) {
	p.members = members
	p.invitations = invitations
	p.errMsg = ""
	if err != nil {
		p.errMsg = err.Error()
	}
	if n := len(members) + len(invitations); p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// SetNotice shows transient feedback, e.g. after a sent invitation.
func (p *circlePage) SetNotice(s string) {
	p.notice = s
	p.errMsg = ""
}

// SetError shows a failed-action message, e.g. a rejected invitation.
func (p *circlePage) SetError(err error) {
	p.notice = ""
	p.errMsg = ""
	if err != nil {
		p.errMsg = err.Error()
	}
}

// selectedInvitation returns the invitation under the cursor, if the cursor
// is in the invitation section.
func (p *circlePage) selectedInvitation() (models.Invitation, bool) {
	i := p.cursor - len(p.members)
	if i < 0 || i >= len(p.invitations) {
		return models.Invitation{}, false
	}
	return p.invitations[i], true
}

func (p *circlePage) selectedMember() (models.CircleMember, bool) {
	if p.cursor < 0 || p.cursor >= len(p.members) {
		return models.CircleMember{}, false
	}
	return p.members[p.cursor], true
}

func (p circlePage) Update(msg tea.Msg) (circlePage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.inviting {
		switch key.String() {
		case "esc":
			p.inviting = false
			p.invite.Blur()
			p.invite.SetValue("")
			return p, nil
		case "enter":
			email := strings.TrimSpace(p.invite.Value())
			if err := models.ValidateEmail(email); err != nil {
				p.errMsg = err.Error()
				return p, nil
			}
			p.inviting = false
			p.invite.Blur()
			p.invite.SetValue("")
			p.errMsg = ""
			return p, func() tea.Msg { return inviteIntent{email: email} }
		}
		var cmd tea.Cmd
		p.invite, cmd = p.invite.Update(msg)
		return p, cmd
	}

	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.members)+len(p.invitations)-1 {
			p.cursor++
		}
	case "i":
		p.inviting = true
		p.notice = ""
		p.errMsg = ""
		return p, p.invite.Focus()
	case "a":
		if inv, ok := p.selectedInvitation(); ok {
			return p, func() tea.Msg {
				return respondInvitationIntent{invitationID: inv.ID, action: models.InvitationAccept}
			}
		}
	case "x":
		if inv, ok := p.selectedInvitation(); ok {
			return p, func() tea.Msg {
				return respondInvitationIntent{invitationID: inv.ID, action: models.InvitationDecline}
			}
		}
	case "r":
		if m, ok := p.selectedMember(); ok {
			return p, func() tea.Msg { return removeMemberIntent{memberID: m.ID} }
		}
	}
	return p, nil
}

func (p circlePage) View() string {
	var sb strings.Builder

	if p.inviting {
		sb.WriteString(p.styles.Panel.Render(p.invite.View()) + "\n")
		sb.WriteString(p.styles.Help.Render("[enter] send invitation  [esc] cancel") + "\n\n")
	}

	sb.WriteString(p.styles.Author.Render(fmt.Sprintf("Members (%d)", len(p.members))) + "\n")
	if len(p.members) == 0 {
		sb.WriteString(p.styles.Muted.Render("Just you so far. Press [i] to invite someone.") + "\n")
	}
	for i, m := range p.members {
		line := p.styles.Body.Render(m.Name) + " " + p.styles.Muted.Render("<"+m.Email+">")
		if i == p.cursor {
			line = p.styles.Selected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n" + p.styles.Author.Render(fmt.Sprintf("Invitations (%d)", len(p.invitations))) + "\n")
	if len(p.invitations) == 0 {
		sb.WriteString(p.styles.Muted.Render("No pending invitations.") + "\n")
	}
	now := p.now()
	for i, inv := range p.invitations {
		line := p.styles.Body.Render(inv.FromName) + " " +
			p.styles.Muted.Render("<"+inv.FromEmail+"> · "+relativeTime(inv.CreatedAt, now))
		if len(p.members)+i == p.cursor {
			line = p.styles.Selected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	if p.notice != "" {
		sb.WriteString("\n" + p.styles.Muted.Render(p.notice))
	}
	if p.errMsg != "" {
		sb.WriteString("\n" + p.styles.Error.Render(p.errMsg))
	}
	return sb.String()
}

func (p circlePage) help() string {
	return "[i] invite  [a] accept  [x] decline  [r] remove member  [j/k] move"
}
