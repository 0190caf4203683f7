package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/circleshare/circleshare/internal/models"
)

// commentsPage is the panel shown over the feed for one post's comments.
type commentsPage struct {
	post     models.Post
	comments []models.Comment
	loading  bool
	errMsg   string

	cursor int
	input  textinput.Model

	now    func() time.Time
	styles Styles
}

func newCommentsPage(styles Styles) commentsPage {
	input := textinput.New()
	input.Placeholder = "Write a comment..."
	input.CharLimit = models.MaxCommentContentLen

	return commentsPage{
		input:  input,
		now:    time.Now,
		styles: styles,
	}
}

// Open resets the panel for a newly selected post.
func (p *commentsPage) Open(post models.Post) {
	p.post = post
	p.comments = nil
	p.loading = true
	p.errMsg = ""
	p.cursor = 0
	p.input.SetValue("")
	p.input.Focus()
}

// SetState replaces the display copy after a controller load or mutation.
func (p *commentsPage) SetState(comments []models.Comment, loading bool, err error) {
	p.comments = comments
	p.loading = loading
	p.errMsg = ""
	if err != nil {
		p.errMsg = err.Error()
	}
	if p.cursor >= len(comments) {
		p.cursor = len(comments) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p commentsPage) Update(msg tea.Msg) (commentsPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key.String() {
	case "enter":
		content := strings.TrimSpace(p.input.Value())
		if err := models.ValidateCommentContent(content); err != nil {
			p.errMsg = err.Error()
			return p, nil
		}
		p.input.SetValue("")
		p.errMsg = ""
		return p, func() tea.Msg { return createCommentIntent{content: content} }
	case "up", "ctrl+k":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case "down", "ctrl+j":
		if p.cursor < len(p.comments)-1 {
			p.cursor++
		}
		return p, nil
	case "ctrl+d":
		if p.cursor < len(p.comments) {
			id := p.comments[p.cursor].ID
			return p, func() tea.Msg { return deleteCommentIntent{commentID: id} }
		}
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p commentsPage) View() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Author.Render(p.post.AuthorName))
	sb.WriteString(p.styles.Muted.Render(": " + p.post.Content))
	sb.WriteString("\n" + p.styles.divider(48) + "\n")

	switch {
	case p.loading:
		sb.WriteString(p.styles.Muted.Render("loading comments...") + "\n")
	case len(p.comments) == 0:
		sb.WriteString(p.styles.Muted.Render("No comments yet.") + "\n")
	default:
		now := p.now()
		for i, c := range p.comments {
			line := p.styles.Author.Render(c.AuthorName) + " " +
				p.styles.Body.Render(c.Content) + " " +
				p.styles.Muted.Render(relativeTime(c.CreatedAt, now))
			if i == p.cursor {
				line = p.styles.Selected.Render(line)
			}
			sb.WriteString(line + "\n")
		}
	}

	if p.errMsg != "" {
		sb.WriteString(p.styles.Error.Render(p.errMsg) + "\n")
	}

	sb.WriteString("\n" + p.input.View() + "\n")
	sb.WriteString(p.styles.Help.Render("[enter] comment  [ctrl+d] delete selected  [esc] close"))
	return p.styles.Panel.Render(sb.String())
}
