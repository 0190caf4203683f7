package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/circleshare/circleshare/internal/feed"
	"github.com/circleshare/circleshare/internal/models"
)

// feedPage renders one feed view with a cursor, a post composer, and the
// like/delete/comment keybindings. It holds a display copy of the posts;
// the feed controller remains the source of truth.
type feedPage struct {
	posts  []models.Post
	phase  feed.Phase
	errMsg string

	cursor    int
	composer  textinput.Model
	composing bool

	now    func() time.Time
	styles Styles
	width  int
}

func newFeedPage(styles Styles) feedPage {
	composer := textinput.New()
	composer.Placeholder = "Share something with your circle..."
	composer.CharLimit = models.MaxPostContentLen

	return feedPage{
		composer: composer,
		now:      time.Now,
		styles:   styles,
		width:    80,
	}
}

// SetState replaces the display copy after a controller load finished.
func (p *feedPage) SetState(posts []models.Post, phase feed.Phase, err error) {
	p.posts = posts
	p.phase = phase
	p.errMsg = ""
	if err != nil {
		p.errMsg = err.Error()
	}
	if p.cursor >= len(posts) {
		p.cursor = len(posts) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// ApplyLike patches the display copy with a toggle result. The count moves by
// one in the indicated direction rather than refetching the whole feed.
func (p *feedPage) ApplyLike(postID int64, liked bool) {
	for i := range p.posts {
		if p.posts[i].ID != postID {
			continue
		}
		if liked == p.posts[i].ViewerLiked {
			return
		}
		p.posts[i].ViewerLiked = liked
		if liked {
			p.posts[i].LikeCount++
		} else {
			p.posts[i].LikeCount--
		}
		return
	}
}

func (p *feedPage) selected() (models.Post, bool) {
	if p.cursor < 0 || p.cursor >= len(p.posts) {
		return models.Post{}, false
	}
	return p.posts[p.cursor], true
}

func (p feedPage) Update(msg tea.Msg) (feedPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.composing {
		switch key.String() {
		case "esc":
			p.composing = false
			p.composer.Blur()
			p.composer.SetValue("")
			return p, nil
		case "enter":
			content := strings.TrimSpace(p.composer.Value())
			if err := models.ValidatePostContent(content); err != nil {
				p.errMsg = err.Error()
				return p, nil
			}
			p.composing = false
			p.composer.Blur()
			p.composer.SetValue("")
			p.errMsg = ""
			return p, func() tea.Msg { return createPostIntent{content: content} }
		}
		var cmd tea.Cmd
		p.composer, cmd = p.composer.Update(msg)
		return p, cmd
	}

	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.posts)-1 {
			p.cursor++
		}
	case "n":
		p.composing = true
		p.errMsg = ""
		return p, p.composer.Focus()
	case "l":
		if post, ok := p.selected(); ok {
			return p, func() tea.Msg { return toggleLikeIntent{postID: post.ID} }
		}
	case "d":
		if post, ok := p.selected(); ok {
			return p, func() tea.Msg { return deletePostIntent{postID: post.ID} }
		}
	case "enter", "c":
		if post, ok := p.selected(); ok {
			return p, func() tea.Msg { return openCommentsIntent{postID: post.ID} }
		}
	}
	return p, nil
}

func (p feedPage) View() string {
	var sb strings.Builder

	if p.composing {
		sb.WriteString(p.styles.Panel.Render(p.composer.View()) + "\n")
		sb.WriteString(p.styles.Help.Render("[enter] post  [esc] cancel") + "\n\n")
	}

	if p.errMsg != "" {
		sb.WriteString(p.styles.Error.Render(p.errMsg) + "\n\n")
	}

	switch {
	case p.phase == feed.PhaseLoading && len(p.posts) == 0:
		sb.WriteString(p.styles.Muted.Render("loading posts..."))
		return sb.String()
	case p.phase == feed.PhaseReady && len(p.posts) == 0:
		sb.WriteString(p.styles.Muted.Render("No posts yet. Press [n] to share one."))
		return sb.String()
	}

	now := p.now()
	for i, post := range p.posts {
		sb.WriteString(p.renderPost(post, now, i == p.cursor))
		if i < len(p.posts)-1 {
			sb.WriteString("\n" + p.styles.divider(min(p.width, 48)) + "\n")
		}
	}
	return sb.String()
}

func (p feedPage) renderPost(post models.Post, now time.Time, selected bool) string {
	var sb strings.Builder

	sb.WriteString(p.styles.Author.Render(post.AuthorName))
	sb.WriteString(p.styles.Muted.Render("  · " + relativeTime(post.CreatedAt, now)))
	sb.WriteString("\n")
	sb.WriteString(p.styles.Body.Render(post.Content))
	sb.WriteString("\n")
	if post.PhotoURL != "" {
		sb.WriteString(p.styles.Muted.Render("[photo] "+post.PhotoURL) + "\n")
	}

	heart := p.styles.Muted.Render(fmt.Sprintf("♡ %d", post.LikeCount))
	if post.ViewerLiked {
		heart = p.styles.Liked.Render(fmt.Sprintf("♥ %d", post.LikeCount))
	}
	sb.WriteString(heart)

	block := sb.String()
	if selected {
		return p.styles.Selected.Render(block) + "\n"
	}
	return block + "\n"
}

func (p feedPage) help() string {
	return "[n] new post  [l] like  [c] comments  [d] delete  [j/k] move"
}
