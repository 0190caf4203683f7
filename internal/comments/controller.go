// Package comments owns the comment list for one selected post.
package comments

import (
	"context"
	"sync"

	"github.com/circleshare/circleshare/internal/models"
)

// CommentService is the slice of the API client the panel needs.
type CommentService interface {
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int64, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Controller holds the comments for the post currently expanded in the feed.
// Loading is gated on visibility: while the panel is hidden Load is a no-op,
// matching the collapsed comment section that fetches only when opened.
//
// Mutations are optimistic against local state: a created comment is appended
// from the server's response, a deleted one is filtered out by identifier.
// There is no server reconciliation beyond the next full Load.
type Controller struct {
	svc CommentService

	mu       sync.Mutex
	postID   int64
	visible  bool
	loading  bool
	comments []models.Comment
	err      error
	gen      int64
}

// NewController creates a hidden controller with no post selected.
func NewController(svc CommentService) *Controller {
	return &Controller{svc: svc}
}

// SetPost points the panel at a different post and drops state from the
// previous one.
func (c *Controller) SetPost(postID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.postID == postID {
		return
	}
	c.postID = postID
	c.comments = nil
	c.err = nil
	c.gen++ // invalidate in-flight loads for the old post
}

// SetVisible toggles the panel. Callers normally Load right after showing it.
func (c *Controller) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = visible
}

// Load fetches the comments for the selected post. A hidden panel or an
// unselected post makes Load a no-op. Stale responses (the post changed or a
// newer load was issued while fetching) are discarded.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	if !c.visible || c.postID == 0 {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.gen++
	gen := c.gen
	postID := c.postID
	c.mu.Unlock()

	comments, err := c.svc.Comments(ctx, postID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.loading = false
	if err != nil {
		c.err = err
		return
	}
	c.comments = comments
	c.err = nil
}

// Create posts a new comment and appends the server-returned entity to the
// end of the local list.
func (c *Controller) Create(ctx context.Context, content string) error {
	c.mu.Lock()
	postID := c.postID
	c.mu.Unlock()

	comment, err := c.svc.CreateComment(ctx, postID, content)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.postID == postID {
		c.comments = append(c.comments, comment)
	}
	return nil
}

// Delete removes the comment remotely and filters it out of the local list.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.svc.DeleteComment(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.comments[:0]
	for _, cm := range c.comments {
		if cm.ID != id {
			kept = append(kept, cm)
		}
	}
	c.comments = kept
	return nil
}

// Visible reports whether the panel is shown.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error from the most recent failed operation on the panel.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Comments returns a copy of the local comment list in display order.
func (c *Controller) Comments() []models.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Comment, len(c.comments))
	copy(out, c.comments)
	return out
}
