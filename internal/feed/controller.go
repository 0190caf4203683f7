// Package feed owns the in-memory post list for the feed views.
package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/circleshare/circleshare/internal/events"
	"github.com/circleshare/circleshare/internal/models"
)

// View selects which collection the controller fetches.
type View string

const (
	// ViewMine shows only the viewer's own posts.
	ViewMine View = "mine"
	// ViewCircle shows posts by other members of joined circles.
	ViewCircle View = "circle"
)

// Phase is the controller's lifecycle state: idle until the first load,
// loading while a fetch is in flight, then ready or errored. Refresh and
// view changes re-enter loading.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// PostService is the slice of the API client the feed needs.
type PostService interface {
	Timeline(ctx context.Context) ([]models.Post, error)
	MyPosts(ctx context.Context) ([]models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// Controller fetches and holds the posts for one feed view. Its state is
// owned exclusively by the controller; callers read copies through the
// accessors. Overlapping loads are resolved by a request generation: each
// load takes the next generation number and only the newest generation may
// publish its result, so a slow stale response never overwrites a fresh one.
type Controller struct {
	svc    PostService
	logger *slog.Logger

	mu          sync.Mutex
	view        View
	phase       Phase
	posts       []models.Post
	err         error
	gen         int64
	unsubscribe func()
}

// NewController creates a controller starting in PhaseIdle on the given view.
func NewController(svc PostService, view View, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{svc: svc, view: view, phase: PhaseIdle, logger: logger}
}

// Attach subscribes the controller to post-change notifications so sibling
// flows (the creation form, deletions elsewhere) trigger a reload without
// holding a reference to this controller. Call Detach when done.
func (c *Controller) Attach(bus *events.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.unsubscribe = bus.Subscribe(events.TopicPosts, func(events.Topic) {
		c.Load(context.Background())
	})
}

// Detach removes the bus subscription, if any.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Load fetches the current view's posts. Concurrent loads may overlap on the
// network; only the most recently issued one is allowed to apply its result.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.gen++
	gen := c.gen
	view := c.view
	c.mu.Unlock()

	var posts []models.Post
	var err error
	switch view {
	case ViewMine:
		posts, err = c.svc.MyPosts(ctx)
	default:
		posts, err = c.svc.Timeline(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// A newer load was issued while this one was in flight.
		c.logger.Debug("discarding stale feed response", "view", view, "generation", gen)
		return
	}
	if err != nil {
		c.err = err
		c.phase = PhaseErrored
		return
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	c.posts = posts
	c.err = nil
	c.phase = PhaseReady
}

// SetView switches between the viewer's own posts and the circle feed and
// reloads when the view actually changed.
func (c *Controller) SetView(ctx context.Context, view View) {
	c.mu.Lock()
	if c.view == view {
		c.mu.Unlock()
		return
	}
	c.view = view
	c.mu.Unlock()
	c.Load(ctx)
}

// Delete removes a post and then refetches the whole view. Confirmation is
// the caller's concern.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.svc.DeletePost(ctx, id); err != nil {
		return err
	}
	c.Load(ctx)
	return nil
}

// View returns the currently selected view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the error from the most recent failed load, nil when the last
// load succeeded.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Posts returns a copy of the loaded posts, newest first.
func (c *Controller) Posts() []models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Post, len(c.posts))
	copy(out, c.posts)
	return out
}
