// Package api implements the typed REST client for the CircleShare backend.
//
// Every exported method maps to exactly one backend operation and performs at
// most one HTTP call: no retries, no deduplication, no caching. Authenticated
// operations read the bearer token from the injected storage.SessionStore and
// fail fast with ErrNoToken before any network I/O when it is absent.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/circleshare/circleshare/internal/models"
	"github.com/circleshare/circleshare/internal/storage"
)

// Client talks to one CircleShare backend.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions storage.SessionStore
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the instrumentation sink. Defaults to none.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the backend at baseURL, reading bearer tokens from
// sessions.
func New(baseURL string, sessions storage.SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates a new account. The form fields are validated locally
// before any network call.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	if err := models.ValidateName(name); err != nil {
		return validationError(err)
	}
	if err := models.ValidateEmail(email); err != nil {
		return validationError(err)
	}
	if err := models.ValidatePassword(password); err != nil {
		return validationError(err)
	}

	body := map[string]string{"name": name, "email": email, "password": password}
	return c.doJSON(ctx, "register", http.MethodPost, "/register", body, false, nil)
}

// Login exchanges credentials for a token pair. The caller must persist the
// token explicitly; Login itself writes nothing to the session store.
func (c *Client) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	if err := models.ValidateEmail(email); err != nil {
		return models.TokenPair{}, validationError(err)
	}
	if password == "" {
		return models.TokenPair{}, validationError(models.ErrWeakPassword)
	}

	var pair models.TokenPair
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login", body, false, &pair); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Timeline returns the circle-wide feed: posts by other members of circles
// the viewer has joined, newest first as ordered by the server.
func (c *Client) Timeline(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.doJSON(ctx, "timeline", http.MethodGet, "/timeline", nil, true, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// MyPosts returns the viewer's own posts.
func (c *Client) MyPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.doJSON(ctx, "my_posts", http.MethodGet, "/my-circle/posts", nil, true, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PhotoUpload is an optional photo attachment for CreatePost.
type PhotoUpload struct {
	// Filename as reported to the server, e.g. "sunset.jpg".
	Filename string
	// Reader supplies the photo bytes. Consumed exactly once.
	Reader io.Reader
}

// CreatePost shares a new entry into the viewer's circle. Without a photo the
// request is JSON; with one it is multipart/form-data carrying a "content"
// field and a "photo" file part. The owning circle is resolved server-side
// from the token.
func (c *Client) CreatePost(ctx context.Context, content string, photo *PhotoUpload) (models.Post, error) {
	if err := models.ValidatePostContent(content); err != nil {
		return models.Post{}, validationError(err)
	}

	var post models.Post
	if photo == nil {
		body := map[string]string{"content": content}
		if err := c.doJSON(ctx, "create_post", http.MethodPost, "/posts/", body, true, &post); err != nil {
			return models.Post{}, err
		}
		return post, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("content", content); err != nil {
		return models.Post{}, fmt.Errorf("failed to encode form: %w", err)
	}
	part, err := w.CreateFormFile("photo", photo.Filename)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to encode form: %w", err)
	}
	if _, err := io.Copy(part, photo.Reader); err != nil {
		return models.Post{}, fmt.Errorf("failed to read photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.Post{}, fmt.Errorf("failed to finish form: %w", err)
	}

	if err := c.do(ctx, "create_post", http.MethodPost, "/posts/", &buf, w.FormDataContentType(), true, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// DeletePost removes one of the viewer's posts. There is no response body;
// the caller refreshes or locally removes the entry.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete_post", http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, true, nil)
}

// Members lists the viewer's circle roster, excluding the viewer.
func (c *Client) Members(ctx context.Context) ([]models.CircleMember, error) {
	var members []models.CircleMember
	if err := c.doJSON(ctx, "members", http.MethodGet, "/my-circle/members", nil, true, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Invite asks the backend to invite the given registered email into the
// viewer's circle.
func (c *Client) Invite(ctx context.Context, email string) error {
	if err := models.ValidateEmail(email); err != nil {
		return validationError(err)
	}
	body := map[string]string{"email": email}
	return c.doJSON(ctx, "invite", http.MethodPost, "/my-circle/invite", body, true, nil)
}

// RemoveMember removes a member from the viewer's circle.
func (c *Client) RemoveMember(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "remove_member", http.MethodDelete, fmt.Sprintf("/my-circle/members/%d", id), nil, true, nil)
}

// Invitations lists pending invitations the viewer has received.
func (c *Client) Invitations(ctx context.Context) ([]models.Invitation, error) {
	var invites []models.Invitation
	if err := c.doJSON(ctx, "invitations", http.MethodGet, "/invitations/received", nil, true, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// RespondInvitation accepts or declines a received invitation. Any action
// other than models.InvitationAccept or models.InvitationDecline is rejected
// locally.
func (c *Client) RespondInvitation(ctx context.Context, id int64, action string) error {
	if action != models.InvitationAccept && action != models.InvitationDecline {
		return validationError(fmt.Errorf("invalid invitation action %q", action))
	}
	body := map[string]string{"action": action}
	return c.doJSON(ctx, "respond_invitation", http.MethodPost, fmt.Sprintf("/invitations/%d/respond", id), body, true, nil)
}

// Comments lists the comments on a post, oldest first as ordered by the
// server.
func (c *Client) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.doJSON(ctx, "comments", http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, true, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment attaches a comment to a post and returns the created entity.
func (c *Client) CreateComment(ctx context.Context, postID int64, content string) (models.Comment, error) {
	if err := models.ValidateCommentContent(content); err != nil {
		return models.Comment{}, validationError(err)
	}
	var comment models.Comment
	body := map[string]string{"content": content}
	if err := c.doJSON(ctx, "create_comment", http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), body, true, &comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment by identifier.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete_comment", http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, true, nil)
}

// ToggleLike flips the viewer's like on a post and returns the new state.
// The caller adjusts the displayed count by one rather than refetching.
func (c *Client) ToggleLike(ctx context.Context, postID int64) (models.LikeResult, error) {
	var result models.LikeResult
	if err := c.doJSON(ctx, "toggle_like", http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, true, &result); err != nil {
		return models.LikeResult{}, err
	}
	return result, nil
}

// doJSON encodes body as JSON (when non-nil) and performs the request.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, reader, contentType, authed, out)
}

// do performs a single HTTP call and decodes the JSON response into out when
// out is non-nil. Non-2xx responses are normalized into *Error.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, authed bool, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, method, path, body, contentType, authed, out)
	duration := time.Since(start)

	c.metrics.observe(op, CodeOf(err), err == nil, duration)
	if err != nil {
		c.logger.Warn("request failed",
			"operation", op,
			"method", method,
			"path", path,
			"code", CodeOf(err),
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return err
	}
	c.logger.Debug("request ok",
		"operation", op,
		"method", method,
		"path", path,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool, out any) error {
	target, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	// JoinPath strips trailing slashes; the create-post endpoint keeps one.
	if path[len(path)-1] == '/' && target[len(target)-1] != '/' {
		target += "/"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.New().String())

	if authed {
		token, err := c.sessions.Token(ctx)
		if err != nil {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
