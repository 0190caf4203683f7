// Package circletest provides an in-memory implementation of the CircleShare
// backend contract. It exists for the integration tests and the local demo
// command; it is not the production backend. Semantics mirror the real
// service: registration auto-creates the user's circle, invitations join both
// circles on accept, the timeline shows other members' posts only.
package circletest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/circleshare/circleshare/internal/auth"
	"github.com/circleshare/circleshare/internal/middleware"
	"github.com/circleshare/circleshare/internal/models"
)

const tokenDuration = 24 * time.Hour

// circle is one user's circle and its member set.
type circle struct {
	id        int64
	creatorID int64
	name      string
	members   map[int64]bool
}

// invitation is a pending circle invitation.
type invitation struct {
	id         int64
	fromUserID int64
	toUserID   int64
	status     string
	createdAt  time.Time
}

// Server holds the in-memory world. All access goes through mu; handlers are
// safe for concurrent use.
type Server struct {
	jwt   *auth.JWTManager
	authn *auth.PasswordAuthenticator

	mu          sync.Mutex
	nextID      int64
	users       map[int64]*models.User
	usersByMail map[string]int64
	circles     map[int64]*circle
	invitations map[int64]*invitation
	posts       map[int64]*models.Post
	comments    map[int64]*models.Comment
	likes       map[int64]map[int64]bool // postID -> set of userIDs

	handler http.Handler
}

// New creates an empty server signing tokens with secret.
func New(secret string) *Server {
	s := &Server{
		jwt:         auth.NewJWTManager(secret, tokenDuration),
		users:       make(map[int64]*models.User),
		usersByMail: make(map[string]int64),
		circles:     make(map[int64]*circle),
		invitations: make(map[int64]*invitation),
		posts:       make(map[int64]*models.Post),
		comments:    make(map[int64]*models.Comment),
		likes:       make(map[int64]map[int64]bool),
	}
	s.authn = auth.NewPasswordAuthenticator(userStore{s})
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler serving the full REST contract.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SeedUser creates an account and its circle directly, bypassing the HTTP
// registration flow. Used by tests and the demo command to prepare fixtures
// whose passwords need not satisfy the client-side registration rules.
func (s *Server) SeedUser(name, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByMail[email]; exists {
		return 0, auth.ErrEmailExists
	}
	user := &models.User{
		ID:           s.allocID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		FirstAccess:  time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.usersByMail[email] = user.ID

	c := &circle{
		id:        s.allocID(),
		creatorID: user.ID,
		name:      fmt.Sprintf("%s's Circle", name),
		members:   map[int64]bool{user.ID: true},
	}
	s.circles[c.id] = c
	return user.ID, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)

	authed := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.RequireAuth(s.jwt, h))
	}
	authed("GET /timeline", s.handleTimeline)
	authed("GET /my-circle/posts", s.handleMyPosts)
	authed("POST /posts/", s.handleCreatePost)
	authed("DELETE /posts/{id}", s.handleDeletePost)
	authed("GET /my-circle/members", s.handleMembers)
	authed("POST /my-circle/invite", s.handleInvite)
	authed("DELETE /my-circle/members/{id}", s.handleRemoveMember)
	authed("GET /invitations/received", s.handleInvitations)
	authed("POST /invitations/{id}/respond", s.handleRespond)
	authed("GET /posts/{id}/comments", s.handleListComments)
	authed("POST /posts/{id}/comments", s.handleCreateComment)
	authed("DELETE /comments/{id}", s.handleDeleteComment)
	authed("POST /posts/{id}/like", s.handleToggleLike)

	return middleware.Logging(mux)
}

// userStore adapts the server's user map to auth.UserStorage.
type userStore struct{ s *Server }

func (u userStore) CreateUser(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user.ID = u.s.allocID()
	user.FirstAccess = time.Now().UTC()
	u.s.users[user.ID] = user
	u.s.usersByMail[user.Email] = user.ID
	return nil
}

func (u userStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	id, ok := u.s.usersByMail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u.s.users[id], nil
}

func (u userStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

// allocID hands out the next identifier. Callers must hold mu.
func (s *Server) allocID() int64 {
	s.nextID++
	return s.nextID
}

// circleOf returns the circle created by userID. Callers must hold mu.
func (s *Server) circleOf(userID int64) *circle {
	for _, c := range s.circles {
		if c.creatorID == userID {
			return c
		}
	}
	return nil
}

// joinedCircles returns the IDs of every circle userID belongs to.
// Callers must hold mu.
func (s *Server) joinedCircles(userID int64) []int64 {
	var ids []int64
	for id, c := range s.circles {
		if c.members[userID] {
			ids = append(ids, id)
		}
	}
	return ids
}

// postView fills in the viewer-dependent like fields. Callers must hold mu.
func (s *Server) postView(p *models.Post, viewerID int64) models.Post {
	view := *p
	view.LikeCount = len(s.likes[p.ID])
	view.ViewerLiked = s.likes[p.ID][viewerID]
	return view
}

// Timestamps can collide when entities are created back to back, so ordering
// ties break on the monotonically assigned IDs.
func sortPostsNewestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func sortCommentsOldestFirst(comments []models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}

func sortMembers(members []models.CircleMember) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].ID < members[j].ID
	})
}

func sortInvitations(invitations []models.Invitation) {
	sort.Slice(invitations, func(i, j int) bool {
		return invitations[i].ID < invitations[j].ID
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError emits the structured error body: a machine code plus the
// human-readable detail the older clients displayed verbatim.
func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"code": code, "detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}
