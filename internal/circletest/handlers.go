package circletest

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/circleshare/circleshare/internal/auth"
	"github.com/circleshare/circleshare/internal/middleware"
	"github.com/circleshare/circleshare/internal/models"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := models.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}
	if err := models.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	user, err := s.authn.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, "email_exists", "Email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "unknown", "Registration failed")
		}
		return
	}

	// Every account owns a circle from the start, with the owner as its
	// first member.
	s.mu.Lock()
	c := &circle{
		id:        s.allocID(),
		creatorID: user.ID,
		name:      fmt.Sprintf("%s's Circle", user.Name),
		members:   map[int64]bool{user.ID: true},
	}
	s.circles[c.id] = c
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Account created successfully!",
		"user_id":   user.ID,
		"circle_id": c.id,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.authn.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid password")
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unknown", "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	joined := s.joinedCircles(viewerID)
	inJoined := make(map[int64]bool, len(joined))
	for _, id := range joined {
		inJoined[id] = true
	}
	posts := []models.Post{}
	for _, p := range s.posts {
		if inJoined[p.CircleID] && p.AuthorID != viewerID {
			posts = append(posts, s.postView(p, viewerID))
		}
	}
	s.mu.Unlock()

	sortPostsNewestFirst(posts)
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleMyPosts(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	posts := []models.Post{}
	for _, p := range s.posts {
		if p.AuthorID == viewerID {
			posts = append(posts, s.postView(p, viewerID))
		}
	}
	s.mu.Unlock()

	sortPostsNewestFirst(posts)
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	content := ""
	photoURL := ""
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid multipart body")
			return
		}
		content = r.FormValue("content")
		if file, header, err := r.FormFile("photo"); err == nil {
			// The real backend uploads to a CDN; here the bytes are drained
			// and a stable-looking URL is fabricated.
			io.Copy(io.Discard, file)
			file.Close()
			photoURL = "/photos/" + uuid.New().String() + suffixOf(header.Filename)
		}
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		content = req.Content
	}

	if err := models.ValidatePostContent(content); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	s.mu.Lock()
	c := s.circleOf(viewerID)
	if c == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "circle_not_found", "Circle not found")
		return
	}
	post := &models.Post{
		ID:         s.allocID(),
		CircleID:   c.id,
		AuthorID:   viewerID,
		AuthorName: s.users[viewerID].Name,
		Content:    content,
		PhotoURL:   photoURL,
		CreatedAt:  time.Now().UTC(),
	}
	s.posts[post.ID] = post
	view := s.postView(post, viewerID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

func suffixOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	if post.AuthorID != viewerID {
		writeError(w, http.StatusForbidden, "access_denied", "You don't have access to this operation")
		return
	}
	delete(s.posts, id)
	delete(s.likes, id)
	for cid, cm := range s.comments {
		if cm.PostID == id {
			delete(s.comments, cid)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.circleOf(viewerID)
	if c == nil {
		writeError(w, http.StatusNotFound, "circle_not_found", "Circle not found")
		return
	}
	members := []models.CircleMember{}
	for userID := range c.members {
		if userID == viewerID {
			continue
		}
		u := s.users[userID]
		members = append(members, models.CircleMember{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	sortMembers(members)
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.circleOf(viewerID)
	if c == nil {
		writeError(w, http.StatusNotFound, "circle_not_found", "Circle not found")
		return
	}
	inviteeID, ok := s.usersByMail[req.Email]
	if !ok {
		writeError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	if c.members[inviteeID] {
		writeError(w, http.StatusConflict, "already_member", "User already joined")
		return
	}
	for _, inv := range s.invitations {
		if inv.fromUserID == viewerID && inv.toUserID == inviteeID && inv.status == models.InvitationPending {
			writeError(w, http.StatusConflict, "invite_already_sent", "Invite already sent")
			return
		}
	}

	inv := &invitation{
		id:         s.allocID(),
		fromUserID: viewerID,
		toUserID:   inviteeID,
		status:     models.InvitationPending,
		createdAt:  time.Now().UTC(),
	}
	s.invitations[inv.id] = inv

	sender := s.users[viewerID]
	writeJSON(w, http.StatusOK, models.Invitation{
		ID:        inv.id,
		FromName:  sender.Name,
		FromEmail: sender.Email,
		Status:    inv.status,
		CreatedAt: inv.createdAt,
	})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.circleOf(viewerID)
	if c == nil {
		writeError(w, http.StatusNotFound, "circle_not_found", "Circle not found")
		return
	}
	if id == viewerID {
		writeError(w, http.StatusBadRequest, "validation_failed", "Cannot remove yourself")
		return
	}
	member, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "user_not_found", "User not found")
		return
	}
	if !c.members[id] {
		writeError(w, http.StatusBadRequest, "not_in_circle", "User is not a member of this circle")
		return
	}
	delete(c.members, id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("You have removed %s from your circle.", member.Name),
	})
}

func (s *Server) handleInvitations(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	pending := []models.Invitation{}
	for _, inv := range s.invitations {
		if inv.toUserID != viewerID || inv.status != models.InvitationPending {
			continue
		}
		sender := s.users[inv.fromUserID]
		pending = append(pending, models.Invitation{
			ID:        inv.id,
			FromName:  sender.Name,
			FromEmail: sender.Email,
			Status:    inv.status,
			CreatedAt: inv.createdAt,
		})
	}
	sortInvitations(pending)
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "invite_not_found", "Invitation not found")
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok || inv.toUserID != viewerID {
		writeError(w, http.StatusNotFound, "invite_not_found", "Invitation not found")
		return
	}
	if inv.status != models.InvitationPending {
		writeError(w, http.StatusConflict, "invite_responded", "Invitation already responded")
		return
	}

	switch req.Action {
	case models.InvitationAccept:
		// Membership is mutual: the invitee joins the sender's circle and
		// the sender joins the invitee's.
		if senderCircle := s.circleOf(inv.fromUserID); senderCircle != nil {
			senderCircle.members[viewerID] = true
		}
		if viewerCircle := s.circleOf(viewerID); viewerCircle != nil {
			viewerCircle.members[inv.fromUserID] = true
		}
		delete(s.invitations, id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "You've accepted the invitation"})
	case models.InvitationDecline:
		delete(s.invitations, id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "You've declined the invitation"})
	default:
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", fmt.Sprintf("invalid action %q", req.Action))
	}
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	comments := []models.Comment{}
	for _, cm := range s.comments {
		if cm.PostID == postID {
			comments = append(comments, *cm)
		}
	}
	sortCommentsOldestFirst(comments)
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := models.ValidateCommentContent(req.Content); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	cm := &models.Comment{
		ID:         s.allocID(),
		PostID:     postID,
		AuthorID:   viewerID,
		AuthorName: s.users[viewerID].Name,
		Content:    req.Content,
		CreatedAt:  time.Now().UTC(),
	}
	s.comments[cm.ID] = cm
	writeJSON(w, http.StatusOK, *cm)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown", "Comment not found")
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown", "Comment not found")
		return
	}
	if cm.AuthorID != viewerID {
		writeError(w, http.StatusForbidden, "access_denied", "You don't have access to this operation")
		return
	}
	delete(s.comments, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		writeError(w, http.StatusNotFound, "post_not_found", "Post not found")
		return
	}
	if s.likes[postID] == nil {
		s.likes[postID] = make(map[int64]bool)
	}
	liked := !s.likes[postID][viewerID]
	if liked {
		s.likes[postID][viewerID] = true
	} else {
		delete(s.likes[postID], viewerID)
	}
	writeJSON(w, http.StatusOK, models.LikeResult{Liked: liked})
}
