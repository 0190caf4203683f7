package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/circleshare/circleshare/internal/models"
	"github.com/circleshare/circleshare/internal/storage"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := storage.NewMemoryStore()
	if token != "" {
		if err := sessions.SetToken(context.Background(), token); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}
	}

	return New(server.URL, sessions)
}

func TestAuthenticatedCallsFailWithoutToken(t *testing.T) {
	// The handler fails the test: no request may reach the network when the
	// session store is empty.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call to %s %s", r.Method, r.URL.Path)
	}), "")

	ctx := context.Background()
	calls := map[string]func() error{
		"Timeline":          func() error { _, err := client.Timeline(ctx); return err },
		"MyPosts":           func() error { _, err := client.MyPosts(ctx); return err },
		"CreatePost":        func() error { _, err := client.CreatePost(ctx, "hi", nil); return err },
		"DeletePost":        func() error { return client.DeletePost(ctx, 1) },
		"Members":           func() error { _, err := client.Members(ctx); return err },
		"Invite":            func() error { return client.Invite(ctx, "a@b.com") },
		"RemoveMember":      func() error { return client.RemoveMember(ctx, 1) },
		"Invitations":       func() error { _, err := client.Invitations(ctx); return err },
		"RespondInvitation": func() error { return client.RespondInvitation(ctx, 1, models.InvitationAccept) },
		"Comments":          func() error { _, err := client.Comments(ctx, 1); return err },
		"CreateComment":     func() error { _, err := client.CreateComment(ctx, 1, "hi"); return err },
		"DeleteComment":     func() error { return client.DeleteComment(ctx, 1) },
		"ToggleLike":        func() error { _, err := client.ToggleLike(ctx, 1); return err },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrNoToken) {
			t.Errorf("%s: expected ErrNoToken, got %v", name, err)
		}
	}
}

func TestBearerAndRequestIDAttached(t *testing.T) {
	var gotAuth, gotReqID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`[]`))
	}), "tok-123")

	if _, err := client.Timeline(context.Background()); err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization: expected 'Bearer tok-123', got '%s'", gotAuth)
	}
	if gotReqID == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestErrorParsingPrefersCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"user_not_found","detail":"User not found"}`))
	}), "tok")

	err := client.Invite(context.Background(), "ghost@nowhere.com")
	apiErr := AsError(err)
	if apiErr == nil {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Code != CodeUserNotFound {
		t.Errorf("code: expected %s, got %s", CodeUserNotFound, apiErr.Code)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("status: expected 404, got %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Message, "not found") {
		t.Errorf("message should contain 'not found', got '%s'", apiErr.Message)
	}
}

func TestErrorParsingLegacyDetail(t *testing.T) {
	// Older servers send only detail text; the code is inferred centrally.
	cases := []struct {
		status int
		body   string
		code   string
	}{
		{404, `{"detail":"User not found"}`, CodeUserNotFound},
		{409, `{"detail":"Email already registered"}`, CodeEmailExists},
		{409, `{"detail":"User already joined"}`, CodeAlreadyMember},
		{409, `{"detail":"Invite already sent"}`, CodeInviteAlreadySent},
		{401, `{"detail":"Invalid password"}`, CodeInvalidCredentials},
		{403, `{"detail":"You don't have access to this operation"}`, CodeAccessDenied},
		{500, `plain text failure`, CodeUnknown},
	}

	for _, tc := range cases {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}), "tok")

		err := client.Invite(context.Background(), "x@y.com")
		apiErr := AsError(err)
		if apiErr == nil {
			t.Fatalf("body %q: expected *Error, got %v", tc.body, err)
		}
		if apiErr.Code != tc.code {
			t.Errorf("body %q: expected code %s, got %s", tc.body, tc.code, apiErr.Code)
		}
	}
}

func TestLocalValidationBlocksNetwork(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call to %s", r.URL.Path)
	}), "tok")
	ctx := context.Background()

	long := strings.Repeat("x", models.MaxPostContentLen+1)
	if _, err := client.CreatePost(ctx, long, nil); CodeOf(err) != CodeValidation {
		t.Errorf("long post: expected validation error, got %v", err)
	}

	longComment := strings.Repeat("x", models.MaxCommentContentLen+1)
	if _, err := client.CreateComment(ctx, 1, longComment); CodeOf(err) != CodeValidation {
		t.Errorf("long comment: expected validation error, got %v", err)
	}

	if err := client.RespondInvitation(ctx, 1, "maybe"); CodeOf(err) != CodeValidation {
		t.Errorf("bogus action: expected validation error, got %v", err)
	}

	if err := client.Register(ctx, "Ann", "not-an-email", "longenough"); CodeOf(err) != CodeValidation {
		t.Errorf("bad email: expected validation error, got %v", err)
	}
	if err := client.Register(ctx, "Ann", "a@b.com", "short"); CodeOf(err) != CodeValidation {
		t.Errorf("weak password: expected validation error, got %v", err)
	}
	if err := client.Register(ctx, "  ", "a@b.com", "longenough"); CodeOf(err) != CodeValidation {
		t.Errorf("blank name: expected validation error, got %v", err)
	}
}

func TestCreatePostContentTypes(t *testing.T) {
	var gotContentType string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"post_id":1,"content":"hi"}`))
	}), "tok")
	ctx := context.Background()

	if _, err := client.CreatePost(ctx, "hi", nil); err != nil {
		t.Fatalf("JSON CreatePost failed: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected application/json, got %s", gotContentType)
	}

	photo := &PhotoUpload{Filename: "sunset.jpg", Reader: strings.NewReader("jpegbytes")}
	if _, err := client.CreatePost(ctx, "hi", photo); err != nil {
		t.Fatalf("multipart CreatePost failed: %v", err)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("expected multipart/form-data, got %s", gotContentType)
	}
}

func TestMetricsCountRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	sessions := storage.NewMemoryStore()
	sessions.SetToken(context.Background(), "tok")

	reg := prometheus.NewRegistry()
	client := New(server.URL, sessions, WithMetrics(NewMetrics(reg)))

	if _, err := client.Timeline(context.Background()); err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if _, err := client.Timeline(context.Background()); err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}

	count := testutil.ToFloat64(client.metrics.requests.WithLabelValues("timeline", "ok"))
	if count != 2 {
		t.Errorf("expected 2 ok timeline requests, got %v", count)
	}
}
