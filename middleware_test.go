package guardkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMiddlewareUnauthenticated tests the default nil-principal extractor
func TestMiddlewareUnauthenticated(t *testing.T) {
	svc := NewService(nil, Config{DefaultGuard: "web"})
	mw := NewMiddleware(svc)

	handler := mw.RequirePermission("posts.edit")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestMiddlewareAuthenticate tests principal extraction and team stamping
func TestMiddlewareAuthenticate(t *testing.T) {
	svc := NewService(nil, Config{DefaultGuard: "web", Teams: true})
	mw := NewMiddleware(svc,
		WithPrincipalExtractor(func(r *http.Request) Principal {
			return NewBasicPrincipal("user", "42", "web")
		}),
		WithTeamExtractor(TeamFromHeader("X-Team-ID")),
	)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("X-Team-ID", "team-1")
	rec := httptest.NewRecorder()

	principal, req, ok := mw.authenticate(rec, req)
	assert.True(t, ok)
	assert.Equal(t, NewPrincipalRef("user", "42"), principal.Ref())
	assert.Equal(t, "team-1", TeamIDFromContext(req.Context()))

	// No header: context stays team-free.
	bare := httptest.NewRequest(http.MethodGet, "/posts", nil)
	_, bare, ok = mw.authenticate(httptest.NewRecorder(), bare)
	assert.True(t, ok)
	assert.Equal(t, "", TeamIDFromContext(bare.Context()))
}

// TestDefaultErrorHandler tests the error → status mapping
func TestDefaultErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "Guard mismatch", err: &GuardError{Expected: "web", Accepted: []string{"api"}}, expected: http.StatusForbidden},
		{name: "Not found", err: NewError(ErrNotFound, "no such role"), expected: http.StatusBadRequest},
		{name: "Invalid argument", err: NewError(ErrInvalidArgument, "bad pattern"), expected: http.StatusBadRequest},
		{name: "Unknown error", err: errors.New("connection refused"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			defaultErrorHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

// TestTeamExtractors tests the header and query helpers
func TestTeamExtractors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts?team=team-q", nil)
	req.Header.Set("X-Team-ID", "team-h")

	assert.Equal(t, "team-h", TeamFromHeader("X-Team-ID")(req))
	assert.Equal(t, "", TeamFromHeader("X-Missing")(req))
	assert.Equal(t, "team-q", TeamFromQuery("team")(req))
	assert.Equal(t, "", TeamFromQuery("missing")(req))
}
