package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachx/coachx/internal/coach"
	"github.com/coachx/coachx/internal/profile"
)

func TestNewServer_RequiresCollaborators(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestReadyEndpoint_NoDatabase(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates id", func(t *testing.T) {
		handler := requestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		got := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})

	t.Run("reuses valid id", func(t *testing.T) {
		want := uuid.New().String()
		handler := requestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, want, requestIDFromContext(r.Context()))
		}))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", want)
		handler.ServeHTTP(w, r)

		assert.Equal(t, want, w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces invalid id", func(t *testing.T) {
		handler := requestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "not-a-uuid")
		handler.ServeHTTP(w, r)

		got := w.Header().Get("X-Request-ID")
		assert.NotEqual(t, "not-a-uuid", got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := newTestServer(t, ServerConfig{
		Chat: panickingChat{},
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	srv.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, ServerConfig{RateBurst: 2})

	var lastCode int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
		r.RemoteAddr = "10.1.2.3:5000"
		srv.Handler().ServeHTTP(w, r)
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestRateLimit_PerIP(t *testing.T) {
	rl := newRateLimiter(1.0, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "a different IP gets its own bucket")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:1234"
	r.Header.Set("X-Real-IP", "203.0.113.7")

	assert.Equal(t, "192.0.2.10", clientIP(r, false), "proxy headers ignored without trust")
	assert.Equal(t, "203.0.113.7", clientIP(r, true))

	r.Header.Set("X-Real-IP", "not-an-ip")
	r.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientIP(r, true), "invalid X-Real-IP falls back to X-Forwarded-For")
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, ServerConfig{CORSOrigins: []string{"http://localhost:3000"}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	srv.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	r.Header.Set("Origin", "http://evil.example")
	srv.Handler().ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// panickingChat triggers the recovery middleware.
type panickingChat struct{}

func (panickingChat) Respond(_ context.Context, _, _ string, _ []coach.Turn, _ profile.Profile) (string, error) {
	panic("boom")
}
