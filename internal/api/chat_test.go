package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/profile"
)

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, r)
	return w
}

func TestChat_Success(t *testing.T) {
	chat := &fakeChat{reply: "Extend the jab fully."}
	profiles := &fakeProfileStore{prof: profile.Profile{PrimarySport: "boxing"}}
	srv := newTestServer(t, ServerConfig{Chat: chat, Profiles: profiles})

	w := postJSON(t, srv, "/api/chat", `{
		"message": "How do I improve my jab?",
		"sport": "boxing",
		"history": [{"role": "user", "content": "hello"}]
	}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Extend the jab fully.", resp.Reply)

	assert.Equal(t, "How do I improve my jab?", chat.query)
	assert.Equal(t, "boxing", chat.sport)
	require.Len(t, chat.history, 1)
	assert.Equal(t, "boxing", chat.prof.PrimarySport, "stored profile is forwarded")
}

func TestChat_MissingProfileIsFine(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	srv := newTestServer(t, ServerConfig{Chat: chat})

	w := postJSON(t, srv, "/api/chat", `{"message": "hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, chat.prof.IsZero())
}

func TestChat_Validation(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank message", `{"message": ""}`},
		{"not json", `nope`},
		{"too long", `{"message": "` + strings.Repeat("a", MaxMessageLength+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, srv, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "auth error",
			err:      &gemini.AuthError{Err: gemini.ErrMissingAPIKey},
			wantCode: http.StatusServiceUnavailable,
			wantBody: "ai_not_configured",
		},
		{
			name:     "generation error",
			err:      &gemini.GenerationError{Reason: "SAFETY"},
			wantCode: http.StatusBadGateway,
			wantBody: "generation_failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, ServerConfig{Chat: &fakeChat{err: tt.err}})

			w := postJSON(t, srv, "/api/chat", `{"message": "hi"}`)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			// Internal detail stays out of the response.
			assert.NotContains(t, w.Body.String(), "SAFETY")
		})
	}
}
