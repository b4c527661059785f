package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachx/coachx/internal/profile"
)

func putJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, r)
	return w
}

func TestGetProfile(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{
			Profiles: &fakeProfileStore{getErr: profile.ErrNotFound},
		})

		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("found", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{
			Profiles: &fakeProfileStore{prof: profile.Profile{
				Age:          28,
				PrimarySport: "boxing",
				FitnessGoals: []string{"endurance"},
			}},
		})

		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var got profile.Profile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 28, got.Age)
		assert.Equal(t, "boxing", got.PrimarySport)
	})
}

func TestPutProfile(t *testing.T) {
	t.Run("saves and echoes", func(t *testing.T) {
		store := &fakeProfileStore{}
		srv := newTestServer(t, ServerConfig{Profiles: store})

		w := putJSON(t, srv, "/api/profile", `{
			"age": 28,
			"primary_sport": "crossfit",
			"experience_level": "intermediate",
			"available_days_per_week": 4,
			"fitness_goals": ["strength"]
		}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, store.saved)
		assert.Equal(t, "crossfit", store.saved.PrimarySport)
		assert.Equal(t, 4, store.saved.AvailableDaysPerWeek)

		var echoed profile.Profile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &echoed))
		assert.Equal(t, 28, echoed.Age)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"not json", `nope`},
			{"negative age", `{"age": -1}`},
			{"implausible age", `{"age": 150}`},
			{"too many days", `{"available_days_per_week": 8}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := &fakeProfileStore{}
				srv := newTestServer(t, ServerConfig{Profiles: store})

				w := putJSON(t, srv, "/api/profile", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Nil(t, store.saved)
			})
		}
	})
}
