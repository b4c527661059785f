package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coachx/coachx/internal/profile"
)

// ProfileStore reads and writes the user profile; *profile.Store satisfies
// it.
type ProfileStore interface {
	ProfileReader
	Upsert(ctx context.Context, p profile.Profile) error
}

type profileHandler struct {
	store  ProfileStore
	logger *slog.Logger
}

func (h *profileHandler) get(w http.ResponseWriter, r *http.Request) {
	prof, err := h.store.Get(r.Context())
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		h.logger.Error("loading profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

func (h *profileHandler) put(w http.ResponseWriter, r *http.Request) {
	var prof profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&prof); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if prof.Age < 0 || prof.Age > 120 {
		writeError(w, http.StatusBadRequest, "invalid_request", "age out of range")
		return
	}
	if prof.AvailableDaysPerWeek < 0 || prof.AvailableDaysPerWeek > 7 {
		writeError(w, http.StatusBadRequest, "invalid_request", "available_days_per_week out of range")
		return
	}

	if err := h.store.Upsert(r.Context(), prof); err != nil {
		h.logger.Error("saving profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save profile")
		return
	}

	h.logger.Info("profile updated")
	writeJSON(w, http.StatusOK, prof)
}
