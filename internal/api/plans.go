package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/coachx/coachx/internal/coach"
	"github.com/coachx/coachx/internal/plans"
	"github.com/coachx/coachx/internal/profile"
)

// MaxCustomNotesLength bounds the free-form plan requirements field.
const MaxCustomNotesLength = 1000

// PlanService generates workout plans; *coach.PlanGenerator satisfies it.
type PlanService interface {
	Generate(ctx context.Context, prof profile.Profile, durationWeeks int, customNotes string) (coach.GeneratedPlan, error)
}

// PlanStore persists generated plans; *plans.Store satisfies it.
type PlanStore interface {
	Save(ctx context.Context, generated coach.GeneratedPlan, durationWeeks int) (plans.Plan, error)
	List(ctx context.Context) ([]plans.Plan, error)
	Activate(ctx context.Context, id uuid.UUID) (plans.Plan, error)
	Active(ctx context.Context) (plans.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type planHandler struct {
	generator PlanService
	store     PlanStore
	profiles  ProfileReader
	logger    *slog.Logger
}

// GeneratePlanRequest is the plan generation request body.
type GeneratePlanRequest struct {
	DurationWeeks int    `json:"duration_weeks"`
	CustomNotes   string `json:"custom_notes,omitempty"`
}

func (h *planHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.DurationWeeks == 0 {
		req.DurationWeeks = 1
	}
	if req.DurationWeeks < coach.MinPlanWeeks || req.DurationWeeks > coach.MaxPlanWeeks {
		writeError(w, http.StatusBadRequest, "invalid_request", "duration_weeks must be between 1 and 12")
		return
	}
	if len(req.CustomNotes) > MaxCustomNotesLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "custom_notes too long")
		return
	}

	prof, err := h.profiles.Get(r.Context())
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "profile_required", "user profile not found, complete onboarding first")
			return
		}
		h.logger.Error("loading profile for plan generation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	generated, err := h.generator.Generate(r.Context(), prof, req.DurationWeeks, req.CustomNotes)
	if err != nil {
		writeGenerationError(w, h.logger, err)
		return
	}

	plan, err := h.store.Save(r.Context(), generated, req.DurationWeeks)
	if err != nil {
		h.logger.Error("saving generated plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save plan")
		return
	}

	h.logger.Info("workout plan generated", "id", plan.ID, "title", plan.Title, "weeks", plan.DurationWeeks)
	writeJSON(w, http.StatusCreated, plan)
}

// PlanSummary is the list representation: everything but the bulky structure.
type PlanSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DurationWeeks int       `json:"duration_weeks"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *planHandler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("listing plans", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list plans")
		return
	}

	summaries := make([]PlanSummary, 0, len(all))
	var activeID *uuid.UUID
	for _, p := range all {
		if p.Status == plans.StatusActive {
			id := p.ID
			activeID = &id
		}
		summaries = append(summaries, PlanSummary{
			ID:            p.ID,
			Title:         p.Title,
			Description:   p.Description,
			DurationWeeks: p.DurationWeeks,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plans":          summaries,
		"total":          len(summaries),
		"active_plan_id": activeID,
	})
}

func (h *planHandler) active(w http.ResponseWriter, r *http.Request) {
	plan, err := h.store.Active(r.Context())
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no active workout plan")
			return
		}
		h.logger.Error("loading active plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load active plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *planHandler) activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid plan id")
		return
	}

	plan, err := h.store.Activate(r.Context(), id)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout plan not found")
			return
		}
		h.logger.Error("activating plan", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to activate plan")
		return
	}

	h.logger.Info("workout plan activated", "id", plan.ID, "title", plan.Title)
	writeJSON(w, http.StatusOK, plan)
}

func (h *planHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid plan id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout plan not found")
			return
		}
		h.logger.Error("deleting plan", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete plan")
		return
	}

	h.logger.Info("workout plan deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
