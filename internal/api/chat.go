package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coachx/coachx/internal/coach"
	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/profile"
)

// MaxMessageLength bounds one chat message.
const MaxMessageLength = 4000

// ChatService produces a domain-constrained reply; *coach.Assistant
// satisfies it.
type ChatService interface {
	Respond(ctx context.Context, query, sport string, history []coach.Turn, prof profile.Profile) (string, error)
}

// ProfileReader loads the stored user profile.
type ProfileReader interface {
	Get(ctx context.Context) (profile.Profile, error)
}

type chatHandler struct {
	chat     ChatService
	profiles ProfileReader
	logger   *slog.Logger
}

// ChatRequest is the chat request body. History is ordered oldest to newest.
type ChatRequest struct {
	Message string       `json:"message"`
	Sport   string       `json:"sport,omitempty"`
	History []coach.Turn `json:"history,omitempty"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "message too long")
		return
	}

	// Chat works without a profile; onboarding is not a prerequisite here.
	prof, err := h.profiles.Get(r.Context())
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		h.logger.Error("loading profile for chat", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	reply, err := h.chat.Respond(r.Context(), req.Message, req.Sport, req.History, prof)
	if err != nil {
		writeGenerationError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// writeGenerationError maps the generation error taxonomy to HTTP statuses:
// missing credentials are a service configuration problem, abnormal
// completions are an upstream failure.
func writeGenerationError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var authErr *gemini.AuthError
	if errors.As(err, &authErr) {
		logger.Error("generation unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "ai_not_configured", "AI service is not configured")
		return
	}

	var genErr *gemini.GenerationError
	if errors.As(err, &genErr) {
		logger.Error("generation failed", "reason", genErr.Reason, "error", err)
		writeError(w, http.StatusBadGateway, "generation_failed", "failed to generate a response")
		return
	}

	logger.Error("unexpected generation error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
