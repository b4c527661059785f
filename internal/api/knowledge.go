package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coachx/coachx/internal/rag"
)

// Retrieval query bounds.
const (
	MaxQueryLength = 1000
	DefaultTopK    = 3
	MaxTopK        = 20
)

// KnowledgeLoader rebuilds the knowledge index from source documents.
type KnowledgeLoader interface {
	Load(ctx context.Context, forceReload bool) error
}

// KnowledgeStats exposes index counters.
type KnowledgeStats interface {
	Count(ctx context.Context) (int64, error)
	CountBySport(ctx context.Context) (map[string]int64, error)
}

// PassageFinder answers similarity queries; *rag.Retriever satisfies it.
type PassageFinder interface {
	Query(ctx context.Context, text string, sport string, topK int) ([]rag.Passage, error)
}

type knowledgeHandler struct {
	loader KnowledgeLoader
	stats  KnowledgeStats
	finder PassageFinder
	logger *slog.Logger
}

// reload rebuilds the index from scratch.
func (h *knowledgeHandler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.loader.Load(r.Context(), true); err != nil {
		h.logger.Error("knowledge reload failed", "error", err)

		var cfgErr *rag.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusInternalServerError, "configuration_error", "knowledge base directory is not available")
			return
		}
		writeError(w, http.StatusInternalServerError, "reload_failed", "failed to reload knowledge base")
		return
	}

	total, err := h.stats.Count(r.Context())
	if err != nil {
		h.logger.Error("counting chunks after reload", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "failed to read index stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "reloaded",
		"total_chunks": total,
	})
}

// getStats returns index counters, overall and per sport.
func (h *knowledgeHandler) getStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.stats.Count(r.Context())
	if err != nil {
		h.logger.Error("counting chunks", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "failed to read index stats")
		return
	}
	bySport, err := h.stats.CountBySport(r.Context())
	if err != nil {
		h.logger.Error("counting chunks by sport", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "failed to read index stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_chunks": total,
		"by_sport":     bySport,
	})
}

// QueryRequest is the retrieval request body.
type QueryRequest struct {
	Query string `json:"query"`
	Sport string `json:"sport,omitempty"`
	TopK  int    `json:"top_k,omitempty"`
}

// query runs a similarity search and returns scored passages.
func (h *knowledgeHandler) query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	if len(req.Query) > MaxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "query too long")
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	passages, err := h.finder.Query(r.Context(), req.Query, req.Sport, topK)
	if err != nil {
		h.logger.Error("retrieval query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query_failed", "retrieval failed")
		return
	}
	if passages == nil {
		passages = []rag.Passage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":         req.Query,
		"sport":         req.Sport,
		"top_k":         topK,
		"results_count": len(passages),
		"results":       passages,
	})
}
