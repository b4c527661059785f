package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// searchTimeout bounds one retrieval round trip (embedding + vector search).
const searchTimeout = 10 * time.Second

// Retriever answers similarity queries against the knowledge store.
type Retriever struct {
	store    ChunkStore
	embedder Embedder
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. logger may be nil.
func NewRetriever(store ChunkStore, embedder Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Query returns the topK passages most similar to text, best match first
// (ascending cosine distance). sport, when non-empty, restricts results to
// that category.
//
// An unavailable or empty index yields an empty slice and nil error: "no
// context" is a valid, common case, not a failure.
func (r *Retriever) Query(ctx context.Context, text string, sport string, topK int) ([]Passage, error) {
	if topK < 1 {
		topK = 3
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	embedding, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.store.Search(ctx, embedding, topK, sport)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	passages := make([]Passage, 0, len(results))
	for _, res := range results {
		passages = append(passages, Passage{
			Text:        res.Chunk.Content,
			Sport:       res.Chunk.Sport,
			Source:      res.Chunk.Source,
			ChunkIndex:  res.Chunk.ChunkIndex,
			TotalChunks: res.Chunk.TotalChunks,
			Distance:    res.Distance,
		})
	}

	r.logger.Debug("retrieval finished", "query_length", len(text), "sport", sport, "results", len(passages))
	return passages, nil
}
