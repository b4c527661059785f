// Package rag implements the retrieval-augmented generation pipeline:
// knowledge base ingestion (chunk, embed, upsert), nearest-neighbor retrieval
// with sport filtering, and context formatting for prompt injection.
//
// The pipeline degrades gracefully: an absent or empty index produces "no
// context", never an error, so the assistant keeps answering from the model's
// own knowledge.
package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/coachx/coachx/internal/knowledge"
)

// Passage is one retrieved knowledge base passage with provenance. Transient:
// produced per query, never persisted.
type Passage struct {
	Text        string  `json:"text"`
	Sport       string  `json:"sport"`
	Source      string  `json:"source"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
	Distance    float64 `json:"distance"`
}

// ErrKnowledgeDirMissing indicates the knowledge base root directory does not
// exist. This is a configuration error: ingestion cannot proceed, but serving
// may continue with retrieval degraded.
var ErrKnowledgeDirMissing = errors.New("knowledge base directory not found")

// ConfigurationError wraps ingestion configuration problems so the boundary
// can distinguish them from generation failures.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Embedder turns text into fixed-length vectors. Implemented by
// gemini.Client; the interface lives here, at the consumer.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkStore is the slice of the knowledge store the pipeline needs.
type ChunkStore interface {
	Upsert(ctx context.Context, chunk knowledge.Chunk, embedding []float32) error
	Search(ctx context.Context, queryEmbedding []float32, topK int, sport string) ([]knowledge.SearchResult, error)
	Count(ctx context.Context) (int64, error)
	CountBySport(ctx context.Context) (map[string]int64, error)
	Clear(ctx context.Context) error
}
