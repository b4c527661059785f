package rag

import (
	"context"
	"sort"
	"sync"

	"github.com/coachx/coachx/internal/knowledge"
)

// memoryStore is an in-memory ChunkStore for tests. Search ranks by a fake
// distance derived from insertion order so ordering is deterministic.
type memoryStore struct {
	mu     sync.Mutex
	chunks map[string]knowledge.Chunk
	order  []string

	// unavailable simulates a missing index: Search returns nothing and
	// Count returns zero, mirroring the degraded-table behavior.
	unavailable bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{chunks: make(map[string]knowledge.Chunk)}
}

func (m *memoryStore) Upsert(_ context.Context, chunk knowledge.Chunk, _ []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.chunks[chunk.ID]; !exists {
		m.order = append(m.order, chunk.ID)
	}
	m.chunks[chunk.ID] = chunk
	return nil
}

func (m *memoryStore) Search(_ context.Context, _ []float32, topK int, sport string) ([]knowledge.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, nil
	}

	var results []knowledge.SearchResult
	for i, id := range m.order {
		c := m.chunks[id]
		if sport != "" && c.Sport != sport {
			continue
		}
		results = append(results, knowledge.SearchResult{Chunk: c, Distance: float64(i) * 0.1})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *memoryStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return 0, nil
	}
	return int64(len(m.chunks)), nil
}

func (m *memoryStore) CountBySport(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, c := range m.chunks {
		counts[c.Sport]++
	}
	return counts, nil
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[string]knowledge.Chunk)
	m.order = nil
	return nil
}

// stubEmbedder returns constant vectors without any API calls.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return []float32{1, 0, 0}, nil
}
