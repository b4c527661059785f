package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachx/coachx/internal/knowledge"
	"github.com/coachx/coachx/internal/log"
)

func seedStore(t *testing.T, store *memoryStore) {
	t.Helper()

	chunks := []knowledge.Chunk{
		{ID: "boxing_jab_0", Content: "Keep the jab straight.", Sport: "boxing", Source: "jab.md", ChunkIndex: 0, TotalChunks: 2},
		{ID: "boxing_jab_1", Content: "Return to guard after every jab.", Sport: "boxing", Source: "jab.md", ChunkIndex: 1, TotalChunks: 2},
		{ID: "crossfit_wod_0", Content: "Scale before you fail.", Sport: "crossfit", Source: "wod.md", ChunkIndex: 0, TotalChunks: 1},
	}
	for _, c := range chunks {
		require.NoError(t, store.Upsert(context.Background(), c, []float32{1, 0, 0}))
	}
}

func TestRetriever_EmptyIndexReturnsEmptySlice(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	r := NewRetriever(store, &stubEmbedder{}, log.NewNop())

	passages, err := r.Query(context.Background(), "how do I jab?", "", 3)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestRetriever_UnavailableIndexReturnsEmptySlice(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	seedStore(t, store)
	store.unavailable = true

	r := NewRetriever(store, &stubEmbedder{}, log.NewNop())
	passages, err := r.Query(context.Background(), "how do I jab?", "boxing", 3)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestRetriever_FiltersBySport(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	seedStore(t, store)

	r := NewRetriever(store, &stubEmbedder{}, log.NewNop())
	passages, err := r.Query(context.Background(), "programming a workout", "crossfit", 5)
	require.NoError(t, err)

	require.Len(t, passages, 1)
	assert.Equal(t, "crossfit", passages[0].Sport)
	assert.Equal(t, "wod.md", passages[0].Source)
}

func TestRetriever_OrdersByDistanceAndLimits(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	seedStore(t, store)

	r := NewRetriever(store, &stubEmbedder{}, log.NewNop())
	passages, err := r.Query(context.Background(), "jab fundamentals", "", 2)
	require.NoError(t, err)

	require.Len(t, passages, 2)
	assert.LessOrEqual(t, passages[0].Distance, passages[1].Distance)
}

func TestRetriever_DefaultsTopK(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	seedStore(t, store)

	r := NewRetriever(store, &stubEmbedder{}, log.NewNop())
	passages, err := r.Query(context.Background(), "anything", "", 0)
	require.NoError(t, err)
	assert.Len(t, passages, 3)
}
