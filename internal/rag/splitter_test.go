package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_EmptyInput(t *testing.T) {
	t.Parallel()

	s := NewSplitter(500, 50)
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestSplitter_ShortInputSingleChunk(t *testing.T) {
	t.Parallel()

	s := NewSplitter(500, 50)
	chunks := s.Split("A short note about warming up before sparring.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short note about warming up before sparring.", chunks[0])
}

func TestSplitter_RespectsChunkSize(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 100)
	s := NewSplitter(500, 50)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 500, "chunk %d too long", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestSplitter_PrefersParagraphBoundary(t *testing.T) {
	t.Parallel()

	para1 := strings.Repeat("a", 300)
	para2 := strings.Repeat("b", 300)
	text := para1 + "\n\n" + para2

	s := NewSplitter(500, 50)
	chunks := s.Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	// The first cut lands on the paragraph break, not mid-paragraph.
	assert.Equal(t, para1, chunks[0])
}

func TestSplitter_WordBoundaryFallback(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 200) // no paragraph or line breaks
	s := NewSplitter(500, 50)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		// Every chunk starts and ends on a whole word.
		assert.False(t, strings.HasPrefix(chunk, "ord"), "chunk cut mid-word: %q", chunk[:10])
		assert.True(t, strings.HasSuffix(chunk, "word"), "chunk cut mid-word: %q", chunk[len(chunk)-10:])
	}
}

func TestSplitter_OverlapCarriesText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("overlap test sentence ", 100)
	s := NewSplitter(200, 50)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share text: the tail of one appears in the next.
	tail := chunks[0][len(chunks[0])-20:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitter_BoundaryFreeTextMakesProgress(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 2000) // no boundaries at all
	s := NewSplitter(500, 50)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	var total int
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 500)
		total += len(chunk)
	}
	assert.GreaterOrEqual(t, total, 2000, "overlapping chunks must cover all input")
}

func TestSplitter_MultiByteTextStaysValidUTF8(t *testing.T) {
	t.Parallel()

	// Boundary-free accented text: the window limit lands mid-rune and must
	// back up instead of cutting the byte sequence.
	text := "x" + strings.Repeat("é", 600)
	s := NewSplitter(500, 50)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d contains invalid UTF-8", i)
		assert.LessOrEqual(t, len(chunk), 500, "chunk %d too long", i)
	}
}

func TestNewSplitter_DefaultsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	s := NewSplitter(0, -1)
	assert.Equal(t, DefaultChunkSize, s.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, s.chunkOverlap)

	// Overlap >= size is unusable; falls back to the default overlap.
	s = NewSplitter(100, 100)
	assert.Equal(t, 100, s.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, s.chunkOverlap)
}
