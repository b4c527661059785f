package rag

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters for knowledge base documents.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// boundarySeparators are tried in order when looking for a place to cut a
// chunk: paragraph break, then line break, then word break.
var boundarySeparators = []string{"\n\n", "\n", " "}

// Splitter cuts document text into overlapping fixed-size chunks, preferring
// natural boundaries over hard cuts.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a Splitter. Non-positive size or negative overlap fall
// back to the defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split slices text into chunks of at most chunkSize bytes with chunkOverlap
// bytes of overlap between consecutive chunks. Each cut point is moved back to
// the nearest paragraph, line, or word boundary inside the window; only
// boundary-free text is cut mid-word, and never inside a multi-byte rune.
// Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(content) {
		end := start + s.chunkSize
		if end >= len(content) {
			end = len(content)
		} else {
			// The window limit must not land inside a multi-byte rune.
			for end > start && !utf8.RuneStart(content[end]) {
				end--
			}
			if end == start {
				_, size := utf8.DecodeRuneInString(content[start:])
				end = start + size
			}
			end = s.cutPoint(content, start, end)
		}

		chunk := strings.TrimSpace(content[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(content) {
			break
		}

		next := end - s.chunkOverlap
		if next <= start {
			// Overlap would stall the window; force progress.
			next = end
		}
		for next < len(content) && !utf8.RuneStart(content[next]) {
			next++
		}
		start = next
	}

	return chunks
}

// cutPoint finds where to end the chunk starting at start whose hard limit is
// end. It tries each boundary separator in preference order and takes the
// last occurrence inside the window; the boundary must land in the second
// half of the window so chunks stay reasonably sized.
func (s *Splitter) cutPoint(content string, start, end int) int {
	window := content[start:end]
	minCut := len(window) / 2

	for _, sep := range boundarySeparators {
		if idx := strings.LastIndex(window, sep); idx > minCut {
			return start + idx + len(sep)
		}
	}
	return end
}
