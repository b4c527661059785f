package knowledge

// Chunk is one bounded-size slice of a source document, the atomic unit stored
// and retrieved by the index. Chunks are immutable once ingested; a forced
// reload recreates them wholesale.
type Chunk struct {
	// ID is deterministic: {sport}_{document stem}_{sequence}. Re-ingestion
	// upserts the same IDs, which keeps loading idempotent. Two documents
	// sharing a stem within one sport directory collide and overwrite each
	// other; known limitation of the ID scheme.
	ID string

	Content     string
	Sport       string
	Source      string
	ChunkIndex  int
	TotalChunks int
}

// SearchResult is one nearest-neighbor match. Distance is cosine distance:
// lower means more similar.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}
