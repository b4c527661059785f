package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/coachx/coachx/internal/knowledge"
)

// loadBatchSize bounds how many chunks are embedded per API call.
const loadBatchSize = 32

// Loader ingests the knowledge base directory tree into the chunk store.
//
// The tree is organized as one subdirectory per sport category, each holding
// text documents:
//
//	knowledge_base/
//	    boxing/
//	        jab_basics.md
//	    crossfit/
//	        wod_programming.md
type Loader struct {
	store    ChunkStore
	embedder Embedder
	splitter *Splitter
	rootDir  string
	logger   *slog.Logger
}

// NewLoader creates a Loader. logger may be nil.
func NewLoader(store ChunkStore, embedder Embedder, splitter *Splitter, rootDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Loader{
		store:    store,
		embedder: embedder,
		splitter: splitter,
		rootDir:  rootDir,
		logger:   logger,
	}
}

// Load ingests the knowledge base. If the store already holds chunks and
// forceReload is false, Load is a no-op; with forceReload the store is
// cleared and rebuilt from scratch. Deterministic chunk IDs make repeated
// loads idempotent either way.
//
// A missing root directory is a *ConfigurationError.
func (l *Loader) Load(ctx context.Context, forceReload bool) error {
	count, err := l.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking existing chunks: %w", err)
	}

	if count > 0 {
		if !forceReload {
			l.logger.Info("knowledge base already loaded, skipping", "chunks", count)
			return nil
		}
		l.logger.Info("force reload requested, clearing existing chunks", "chunks", count)
		if err := l.store.Clear(ctx); err != nil {
			return fmt.Errorf("clearing chunks: %w", err)
		}
	}

	info, err := os.Stat(l.rootDir)
	if err != nil || !info.IsDir() {
		return &ConfigurationError{Err: fmt.Errorf("%w: %s", ErrKnowledgeDirMissing, l.rootDir)}
	}

	entries, err := os.ReadDir(l.rootDir)
	if err != nil {
		return fmt.Errorf("reading knowledge base directory: %w", err)
	}

	var total int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sport := entry.Name()

		n, err := l.loadSport(ctx, sport)
		if err != nil {
			return fmt.Errorf("loading %s: %w", sport, err)
		}
		total += n
	}

	l.logger.Info("knowledge base loaded", "chunks", total)
	return nil
}

// loadSport ingests all documents under one sport directory and returns the
// number of chunks stored.
func (l *Loader) loadSport(ctx context.Context, sport string) (int, error) {
	dir := filepath.Join(l.rootDir, sport)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading sport directory: %w", err)
	}

	var total int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return total, fmt.Errorf("reading %s: %w", name, err)
		}

		pieces := l.splitter.Split(string(content))
		if len(pieces) == 0 {
			continue
		}
		l.logger.Info("ingesting document", "sport", sport, "source", name, "chunks", len(pieces))

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		chunks := make([]knowledge.Chunk, len(pieces))
		for i, piece := range pieces {
			chunks[i] = knowledge.Chunk{
				ID:          fmt.Sprintf("%s_%s_%d", sport, stem, i),
				Content:     piece,
				Sport:       sport,
				Source:      name,
				ChunkIndex:  i,
				TotalChunks: len(pieces),
			}
		}

		if err := l.storeChunks(ctx, chunks); err != nil {
			return total, err
		}
		total += len(chunks)
	}

	return total, nil
}

// storeChunks embeds chunks in batches and upserts them.
func (l *Loader) storeChunks(ctx context.Context, chunks []knowledge.Chunk) error {
	for start := 0; start < len(chunks); start += loadBatchSize {
		end := min(start+loadBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		embeddings, err := l.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(batch))
		}

		for i, c := range batch {
			if err := l.store.Upsert(ctx, c, embeddings[i]); err != nil {
				return fmt.Errorf("storing chunk %s: %w", c.ID, err)
			}
		}
	}
	return nil
}
