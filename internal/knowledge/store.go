// Package knowledge stores knowledge base chunks with vector search over
// PostgreSQL + pgvector.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// undefinedTableCode is the PostgreSQL SQLSTATE for "relation does not exist".
const undefinedTableCode = "42P01"

// DB is the subset of pgx operations the store needs. The interface is
// defined here, by the consumer; *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages knowledge chunks and their embeddings.
// Safe for concurrent use; all state lives in the database.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store. logger may be nil, in which case slog.Default is used.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Upsert inserts or replaces one chunk together with its embedding.
func (s *Store) Upsert(ctx context.Context, chunk Chunk, embedding []float32) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO knowledge_chunks (id, content, sport, source, chunk_index, total_chunks, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			content      = EXCLUDED.content,
			sport        = EXCLUDED.sport,
			source       = EXCLUDED.source,
			chunk_index  = EXCLUDED.chunk_index,
			total_chunks = EXCLUDED.total_chunks,
			embedding    = EXCLUDED.embedding`,
		chunk.ID, chunk.Content, chunk.Sport, chunk.Source,
		chunk.ChunkIndex, chunk.TotalChunks, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert chunk %q: %w", chunk.ID, err)
	}

	s.logger.Debug("upserted chunk", "id", chunk.ID, "content_length", len(chunk.Content))
	return nil
}

// Search returns the topK chunks nearest to queryEmbedding by cosine
// distance, best match first. When sport is non-empty, results are restricted
// to that category.
//
// A missing knowledge_chunks table yields an empty result, not an error: the
// pipeline must degrade to "no context" when the index has never been built.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, topK int, sport string) ([]SearchResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}

	vec := pgvector.NewVector(queryEmbedding)

	var rows pgx.Rows
	var err error
	if sport != "" {
		rows, err = s.db.Query(ctx, `
			SELECT id, content, sport, source, chunk_index, total_chunks,
			       embedding <=> $1 AS distance
			FROM knowledge_chunks
			WHERE sport = $2
			ORDER BY embedding <=> $1
			LIMIT $3`,
			vec, sport, topK)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT id, content, sport, source, chunk_index, total_chunks,
			       embedding <=> $1 AS distance
			FROM knowledge_chunks
			ORDER BY embedding <=> $1
			LIMIT $2`,
			vec, topK)
	}
	if err != nil {
		if isUndefinedTable(err) {
			s.logger.Warn("knowledge_chunks table missing, returning no results")
			return nil, nil
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Chunk.ID, &r.Chunk.Content, &r.Chunk.Sport, &r.Chunk.Source,
			&r.Chunk.ChunkIndex, &r.Chunk.TotalChunks, &r.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	return results, nil
}

// Count returns the total number of stored chunks. A missing table counts as
// zero so callers can use Count to decide whether ingestion is needed.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&count)
	if err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// CountBySport returns chunk counts per sport category.
func (s *Store) CountBySport(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT sport, COUNT(*) FROM knowledge_chunks GROUP BY sport`)
	if err != nil {
		if isUndefinedTable(err) {
			return map[string]int64{}, nil
		}
		return nil, fmt.Errorf("count by sport failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var sport string
		var count int64
		if err := rows.Scan(&sport, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[sport] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	return counts, nil
}

// Clear removes all chunks. Used by forced reloads to rebuild the index from
// scratch.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `TRUNCATE knowledge_chunks`); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	s.logger.Info("cleared knowledge chunks")
	return nil
}

// isUndefinedTable reports whether err is PostgreSQL's undefined_table error.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}
