package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachx/coachx/db"
	"github.com/coachx/coachx/internal/coach"
	"github.com/coachx/coachx/internal/config"
	"github.com/coachx/coachx/internal/database"
	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/knowledge"
	"github.com/coachx/coachx/internal/plans"
	"github.com/coachx/coachx/internal/profile"
	"github.com/coachx/coachx/internal/rag"
)

// app holds the wired application components shared by the CLI commands.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool

	gemini    *gemini.Client
	knowledge *knowledge.Store
	loader    *rag.Loader
	retriever *rag.Retriever
	assistant *coach.Assistant
	planGen   *coach.PlanGenerator
	planStore *plans.Store
	profiles  *profile.Store
}

// setup loads configuration, migrates the schema and wires all components.
// Migrations run before the pool is created: every pool connection registers
// the pgvector types, which requires the vector extension to exist.
func setup(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.ConnString()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.ModelName,
		EmbedderModel: cfg.EmbedderModel,
		Temperature:   cfg.Temperature,
		TopP:          cfg.TopP,
		TopK:          cfg.TopK,
	}, logger)

	store := knowledge.New(pool, logger)
	splitter := rag.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	loader := rag.NewLoader(store, client, splitter, cfg.KnowledgeDir, logger)
	retriever := rag.NewRetriever(store, client, logger)

	return &app{
		cfg:       cfg,
		pool:      pool,
		gemini:    client,
		knowledge: store,
		loader:    loader,
		retriever: retriever,
		assistant: coach.NewAssistant(retriever, client, cfg.ChatMaxTokens, logger),
		planGen:   coach.NewPlanGenerator(retriever, client, cfg.PlanMaxTokens, logger),
		planStore: plans.NewStore(pool),
		profiles:  profile.NewStore(pool),
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}
