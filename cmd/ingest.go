package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
)

// runIngest loads the knowledge base into the vector index and exits.
// With --force the index is cleared and rebuilt from scratch; otherwise an
// already populated index is left untouched.
func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	force := fs.Bool("force", false, "clear the index and re-ingest everything")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.loader.Load(ctx, *force); err != nil {
		return fmt.Errorf("ingesting knowledge base: %w", err)
	}

	total, err := a.knowledge.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}
	bySport, err := a.knowledge.CountBySport(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks by sport: %w", err)
	}

	logger.Info("knowledge base ready", "total_chunks", total)
	for sport, n := range bySport {
		logger.Info("indexed", "sport", sport, "chunks", n)
	}
	return nil
}
