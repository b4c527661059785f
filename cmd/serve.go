package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/coachx/coachx/internal/api"
	"github.com/coachx/coachx/internal/observability"
)

// ErrInvalidAddr indicates a malformed serve listen address.
var ErrInvalidAddr = errors.New("invalid listen address")

// parseServeAddr returns the listen address from args, defaulting to
// api.DefaultAddr. The address must be host:port with a numeric port.
func parseServeAddr(args []string) (string, error) {
	if len(args) == 0 {
		return api.DefaultAddr, nil
	}

	addr := args[0]
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidAddr, addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("%w: %q: port out of range", ErrInvalidAddr, addr)
	}
	return addr, nil
}

// runServe initializes and starts the HTTP API server.
func runServe(args []string) error {
	addr, err := parseServeAddr(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting CoachX API server", "version", Version)

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.close()

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		Enabled:     a.cfg.Tracing.Endpoint != "",
		Endpoint:    a.cfg.Tracing.Endpoint,
		ServiceName: a.cfg.Tracing.ServiceName,
		Environment: a.cfg.Tracing.Environment,
	}, logger)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces", "error", err)
		}
	}()

	// Startup ingestion is best effort: a missing knowledge directory or an
	// unreachable embedding API must not keep the server from coming up. The
	// index can be (re)built later via POST /api/knowledge/reload.
	if err := a.loader.Load(ctx, false); err != nil {
		logger.Warn("startup knowledge ingestion failed, continuing", "error", err)
	}

	srv, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Loader:      a.loader,
		Stats:       a.knowledge,
		Finder:      a.retriever,
		Chat:        a.assistant,
		Plans:       a.planGen,
		PlanStore:   a.planStore,
		Profiles:    a.profiles,
		DB:          a.pool,
		CORSOrigins: a.cfg.CORSOrigins,
		TrustProxy:  a.cfg.TrustProxy,
		RateBurst:   a.cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	return srv.Run(ctx, addr, logger)
}
