// Package api exposes the training assistant over HTTP.
//
// Endpoints:
//
//	GET    /health                    liveness probe
//	GET    /ready                     readiness probe (database ping)
//	POST   /api/knowledge/reload      force-rebuild the knowledge index
//	GET    /api/knowledge/stats       index counters
//	POST   /api/knowledge/query       similarity search
//	POST   /api/chat                  domain-constrained chat reply
//	POST   /api/plans/generate        generate and persist a workout plan
//	GET    /api/plans                 list plans
//	GET    /api/plans/active          currently active plan
//	POST   /api/plans/{id}/activate   activate one plan
//	DELETE /api/plans/{id}            delete a plan
//	GET    /api/profile               read the user profile
//	PUT    /api/profile               replace the user profile
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous: plan generation waits on the model.
	WriteTimeout = 120 * time.Second

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Logger *slog.Logger

	Loader    KnowledgeLoader // required
	Stats     KnowledgeStats  // required
	Finder    PassageFinder   // required
	Chat      ChatService     // required
	Plans     PlanService     // required
	PlanStore PlanStore       // required
	Profiles  ProfileStore    // required

	DB Pinger // optional: nil degrades /ready to 503

	CORSOrigins []string
	TrustProxy  bool
	RateBurst   int // 0 = default 60
}

// Server is the HTTP server for the training assistant API.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	switch {
	case cfg.Loader == nil, cfg.Stats == nil, cfg.Finder == nil:
		return nil, errors.New("knowledge collaborators are required")
	case cfg.Chat == nil:
		return nil, errors.New("chat service is required")
	case cfg.Plans == nil, cfg.PlanStore == nil:
		return nil, errors.New("plan collaborators are required")
	case cfg.Profiles == nil:
		return nil, errors.New("profile store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kh := &knowledgeHandler{loader: cfg.Loader, stats: cfg.Stats, finder: cfg.Finder, logger: logger}
	ch := &chatHandler{chat: cfg.Chat, profiles: cfg.Profiles, logger: logger}
	ph := &planHandler{generator: cfg.Plans, store: cfg.PlanStore, profiles: cfg.Profiles, logger: logger}
	prh := &profileHandler{store: cfg.Profiles, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/knowledge/reload", kh.reload)
	mux.HandleFunc("GET /api/knowledge/stats", kh.getStats)
	mux.HandleFunc("POST /api/knowledge/query", kh.query)
	mux.HandleFunc("POST /api/chat", ch.send)
	mux.HandleFunc("POST /api/plans/generate", ph.generate)
	mux.HandleFunc("GET /api/plans", ph.list)
	mux.HandleFunc("GET /api/plans/active", ph.active)
	mux.HandleFunc("POST /api/plans/{id}/activate", ph.activate)
	mux.HandleFunc("DELETE /api/plans/{id}", ph.delete)
	mux.HandleFunc("GET /api/profile", prh.get)
	mux.HandleFunc("PUT /api/profile", prh.put)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID precedes Logging so request_id is available in log lines;
	// CORS precedes RateLimit so preflight OPTIONS gets proper headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes stay outside the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.DB, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string, logger *slog.Logger) error {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
