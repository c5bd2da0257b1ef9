package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/booruoss/booru/internal/core/audit"
	"github.com/booruoss/booru/internal/core/duplicate"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/tag"
	"github.com/booruoss/booru/internal/jobs"
	"github.com/booruoss/booru/internal/platform/config"
	"github.com/booruoss/booru/internal/platform/constants"
	"github.com/booruoss/booru/internal/platform/middleware"
)

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups all domain-specific HTTP handler sets. New domains add a
// field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /healthz handler — always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /readyz handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Library manages configured scan roots and their ignored prefixes.
	Library *library.Handler

	// Tag manages the tag vocabulary and tag categories.
	Tag *tag.Handler

	// Duplicate exposes duplicate-group listing and resolution actions.
	Duplicate *duplicate.Handler

	// Jobs exposes the derived-data job engine's control surface.
	Jobs *jobs.Handler

	// Audit exposes the read-only post change history.
	Audit *audit.Handler
}

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	rte := chi.NewRouter()

	// # Middleware Chain
	rte.Use(middleware.RequestID())
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	rte.Use(middleware.RateLimit(ctx))
	rte.Use(middleware.PanicRecovery(log))
	rte.Use(middleware.CORS(cfg))
	rte.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	rte.Get("/healthz", h.Liveness)
	rte.Get("/readyz", h.Readiness)

	// # Application API
	rte.Route("/api/v1", func(api chi.Router) {
		api.Route("/libraries", h.Library.RegisterRoutes)
		api.Route("/tags", h.Tag.RegisterRoutes)
		api.Route("/duplicate-groups", h.Duplicate.RegisterRoutes)
		api.Route("/jobs", h.Jobs.RegisterRoutes)
		api.Route("/audit", h.Audit.RegisterRoutes)
	})

	return &Server{
		router: rte,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           rte,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server is
// closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
