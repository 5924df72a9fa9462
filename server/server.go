// Package server assembles the HTTP server for the analysis API: middleware
// chain, routes, and the graceful shutdown sequence that drains in-flight
// requests before closing the listeners.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quantalabs/analysis-api/config"
	"github.com/quantalabs/analysis-api/handlers"
	"github.com/quantalabs/analysis-api/logging"
	"github.com/quantalabs/analysis-api/metrics"
	"github.com/quantalabs/analysis-api/shutdown"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	coordinator *shutdown.Coordinator
	metrics     *metrics.Registry
	config      *config.Config
	handler     *handlers.Handler
	limiter     *RateLimiter
}

// New creates a server instance with all middleware and routes wired.
func New(cfg *config.Config, coordinator *shutdown.Coordinator, registry *metrics.Registry, handler *handlers.Handler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:      router,
		coordinator: coordinator,
		metrics:     registry,
		config:      cfg,
		handler:     handler,
		limiter:     NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware. The tracker sits innermost so
// an admitted request is released only after the response is fully
// determined, and chi's Recoverer still renders panics as 500s outside it.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.Middleware(slog.Default()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(s.limiter.Handler)
	s.router.Use(RequestTracker(s.coordinator, s.metrics))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handler.Health)
	s.router.Get("/ready", s.handler.Ready)
	s.router.Post("/payload", s.handler.ProcessPayload)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
}

// Router exposes the assembled handler chain for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info("Starting server", "addr", s.server.Addr, "env", s.config.Env)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests, then closes the listeners. New
// admissions are rejected the moment the coordinator begins draining, so
// only requests admitted before the signal keep running. ctx carries the
// configured grace period; when it expires the server is force-closed.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...", "active_requests", s.coordinator.ActiveRequests())

	if err := s.coordinator.InitiateShutdown(ctx); err != nil {
		logging.Error("Drain did not complete within grace period",
			"error", err,
			"active_requests", s.coordinator.ActiveRequests())
	} else {
		logging.Info("All in-flight requests completed")
	}

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if closeErr := s.server.Close(); closeErr != nil {
			logging.Error("Server close error", "error", closeErr)
		}
		return err
	}

	logging.Info("Server shutdown complete")
	return nil
}
