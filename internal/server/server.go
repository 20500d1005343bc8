package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/accounts"
	"github.com/selivandex/situation-monitor/internal/adapters/config"
	"github.com/selivandex/situation-monitor/internal/refresh"
	"github.com/selivandex/situation-monitor/internal/signals"
	"github.com/selivandex/situation-monitor/internal/watchlist"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// TweetSource resolves a single tweet for the import flow
type TweetSource interface {
	GetTweetByID(ctx context.Context, tweetID string) (*models.Post, error)
}

// Analyzer runs an on-demand deep analysis of a signal
type Analyzer interface {
	AnalyzeSignal(ctx context.Context, signal *models.Signal) (*models.DeepAnalysis, error)
}

// HealthChecker reports backing-store health for the readiness probe
type HealthChecker interface {
	Health() error
}

// Deps carries the services the API is built on
type Deps struct {
	Accounts    *accounts.Service
	Signals     *signals.Service
	Watchlist   *watchlist.Service
	Refresher   *refresh.Orchestrator
	TweetSource TweetSource
	Analyzer    Analyzer
	Health      HealthChecker
}

// Server is the HTTP API surface
type Server struct {
	router *chi.Mux
	server *http.Server
	deps   Deps
}

// New creates a new HTTP server
func New(cfg *config.ServerConfig, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleAddAccount)
			r.Delete("/{id}", s.handleRemoveAccount)
		})

		r.Route("/signals", func(r chi.Router) {
			r.Get("/", s.handleListSignals)
			r.Delete("/", s.handleClearSignals)
		})

		r.Route("/refresh", func(r chi.Router) {
			r.Post("/", s.handleRefresh)
			r.Get("/status", s.handleRefreshStatus)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleListWatchlist)
			r.Post("/", s.handleAddPosition)
			r.Patch("/{id}", s.handleUpdatePosition)
			r.Delete("/{id}", s.handleRemovePosition)
			r.Post("/{id}/analysis", s.handleAnalyzePosition)
		})

		r.Post("/import/tweet", s.handleImportTweet)
		r.Post("/extract", s.handleExtract)
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}
