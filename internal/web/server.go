// Package web provides the HTTP server exposing artist search and track picking.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/justestif/guess-the-song/internal/logging"
	"github.com/justestif/guess-the-song/internal/tracks"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:5000"

	// DefaultShutdownTimeout bounds how long Run waits for in-flight requests.
	DefaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	Logger          *log.Logger
	Searcher        ArtistSearcher
	Aggregator      TrackAggregator
	Selector        TrackSelector
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Server is the HTTP server for the game backend.
type Server struct {
	router          chi.Router
	server          *http.Server
	logger          *log.Logger
	handlers        *Handlers
	shutdownTimeout time.Duration
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	// Check collaborators
	if cfg.Searcher == nil || cfg.Aggregator == nil {
		return nil, errors.New("web: searcher and aggregator are required")
	}

	// Fill in defaults
	if cfg.Selector == nil {
		cfg.Selector = tracks.NewSelector()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Create router and handlers
	s := &Server{
		router:          chi.NewRouter(),
		logger:          cfg.Logger,
		handlers:        NewHandlers(cfg.Searcher, cfg.Aggregator, cfg.Selector, cfg.Logger),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	// Configure middleware
	s.setupMiddleware(cfg.AllowedOrigins)

	// Configure routes
	s.setupRoutes()

	// Create HTTP server
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logging.Standard(s.logger),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Browser client on another origin
	if len(origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.Get("/search-artists", s.handlers.SearchArtists)
	s.router.Post("/submit-form", s.handlers.SubmitForm)
}

// Handler returns the router, for mounting or testing without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", "http://"+s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals
// or when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	// Stop on interrupt or terminate
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
