package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/matrix"
	"github.com/ignite/value-matrix/internal/store"
)

// Server represents the API server
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// EngineOptions maps configured matrix defaults onto engine options
func EngineOptions(cfg config.MatrixConfig) matrix.Options {
	return matrix.Options{
		Weights:        matrix.Weights{Adoption: cfg.AdoptionWeight, Stage: cfg.StageWeight},
		ScoreThreshold: cfg.ScoreThreshold,
		StageThreshold: cfg.StageThreshold,
		ScaleMax:       cfg.ScaleMax,
	}
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, st store.Store, engine *matrix.Engine) *Server {
	handlers := NewHandlers(st, engine, cfg)
	router := SetupRoutes(handlers)

	return &Server{
		config:   cfg.Server,
		handler:  router,
		handlers: handlers,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Timeouts are generous to support large dataset uploads.
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
