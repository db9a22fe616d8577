// Package api serves the enriched schedule over a read-only HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/metrics"
	"github.com/pfrederiksen/hockey-report/internal/storage"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second // report route fetches upstream
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// ReportSource produces a fresh enrichment of one fixture.
type ReportSource interface {
	One(ctx context.Context, f game.Scheduled) (*game.EnrichedGame, error)
}

// FixtureSource looks up a fixture by game id.
type FixtureSource interface {
	FindFixture(gameID int) (game.Scheduled, bool, error)
}

// Server is the HTTP API server.
type Server struct {
	server  *http.Server
	handler *Handler
}

// NewServer wires the routes. fixtures and reports may be nil; the report
// route then answers 503.
func NewServer(addr string, store storage.GameStore, fixtures FixtureSource, reports ReportSource, rec *metrics.Recorder, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	h := &Handler{store: store, fixtures: fixtures, reports: reports, log: log}

	return &Server{
		handler: h,
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(h, rec),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}
}

// NewRouter builds the route table.
func NewRouter(h *Handler, rec *metrics.Recorder) *mux.Router {
	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(h.log))
	router.Use(LoggingMiddleware(h.log, rec))

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", rec.Handler()).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/games", h.ListGames).Methods(http.MethodGet)
	v1.HandleFunc("/games/{gameID:[0-9]+}", h.GetGame).Methods(http.MethodGet)
	v1.HandleFunc("/games/{gameID:[0-9]+}/report", h.GetReport).Methods(http.MethodGet)

	return router
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.handler.log.Info("API listening", logger.Fields{"addr": s.server.Addr})
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
