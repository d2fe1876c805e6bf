// Package server exposes the scorer over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

// Scorer is the scoring surface the handlers need.
type Scorer interface {
	Score(ctx context.Context, transcript string) (scorer.ScoreReport, error)
	Rubric(ctx context.Context) ([]scorer.Criterion, error)
}

// RequestObserver is notified of every completed request.
type RequestObserver interface {
	ObserveRequest(route string, code int)
}

// Options configures the HTTP server.
type Options struct {
	Addr        string
	Scorer      Scorer
	CORSOrigins []string
	Logger      *slog.Logger
	// Metrics, when set, is mounted at /metrics.
	Metrics  http.Handler
	Requests RequestObserver
	// SemanticReady reports whether the similarity engine is loaded.
	SemanticReady func() bool
}

// Server wraps the router and the listening http.Server.
type Server struct {
	opts   Options
	logger *slog.Logger
	router chi.Router
	http   *http.Server
}

// New builds the router.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.traceContext, s.logRequests, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "X-Request-Id", reportIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", staticHandler())
	r.Get("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	r.Route("/api", func(api chi.Router) {
		api.Post("/score", s.handleScore)
		api.Get("/rubric", s.handleRubric)
	})

	s.router = r
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.opts.Addr)
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
