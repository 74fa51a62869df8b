// Package server exposes the solve pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/solve    optimize a matrix, respond with the tour as JSON
//	POST /v1/render   optimize a matrix, respond with the rendered diagram
//	GET  /healthz     liveness probe
//	GET  /version     build information
//	GET  /metrics     Prometheus metrics (when a gatherer is configured)
//
// A request either carries a JSON [SolveRequest] (Content-Type
// application/json) or the raw matrix file as its body, with the options in
// the query string:
//
//	curl --data-binary @routes.csv 'localhost:8080/v1/solve?start=Paris'
//	curl -H 'Content-Type: application/vnd.openxmlformats-officedocument.spreadsheetml.sheet' \
//	    --data-binary @routes.xlsx 'localhost:8080/v1/render?format=svg'
//
// Errors are reported as {"error": {"code", "message", "request_id"}} with a
// status derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/citytour/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 8 << 20

// Config configures a [Server].
type Config struct {
	// MaxBodyBytes bounds request bodies. Zero means [DefaultMaxBodyBytes].
	MaxBodyBytes int64

	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer

	// SolveTimeout bounds a single request. Zero means no limit.
	SolveTimeout time.Duration
}

// Server serves the pipeline over HTTP. It is safe for concurrent use; every
// request runs its own optimization.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
}

// New creates a server around runner. A nil logger means log.Default().
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{runner: runner, logger: logger, cfg: cfg}
}

// Handler returns the router with all middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		if s.cfg.SolveTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.cfg.SolveTimeout))
		}
		r.Post("/solve", s.handleSolve)
		r.Post("/render", s.handleRender)
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully, giving in-flight requests up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
