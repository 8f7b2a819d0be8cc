// Package server exposes the sources grid over HTTP.
//
// The server is a thin JSON layer over the backend API client and the
// fetch → pack → render pipeline. A dashboard front end asks for rows at
// its measured container width and gets back the packed grid document; the
// remaining endpoints proxy the feed and ingest operations the dashboard
// offers.
//
// # Endpoints
//
//	GET   /healthz                    liveness
//	GET   /version                    build information
//	GET   /metrics                    Prometheus metrics
//	GET   /api/rows                   packed grid for one page of sources
//	GET   /api/sources/{id}           source detail
//	POST  /api/sources/ingest         run an ingest, optionally for some feeds
//	GET   /api/feeds/groups           feeds grouped by company
//	PATCH /api/feeds/{id}/enabled     enable or disable a feed
//	PATCH /api/companies/{id}/enabled enable or disable a company
//	POST  /api/feeds/sync             synchronise the feed catalogue
//
// Errors are written as {"code": "...", "message": "..."} with the status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feedwatch/sourcegrid/pkg/api"
	"github.com/feedwatch/sourcegrid/pkg/cache"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/observability/prom"
	"github.com/feedwatch/sourcegrid/pkg/pipeline"
	"github.com/feedwatch/sourcegrid/pkg/rss"
	"github.com/feedwatch/sourcegrid/pkg/tiles"
)

// Default values for [Config].
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Backend is the subset of the backend API the server needs.
// *api.Client implements it.
type Backend interface {
	pipeline.SourceLister
	GetSource(ctx context.Context, id int64, refresh bool) (*rss.SourceDetail, error)
	IngestSources(ctx context.Context, feedIDs ...int64) (*rss.IngestResult, error)
	ListFeeds(ctx context.Context, refresh bool) ([]rss.Feed, error)
	SyncFeeds(ctx context.Context) (*rss.SyncResult, error)
	SetFeedEnabled(ctx context.Context, feedID int64, enabled bool) (*rss.FeedToggle, error)
	SetCompanyEnabled(ctx context.Context, companyID int64, enabled bool) (*rss.CompanyToggle, error)
}

var _ Backend = (*api.Client)(nil)

// Config configures a [Server]. Zero values select defaults.
type Config struct {
	Addr            string
	PageSize        int        // page size when the request has no limit
	Grid            tiles.Grid // geometry when the request has no gap or tile_width
	Width           float64    // container width when the request has none
	ShutdownTimeout time.Duration

	Cache  cache.Cache // rows cache; nil disables caching
	Keyer  cache.Keyer
	Logger *log.Logger

	// Registry receives the metrics served on /metrics. A private registry
	// is created when nil.
	Registry *prometheus.Registry
}

// Server serves the sources grid API.
type Server struct {
	backend  Backend
	runner   *pipeline.Runner
	cfg      Config
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *prom.Metrics
	router   chi.Router
}

// New creates a server in front of backend and registers its metrics on the
// registry. The process-wide observability hooks are left alone until
// [Server.InstallMetrics] or [Server.Serve].
func New(backend Backend, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = pipeline.DefaultLimit
	}
	if cfg.Grid == (tiles.Grid{}) {
		cfg.Grid = tiles.DefaultGrid()
	}
	if cfg.Width == 0 {
		cfg.Width = pipeline.DefaultWidth
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s := &Server{
		backend:  backend,
		runner:   pipeline.NewRunner(backend, cfg.Cache, cfg.Keyer, cfg.Logger),
		cfg:      cfg,
		logger:   cfg.Logger,
		registry: reg,
		metrics:  prom.New(reg),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperr.New(apperr.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusMethodNotAllowed,
			apperr.New(apperr.ErrCodeInvalidInput, "method %s not allowed on %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/rows", s.handleRows)

		r.Get("/sources/{id}", s.handleGetSource)
		r.Post("/sources/ingest", s.handleIngest)

		r.Get("/feeds/groups", s.handleFeedGroups)
		r.Post("/feeds/sync", s.handleSyncFeeds)
		r.Patch("/feeds/{id}/enabled", s.handleFeedEnabled)
		r.Patch("/companies/{id}/enabled", s.handleCompanyEnabled)
	})

	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully, waiting at most cfg.ShutdownTimeout for open requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// InstallMetrics routes the process-wide pipeline, cache and HTTP hooks to
// the server's metrics.
func (s *Server) InstallMetrics() {
	s.metrics.Install()
}

// Serve is [Server.Run] on an existing listener. It installs the server's
// metrics as the process-wide hooks.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.InstallMetrics()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the rows cache.
func (s *Server) Close() error {
	return s.runner.Close()
}
