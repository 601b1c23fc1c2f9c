// Package server exposes the compliance resolver and the project wizard over
// JSON/HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/polisai/archwise/internal/governance"
	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/config"
	"github.com/polisai/archwise/pkg/project"
	"github.com/polisai/archwise/pkg/recommend"
	"github.com/polisai/archwise/pkg/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	shutdownTimeout      = 10 * time.Second
	limiterPruneInterval = time.Minute
	limiterIdle          = 10 * time.Minute
)

// Options configures a Server. Store is required; a nil Source makes every
// recommendation request fail with the generic retry message.
type Options struct {
	Store    storage.SessionStore
	Source   recommend.Source
	Resolver *compliance.Resolver
	Metrics  *Metrics
	Logger   *slog.Logger
	// Limiter throttles recommendation requests per client. Nil disables it.
	Limiter *governance.RateLimiter
}

// Server serves the archwise HTTP API.
type Server struct {
	store    storage.SessionStore
	source   recommend.Source
	resolver atomic.Pointer[compliance.Resolver]
	wizard   *project.Wizard
	metrics  *Metrics
	limiter  *governance.RateLimiter
	logger   *slog.Logger
	handler  http.Handler
}

type sessionCounter interface {
	Len() int
}

// New creates a server. Missing resolver, metrics and logger get defaults.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = compliance.Default()
	}

	s := &Server{
		store:   opts.Store,
		source:  opts.Source,
		metrics: metrics,
		limiter: opts.Limiter,
		logger:  logger.With("component", "server"),
	}
	s.resolver.Store(resolver)
	s.wizard = project.NewWizard(s.resolver.Load, logger)
	s.wizard.Observe(func(res compliance.Resolution) {
		for _, id := range res.Suppressed {
			metrics.RecordSuppressed(string(id))
		}
	})

	if c, ok := opts.Store.(sessionCounter); ok {
		if err := metrics.TrackSessions(c.Len); err != nil {
			s.logger.Warn("session gauge not registered", "error", err)
		}
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = otelhttp.NewHandler(cors(mux), "archwise.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s, nil
}

// Handler returns the API handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Resolver returns the resolver currently in effect.
func (s *Server) Resolver() *compliance.Resolver { return s.resolver.Load() }

// SetResolver swaps the resolver used by subsequent requests.
func (s *Server) SetResolver(r *compliance.Resolver) {
	if r == nil {
		return
	}
	s.resolver.Store(r)
}

// WatchConfig applies compliance policy from each configuration snapshot
// until updates is closed or ctx is done.
func (s *Server) WatchConfig(ctx context.Context, updates <-chan *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			if cfg == nil {
				continue
			}
			s.SetResolver(cfg.Compliance.Resolver())
			s.metrics.RecordConfigReload("success")
			s.logger.Info("compliance policy applied",
				"regional_frameworks", cfg.Compliance.RegionalFrameworks,
				"regional_exempt_industries", cfg.Compliance.RegionalExemptIndustries,
			)
		}
	}
}

// Run serves the API on cfg.Address and metrics on cfg.MetricsAddress until
// ctx is cancelled, then shuts both down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	api := &http.Server{
		Addr:              cfg.Address,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", s.metrics.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           metricsMux,
		ReadHeaderTimeout: cfg.ReadTimeout,
	}

	errCh := make(chan error, 2)
	serve := func(name string, srv *http.Server) {
		s.logger.Info("HTTP server starting", "server", name, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}
	go serve("api", api)
	if cfg.MetricsAddress != "" {
		go serve("metrics", metricsSrv)
	}
	if s.limiter.Enabled() {
		go s.pruneLimiter(ctx)
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down HTTP servers")
	if err := api.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shut down API server", "error", err)
		runErr = errors.Join(runErr, err)
	}
	if cfg.MetricsAddress != "" {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shut down metrics server", "error", err)
			runErr = errors.Join(runErr, err)
		}
	}
	return runErr
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Prune(limiterIdle); n > 0 {
				s.logger.Debug("pruned idle rate limit buckets", "count", n)
			}
		}
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, traceparent")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
