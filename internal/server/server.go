// Package server exposes the extraction pipeline over HTTP, with an optional
// gRPC health endpoint for orchestrators.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
)

// Processor is the part of core.Processor the handlers need.
type Processor interface {
	Process(ctx context.Context, data []byte, opts ...ocr.ExtractOption) (*extract.ExtractionResult, error)
	ProcessBatch(ctx context.Context, docs []core.Document, opts ...ocr.ExtractOption) ([]core.BatchEntry, error)
}

type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	RateLimit      float64 // requests per second per client, 0 disables
	RateBurst      int
	TrustedProxies []string // addresses or CIDRs allowed to set X-Forwarded-For
}

type Server struct {
	proc       Processor
	opts       Options
	logger     *slog.Logger
	router     *mux.Router
	limiter    *clientLimiter
	proxies    []netip.Prefix
	httpServer *http.Server
}

func New(proc Processor, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	s := &Server{proc: proc, opts: opts, logger: logger}
	proxies, err := parseProxies(opts.TrustedProxies)
	if err != nil {
		logger.Warn("ignoring trusted proxies, forwarding headers disabled", "error", err)
	}
	s.proxies = proxies
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateBurst)
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	api.HandleFunc("/extract/batch", s.handleBatch).Methods(http.MethodPost)
	if s.limiter != nil {
		api.Use(s.rateLimit)
	}

	s.router.Use(requestID)
	s.router.Use(s.accessLog)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.opts.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
