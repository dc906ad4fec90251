// Command paystubd serves the extraction pipeline over HTTP, optionally with
// a gRPC health endpoint and a watched intake directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/core/async"
	"github.com/joseph-ayodele/paystubs/internal/ingest"
	"github.com/joseph-ayodele/paystubs/internal/metrics"
	"github.com/joseph-ayodele/paystubs/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics()
	proc := core.NewProcessorFromConfig(cfg, logger, m)

	g, gctx := errgroup.WithContext(ctx)

	srv := server.New(proc, server.Options{
		Addr:           cfg.Server.HTTPAddr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		TrustedProxies: cfg.Server.TrustedProxies,
	}, logger.With("component", "http"))
	g.Go(func() error { return srv.Run(gctx) })

	if cfg.Server.GRPCAddr != "" {
		health := server.NewGRPCHealth(logger.With("component", "grpc"))
		g.Go(func() error { return health.ListenAndServe(gctx, cfg.Server.GRPCAddr) })
	}

	if len(cfg.Watch.Dirs) > 0 {
		queue := async.NewProcessorQueue(proc, &ingest.JSONSink{Logger: logger}, logger.With("component", "queue"),
			async.WithWorkers(cfg.Processing.Workers),
			async.WithQueueSize(cfg.Processing.QueueSize),
			async.WithProcessTimeout(cfg.Processing.JobTimeout),
			async.WithMetrics(m),
		)
		paths, errs, err := ingest.StartWatcher(gctx, ingest.WatchConfig{
			Roots:       cfg.Watch.Dirs,
			InitialScan: true,
			Debounce:    cfg.Watch.Debounce,
			Logger:      logger.With("component", "watcher"),
		})
		if err != nil {
			logger.Error("failed to start watcher", "dirs", cfg.Watch.Dirs, "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			ingest.Feed(gctx, paths, queue, logger)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Processing.JobTimeout+5*time.Second)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			return nil
		})
		g.Go(func() error {
			for err := range errs {
				logger.Warn("watcher reported error", "error", err)
			}
			return nil
		})
		logger.Info("watching directories", "dirs", cfg.Watch.Dirs)
	}

	logger.Info("paystubd started",
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
		"ocr", cfg.OCR.Enabled,
		"languages", cfg.OCR.Languages,
	)
	if err := g.Wait(); err != nil {
		logger.Error("paystubd stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("paystubd stopped")
}
