package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Navyasribhaskar/Casestudy/internal/metrics"
	"github.com/Navyasribhaskar/Casestudy/internal/server"
	"github.com/Navyasribhaskar/Casestudy/internal/telemetry"
	"github.com/Navyasribhaskar/Casestudy/scorer"
)

func serveCmd(g *globalOptions) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API and web page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.WatchRubric = watch
			}
			// Server logs default to JSON unless --log-json=false is given.
			asJSON := g.logJSON || !cmd.Flags().Changed("log-json")
			return runServe(cmd.Context(), cfg, newLogger(cmd.ErrOrStderr(), cfg.LogLevel, asJSON))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :5000)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the rubric when the file changes")
	return cmd
}

func runServe(parent context.Context, cfg scorer.Config, logger *slog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(logger)

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTELEndpoint, appName, Version, cfg.OTELInsecure)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	engines := scorer.NewEngineHolder(scorer.NewEngineFactory(cfg.Embedder, logger), logger)
	defer engines.Close()
	// Warm up once before listening; a failure leaves semantic scoring off.
	engines.Get()

	store := scorer.NewRubricStore(logger, cfg.RubricCandidates()...)
	if cfg.WatchRubric {
		go func() {
			if err := store.Watch(ctx); err != nil {
				logger.Error("rubric watcher stopped", "error", err)
			}
		}()
	}
	go reloadOnHangup(ctx, store, logger)

	recorder := metrics.New(true)
	svc := scorer.NewService(engines, store,
		scorer.WithWorkers(cfg.Workers),
		scorer.WithObserver(recorder),
		scorer.WithLogger(logger),
	)
	srv := server.New(server.Options{
		Addr:          cfg.HTTPAddr,
		Scorer:        svc,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
		Metrics:       recorder.Handler(),
		Requests:      recorder,
		SemanticReady: func() bool { return engines.Get() != nil },
	})
	logger.Info("scorer ready",
		"version", Version,
		"rubric", store.Path(),
		"provider", cfg.Embedder.Provider,
		"semantic", engines.Get() != nil,
		"watch", cfg.WatchRubric,
	)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// reloadOnHangup re-reads the rubric on SIGHUP.
func reloadOnHangup(ctx context.Context, store *scorer.RubricStore, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := store.Reload(); err != nil {
				logger.Error("rubric reload failed", "error", err)
				continue
			}
			logger.Info("rubric reloaded", "path", store.Path())
		}
	}
}
