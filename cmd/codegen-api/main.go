package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"go-codegen-pipeline/internal/api"
	"go-codegen-pipeline/internal/app"
	"go-codegen-pipeline/internal/config"
	"go-codegen-pipeline/internal/logging"
	"go-codegen-pipeline/internal/model"
)

// @title Code Generation Pipeline API
// @version 1.0
// @description Batch QR and barcode generation with run tracking and metrics.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "config file to load")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger, logOut := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("codegen-api failed", "err", err)
		_ = logOut.Close()
		os.Exit(1)
	}
	_ = logOut.Close()
}

func run(cfg config.Config, logger *slog.Logger) error {
	a := app.New(cfg, logger)
	defer a.Close()
	if err := a.Outputs.EnsureOutputDirExists(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.NewRouter(a, logger).Serve(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	})

	g.Go(func() error {
		err := a.Tracker.Follow(ctx, a.Events, cfg.Server.PollInterval, func(e model.Event) {
			if e.Terminal() {
				logger.Info("run finished",
					slog.String("job_id", e.JobID),
					slog.String("state", string(e.Type)),
				)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		if a.Runner.Cancel() {
			logger.Info("cancelling active run for shutdown")
		}
		return nil
	})

	return g.Wait()
}
