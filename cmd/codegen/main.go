package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-codegen-pipeline/internal/app"
	"go-codegen-pipeline/internal/config"
	"go-codegen-pipeline/internal/logging"
)

var (
	cfg    config.Config
	logger *slog.Logger
	logOut io.Closer

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "config file to load, default is codegen.{yaml,toml,json} in the current directory")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	rootCmd.SilenceErrors = true
	rootCmd.PersistentPreRunE = initCodegen
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if logOut != nil {
			return logOut.Close()
		}
		return nil
	}

	rootCmd.AddCommand(columnsCmd, previewCmd, generateCmd, runsCmd, healthCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("codegen failed", "err", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "codegen",
	Short:        "Batch QR code and barcode generator",
	SilenceUsage: true,
}

func initCodegen(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(flagConfigFilePath)
	if err != nil {
		return err
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	logger, logOut = logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	slog.SetDefault(logger)
	return nil
}

// newApp opens the stores for commands that need them.
func newApp() *app.App {
	return app.New(cfg, logger)
}
