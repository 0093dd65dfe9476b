package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go-codegen-pipeline/internal/codegen"
	"go-codegen-pipeline/internal/config"
	"go-codegen-pipeline/internal/events"
	"go-codegen-pipeline/internal/model"
	"go-codegen-pipeline/internal/pipeline"
	"go-codegen-pipeline/internal/source"
	"go-codegen-pipeline/internal/store"
	"go-codegen-pipeline/pkg/utils"
)

// ErrRunInProgress is returned by Start while another run is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// App is the process-wide context shared by the CLI and the HTTP server.
// Either store may be nil when it could not be opened; runs still work.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Jobs     *store.JobStore
	Metrics  *store.MetricsStore
	Engine   *codegen.Engine
	Events   *events.Channel
	Pipeline *pipeline.Pipeline
	Runner   *pipeline.Runner
	Tracker  *pipeline.Tracker
	Outputs  *utils.OutputManager
	Sources  source.Policy

	closers []io.Closer
}

// New opens the stores and wires the runner. Store failures are logged and
// leave the corresponding store nil.
func New(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Engine:  codegen.NewEngine(codegen.WithLinearBackends(codegen.LinearBackendsByName(cfg.Render.LinearBackends)...)),
		Events:  events.NewChannel(),
		Tracker: pipeline.NewTracker(),
		Outputs: utils.NewOutputManager(cfg.Server.OutputDir),
		Sources: source.Policy{Dir: cfg.Server.SourceDir, AllowRemote: cfg.Server.AllowRemoteSources},
	}

	if jobs, err := store.NewJobStore(cfg.Storage.JobsDB); err != nil {
		logger.Warn("job store unavailable", slog.String("path", cfg.Storage.JobsDB), slog.String("error", err.Error()))
	} else {
		a.Jobs = jobs
		a.closers = append(a.closers, jobs)
	}
	if metrics, err := store.NewMetricsStore(cfg.Storage.MetricsDB); err != nil {
		logger.Warn("metrics store unavailable", slog.String("path", cfg.Storage.MetricsDB), slog.String("error", err.Error()))
	} else {
		a.Metrics = metrics
		a.closers = append(a.closers, metrics)
	}

	a.Pipeline = pipeline.New(a.Engine, logger, cfg.Server.ScratchDir)
	a.Runner = pipeline.NewRunner(
		a.Pipeline,
		store.NewBestEffortJobs(a.Jobs, logger),
		store.NewBestEffortMetrics(a.Metrics, logger),
		a.Events,
		logger,
	)
	return a
}

// AddCloser registers c to be closed by Close, after the stores.
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close waits for the active run and releases the stores.
func (a *App) Close() error {
	a.Runner.Wait()
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Batch is a run request before validation.
type Batch struct {
	ID          string
	Raw         []string
	Config      model.GenerationConfig
	Kind        model.OutputKind
	Format      model.ImageFormat
	Destination string
}

// Prepare validates b and turns it into a runnable request. Nothing is
// persisted and no event is emitted when it fails.
func (a *App) Prepare(b Batch) (pipeline.Request, error) {
	cfg := b.Config.WithDefaults()
	if err := codegen.ValidateDimensions(cfg); err != nil {
		return pipeline.Request{}, err
	}
	if err := codegen.ValidateStyle(cfg); err != nil {
		return pipeline.Request{}, err
	}

	format := b.Format
	if format == "" {
		format = model.FormatRaster
	}
	switch b.Kind {
	case model.OutputLooseImages:
		if format != model.FormatRaster && format != model.FormatVector {
			return pipeline.Request{}, fmt.Errorf("%w: image format %q", pipeline.ErrUnsupportedExport, format)
		}
		if format == model.FormatVector && cfg.Family != model.FamilyMatrix {
			return pipeline.Request{}, fmt.Errorf("%w: %s output is not available for %s codes", pipeline.ErrUnsupportedExport, format, cfg.Family)
		}
	case model.OutputPaginatedDocument, model.OutputArchive:
	default:
		return pipeline.Request{}, fmt.Errorf("%w: output kind %q", pipeline.ErrUnsupportedExport, b.Kind)
	}
	if b.Destination == "" {
		return pipeline.Request{}, errors.New("destination is required")
	}

	items, rejected, err := codegen.ValidateAndNormalize(b.Raw, cfg)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		ID:            b.ID,
		Items:         items,
		TotalEntries:  len(b.Raw),
		TotalRejected: rejected,
		Options: pipeline.Options{
			Config:      cfg,
			Kind:        b.Kind,
			Format:      format,
			Destination: b.Destination,
		},
	}, nil
}

// Start launches req and marks it as the tracked run.
func (a *App) Start(ctx context.Context, req pipeline.Request) (string, error) {
	id, ok := a.Runner.Start(ctx, req)
	if !ok {
		return "", ErrRunInProgress
	}
	a.Tracker.Begin(id, len(req.Items))
	return id, nil
}

// Column loads a tabular source and returns the raw values of one column.
func (a *App) Column(ctx context.Context, src, column string) ([]string, error) {
	table, err := source.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return table.Values(column)
}
