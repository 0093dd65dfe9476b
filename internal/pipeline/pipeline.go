package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"go-codegen-pipeline/internal/model"
)

var (
	ErrCancelled         = errors.New("operation cancelled")
	ErrUnsupportedExport = errors.New("unsupported export")
)

// Renderer turns one raw value into an image or an SVG document.
type Renderer interface {
	Render(value string, cfg model.GenerationConfig) (image.Image, error)
	RenderSVG(w io.Writer, value string, cfg model.GenerationConfig) error
}

// Emitter receives pipeline events in order.
type Emitter interface {
	Emit(model.Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(model.Event)

func (f EmitterFunc) Emit(e model.Event) { f(e) }

// CancelFlag is a one-way cancellation request observed between items.
type CancelFlag struct {
	set atomic.Bool
}

// Cancel sets the flag. It reports whether this call was the one that set it.
func (f *CancelFlag) Cancel() bool {
	return f.set.CompareAndSwap(false, true)
}

// Cancelled reports whether Cancel has been called.
func (f *CancelFlag) Cancelled() bool {
	return f != nil && f.set.Load()
}

// Options selects the sink and rendering parameters of one run.
type Options struct {
	Config      model.GenerationConfig
	Kind        model.OutputKind
	Format      model.ImageFormat
	Destination string
}

// Pipeline renders a validated batch into one output sink. It holds no
// per-run state and may run several batches sequentially.
type Pipeline struct {
	renderer   Renderer
	logger     *slog.Logger
	scratchDir string
}

// New returns a Pipeline that renders with r. scratchDir is where archive runs
// stage their images; empty means the system temp directory.
func New(r Renderer, logger *slog.Logger, scratchDir string) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{renderer: r, logger: logger, scratchDir: scratchDir}
}

// Run processes items in order and writes them to opts.Destination.
// Before each item it checks cancel and ctx; on cancellation it emits a
// cancellation event and returns ErrCancelled. After each item it emits a
// progress event, and on success a final event naming the destination.
// Any render or I/O failure stops the run and is returned as
// "<context>: <cause>".
func (p *Pipeline) Run(ctx context.Context, items []string, opts Options, cancel *CancelFlag, emit Emitter) (model.ExportResult, error) {
	start := time.Now()
	p.logger.InfoContext(ctx, "generation started",
		slog.String("event", "generate_start"),
		slog.String("format", string(opts.Kind)),
		slog.String("path", opts.Destination),
		slog.Int("total", len(items)),
	)

	em := &exportManager{
		renderer: p.renderer,
		cfg:      opts.Config,
		items:    items,
		cancel:   cancel,
		ctx:      ctx,
		emit:     emit,
	}

	var (
		result model.ExportResult
		err    error
	)
	switch opts.Kind {
	case model.OutputLooseImages:
		result, err = em.exportImages(opts.Destination, opts.Format)
		err = wrap("generate images", err)
	case model.OutputPaginatedDocument:
		result, err = em.exportDocument(opts.Destination)
		err = wrap("generate document", err)
	case model.OutputArchive:
		result, err = em.exportArchive(opts.Destination, p.scratchDir)
		err = wrap("generate archive", err)
	default:
		err = fmt.Errorf("%w: output kind %q", ErrUnsupportedExport, opts.Kind)
	}

	switch {
	case errors.Is(err, ErrCancelled):
		p.logger.InfoContext(ctx, "generation cancelled",
			slog.String("event", "generate_cancel"),
			slog.Int("total", em.processed),
		)
		emit.Emit(model.Event{Type: model.EventCancelled, Processed: em.processed})
		return result, ErrCancelled
	case err != nil:
		p.logger.ErrorContext(ctx, "generation failed",
			slog.String("event", "generate_error"),
			slog.String("format", string(opts.Kind)),
			slog.Int("total", em.processed),
			slog.String("error", err.Error()),
		)
		return result, err
	}

	result.Timestamp = time.Now().UTC()
	p.logger.InfoContext(ctx, "generation finished",
		slog.String("event", "generate_done"),
		slog.String("format", string(opts.Kind)),
		slog.String("path", result.Destination),
		slog.Int("total", result.Files),
		slog.Duration("duration", time.Since(start)),
	)
	emit.Emit(model.Event{Type: model.EventSucceeded, Destination: result.Destination})
	return result, nil
}

// wrap prefixes err with op, leaving cancellation untouched.
func wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrCancelled) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
