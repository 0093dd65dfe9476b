package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go-codegen-pipeline/internal/model"
)

// JobRecorder receives job lifecycle writes. Implementations must not fail
// the caller; they log and drop their own errors.
type JobRecorder interface {
	Create(ctx context.Context, run model.NewJobRun) string
	UpdateProgress(ctx context.Context, id string, processed int)
	Finish(ctx context.Context, id string, status model.JobStatus, errText string, processed *int)
}

// MetricsRecorder receives one outcome per finished run, best effort.
type MetricsRecorder interface {
	RecordRun(ctx context.Context, o model.RunOutcome)
}

// Request is a validated batch ready to run.
type Request struct {
	ID            string // optional; generated by the job recorder when empty
	Items         []string
	TotalEntries  int
	TotalRejected int
	Options       Options
}

// Runner executes at most one Request at a time in the background and
// forwards its events to a single consumer channel.
type Runner struct {
	pipeline *Pipeline
	jobs     JobRecorder
	metrics  MetricsRecorder
	events   Emitter
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	active bool
	jobID  string
	cancel *CancelFlag
	wg     sync.WaitGroup
}

// NewRunner wires a pipeline to its sinks.
func NewRunner(p *Pipeline, jobs JobRecorder, metrics MetricsRecorder, events Emitter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pipeline: p,
		jobs:     jobs,
		metrics:  metrics,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches req in the background and returns its job id. While another
// run is active the call does nothing and returns ("", false).
func (r *Runner) Start(ctx context.Context, req Request) (string, bool) {
	r.mu.Lock()
	if r.active {
		current := r.jobID
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "run already active, start ignored", slog.String("job_id", current))
		return "", false
	}
	r.active = true
	cancel := &CancelFlag{}
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	id := r.jobs.Create(ctx, model.NewJobRun{
		ID:            req.ID,
		OutputKind:    req.Options.Kind,
		Family:        req.Options.Config.Family,
		Mode:          req.Options.Config.Mode,
		Destination:   req.Options.Destination,
		TotalEntries:  req.TotalEntries,
		TotalRejected: req.TotalRejected,
	})

	r.mu.Lock()
	r.jobID = id
	r.mu.Unlock()

	go r.run(ctx, id, req, cancel)
	return id, true
}

// Cancel requests cancellation of the active run. It reports whether a run
// was active and had not been cancelled yet.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return false
	}
	return r.cancel.Cancel()
}

// CancelJob cancels the active run only if its id matches.
func (r *Runner) CancelJob(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active || r.jobID != id {
		return false
	}
	return r.cancel.Cancel()
}

// Active returns the id of the running job, if any.
func (r *Runner) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobID, r.active
}

// Wait blocks until no run is in flight.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id string, req Request, cancel *CancelFlag) {
	defer r.wg.Done()
	start := r.now()

	processed := 0
	var terminal model.Event
	emit := EmitterFunc(func(e model.Event) {
		e.JobID = id
		if e.Terminal() {
			// held back until the stores reflect the outcome
			terminal = e
			return
		}
		if e.Type == model.EventProgress {
			processed = e.Index
			r.jobs.UpdateProgress(ctx, id, processed)
		}
		r.events.Emit(e)
	})

	err := r.execute(ctx, req, cancel, emit)

	status := model.JobCompleted
	errText := ""
	switch {
	case errors.Is(err, ErrCancelled):
		status = model.JobCancelled
		if terminal.Type != model.EventCancelled {
			terminal = model.Event{Type: model.EventCancelled, JobID: id, Processed: processed}
		}
	case err != nil:
		status = model.JobError
		errText = err.Error()
		msg, _, _ := strings.Cut(errText, ": ")
		terminal = model.Event{Type: model.EventFailed, JobID: id, Message: msg, Detail: errText}
	}

	r.jobs.Finish(ctx, id, status, errText, &processed)
	r.metrics.RecordRun(ctx, model.RunOutcome{
		OutputKind:     req.Options.Kind,
		Status:         status,
		TotalEntries:   req.TotalEntries,
		TotalRejected:  req.TotalRejected,
		TotalProcessed: processed,
		Duration:       r.now().Sub(start),
		Error:          errText,
	})

	r.mu.Lock()
	r.active = false
	r.jobID = ""
	r.mu.Unlock()

	r.events.Emit(terminal)
}

// execute runs the pipeline, turning a panic in a renderer into an error.
func (r *Runner) execute(ctx context.Context, req Request, cancel *CancelFlag, emit Emitter) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("generate: unexpected failure: %v", p)
		}
	}()
	_, err = r.pipeline.Run(ctx, req.Items, req.Options, cancel, emit)
	return err
}
