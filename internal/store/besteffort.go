package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"go-codegen-pipeline/internal/model"
)

// BestEffortJobs wraps a JobStore so that failures are logged and dropped.
// A nil store turns every call into a no-op.
type BestEffortJobs struct {
	store  *JobStore
	logger *slog.Logger
	retry  model.RetryConfig
}

// NewBestEffortJobs wraps s. Transient lock errors are retried per DefaultRetryConfig.
func NewBestEffortJobs(s *JobStore, logger *slog.Logger) *BestEffortJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &BestEffortJobs{store: s, logger: logger, retry: DefaultRetryConfig}
}

// Create opens a job record and always returns an id, even when the write fails.
func (b *BestEffortJobs) Create(ctx context.Context, run model.NewJobRun) string {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if b.store == nil {
		return run.ID
	}
	err := withRetry(ctx, b.retry, func() error {
		_, err := b.store.Create(ctx, run)
		return err
	})
	b.report(ctx, "create", run.ID, err)
	return run.ID
}

// UpdateProgress records the processed count.
func (b *BestEffortJobs) UpdateProgress(ctx context.Context, id string, processed int) {
	if b.store == nil {
		return
	}
	err := withRetry(ctx, b.retry, func() error {
		return b.store.UpdateProgress(ctx, id, processed)
	})
	b.report(ctx, "update_progress", id, err)
}

// Finish records the terminal transition.
func (b *BestEffortJobs) Finish(ctx context.Context, id string, status model.JobStatus, errText string, processed *int) {
	if b.store == nil {
		return
	}
	err := withRetry(ctx, b.retry, func() error {
		return b.store.Finish(ctx, id, status, errText, processed)
	})
	b.report(ctx, "finish", id, err)
}

func (b *BestEffortJobs) report(ctx context.Context, op, id string, err error) {
	if err == nil {
		return
	}
	b.logger.WarnContext(ctx, "job store write failed",
		slog.String("operation", op),
		slog.String("job_id", id),
		slog.String("error", err.Error()),
	)
}

// BestEffortMetrics wraps a MetricsStore so that failures are logged and dropped.
type BestEffortMetrics struct {
	store  *MetricsStore
	logger *slog.Logger
	retry  model.RetryConfig
}

// NewBestEffortMetrics wraps s.
func NewBestEffortMetrics(s *MetricsStore, logger *slog.Logger) *BestEffortMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &BestEffortMetrics{store: s, logger: logger, retry: DefaultRetryConfig}
}

// RecordRun appends one metric record.
func (b *BestEffortMetrics) RecordRun(ctx context.Context, o model.RunOutcome) {
	if b.store == nil {
		return
	}
	err := withRetry(ctx, b.retry, func() error {
		_, err := b.store.RecordRun(ctx, o)
		return err
	})
	if err != nil {
		b.logger.WarnContext(ctx, "metrics store write failed",
			slog.String("operation", "record_run"),
			slog.String("status", string(o.Status)),
			slog.String("error", err.Error()),
		)
	}
}
