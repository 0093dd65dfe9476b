package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go-codegen-pipeline/internal/model"
)

const metricsSchema = `
CREATE TABLE IF NOT EXISTS run_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts DATETIME NOT NULL,
	output_kind TEXT NOT NULL,
	status TEXT NOT NULL,
	total_entries INTEGER NOT NULL,
	total_rejected INTEGER NOT NULL,
	total_processed INTEGER NOT NULL,
	duration_s REAL NOT NULL,
	throughput REAL NOT NULL,
	error TEXT
);
`

// MetricsStore appends one row per finished run to run_metrics and
// aggregates them on demand.
type MetricsStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewMetricsStore opens or creates the metrics database at path.
func NewMetricsStore(path string) (*MetricsStore, error) {
	db, err := openDB(path, metricsSchema)
	if err != nil {
		return nil, err
	}
	return &MetricsStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close releases the database handle.
func (s *MetricsStore) Close() error {
	return s.db.Close()
}

// NewMetricRecord derives the stored row from an outcome. Negative durations
// and counts are clamped to zero; throughput is zero when no time elapsed.
func NewMetricRecord(o model.RunOutcome, ts time.Time) model.MetricRecord {
	duration := max(o.Duration.Seconds(), 0)
	processed := max(o.TotalProcessed, 0)
	var throughput float64
	if duration > 0 {
		throughput = float64(processed) / duration
	}
	return model.MetricRecord{
		Timestamp:       ts,
		OutputKind:      o.OutputKind,
		Status:          o.Status,
		TotalEntries:    o.TotalEntries,
		TotalRejected:   o.TotalRejected,
		TotalProcessed:  processed,
		DurationSeconds: duration,
		Throughput:      throughput,
		Error:           o.Error,
	}
}

// RecordRun appends one record and returns it with its id.
func (s *MetricsStore) RecordRun(ctx context.Context, o model.RunOutcome) (model.MetricRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := NewMetricRecord(o, s.now())
	var errCol sql.NullString
	if rec.Error != "" {
		errCol = sql.NullString{String: rec.Error, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO run_metrics (ts, output_kind, status, total_entries, total_rejected,
			total_processed, duration_s, throughput, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.OutputKind, rec.Status, rec.TotalEntries, rec.TotalRejected,
		rec.TotalProcessed, rec.DurationSeconds, rec.Throughput, errCol)
	if err != nil {
		return rec, fmt.Errorf("insert run metric: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return rec, nil
}

// HealthSnapshot aggregates every record. An empty table yields zero values.
func (s *MetricsStore) HealthSnapshot(ctx context.Context) (model.HealthSnapshot, error) {
	snap := model.HealthSnapshot{ByOutputKind: []model.OutputKindStats{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(duration_s), 0),
			COALESCE(AVG(throughput), 0),
			COALESCE(AVG(CASE WHEN status = ? THEN 1.0 ELSE 0.0 END), 0)
		FROM run_metrics`, model.JobError).
		Scan(&snap.TotalRuns, &snap.AvgDuration, &snap.AvgThroughput, &snap.ErrorRate)
	if err != nil {
		return snap, fmt.Errorf("aggregate run metrics: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT output_kind, COUNT(*), COALESCE(AVG(duration_s), 0), COALESCE(AVG(throughput), 0)
		FROM run_metrics
		GROUP BY output_kind
		ORDER BY COUNT(*) DESC, output_kind`)
	if err != nil {
		return snap, fmt.Errorf("aggregate run metrics by output kind: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st model.OutputKindStats
		if err := rows.Scan(&st.OutputKind, &st.Runs, &st.AvgDuration, &st.AvgThroughput); err != nil {
			return snap, err
		}
		snap.ByOutputKind = append(snap.ByOutputKind, st)
	}
	return snap, rows.Err()
}
