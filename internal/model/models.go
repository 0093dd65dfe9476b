package model

import "time"

// JobStatus is the persisted lifecycle state of a run.
type JobStatus string

const (
	JobStarted   JobStatus = "started"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobError     JobStatus = "error"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition can happen.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobError || s == JobCancelled
}

// NewJobRun carries the fields needed to open a job run record.
type NewJobRun struct {
	ID            string     `json:"id,omitempty"`
	OutputKind    OutputKind `json:"output_kind"`
	Family        CodeFamily `json:"family"`
	Mode          DataMode   `json:"mode"`
	Destination   string     `json:"destination"`
	TotalEntries  int        `json:"total_entries"`
	TotalRejected int        `json:"total_rejected"`
}

// JobRun is one pipeline execution as persisted by the job store.
type JobRun struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Status         JobStatus  `json:"status"`
	OutputKind     OutputKind `json:"output_kind"`
	Family         CodeFamily `json:"family"`
	Mode           DataMode   `json:"mode"`
	Destination    string     `json:"destination"`
	TotalEntries   int        `json:"total_entries"`
	TotalRejected  int        `json:"total_rejected"`
	TotalProcessed int        `json:"total_processed"`
	Error          string     `json:"error,omitempty"`
}

// RunOutcome is the input to the metrics store for one finished run.
type RunOutcome struct {
	OutputKind     OutputKind    `json:"output_kind"`
	Status         JobStatus     `json:"status"`
	TotalEntries   int           `json:"total_entries"`
	TotalRejected  int           `json:"total_rejected"`
	TotalProcessed int           `json:"total_processed"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}

// MetricRecord is an append-only row of the metrics store.
type MetricRecord struct {
	ID              int64      `json:"id"`
	Timestamp       time.Time  `json:"ts"`
	OutputKind      OutputKind `json:"output_kind"`
	Status          JobStatus  `json:"status"`
	TotalEntries    int        `json:"total_entries"`
	TotalRejected   int        `json:"total_rejected"`
	TotalProcessed  int        `json:"total_processed"`
	DurationSeconds float64    `json:"duration_s"`
	Throughput      float64    `json:"throughput"`
	Error           string     `json:"error,omitempty"`
}

// OutputKindStats is one row of the per-output-kind breakdown.
type OutputKindStats struct {
	OutputKind    OutputKind `json:"output_kind"`
	Runs          int        `json:"runs"`
	AvgDuration   float64    `json:"avg_duration_s"`
	AvgThroughput float64    `json:"avg_throughput"`
}

// HealthSnapshot aggregates every recorded run.
type HealthSnapshot struct {
	TotalRuns     int               `json:"total_runs"`
	AvgDuration   float64           `json:"avg_duration_s"`
	AvgThroughput float64           `json:"avg_throughput"`
	ErrorRate     float64           `json:"error_rate"`
	ByOutputKind  []OutputKindStats `json:"by_output_kind"`
}
