package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-codegen-pipeline/internal/model"
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS job_runs (
	id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	status TEXT NOT NULL,
	output_kind TEXT NOT NULL,
	code_family TEXT NOT NULL,
	data_mode TEXT NOT NULL,
	destination TEXT NOT NULL,
	total_entries INTEGER NOT NULL,
	total_rejected INTEGER NOT NULL,
	total_processed INTEGER NOT NULL DEFAULT 0,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_job_runs_created_at ON job_runs(created_at);
`

// JobStore persists the lifecycle of pipeline runs in the job_runs table.
type JobStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewJobStore opens or creates the job database at path.
func NewJobStore(path string) (*JobStore, error) {
	db, err := openDB(path, jobsSchema)
	if err != nil {
		return nil, err
	}
	return &JobStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close releases the database handle.
func (s *JobStore) Close() error {
	return s.db.Close()
}

// Create inserts a run with status started and returns its id. A fresh uuid
// is used when run.ID is empty.
func (s *JobStore) Create(ctx context.Context, run model.NewJobRun) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_runs (id, created_at, started_at, status, output_kind, code_family,
			data_mode, destination, total_entries, total_rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, now, now, model.JobStarted, run.OutputKind, run.Family,
		run.Mode, run.Destination, run.TotalEntries, run.TotalRejected)
	if err != nil {
		return id, fmt.Errorf("insert job run: %w", err)
	}
	return id, nil
}

// UpdateProgress marks the run as running with the given processed count.
func (s *JobStore) UpdateProgress(ctx context.Context, id string, processed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE job_runs SET status = ?, total_processed = ? WHERE id = ?`,
		model.JobRunning, processed, id)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// Finish records the terminal status. processed is written only when non-nil.
func (s *JobStore) Finish(ctx context.Context, id string, status model.JobStatus, errText string, processed *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errCol sql.NullString
	if errText != "" {
		errCol = sql.NullString{String: errText, Valid: true}
	}

	var err error
	if processed != nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE job_runs SET finished_at = ?, status = ?, error = ?, total_processed = ? WHERE id = ?`,
			s.now(), status, errCol, *processed, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE job_runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
			s.now(), status, errCol, id)
	}
	if err != nil {
		return fmt.Errorf("finish job run: %w", err)
	}
	return nil
}

const jobColumns = `id, created_at, started_at, finished_at, status, output_kind, code_family,
	data_mode, destination, total_entries, total_rejected, total_processed, error`

// Get returns one run or ErrNotFound.
func (s *JobStore) Get(ctx context.Context, id string) (model.JobRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job_runs WHERE id = ?`, id)
	run, err := scanJobRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JobRun{}, fmt.Errorf("job run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// List returns up to limit runs, newest first. limit <= 0 means no limit.
func (s *JobStore) List(ctx context.Context, limit int) ([]model.JobRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM job_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	defer rows.Close()

	runs := []model.JobRun{}
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJobRun(sc scanner) (model.JobRun, error) {
	var (
		run      model.JobRun
		finished sql.NullTime
		errText  sql.NullString
	)
	err := sc.Scan(&run.ID, &run.CreatedAt, &run.StartedAt, &finished, &run.Status,
		&run.OutputKind, &run.Family, &run.Mode, &run.Destination,
		&run.TotalEntries, &run.TotalRejected, &run.TotalProcessed, &errText)
	if err != nil {
		return model.JobRun{}, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	run.Error = errText.String
	return run, nil
}
