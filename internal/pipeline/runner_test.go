package pipeline

import (
	"context"
	"image"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-codegen-pipeline/internal/events"
	"go-codegen-pipeline/internal/model"
	"go-codegen-pipeline/internal/store"
)

type runnerFixture struct {
	runner  *Runner
	ch      *events.Channel
	jobs    *store.JobStore
	metrics *store.MetricsStore
}

func newRunnerFixture(t *testing.T, r Renderer) *runnerFixture {
	t.Helper()
	dir := t.TempDir()
	jobs, err := store.NewJobStore(filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = jobs.Close() })
	metrics, err := store.NewMetricsStore(filepath.Join(dir, "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = metrics.Close() })

	ch := events.NewChannel()
	runner := NewRunner(New(r, nil, dir), store.NewBestEffortJobs(jobs, nil), store.NewBestEffortMetrics(metrics, nil), ch, nil)
	return &runnerFixture{runner: runner, ch: ch, jobs: jobs, metrics: metrics}
}

func request(t *testing.T, n int) Request {
	items := make([]string, n)
	for i := range items {
		items[i] = string(rune('a' + i))
	}
	return Request{
		Items:         items,
		TotalEntries:  n + 1,
		TotalRejected: 1,
		Options:       imageOptions(t.TempDir()),
	}
}

func waitTerminal(t *testing.T, ch *events.Channel) (model.Event, []model.Event) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var seen []model.Event
	last, err := events.UntilTerminal(ctx, ch, 10*time.Millisecond, func(e model.Event) {
		seen = append(seen, e)
	})
	require.NoError(t, err)
	return last, seen
}

func TestRunner_Success(t *testing.T) {
	f := newRunnerFixture(t, &fakeRenderer{})
	req := request(t, 3)

	id, ok := f.runner.Start(context.Background(), req)
	require.True(t, ok)
	require.NotEmpty(t, id)

	last, seen := waitTerminal(t, f.ch)
	f.runner.Wait()
	require.Equal(t, model.EventSucceeded, last.Type)
	require.Equal(t, id, last.JobID)
	require.Len(t, seen, 4)
	for _, e := range seen {
		require.Equal(t, id, e.JobID)
	}

	run, err := f.jobs.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.JobCompleted, run.Status)
	require.Equal(t, 3, run.TotalProcessed)
	require.Equal(t, 4, run.TotalEntries)
	require.Equal(t, 1, run.TotalRejected)
	require.NotNil(t, run.FinishedAt)

	current, active := f.runner.Active()
	require.False(t, active)
	require.Empty(t, current, "a finished run is not reported as active")
}

func TestRunner_FailureIsPersisted(t *testing.T) {
	f := newRunnerFixture(t, &fakeRenderer{failAt: 4})

	id, ok := f.runner.Start(context.Background(), request(t, 10))
	require.True(t, ok)

	last, seen := waitTerminal(t, f.ch)
	f.runner.Wait()
	require.Len(t, seen, 4)
	require.Equal(t, model.EventFailed, last.Type)
	require.Equal(t, "generate images", last.Message)
	require.Equal(t, "generate images: backend exploded", last.Detail)

	run, err := f.jobs.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.JobError, run.Status)
	require.Equal(t, 3, run.TotalProcessed)
	require.Contains(t, run.Error, "backend exploded")

	health, err := f.metrics.HealthSnapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, health.TotalRuns)
	require.InDelta(t, 1.0, health.ErrorRate, 1e-9)
}

func TestRunner_SingleActiveRun(t *testing.T) {
	gate := make(chan struct{})
	f := newRunnerFixture(t, &fakeRenderer{gate: gate})

	id, ok := f.runner.Start(context.Background(), request(t, 2))
	require.True(t, ok)

	second, ok := f.runner.Start(context.Background(), request(t, 2))
	require.False(t, ok)
	require.Empty(t, second)

	current, active := f.runner.Active()
	require.True(t, active)
	require.Equal(t, id, current)

	close(gate)
	last, _ := waitTerminal(t, f.ch)
	f.runner.Wait()
	require.Equal(t, model.EventSucceeded, last.Type)

	// the guard is released before the terminal event is published
	_, ok = f.runner.Start(context.Background(), request(t, 1))
	require.True(t, ok)
	waitTerminal(t, f.ch)
	f.runner.Wait()
}

func TestRunner_Cancel(t *testing.T) {
	gate := make(chan struct{})
	renderer := &fakeRenderer{gate: gate, entered: make(chan struct{}, 1)}
	f := newRunnerFixture(t, renderer)
	require.False(t, f.runner.Cancel())

	id, ok := f.runner.Start(context.Background(), request(t, 5))
	require.True(t, ok)
	<-renderer.entered
	require.False(t, f.runner.CancelJob("someone-else"))
	require.True(t, f.runner.CancelJob(id))
	require.False(t, f.runner.Cancel())
	close(gate)

	last, _ := waitTerminal(t, f.ch)
	f.runner.Wait()
	require.Equal(t, model.EventCancelled, last.Type)
	require.Equal(t, 1, last.Processed)

	run, err := f.jobs.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.JobCancelled, run.Status)
	require.Equal(t, 1, run.TotalProcessed)
}

func TestRunner_StoresFailingDoNotAffectRun(t *testing.T) {
	f := newRunnerFixture(t, &fakeRenderer{})
	require.NoError(t, f.jobs.Close())
	require.NoError(t, f.metrics.Close())

	id, ok := f.runner.Start(context.Background(), request(t, 2))
	require.True(t, ok)
	require.NotEmpty(t, id)

	last, _ := waitTerminal(t, f.ch)
	f.runner.Wait()
	require.Equal(t, model.EventSucceeded, last.Type)
}

type panicRenderer struct{}

func (panicRenderer) Render(string, model.GenerationConfig) (image.Image, error) {
	panic("boom")
}

func (panicRenderer) RenderSVG(io.Writer, string, model.GenerationConfig) error {
	panic("boom")
}

func TestRunner_RecoversPanics(t *testing.T) {
	f := newRunnerFixture(t, panicRenderer{})

	id, ok := f.runner.Start(context.Background(), request(t, 1))
	require.True(t, ok)

	last, _ := waitTerminal(t, f.ch)
	f.runner.Wait()
	require.Equal(t, model.EventFailed, last.Type)
	require.Contains(t, last.Detail, "boom")

	run, err := f.jobs.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.JobError, run.Status)
}
