package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-codegen-pipeline/internal/events"
	"go-codegen-pipeline/internal/model"
)

func TestTracker_Apply(t *testing.T) {
	tr := NewTracker()
	require.Equal(t, model.StateIdle, tr.Snapshot().State)

	tr.Begin("job-1", 4)
	require.Equal(t, model.ProgressSnapshot{JobID: "job-1", State: model.StateRunning, Total: 4}, tr.Snapshot())

	tr.Apply(model.Event{Type: model.EventProgress, JobID: "job-1", Index: 1, Total: 4, Item: "a"})
	snap := tr.Snapshot()
	require.Equal(t, 1, snap.Index)
	require.Equal(t, "a", snap.Item)
	require.InDelta(t, 25.0, snap.Percent, 1e-9)

	// a late Begin for the same job must not reset applied progress
	tr.Begin("job-1", 4)
	require.Equal(t, 1, tr.Snapshot().Index)

	tr.Apply(model.Event{Type: model.EventSucceeded, JobID: "job-1", Destination: "/out"})
	snap = tr.Snapshot()
	require.Equal(t, model.StateSucceeded, snap.State)
	require.Equal(t, "/out", snap.Destination)
	require.InDelta(t, 100.0, snap.Percent, 1e-9)
}

func TestTracker_TerminalStates(t *testing.T) {
	tr := NewTracker()
	tr.Apply(model.Event{Type: model.EventFailed, JobID: "j", Message: "generate images", Detail: "generate images: disk full"})
	snap := tr.Snapshot()
	require.Equal(t, model.StateFailed, snap.State)
	require.Equal(t, "generate images", snap.Message)
	require.Equal(t, "generate images: disk full", snap.Detail)

	tr.Apply(model.Event{Type: model.EventCancelled, JobID: "k", Processed: 2})
	snap = tr.Snapshot()
	require.Equal(t, "k", snap.JobID)
	require.Equal(t, model.StateCancelled, snap.State)
	require.Equal(t, 2, snap.Index)
	require.Empty(t, snap.Message)
}

func TestTracker_LateTerminalOfPreviousJob(t *testing.T) {
	tr := NewTracker()
	tr.Begin("job-a", 2)
	tr.Apply(model.Event{Type: model.EventProgress, JobID: "job-a", Index: 2, Total: 2})

	// job-b starts and reports progress before job-a's terminal event is drained
	tr.Begin("job-b", 3)
	tr.Apply(model.Event{Type: model.EventProgress, JobID: "job-b", Index: 1, Total: 3, Item: "x"})
	tr.Apply(model.Event{Type: model.EventSucceeded, JobID: "job-a", Destination: "/a"})

	snap := tr.Snapshot()
	require.Equal(t, "job-b", snap.JobID)
	require.Equal(t, model.StateRunning, snap.State)
	require.Equal(t, 1, snap.Index)
	require.Empty(t, snap.Destination)

	tr.Apply(model.Event{Type: model.EventCancelled, JobID: "job-b", Processed: 1})
	require.Equal(t, model.StateCancelled, tr.Snapshot().State)
}

func TestTracker_Follow(t *testing.T) {
	ch := events.NewChannel()
	tr := NewTracker()
	ctx, cancel := context.WithCancel(context.Background())

	seen := make(chan model.Event, 8)
	done := make(chan error, 1)
	go func() {
		done <- tr.Follow(ctx, ch, 10*time.Millisecond, func(e model.Event) { seen <- e })
	}()

	ch.Emit(model.Event{Type: model.EventProgress, JobID: "j", Index: 1, Total: 2})
	ch.Emit(model.Event{Type: model.EventProgress, JobID: "j", Index: 2, Total: 2})
	ch.Emit(model.Event{Type: model.EventSucceeded, JobID: "j", Destination: "d"})
	for i := 0; i < 3; i++ {
		<-seen
	}
	require.Equal(t, model.StateSucceeded, tr.Snapshot().State)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
