package pipeline

import (
	"context"
	"sync"
	"time"

	"go-codegen-pipeline/internal/events"
	"go-codegen-pipeline/internal/model"
)

// Tracker is the observable state of the current run, updated by a single
// consumer applying events in order.
type Tracker struct {
	mu   sync.RWMutex
	snap model.ProgressSnapshot
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{snap: model.ProgressSnapshot{State: model.StateIdle}}
}

// Begin marks a freshly started job as running. It is ignored when events of
// that job were already applied.
func (t *Tracker) Begin(jobID string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snap.JobID == jobID {
		return
	}
	t.snap = model.ProgressSnapshot{JobID: jobID, State: model.StateRunning, Total: total}
}

// Apply folds one event into the snapshot. The terminal event of an earlier
// job can arrive after the next job has begun; it is dropped so the newer
// job stays visible.
func (t *Tracker) Apply(e model.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.JobID != "" && e.JobID != t.snap.JobID {
		if e.Terminal() && t.snap.JobID != "" && t.snap.State == model.StateRunning {
			return
		}
		t.snap = model.ProgressSnapshot{JobID: e.JobID, State: model.StateRunning}
	}

	switch e.Type {
	case model.EventProgress:
		t.snap.State = model.StateRunning
		t.snap.Index = e.Index
		t.snap.Total = e.Total
		t.snap.Item = e.Item
		if e.Total > 0 {
			t.snap.Percent = float64(e.Index) / float64(e.Total) * 100
		}
	case model.EventSucceeded:
		t.snap.State = model.StateSucceeded
		t.snap.Destination = e.Destination
		t.snap.Percent = 100
	case model.EventFailed:
		t.snap.State = model.StateFailed
		t.snap.Message = e.Message
		t.snap.Detail = e.Detail
	case model.EventCancelled:
		t.snap.State = model.StateCancelled
		t.snap.Index = e.Processed
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() model.ProgressSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// Follow drains ch into the tracker until ctx ends. each, when set, sees every
// event after it has been applied.
func (t *Tracker) Follow(ctx context.Context, ch *events.Channel, interval time.Duration, each func(model.Event)) error {
	return events.Poll(ctx, ch, interval, func(e model.Event) bool {
		t.Apply(e)
		if each != nil {
			each(e)
		}
		return true
	})
}
