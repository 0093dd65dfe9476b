package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-codegen-pipeline/internal/model"
)

func newMetricsStore(t *testing.T) *MetricsStore {
	t.Helper()
	s, err := NewMetricsStore(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewMetricRecord(t *testing.T) {
	ts := time.Now()
	rec := NewMetricRecord(model.RunOutcome{TotalProcessed: 50, Duration: 2 * time.Second}, ts)
	require.InDelta(t, 25.0, rec.Throughput, 1e-9)
	require.InDelta(t, 2.0, rec.DurationSeconds, 1e-9)

	rec = NewMetricRecord(model.RunOutcome{TotalProcessed: 50}, ts)
	require.Zero(t, rec.Throughput)

	rec = NewMetricRecord(model.RunOutcome{TotalProcessed: -3, Duration: -time.Second}, ts)
	require.Zero(t, rec.DurationSeconds)
	require.Zero(t, rec.TotalProcessed)
	require.Zero(t, rec.Throughput)
}

func TestMetricsStore_EmptySnapshot(t *testing.T) {
	snap, err := newMetricsStore(t).HealthSnapshot(context.Background())
	require.NoError(t, err)
	require.Zero(t, snap.TotalRuns)
	require.Zero(t, snap.AvgDuration)
	require.Zero(t, snap.AvgThroughput)
	require.Zero(t, snap.ErrorRate)
	require.Empty(t, snap.ByOutputKind)
}

func TestMetricsStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	s := newMetricsStore(t)

	outcomes := []model.RunOutcome{
		{OutputKind: model.OutputArchive, Status: model.JobCompleted, TotalEntries: 10, TotalProcessed: 10, Duration: 2 * time.Second},
		{OutputKind: model.OutputArchive, Status: model.JobError, TotalEntries: 10, TotalProcessed: 4, Duration: 2 * time.Second, Error: "boom"},
		{OutputKind: model.OutputPaginatedDocument, Status: model.JobCompleted, TotalEntries: 20, TotalProcessed: 20, Duration: 4 * time.Second},
		{OutputKind: model.OutputArchive, Status: model.JobCancelled, TotalEntries: 10, TotalProcessed: 0, Duration: 0},
	}
	for _, o := range outcomes {
		rec, err := s.RecordRun(ctx, o)
		require.NoError(t, err)
		require.NotZero(t, rec.ID)
	}

	snap, err := s.HealthSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, snap.TotalRuns)
	require.InDelta(t, 2.0, snap.AvgDuration, 1e-9)   // (2+2+4+0)/4
	require.InDelta(t, 3.0, snap.AvgThroughput, 1e-9) // (5+2+5+0)/4
	require.InDelta(t, 0.25, snap.ErrorRate, 1e-9)

	require.Len(t, snap.ByOutputKind, 2)
	require.Equal(t, model.OutputArchive, snap.ByOutputKind[0].OutputKind)
	require.Equal(t, 3, snap.ByOutputKind[0].Runs)
	require.Equal(t, model.OutputPaginatedDocument, snap.ByOutputKind[1].OutputKind)
	require.Equal(t, 1, snap.ByOutputKind[1].Runs)
	require.InDelta(t, 5.0, snap.ByOutputKind[1].AvgThroughput, 1e-9)
}
