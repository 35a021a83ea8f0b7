package maintenance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/graph"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/internal/vector"
	"github.com/shodhmemory/engine/pkg/config"
)

type noIndexes struct{}

func (noIndexes) IndexFor(string) *vector.Index { return nil }

func newTestRunner(t *testing.T) (*Runner, *storage.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "maint.db")
	store, err := storage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	graphSvc := graph.NewService(store, cfg.Graph)
	return NewRunner(store, graphSvc, noIndexes{}, cfg), store
}

func TestTickDecaysActivationAndPersists(t *testing.T) {
	runner, store := newTestRunner(t)
	now := time.Now().UTC()

	require.NoError(t, store.Store(&model.Record{
		ID: "m1", UserID: "u1", Content: "hello", MemoryType: model.TypeObservation,
		Activation: 1.0, CreatedAt: now, UpdatedAt: now, LastActivatedAt: now, Tier: model.TierWorking,
	}))

	report, err := runner.Tick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, report.UsersProcessed)

	rec, err := store.Get("u1", "m1")
	require.NoError(t, err)
	require.Less(t, rec.Activation, float32(1.0))
}

func TestTickConsolidatesEligibleRecords(t *testing.T) {
	runner, store := newTestRunner(t)
	now := time.Now().UTC()
	old := now.Add(-30 * 24 * time.Hour)

	require.NoError(t, store.Store(&model.Record{
		ID: "stale", UserID: "u1", Content: "an old note nobody revisits",
		MemoryType: model.TypeObservation, Importance: 0.1, ActivationCount: 0,
		CreatedAt: old, UpdatedAt: old, LastActivatedAt: old, Tier: model.TierSession,
	}))

	report, err := runner.Tick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, report.Consolidated)

	rec, err := store.Get("u1", "stale")
	require.NoError(t, err)
	require.Equal(t, model.CompressionSemantic, rec.Compression)
	require.Empty(t, rec.Content)
}

func TestTickDecaysAndPrunesGraphEdges(t *testing.T) {
	runner, store := newTestRunner(t)
	now := time.Now().UTC()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, store.Store(&model.Record{
			ID: id, UserID: "u1", Content: "x", MemoryType: model.TypeObservation,
			CreatedAt: now, UpdatedAt: now, LastActivatedAt: now, Tier: model.TierWorking,
		}))
	}
	require.NoError(t, store.PutEdge(model.NewEdge("a", "b", now.Add(-365*24*time.Hour))))

	report, err := runner.Tick(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, report.EdgesDecayed)
	require.Equal(t, 1, report.EdgesPruned)
}

func TestTickSetsLastTickAt(t *testing.T) {
	runner, store := newTestRunner(t)
	now := time.Now().UTC()

	_, err := runner.Tick(context.Background(), now)
	require.NoError(t, err)

	last, err := store.LastTickAt()
	require.NoError(t, err)
	require.WithinDuration(t, now, last, time.Second)
}

func TestTickIsIdempotentAtConstantTime(t *testing.T) {
	runner, store := newTestRunner(t)
	now := time.Now().UTC()

	require.NoError(t, store.Store(&model.Record{
		ID: "m1", UserID: "u1", Content: "hello", MemoryType: model.TypeObservation,
		Activation: 0.5, CreatedAt: now, UpdatedAt: now, LastActivatedAt: now, Tier: model.TierWorking,
	}))

	_, err := runner.Tick(context.Background(), now)
	require.NoError(t, err)
	first, err := store.Get("u1", "m1")
	require.NoError(t, err)

	_, err = runner.Tick(context.Background(), now)
	require.NoError(t, err)
	second, err := store.Get("u1", "m1")
	require.NoError(t, err)

	require.InDelta(t, float64(first.Activation), float64(second.Activation), 1e-6)
}
