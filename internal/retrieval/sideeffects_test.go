package retrieval

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/graph"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/pkg/config"
)

func TestApplySideEffectsUpdatesActivationAndStrengthensEdges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrieval.db")
	store, err := storage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Now().UTC()
	for _, id := range []string{"a", "b"} {
		require.NoError(t, store.Store(&model.Record{
			ID: id, UserID: "u1", Content: "x", MemoryType: model.TypeObservation, CreatedAt: now, UpdatedAt: now, Tier: model.TierWorking,
		}))
	}

	graphSvc := graph.NewService(store, config.DefaultConfig().Graph)
	results := []Ranked{
		{Record: mustGet(t, store, "u1", "a")},
		{Record: mustGet(t, store, "u1", "b")},
	}

	require.NoError(t, ApplySideEffects(store, graphSvc, results, now, config.DefaultConfig().Importance))

	a, err := store.Get("u1", "a")
	require.NoError(t, err)
	require.EqualValues(t, 1, a.ActivationCount)
	require.Greater(t, a.Importance, float32(0))

	edge, err := graphSvc.Edge("a", "b")
	require.NoError(t, err)
	require.NotNil(t, edge)
	require.EqualValues(t, 1, edge.ActivationCount)
}

func mustGet(t *testing.T, store *storage.Store, user, id string) *model.Record {
	t.Helper()
	r, err := store.Get(user, id)
	require.NoError(t, err)
	return r
}
