package graph

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/pkg/config"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	s, err := storage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, config.DefaultConfig().Graph), s
}

func putMemory(t *testing.T, s *storage.Store, user, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.Store(&model.Record{
		ID:         id,
		UserID:     user,
		Content:    "x",
		MemoryType: model.TypeObservation,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tier:       model.TierWorking,
	}))
}

// TestStrengthenPairPotentiatesAtThreshold covers scenario S3: two
// memories sharing an entity are recalled together 5 times, and the
// edge between them becomes potentiated with strength >= 0.55.
func TestStrengthenPairPotentiatesAtThreshold(t *testing.T) {
	svc, store := newTestService(t)
	putMemory(t, store, "u1", "a")
	putMemory(t, store, "u1", "b")

	now := time.Now().UTC()
	var e *model.Edge
	var err error
	for i := 0; i < 5; i++ {
		e, err = svc.StrengthenPair("a", "b", now)
		require.NoError(t, err)
		now = now.Add(time.Minute)
	}

	require.True(t, e.Potentiated)
	require.GreaterOrEqual(t, e.Strength, float32(0.55))
	require.EqualValues(t, 5, e.ActivationCount)
}

func TestCoActivateDeduplicatesPairs(t *testing.T) {
	svc, store := newTestService(t)
	for _, id := range []string{"a", "b", "c"} {
		putMemory(t, store, "u1", id)
	}

	now := time.Now().UTC()
	require.NoError(t, svc.CoActivate([]string{"a", "b", "c", "a"}, now))

	ab, err := svc.Edge("a", "b")
	require.NoError(t, err)
	require.NotNil(t, ab)
	require.EqualValues(t, 1, ab.ActivationCount)

	ac, err := svc.Edge("a", "c")
	require.NoError(t, err)
	require.NotNil(t, ac)
	require.EqualValues(t, 1, ac.ActivationCount)

	bc, err := svc.Edge("b", "c")
	require.NoError(t, err)
	require.NotNil(t, bc)
	require.EqualValues(t, 1, bc.ActivationCount)
}

// TestDecayAndPrunePrunesWeakEdges covers scenario S4: an edge that
// never crosses the LTP threshold decays below the strength floor and
// is pruned on the next maintenance tick, while a potentiated edge
// survives indefinitely.
func TestDecayAndPrunePrunesWeakEdges(t *testing.T) {
	svc, store := newTestService(t)
	for _, id := range []string{"weak1", "weak2", "strong1", "strong2"} {
		putMemory(t, store, "u1", id)
	}

	now := time.Now().UTC()
	_, err := svc.StrengthenPair("weak1", "weak2", now)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err := svc.StrengthenPair("strong1", "strong2", now)
		require.NoError(t, err)
	}

	future := now.Add(365 * 24 * time.Hour)
	decayed, pruned, err := svc.DecayAndPrune(future)
	require.NoError(t, err)
	require.Equal(t, 2, decayed)
	require.Equal(t, 1, pruned)

	weak, err := svc.Edge("weak1", "weak2")
	require.NoError(t, err)
	require.Nil(t, weak)

	strong, err := svc.Edge("strong1", "strong2")
	require.NoError(t, err)
	require.NotNil(t, strong)
	require.True(t, strong.Potentiated)
}

func TestDecayAndPruneIsIdempotentAtConstantTime(t *testing.T) {
	svc, store := newTestService(t)
	putMemory(t, store, "u1", "a")
	putMemory(t, store, "u1", "b")

	now := time.Now().UTC()
	_, err := svc.StrengthenPair("a", "b", now)
	require.NoError(t, err)

	later := now.Add(48 * time.Hour)
	_, _, err = svc.DecayAndPrune(later)
	require.NoError(t, err)
	first, err := svc.Edge("a", "b")
	require.NoError(t, err)
	require.NotNil(t, first)

	_, _, err = svc.DecayAndPrune(later)
	require.NoError(t, err)
	second, err := svc.Edge("a", "b")
	require.NoError(t, err)
	require.NotNil(t, second)

	require.InDelta(t, float64(first.Strength), float64(second.Strength), 1e-6)
}

func TestNeighborsReturnsIncidentEdges(t *testing.T) {
	svc, store := newTestService(t)
	for _, id := range []string{"a", "b", "c"} {
		putMemory(t, store, "u1", id)
	}
	now := time.Now().UTC()
	_, err := svc.StrengthenPair("a", "b", now)
	require.NoError(t, err)
	_, err = svc.StrengthenPair("a", "c", now)
	require.NoError(t, err)

	neighbors, err := svc.Neighbors("u1", "a")
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
}
