package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(user, id string, importance float32) *model.Record {
	now := time.Now().UTC()
	return &model.Record{
		ID:         id,
		UserID:     user,
		Content:    "hello world",
		MemoryType: model.TypeDecision,
		Tags:       []string{"preferences"},
		Importance: importance,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tier:       model.TierWorking,
	}
}

func TestStoreAndGet(t *testing.T) {
	s := newTestStore(t)
	r := sampleRecord("u1", "m1", 0.75)

	require.NoError(t, s.Store(r))

	got, err := s.Get("u1", "m1")
	require.NoError(t, err)
	require.Equal(t, "hello world", got.Content)
	require.InDelta(t, 0.75, got.Importance, 1e-6)
}

func TestImportanceReindexingOnUpdate(t *testing.T) {
	// S5: reinforcement crossing a bucket boundary must migrate the
	// importance index key, never leaving the old bucket entry behind.
	s := newTestStore(t)
	r := sampleRecord("u1", "m1", 0.75)
	require.NoError(t, s.Store(r))

	ids, err := s.ByImportanceBucket("u1", 7)
	require.NoError(t, err)
	require.Contains(t, ids, "m1")

	r.Importance = 0.82
	require.NoError(t, s.Update(r))

	ids7, err := s.ByImportanceBucket("u1", 7)
	require.NoError(t, err)
	require.NotContains(t, ids7, "m1")

	ids8, err := s.ByImportanceBucket("u1", 8)
	require.NoError(t, err)
	require.Contains(t, ids8, "m1")
}

func TestTagReindexingOnUpdate(t *testing.T) {
	s := newTestStore(t)
	r := sampleRecord("u1", "m1", 0.5)
	require.NoError(t, s.Store(r))

	r.Tags = []string{"auth"}
	require.NoError(t, s.Update(r))

	ids, err := s.ByTag("u1", "preferences")
	require.NoError(t, err)
	require.Empty(t, ids)

	ids, err = s.ByTag("u1", "auth")
	require.NoError(t, err)
	require.Equal(t, []string{"m1"}, ids)
}

func TestDeleteRemovesIndexesAndEdges(t *testing.T) {
	s := newTestStore(t)
	a := sampleRecord("u1", "a", 0.5)
	b := sampleRecord("u1", "b", 0.5)
	require.NoError(t, s.Store(a))
	require.NoError(t, s.Store(b))

	edge := model.NewEdge("a", "b", time.Now())
	edge.Strength = 0.4
	require.NoError(t, s.PutEdge(edge))

	require.NoError(t, s.Delete("u1", "a"))

	_, err := s.Get("u1", "a")
	require.Error(t, err)
	require.Equal(t, model.KindNotFound, model.KindOf(err))

	ids, err := s.ByTag("u1", "preferences")
	require.NoError(t, err)
	require.NotContains(t, ids, "a")

	_, err = s.GetEdge("a", "b")
	require.Error(t, err)
}

func TestForgetAllWipesUser(t *testing.T) {
	// S6 / property 7: forget_all(u) leaves no residual keys for u,
	// and never touches another user's data.
	s := newTestStore(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Store(sampleRecord("A", idOf("A", i), 0.5)))
		require.NoError(t, s.Store(sampleRecord("B", idOf("B", i), 0.5)))
	}

	require.NoError(t, s.DeleteAllForUser("A"))

	idsA, err := s.ListIDsForUser("A")
	require.NoError(t, err)
	require.Empty(t, idsA)

	idsB, err := s.ListIDsForUser("B")
	require.NoError(t, err)
	require.Len(t, idsB, 10)
}

func idOf(user string, i int) string {
	return user + "-mem-" + string(rune('0'+i))
}

func TestListUsersReturnsDistinctUsersOnly(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store(sampleRecord("A", "a1", 0.5)))
	require.NoError(t, s.Store(sampleRecord("A", "a2", 0.5)))
	require.NoError(t, s.Store(sampleRecord("B", "b1", 0.5)))

	users, err := s.ListUsers()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"A", "B"}, users)
}
