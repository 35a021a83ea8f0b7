package vector

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sumSq))
	if norm < 1e-9 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func randomVector(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(r.NormFloat64())
	}
	return normalize(v)
}

func TestSearchFindsExactMatch(t *testing.T) {
	idx := New(DefaultConfig())
	r := rand.New(rand.NewSource(1))

	vectors := make(map[string][]float32)
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("v%d", i)
		v := randomVector(r, 32)
		vectors[id] = v
		idx.Insert(id, v)
	}

	target := vectors["v50"]
	results := idx.Search(target, 5)
	require.NotEmpty(t, results)
	require.Equal(t, "v50", results[0].ID)
}

func TestSearchReturnsAtMostK(t *testing.T) {
	idx := New(DefaultConfig())
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		idx.Insert(fmt.Sprintf("v%d", i), randomVector(r, 16))
	}
	results := idx.Search(randomVector(r, 16), 10)
	require.LessOrEqual(t, len(results), 10)
}

func TestResultsSortedByDistance(t *testing.T) {
	idx := New(DefaultConfig())
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		idx.Insert(fmt.Sprintf("v%d", i), randomVector(r, 24))
	}
	results := idx.Search(randomVector(r, 24), 20)
	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
}

func TestDeletedNodesExcludedFromResults(t *testing.T) {
	idx := New(DefaultConfig())
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 60; i++ {
		idx.Insert(fmt.Sprintf("v%d", i), randomVector(r, 16))
	}

	target := make([]float32, 16)
	copy(target, randomVector(r, 16))
	idx.Insert("target", target)
	idx.Delete("target")

	results := idx.Search(target, 5)
	for _, res := range results {
		require.NotEqual(t, "target", res.ID)
	}
}

func TestMaxDegreeRespected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDegree = 8
	idx := New(cfg)
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 300; i++ {
		idx.Insert(fmt.Sprintf("v%d", i), randomVector(r, 16))
	}
	for id, n := range idx.nodes {
		require.LessOrEqualf(t, len(n.neighbors), cfg.MaxDegree, "node %s exceeded max degree", id)
	}
}

func TestZeroVectorNeverTopMatchForNonZeroQuery(t *testing.T) {
	idx := New(DefaultConfig())
	r := rand.New(rand.NewSource(6))
	idx.Insert("zero", make([]float32, 16))
	for i := 0; i < 40; i++ {
		idx.Insert(fmt.Sprintf("v%d", i), randomVector(r, 16))
	}

	query := randomVector(r, 16)
	results := idx.Search(query, 1)
	require.NotEmpty(t, results)
	require.NotEqual(t, "zero", results[0].ID)
}
