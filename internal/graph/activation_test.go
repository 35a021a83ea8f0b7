package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/pkg/config"
)

// chainNeighbors builds a lookup over a static adjacency map, for
// testing Spread without a storage-backed Service.
func chainNeighbors(adj map[string][]*edgeView) func(id string) ([]*edgeView, error) {
	return func(id string) ([]*edgeView, error) {
		return adj[id], nil
	}
}

func TestSpreadDecaysWithHopsAndDamping(t *testing.T) {
	cfg := config.GraphConfig{MaxHops: 3, Damping: 0.5}
	adj := map[string][]*edgeView{
		"seed": {{other: "hop1", strength: 1.0}},
		"hop1": {{other: "seed", strength: 1.0}, {other: "hop2", strength: 1.0}},
		"hop2": {{other: "hop1", strength: 1.0}},
	}

	activation, err := Spread([]Seed{{ID: "seed", Activation: 1.0}}, cfg, chainNeighbors(adj))
	require.NoError(t, err)

	require.InDelta(t, 1.0, float64(activation["seed"]), 1e-6)
	require.Greater(t, activation["hop1"], float32(0))
	require.Greater(t, activation["hop2"], float32(0))
	require.Less(t, activation["hop2"], activation["hop1"], "activation should fall off with distance")
}

func TestSpreadRespectsMaxHops(t *testing.T) {
	cfg := config.GraphConfig{MaxHops: 1, Damping: 0.5}
	adj := map[string][]*edgeView{
		"seed": {{other: "hop1", strength: 1.0}},
		"hop1": {{other: "hop2", strength: 1.0}},
	}

	activation, err := Spread([]Seed{{ID: "seed", Activation: 1.0}}, cfg, chainNeighbors(adj))
	require.NoError(t, err)

	require.Greater(t, activation["hop1"], float32(0))
	require.Zero(t, activation["hop2"], "hop2 is beyond MaxHops and should receive no activation")
}

func TestSpreadCombinesMultipleSeeds(t *testing.T) {
	cfg := config.GraphConfig{MaxHops: 2, Damping: 0.5}
	adj := map[string][]*edgeView{
		"seedA": {{other: "shared", strength: 1.0}},
		"seedB": {{other: "shared", strength: 1.0}},
		"shared": {
			{other: "seedA", strength: 1.0},
			{other: "seedB", strength: 1.0},
		},
	}

	activation, err := Spread([]Seed{
		{ID: "seedA", Activation: 0.6},
		{ID: "seedB", Activation: 0.4},
	}, cfg, chainNeighbors(adj))
	require.NoError(t, err)

	require.Greater(t, activation["shared"], float32(0))
}
