package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

func TestRankHybridOrdersBySimilarityAndImportance(t *testing.T) {
	cfg := config.DefaultConfig().Retrieval
	now := time.Now().UTC()

	strong := Candidate{
		Record:     &model.Record{ID: "strong", MemoryType: model.TypeDecision, Importance: 0.8, CreatedAt: now, LastActivatedAt: now},
		Similarity: 0.9,
		Activation: 0.5,
	}
	weak := Candidate{
		Record:     &model.Record{ID: "weak", MemoryType: model.TypeObservation, Importance: 0.1, CreatedAt: now.Add(-30 * 24 * time.Hour), LastActivatedAt: now.Add(-30 * 24 * time.Hour)},
		Similarity: 0.1,
		Activation: 0.0,
	}

	ranked := Rank([]Candidate{weak, strong}, ModeHybrid, cfg, now, 10)
	require.Len(t, ranked, 2)
	require.Equal(t, "strong", ranked[0].Record.ID)
}

func TestRankSemanticModeUsesOnlySimilarity(t *testing.T) {
	cfg := config.DefaultConfig().Retrieval
	now := time.Now().UTC()
	c := Candidate{Record: &model.Record{ID: "a"}, Similarity: 0.42}
	ranked := Rank([]Candidate{c}, ModeSemantic, cfg, now, 10)
	require.InDelta(t, 0.42, ranked[0].Score, 1e-6)
}

func TestRankAssociativeModeUsesOnlyActivation(t *testing.T) {
	cfg := config.DefaultConfig().Retrieval
	now := time.Now().UTC()
	c := Candidate{Record: &model.Record{ID: "a"}, Activation: 0.33}
	ranked := Rank([]Candidate{c}, ModeAssociative, cfg, now, 10)
	require.InDelta(t, 0.33, ranked[0].Score, 1e-6)
}

func TestRankTiesBreakByNewerThenSmallerID(t *testing.T) {
	cfg := config.DefaultConfig().Retrieval
	now := time.Now().UTC()

	a := Candidate{Record: &model.Record{ID: "b", MemoryType: model.TypeTask, CreatedAt: now, LastActivatedAt: now.Add(-time.Hour)}}
	b := Candidate{Record: &model.Record{ID: "a", MemoryType: model.TypeTask, CreatedAt: now, LastActivatedAt: now}}

	ranked := Rank([]Candidate{a, b}, ModeHybrid, cfg, now, 10)
	require.Equal(t, "a", ranked[0].Record.ID, "newer last_activated_at wins the tie")
}

func TestRankRespectsLimit(t *testing.T) {
	cfg := config.DefaultConfig().Retrieval
	now := time.Now().UTC()
	candidates := make([]Candidate, 5)
	for i := range candidates {
		candidates[i] = Candidate{Record: &model.Record{ID: string(rune('a' + i)), CreatedAt: now, LastActivatedAt: now}}
	}
	ranked := Rank(candidates, ModeHybrid, cfg, now, 2)
	require.Len(t, ranked, 2)
}

func TestRecencyFactorDecaysWithAge(t *testing.T) {
	now := time.Now().UTC()
	fresh := recencyFactor(now, now, 14)
	old := recencyFactor(now.Add(-28*24*time.Hour), now, 14)
	require.Greater(t, fresh, old)
	require.InDelta(t, 1.0, fresh, 1e-9)
}
