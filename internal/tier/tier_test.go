package tier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

func TestPlaceOnIngestSkipsToLongTermAboveThreshold(t *testing.T) {
	cfg := config.DefaultConfig().Tiers
	require.Equal(t, model.TierLongTerm, PlaceOnIngest(0.95, cfg))
	require.Equal(t, model.TierWorking, PlaceOnIngest(0.5, cfg))
}

func TestEvictionScoreFavorsRecentImportantActive(t *testing.T) {
	cfg := config.DefaultConfig().Tiers
	now := time.Now().UTC()

	fresh := &model.Record{Importance: 0.8, Activation: 0.8, LastActivatedAt: now}
	stale := &model.Record{Importance: 0.2, Activation: 0.1, LastActivatedAt: now.Add(-30 * 24 * time.Hour)}

	require.Greater(t, EvictionScore(fresh, cfg, now), EvictionScore(stale, cfg, now))
}

func TestSelectEvictionCandidatePicksLowestScore(t *testing.T) {
	cfg := config.DefaultConfig().Tiers
	now := time.Now().UTC()

	records := []*model.Record{
		{ID: "a", Importance: 0.9, Activation: 0.9, LastActivatedAt: now},
		{ID: "b", Importance: 0.05, Activation: 0.0, LastActivatedAt: now.Add(-90 * 24 * time.Hour)},
		{ID: "c", Importance: 0.5, Activation: 0.5, LastActivatedAt: now},
	}

	idx := SelectEvictionCandidate(records, cfg, now)
	require.Equal(t, "b", records[idx].ID)
}

func TestSelectEvictionCandidateEmpty(t *testing.T) {
	require.Equal(t, -1, SelectEvictionCandidate(nil, config.DefaultConfig().Tiers, time.Now()))
}

func TestEligibleForLongTermByImportanceOrActivation(t *testing.T) {
	cfg := config.DefaultConfig().Tiers
	require.True(t, EligibleForLongTerm(&model.Record{Importance: 0.6}, cfg))
	require.True(t, EligibleForLongTerm(&model.Record{ActivationCount: 3}, cfg))
	require.False(t, EligibleForLongTerm(&model.Record{Importance: 0.1, ActivationCount: 1}, cfg))
}

func TestWorkingAndSessionOverflow(t *testing.T) {
	cfg := config.DefaultConfig().Tiers
	require.True(t, WorkingOverflowing(101, cfg))
	require.False(t, WorkingOverflowing(100, cfg))
	require.True(t, SessionOverflowing(cfg.SessionByteBudget+1, cfg))
	require.False(t, SessionOverflowing(cfg.SessionByteBudget, cfg))
}

func TestInitialActivationClamped(t *testing.T) {
	require.Equal(t, float32(0), InitialActivation(-1))
	require.Equal(t, float32(1), InitialActivation(2))
	require.Equal(t, float32(0.42), InitialActivation(0.42))
}
