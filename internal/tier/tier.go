package tier

import (
	"math"
	"time"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

// InitialActivation seeds a freshly ingested record's activation from
// its importance: more important memories start "warmer", which in
// turn keeps them resident in Working longer before eviction. The
// spec leaves the exact curve open (§9); a direct mapping is the
// simplest one that preserves the ordering importance implies.
func InitialActivation(importance float32) float32 {
	if importance < 0 {
		return 0
	}
	if importance > 1 {
		return 1
	}
	return importance
}

// PlaceOnIngest returns the tier a freshly scored record should start
// in. Most records start in Working; a record may skip straight to
// LongTerm when its importance clears SkipToLongTermImportance, to
// reduce churn for obviously durable memories (e.g. a well-documented
// Decision).
func PlaceOnIngest(importance float32, cfg config.TierConfig) model.Tier {
	if importance >= cfg.SkipToLongTermImportance {
		return model.TierLongTerm
	}
	return model.TierWorking
}

// EvictionScore combines recency, importance, and activation into the
// single score used to rank eviction candidates within a tier — lowest
// score evicts first. recencyHours is the age of
// last_activated_at in hours; recencyScore decays it onto (0,1] using
// a one-week half life so recently touched items score near 1.
func EvictionScore(r *model.Record, cfg config.TierConfig, now time.Time) float64 {
	elapsedHours := now.Sub(r.LastActivatedAt).Hours()
	recency := recencyScore(elapsedHours)
	return cfg.EvictionWeightRecency*recency +
		cfg.EvictionWeightImportance*float64(r.Importance) +
		cfg.EvictionWeightActivation*float64(r.Activation)
}

const evictionRecencyHalfLifeHours = 168.0

func recencyScore(elapsedHours float64) float64 {
	if elapsedHours <= 0 {
		return 1
	}
	lambda := math.Ln2 / evictionRecencyHalfLifeHours
	score := math.Exp(-lambda * elapsedHours)
	if score < 0 {
		return 0
	}
	return score
}

// SelectEvictionCandidate returns the index of the lowest-scoring (and
// therefore next-to-evict) record in records, or -1 if records is
// empty.
func SelectEvictionCandidate(records []*model.Record, cfg config.TierConfig, now time.Time) int {
	best := -1
	var bestScore float64
	for i, r := range records {
		score := EvictionScore(r, cfg, now)
		if best == -1 || score < bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

// EligibleForLongTerm reports whether a Session-tier record has earned
// promotion to LongTerm: importance at or above the promotion
// threshold, or enough repeated activation to show durable relevance.
func EligibleForLongTerm(r *model.Record, cfg config.TierConfig) bool {
	return r.Importance >= cfg.SessionPromoteImportance || r.ActivationCount >= cfg.SessionPromoteActivationCount
}

// WorkingOverflowing reports whether Working has exceeded its
// per-user item capacity.
func WorkingOverflowing(count int, cfg config.TierConfig) bool {
	return count > cfg.WorkingCapacity
}

// SessionOverflowing reports whether Session has exceeded its
// per-user byte budget.
func SessionOverflowing(bytesUsed int64, cfg config.TierConfig) bool {
	return bytesUsed > cfg.SessionByteBudget
}
