package retrieval

import (
	"time"

	"github.com/shodhmemory/engine/internal/graph"
	"github.com/shodhmemory/engine/internal/importance"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/pkg/config"
)

// ApplySideEffects applies recall's side effects: every returned
// record has its activation_count incremented, its last_activated_at
// refreshed, and its importance reinforced (re-indexing into a new
// importance bucket if the reinforcement crosses one), and the
// co-activation of the returned set strengthens incident edges
// exactly once per call.
func ApplySideEffects(store *storage.Store, graphSvc *graph.Service, results []Ranked, now time.Time, impCfg config.ImportanceConfig) error {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		rec := r.Record
		rec.ActivationCount++
		rec.LastActivatedAt = now
		rec.Importance = importance.Reinforce(rec.Importance, impCfg)
		if err := store.Update(rec); err != nil {
			return err
		}
		ids = append(ids, rec.ID)
	}
	if len(ids) < 2 {
		return nil
	}
	return graphSvc.CoActivate(ids, now)
}
