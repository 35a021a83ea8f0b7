package maintenance

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shodhmemory/engine/internal/compression"
	"github.com/shodhmemory/engine/internal/graph"
	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/internal/vector"
	"github.com/shodhmemory/engine/pkg/config"
)

// maxConcurrentUserTicks bounds how many users' maintenance work runs
// at once; each does its own storage reads/writes and graph edge
// updates, which are independent across users.
const maxConcurrentUserTicks = 4

var log = logging.GetLogger("maintenance")

// VectorIndexes resolves the live in-memory ANN index for a user, so
// the loop can compact tombstones without owning index lifecycle
// itself. Returns nil if the user has no index yet.
type VectorIndexes interface {
	IndexFor(userID string) *vector.Index
}

// Runner drives one maintenance tick across every user with stored
// memories: node/edge decay, pruning, rehearsal, consolidation, and
// index repair.
type Runner struct {
	store   *storage.Store
	graph   *graph.Service
	indexes VectorIndexes
	cfg     config.Config
}

// NewRunner builds a Runner over the given storage, graph, and vector
// index registry.
func NewRunner(store *storage.Store, graphSvc *graph.Service, indexes VectorIndexes, cfg config.Config) *Runner {
	return &Runner{store: store, graph: graphSvc, indexes: indexes, cfg: cfg}
}

// Report summarizes the work done by a single tick.
type Report struct {
	UsersProcessed  int
	EdgesDecayed    int
	EdgesPruned     int
	Replayed        int
	Consolidated    int
	TombstonesFixed int
}

// Tick runs one full maintenance pass at time now: graph edge decay
// and pruning first, then per-user activation decay, replay,
// consolidation, and index repair. Ticks are idempotent under constant
// now: decay composes exactly over elapsed time (graph.DecayStrength),
// replay is skipped when no time has elapsed since the last tick, and
// consolidation only acts on records that still qualify, so re-running
// a tick at the same now a second time is a no-op beyond the first.
func (r *Runner) Tick(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{}

	lastTick, err := r.store.LastTickAt()
	if err != nil {
		return nil, err
	}
	var elapsedHours float64
	if lastTick.IsZero() {
		// Bootstrap: no checkpoint yet, so assume one nominal interval
		// elapsed rather than skipping decay entirely on the very first
		// tick.
		elapsedHours = float64(r.cfg.Maintenance.IntervalSecs) / 3600
	} else {
		elapsedHours = now.Sub(lastTick).Hours()
		if elapsedHours < 0 {
			elapsedHours = 0
		}
	}

	users, err := r.store.ListUsers()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return report, model.NewError(model.KindCancelled, "maintenance tick cancelled", err)
	}

	decayed, pruned, err := r.graph.DecayAndPrune(now)
	if err != nil {
		return report, err
	}
	report.EdgesDecayed = decayed
	report.EdgesPruned = pruned

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUserTicks)
	for _, user := range users {
		user := user
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			delta, err := r.tickUser(user, now, elapsedHours)
			if err != nil {
				log.Error("maintenance tick failed for user", "user", user, "error", err)
				return nil
			}
			mu.Lock()
			report.UsersProcessed++
			report.Replayed += delta.Replayed
			report.Consolidated += delta.Consolidated
			report.TombstonesFixed += delta.TombstonesFixed
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := r.store.SetLastTickAt(now); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) tickUser(user string, now time.Time, elapsedHours float64) (*Report, error) {
	report := &Report{}

	ids, err := r.store.ListIDsForUser(user)
	if err != nil {
		return nil, err
	}
	records, err := r.store.GetMany(user, ids)
	if err != nil {
		return nil, err
	}

	r.decayActivations(records, elapsedHours)
	if err := r.replayTop(user, records, now, elapsedHours, report); err != nil {
		return nil, err
	}
	if err := r.consolidate(user, records, now, report); err != nil {
		return nil, err
	}

	if idx := r.indexes.IndexFor(user); idx != nil {
		report.TombstonesFixed += idx.CompactTombstones()
	}
	return report, nil
}

// decayActivations applies exponential activation decay in place, over
// elapsedHours since the previous tick. The decay rate is derived from
// the configured per-tick multiplicative factor (ActivationDecayPerTick),
// converted to an hourly rate using the configured tick interval, so
// that decaying over exactly one nominal interval matches it, while
// decaying over elapsedHours==0 (calling Tick twice at the same
// instant) is a no-op, keeping ticks idempotent under constant time.
// It does not persist — callers persist alongside whatever else
// changes on the record this tick.
func (r *Runner) decayActivations(records []*model.Record, elapsedHours float64) {
	if elapsedHours <= 0 {
		return
	}

	perTick := r.cfg.Maintenance.ActivationDecayPerTick
	if perTick <= 0 || perTick >= 1 {
		perTick = 0.95
	}
	intervalHours := float64(r.cfg.Maintenance.IntervalSecs) / 3600
	if intervalHours <= 0 {
		intervalHours = 300.0 / 3600
	}
	lambda := -math.Log(perTick) / intervalHours
	factor := float32(math.Exp(-lambda * elapsedHours))

	for _, rec := range records {
		rec.Activation *= factor
		if rec.Activation < 0 {
			rec.Activation = 0
		}
	}
}

// replayTop touches the K most-activated records to model rehearsal:
// each one's incident edges strengthen once, as if it had just been
// recalled. Nothing is replayed when elapsedHours is zero (a repeated
// tick at the same instant).
func (r *Runner) replayTop(user string, records []*model.Record, now time.Time, elapsedHours float64, report *Report) error {
	k := r.cfg.Maintenance.ReplayTopK
	if k <= 0 || len(records) == 0 || elapsedHours <= 0 {
		return r.persistAll(user, records)
	}

	sorted := make([]*model.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Activation > sorted[j].Activation })
	if k > len(sorted) {
		k = len(sorted)
	}

	ids := make([]string, 0, k)
	for i := 0; i < k; i++ {
		ids = append(ids, sorted[i].ID)
	}
	if len(ids) >= 2 {
		if err := r.graph.CoActivate(ids, now); err != nil {
			return err
		}
	}
	report.Replayed += len(ids)

	return r.persistAll(user, records)
}

func (r *Runner) persistAll(_ string, records []*model.Record) error {
	for _, rec := range records {
		if rec.Compression == model.CompressionSemantic || rec.Compression == model.CompressionHybrid {
			continue // content already gone; nothing new to persist there
		}
		if err := r.store.Update(rec); err != nil {
			return err
		}
	}
	return nil
}

// consolidate replaces eligible aged, low-activity, low-importance
// records with a semantic gist.
func (r *Runner) consolidate(user string, records []*model.Record, now time.Time, report *Report) error {
	for _, rec := range records {
		if rec.Compression != model.CompressionNone {
			continue
		}
		ageDays := now.Sub(rec.CreatedAt).Hours() / 24
		m := r.cfg.Maintenance
		if !compression.ConsolidationEligible(rec, ageDays, float64(m.ConsolidateAfterDays), m.ConsolidateMaxActivationCount, m.ConsolidateMaxImportance) {
			continue
		}
		compression.ApplySemantic(rec)
		if err := r.store.Update(rec); err != nil {
			return err
		}
		report.Consolidated++
	}
	return nil
}
