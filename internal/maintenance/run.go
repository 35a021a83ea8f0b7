package maintenance

import (
	"context"
	"time"
)

// Run drives Tick on a fixed interval until ctx is cancelled, logging
// each tick's outcome. interval <= 0 falls back to the configured
// IntervalSecs (default 300s).
func (r *Runner) Run(ctx context.Context) {
	interval := time.Duration(r.cfg.Maintenance.IntervalSecs) * time.Second
	if interval <= 0 {
		interval = 300 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("maintenance loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("maintenance loop stopping")
			return
		case tickTime := <-ticker.C:
			report, err := r.Tick(ctx, tickTime.UTC())
			if err != nil {
				log.Error("maintenance tick failed", "error", err)
				continue
			}
			log.Info("maintenance tick complete",
				"users", report.UsersProcessed,
				"edges_decayed", report.EdgesDecayed,
				"edges_pruned", report.EdgesPruned,
				"replayed", report.Replayed,
				"consolidated", report.Consolidated,
				"tombstones_fixed", report.TombstonesFixed,
			)
		}
	}
}
