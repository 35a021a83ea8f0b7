package engine

import (
	"context"

	"github.com/shodhmemory/engine/internal/storage"
)

// Stats returns per-tier and per-type counts for userID, for GET
// /api/users/{id}/stats.
func (e *Engine) Stats(ctx context.Context, userID string) (*storage.Stats, error) {
	return e.store.StatsForUser(userID)
}
