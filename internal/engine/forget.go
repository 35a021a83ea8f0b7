package engine

import (
	"context"

	"github.com/shodhmemory/engine/internal/model"
)

// Get fetches a single record by id, for GET /api/memory/{id}.
func (e *Engine) Get(ctx context.Context, userID, id string) (*model.Record, error) {
	return e.store.Get(userID, id)
}

// Forget deletes one memory: its primary record, secondary index
// keys, incident edges (via Store.Delete), and its vector-index entry.
// Edge and index removal are best-effort cleanup on top of the durable
// store delete: incident-edge removal is atomic as part of the store
// delete, while the vector-index tombstone is allowed to lag and
// self-heals on next search touch.
func (e *Engine) Forget(ctx context.Context, userID, id string) error {
	e.writeMu.Lock()
	err := e.store.Delete(userID, id)
	e.writeMu.Unlock()
	if err != nil {
		return err
	}
	if idx := e.indexes.IndexFor(userID); idx != nil {
		idx.Delete(id)
	}
	return nil
}

// ForgetAll erases every memory belonging to userID: a GDPR-style wipe.
func (e *Engine) ForgetAll(ctx context.Context, userID string) error {
	ids, err := e.store.ListIDsForUser(userID)
	if err != nil {
		return err
	}

	e.writeMu.Lock()
	err = e.store.DeleteAllForUser(userID)
	e.writeMu.Unlock()
	if err != nil {
		return err
	}

	if idx := e.indexes.IndexFor(userID); idx != nil {
		for _, id := range ids {
			idx.Delete(id)
		}
	}
	return nil
}
