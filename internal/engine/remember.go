package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shodhmemory/engine/internal/embedder"
	"github.com/shodhmemory/engine/internal/importance"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/tier"
)

// RememberOptions is the input to Remember. UserID and Content are
// required; everything else defaults.
type RememberOptions struct {
	UserID     string
	Content    string
	MemoryType model.MemoryType
	Tags       []string
	Metadata   map[string]interface{}
	Geo        *model.GeoPoint
}

// Remember ingests a new experience: normalize content, embed,
// extract entities, score importance, persist record + vector +
// secondary index keys, place it in a tier, and strengthen graph
// edges to memories sharing its tags or entities. It is all-or-nothing
// for durability: if the embedder or entity extractor is unavailable
// the record still persists, marked NeedsBackfill.
func (e *Engine) Remember(ctx context.Context, opts RememberOptions) (*model.Record, error) {
	if opts.UserID == "" {
		return nil, model.NewError(model.KindInvalidInput, "user_id is required", nil)
	}
	content := strings.TrimSpace(opts.Content)
	memType := opts.MemoryType
	if memType == "" {
		memType = model.TypeObservation
	}
	if !memType.IsValid() {
		return nil, model.NewError(model.KindInvalidInput, "unknown memory_type: "+string(memType), nil)
	}

	now := time.Now().UTC()
	vec, vecUnavailable := e.safeEmbed(ctx, content)
	ents, entUnavailable := e.safeExtract(ctx, content)

	rec := &model.Record{
		ID:              uuid.NewString(),
		UserID:          opts.UserID,
		Content:         content,
		MemoryType:      memType,
		Tags:            dedupeStrings(opts.Tags),
		LastActivatedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
		Embedding:       vec,
		Entities:        ents,
		Compression:     model.CompressionNone,
		Geo:             opts.Geo,
		Metadata:        opts.Metadata,
		NeedsBackfill:   vecUnavailable || entUnavailable,
	}
	rec.Importance = importance.Score(rec)
	rec.Tier = tier.PlaceOnIngest(rec.Importance, e.cfg.Tiers)
	rec.Activation = tier.InitialActivation(rec.Importance)

	e.writeMu.Lock()
	err := e.store.Store(rec)
	e.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	if hasSignal(rec.Embedding) {
		e.indexes.getOrCreate(rec.UserID).Insert(rec.ID, rec.Embedding)
	}

	if err := e.linkCooccurring(rec, now); err != nil {
		log.Warn("failed to link co-occurring memories", "id", rec.ID, "error", err)
	}

	if err := e.enforceWorkingCapacity(rec.UserID, now); err != nil {
		log.Warn("failed to enforce working-tier capacity", "user_id", rec.UserID, "error", err)
	}

	return rec, nil
}

func (e *Engine) safeEmbed(ctx context.Context, content string) ([]float32, bool) {
	if content == "" {
		return embedder.ZeroVector(), false
	}
	vec, err := e.embedder.Embed(ctx, content)
	if err != nil {
		log.Warn("embedder unavailable, persisting with zero vector", "error", err)
		return embedder.ZeroVector(), true
	}
	return vec, false
}

func (e *Engine) safeExtract(ctx context.Context, content string) ([]model.Entity, bool) {
	if content == "" {
		return nil, false
	}
	ents, err := e.entities.Extract(ctx, content)
	if err != nil {
		log.Warn("entity extractor unavailable, persisting with no entities", "error", err)
		return nil, true
	}
	return ents, false
}

// linkCooccurring strengthens (creating if necessary) the edges
// between rec and every other memory sharing one of its tags or
// entities, within the same ingest call.
func (e *Engine) linkCooccurring(rec *model.Record, now time.Time) error {
	seen := map[string]bool{rec.ID: true}
	group := []string{rec.ID}

	for _, t := range rec.Tags {
		ids, err := e.store.ByTag(rec.UserID, t)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				group = append(group, id)
			}
		}
	}
	for _, ent := range rec.Entities {
		ids, err := e.store.ByEntity(rec.UserID, ent.NormalizedText())
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				group = append(group, id)
			}
		}
	}

	if len(group) < 2 {
		return nil
	}
	return e.graph.CoActivate(group, now)
}

// enforceWorkingCapacity demotes the lowest-scoring Working item to
// Session if the tier has overflowed, and, when Session is over its
// byte budget, promotes the first LongTerm-eligible Session item.
func (e *Engine) enforceWorkingCapacity(userID string, now time.Time) error {
	ids, err := e.store.ListIDsForUser(userID)
	if err != nil {
		return err
	}
	records, err := e.store.GetMany(userID, ids)
	if err != nil {
		return err
	}

	working := filterByTier(records, model.TierWorking)
	if tier.WorkingOverflowing(len(working), e.cfg.Tiers) {
		idx := tier.SelectEvictionCandidate(working, e.cfg.Tiers, now)
		if idx >= 0 {
			working[idx].Tier = model.TierSession
			working[idx].UpdatedAt = now
			if err := e.store.Update(working[idx]); err != nil {
				return err
			}
		}
	}

	session := filterByTier(records, model.TierSession)
	var sessionBytes int64
	for _, r := range session {
		sessionBytes += int64(len(r.Content))
	}
	if tier.SessionOverflowing(sessionBytes, e.cfg.Tiers) {
		for _, r := range session {
			if tier.EligibleForLongTerm(r, e.cfg.Tiers) {
				r.Tier = model.TierLongTerm
				r.UpdatedAt = now
				if err := e.store.Update(r); err != nil {
					return err
				}
				break
			}
		}
	}

	return nil
}

func filterByTier(records []*model.Record, t model.Tier) []*model.Record {
	out := make([]*model.Record, 0, len(records))
	for _, r := range records {
		if r.Tier == t {
			out = append(out, r)
		}
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
