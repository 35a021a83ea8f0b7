package engine

import (
	"context"
	"time"

	"github.com/shodhmemory/engine/internal/graph"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/retrieval"
	"github.com/shodhmemory/engine/internal/vector"
)

// annOverfetch controls how many ANN hits feed spreading activation
// before the hybrid ranker trims to the caller's limit — wide enough
// that re-ranking by importance/recency can reorder within the pool.
const annOverfetch = 4

// RecallOptions is the input to Recall and Retrieve.
type RecallOptions struct {
	UserID string
	Query  string // semantic query text; empty for filter-only Retrieve
	Mode   retrieval.Mode
	Limit  int

	// Filters, used by Retrieve; zero values mean "no filter".
	Tags           []string
	MemoryType     model.MemoryType
	ImportanceMin  float32
	ImportanceBucket *int
}

// Recall embeds query, searches the vector index, spreads activation
// over the associative graph from the top hits, re-ranks the union by
// the hybrid score, and applies recall side effects. If the user has
// no vector index yet (nothing ever ingested, or the index was lost)
// it degrades to an activation/importance-only ranking over every
// stored record.
func (e *Engine) Recall(ctx context.Context, opts RecallOptions) ([]*model.Record, error) {
	if opts.UserID == "" {
		return nil, model.NewError(model.KindInvalidInput, "user_id is required", nil)
	}
	mode := opts.Mode
	if mode == "" {
		mode = retrieval.ModeHybrid
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.Retrieval.DefaultLimit
	}
	now := time.Now().UTC()

	var queryVec []float32
	if opts.Query != "" {
		vec, _ := e.safeEmbed(ctx, opts.Query)
		queryVec = vec
	}

	idx := e.indexes.IndexFor(opts.UserID)
	var hits []vector.Result
	if idx != nil && hasSignal(queryVec) {
		hits = idx.Search(queryVec, limit*annOverfetch)
	}

	seeds := make([]graph.Seed, 0, len(hits))
	for i, h := range hits {
		rank := float32(i) / float32(max(1, len(hits)-1))
		seeds = append(seeds, graph.Seed{ID: h.ID, Activation: 1 - rank})
	}

	// activation only feeds this call's ranking; it is not written back
	// onto the visited records, so a node touched solely by spreading
	// (no direct ANN hit) keeps its stored Activation until the next
	// maintenance decay pass rather than carrying this bump forward.
	activation := map[string]float32{}
	if len(seeds) > 0 {
		spread, err := graph.Spread(seeds, e.cfg.Graph, e.graph.NeighborsOf(opts.UserID))
		if err != nil {
			log.Warn("spreading activation failed, continuing without it", "error", err)
		} else {
			activation = spread
		}
	}

	candidateIDs := make(map[string]bool, len(hits)+len(activation))
	for _, h := range hits {
		candidateIDs[h.ID] = true
	}
	for id := range activation {
		candidateIDs[id] = true
	}

	var records []*model.Record
	var err error
	if len(candidateIDs) > 0 {
		ids := make([]string, 0, len(candidateIDs))
		for id := range candidateIDs {
			ids = append(ids, id)
		}
		records, err = e.store.GetMany(opts.UserID, ids)
	} else {
		// No ANN/activation signal (fresh index, empty query, or
		// degraded index): fall back to every stored record for the
		// user so importance/recency-only ranking still returns
		// something.
		var allIDs []string
		allIDs, err = e.store.ListIDsForUser(opts.UserID)
		if err == nil {
			records, err = e.store.GetMany(opts.UserID, allIDs)
		}
	}
	if err != nil {
		return nil, err
	}

	similarity := map[string]float32{}
	if hasSignal(queryVec) {
		for _, r := range records {
			similarity[r.ID] = cosine(queryVec, r.Embedding)
		}
	}

	candidates := make([]retrieval.Candidate, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, retrieval.Candidate{
			Record:     r,
			Similarity: similarity[r.ID],
			Activation: activation[r.ID],
		})
	}

	ranked := retrieval.Rank(candidates, mode, e.cfg.Retrieval, now, limit)

	e.writeMu.Lock()
	err = retrieval.ApplySideEffects(e.store, e.graph, ranked, now, e.cfg.Importance)
	e.writeMu.Unlock()
	if err != nil {
		log.Warn("failed to apply recall side effects", "error", err)
	}

	out := make([]*model.Record, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Record)
	}
	return out, nil
}

// Retrieve filters by tag/type/importance before ranking, for callers
// that want exact facets rather than semantic similarity.
func (e *Engine) Retrieve(ctx context.Context, opts RecallOptions) ([]*model.Record, error) {
	if opts.UserID == "" {
		return nil, model.NewError(model.KindInvalidInput, "user_id is required", nil)
	}

	ids, err := e.filteredIDs(opts)
	if err != nil {
		return nil, err
	}
	records, err := e.store.GetMany(opts.UserID, ids)
	if err != nil {
		return nil, err
	}
	filtered := records[:0]
	for _, r := range records {
		if opts.MemoryType != "" && r.MemoryType != opts.MemoryType {
			continue
		}
		if opts.ImportanceBucket != nil && model.ImportanceBucket(r.Importance) != *opts.ImportanceBucket {
			continue
		}
		if r.Importance < opts.ImportanceMin {
			continue
		}
		filtered = append(filtered, r)
	}
	records = filtered

	mode := opts.Mode
	if mode == "" {
		mode = retrieval.ModeHybrid
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.Retrieval.DefaultLimit
	}

	candidates := make([]retrieval.Candidate, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, retrieval.Candidate{Record: r, Activation: r.Activation})
	}
	ranked := retrieval.Rank(candidates, mode, e.cfg.Retrieval, time.Now().UTC(), limit)

	out := make([]*model.Record, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Record)
	}
	return out, nil
}

func (e *Engine) filteredIDs(opts RecallOptions) ([]string, error) {
	switch {
	case len(opts.Tags) > 0:
		seen := map[string]bool{}
		var out []string
		for _, t := range opts.Tags {
			ids, err := e.store.ByTag(opts.UserID, t)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
		return out, nil
	case opts.MemoryType != "":
		return e.store.ByType(opts.UserID, opts.MemoryType)
	case opts.ImportanceBucket != nil:
		return e.store.ByImportanceBucket(opts.UserID, *opts.ImportanceBucket)
	default:
		return e.store.ListIDsForUser(opts.UserID)
	}
}

// ProactiveContext summarizes a user's highest-value memories for
// session bootstrap: the most important, recently touched records,
// ranked the same way hybrid recall would without a query.
func (e *Engine) ProactiveContext(ctx context.Context, userID string, limit int) ([]*model.Record, error) {
	return e.Retrieve(ctx, RecallOptions{UserID: userID, Mode: retrieval.ModeHybrid, Limit: limit})
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
