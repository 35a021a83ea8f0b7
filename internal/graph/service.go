package graph

import (
	"time"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/pkg/config"
)

// Service is the associative graph's storage-backed API: edge lookup,
// Hebbian co-activation bookkeeping, and the decay/prune pass the
// maintenance loop drives.
type Service struct {
	store *storage.Store
	cfg   config.GraphConfig
}

// NewService builds a graph Service over store.
func NewService(store *storage.Store, cfg config.GraphConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// Edge returns the edge between a and b, or nil if none exists.
func (s *Service) Edge(a, b string) (*model.Edge, error) {
	e, err := s.store.GetEdge(a, b)
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// CoActivate strengthens the edge between every distinct pair in ids,
// creating edges that don't yet exist. Each unordered pair is
// strengthened at most once per call — the caller passes the full set
// of ids touched by one recall or ingest, and CoActivate deduplicates
// internally so no pair is double-counted within a single call.
func (s *Service) CoActivate(ids []string, now time.Time) error {
	unique := dedupe(ids)
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			if _, err := s.strengthenPair(unique[i], unique[j], now); err != nil {
				return err
			}
		}
	}
	return nil
}

// StrengthenPair strengthens (or creates) the single edge between a
// and b.
func (s *Service) StrengthenPair(a, b string, now time.Time) (*model.Edge, error) {
	return s.strengthenPair(a, b, now)
}

func (s *Service) strengthenPair(a, b string, now time.Time) (*model.Edge, error) {
	e, err := s.store.GetEdge(a, b)
	if err != nil {
		if model.KindOf(err) != model.KindNotFound {
			return nil, err
		}
		e = model.NewEdge(a, b, now)
	}
	Strengthen(e, s.cfg, now)
	if err := s.store.PutEdge(e); err != nil {
		return nil, err
	}
	return e, nil
}

// DecayAndPrune decays every edge in the store toward now and deletes
// those that fall below the strength floor and aren't potentiated.
// Called once per maintenance tick; idempotent under repeated ticks at
// constant now since DecayStrength composes exactly over elapsed time.
func (s *Service) DecayAndPrune(now time.Time) (decayed, pruned int, err error) {
	edges, err := s.store.AllEdges()
	if err != nil {
		return 0, 0, err
	}
	for _, e := range edges {
		Decay(e, s.cfg, now)
		e.LastActivatedAt = now
		decayed++
		if ShouldPrune(e, s.cfg) {
			if err := s.store.DeleteEdge(e.A, e.B); err != nil {
				return decayed, pruned, err
			}
			pruned++
			continue
		}
		if err := s.store.PutEdge(e); err != nil {
			return decayed, pruned, err
		}
	}
	return decayed, pruned, nil
}

// Neighbors returns every edge incident to id for userID.
func (s *Service) Neighbors(userID, id string) ([]*model.Edge, error) {
	return s.store.EdgesForNode(userID, id)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
