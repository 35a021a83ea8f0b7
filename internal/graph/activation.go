package graph

import (
	"github.com/shodhmemory/engine/pkg/config"
)

// Seed is an initial activation source for spreading activation,
// typically one of the vector index's top-k hits for a query.
type Seed struct {
	ID         string
	Activation float32
}

// Spread diffuses activation outward from seeds over the graph up to
// cfg.MaxHops hops, multiplying by edge strength and cfg.Damping at
// each hop: A(v) += A(u) * s(u,v) * damping^h. The diffusion is
// breadth-first: a node receives activation only on the hop that first
// reaches it, so nothing flows back into the seeds or into nodes
// reached on an earlier hop. Edges
// below cfg.MinStrength still exist in storage until the next
// maintenance prune, but contribute negligible activation, so no
// separate filter is needed.
//
// neighbors is called once per node visited per hop; callers pass
// Service.Neighbors bound to a fixed userID via a closure.
func Spread(seeds []Seed, cfg config.GraphConfig, neighbors func(id string) ([]*edgeView, error)) (map[string]float32, error) {
	activation := make(map[string]float32, len(seeds))
	for _, s := range seeds {
		activation[s.ID] += s.Activation
	}

	frontier := make([]string, 0, len(seeds))
	visited := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		frontier = append(frontier, s.ID)
		visited[s.ID] = true
	}

	damping := cfg.Damping
	if damping <= 0 {
		damping = 1
	}

	factor := float32(1.0)
	for hop := 0; hop < cfg.MaxHops && len(frontier) > 0; hop++ {
		factor *= float32(damping)
		next := make([]string, 0)
		nextSeen := make(map[string]bool)

		for _, u := range frontier {
			edges, err := neighbors(u)
			if err != nil {
				return nil, err
			}
			base := activation[u]
			if base <= 0 {
				continue
			}
			for _, e := range edges {
				v := e.other
				if visited[v] {
					continue
				}
				delta := base * e.strength * factor
				if delta <= 0 {
					continue
				}
				activation[v] += delta
				if !nextSeen[v] {
					nextSeen[v] = true
					next = append(next, v)
				}
			}
		}
		for _, v := range next {
			visited[v] = true
		}
		frontier = next
	}

	return activation, nil
}

// edgeView is the minimal per-neighbor view Spread needs; it decouples
// the algorithm from model.Edge and storage lookups so it can be unit
// tested with synthetic adjacency.
type edgeView struct {
	other    string
	strength float32
}

// NeighborsOf adapts a Service into the neighbor-lookup function Spread
// expects, fixing userID and translating model.Edge into edgeView from
// id's perspective.
func (s *Service) NeighborsOf(userID string) func(id string) ([]*edgeView, error) {
	return func(id string) ([]*edgeView, error) {
		edges, err := s.Neighbors(userID, id)
		if err != nil {
			return nil, err
		}
		out := make([]*edgeView, 0, len(edges))
		for _, e := range edges {
			out = append(out, &edgeView{other: e.Other(id), strength: e.Strength})
		}
		return out, nil
	}
}
