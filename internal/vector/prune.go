package vector

import "sort"

// robustPrune selects at most MaxDegree neighbors for the node at id
// with vector vec, out of the candidates explored during insertion.
// candidates are treated as pairs (id, dist-to-query_node): alpha-RNG
// pruning admits a candidate c only if it is not "shadowed" by an
// already-admitted neighbor e — i.e. e doesn't sit much closer to c
// than c sits to the node being built, for the configured alpha.
func (idx *Index) robustPrune(id string, vec []float32, candidates []candidate) []string {
	return idx.robustPruneCandidates(id, vec, candidates)
}

func (idx *Index) robustPruneCandidates(id string, vec []float32, candidates []candidate) []string {
	alpha := idx.cfg.Alpha
	if alpha < 1.0 {
		alpha = 1.0
	}

	pool := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.id == id {
			continue
		}
		pool = append(pool, c)
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].dist == pool[j].dist {
			return pool[i].id < pool[j].id
		}
		return lessDistance(pool[i].dist, pool[j].dist)
	})

	var selected []string
	for len(pool) > 0 && len(selected) < idx.cfg.MaxDegree {
		c := pool[0]
		pool = pool[1:]
		selected = append(selected, c.id)

		cNode, ok := idx.nodes[c.id]
		if !ok {
			continue
		}

		// Standard RNG pruning: having admitted c (closest remaining
		// candidate to the query node), drop any other candidate that
		// c shadows — i.e. c sits closer to it than alpha allows
		// relative to its own distance from the query node. A common
		// variant adds a "dist(c,e) <= dist(c,query)" admission
		// clause, which collapses into this same test whenever
		// alpha >= 1.
		remaining := pool[:0]
		for _, other := range pool {
			oNode, ok := idx.nodes[other.id]
			if !ok {
				continue
			}
			distCToOther := distance(cNode.vector, oNode.vector)
			if float64(distCToOther)*alpha > float64(other.dist) {
				remaining = append(remaining, other)
			}
		}
		pool = remaining
	}

	return selected
}
