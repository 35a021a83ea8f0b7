package vector

import (
	"sort"
	"sync"

	"github.com/shodhmemory/engine/internal/logging"
)

var log = logging.GetLogger("vector")

// Config governs Vamana graph construction and search.
type Config struct {
	MaxDegree       int     // R: out-degree cap per node
	BuildBeamWidth  int     // L: candidate pool width during insertion
	SearchBeamWidth int     // L_q: candidate pool width during search
	Alpha           float64 // alpha-RNG pruning factor, in [1.0, 1.4]
}

// DefaultConfig returns the default Vamana parameters.
func DefaultConfig() Config {
	return Config{MaxDegree: 64, BuildBeamWidth: 100, SearchBeamWidth: 100, Alpha: 1.2}
}

// Index is an incremental, in-process Vamana/DiskANN-style ANN graph
// over L2-normalized vectors. It is safe for concurrent use: Len takes
// the read lock; searches, insertions and deletions take the write
// lock, since a search may repair neighbor lists around tombstones.
type Index struct {
	mu    sync.RWMutex
	cfg   Config
	nodes map[string]*node
	entry string // id of the current entry point, "" if empty
}

// New creates an empty index with the given configuration.
func New(cfg Config) *Index {
	return &Index{cfg: cfg, nodes: make(map[string]*node)}
}

// Len returns the number of live (non-tombstoned) nodes.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for _, nd := range idx.nodes {
		if !nd.tombstoned {
			n++
		}
	}
	return n
}

// Insert adds or replaces the vector for id. Zero vectors (empty
// content) are indexed like any other node, but Search leaves them
// out of the results for a non-zero query.
func (idx *Index) Insert(id string, vector []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if existing, ok := idx.nodes[id]; ok {
		existing.vector = vector
		existing.tombstoned = false
		return
	}

	n := newNode(id, vector)
	idx.nodes[id] = n

	if idx.entry == "" {
		idx.entry = id
		return
	}

	candidates := idx.greedySearch(idx.entry, vector, idx.cfg.BuildBeamWidth, nil)
	neighbors := idx.robustPrune(id, vector, candidates)
	n.neighbors = neighbors

	for _, nb := range neighbors {
		idx.addBackLink(nb, id)
	}
}

// addBackLink adds id as a neighbor of nb, re-pruning nb's neighbor
// list if it would exceed MaxDegree.
func (idx *Index) addBackLink(nb, id string) {
	nbNode, ok := idx.nodes[nb]
	if !ok || nbNode.hasNeighbor(id) {
		return
	}
	nbNode.neighbors = append(nbNode.neighbors, id)
	if len(nbNode.neighbors) > idx.cfg.MaxDegree {
		cands := make([]candidate, 0, len(nbNode.neighbors))
		for _, other := range nbNode.neighbors {
			if on, ok := idx.nodes[other]; ok && !on.tombstoned {
				cands = append(cands, candidate{id: other, dist: distance(nbNode.vector, on.vector)})
			}
		}
		nbNode.neighbors = idx.robustPruneCandidates(nb, nbNode.vector, cands)
	}
}

// Delete marks id as a tombstone. It is not removed from the graph
// immediately; its neighbors are repaired lazily the next time a
// search traverses through it.
func (idx *Index) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	n, ok := idx.nodes[id]
	if !ok {
		return
	}
	n.tombstoned = true

	if idx.entry == id {
		idx.entry = ""
		for other, on := range idx.nodes {
			if !on.tombstoned {
				idx.entry = other
				break
			}
		}
	}
}

// Result is one ranked match from Search.
type Result struct {
	ID       string
	Distance float32
}

// Search returns the top-k nearest live ids to query by ascending
// distance (descending similarity), beam-searching from the current
// entry point. Neighbor lists that point at tombstones are repaired
// lazily as they're encountered.
func (idx *Index) Search(query []float32, k int) []Result {
	idx.mu.Lock() // upgraded: lazy repair mutates neighbor lists
	defer idx.mu.Unlock()

	if idx.entry == "" {
		return nil
	}

	candidates := idx.greedySearch(idx.entry, query, maxInt(idx.cfg.SearchBeamWidth, k), repairFn(idx))

	queryIsZero := isZero(query)
	var live []candidate
	for _, c := range candidates {
		if n, ok := idx.nodes[c.id]; ok && !n.tombstoned && (queryIsZero || !isZero(n.vector)) {
			live = append(live, c)
		}
	}
	sort.Slice(live, func(i, j int) bool { return lessDistance(live[i].dist, live[j].dist) })

	if k > len(live) {
		k = len(live)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{ID: live[i].id, Distance: live[i].dist}
	}
	return out
}

// CompactTombstones proactively repairs every live node whose neighbor
// list still references a tombstoned id, rather than waiting for a
// search to stumble onto it. Called by the maintenance loop after a
// batch of deletions so neighborhoods don't silently thin out between
// searches. Returns the number of nodes repaired.
func (idx *Index) CompactTombstones() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	repaired := 0
	for id, n := range idx.nodes {
		if n.tombstoned {
			continue
		}
		var hasTombstone bool
		live := n.neighbors[:0:0]
		for _, nb := range n.neighbors {
			if on, ok := idx.nodes[nb]; ok && !on.tombstoned {
				live = append(live, nb)
			} else {
				hasTombstone = true
			}
		}
		if hasTombstone {
			n.neighbors = live
			repaired++
			log.Debug("compacted tombstoned neighbors", "id", id)
		}
	}
	return repaired
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type candidate struct {
	id   string
	dist float32
}

// repairFn returns a callback greedySearch invokes whenever it steps
// through a tombstoned node, so the tombstone's live neighbors get
// directly relinked and the dead node's entry is dropped from further
// traversal. Logged, not erred: a missing or corrupt neighbor entry is
// a tombstone, not a failure.
func repairFn(idx *Index) func(deadID string) {
	return func(deadID string) {
		dead, ok := idx.nodes[deadID]
		if !ok {
			return
		}
		live := dead.neighbors[:0:0]
		for _, nb := range dead.neighbors {
			if n, ok := idx.nodes[nb]; ok && !n.tombstoned {
				live = append(live, nb)
			}
		}
		for i := 0; i < len(live); i++ {
			for j := i + 1; j < len(live); j++ {
				idx.addBackLink(live[i], live[j])
				idx.addBackLink(live[j], live[i])
			}
		}
		log.Debug("repaired tombstoned node", "id", deadID)
	}
}

// greedySearch performs beam search from start toward query with beam
// width L, returning up to L explored candidates sorted by ascending
// distance (ties broken id-lexicographically). onTombstone, if
// non-nil, is invoked once per tombstoned id encountered during
// traversal.
func (idx *Index) greedySearch(start string, query []float32, l int, onTombstone func(string)) []candidate {
	startNode, ok := idx.nodes[start]
	if !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	expanded := make(map[string]bool)
	repaired := make(map[string]bool)
	candidates := []candidate{{id: start, dist: distance(startNode.vector, query)}}

	sortCandidates := func(cs []candidate) {
		sort.Slice(cs, func(i, j int) bool {
			if cs[i].dist == cs[j].dist {
				return cs[i].id < cs[j].id
			}
			return lessDistance(cs[i].dist, cs[j].dist)
		})
	}

	for {
		sortCandidates(candidates)
		if len(candidates) > l {
			candidates = candidates[:l]
		}

		var next string
		for _, c := range candidates {
			if !expanded[c.id] {
				next = c.id
				break
			}
		}
		if next == "" {
			break
		}
		expanded[next] = true

		n, ok := idx.nodes[next]
		if !ok {
			continue
		}
		if n.tombstoned {
			if onTombstone != nil && !repaired[next] {
				onTombstone(next)
				repaired[next] = true
			}
		}

		for _, nbID := range n.neighbors {
			if visited[nbID] {
				continue
			}
			visited[nbID] = true
			nb, ok := idx.nodes[nbID]
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{id: nbID, dist: distance(nb.vector, query)})
		}
	}

	sortCandidates(candidates)
	if len(candidates) > l {
		candidates = candidates[:l]
	}
	return candidates
}
