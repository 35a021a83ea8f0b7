package model

import "time"

// LTPThreshold is the co-activation count at which an edge potentiates.
const LTPThreshold = 5

// HebbianEta is the learning rate for Hebbian strengthening.
const HebbianEta = 0.15

// LTPBonus is the one-shot strength bonus applied on potentiation.
const LTPBonus = 0.15

// MinStrength is the floor below which a non-potentiated edge is pruned.
const MinStrength = 0.05

// NormalHalfLifeHours is the decay half-life for non-potentiated edges.
const NormalHalfLifeHours = 168.0

// PotentiatedHalfLifeHours is the decay half-life once potentiated.
const PotentiatedHalfLifeHours = 840.0

// EdgeKey returns the canonical, order-independent storage key for the
// edge between a and b.
func EdgeKey(a, b string) (min, max string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Edge is a weighted, undirected connection between two memory ids in
// the associative graph.
type Edge struct {
	A, B            string // A < B lexicographically; see EdgeKey
	Strength        float32
	ActivationCount uint32
	Potentiated     bool
	LastActivatedAt time.Time
	CreatedAt       time.Time
}

// NewEdge creates a fresh, unpotentiated edge between a and b.
func NewEdge(a, b string, now time.Time) *Edge {
	min, max := EdgeKey(a, b)
	return &Edge{
		A:               min,
		B:               max,
		Strength:        0,
		ActivationCount: 0,
		Potentiated:     false,
		LastActivatedAt: now,
		CreatedAt:       now,
	}
}

// Other returns the endpoint that isn't id, or "" if id is neither
// endpoint.
func (e *Edge) Other(id string) string {
	switch id {
	case e.A:
		return e.B
	case e.B:
		return e.A
	default:
		return ""
	}
}

// HasEndpoint reports whether id is one of the edge's two endpoints.
func (e *Edge) HasEndpoint(id string) bool {
	return id == e.A || id == e.B
}
