// Package testutil provides shared testing helpers for the engine:
// a throwaway bbolt-backed store, deterministic vector fixtures for
// ANN tests, and a fake clock for decay tests.
package testutil

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/storage"
)

// NewTestStore opens a temp-dir bbolt database and registers cleanup
// to close it when the test finishes.
func NewTestStore(t *testing.T) *storage.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine-test.db")
	store, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// DeterministicVector returns a fixed-seed unit vector of
// model.EmbeddingDim dimensions, distinct per seed, for ANN tests that
// need many reproducible vectors without a real embedder.
func DeterministicVector(seed int) []float32 {
	vec := make([]float32, model.EmbeddingDim)
	state := uint32(seed*2654435761 + 1)
	var sumSq float64
	for i := range vec {
		state = state*1664525 + 1013904223
		x := float32(state%2000)/1000 - 1 // in [-1, 1)
		vec[i] = x
		sumSq += float64(x) * float64(x)
	}
	norm := float32(1)
	if sumSq > 0 {
		norm = float32(1 / math.Sqrt(sumSq))
	}
	for i := range vec {
		vec[i] *= norm
	}
	return vec
}

// FakeClock is a mutable time source for deterministic decay tests.
type FakeClock struct {
	now time.Time
}

// NewFakeClock returns a FakeClock starting at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the clock's current time.
func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
