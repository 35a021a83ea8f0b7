package embedder

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/shodhmemory/engine/internal/model"
)

// Local is the default, offline embedder: a deterministic feature-hash
// embedding over whitespace tokens. It requires no model download or
// network access, which is what offline mode demands when no
// HTTP-backed embedder is configured. It is not semantically strong,
// but it is stable, fast, and satisfies the embed(text) -> vec[384]
// contract exactly, including the empty-text and degenerate-norm cases.
type Local struct{}

// NewLocal returns the default offline embedder.
func NewLocal() *Local { return &Local{} }

// Embed implements Embedder.
func (Local) Embed(_ context.Context, text string) ([]float32, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return ZeroVector(), nil
	}

	vec := make([]float32, model.EmbeddingDim)
	for _, w := range words {
		h := fnv.New64a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum64()

		dim := int(sum % uint64(model.EmbeddingDim))
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[dim] += sign
	}

	return Normalize(vec), nil
}
