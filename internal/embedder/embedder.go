package embedder

import (
	"context"
	"math"

	"github.com/shodhmemory/engine/internal/model"
)

// Embedder turns text into an embedding vector. Implementations must
// honor a common contract: empty text yields a zero vector; NaN/Inf
// components are zeroed before normalization; if the resulting norm
// is below 1e-9, the zero vector is returned.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Normalize sanitizes and L2-normalizes vec in place, returning it.
// NaN/Inf components become 0 before the norm is computed; if the norm
// is below 1e-9 the vector is left all-zero.
func Normalize(vec []float32) []float32 {
	for i, x := range vec {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			vec[i] = 0
		}
	}
	var sumSq float64
	for _, x := range vec {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm < 1e-9 {
		for i := range vec {
			vec[i] = 0
		}
		return vec
	}
	for i, x := range vec {
		vec[i] = float32(float64(x) / norm)
	}
	return vec
}

// ZeroVector returns a zero embedding of the engine's fixed dimension.
func ZeroVector() []float32 {
	return make([]float32, model.EmbeddingDim)
}
