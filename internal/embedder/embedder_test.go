package embedder

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

func norm(vec []float32) float64 {
	var sumSq float64
	for _, x := range vec {
		sumSq += float64(x) * float64(x)
	}
	return math.Sqrt(sumSq)
}

func TestLocalEmbedEmptyTextYieldsZeroVector(t *testing.T) {
	e := NewLocal()
	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, model.EmbeddingDim)
	for _, x := range vec {
		require.Zero(t, x)
	}
}

func TestLocalEmbedIsNormalized(t *testing.T) {
	e := NewLocal()
	vec, err := e.Embed(context.Background(), "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	require.InDelta(t, 1.0, norm(vec), 1e-5)
}

func TestLocalEmbedIsDeterministic(t *testing.T) {
	e := NewLocal()
	a, err := e.Embed(context.Background(), "deterministic input")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "deterministic input")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNormalizeSanitizesNaNAndInf(t *testing.T) {
	vec := []float32{float32(math.NaN()), float32(math.Inf(1)), 3}
	out := Normalize(vec)
	require.Equal(t, float32(1.0), out[2])
	require.Zero(t, out[0])
	require.Zero(t, out[1])
}

func TestNormalizeDegenerateNormYieldsZeroVector(t *testing.T) {
	vec := []float32{1e-20, -1e-20}
	out := Normalize(vec)
	for _, x := range out {
		require.Zero(t, x)
	}
}

func TestHTTPClientEmbedsViaConfiguredEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		vec := make([]float32, model.EmbeddingDim)
		vec[0] = 1
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
	}))
	defer srv.Close()

	client := NewHTTPClient(config.EmbedderConfig{BaseURL: srv.URL}, "test-model")
	vec, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.InDelta(t, 1.0, norm(vec), 1e-5)
}

func TestHTTPClientUnavailableWithoutBaseURL(t *testing.T) {
	client := NewHTTPClient(config.EmbedderConfig{}, "test-model")
	_, err := client.Embed(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, model.KindUnavailable, model.KindOf(err))
}

func TestHTTPClientUnavailableOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(config.EmbedderConfig{BaseURL: srv.URL}, "test-model")
	_, err := client.Embed(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, model.KindUnavailable, model.KindOf(err))
}
