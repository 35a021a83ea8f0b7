package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

// HTTPClient embeds text via an Ollama-compatible /api/embeddings
// endpoint. Used when EmbedderConfig.BaseURL is set and OFFLINE is
// not; falls back to returning an Unavailable error otherwise, which
// callers handle by persisting with a zero embedding and marking the
// record for backfill.
type HTTPClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewHTTPClient builds a client targeting cfg.BaseURL. model names the
// embedding model the endpoint should use.
func NewHTTPClient(cfg config.EmbedderConfig, modelName string) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10_000_000_000 // 10s, in case callers zero-value the config
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		model:      modelName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed implements Embedder.
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.baseURL == "" {
		return nil, model.NewError(model.KindUnavailable, "no embedder endpoint configured", nil)
	}
	if text == "" {
		return ZeroVector(), nil
	}

	body, err := json.Marshal(embeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, model.NewError(model.KindInvalidInput, "encode embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, model.NewError(model.KindUnavailable, "build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewError(model.KindUnavailable, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, model.NewError(model.KindUnavailable, fmt.Sprintf("embedding request returned %d: %s", resp.StatusCode, b), nil)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, model.NewError(model.KindUnavailable, "decode embedding response", err)
	}

	return Normalize(parsed.Embedding), nil
}
