package entities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

// HTTPClient extracts entities via a configured NER endpoint. Used
// when EntitiesConfig.BaseURL is set; returns Unavailable otherwise so
// callers can persist with zero entities and mark the record for
// backfill.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient builds a client targeting cfg.BaseURL.
func NewHTTPClient(cfg config.EntitiesConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{baseURL: cfg.BaseURL, httpClient: &http.Client{Timeout: timeout}}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractedSpan struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type extractResponse struct {
	Entities []extractedSpan `json:"entities"`
}

// Extract implements Extractor.
func (c *HTTPClient) Extract(ctx context.Context, text string) ([]model.Entity, error) {
	if c.baseURL == "" {
		return nil, model.NewError(model.KindUnavailable, "no entity extractor endpoint configured", nil)
	}
	if text == "" {
		return nil, nil
	}

	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, model.NewError(model.KindInvalidInput, "encode extract request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/extract", bytes.NewReader(body))
	if err != nil {
		return nil, model.NewError(model.KindUnavailable, "build extract request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewError(model.KindUnavailable, "extract request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, model.NewError(model.KindUnavailable, fmt.Sprintf("extract request returned %d: %s", resp.StatusCode, b), nil)
	}

	var parsed extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, model.NewError(model.KindUnavailable, "decode extract response", err)
	}

	out := make([]model.Entity, 0, len(parsed.Entities))
	for _, s := range parsed.Entities {
		out = append(out, model.Entity{
			Text:  s.Text,
			Type:  labelToType(s.Label),
			Start: s.Start,
			End:   s.End,
		})
	}
	return out, nil
}

func labelToType(label string) model.EntityType {
	switch label {
	case "Person":
		return model.EntityPerson
	case "Org":
		return model.EntityOrg
	case "Location":
		return model.EntityLocation
	default:
		return model.EntityOther
	}
}
