package storage

import (
	"encoding/json"
	"time"

	"github.com/shodhmemory/engine/internal/model"
)

// wireRecord and wireEdge mirror model.Record/model.Edge for on-disk
// JSON encoding. A dedicated wire type insulates the on-disk format
// from incidental changes to the in-memory struct (e.g. unexported
// helper fields added later) and keeps timestamps in a single
// explicit, millisecond-precision form.
type wireRecord struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Content         string            `json:"content"`
	MemoryType      model.MemoryType  `json:"memory_type"`
	Tags            []string          `json:"tags"`
	Importance      float32           `json:"importance"`
	Activation      float32           `json:"activation"`
	ActivationCount uint32            `json:"activation_count"`
	LastActivatedAt int64             `json:"last_activated_at_ms"`
	CreatedAt       int64             `json:"created_at_ms"`
	UpdatedAt       int64             `json:"updated_at_ms"`
	Embedding       []float32         `json:"embedding,omitempty"`
	Entities        []model.Entity    `json:"entities,omitempty"`
	Tier            model.Tier        `json:"tier"`
	Compression     model.Compression `json:"compression"`
	Geo             *model.GeoPoint   `json:"geo,omitempty"`
	Gist            string            `json:"gist,omitempty"`
	NeedsBackfill   bool              `json:"needs_backfill,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

func encodeRecord(r *model.Record) ([]byte, error) {
	w := wireRecord{
		ID:              r.ID,
		UserID:          r.UserID,
		Content:         r.Content,
		MemoryType:      r.MemoryType,
		Tags:            r.Tags,
		Importance:      r.Importance,
		Activation:      r.Activation,
		ActivationCount: r.ActivationCount,
		LastActivatedAt: r.LastActivatedAt.UnixMilli(),
		CreatedAt:       r.CreatedAt.UnixMilli(),
		UpdatedAt:       r.UpdatedAt.UnixMilli(),
		Embedding:       r.Embedding,
		Entities:        r.Entities,
		Tier:            r.Tier,
		Compression:     r.Compression,
		Geo:             r.Geo,
		Gist:            r.Gist,
		NeedsBackfill:   r.NeedsBackfill,
		Metadata:        r.Metadata,
	}
	return json.Marshal(w)
}

func decodeRecord(data []byte) (*model.Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &model.Record{
		ID:              w.ID,
		UserID:          w.UserID,
		Content:         w.Content,
		MemoryType:      w.MemoryType,
		Tags:            w.Tags,
		Importance:      w.Importance,
		Activation:      w.Activation,
		ActivationCount: w.ActivationCount,
		LastActivatedAt: time.UnixMilli(w.LastActivatedAt).UTC(),
		CreatedAt:       time.UnixMilli(w.CreatedAt).UTC(),
		UpdatedAt:       time.UnixMilli(w.UpdatedAt).UTC(),
		Embedding:       w.Embedding,
		Entities:        w.Entities,
		Tier:            w.Tier,
		Compression:     w.Compression,
		Geo:             w.Geo,
		Gist:            w.Gist,
		NeedsBackfill:   w.NeedsBackfill,
		Metadata:        w.Metadata,
	}, nil
}

type wireEdge struct {
	A               string  `json:"a"`
	B               string  `json:"b"`
	Strength        float32 `json:"strength"`
	ActivationCount uint32  `json:"activation_count"`
	Potentiated     bool    `json:"potentiated"`
	LastActivatedAt int64   `json:"last_activated_at_ms"`
	CreatedAt       int64   `json:"created_at_ms"`
}

func encodeEdge(e *model.Edge) ([]byte, error) {
	w := wireEdge{
		A:               e.A,
		B:               e.B,
		Strength:        e.Strength,
		ActivationCount: e.ActivationCount,
		Potentiated:     e.Potentiated,
		LastActivatedAt: e.LastActivatedAt.UnixMilli(),
		CreatedAt:       e.CreatedAt.UnixMilli(),
	}
	return json.Marshal(w)
}

func decodeEdge(data []byte) (*model.Edge, error) {
	var w wireEdge
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &model.Edge{
		A:               w.A,
		B:               w.B,
		Strength:        w.Strength,
		ActivationCount: w.ActivationCount,
		Potentiated:     w.Potentiated,
		LastActivatedAt: time.UnixMilli(w.LastActivatedAt).UTC(),
		CreatedAt:       time.UnixMilli(w.CreatedAt).UTC(),
	}, nil
}
