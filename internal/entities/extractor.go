package entities

import (
	"context"

	"github.com/shodhmemory/engine/internal/model"
)

// Extractor finds named-entity spans in text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.Entity, error)
}
