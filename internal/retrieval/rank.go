package retrieval

import (
	"math"
	"sort"
	"time"

	"github.com/shodhmemory/engine/internal/importance"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

// Mode selects which signals feed the ranking.
type Mode string

const (
	ModeSemantic    Mode = "semantic"
	ModeAssociative Mode = "associative"
	ModeHybrid      Mode = "hybrid"
)

// Candidate is a record plus the two signals that can only be computed
// by the caller: cosine similarity to the query embedding (from the
// vector index) and spreading-activation level (from the graph).
type Candidate struct {
	Record     *model.Record
	Similarity float32 // cosine(query, record.embedding), may be < 0
	Activation float32
}

// Ranked is a scored candidate in final recall order.
type Ranked struct {
	Record *model.Record
	Score  float64
}

// Rank scores and sorts candidates under mode, returning at most limit
// results (limit <= 0 means cfg.DefaultLimit). Ties break by newer
// LastActivatedAt, then lexicographically smaller id.
func Rank(candidates []Candidate, mode Mode, cfg config.RetrievalConfig, now time.Time, limit int) []Ranked {
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}

	out := make([]Ranked, len(candidates))
	for i, c := range candidates {
		out[i] = Ranked{Record: c.Record, Score: score(c, mode, cfg, now)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		ti, tj := out[i].Record.LastActivatedAt, out[j].Record.LastActivatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Record.ID < out[j].Record.ID
	})

	if limit < len(out) {
		out = out[:limit]
	}
	return out
}

func score(c Candidate, mode Mode, cfg config.RetrievalConfig, now time.Time) float64 {
	sim := clamp01(float64(c.Similarity))
	activation := math.Min(float64(c.Activation), 1.0)
	if activation < 0 {
		activation = 0
	}

	switch mode {
	case ModeSemantic:
		return sim
	case ModeAssociative:
		return activation
	default:
		recency := recencyFactor(c.Record.CreatedAt, now, cfg.RecencyHalfLifeDays)
		typeWeight := float64(typeMultiplier(c.Record.MemoryType))
		return cfg.WeightSimilarity*sim +
			cfg.WeightActivation*activation +
			cfg.WeightImportance*float64(c.Record.Importance) +
			cfg.WeightRecency*recency +
			cfg.WeightType*typeWeight
	}
}

func recencyFactor(createdAt, now time.Time, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		halfLifeDays = 14
	}
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / halfLifeDays)
}

func typeMultiplier(t model.MemoryType) float32 {
	if m, ok := importance.RecallMultiplier[t]; ok {
		return m
	}
	return 1.0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
