package importance

import (
	"strings"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

// TypeBase is the type-anchored base contribution to importance. The
// retrieval planner's per-type weight comes from RecallMultiplier, not
// from this table.
var TypeBase = map[model.MemoryType]float32{
	model.TypeDecision:     0.30,
	model.TypeLearning:     0.25,
	model.TypeError:        0.25,
	model.TypeDiscovery:    0.20,
	model.TypePattern:      0.20,
	model.TypeTask:         0.15,
	model.TypeContext:      0.10,
	model.TypeConversation: 0.10,
	model.TypeObservation:  0.05,
}

// RecallMultiplier is the per-type multiplier applied during hybrid
// ranking.
var RecallMultiplier = map[model.MemoryType]float32{
	model.TypeDecision:     1.30,
	model.TypeLearning:     1.30,
	model.TypeError:        1.10,
	model.TypeDiscovery:    1.10,
	model.TypePattern:      1.00,
	model.TypeTask:         0.90,
	model.TypeContext:      1.00,
	model.TypeConversation: 0.50,
	model.TypeObservation:  1.00,
}

// FileAccessRecallMultiplier is the recall multiplier for the
// auxiliary FileAccess pseudo-type, which has no importance base.
const FileAccessRecallMultiplier = 0.60

// floorImportance is returned for empty/degenerate input.
const floorImportance = 0.05

// technicalTerms is a small domain dictionary used to estimate the
// technical-terms factor. It is intentionally short: a hit-rate signal,
// not an NLP classifier.
var technicalTerms = map[string]bool{
	"api": true, "database": true, "query": true, "index": true,
	"algorithm": true, "latency": true, "async": true, "concurrency": true,
	"schema": true, "endpoint": true, "token": true, "cache": true,
	"deploy": true, "regression": true, "exception": true, "refactor": true,
	"migration": true, "throughput": true, "kernel": true, "binary": true,
}

// Score computes a record's ingest-time importance from its content,
// type, entities, embedding, and metadata. It never returns NaN:
// degenerate (empty-content) input yields the floor.
func Score(r *model.Record) float32 {
	words := strings.Fields(r.Content)
	if len(words) == 0 {
		return floorImportance
	}

	total := typeBase(r.MemoryType) +
		contentRichness(len(words)) +
		entityDensity(len(r.Entities), len(words)) +
		contextDepth(r) +
		metadataSignals(r) +
		embeddingPresence(r.Embedding) +
		technicalTermRate(words)

	if total < floorImportance {
		total = floorImportance
	}
	if total > 1.0 {
		total = 1.0
	}
	return total
}

func typeBase(t model.MemoryType) float32 {
	if b, ok := TypeBase[t]; ok {
		return b
	}
	return floorImportance
}

// contentRichness is piecewise on word count, ranging 0.02-0.25.
func contentRichness(words int) float32 {
	switch {
	case words < 5:
		return 0.02
	case words < 20:
		return 0.08
	case words < 50:
		return 0.14
	case words < 100:
		return 0.19
	case words < 200:
		return 0.22
	default:
		return 0.25
	}
}

// entityDensity scales entities-per-100-words, capped at 0.20, saturating
// at a density of 10 entities per 100 words.
func entityDensity(entities, words int) float32 {
	if words == 0 || entities == 0 {
		return 0
	}
	density := float32(entities) * 100 / float32(words)
	score := density / 10 * 0.20
	if score > 0.20 {
		return 0.20
	}
	return score
}

// contextDepth rewards presence of structured fields beyond bare
// content: tags, geo, and metadata.
func contextDepth(r *model.Record) float32 {
	var present int
	if len(r.Tags) > 0 {
		present++
	}
	if r.Geo != nil {
		present++
	}
	if len(r.Metadata) > 0 {
		present++
	}
	if len(r.Entities) > 0 {
		present++
	}
	return float32(present) / 4 * 0.20
}

// metadataSignals looks for an explicit high-priority marker or a
// "breakthrough" style callout in content or metadata.
func metadataSignals(r *model.Record) float32 {
	var score float32
	if priority, ok := r.Metadata["priority"].(string); ok {
		switch strings.ToLower(priority) {
		case "high", "urgent", "critical":
			score += 0.10
		}
	}
	lower := strings.ToLower(r.Content)
	if strings.Contains(lower, "breakthrough") || strings.Contains(lower, "critical insight") {
		score += 0.05
	}
	if score > 0.15 {
		return 0.15
	}
	return score
}

func embeddingPresence(vec []float32) float32 {
	for _, x := range vec {
		if x != 0 {
			return 0.10
		}
	}
	return 0
}

func technicalTermRate(words []string) float32 {
	if len(words) == 0 {
		return 0
	}
	var hits int
	for _, w := range words {
		trimmed := strings.ToLower(strings.Trim(w, ".,:;!?()\"'"))
		if technicalTerms[trimmed] {
			hits++
		}
	}
	rate := float32(hits) / float32(len(words))
	score := rate * 0.10 * 5 // boost so a modest hit-rate reaches the cap
	if score > 0.10 {
		return 0.10
	}
	return score
}

// Reinforce applies a bounded reinforcement delta to the current
// importance, as triggered by Hebbian co-activation during recall. The
// increase is capped by cfg.MaxReinforcementDelta per episode and by
// cfg.ReinforcementCeiling overall.
func Reinforce(current float32, cfg config.ImportanceConfig) float32 {
	delta := cfg.MaxReinforcementDelta
	if delta <= 0 {
		delta = 0.05
	}
	ceiling := cfg.ReinforcementCeiling
	if ceiling <= 0 {
		ceiling = 1.0
	}
	next := current + delta
	if next > ceiling {
		next = ceiling
	}
	return next
}
