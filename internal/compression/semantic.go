package compression

import (
	"encoding/base64"
	"strings"

	"github.com/shodhmemory/engine/internal/model"
)

// maxGistWords bounds the lossy summary's length. There's no
// summarization model in this offline engine, so the gist is
// extractive (the leading words of the content plus its entity and
// tag surface forms) rather than abstractive.
const maxGistWords = 40

// Gist builds a short extractive summary of content, prefixed by its
// leading words and suffixed by the entity and tag surface forms so
// that tag/entity-based recall keeps working after consolidation.
func Gist(content string, entities []model.Entity, tags []string) string {
	words := strings.Fields(content)
	if len(words) > maxGistWords {
		words = words[:maxGistWords]
	}
	lead := strings.Join(words, " ")

	var tail []string
	for _, e := range entities {
		tail = append(tail, e.Text)
	}
	tail = append(tail, tags...)

	if len(tail) == 0 {
		return lead
	}
	return lead + " [" + strings.Join(tail, ", ") + "]"
}

// ApplyLZ4 replaces r.Content with a reversible, base64-encoded lz4
// payload stored in r.Gist, and marks r.Compression accordingly. This
// is the only compression mode Reveal can undo.
func ApplyLZ4(r *model.Record) error {
	compressed, err := CompressLZ4([]byte(r.Content))
	if err != nil {
		return err
	}
	r.Gist = base64.StdEncoding.EncodeToString(compressed)
	r.Content = ""
	r.Compression = model.CompressionLZ4
	return nil
}

// ApplySemantic replaces r.Content with an irreversible gist. Entities
// and tags are preserved on the record untouched so associative and
// tag-based recall keep working.
func ApplySemantic(r *model.Record) {
	r.Gist = Gist(r.Content, r.Entities, r.Tags)
	r.Content = ""
	r.Compression = model.CompressionSemantic
}

// ApplyHybrid lz4-compresses a truncated gist and marks the record
// irreversible: the original content is gone, and recovering even the
// gist's raw bytes afterward goes through Reveal, which refuses hybrid
// records just like semantic ones (a hybrid record is "lossy" at the
// record level regardless of the inner lz4 frame being technically
// invertible).
func ApplyHybrid(r *model.Record) error {
	gist := Gist(r.Content, r.Entities, r.Tags)
	compressed, err := CompressLZ4([]byte(gist))
	if err != nil {
		return err
	}
	r.Gist = base64.StdEncoding.EncodeToString(compressed)
	r.Content = ""
	r.Compression = model.CompressionHybrid
	return nil
}

// Reveal returns a record's readable content, decompressing if it was
// stored under CompressionLZ4. Semantic and Hybrid records are lossy
// by contract: any attempt to decompress them fails explicitly with
// KindLossyDecompress rather than silently returning the gist as if it
// were the original.
func Reveal(r *model.Record, maxBytes int) (string, error) {
	switch r.Compression {
	case model.CompressionNone:
		return r.Content, nil
	case model.CompressionLZ4:
		raw, err := base64.StdEncoding.DecodeString(r.Gist)
		if err != nil {
			return "", model.NewError(model.KindIndexCorruption, "decode lz4 payload", err)
		}
		out, err := DecompressLZ4(raw, maxBytes)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case model.CompressionSemantic, model.CompressionHybrid:
		return "", model.NewError(model.KindLossyDecompress, "record content was lossily consolidated", nil)
	default:
		return r.Content, nil
	}
}

// ConsolidationEligible reports whether r qualifies for semantic
// consolidation: old, rarely revisited, and unimportant.
func ConsolidationEligible(r *model.Record, ageDays float64, minAgeDays float64, maxActivationCount uint32, maxImportance float32) bool {
	return ageDays > minAgeDays && r.ActivationCount < maxActivationCount && r.Importance < maxImportance
}
