package entities

import (
	"context"
	"strings"
	"unicode"

	"github.com/shodhmemory/engine/internal/model"
)

// orgSuffixes and locationSuffixes bias the heuristic classifier
// toward Org/Location when a capitalized span ends in a recognizable
// marker word; this is a cheap stand-in for a real NER model in the
// default offline configuration.
var orgSuffixes = map[string]bool{
	"inc": true, "inc.": true, "corp": true, "corp.": true, "llc": true,
	"ltd": true, "ltd.": true, "co": true, "co.": true, "labs": true,
	"group": true, "systems": true, "technologies": true,
}

var locationSuffixes = map[string]bool{
	"street": true, "st": true, "st.": true, "avenue": true, "ave": true,
	"road": true, "rd": true, "city": true, "county": true, "county.": true,
	"state": true, "province": true, "island": true, "valley": true,
}

// sentenceOpeners are capitalized function words that often start a
// sentence without naming anything; a single-word run made of one of
// them is not reported as an entity.
var sentenceOpeners = map[string]bool{
	"i": true, "the": true, "a": true, "an": true, "this": true, "that": true,
	"it": true, "we": true, "he": true, "she": true, "they": true, "my": true, "our": true,
}

// Local is the default, offline entity extractor: it finds runs of
// consecutive capitalized words and classifies each run by a trailing
// marker word, defaulting to Person for a two-or-more-word run and
// Other for a single capitalized word with no marker. A lone
// capitalized function word such as "I" or "The" is skipped.
type Local struct{}

// NewLocal returns the default offline extractor.
func NewLocal() *Local { return &Local{} }

// Extract implements Extractor.
func (Local) Extract(_ context.Context, text string) ([]model.Entity, error) {
	var out []model.Entity

	runeText := []rune(text)
	i := 0
	for i < len(runeText) {
		if !startsCapitalizedWord(runeText, i) {
			i++
			continue
		}

		start := i
		words := 0
		lastWordEnd := i
		for i < len(runeText) {
			wordStart := i
			for i < len(runeText) && !unicode.IsSpace(runeText[i]) {
				i++
			}
			word := string(runeText[wordStart:i])
			if !isCapitalizedWord(word) {
				break
			}
			words++
			lastWordEnd = i
			for i < len(runeText) && unicode.IsSpace(runeText[i]) {
				i++
			}
			if i >= len(runeText) || !startsCapitalizedWord(runeText, i) {
				break
			}
		}

		if words == 0 {
			i = start + 1
			continue
		}

		span := string(runeText[start:lastWordEnd])
		if words == 1 && sentenceOpeners[strings.ToLower(span)] {
			continue
		}
		out = append(out, model.Entity{
			Text:  span,
			Type:  classify(span, words),
			Start: start,
			End:   lastWordEnd,
		})
	}

	return out, nil
}

func startsCapitalizedWord(r []rune, i int) bool {
	return unicode.IsUpper(r[i])
}

func isCapitalizedWord(word string) bool {
	if word == "" {
		return false
	}
	r := []rune(word)
	return unicode.IsUpper(r[0])
}

func classify(span string, words int) model.EntityType {
	trailing := strings.ToLower(lastWord(span))
	if orgSuffixes[trailing] {
		return model.EntityOrg
	}
	if locationSuffixes[trailing] {
		return model.EntityLocation
	}
	if words >= 2 {
		return model.EntityPerson
	}
	return model.EntityOther
}

func lastWord(span string) string {
	parts := strings.Fields(span)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
