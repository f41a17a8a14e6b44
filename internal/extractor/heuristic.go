package extractor

import (
	"context"
	"regexp"
	"strings"
)

// entityRe matches runs of capitalised words, optionally followed by a
// short number ("January 15"). Acronyms such as "AIIMS" match as one word.
var entityRe = regexp.MustCompile(
	`\p{Lu}[\p{L}\p{M}'’-]*(?:[ \t]+\p{Lu}[\p{L}\p{M}'’-]*)*(?:[ \t]+\d{1,4}\b)?`,
)

// defaultStopwords are single capitalised tokens that are rarely entities:
// honorifics and sentence-initial function words.
var defaultStopwords = []string{
	"A", "An", "The", "This", "That", "These", "Those", "It", "He", "She",
	"We", "They", "I", "In", "On", "At", "Of", "And", "But", "Or", "If",
	"Dr", "Mr", "Mrs", "Ms", "Prof", "St",
}

// Heuristic is the degraded-mode extractor used when no NER model is
// available. It treats capitalised word runs as entities.
type Heuristic struct {
	stop map[string]struct{}
}

// NewHeuristic returns a Heuristic that drops defaultStopwords plus any
// extra single-word matches given.
func NewHeuristic(extraStopwords ...string) *Heuristic {
	h := &Heuristic{stop: make(map[string]struct{}, len(defaultStopwords)+len(extraStopwords))}
	for _, w := range defaultStopwords {
		h.stop[w] = struct{}{}
	}
	for _, w := range extraStopwords {
		h.stop[w] = struct{}{}
	}
	return h
}

// Extract never fails.
func (h *Heuristic) Extract(ctx context.Context, text string) ([]string, error) {
	matches := entityRe.FindAllString(text, -1)
	entities := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if _, skip := h.stop[m]; skip {
			continue
		}
		entities = append(entities, m)
	}
	return entities, nil
}
