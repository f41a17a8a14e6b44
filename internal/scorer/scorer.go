// Package scorer computes the Entity-Factuality Composite (EFC): how many
// source entities survive verbatim in a translation before and after
// correction, and a composite that rewards both the final preservation and
// the improvement the correction contributed.
package scorer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/valpere/entfix/internal/extractor"
)

const (
	afterWeight       = 0.7
	improvementWeight = 0.3
)

// Metrics holds entity preservation ratios.
type Metrics struct {
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
	Composite float64 `json:"composite"`
}

// Improvement is After minus Before; negative for a regression.
func (m Metrics) Improvement() float64 {
	return m.After - m.Before
}

// Composite returns 0.7*after + 0.3*(after-before) rounded to three
// decimals.
func Composite(before, after float64) float64 {
	return round3(afterWeight*after + improvementWeight*(after-before))
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Scorer is safe for concurrent use.
type Scorer struct {
	extractor extractor.Extractor
}

// New returns a Scorer that finds entities with ext.
func New(ext extractor.Extractor) *Scorer {
	return &Scorer{extractor: ext}
}

// Score extracts entities from source and measures the share found verbatim
// in baseline and in corrected. With no entities both ratios are 1: nothing
// could be lost.
func (s *Scorer) Score(ctx context.Context, source, baseline, corrected string) (Metrics, error) {
	entities, err := s.extractor.Extract(ctx, source)
	if err != nil {
		return Metrics{}, fmt.Errorf("scorer: %w: %w", extractor.ErrExtraction, err)
	}
	return Measure(entities, baseline, corrected), nil
}

// Measure computes Metrics for an already extracted entity list.
func Measure(entities []string, baseline, corrected string) Metrics {
	if len(entities) == 0 {
		return Metrics{Before: 1.0, After: 1.0, Composite: Composite(1.0, 1.0)}
	}

	n := float64(len(entities))
	before := float64(countPresent(entities, baseline)) / n
	after := float64(countPresent(entities, corrected)) / n

	return Metrics{Before: before, After: after, Composite: Composite(before, after)}
}

func countPresent(entities []string, text string) int {
	found := 0
	for _, e := range entities {
		if strings.Contains(text, e) {
			found++
		}
	}
	return found
}
