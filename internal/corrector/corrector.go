// Package corrector repairs entities that a machine translation dropped by
// appending their canonical glossary form to the translated text.
//
// The correction is a bracketed append, not an in-place substitution:
//
//	"some translation" -> "some translation [AIIMS]"
//
// An entity counts as preserved when it occurs verbatim (case-sensitive)
// in the text being corrected.
package corrector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/valpere/entfix/internal/extractor"
	"github.com/valpere/entfix/internal/glossary"
	"github.com/valpere/entfix/internal/retriever"
)

const (
	// DefaultThreshold is the similarity a candidate must strictly exceed.
	DefaultThreshold = 0.6
	// DefaultTopK is the number of candidates retrieved per missing entity.
	DefaultTopK = retriever.DefaultTopK
)

// Fix records one applied correction.
type Fix struct {
	Entity  string  `json:"entity"`
	Applied string  `json:"applied"`
	Score   float64 `json:"score"`
}

// Report describes what a Correct call saw and did.
type Report struct {
	SourceEntities []string `json:"source_entities"`
	Fixes          []Fix    `json:"fixes"`
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithRetriever replaces the default retriever.
func WithRetriever(r *retriever.Retriever) Option {
	return func(c *Corrector) {
		if r != nil {
			c.retriever = r
		}
	}
}

// WithThreshold sets the minimum (exclusive) similarity for applying a fix.
func WithThreshold(threshold float64) Option {
	return func(c *Corrector) {
		c.threshold = threshold
	}
}

// WithTopK sets how many candidates are retrieved per entity.
func WithTopK(k int) Option {
	return func(c *Corrector) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithLogger sets the logger used for per-entity debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Corrector) {
		if l != nil {
			c.logger = l
		}
	}
}

// Corrector holds no per-request state and is safe for concurrent use.
type Corrector struct {
	extractor extractor.Extractor
	retriever *retriever.Retriever
	threshold float64
	topK      int
	logger    *slog.Logger
}

// New returns a Corrector that finds entities with ext.
func New(ext extractor.Extractor, opts ...Option) *Corrector {
	c := &Corrector{
		extractor: ext,
		retriever: retriever.New(),
		threshold: DefaultThreshold,
		topK:      DefaultTopK,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct checks every entity of source against target, in source order.
// Each entity missing from the text so far is looked up in store; when the
// best candidate's similarity is strictly above the threshold, its canonical
// form is appended in brackets and recorded as a fix. Entities without a
// good enough candidate stay unresolved and are not reported as fixes.
//
// Duplicate entities are checked once per occurrence. Extractor failures are
// returned wrapped in extractor.ErrExtraction and nothing else is produced.
func (c *Corrector) Correct(ctx context.Context, source, target string, store *glossary.Store) (string, Report, error) {
	entities, err := c.extractor.Extract(ctx, source)
	if err != nil {
		return "", Report{}, fmt.Errorf("corrector: %w: %w", extractor.ErrExtraction, err)
	}

	report := Report{
		SourceEntities: append([]string{}, entities...),
		Fixes:          []Fix{},
	}

	var sb strings.Builder
	sb.WriteString(target)

	for _, e := range entities {
		if strings.Contains(sb.String(), e) {
			c.logger.Debug("entity preserved", "entity", e)
			continue
		}

		candidates := c.retriever.Retrieve(e, store, c.topK)
		if len(candidates) == 0 {
			c.logger.Debug("entity unresolved: no candidates", "entity", e)
			continue
		}

		best := candidates[0]
		if best.Similarity <= c.threshold {
			c.logger.Debug("entity unresolved: below threshold",
				"entity", e, "candidate", best.CanonicalForm, "similarity", best.Similarity)
			continue
		}

		sb.WriteString(" [")
		sb.WriteString(best.CanonicalForm)
		sb.WriteString("]")
		report.Fixes = append(report.Fixes, Fix{Entity: e, Applied: best.CanonicalForm, Score: best.Similarity})
		c.logger.Debug("entity corrected", "entity", e, "applied", best.CanonicalForm, "similarity", best.Similarity)
	}

	return sb.String(), report, nil
}
