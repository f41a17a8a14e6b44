// Package orchestrator runs the full pipeline for one source text:
// translate, correct the translation against the glossary, then score
// entity preservation before and after correction.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valpere/entfix/internal/corrector"
	"github.com/valpere/entfix/internal/extractor"
	"github.com/valpere/entfix/internal/glossary"
	"github.com/valpere/entfix/internal/observe"
	"github.com/valpere/entfix/internal/scorer"
)

// Pipeline stages, as reported by StageOf.
const (
	StageTranslate = "translate"
	StageCorrect   = "correct"
	StageScore     = "score"
)

// TranslateFunc produces the baseline translation of text.
type TranslateFunc func(ctx context.Context, text, srcLang, tgtLang string) (string, error)

// Result is the outcome of a successful Run.
type Result struct {
	Baseline  string           `json:"baseline"`
	Corrected string           `json:"corrected"`
	Report    corrector.Report `json:"report"`
	Metrics   scorer.Metrics   `json:"metrics"`
}

// StageError reports which stage of Run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("orchestrator: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failed stage of an error returned by Run, or "" if
// err did not come from a pipeline stage.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCorrector replaces the corrector built from the extractor.
func WithCorrector(c *corrector.Corrector) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.corrector = c
		}
	}
}

// WithScorer replaces the scorer built from the extractor.
func WithScorer(s *scorer.Scorer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithLogger sets the logger for run summaries; nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records every run on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// Orchestrator runs the translate, correct and score pipeline.
type Orchestrator struct {
	translate TranslateFunc
	corrector *corrector.Corrector
	scorer    *scorer.Scorer
	logger    *slog.Logger
	metrics   *observe.Metrics
}

// New wires a pipeline. The same extractor feeds both the corrector and the
// scorer unless they are replaced by options.
func New(translate TranslateFunc, ext extractor.Extractor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		translate: translate,
		corrector: corrector.New(ext),
		scorer:    scorer.New(ext),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run translates source, corrects the baseline against store and scores
// both. It makes exactly one translate call and never retries; any stage
// failure aborts the run and no partial Result is returned.
func (o *Orchestrator) Run(ctx context.Context, source, srcLang, tgtLang string, store *glossary.Store) (*Result, error) {
	start := time.Now()

	res, err := o.run(ctx, source, srcLang, tgtLang, store)
	elapsed := time.Since(start)

	if err != nil {
		o.metrics.RecordRun(ctx, StageOf(err), elapsed.Seconds(), 0, 0, 0)
		return nil, err
	}

	o.metrics.RecordRun(ctx, "done", elapsed.Seconds(),
		len(res.Report.SourceEntities), len(res.Report.Fixes), res.Metrics.Composite)
	o.logger.Info("run complete",
		"entities", len(res.Report.SourceEntities),
		"fixes", len(res.Report.Fixes),
		"before", res.Metrics.Before,
		"after", res.Metrics.After,
		"composite", res.Metrics.Composite,
		"elapsed", elapsed)

	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, source, srcLang, tgtLang string, store *glossary.Store) (*Result, error) {
	if o.translate == nil {
		return nil, &StageError{Stage: StageTranslate, Err: errors.New("no translator configured")}
	}

	baseline, err := o.translate(ctx, source, srcLang, tgtLang)
	if err != nil {
		return nil, &StageError{Stage: StageTranslate, Err: err}
	}
	o.logger.Debug("baseline translated", "source_lang", srcLang, "target_lang", tgtLang)

	corrected, report, err := o.corrector.Correct(ctx, source, baseline, store)
	if err != nil {
		return nil, &StageError{Stage: StageCorrect, Err: err}
	}

	metrics, err := o.scorer.Score(ctx, source, baseline, corrected)
	if err != nil {
		return nil, &StageError{Stage: StageScore, Err: err}
	}

	return &Result{
		Baseline:  baseline,
		Corrected: corrected,
		Report:    report,
		Metrics:   metrics,
	}, nil
}
