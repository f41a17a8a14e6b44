// Package observe provides logging and metrics for the correction
// pipeline. Metrics are recorded through the OpenTelemetry Metrics API;
// without a configured SDK the global no-op provider is used.
package observe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all entfix metrics.
const meterName = "github.com/valpere/entfix"

// NewLogger builds a slog.Logger writing to w. format is "text" or "json";
// level is one of debug, info, warn, error.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("observe: invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("observe: invalid log format %q", format)
	}
}

// Metrics holds the pipeline instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// RunDuration tracks a full translate-correct-score run.
	RunDuration metric.Float64Histogram

	// Runs counts runs. Attributes: stage ("done" or the failing stage).
	Runs metric.Int64Counter

	// EntitiesSeen counts source entities examined.
	EntitiesSeen metric.Int64Counter

	// FixesApplied counts appended corrections.
	FixesApplied metric.Int64Counter

	// Composite records the EFC composite of successful runs.
	Composite metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

var compositeBuckets = []float64{
	-0.3, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RunDuration, err = m.Float64Histogram("entfix.run.duration",
		metric.WithDescription("Latency of a translate-correct-score run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Runs, err = m.Int64Counter("entfix.runs",
		metric.WithDescription("Pipeline runs by outcome."),
	); err != nil {
		return nil, err
	}
	if met.EntitiesSeen, err = m.Int64Counter("entfix.entities",
		metric.WithDescription("Source entities examined."),
	); err != nil {
		return nil, err
	}
	if met.FixesApplied, err = m.Int64Counter("entfix.fixes",
		metric.WithDescription("Glossary corrections appended."),
	); err != nil {
		return nil, err
	}
	if met.Composite, err = m.Float64Histogram("entfix.efc.composite",
		metric.WithDescription("EFC composite score of successful runs."),
		metric.WithExplicitBucketBoundaries(compositeBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Default returns Metrics on the global MeterProvider.
func Default() *Metrics {
	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		panic(fmt.Sprintf("observe: create default metrics: %v", err))
	}
	return m
}

// RecordRun records one finished run. stage is "done" on success.
func (m *Metrics) RecordRun(ctx context.Context, stage string, seconds float64, entities, fixes int, composite float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.Runs.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, seconds, attrs)
	if stage != "done" {
		return
	}
	m.EntitiesSeen.Add(ctx, int64(entities))
	m.FixesApplied.Add(ctx, int64(fixes))
	m.Composite.Record(ctx, composite)
}
