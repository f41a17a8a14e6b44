package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/valpere/entfix/internal/config"
	"github.com/valpere/entfix/internal/scorer"
)

func runScore(t *testing.T, flags map[string]string) scorer.Metrics {
	t.Helper()

	prevCfg := appCfg
	appCfg = &config.Config{Extractor: config.ExtractorConfig{Kind: config.ExtractorHeuristic}}
	t.Cleanup(func() {
		appCfg = prevCfg
		scoreSource, scoreBaseline, scoreCorrected, scoreJSON = "", "", "", false
		for _, name := range []string{"source", "baseline", "corrected", "json"} {
			scoreCmd.Flags().Lookup(name).Changed = false
		}
	})

	for name, value := range flags {
		if err := scoreCmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	if err := scoreCmd.Flags().Set("json", "true"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	scoreCmd.SetOut(&buf)
	scoreCmd.SetContext(context.Background())
	t.Cleanup(func() { scoreCmd.SetOut(nil) })

	if err := scoreCmd.RunE(scoreCmd, nil); err != nil {
		t.Fatalf("score failed: %v", err)
	}

	var m scorer.Metrics
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON output %q: %v", buf.String(), err)
	}
	return m
}

func TestScore_OmittedCorrectedUsesBaseline(t *testing.T) {
	m := runScore(t, map[string]string{
		"source":   "the patients reached AIIMS today.",
		"baseline": "AIIMS",
	})
	if m.Before != 1 || m.After != 1 || m.Composite != 0.7 {
		t.Errorf("expected baseline scored twice, got %+v", m)
	}
}

func TestScore_EmptyCorrectedIsScored(t *testing.T) {
	m := runScore(t, map[string]string{
		"source":    "the patients reached AIIMS today.",
		"baseline":  "AIIMS",
		"corrected": "",
	})
	if m.Before != 1 || m.After != 0 {
		t.Errorf("expected an empty corrected text to lose the entity, got %+v", m)
	}
	if m.Composite != -0.3 {
		t.Errorf("expected composite -0.3, got %v", m.Composite)
	}
}

func TestPrintScores_ShowsImprovement(t *testing.T) {
	var buf bytes.Buffer
	printScores(&buf, scorer.Metrics{Before: 0, After: 1.0 / 3, Composite: 0.333})

	if out := buf.String(); !strings.Contains(out, "EFC composite: 0.333 (improvement +0.333)") {
		t.Errorf("unexpected score output %q", out)
	}
}
