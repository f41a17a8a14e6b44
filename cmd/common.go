/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valpere/entfix/internal/config"
	"github.com/valpere/entfix/internal/corrector"
	"github.com/valpere/entfix/internal/detector"
	"github.com/valpere/entfix/internal/extractor"
	"github.com/valpere/entfix/internal/glossary"
	"github.com/valpere/entfix/internal/observe"
	"github.com/valpere/entfix/internal/orchestrator"
	"github.com/valpere/entfix/internal/retriever"
	"github.com/valpere/entfix/internal/scorer"
	"github.com/valpere/entfix/internal/store"
	"github.com/valpere/entfix/internal/translator"
)

// pipeline bundles everything a correction run needs.
type pipeline struct {
	service translator.Service
	orch    *orchestrator.Orchestrator
}

// buildExtractor constructs the entity extractor selected in cfg.
func buildExtractor(cfg *config.Config) extractor.Extractor {
	switch cfg.Extractor.Kind {
	case config.ExtractorOllama:
		return extractor.NewOllama(cfg.Extractor.BaseURL, cfg.Extractor.Model)
	default:
		return extractor.NewHeuristic(cfg.Extractor.Stop...)
	}
}

func buildPipeline(cfg *config.Config) (*pipeline, error) {
	svc, err := translator.New(cfg.Translator)
	if err != nil {
		return nil, err
	}

	sim, err := retriever.ByName(cfg.Similarity)
	if err != nil {
		return nil, err
	}

	ext := buildExtractor(cfg)
	corr := corrector.New(ext,
		corrector.WithRetriever(retriever.New(retriever.WithSimilarity(sim))),
		corrector.WithThreshold(cfg.Threshold),
		corrector.WithTopK(cfg.TopK),
		corrector.WithLogger(slog.Default()),
	)

	orch := orchestrator.New(translator.AsFunc(svc), ext,
		orchestrator.WithCorrector(corr),
		orchestrator.WithScorer(scorer.New(ext)),
		orchestrator.WithLogger(slog.Default()),
		orchestrator.WithMetrics(observe.Default()),
	)

	return &pipeline{service: svc, orch: orch}, nil
}

// openStore opens the database, creating its directory when needed.
func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadGlossary picks the glossary for a run: an explicit file wins, then the
// configured URL, then the database. lang narrows the result to entries for
// that source language plus untagged ones.
func loadGlossary(ctx context.Context, cfg *config.Config, file string, db *store.Store, lang string) (*glossary.Store, error) {
	switch {
	case file != "":
		g, err := glossary.LoadFile(file)
		if err != nil {
			return nil, err
		}
		return g.ForLanguage(lang), nil
	case cfg.Glossary.URL != "":
		fetchCtx, cancel := withTimeout(ctx, cfg.Timeout)
		defer cancel()
		g, err := glossary.Fetch(fetchCtx, http.DefaultClient, cfg.Glossary.URL)
		if err != nil {
			return nil, err
		}
		return g.ForLanguage(lang), nil
	case db != nil:
		return db.LoadGlossary(ctx, lang)
	default:
		return glossary.FromEntries(nil), nil
	}
}

// resolveSourceLang replaces "auto" with the detected language of text,
// using det or, when det is nil, a detector built on demand. Detection
// failure leaves "auto" for services that detect on their own.
func resolveSourceLang(det *detector.Detector, text, lang string) string {
	if lang != "" && !strings.EqualFold(lang, detector.Auto) {
		return lang
	}
	if det == nil {
		det = detector.New()
	}
	resolved, ok := det.ResolveSource(text, lang)
	if !ok {
		slog.Warn("could not detect source language; using the whole glossary and leaving detection to the service")
		return detector.Auto
	}
	slog.Info("detected source language", "lang", resolved)
	return resolved
}

// withTimeout bounds one pipeline run; zero means no limit.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// readText returns args[0] when given, the file contents otherwise.
func readText(args []string, file string) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("give the text as an argument or --input, not both")
	case len(args) > 0:
		return args[0], nil
	case file == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("no input text: pass it as an argument or with --input")
	}
}

// printError writes err with the failing pipeline stage when known.
func printError(w io.Writer, err error) {
	var se *orchestrator.StageError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "Error: %s stage failed: %v\n", se.Stage, se.Err)
		if errors.Is(err, translator.ErrUnavailable) {
			fmt.Fprintln(w, "Hint: check the translation service configuration and credentials.")
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
