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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/entfix/internal/detector"
	"github.com/valpere/entfix/internal/store"
	"github.com/valpere/entfix/internal/validator"
)

var (
	correctInput    string
	correctSource   string
	correctTarget   string
	correctGlossary string
	correctJSON     bool
	correctNoSave   bool
)

var correctCmd = &cobra.Command{
	Use:   "correct [text]",
	Short: "Translate text and repair dropped entities",
	Long: `Translate text, detect named entities in the source and append the
canonical glossary form of every entity the translation dropped.

The glossary comes from --glossary (CSV or YAML), the configured
glossary.url, or the database managed with "entfix glossary".

Example:
  entfix correct "Dr. Anil Gupta visited AIIMS on January 15." -t hi
  entfix correct -i article.txt -s en -t uk --glossary terms.yaml --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(args, correctInput)
		if err != nil {
			return err
		}

		cfg := appCfg
		ctx := cmd.Context()

		db, err := openStore(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		det := detector.New()
		srcLang := resolveSourceLang(det, text, correctSource)

		gl, err := loadGlossary(ctx, cfg, correctGlossary, db, srcLang)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}
		if gl.IsEmpty() {
			slog.Warn("glossary is empty; entities can be detected but not corrected")
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		runCtx, cancel := withTimeout(ctx, cfg.Timeout)
		defer cancel()

		res, err := p.orch.Run(runCtx, text, srcLang, correctTarget, gl)
		if err != nil {
			return err
		}

		if ok, verr := validator.New(det).IsValid(res.Baseline, correctTarget); !ok {
			slog.Warn("baseline may not be in the target language", "err", verr)
		}

		if !correctNoSave {
			id, err := db.SaveRun(ctx, store.Run{
				SourceText: text,
				SourceLang: srcLang,
				TargetLang: correctTarget,
				Service:    p.service.Name(),
				Baseline:   res.Baseline,
				Corrected:  res.Corrected,
				Report:     res.Report,
				Metrics:    res.Metrics,
			})
			if err != nil {
				slog.Warn("failed to save run history", "err", err)
			} else {
				slog.Debug("run saved", "id", id)
			}
		}

		if correctJSON {
			return printJSON(os.Stdout, res)
		}
		printResult(os.Stdout, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correctCmd)

	correctCmd.Flags().StringVarP(&correctInput, "input", "i", "", "Input file with the source text (- for stdin)")
	correctCmd.Flags().StringVarP(&correctSource, "source", "s", "auto", "Source language code")
	correctCmd.Flags().StringVarP(&correctTarget, "target", "t", "", "Target language code (required)")
	correctCmd.Flags().StringVarP(&correctGlossary, "glossary", "g", "", "Glossary file (CSV or YAML) instead of the database")
	correctCmd.Flags().BoolVar(&correctJSON, "json", false, "Print the result as JSON")
	correctCmd.Flags().BoolVar(&correctNoSave, "no-history", false, "Do not record the run in history")

	correctCmd.MarkFlagRequired("target")
}
