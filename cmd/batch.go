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
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/entfix/internal/orchestrator"
	"github.com/valpere/entfix/internal/store"
)

var (
	batchInputFile  string
	batchOutputFile string
	batchSourceLang string
	batchTargetLang string
	batchColumn     int
	batchNoHeader   bool
	batchGlossary   string
	batchNoSave     bool
	batchWorkers    int
)

// batchColumns are appended to every output row.
var batchColumns = []string{"baseline", "corrected", "efc_before", "efc_after", "efc_composite", "status"}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Translate and correct one column of a CSV file",
	Long: `Run the translate, correct and score pipeline on every row of a CSV
file. The text is taken from one column (0-indexed, -l). The output keeps
all input columns and appends: baseline, corrected, efc_before, efc_after,
efc_composite and status.

Rows are processed by --workers concurrent runs (default 1); the output
keeps the input order.

A row whose run fails keeps empty result cells and a status of
"failed: <stage>: <error>". The command exits non-zero when any row failed.

Example:
  entfix batch -i sentences.csv -o corrected.csv -t hi -l 1 --glossary terms.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchInputFile == batchOutputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}
		if batchColumn < 0 {
			return fmt.Errorf("column index must not be negative")
		}

		f, err := os.Open(batchInputFile)
		if err != nil {
			return fmt.Errorf("failed to open input CSV: %w", err)
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("CSV file is empty")
		}

		cfg := appCfg
		ctx := cmd.Context()

		first := 0
		if !batchNoHeader {
			first = 1
		}

		srcLang := batchSourceLang
		if len(records) > first {
			srcLang = resolveSourceLang(nil, cellAt(records[first], batchColumn), batchSourceLang)
		}

		db, err := openStore(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		gl, err := loadGlossary(ctx, cfg, batchGlossary, db, srcLang)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		out := make([][]string, 0, len(records))
		if !batchNoHeader {
			out = append(out, append(append([]string{}, records[0]...), batchColumns...))
		}

		type rowResult struct {
			res *orchestrator.Result
			err error
		}
		results := make([]rowResult, len(records))

		g := new(errgroup.Group)
		g.SetLimit(max(batchWorkers, 1))
		for rowIdx := first; rowIdx < len(records); rowIdx++ {
			text := cellAt(records[rowIdx], batchColumn)
			if text == "" {
				continue
			}
			g.Go(func() error {
				runCtx, cancel := withTimeout(ctx, cfg.Timeout)
				defer cancel()
				res, err := p.orch.Run(runCtx, text, srcLang, batchTargetLang, gl)
				results[rowIdx] = rowResult{res: res, err: err}
				return nil
			})
		}
		_ = g.Wait()

		var succeeded, failed int
		var compositeSum float64

		for rowIdx := first; rowIdx < len(records); rowIdx++ {
			row := records[rowIdx]
			text := cellAt(row, batchColumn)
			extra := make([]string, len(batchColumns))
			r := results[rowIdx]

			switch {
			case text == "":
				extra[5] = "skipped"
			case r.err != nil:
				failed++
				extra[5] = "failed: " + r.err.Error()
				slog.Warn("row failed", "row", rowIdx, "stage", orchestrator.StageOf(r.err), "err", r.err)
			default:
				succeeded++
				compositeSum += r.res.Metrics.Composite
				extra[0] = r.res.Baseline
				extra[1] = r.res.Corrected
				extra[2] = formatScore(r.res.Metrics.Before)
				extra[3] = formatScore(r.res.Metrics.After)
				extra[4] = formatScore(r.res.Metrics.Composite)
				extra[5] = "ok"

				if !batchNoSave {
					if _, err := db.SaveRun(ctx, store.Run{
						SourceText: text,
						SourceLang: srcLang,
						TargetLang: batchTargetLang,
						Service:    p.service.Name(),
						Baseline:   r.res.Baseline,
						Corrected:  r.res.Corrected,
						Report:     r.res.Report,
						Metrics:    r.res.Metrics,
					}); err != nil {
						slog.Warn("failed to save run history", "row", rowIdx, "err", err)
					}
				}
			}
			out = append(out, append(append([]string{}, row...), extra...))
		}

		outFile, err := os.Create(batchOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output CSV: %w", err)
		}
		defer outFile.Close()

		writer := csv.NewWriter(outFile)
		if err := writer.WriteAll(out); err != nil {
			return fmt.Errorf("failed to write output CSV: %w", err)
		}

		fmt.Printf("Rows corrected: %d, failed: %d\n", succeeded, failed)
		if succeeded > 0 {
			fmt.Printf("Mean EFC composite: %.3f\n", compositeSum/float64(succeeded))
		}
		fmt.Printf("Output written to %s\n", batchOutputFile)

		if failed > 0 {
			return fmt.Errorf("%d of %d rows failed", failed, succeeded+failed)
		}
		return nil
	},
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func formatScore(x float64) string {
	return strconv.FormatFloat(x, 'f', 3, 64)
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInputFile, "input", "i", "", "Input CSV file (required)")
	batchCmd.Flags().StringVarP(&batchOutputFile, "output", "o", "", "Output CSV file (required)")
	batchCmd.Flags().StringVarP(&batchSourceLang, "source", "s", "auto", "Source language code")
	batchCmd.Flags().StringVarP(&batchTargetLang, "target", "t", "", "Target language code (required)")
	batchCmd.Flags().IntVarP(&batchColumn, "column", "l", 0, "Column index holding the source text (0-indexed)")
	batchCmd.Flags().BoolVar(&batchNoHeader, "no-header", false, "Treat the first row as data")
	batchCmd.Flags().StringVarP(&batchGlossary, "glossary", "g", "", "Glossary file (CSV or YAML) instead of the database")
	batchCmd.Flags().BoolVar(&batchNoSave, "no-history", false, "Do not record runs in history")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 1, "Number of rows processed concurrently")

	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
	batchCmd.MarkFlagRequired("target")
}
