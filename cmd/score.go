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
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/entfix/internal/scorer"
)

var (
	scoreSource    string
	scoreBaseline  string
	scoreCorrected string
	scoreJSON      bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score entity preservation of existing translations",
	Long: `Compute the Entity-Factuality Composite for a source text, a baseline
translation and a corrected translation produced elsewhere. No translation
service is called.

Each flag takes literal text, or @path to read the text from a file.

Example:
  entfix score --source @src.txt --baseline @mt.txt --corrected @fixed.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := textOrFile(scoreSource)
		if err != nil {
			return err
		}
		baseline, err := textOrFile(scoreBaseline)
		if err != nil {
			return err
		}
		corrected, err := textOrFile(scoreCorrected)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("corrected") {
			corrected = baseline
		}

		s := scorer.New(buildExtractor(appCfg))
		m, err := s.Score(cmd.Context(), source, baseline, corrected)
		if err != nil {
			return fmt.Errorf("failed to score: %w", err)
		}

		if scoreJSON {
			return printJSON(cmd.OutOrStdout(), m)
		}
		printScores(cmd.OutOrStdout(), m)
		return nil
	},
}

// textOrFile returns s, or the contents of the file when s starts with "@".
func textOrFile(s string) (string, error) {
	if len(s) < 2 || s[0] != '@' {
		return s, nil
	}
	b, err := os.ReadFile(s[1:])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s[1:], err)
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreSource, "source", "", "Source text or @file (required)")
	scoreCmd.Flags().StringVar(&scoreBaseline, "baseline", "", "Baseline translation or @file (required)")
	scoreCmd.Flags().StringVar(&scoreCorrected, "corrected", "", "Corrected translation or @file (omitted: baseline)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the metrics as JSON")

	scoreCmd.MarkFlagRequired("source")
	scoreCmd.MarkFlagRequired("baseline")
}
