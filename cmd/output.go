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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/valpere/entfix/internal/orchestrator"
	"github.com/valpere/entfix/internal/scorer"
)

const barWidth = 20

// bar renders ratio in [0, 1] as a fixed-width bar.
func bar(ratio float64) string {
	n := int(math.Round(min(max(ratio, 0), 1) * barWidth))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func printResult(w io.Writer, res *orchestrator.Result) {
	fmt.Fprintln(w, "Baseline:")
	fmt.Fprintf(w, "  %s\n\n", res.Baseline)
	fmt.Fprintln(w, "Corrected:")
	fmt.Fprintf(w, "  %s\n\n", res.Corrected)

	fmt.Fprintf(w, "Entities: %s\n", strings.Join(res.Report.SourceEntities, ", "))
	if len(res.Report.Fixes) == 0 {
		fmt.Fprintln(w, "Fixes:    none")
	} else {
		fmt.Fprintln(w, "Fixes:")
		for _, f := range res.Report.Fixes {
			fmt.Fprintf(w, "  %s -> [%s] (similarity %.3f)\n", f.Entity, f.Applied, f.Score)
		}
	}

	fmt.Fprintln(w)
	printScores(w, res.Metrics)
}

func printScores(w io.Writer, m scorer.Metrics) {
	fmt.Fprintf(w, "Before    %s %.3f\n", bar(m.Before), m.Before)
	fmt.Fprintf(w, "After     %s %.3f\n", bar(m.After), m.After)
	fmt.Fprintf(w, "EFC composite: %.3f (improvement %+.3f)\n", m.Composite, m.Improvement())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
