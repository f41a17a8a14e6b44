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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded correction runs",
	Long:  `List, show, and clear the run history kept in the SQLite database.`,
}

var historyLimit int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tPAIR\tSERVICE\tFIXES\tBEFORE\tAFTER\tEFC\tTEXT")
		for _, r := range runs {
			snippet := []rune(r.SourceText)
			if len(snippet) > 40 {
				snippet = append(snippet[:37], []rune("...")...)
			}
			fmt.Fprintf(w, "%s\t%s\t%s→%s\t%s\t%d\t%.3f\t%.3f\t%.3f\t%s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.SourceLang, r.TargetLang, r.Service, len(r.Report.Fixes),
				r.Metrics.Before, r.Metrics.After, r.Metrics.Composite, string(snippet))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get run: %w", err)
		}
		return printJSON(os.Stdout, run)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearRuns(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d runs from history.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list (0: all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}
