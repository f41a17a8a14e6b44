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
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/entfix/internal/glossary"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the entity glossary",
	Long: `Import, add, list, export and delete glossary entries.

Each entry maps a term, optionally tagged with its language, to the
canonical form appended when a translation drops the entity.`,
}

var glossaryListLang string

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListGlossary(cmd.Context(), glossaryListLang)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLANG\tTERM\tCANONICAL FORM")
		for _, r := range records {
			lang := r.Entry.TermLang
			if lang == "" {
				lang = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, lang, r.Entry.Term, r.Entry.CanonicalForm)
		}
		return w.Flush()
	},
}

var glossaryAddLang string

var glossaryAddCmd = &cobra.Command{
	Use:   "add <term> <canonical-form>",
	Short: "Add a glossary entry",
	Long: `Add a glossary entry mapping a term to its canonical form.

Example:
  entfix glossary add "Kyiv" "Київ" --lang en`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.AddGlossaryEntry(cmd.Context(), glossary.Entry{
			Term:          args[0],
			TermLang:      glossaryAddLang,
			CanonicalForm: args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to add glossary entry: %w", err)
		}
		fmt.Printf("Added %s: %q → %q\n", id, args[0], args[1])
		return nil
	},
}

var glossaryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import glossary entries from CSV or YAML",
	Long: `Import glossary entries from a CSV file (header: term, term_lang,
canonical_form) or a YAML file (entries: list). The whole file is
validated first; one malformed row rejects the import.

Example:
  entfix glossary import terms.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := glossary.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read glossary: %w", err)
		}

		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		added, err := db.ImportGlossary(cmd.Context(), g.Entries())
		if err != nil {
			return fmt.Errorf("failed to import glossary: %w", err)
		}
		fmt.Printf("Imported %d new entries (%d read).\n", added, g.Len())
		return nil
	},
}

var glossaryExportLang string

var glossaryExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export glossary entries as CSV",
	Long:  `Write the glossary as CSV to the given file, or to stdout.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListGlossary(cmd.Context(), glossaryExportLang)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}
		entries := make([]glossary.Entry, 0, len(records))
		for _, r := range records {
			entries = append(entries, r.Entry)
		}

		var w io.Writer = os.Stdout
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := glossary.WriteCSV(w, entries); err != nil {
			return fmt.Errorf("failed to write glossary: %w", err)
		}
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary entry by ID",
	Long: `Delete a glossary entry by its ID (shown in "entfix glossary list").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(appCfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteGlossaryEntry(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary entry: %w", err)
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryListCmd.Flags().StringVarP(&glossaryListLang, "lang", "l", "", "Only entries tagged with this language")
	glossaryAddCmd.Flags().StringVarP(&glossaryAddLang, "lang", "l", "", "Language of the term (empty: any)")
	glossaryExportCmd.Flags().StringVarP(&glossaryExportLang, "lang", "l", "", "Only entries tagged with this language")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryImportCmd)
	glossaryCmd.AddCommand(glossaryExportCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
