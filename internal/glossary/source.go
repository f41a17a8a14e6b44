package glossary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	colTerm          = "term"
	colTermLang      = "term_lang"
	colCanonicalForm = "canonical_form"
)

// ReadCSV parses a glossary table with a header row. Recognised columns are
// term, term_lang and canonical_form in any order; other columns are
// ignored. A column absent from the header yields nil for that field in
// every row, and so does an empty term or canonical_form cell.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("glossary: read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("glossary: read csv line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, Row{
			Term:          cell(record, cols, colTerm, true),
			TermLang:      cell(record, cols, colTermLang, false),
			CanonicalForm: cell(record, cols, colCanonicalForm, true),
		})
	}
	return rows, nil
}

func cell(record []string, cols map[string]int, name string, required bool) *string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return nil
	}
	v := strings.TrimSpace(record[idx])
	if required && v == "" {
		return nil
	}
	return &v
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// File is the YAML glossary document.
//
// Example:
//
//	entries:
//	  - term: "AIIMS"
//	    term_lang: "en"
//	    canonical_form: "AIIMS"
type File struct {
	Entries []yamlRow `yaml:"entries"`
}

type yamlRow struct {
	Term          *string `yaml:"term"`
	TermLang      *string `yaml:"term_lang"`
	CanonicalForm *string `yaml:"canonical_form"`
}

// ReadYAML parses a YAML glossary document. Unknown keys are rejected to
// catch typos in column names.
func ReadYAML(r io.Reader) ([]Row, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("glossary: decode yaml: %w", err)
	}

	rows := make([]Row, 0, len(f.Entries))
	for _, e := range f.Entries {
		rows = append(rows, Row(e))
	}
	return rows, nil
}

// WriteCSV writes entries as a CSV table readable by ReadCSV.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{colTerm, colTermLang, colCanonicalForm}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.Term, e.TermLang, e.CanonicalForm}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRows picks a parser from the file extension. Anything that is not
// .yaml or .yml is treated as CSV.
func ReadRows(name string, r io.Reader) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ReadYAML(r)
	default:
		return ReadCSV(r)
	}
}

// LoadFile reads and validates a glossary file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("glossary: open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(path, f)
	if err != nil {
		return nil, err
	}
	store, err := Load(rows)
	if err != nil {
		return nil, fmt.Errorf("glossary: load %q: %w", path, err)
	}
	return store, nil
}

// Fetch downloads a glossary from url. The body format follows the URL
// path extension, defaulting to CSV.
func Fetch(ctx context.Context, client *http.Client, url string) (*Store, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("glossary: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("glossary: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("glossary: fetch %s: status %d", url, resp.StatusCode)
	}

	name := req.URL.Path
	rows, err := ReadRows(name, resp.Body)
	if err != nil {
		return nil, err
	}
	return Load(rows)
}
