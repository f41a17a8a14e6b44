// Package glossary holds the reference terminology used to repair entities
// that a translation dropped. A Store is built once from tabular rows and is
// read-only afterwards, so it can be shared between concurrent requests.
package glossary

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrMalformed is returned by Load when a row lacks a required field.
var ErrMalformed = errors.New("malformed glossary")

// Entry maps a surface term to its canonical target-language form.
type Entry struct {
	Term          string `json:"term" yaml:"term"`
	TermLang      string `json:"term_lang" yaml:"term_lang"`
	CanonicalForm string `json:"canonical_form" yaml:"canonical_form"`
}

// Row is a raw glossary record as produced by a data source. A nil field
// means the source did not provide it at all.
type Row struct {
	Term          *string
	TermLang      *string
	CanonicalForm *string
}

// NewRow builds a Row with every field present.
func NewRow(term, termLang, canonicalForm string) Row {
	return Row{Term: &term, TermLang: &termLang, CanonicalForm: &canonicalForm}
}

// Store is an ordered, immutable collection of glossary entries.
// A nil *Store behaves like an empty one.
type Store struct {
	entries []Entry
}

// Load validates rows and builds a Store preserving their order.
//
// Rows missing term or canonical_form make the whole load fail; every bad
// row is reported, each error wrapping ErrMalformed. A missing term_lang
// becomes "" which matches any language.
func Load(rows []Row) (*Store, error) {
	var errs []error
	entries := make([]Entry, 0, len(rows))

	for i, r := range rows {
		var missing []string
		if r.Term == nil {
			missing = append(missing, "term")
		}
		if r.CanonicalForm == nil {
			missing = append(missing, "canonical_form")
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("%w: row %d: missing %s", ErrMalformed, i, strings.Join(missing, ", ")))
			continue
		}

		e := Entry{Term: *r.Term, CanonicalForm: *r.CanonicalForm}
		if r.TermLang != nil {
			e.TermLang = *r.TermLang
		}
		entries = append(entries, e)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Store{entries: entries}, nil
}

// FromEntries wraps already validated entries, e.g. ones read back from the
// database. The slice is copied.
func FromEntries(entries []Entry) *Store {
	return &Store{entries: append([]Entry(nil), entries...)}
}

// IsEmpty reports whether the store holds no entries.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Len returns the number of entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// ForLanguage returns a new Store restricted to entries whose language has
// the same base as lang ("en" matches "en-US"), plus untagged entries. An
// empty or "auto" lang means the language is unknown and returns the
// receiver unchanged.
func (s *Store) ForLanguage(lang string) *Store {
	if s == nil || lang == "" || strings.EqualFold(lang, autoLang) {
		return s
	}
	want := baseLanguage(lang)
	var filtered []Entry
	for _, e := range s.entries {
		if e.TermLang == "" || baseLanguage(e.TermLang) == want {
			filtered = append(filtered, e)
		}
	}
	return &Store{entries: filtered}
}

const autoLang = "auto"

func baseLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(lang))
	}
	base, _ := tag.Base()
	return base.String()
}

// Each calls fn for every entry in insertion order without copying.
func (s *Store) Each(fn func(i int, e Entry)) {
	if s == nil {
		return
	}
	for i, e := range s.entries {
		fn(i, e)
	}
}
