package glossary

import (
	"errors"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestLoad_PreservesOrder(t *testing.T) {
	rows := []Row{
		NewRow("AIIMS", "en", "AIIMS"),
		NewRow("Delhi", "en", "दिल्ली"),
		NewRow("AIIMS", "en", "एम्स"),
	}

	s, err := Load(rows)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}

	entries := s.Entries()
	want := []string{"AIIMS", "दिल्ली", "एम्स"}
	for i, e := range entries {
		if e.CanonicalForm != want[i] {
			t.Errorf("entry %d: expected canonical %q, got %q", i, want[i], e.CanonicalForm)
		}
	}
}

func TestLoad_MissingTermLangDefaultsToEmpty(t *testing.T) {
	s, err := Load([]Row{{Term: strPtr("AIIMS"), CanonicalForm: strPtr("AIIMS")}})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.Entries()[0].TermLang; got != "" {
		t.Errorf("expected empty term_lang, got %q", got)
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		row     Row
		missing string
	}{
		{
			name:    "missing term",
			row:     Row{CanonicalForm: strPtr("AIIMS")},
			missing: "term",
		},
		{
			name:    "missing canonical form",
			row:     Row{Term: strPtr("AIIMS")},
			missing: "canonical_form",
		},
		{
			name:    "missing both",
			row:     Row{TermLang: strPtr("en")},
			missing: "term, canonical_form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load([]Row{NewRow("ok", "", "ok"), tt.row})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
			if s != nil {
				t.Error("expected no partial store")
			}
			if !strings.Contains(err.Error(), "row 1") || !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q should name row 1 and %q", err.Error(), tt.missing)
			}
		})
	}
}

func TestLoad_ReportsEveryBadRow(t *testing.T) {
	_, err := Load([]Row{{}, NewRow("a", "", "b"), {}})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "row 0") || !strings.Contains(msg, "row 2") {
		t.Errorf("expected both bad rows reported, got %q", msg)
	}
}

func TestLoad_Empty(t *testing.T) {
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.IsEmpty() {
		t.Error("expected empty store")
	}
}

func TestStore_NilIsEmpty(t *testing.T) {
	var s *Store
	if !s.IsEmpty() {
		t.Error("nil store should be empty")
	}
	if s.Entries() != nil {
		t.Error("nil store should have no entries")
	}
	called := false
	s.Each(func(int, Entry) { called = true })
	if called {
		t.Error("Each on nil store should not call fn")
	}
}

func TestStore_EntriesIsACopy(t *testing.T) {
	s := FromEntries([]Entry{{Term: "AIIMS", CanonicalForm: "AIIMS"}})

	entries := s.Entries()
	entries[0].CanonicalForm = "changed"

	if got := s.Entries()[0].CanonicalForm; got != "AIIMS" {
		t.Errorf("store was mutated through Entries: %q", got)
	}
}

func TestStore_ForLanguage(t *testing.T) {
	s := FromEntries([]Entry{
		{Term: "Kyiv", TermLang: "en", CanonicalForm: "Київ"},
		{Term: "Kiew", TermLang: "de", CanonicalForm: "Київ"},
		{Term: "NATO", CanonicalForm: "НАТО"},
	})

	en := s.ForLanguage("EN")
	if en.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", en.Len())
	}
	if en.Entries()[0].Term != "Kyiv" || en.Entries()[1].Term != "NATO" {
		t.Errorf("unexpected entries: %+v", en.Entries())
	}

	if s.ForLanguage("") != s {
		t.Error("empty language should return the same store")
	}
}

func TestStore_ForLanguage_UnknownLanguageKeepsAll(t *testing.T) {
	s := FromEntries([]Entry{
		{Term: "AIIMS", TermLang: "en", CanonicalForm: "एम्स"},
		{Term: "Delhi", TermLang: "en-US", CanonicalForm: "दिल्ली"},
	})

	for _, lang := range []string{"", "auto", "AUTO"} {
		if got := s.ForLanguage(lang).Len(); got != 2 {
			t.Errorf("ForLanguage(%q): expected all 2 entries, got %d", lang, got)
		}
	}
}

func TestStore_ForLanguage_RegionalTags(t *testing.T) {
	s := FromEntries([]Entry{
		{Term: "AIIMS", TermLang: "en", CanonicalForm: "एम्स"},
		{Term: "Delhi", TermLang: "en-US", CanonicalForm: "दिल्ली"},
		{Term: "Kiew", TermLang: "de", CanonicalForm: "Київ"},
	})

	tests := []struct {
		lang string
		want int
	}{
		{lang: "en", want: 2},
		{lang: "en-GB", want: 2},
		{lang: "EN-us", want: 2},
		{lang: "de-AT", want: 1},
		{lang: "fr", want: 0},
	}
	for _, tt := range tests {
		if got := s.ForLanguage(tt.lang).Len(); got != tt.want {
			t.Errorf("ForLanguage(%q): expected %d entries, got %d", tt.lang, tt.want, got)
		}
	}
}
