package retriever

import (
	"math"
	"reflect"
	"testing"

	"github.com/valpere/entfix/internal/glossary"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatcliffObershelp(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "identical", a: "aiims", b: "aiims", expected: 1.0},
		{name: "both empty", a: "", b: "", expected: 1.0},
		{name: "one empty", a: "aiims", b: "", expected: 0.0},
		{name: "disjoint", a: "aiims", b: "xyz", expected: 0.0},
		// difflib.SequenceMatcher(None, "abcd", "bcde").ratio() == 0.75
		{name: "shifted", a: "abcd", b: "bcde", expected: 0.75},
		// matching blocks "a", "c" -> 2*2/6
		{name: "recursive blocks", a: "abc", b: "axc", expected: 2.0 * 2 / 6},
		{name: "unicode runes", a: "київ", b: "київ", expected: 1.0},
		{name: "suffix", a: "delhi", b: "new delhi", expected: 2.0 * 5 / 14},
		{name: "abbreviation", a: "january 15", b: "jan 15", expected: 2.0 * 6 / 16},
		{name: "cyrillic partial", a: "київ", b: "кив", expected: 2.0 * 3 / 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatcliffObershelp(tt.a, tt.b)
			if !almostEqual(got, tt.expected) {
				t.Errorf("RatcliffObershelp(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestFold_KeepsSurroundingSpace(t *testing.T) {
	if got := fold(" AIIMS"); got != " aiims" {
		t.Errorf("fold should only normalise and case-fold, got %q", got)
	}
}

func TestMeasures_Bounds(t *testing.T) {
	for _, name := range []string{MeasureRatcliff, MeasureJaroWinkler, MeasureLevenshtein} {
		fn, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) failed: %v", name, err)
		}
		if got := fn("aiims", "aiims"); !almostEqual(got, 1.0) {
			t.Errorf("%s: identical strings scored %f", name, got)
		}
		if got := fn("aiims", "xyz"); !almostEqual(got, 0.0) {
			t.Errorf("%s: disjoint strings scored %f", name, got)
		}
	}
}

func TestByName_Unknown(t *testing.T) {
	if _, err := ByName("cosine"); err == nil {
		t.Error("expected error for unknown measure")
	}
	fn, err := ByName("")
	if err != nil || fn == nil {
		t.Errorf("expected default measure for empty name, got err=%v", err)
	}
}

func TestRetrieve_EmptyStore(t *testing.T) {
	empty, _ := glossary.Load(nil)

	for _, s := range []*glossary.Store{nil, empty} {
		got := Retrieve("AIIMS", s, 3)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil result, got %v", got)
		}
	}
}

func TestRetrieve_CaseInsensitiveExactMatch(t *testing.T) {
	store := glossary.FromEntries([]glossary.Entry{
		{Term: "Delhi", CanonicalForm: "दिल्ली"},
		{Term: "aiims", CanonicalForm: "एम्स"},
	})

	got := Retrieve("AIIMS", store, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].CanonicalForm != "एम्स" {
		t.Errorf("expected canonical form from the glossary, got %q", got[0].CanonicalForm)
	}
	if !almostEqual(got[0].Similarity, 1.0) {
		t.Errorf("expected similarity 1.0, got %f", got[0].Similarity)
	}
}

func TestRetrieve_TopKAndOrdering(t *testing.T) {
	store := glossary.FromEntries([]glossary.Entry{
		{Term: "zzzz", CanonicalForm: "Z"},
		{Term: "Gupta", CanonicalForm: "गुप्ता"},
		{Term: "Anil Gupta", CanonicalForm: "अनिल गुप्ता"},
		{Term: "Anil", CanonicalForm: "अनिल"},
	})

	got := Retrieve("Anil Gupta", store, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].CanonicalForm != "अनिल गुप्ता" {
		t.Errorf("expected exact match first, got %q", got[0].CanonicalForm)
	}
	if got[0].Similarity < got[1].Similarity {
		t.Error("candidates not sorted by similarity descending")
	}
}

func TestRetrieve_NonPositiveTopKUsesDefault(t *testing.T) {
	store := glossary.FromEntries([]glossary.Entry{
		{Term: "a", CanonicalForm: "1"},
		{Term: "b", CanonicalForm: "2"},
		{Term: "c", CanonicalForm: "3"},
		{Term: "d", CanonicalForm: "4"},
	})

	if got := Retrieve("a", store, 0); len(got) != DefaultTopK {
		t.Errorf("expected %d candidates, got %d", DefaultTopK, len(got))
	}
}

func TestRetrieve_TieBreakByInsertionOrder(t *testing.T) {
	store := glossary.FromEntries([]glossary.Entry{
		{Term: "AIIMS", CanonicalForm: "first"},
		{Term: "Delhi", CanonicalForm: "other"},
		{Term: "aiims", CanonicalForm: "second"},
		{Term: "AiImS", CanonicalForm: "third"},
	})

	first := Retrieve("AIIMS", store, 3)
	want := []string{"first", "second", "third"}
	for i, c := range first {
		if c.CanonicalForm != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], c.CanonicalForm)
		}
	}

	second := Retrieve("AIIMS", store, 3)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("retrieval not deterministic: %v vs %v", first, second)
	}
}

func TestRetriever_WithSimilarity(t *testing.T) {
	constant := func(a, b string) float64 { return 0.42 }
	r := New(WithSimilarity(constant))

	store := glossary.FromEntries([]glossary.Entry{{Term: "x", CanonicalForm: "X"}})
	got := r.Retrieve("anything", store, 1)
	if len(got) != 1 || got[0].Similarity != 0.42 {
		t.Errorf("custom similarity not used: %v", got)
	}

	if New(WithSimilarity(nil)).similarity == nil {
		t.Error("nil similarity should keep the default")
	}
}
