// Package retriever ranks glossary entries by lexical similarity to a
// surface term and returns their canonical forms.
package retriever

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/valpere/entfix/internal/glossary"
)

// DefaultTopK is the number of candidates returned when the caller passes
// a non-positive limit.
const DefaultTopK = 3

// Candidate is one ranked glossary match.
type Candidate struct {
	CanonicalForm string  `json:"canonical_form"`
	Similarity    float64 `json:"similarity"`
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithSimilarity replaces the default Ratcliff/Obershelp measure.
func WithSimilarity(fn Similarity) Option {
	return func(r *Retriever) {
		if fn != nil {
			r.similarity = fn
		}
	}
}

// Retriever is stateless after construction and safe for concurrent use.
type Retriever struct {
	similarity Similarity
}

// New returns a Retriever using RatcliffObershelp unless overridden.
func New(opts ...Option) *Retriever {
	r := &Retriever{similarity: RatcliffObershelp}
	for _, o := range opts {
		o(r)
	}
	return r
}

var defaultRetriever = New()

// Retrieve ranks store entries against term with the default measure.
func Retrieve(term string, store *glossary.Store, topK int) []Candidate {
	return defaultRetriever.Retrieve(term, store, topK)
}

// Retrieve compares the case-folded term with every entry's case-folded term
// and returns at most topK candidates, best first. Entries with equal
// similarity keep glossary order. An empty store yields no candidates.
func (r *Retriever) Retrieve(term string, store *glossary.Store, topK int) []Candidate {
	if store.IsEmpty() {
		return []Candidate{}
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	query := fold(term)
	scored := make([]Candidate, 0, store.Len())
	store.Each(func(_ int, e glossary.Entry) {
		scored = append(scored, Candidate{
			CanonicalForm: e.CanonicalForm,
			Similarity:    r.similarity(query, fold(e.Term)),
		})
	})

	slices.SortStableFunc(scored, func(a, b Candidate) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// fold normalises to NFC and applies Unicode case folding. A Caser keeps
// state, so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
