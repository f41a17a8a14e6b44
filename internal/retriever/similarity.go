package retriever

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two already-normalised strings in [0, 1]. Equal strings
// score 1 and strings sharing no characters score 0.
type Similarity func(a, b string) float64

// Names accepted by ByName.
const (
	MeasureRatcliff    = "ratcliff"
	MeasureJaroWinkler = "jaro-winkler"
	MeasureLevenshtein = "levenshtein"
)

// ByName resolves a configured measure name. An empty name selects the
// default Ratcliff/Obershelp ratio.
func ByName(name string) (Similarity, error) {
	switch name {
	case "", MeasureRatcliff:
		return RatcliffObershelp, nil
	case MeasureJaroWinkler:
		return JaroWinkler, nil
	case MeasureLevenshtein:
		return Levenshtein, nil
	default:
		return nil, fmt.Errorf("retriever: unknown similarity measure %q", name)
	}
}

// RatcliffObershelp returns difflib's SequenceMatcher ratio over runes:
// 2*M/T where M is the size of the matching blocks and T the combined length.
func RatcliffObershelp(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// JaroWinkler wraps matchr's Jaro-Winkler distance.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return matchr.JaroWinkler(a, b, false)
}

// Levenshtein returns 1 - editDistance/maxLen over runes.
func Levenshtein(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1.0 - float64(matchr.Levenshtein(a, b))/float64(maxLen)
}
