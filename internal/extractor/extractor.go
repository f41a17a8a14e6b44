// Package extractor defines the named-entity extraction boundary and the
// adapters that satisfy it.
package extractor

import (
	"context"
	"errors"
)

// ErrExtraction marks a failure of the entity extractor. Callers wrap the
// extractor's own error with it so both remain visible to errors.Is.
var ErrExtraction = errors.New("entity extraction failed")

// Extractor returns the entities of text in order of appearance.
// Duplicates are allowed and an empty result is valid.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// Func adapts an ordinary function to Extractor.
type Func func(ctx context.Context, text string) ([]string, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

// Static returns the same entities for any input. Useful when entities are
// supplied by the caller instead of detected.
type Static []string

// Extract returns a copy of s.
func (s Static) Extract(ctx context.Context, text string) ([]string, error) {
	return append([]string{}, s...), nil
}
