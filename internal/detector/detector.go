// Package detector identifies the language of a text with lingua-go. It
// resolves "auto" source languages before translation and backs the
// target-language check in package validator.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Auto is the source language value that requests detection.
const Auto = "auto"

// Detector is expensive to build; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over the given ISO 639-1 codes. Unknown codes are
// ignored; with fewer than two known codes all languages are considered.
func New(isoCodes ...string) *Detector {
	var codes []lingua.IsoCode639_1
	for _, c := range isoCodes {
		code := lingua.GetIsoCode639_1FromValue(strings.ToUpper(strings.TrimSpace(c)))
		if code != lingua.UnknownIsoCode639_1 {
			codes = append(codes, code)
		}
	}

	builder := lingua.NewLanguageDetectorBuilder()
	var detector lingua.LanguageDetector
	if len(codes) >= 2 {
		detector = builder.FromIsoCodes639_1(codes...).Build()
	} else {
		detector = builder.FromAllLanguages().Build()
	}

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// ResolveSource returns lang unchanged unless it is empty or Auto, in which
// case the language of text is detected. ok is false when detection fails.
func (d *Detector) ResolveSource(text, lang string) (resolved string, ok bool) {
	if lang != "" && !strings.EqualFold(lang, Auto) {
		return lang, true
	}
	return d.DetectISO(text)
}
