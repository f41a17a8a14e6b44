// Package validator checks that a baseline translation is in the expected
// target language. A mismatch is reported, never fatal: the correction
// pipeline still runs and the caller decides whether to warn.
package validator

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/valpere/entfix/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

type Validator struct {
	det *detector.Detector
}

// New creates a Validator on det, or on a fresh all-language detector when
// det is nil.
func New(det *detector.Detector) *Validator {
	if det == nil {
		det = detector.New()
	}
	return &Validator{det: det}
}

// IsValid returns true when translatedText appears to be written in targetLang.
// Regional subtags are ignored ("pt-BR" matches Portuguese).
//
// Short texts (fewer than minValidationLength runes) and texts whose language
// cannot be determined pass without error. When the detected language differs
// from targetLang the returned error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if want := baseLanguage(targetLang); detected != want {
		return false, fmt.Errorf("expected %s but detected %s", want, detected)
	}

	return true, nil
}

func baseLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}
