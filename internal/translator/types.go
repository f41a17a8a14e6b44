// Package translator adapts machine translation services to the correction
// pipeline. Every adapter implements Service; AsFunc turns one into the
// plain translate function the orchestrator consumes.
package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// ErrUnavailable is wrapped by errors that mean the service cannot serve
// the request at all: missing credentials, unreachable endpoint or an
// unsupported language pair.
var ErrUnavailable = errors.New("translator: service unavailable")

// ServiceConfig selects and configures one adapter.
type ServiceConfig struct {
	Service     string `mapstructure:"service" json:"service"`
	Credentials string `mapstructure:"credentials" json:"credentials"`
	ProjectID   string `mapstructure:"project_id" json:"project_id"`
	APIKey      string `mapstructure:"api_key" json:"api_key"`
	BaseURL     string `mapstructure:"base_url" json:"base_url"`
	Model       string `mapstructure:"model" json:"model"`
	Email       string `mapstructure:"email" json:"email"`
}

type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type Result struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Latency        time.Duration     `json:"latency"`
}

// Service is a machine translation backend.
//
// SupportedLanguages returns base language codes; a nil list means the
// service does not restrict languages up front.
type Service interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// AsFunc returns a translate function backed by svc. Before translating it
// checks availability and the language pair; failures of either wrap
// ErrUnavailable.
func AsFunc(svc Service) func(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	return func(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
		if svc == nil {
			return "", fmt.Errorf("%w: no service configured", ErrUnavailable)
		}
		name := svc.Name()

		if err := svc.IsAvailable(ctx); err != nil {
			if errors.Is(err, ErrUnavailable) {
				return "", fmt.Errorf("translator: %s: %w", name, err)
			}
			return "", fmt.Errorf("translator: %s: %w: %w", name, ErrUnavailable, err)
		}

		langs, err := svc.SupportedLanguages(ctx)
		if err != nil {
			return "", fmt.Errorf("translator: %s: failed to list languages: %w", name, err)
		}
		if !supports(langs, tgtLang) {
			return "", fmt.Errorf("translator: %s: %w: target language %q not supported", name, ErrUnavailable, tgtLang)
		}
		if srcLang != "" && srcLang != "auto" && !supports(langs, srcLang) {
			return "", fmt.Errorf("translator: %s: %w: source language %q not supported", name, ErrUnavailable, srcLang)
		}

		res, err := svc.Translate(ctx, Request{Text: text, SourceLang: srcLang, TargetLang: tgtLang})
		if err != nil {
			return "", fmt.Errorf("translator: %s: %w", name, err)
		}
		return res.TranslatedText, nil
	}
}

func supports(langs []string, lang string) bool {
	if langs == nil {
		return true
	}
	want := baseOf(lang)
	for _, l := range langs {
		if baseOf(l) == want {
			return true
		}
	}
	return false
}

// baseOf reduces a BCP 47 tag to its base language ("pt-BR" -> "pt").
// Unparseable tags compare as written.
func baseOf(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	return base.String()
}
