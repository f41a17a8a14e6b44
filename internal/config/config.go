// Package config loads entfix settings through viper from, in rising order
// of precedence: built-in defaults, entfix.yaml, ENTFIX_* environment
// variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/entfix/internal/retriever"
	"github.com/valpere/entfix/internal/translator"
)

// Extractor kinds.
const (
	ExtractorHeuristic = "heuristic"
	ExtractorOllama    = "ollama"
)

// EnvPrefix is the prefix of environment overrides (ENTFIX_THRESHOLD,
// ENTFIX_TRANSLATOR_API_KEY, ...).
const EnvPrefix = "ENTFIX"

type Config struct {
	Threshold  float64                  `mapstructure:"threshold"`
	TopK       int                      `mapstructure:"top_k"`
	Similarity string                   `mapstructure:"similarity"`
	Timeout    time.Duration            `mapstructure:"timeout"`
	DB         string                   `mapstructure:"db"`
	Log        LogConfig                `mapstructure:"log"`
	Translator translator.ServiceConfig `mapstructure:"translator"`
	Extractor  ExtractorConfig          `mapstructure:"extractor"`
	Glossary   GlossaryConfig           `mapstructure:"glossary"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ExtractorConfig struct {
	Kind    string   `mapstructure:"kind"`
	Model   string   `mapstructure:"model"`
	BaseURL string   `mapstructure:"base_url"`
	Stop    []string `mapstructure:"stopwords"`
}

// GlossaryConfig names a remote glossary fetched when no local one is given.
type GlossaryConfig struct {
	URL string `mapstructure:"url"`
}

var defaults = map[string]any{
	"threshold":              0.6,
	"top_k":                  retriever.DefaultTopK,
	"similarity":             retriever.MeasureRatcliff,
	"timeout":                30 * time.Second,
	"db":                     "./data/entfix.db",
	"log.level":              "info",
	"log.format":             "text",
	"translator.service":     "google",
	"translator.credentials": "",
	"translator.project_id":  "",
	"translator.api_key":     "",
	"translator.base_url":    "",
	"translator.model":       "",
	"translator.email":       "",
	"extractor.kind":         ExtractorHeuristic,
	"extractor.model":        "",
	"extractor.base_url":     "",
	"extractor.stopwords":    []string{},
	"glossary.url":           "",
}

// SetDefaults registers every known key on v so that environment
// variables can override keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Init prepares v: defaults, environment binding and the config file.
// With file empty, entfix.yaml is searched in the working directory and in
// $HOME/.config/entfix; a missing file is not an error.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("entfix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "entfix"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read: %w", err)
	}
	return nil
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	validMeasures   = []string{retriever.MeasureRatcliff, retriever.MeasureJaroWinkler, retriever.MeasureLevenshtein}
	validExtractors = []string{ExtractorHeuristic, ExtractorOllama}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate returns all problems in cfg joined into one error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold %.3f is out of range [0, 1]", cfg.Threshold))
	}
	if cfg.TopK < 1 {
		errs = append(errs, fmt.Errorf("top_k %d must be at least 1", cfg.TopK))
	}
	if !slices.Contains(validMeasures, cfg.Similarity) {
		errs = append(errs, fmt.Errorf("similarity %q is invalid; valid values: %s", cfg.Similarity, strings.Join(validMeasures, ", ")))
	}
	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", cfg.Timeout))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: %s", cfg.Log.Level, strings.Join(validLogLevels, ", ")))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(cfg.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: %s", cfg.Log.Format, strings.Join(validLogFormats, ", ")))
	}
	if !slices.Contains(translator.Names, strings.ToLower(cfg.Translator.Service)) {
		errs = append(errs, fmt.Errorf("translator.service %q is invalid; valid values: %s", cfg.Translator.Service, strings.Join(translator.Names, ", ")))
	}
	if !slices.Contains(validExtractors, cfg.Extractor.Kind) {
		errs = append(errs, fmt.Errorf("extractor.kind %q is invalid; valid values: %s", cfg.Extractor.Kind, strings.Join(validExtractors, ", ")))
	}

	return errors.Join(errs...)
}
