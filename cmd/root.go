/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/entfix/internal/config"
	"github.com/valpere/entfix/internal/observe"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = viper.New()
	appCfg  *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "entfix",
	Short: "Entity-aware translation post-correction",
	Long: `Translate text with a machine translation service, then check that the
named entities of the source survived. Entities that were dropped are
looked up in a glossary and their canonical form is appended in brackets.
Every run is scored with the Entity-Factuality Composite (EFC).

Supported services: Google Translate, MyMemory, Ollama, OpenRouter, Systran

Use "entfix correct --help" for correction options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(v, cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		logger, err := observe.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		appCfg = cfg
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&cfgFile, "config", "", "Config file (default: ./entfix.yaml or $HOME/.config/entfix/entfix.yaml)")
	pf.String("db", "./data/entfix.db", "Database path for glossary and run history")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text, json")

	pf.Float64("threshold", 0.6, "Minimum similarity (exclusive) for applying a glossary correction")
	pf.Int("top-k", 3, "Glossary candidates retrieved per missing entity")
	pf.String("similarity", "ratcliff", "Similarity measure: ratcliff, jaro-winkler, levenshtein")
	pf.Duration("timeout", 30*time.Second, "Timeout per pipeline run")

	pf.String("service", "google", "Translation service: google, mymemory, ollama, openrouter, systran")
	pf.StringP("credentials", "c", "", "Path to Google Cloud credentials")
	pf.StringP("project", "p", "", "Google Cloud project ID")
	pf.String("api-key", "", "API key for Google, OpenRouter or Systran")
	pf.String("base-url", "", "Base URL for Ollama or OpenRouter")
	pf.String("model", "", "Model for Ollama or OpenRouter")
	pf.String("email", "", "MyMemory email (for higher limits)")

	pf.String("extractor", "heuristic", "Entity extractor: heuristic, ollama")
	pf.String("extractor-model", "", "Ollama model for entity extraction")
	pf.String("extractor-url", "", "Ollama base URL for entity extraction")
	pf.String("glossary-url", "", "URL of a CSV or YAML glossary to use instead of the database")

	// BindPFlag only fails for a nil flag.
	_ = v.BindPFlag("db", pf.Lookup("db"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = v.BindPFlag("threshold", pf.Lookup("threshold"))
	_ = v.BindPFlag("top_k", pf.Lookup("top-k"))
	_ = v.BindPFlag("similarity", pf.Lookup("similarity"))
	_ = v.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = v.BindPFlag("translator.service", pf.Lookup("service"))
	_ = v.BindPFlag("translator.credentials", pf.Lookup("credentials"))
	_ = v.BindPFlag("translator.project_id", pf.Lookup("project"))
	_ = v.BindPFlag("translator.api_key", pf.Lookup("api-key"))
	_ = v.BindPFlag("translator.base_url", pf.Lookup("base-url"))
	_ = v.BindPFlag("translator.model", pf.Lookup("model"))
	_ = v.BindPFlag("translator.email", pf.Lookup("email"))
	_ = v.BindPFlag("extractor.kind", pf.Lookup("extractor"))
	_ = v.BindPFlag("extractor.model", pf.Lookup("extractor-model"))
	_ = v.BindPFlag("extractor.base_url", pf.Lookup("extractor-url"))
	_ = v.BindPFlag("glossary.url", pf.Lookup("glossary-url"))
}
