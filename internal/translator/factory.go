package translator

import (
	"fmt"
	"strings"
)

// Names lists the services New can build.
var Names = []string{"google", "mymemory", "ollama", "openrouter", "systran"}

// New builds the service named by cfg.Service.
func New(cfg ServiceConfig) (Service, error) {
	switch strings.ToLower(cfg.Service) {
	case "", "google":
		return NewGoogleService(cfg.Credentials, cfg.APIKey, cfg.ProjectID), nil
	case "mymemory":
		return NewMyMemoryService(cfg.Email), nil
	case "ollama":
		return NewOllamaTranslator(cfg.BaseURL, cfg.Model), nil
	case "openrouter":
		return NewOpenRouterService(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "systran":
		return NewSystranService(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown translation service %q (want one of %s)", cfg.Service, strings.Join(Names, ", "))
	}
}
