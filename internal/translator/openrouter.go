package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/entfix/internal/postprocess"
)

const (
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel = "google/gemini-2.0-flash-exp:free"
)

type OpenRouterService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenRouterService(apiKey, baseURL, model string) *OpenRouterService {
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}
	if model == "" {
		model = defaultOpenRouterModel
	}
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

func (s *OpenRouterService) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: OpenRouter API key required", ErrUnavailable)
	}

	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "the detected language"
	}

	jsonData, err := json.Marshal(map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt(sourceLang, req.TargetLang)},
			{"role": "user", "content": req.Text},
		},
		"max_tokens": 4096,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("X-Title", "entfix")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("API returned status %d: %v", resp.StatusCode, errResp)
	}

	var openrouterResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&openrouterResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(openrouterResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	result.TranslatedText = postprocess.Clean(openrouterResp.Choices[0].Message.Content)
	result.Confidence = 0.7
	result.Metadata = map[string]string{
		"model":             s.model,
		"prompt_tokens":     fmt.Sprintf("%d", openrouterResp.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", openrouterResp.Usage.CompletionTokens),
	}

	return result, nil
}

func (s *OpenRouterService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	return nil
}

// SupportedLanguages returns nil; coverage depends on the model.
func (s *OpenRouterService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return nil, nil
}

func systemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf("You are a professional translator. Translate the following text from %s to %s.\n"+
		"Keep person names, organisations, places and dates intact.\n"+
		"Only respond with the translation, nothing else. No explanations, no quotes, just the translation.",
		sourceLang, targetLang)
}
