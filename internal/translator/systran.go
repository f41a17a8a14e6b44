package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	systranHost = "api-systran-systran-translation-v1.p.rapidapi.com"
	systranURL  = "https://" + systranHost + "/translation/text/translate"
)

// SystranService calls Systran through RapidAPI.
type SystranService struct {
	apiKey string
	url    string
	client *http.Client
}

func NewSystranService(apiKey string) *SystranService {
	return &SystranService{
		apiKey: apiKey,
		url:    systranURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: Systran API key required", ErrUnavailable)
	}

	body := map[string]any{
		"input":  req.Text,
		"target": req.TargetLang,
		"format": "text",
	}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		body["source"] = req.SourceLang
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", s.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", systranHost)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(msg))
	}

	var systranResp struct {
		Outputs []struct {
			Output string `json:"output"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&systranResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(systranResp.Outputs) == 0 || systranResp.Outputs[0].Output == "" {
		return nil, fmt.Errorf("empty translation response")
	}

	result.TranslatedText = systranResp.Outputs[0].Output
	result.Confidence = 1.0

	return result, nil
}

func (s *SystranService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Systran API key not configured")
	}
	return nil
}

func (s *SystranService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "fr", "es", "de", "it", "pt", "ru", "zh", "ja", "ko", "ar", "uk", "hi"}, nil
}
