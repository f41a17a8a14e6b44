package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/entfix/internal/postprocess"
)

const defaultOllamaModel = "llama3.2"

// Ollama asks a local LLM to list the named entities of a sentence.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama returns an extractor talking to the Ollama server at baseURL.
func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Extract returns the entities the model reports, in its order. Entities
// the model invents that do not occur in text are dropped.
func (o *Ollama) Extract(ctx context.Context, text string) ([]string, error) {
	if text == "" {
		return []string{}, nil
	}

	prompt := fmt.Sprintf(`List every named entity (people, organizations, places, dates, products) in the text below.
Copy each entity exactly as written, in order of appearance, repeating duplicates.
Respond with JSON only: {"entities": ["..."]}

Text: %q`, text)

	jsonData, err := json.Marshal(map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var payload struct {
		Entities []string `json:"entities"`
	}
	raw := postprocess.ExtractJSON(postprocess.Clean(ollamaResp.Response))
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse entity list: %w", err)
	}

	entities := make([]string, 0, len(payload.Entities))
	for _, e := range payload.Entities {
		if e != "" && strings.Contains(text, e) {
			entities = append(entities, e)
		}
	}
	return entities, nil
}
