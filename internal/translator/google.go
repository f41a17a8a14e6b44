package translator

import (
	"context"
	"fmt"
	"os"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService uses the Cloud Translation v2 API. Authentication comes from
// a service account file, an API key, or application default credentials.
type GoogleService struct {
	credentials string
	apiKey      string
	projectID   string
}

func NewGoogleService(credentials, apiKey, projectID string) *GoogleService {
	return &GoogleService{credentials: credentials, apiKey: apiKey, projectID: projectID}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}
	if s.apiKey != "" {
		opts = append(opts, option.WithAPIKey(s.apiKey))
	}
	if s.projectID != "" {
		opts = append(opts, option.WithQuotaProject(s.projectID))
	}
	return opts
}

func (s *GoogleService) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return nil, fmt.Errorf("invalid target language: %w", err)
	}

	var opts *translate.Options
	if req.SourceLang != "" && req.SourceLang != "auto" {
		sourceTag, err := language.Parse(req.SourceLang)
		if err != nil {
			return nil, fmt.Errorf("invalid source language: %w", err)
		}
		opts = &translate.Options{Source: sourceTag, Format: translate.Text}
	} else {
		opts = &translate.Options{Format: translate.Text}
	}

	client, err := translate.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %w", ErrUnavailable, err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, targetTag, opts)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	result.TranslatedText = translations[0].Text
	result.Confidence = 1.0
	if translations[0].Source != language.Und {
		result.Metadata = map[string]string{"detected_source": translations[0].Source.String()}
	}

	return result, nil
}

// IsAvailable checks that a configured credentials file can be read.
func (s *GoogleService) IsAvailable(ctx context.Context) error {
	if s.credentials == "" {
		return nil
	}
	if _, err := os.Stat(s.credentials); err != nil {
		return fmt.Errorf("credentials file: %w", err)
	}
	return nil
}

// SupportedLanguages returns nil: Google accepts every language it lists
// and an unknown one fails at translation time.
func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return nil, nil
}
