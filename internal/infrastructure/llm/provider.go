// Package llm provides text generation backends for comparison summaries and chat answers.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
)

// Supported providers
const (
	ProviderTemplate = "template"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

// Config holds text generation provider configuration
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       float64
	Timeout           time.Duration
	RequestsPerSecond float64
}

// New builds the configured generator. The template provider returns a nil
// generator so callers fall back to their deterministic templates.
func New(ctx context.Context, config Config, logger zerolog.Logger) (domain.TextGenerator, error) {
	switch config.Provider {
	case ProviderTemplate, "":
		return nil, nil
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, fmt.Errorf("openai api key is required")
		}
		return NewOpenAIClient(config, logger), nil
	case ProviderGemini:
		client, err := NewGeminiClient(ctx, config, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}
