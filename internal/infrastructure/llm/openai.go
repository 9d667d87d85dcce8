package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIClient generates text through an OpenAI-compatible chat completions API
type OpenAIClient struct {
	httpClient  *retryablehttp.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewOpenAIClient creates a new chat completions client
func NewOpenAIClient(config Config, logger zerolog.Logger) *OpenAIClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	logger = logger.With().Str("provider", ProviderOpenAI).Logger()

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Backoff = backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &logger

	return &OpenAIClient{
		httpClient:  retryClient,
		apiKey:      config.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: config.Temperature,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
		logger:      logger,
	}
}

// Generate sends the prompt as a single user message and returns the reply text
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "TechNest/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrGeneratorFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %w", domain.ErrGeneratorFailure, domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		message := gjson.GetBytes(body, "error.message").String()
		c.logger.Warn().Int("status", resp.StatusCode).Str("error", message).Msg("completion request failed")
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrGeneratorFailure, resp.StatusCode, message)
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrGeneratorFailure)
	}

	c.logger.Debug().
		Str("model", c.model).
		Int64("total_tokens", gjson.GetBytes(body, "usage.total_tokens").Int()).
		Msg("completion received")

	return content.String(), nil
}

// backoff waits per exponentialBackoff but honours Retry-After on throttled responses
func backoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if resp.Header.Get("Retry-After") != "" {
			return retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
		}
	}
	wait := exponentialBackoff(attemptNum + 1)
	if wait > max {
		wait = max
	}
	return wait
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}
