package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technest/backend/internal/domain"
)

func newTestOpenAIClient(serverURL string) *OpenAIClient {
	client := NewOpenAIClient(Config{
		APIKey:            "test-api-key",
		BaseURL:           serverURL,
		Model:             "test-model",
		Temperature:       0.2,
		RequestsPerSecond: 1000,
	}, zerolog.Nop())
	client.httpClient.RetryWaitMax = time.Millisecond
	return client
}

func TestNewOpenAIClient(t *testing.T) {
	client := NewOpenAIClient(Config{APIKey: "k", BaseURL: "https://example.com/v1/"}, zerolog.Nop())

	assert.Equal(t, "k", client.apiKey)
	assert.Equal(t, "https://example.com/v1", client.baseURL)
	assert.Equal(t, defaultOpenAIModel, client.model)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 3, client.httpClient.RetryMax)
	assert.Equal(t, 30*time.Second, client.httpClient.HTTPClient.Timeout)

	defaults := NewOpenAIClient(Config{}, zerolog.Nop())
	assert.Equal(t, defaultOpenAIBaseURL, defaults.baseURL)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestBackoff_CapsAtMax(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(time.Second, time.Minute, 0, nil))
	assert.Equal(t, time.Second, backoff(0, time.Second, 5, nil))
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Temperature float64 `json:"temperature"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)
		assert.Equal(t, "compare these", body.Messages[0].Content)
		assert.InDelta(t, 0.2, body.Temperature, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"The Pixel 9 wins."}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	text, err := client.Generate(context.Background(), "compare these")

	require.NoError(t, err)
	assert.Equal(t, "The Pixel 9 wins.", text)
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	text, err := client.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantErr: domain.ErrGeneratorFailure},
		{name: "throttled", status: http.StatusTooManyRequests, body: `{}`, wantErr: domain.ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, body: ``, wantErr: domain.ErrGeneratorFailure},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: domain.ErrGeneratorFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestOpenAIClient(server.URL)
			_, err := client.Generate(context.Background(), "prompt")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrGeneratorFailure)
		})
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	client := newTestOpenAIClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "prompt")
	assert.Error(t, err)
}
