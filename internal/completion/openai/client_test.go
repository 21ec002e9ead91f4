package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipstream/internal/completion"
	"shipstream/internal/completion/openai"
	"shipstream/internal/config"
	"shipstream/internal/port"
)

func providerConfig() *config.CompletionProviderConfig {
	return &config.CompletionProviderConfig{
		APIKey:       "sk-test",
		DefaultModel: "gpt-4o-mini",
		VisionModel:  "gpt-4o",
		TimeoutSecs:  5,
	}
}

func TestComplete_Success(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"field\":\"loadNumber\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	resp, err := c.Complete(context.Background(), port.CompletionRequest{
		System: "map headers",
		Prompt: "Load #",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"field":"loadNumber"}`, resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, "gpt-4o-mini", captured["model"])
}

func TestComplete_ImageRequestUsesVisionModel(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	_, err := c.Complete(context.Background(), port.CompletionRequest{
		Prompt:           "read this document",
		ImageBytes:       []byte{0x89, 0x50, 0x4e, 0x47},
		ImageContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", captured["model"])
}

func TestComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	_, err := c.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeRateLimited, provErr.Code)
	assert.Equal(t, "openai", provErr.Provider)
	assert.Equal(t, float64(30), provErr.RetryAfter.Seconds())
	assert.True(t, provErr.Recoverable())
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	_, err := c.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeUnavailable, provErr.Code)
}

func TestComplete_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	_, err := c.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeAuth, provErr.Code)
	assert.False(t, provErr.Recoverable())
}

func TestComplete_TruncatedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"partial"},"finish_reason":"length"}]}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	_, err := c.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeBadResponse, provErr.Code)
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := openai.NewClientWithEndpoint(providerConfig(), srv.URL)
	_, err := c.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var provErr *completion.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, completion.CodeBadResponse, provErr.Code)
}
