package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"shipstream/internal/completion"
	"shipstream/internal/config"
	"shipstream/internal/port"
)

const (
	apiURL          = "https://api.anthropic.com/v1/messages"
	apiVersion      = "2023-06-01"
	defaultModel    = "claude-sonnet-4-20250514"
	defaultTimeout  = 30 * time.Second
	defaultMaxToken = 4096
)

// Client implements port.CompletionClient using the Anthropic Messages API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates an Anthropic-based completion client from a provider config.
func NewClient(cfg *config.CompletionProviderConfig) *Client {
	return newClient(cfg, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.CompletionProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.CompletionProviderConfig, endpoint string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxToken
	}

	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContentBlocks(req),
			},
		},
	}
	if req.System != "" {
		reqBody["system"] = req.System
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, completion.NewProviderError("anthropic", completion.CodeTimeout, err)
		}
		return nil, completion.NewProviderError("anthropic", completion.CodeUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, completion.ClassifyHTTPStatus("anthropic", resp.StatusCode, string(respBody), resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, c.model)
}

func buildContentBlocks(req port.CompletionRequest) []map[string]interface{} {
	var blocks []map[string]interface{}

	if len(req.ImageBytes) > 0 {
		blocks = append(blocks, map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": req.ImageContentType,
				"data":       base64.StdEncoding.EncodeToString(req.ImageBytes),
			},
		})
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": req.Prompt,
	})

	return blocks
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, completion.NewProviderError("anthropic", completion.CodeBadResponse, fmt.Errorf("unmarshaling response: %w", err))
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, completion.NewProviderError("anthropic", completion.CodeBadResponse, fmt.Errorf("empty response from API: no text content"))
	}

	if resp.StopReason == "max_tokens" {
		return nil, completion.NewProviderError("anthropic", completion.CodeBadResponse,
			fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit"))
	}

	return &port.CompletionResponse{
		Text:  text,
		Model: model,
	}, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
