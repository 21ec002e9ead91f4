package openai

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
	apiURL          = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
	defaultVision   = "gpt-4o"
	defaultTimeout  = 30 * time.Second
	defaultMaxToken = 4096
)

// Client implements port.CompletionClient using the OpenAI Chat Completions API.
type Client struct {
	apiKey      string
	model       string
	visionModel string
	endpoint    string
	client      *http.Client
}

// NewClient creates an OpenAI-based completion client from a provider config.
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
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVision
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       model,
		visionModel: visionModel,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	model := c.model
	if len(req.ImageBytes) > 0 {
		model = c.visionModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxToken
	}

	var messages []map[string]interface{}
	if req.System != "" {
		messages = append(messages, map[string]interface{}{
			"role":    "system",
			"content": req.System,
		})
	}
	messages = append(messages, map[string]interface{}{
		"role":    "user",
		"content": buildContentBlocks(req),
	})

	reqBody := map[string]interface{}{
		"model":                 model,
		"max_completion_tokens": maxTokens,
		"messages":              messages,
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
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
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, completion.NewProviderError("openai", completion.CodeTimeout, err)
		}
		return nil, completion.NewProviderError("openai", completion.CodeUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, completion.ClassifyHTTPStatus("openai", resp.StatusCode, string(respBody), resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, model)
}

func buildContentBlocks(req port.CompletionRequest) []map[string]interface{} {
	var blocks []map[string]interface{}

	if len(req.ImageBytes) > 0 {
		encoded := base64.StdEncoding.EncodeToString(req.ImageBytes)
		dataURI := fmt.Sprintf("data:%s;base64,%s", req.ImageContentType, encoded)
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": req.Prompt,
	})

	return blocks
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, completion.NewProviderError("openai", completion.CodeBadResponse, fmt.Errorf("unmarshaling response: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, completion.NewProviderError("openai", completion.CodeBadResponse, fmt.Errorf("empty response from API: no choices"))
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, completion.NewProviderError("openai", completion.CodeBadResponse,
			fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit"))
	}

	return &port.CompletionResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
	}, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
