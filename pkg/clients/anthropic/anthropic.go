package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmhub/internal/config"
)

const (
	apiVersion   = "2023-06-01"
	defaultModel = "claude-3-haiku-20240307"
	maxTokens    = 2048
)

// RequestTimeout bounds a single messages call.
const RequestTimeout = 30 * time.Second

// ErrEmptyResponse is returned when the API answers without text content.
var ErrEmptyResponse = errors.New("empty response from ai")

// Client sends single-turn prompts to the Anthropic messages API.
type Client struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a configured Anthropic client.
func NewClient(cfg config.AIConfig) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.anthropic.com"
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client := resty.New().
		SetBaseURL(base).
		SetHeader("x-api-key", cfg.AnthropicKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(RequestTimeout)

	return &Client{httpClient: client, model: model}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt with the given system instructions and returns the
// text of the reply with any markdown fence removed.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	var (
		respBody messageResponse
		apiErr   apiError
	)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("anthropic api error (%d): %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("anthropic api error (%d): %s", resp.StatusCode(), resp.String())
	}

	var b strings.Builder
	for _, part := range respBody.Content {
		if part.Type == "" || part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	text := stripFence(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// stripFence removes a surrounding ```json or ``` block.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
