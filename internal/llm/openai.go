// Package llm talks to OpenAI-compatible chat-completion APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
)

var ErrEmptyCompletion = errors.New("completion returned no choices")

// Completer sends one system + user message pair and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds configuration for the chat client.
type Config struct {
	APIKey     string
	BaseURL    string       // DeepSeek when empty
	Model      string       // deepseek-chat when empty
	HTTPClient *http.Client // Optional (tests)
}

// Client implements Completer with the official OpenAI SDK.
type Client struct {
	model  string
	client openai.Client
}

var _ Completer = (*Client)(nil)

// NewClient builds a client. SDK retries are disabled; a failed call fails once.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Model returns the configured model.
func (c *Client) Model() string {
	return c.model
}

// Complete returns the first choice's content verbatim.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", mapAPIError(err))
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm api error (status %d)", e.StatusCode)
}

func mapAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return err
}
