// Package openai adapts the official OpenAI SDK to the domain
// GenerationClient interface. It converts between domain types and SDK
// types; failure classification happens in the domain layer, so errors are
// returned with the SDK's message intact.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/domain"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/observability"
)

// Client implements the domain.GenerationClient interface for OpenAI.
type Client struct {
	client openai.Client
	model  string
	name   string
}

// NewClient creates a new OpenAI generation client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  config.Model,
		name:   "openai",
	}, nil
}

// Complete sends one prompt pair and returns the generated text with usage
// statistics.
func (c *Client) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.Completion, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API")

	params := c.toSDKParams(req)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return c.toDomainCompletion(resp), nil
}

// Name returns the client identifier.
func (c *Client) Name() string {
	return c.name
}

// toSDKParams converts a domain request to SDK ChatCompletionNewParams.
func (c *Client) toSDKParams(req *domain.CompletionRequest) openai.ChatCompletionNewParams {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.SystemPrompt),
		openai.UserMessage(req.UserPrompt),
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	return params
}

// toDomainCompletion converts an SDK response to a domain completion.
func (c *Client) toDomainCompletion(resp *openai.ChatCompletion) *domain.Completion {
	text := ""
	stopReason := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
		stopReason = string(resp.Choices[0].FinishReason)
	}

	return &domain.Completion{
		Text:       text,
		Model:      string(resp.Model),
		StopReason: stopReason,
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}
