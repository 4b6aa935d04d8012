// Package echo provides a generation client that deterministically derives
// output from the request without calling any external API. It stands in for
// the real provider in development (no API key configured) and in tests.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/domain"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/observability"
)

const clientName = "echo"

// Client implements the domain.GenerationClient interface for local use.
type Client struct {
	name string
}

// NewClient creates a new echo client.
// No configuration is required as this client operates entirely in-memory.
func NewClient() *Client {
	return &Client{name: clientName}
}

// Complete derives a deterministic completion from the request prompts.
func (c *Client) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.Completion, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("echoing request")

	text := buildEchoText(req)

	promptTokens := countTokens(req.SystemPrompt) + countTokens(req.UserPrompt)
	completionTokens := countTokens(text)

	logger.Debug("echo completed",
		observability.Int("prompt_tokens", promptTokens),
		observability.Int("completion_tokens", completionTokens),
	)

	return &domain.Completion{
		Text:       text,
		Model:      "echo4",
		StopReason: "stop",
		Usage: domain.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

// Name returns the client identifier.
func (c *Client) Name() string {
	return c.name
}

// buildEchoText renders the user prompt as a minimal page body. Name-sized
// requests (small MaxTokens) get a bare two-word answer instead, mirroring
// how the real provider answers the name call.
func buildEchoText(req *domain.CompletionRequest) string {
	const nameCallThreshold = 32

	if req.MaxTokens > 0 && req.MaxTokens <= nameCallThreshold {
		words := strings.Fields(req.UserPrompt)
		if len(words) == 0 {
			return "Echo App"
		}
		if len(words) > 2 {
			words = words[:2]
		}
		return strings.Join(words, " ")
	}

	return fmt.Sprintf("<h1>Echo</h1>\n<p>%s</p>", req.UserPrompt)
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}
