package domain

import "time"

// GenerationRequest is the caller-supplied description of the app to
// generate or modify. It is validated before any tokens are spent.
type GenerationRequest struct {
	Prompt          string  `json:"prompt"`
	Language        string  `json:"language,omitempty"` // hint for the kid's language, e.g. "en", "de"
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// GenerationResult is produced on a successful metered generation. Immutable
// once returned.
type GenerationResult struct {
	AppName         string    `json:"app_name,omitempty"`
	Code            string    `json:"code"`
	Usage           Usage     `json:"usage"`
	Model           string    `json:"model"`
	StopReason      string    `json:"stop_reason,omitempty"`
	RemainingTokens int64     `json:"remaining_tokens"`
	FinishTime      time.Time `json:"finish_time"`
}

// Usage tracks token consumption reported by the generation provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// add accumulates usage across the calls of a composite generation.
func (u *Usage) add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// CompletionRequest is one provider call: a system prompt framing the task
// and a user prompt carrying the caller's text.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Completion is the provider's answer to one CompletionRequest.
type Completion struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string
}

// CostPolicy holds the token price of each metered operation.
type CostPolicy struct {
	Generate int64
	Modify   int64
}
