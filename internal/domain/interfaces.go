package domain

import "context"

// GenerationClient is the external generation service. The service treats it
// as a black box that may be slow, fail, or return malformed text; callers
// bound each call with a timeout and classify failures.
type GenerationClient interface {
	// Complete sends one prompt pair and returns the generated text with
	// usage statistics.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Name returns the client identifier.
	Name() string
}

// LikeStore toggles an account's like on a public project and keeps the
// shared counter. Toggling twice returns to the original state.
type LikeStore interface {
	// Toggle flips the like and returns the new state and total.
	Toggle(ctx context.Context, projectID, accountID string) (liked bool, total int64, err error)

	// Count returns the number of likes for a project.
	Count(ctx context.Context, projectID string) (int64, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
