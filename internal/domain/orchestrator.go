package domain

import (
	"context"
	"strings"
	"time"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/ledger"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/observability"
)

// Limits bounds caller-supplied request fields. Requests outside the limits
// are rejected before any tokens are reserved.
type Limits struct {
	MaxPromptChars  int
	MaxOutputTokens int
}

const defaultMaxOutputTokens = 8192

// GenerationService orchestrates one metered unit of generation work:
// validate, reserve tokens, call the external generation service, then
// commit on success or classify-and-refund on failure.
type GenerationService struct {
	client GenerationClient
	tokens *ledger.TokenLedger
	costs  CostPolicy
	limits Limits
	events EventPublisher
}

// NewGenerationService creates a new generation service (DI constructor).
func NewGenerationService(
	client GenerationClient,
	tokens *ledger.TokenLedger,
	costs CostPolicy,
	limits Limits,
	events EventPublisher,
) *GenerationService {
	if limits.MaxOutputTokens <= 0 {
		limits.MaxOutputTokens = defaultMaxOutputTokens
	}

	return &GenerationService{
		client: client,
		tokens: tokens,
		costs:  costs,
		limits: limits,
		events: events,
	}
}

// Generate produces a single artifact from the request (plain generation,
// no name call).
func (s *GenerationService) Generate(ctx context.Context, accountID string, req *GenerationRequest) (*GenerationResult, error) {
	ctx = observability.WithOperation(ctx, "generate")

	if err := s.validate(req); err != nil {
		return nil, err
	}

	return s.executeMetered(ctx, accountID, s.costs.Generate, func(ctx context.Context) (*GenerationResult, error) {
		completion, err := s.client.Complete(ctx, buildAppPrompt(req))
		if err != nil {
			return nil, err
		}

		return &GenerationResult{
			Code:       NormalizeHTML(completion.Text),
			Usage:      completion.Usage,
			Model:      completion.Model,
			StopReason: completion.StopReason,
			FinishTime: time.Now(),
		}, nil
	})
}

// GenerateApp produces an app artifact plus a short app name. The two
// provider calls run concurrently under a single reservation. A failure of
// the name call does not fail the operation: a deterministic fallback name
// is derived from the prompt and the reservation is still committed, since
// the primary artifact was produced.
func (s *GenerationService) GenerateApp(ctx context.Context, accountID string, req *GenerationRequest) (*GenerationResult, error) {
	ctx = observability.WithOperation(ctx, "generate_app")

	if err := s.validate(req); err != nil {
		return nil, err
	}

	return s.executeMetered(ctx, accountID, s.costs.Generate, func(ctx context.Context) (*GenerationResult, error) {
		type nameOutcome struct {
			completion *Completion
			err        error
		}

		nameCh := make(chan nameOutcome, 1)
		go func() {
			completion, err := s.client.Complete(ctx, buildNamePrompt(req))
			nameCh <- nameOutcome{completion: completion, err: err}
		}()

		primary, err := s.client.Complete(ctx, buildAppPrompt(req))
		name := <-nameCh
		if err != nil {
			return nil, err
		}

		result := &GenerationResult{
			Code:       NormalizeHTML(primary.Text),
			Usage:      primary.Usage,
			Model:      primary.Model,
			StopReason: primary.StopReason,
			FinishTime: time.Now(),
		}

		if name.err != nil {
			// Downgraded, not fatal: the artifact exists, only the name is missing.
			result.AppName = FallbackAppName(req.Prompt)
			observability.FromContext(ctx).Warn("name generation failed, using fallback name",
				observability.Error(name.err),
				observability.String("fallback_name", result.AppName),
			)
			return result, nil
		}

		result.AppName = cleanAppName(name.completion.Text)
		if result.AppName == "" {
			result.AppName = FallbackAppName(req.Prompt)
		}
		result.Usage.add(name.completion.Usage)

		return result, nil
	})
}

// Modify applies a change request to an existing artifact.
func (s *GenerationService) Modify(ctx context.Context, accountID string, req *GenerationRequest, existingCode string) (*GenerationResult, error) {
	ctx = observability.WithOperation(ctx, "modify")

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if existingCode == "" {
		return nil, &ValidationError{Field: "existing_code", Reason: "must not be empty"}
	}

	return s.executeMetered(ctx, accountID, s.costs.Modify, func(ctx context.Context) (*GenerationResult, error) {
		completion, err := s.client.Complete(ctx, buildModifyPrompt(req, existingCode))
		if err != nil {
			return nil, err
		}

		return &GenerationResult{
			Code:       NormalizeHTML(completion.Text),
			Usage:      completion.Usage,
			Model:      completion.Model,
			StopReason: completion.StopReason,
			FinishTime: time.Now(),
		}, nil
	})
}

// executeMetered runs one unit of work under a token reservation. Exactly
// one net balance mutation per call: the reservation's decrement is either
// kept (commit) or reversed (refund).
func (s *GenerationService) executeMetered(
	ctx context.Context,
	accountID string,
	cost int64,
	call func(ctx context.Context) (*GenerationResult, error),
) (*GenerationResult, error) {
	ctx = observability.WithAccountID(ctx, accountID)
	logger := observability.FromContext(ctx)

	reservation, err := s.tokens.Reserve(ctx, accountID, cost)
	if err != nil {
		logger.Info("reservation rejected", observability.Error(err))
		return nil, err
	}

	result, callErr := call(ctx)
	if callErr != nil {
		classified := Classify(callErr)
		logger.Error("generation failed, refunding reservation",
			observability.String("failure_kind", string(classified.Kind)),
			observability.Error(callErr),
		)

		if refundErr := s.tokens.Refund(ctx, reservation); refundErr != nil {
			logger.Error("refund failed", observability.Error(refundErr))
		}

		s.publish(ctx, "generation_failed", map[string]interface{}{
			"account_id":   accountID,
			"cost":         cost,
			"failure_kind": string(classified.Kind),
		})
		return nil, classified
	}

	s.tokens.Commit(ctx, reservation)

	// Read the balance back from the ledger rather than computing it locally,
	// so concurrent activity on the same account is reflected.
	balance, balanceErr := s.tokens.BalanceOf(ctx, accountID)
	if balanceErr != nil {
		logger.Warn("balance readback failed", observability.Error(balanceErr))
	}
	result.RemainingTokens = balance

	logger.Info("generation succeeded",
		observability.Int("total_tokens", result.Usage.TotalTokens),
		observability.Int64("remaining_tokens", balance),
	)
	s.publish(ctx, "generation_completed", map[string]interface{}{
		"account_id":   accountID,
		"cost":         cost,
		"total_tokens": result.Usage.TotalTokens,
	})

	return result, nil
}

func (s *GenerationService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, data)
}

// validate rejects malformed requests before any tokens are reserved.
func (s *GenerationService) validate(req *GenerationRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Reason: "must not be nil"}
	}

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		return &ValidationError{Field: "prompt", Reason: "must not be empty"}
	}
	if s.limits.MaxPromptChars > 0 && len(prompt) > s.limits.MaxPromptChars {
		return &ValidationError{Field: "prompt", Reason: "exceeds maximum length"}
	}

	if req.MaxOutputTokens < 0 || req.MaxOutputTokens > s.limits.MaxOutputTokens {
		return &ValidationError{Field: "max_output_tokens", Reason: "out of range"}
	}

	if req.Temperature < 0 || req.Temperature > 2 {
		return &ValidationError{Field: "temperature", Reason: "out of range"}
	}

	return nil
}
