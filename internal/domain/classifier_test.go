package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		kind    domain.FailureKind
	}{
		{
			name:    "quota exhaustion",
			message: "Error 429: You exceeded your current quota, please check your plan and billing details",
			kind:    domain.FailureQuota,
		},
		{
			name:    "insufficient_quota code",
			message: "insufficient_quota: account has no remaining credits",
			kind:    domain.FailureQuota,
		},
		{
			name:    "rate limit",
			message: "Rate limit reached for gpt-4o-mini, retry after 20s",
			kind:    domain.FailureRateLimited,
		},
		{
			name:    "429 status",
			message: "API returned status 429: too many requests",
			kind:    domain.FailureRateLimited,
		},
		{
			name:    "invalid api key",
			message: "Incorrect API key provided: sk-****",
			kind:    domain.FailureAuth,
		},
		{
			name:    "unauthorized",
			message: "API returned status 401: Unauthorized",
			kind:    domain.FailureAuth,
		},
		{
			name:    "timeout is unclassified",
			message: "context deadline exceeded",
			kind:    domain.FailureUnknown,
		},
		{
			name:    "connection failure is unclassified",
			message: "dial tcp: connection refused",
			kind:    domain.FailureUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := domain.Classify(errors.New(tt.message))
			require.NotNil(t, classified)
			require.Equal(t, tt.kind, classified.Kind)
			require.Equal(t, tt.message, classified.Detail)
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// A message that loosely matches both the quota and rate-limit patterns
	// must classify as quota: the quota check runs first.
	err := errors.New("rate limit: you exceeded your current quota")

	classified := domain.Classify(err)
	require.Equal(t, domain.FailureQuota, classified.Kind)
}

func TestClassify_Nil(t *testing.T) {
	require.Nil(t, domain.Classify(nil))
}
