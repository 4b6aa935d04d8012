package domain

import "fmt"

// ValidationError indicates a malformed request. It is returned before any
// tokens are reserved, so it never has a quota effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// FailureKind is the closed taxonomy of external generation failures.
type FailureKind string

const (
	// FailureQuota means the upstream account ran out of paid capacity.
	FailureQuota FailureKind = "upstream_quota"

	// FailureRateLimited means the upstream throttled the request.
	FailureRateLimited FailureKind = "upstream_rate_limited"

	// FailureAuth means the upstream rejected our credentials.
	FailureAuth FailureKind = "upstream_auth"

	// FailureUnknown covers everything else, including timeouts.
	FailureUnknown FailureKind = "upstream_error"
)

// UpstreamError is a classified external generation failure. The reservation
// is always refunded before one of these reaches the caller.
type UpstreamError struct {
	Kind   FailureKind
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Detail)
}
