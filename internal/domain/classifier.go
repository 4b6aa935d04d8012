package domain

import "strings"

// Provider failure messages are matched by substring against these pattern
// groups. A message can loosely satisfy more than one group (OpenAI quota
// errors mention rate limits, for example), so the order below is load
// bearing: quota before rate limit before credentials.
var classificationOrder = []struct {
	kind     FailureKind
	patterns []string
}{
	{FailureQuota, []string{
		"insufficient_quota",
		"exceeded your current quota",
		"billing hard limit",
		"quota",
	}},
	{FailureRateLimited, []string{
		"rate limit",
		"rate_limit",
		"too many requests",
		"429",
	}},
	{FailureAuth, []string{
		"invalid api key",
		"incorrect api key",
		"invalid_api_key",
		"authentication",
		"unauthorized",
		"401",
	}},
}

// Classify maps a raw provider failure to the closed failure taxonomy.
// First match wins; anything unrecognized (including timeouts) becomes
// FailureUnknown. Pure function: no side effects, never panics, nil-safe.
func Classify(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	message := strings.ToLower(err.Error())
	for _, group := range classificationOrder {
		for _, pattern := range group.patterns {
			if strings.Contains(message, pattern) {
				return &UpstreamError{Kind: group.kind, Detail: err.Error()}
			}
		}
	}

	return &UpstreamError{Kind: FailureUnknown, Detail: err.Error()}
}
