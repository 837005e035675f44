package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

var retryDelayPattern = regexp.MustCompile(`retry in (\d+\.?\d*)s`)

// classifyErr maps a raw provider failure onto the domain error taxonomy by
// inspecting the error text. Providers with structured errors (HTTP status
// codes) classify before falling back to this.
func classifyErr(provider string, err error) *domain.ProviderError {
	text := err.Error()
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "quota") ||
		strings.Contains(text, "429") ||
		strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "resource exhausted"):
		return &domain.ProviderError{
			Provider: provider,
			Kind:     domain.ProviderQuotaExceeded,
			Message:  "API quota exceeded, wait a few minutes before trying again",
			Err:      err,
		}

	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "retry"):
		pe := &domain.ProviderError{
			Provider: provider,
			Kind:     domain.ProviderRateLimited,
			Message:  "rate limit reached, wait a moment and try again",
			Err:      err,
		}
		if m := retryDelayPattern.FindStringSubmatch(lower); m != nil {
			if secs, parseErr := strconv.ParseFloat(m[1], 64); parseErr == nil {
				pe.RetryAfter = time.Duration(secs * float64(time.Second))
			}
		}
		return pe

	case strings.Contains(text, "401") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "api key not valid"):
		return &domain.ProviderError{
			Provider: provider,
			Kind:     domain.ProviderAuthInvalid,
			Message:  "invalid API key",
			Err:      err,
		}

	default:
		return &domain.ProviderError{
			Provider: provider,
			Kind:     domain.ProviderFailure,
			Message:  "error generating response: " + text,
			Err:      err,
		}
	}
}
