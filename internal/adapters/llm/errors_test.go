package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

func TestClassifyErr(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantKind   domain.ProviderErrorKind
		wantDelay  time.Duration
		rateShaped bool
	}{
		{
			name:       "quota wording",
			err:        errors.New("You exceeded your current quota"),
			wantKind:   domain.ProviderQuotaExceeded,
			rateShaped: true,
		},
		{
			name:       "http 429",
			err:        errors.New("unexpected status 429 Too Many Requests"),
			wantKind:   domain.ProviderQuotaExceeded,
			rateShaped: true,
		},
		{
			name:       "resource exhausted",
			err:        errors.New("rpc error: code = RESOURCE_EXHAUSTED"),
			wantKind:   domain.ProviderQuotaExceeded,
			rateShaped: true,
		},
		{
			name:       "rate limit with retry delay",
			err:        errors.New("Rate limit reached, please retry in 2.5s"),
			wantKind:   domain.ProviderRateLimited,
			wantDelay:  2500 * time.Millisecond,
			rateShaped: true,
		},
		{
			name:     "invalid key",
			err:      errors.New("Incorrect API key provided: invalid API key"),
			wantKind: domain.ProviderAuthInvalid,
		},
		{
			name:     "unauthorized",
			err:      errors.New("401 Unauthorized"),
			wantKind: domain.ProviderAuthInvalid,
		},
		{
			name:     "generic failure",
			err:      errors.New("connection reset by peer"),
			wantKind: domain.ProviderFailure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pe := classifyErr("openai", tc.err)
			if pe.Kind != tc.wantKind {
				t.Fatalf("expected kind %s, got %s", tc.wantKind, pe.Kind)
			}
			if pe.Provider != "openai" {
				t.Fatalf("expected provider openai, got %s", pe.Provider)
			}
			if pe.RetryAfter != tc.wantDelay {
				t.Fatalf("expected retry delay %s, got %s", tc.wantDelay, pe.RetryAfter)
			}
			if pe.RateLimitShaped() != tc.rateShaped {
				t.Fatalf("RateLimitShaped() = %v, want %v", pe.RateLimitShaped(), tc.rateShaped)
			}
			if !errors.Is(pe, tc.err) {
				t.Fatal("expected wrapped cause to survive errors.Is")
			}
		})
	}
}
