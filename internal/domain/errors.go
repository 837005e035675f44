package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected is returned when a collection is requested before the
// storage adapter has successfully connected.
var ErrNotConnected = errors.New("database not connected")

// StorageError wraps a failed storage operation. Write and delete paths
// return it to the caller; listing paths log and swallow it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ProviderErrorKind classifies AI provider failures.
type ProviderErrorKind string

const (
	ProviderQuotaExceeded ProviderErrorKind = "quota_exceeded"
	ProviderRateLimited   ProviderErrorKind = "rate_limited"
	ProviderAuthInvalid   ProviderErrorKind = "auth_invalid"
	ProviderFailure       ProviderErrorKind = "provider_error"
)

// ProviderError is a classified failure from an AI provider. RetryAfter is
// set when the provider reported a wait duration on a rate limit.
type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RateLimitShaped reports whether the error should map to HTTP 429.
func (e *ProviderError) RateLimitShaped() bool {
	return e.Kind == ProviderQuotaExceeded || e.Kind == ProviderRateLimited
}
