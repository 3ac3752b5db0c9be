package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable indicates a decorator was constructed without an
// inner provider.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrConfiguration marks errors caused by missing or rejected credentials.
// A batch run aborts on these instead of marking individual rows, since no
// row could ever succeed.
var ErrConfiguration = errors.New("provider configuration error")

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// UpstreamError captures a non-2xx response with its body for diagnosis.
type UpstreamError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Body)
}

// AsUpstreamError attempts to unwrap an error into an UpstreamError.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr, true
	}
	return nil, false
}
