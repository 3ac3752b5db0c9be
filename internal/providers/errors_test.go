package providers

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitErrorMessage(t *testing.T) {
	err := &RateLimitError{Provider: "dupr", StatusCode: 429, RetryAfter: 30 * time.Second}
	if got := err.Error(); got != "provider rate limited (status=429)" {
		t.Fatalf("unexpected message: %s", got)
	}

	err = &RateLimitError{Message: "slow down"}
	if got := err.Error(); got != "slow down" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestAsRateLimitErrorUnwraps(t *testing.T) {
	inner := &RateLimitError{StatusCode: 429}
	wrapped := fmt.Errorf("search failed: %w", inner)

	got, ok := AsRateLimitError(wrapped)
	if !ok || got.StatusCode != 429 {
		t.Fatalf("expected unwrap, got %v %v", got, ok)
	}

	if _, ok := AsRateLimitError(errors.New("plain")); ok {
		t.Fatal("expected no match for plain error")
	}
}

func TestAsUpstreamErrorUnwraps(t *testing.T) {
	inner := &UpstreamError{Provider: "dupr", Operation: "search", StatusCode: 500, Body: "oops"}
	wrapped := fmt.Errorf("call: %w", inner)

	got, ok := AsUpstreamError(wrapped)
	if !ok || got.StatusCode != 500 {
		t.Fatalf("expected unwrap, got %v %v", got, ok)
	}
	if got.Error() != "dupr search: unexpected status 500: oops" {
		t.Fatalf("unexpected message: %s", got.Error())
	}
}
