package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dupr-sync-service/internal/domain"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// retryingProvider wraps a PlayerProvider with retry/backoff behavior for
// the read calls. Enrollment is deliberately not retried: its idempotency
// rides on the upstream already-invited signal, not on replays.
type retryingProvider struct {
	inner       PlayerProvider
	logger      *slog.Logger
	metrics     *metrics.Recorder
	name        string
	maxAttempts int
	backoffFn   backoffFunc
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingProvider(inner PlayerProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, maxAttempts int, backoff time.Duration) PlayerProvider {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &retryingProvider{
		inner:       inner,
		logger:      logger,
		metrics:     recorder,
		name:        name,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *retryingProvider) SearchPlayers(ctx context.Context, firstName, lastName string) ([]domain.Candidate, error) {
	var hits []domain.Candidate
	err := r.retry(ctx, "search", func() error {
		var innerErr error
		hits, innerErr = r.inner.SearchPlayers(ctx, firstName, lastName)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (r *retryingProvider) FetchPlayerByID(ctx context.Context, canonicalID string) (domain.Candidate, error) {
	var candidate domain.Candidate
	err := r.retry(ctx, "fetch", func() error {
		var innerErr error
		candidate, innerErr = r.inner.FetchPlayerByID(ctx, canonicalID)
		return innerErr
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	return candidate, nil
}

// EnrollMembers passes straight through; see type comment.
func (r *retryingProvider) EnrollMembers(ctx context.Context, numericIDs []int64) error {
	if r.inner == nil {
		return ErrProviderUnavailable
	}
	return r.inner.EnrollMembers(ctx, numericIDs)
}

// EnsureAuth passes straight through; credential failures are configuration
// errors and retrying them would only hammer the login endpoint.
func (r *retryingProvider) EnsureAuth(ctx context.Context) error {
	if r.inner == nil {
		return ErrProviderUnavailable
	}
	return r.inner.EnsureAuth(ctx)
}

func (r *retryingProvider) retry(ctx context.Context, op string, call func() error) error {
	if r.inner == nil {
		return ErrProviderUnavailable
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		start := time.Now()
		err := call()
		if r.metrics != nil {
			r.metrics.RecordProviderAttempt(r.name, time.Since(start), err)
		}
		if err == nil {
			return nil
		}
		lastErr = err

		// A configuration fault will not heal between attempts; replaying it
		// only hammers the login endpoint before the batch aborts anyway.
		if errors.Is(err, ErrConfiguration) {
			r.logWarn(ctx, "provider call failed", "op", op, "attempts", attempt, "err", err)
			return err
		}

		delay := r.backoffFn(attempt)
		if rlErr, ok := AsRateLimitError(err); ok {
			if r.metrics != nil {
				r.metrics.RecordRateLimit(r.name, rlErr.RetryAfter)
			}
			if rlErr.RetryAfter > delay {
				delay = rlErr.RetryAfter
			}
		}

		if attempt == r.maxAttempts {
			break
		}

		r.logWarn(ctx, "provider call retry", "op", op, "attempt", attempt, "max_attempts", r.maxAttempts, "err", err)

		// backoff with context awareness
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	r.logWarn(ctx, "provider call failed", "op", op, "attempts", r.maxAttempts, "err", lastErr)
	return lastErr
}

func (r *retryingProvider) logWarn(ctx context.Context, msg string, args ...any) {
	logWithProvider(ctx, logging.FromContext(ctx, r.logger), slog.LevelWarn, r.name, msg, args...)
}
