package dupr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dupr-sync-service/internal/providers"
)

// ErrCredentialsMissing is the fatal configuration error: without stored
// credentials no row can ever be processed, so callers abort instead of
// marking rows.
var ErrCredentialsMissing = fmt.Errorf("dupr credentials not configured: %w", providers.ErrConfiguration)

// AuthError reports a login attempt the upstream rejected (bad status or a
// 200 with no token in the body).
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("dupr authentication failed (status=%d): %s", e.StatusCode, e.Body)
}

// Unwrap classifies rejected logins as configuration errors; callers abort
// the batch rather than marking rows.
func (e *AuthError) Unwrap() error {
	return providers.ErrConfiguration
}

// tokenSource caches the short-lived bearer token and re-authenticates when
// the cache is empty or the token's exp claim is near.
type tokenSource struct {
	mu           sync.Mutex
	username     string
	password     string
	token        string
	expiry       time.Time
	now          func() time.Time
	authenticate func(ctx context.Context) (string, error)
}

// Token returns the cached token, authenticating first when needed. Auth
// failure here is a configuration-class error and propagates.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && !s.expired() {
		return s.token, nil
	}
	if s.username == "" || s.password == "" {
		return "", ErrCredentialsMissing
	}

	token, err := s.authenticate(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expiry = tokenExpiry(token)
	return s.token, nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

func (s *tokenSource) expired() bool {
	if s.expiry.IsZero() {
		return false
	}
	return !s.now().Before(s.expiry.Add(-tokenRefreshSkew))
}

// tokenExpiry reads the exp claim without verifying the signature; the token
// is the upstream's own and only its lifetime matters here. A token that
// does not parse is treated as non-expiring and relied on until rejected.
func tokenExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
