package dupr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	raw, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed signing token: %v", err)
	}
	return raw
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	raw := signedToken(t, now.Add(time.Hour))

	var authCalls int
	src := &tokenSource{
		username: "ops@example.com",
		password: "secret",
		now:      func() time.Time { return now },
		authenticate: func(ctx context.Context) (string, error) {
			authCalls++
			return raw, nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := src.Token(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != raw {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if authCalls != 1 {
		t.Fatalf("expected a single authentication, got %d", authCalls)
	}
}

func TestTokenSourceRefreshesExpiredToken(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	expired := signedToken(t, now.Add(30*time.Second)) // inside the refresh skew
	fresh := signedToken(t, now.Add(time.Hour))

	tokens := []string{expired, fresh}
	var authCalls int
	src := &tokenSource{
		username: "ops@example.com",
		password: "secret",
		now:      func() time.Time { return now },
		authenticate: func(ctx context.Context) (string, error) {
			token := tokens[authCalls]
			authCalls++
			return token, nil
		},
	}

	if _, err := src.Token(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fresh {
		t.Fatal("expected refreshed token")
	}
	if authCalls != 2 {
		t.Fatalf("expected 2 authentications, got %d", authCalls)
	}
}

func TestTokenSourceMissingCredentials(t *testing.T) {
	src := &tokenSource{now: time.Now}
	if _, err := src.Token(context.Background()); !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
}

func TestTokenSourceInvalidateForcesReauth(t *testing.T) {
	now := time.Now()
	raw := signedToken(t, now.Add(time.Hour))

	var authCalls int
	src := &tokenSource{
		username: "ops@example.com",
		password: "secret",
		now:      func() time.Time { return now },
		authenticate: func(ctx context.Context) (string, error) {
			authCalls++
			return raw, nil
		},
	}

	_, _ = src.Token(context.Background())
	src.Invalidate()
	_, _ = src.Token(context.Background())

	if authCalls != 2 {
		t.Fatalf("expected re-authentication after invalidate, got %d calls", authCalls)
	}
}

func TestTokenExpiryUnparseableToken(t *testing.T) {
	if !tokenExpiry("not-a-jwt").IsZero() {
		t.Fatal("expected zero expiry for unparseable token")
	}
}
