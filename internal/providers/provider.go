package providers

import (
	"context"

	"dupr-sync-service/internal/domain"
)

// PlayerSearcher finds candidate players by name. A failed call returns an
// error; zero hits return an empty slice. Callers rely on the distinction
// between "service error" and "nobody matched".
type PlayerSearcher interface {
	SearchPlayers(ctx context.Context, firstName, lastName string) ([]domain.Candidate, error)
}

// PlayerFetcher loads a single player by canonical id. Used as the fallback
// when a search hit omits the numeric id.
type PlayerFetcher interface {
	FetchPlayerByID(ctx context.Context, canonicalID string) (domain.Candidate, error)
}

// MemberEnroller adds players to the club by numeric id. A nil error means
// enrolled or confirmed already enrolled; the call is single-shot and is
// never retried blindly.
type MemberEnroller interface {
	EnrollMembers(ctx context.Context, numericIDs []int64) error
}

// Authenticator validates credentials up front so a batch can abort before
// touching any row when the configuration is unusable.
type Authenticator interface {
	EnsureAuth(ctx context.Context) error
}

// PlayerProvider combines the rating-service capabilities the synchronizer
// needs.
type PlayerProvider interface {
	PlayerSearcher
	PlayerFetcher
	MemberEnroller
	Authenticator
}
