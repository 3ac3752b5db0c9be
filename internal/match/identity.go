package match

import (
	"context"
	"log/slog"

	"dupr-sync-service/internal/domain"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/providers"
)

// IdentityResolver turns a matched candidate into the numeric id enrollment
// requires, fetching the full profile by canonical id when the search hit
// omitted the number.
type IdentityResolver struct {
	fetcher providers.PlayerFetcher
	logger  *slog.Logger
}

// NewIdentityResolver constructs a resolver backed by the given fetcher.
func NewIdentityResolver(fetcher providers.PlayerFetcher, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{fetcher: fetcher, logger: logger}
}

// ResolveNumericID returns the candidate's numeric id and whether one could
// be determined. A candidate with neither a numeric nor a canonical id, or
// whose profile fetch fails or still lacks the number, resolves to false; the
// caller records the row rather than aborting the batch.
func (r *IdentityResolver) ResolveNumericID(ctx context.Context, candidate *domain.Candidate) (int64, bool) {
	if candidate == nil {
		return 0, false
	}
	if candidate.HasNumericID() {
		return candidate.NumericID, true
	}
	if candidate.CanonicalID == "" || r.fetcher == nil {
		return 0, false
	}

	fetched, err := r.fetcher.FetchPlayerByID(ctx, candidate.CanonicalID)
	if err != nil {
		logging.Warn(logging.FromContext(ctx, r.logger), "profile fetch for numeric id failed",
			logging.FieldDuprID, candidate.CanonicalID,
			"error", err,
		)
		return 0, false
	}
	if !fetched.HasNumericID() {
		return 0, false
	}

	candidate.NumericID = fetched.NumericID
	return fetched.NumericID, true
}
