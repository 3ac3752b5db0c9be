package dupr

import "time"

// Name identifies this provider in logs and metrics.
const Name = "dupr"

const (
	defaultBaseURL     = "https://api.dupr.gg"
	defaultHTTPTimeout = 15 * time.Second

	loginPath  = "/auth/v1.0/login/"
	searchPath = "/player/v1.0/search"
	playerPath = "/player/v1.0/"

	// Search is global by name, not location: the radius covers the planet
	// and the anchor point only satisfies the API's required fields.
	searchRadiusMeters = 16093400000
	searchAnchorLat    = 39.977763
	searchAnchorLng    = -105.1319296
	searchLimit        = 25

	// Cached tokens are refreshed this long before their exp claim.
	tokenRefreshSkew = time.Minute

	// alreadyInvitedMarker is the upstream's only idempotency signal for
	// member adds: a free-text body. Matched case-insensitively in
	// enrollAlreadyApplied; update there if the wording changes.
	alreadyInvitedMarker = "already invited"
)
