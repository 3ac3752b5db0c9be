package config

const (
	envCourtsideBaseURL    = "COURTSIDE_BASE_URL"
	envCourtsideAdminPath  = "COURTSIDE_ADMIN_PATH"
	envCourtsideFacility   = "COURTSIDE_FACILITY_ID"
	envCourtsideProvider   = "COURTSIDE_RATING_PROVIDER"
	envCourtsideSessionKey = "COURTSIDE_SESSION_COOKIE"

	defaultCourtsideAdminPath = "/admin"
)

// CourtsideConfig controls the supplementary booking-facility lookup. The
// lookup is read-only and entirely optional; an empty BaseURL disables it.
type CourtsideConfig struct {
	BaseURL        string
	AdminPath      string
	FacilityID     string
	RatingProvider string
	SessionCookie  string
}

// Enabled reports whether the booking-facility lookup is configured.
func (c CourtsideConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadCourtside() CourtsideConfig {
	return CourtsideConfig{
		BaseURL:        envOrDefault(envCourtsideBaseURL, ""),
		AdminPath:      envOrDefault(envCourtsideAdminPath, defaultCourtsideAdminPath),
		FacilityID:     envOrDefault(envCourtsideFacility, ""),
		RatingProvider: envOrDefault(envCourtsideProvider, "dupr"),
		SessionCookie:  envOrDefault(envCourtsideSessionKey, ""),
	}
}
