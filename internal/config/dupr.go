package config

const (
	envDuprBaseURL  = "DUPR_BASE_URL"
	envDuprUsername = "DUPR_USERNAME"
	envDuprPassword = "DUPR_PASSWORD"
	envDuprClubID   = "DUPR_CLUB_ID"

	defaultDuprBaseURL = "https://api.dupr.gg"
)

// DuprConfig controls how we talk to the DUPR API.
type DuprConfig struct {
	BaseURL  string
	Username string
	Password string
	ClubID   string
}

func loadDupr() DuprConfig {
	return DuprConfig{
		BaseURL:  envOrDefault(envDuprBaseURL, defaultDuprBaseURL),
		Username: envOrDefault(envDuprUsername, ""),
		Password: envOrDefault(envDuprPassword, ""),
		ClubID:   envOrDefault(envDuprClubID, ""),
	}
}
