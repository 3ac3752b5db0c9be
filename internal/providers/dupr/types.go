package dupr

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Result struct {
		AccessToken string `json:"accessToken"`
	} `json:"result"`
}

type searchFilter struct {
	RadiusInMeters int64   `json:"radiusInMeters"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
}

type searchAddress struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchRequest struct {
	Filter                  searchFilter  `json:"filter"`
	IncludeUnclaimedPlayers bool          `json:"includeUnclaimedPlayers"`
	Address                 searchAddress `json:"address"`
	Offset                  int           `json:"offset"`
	Limit                   int           `json:"limit"`
	Query                   string        `json:"query"`
}

type hitRatings struct {
	Doubles         string `json:"doubles"`
	Singles         string `json:"singles"`
	DoublesVerified bool   `json:"doublesVerified"`
	SinglesVerified bool   `json:"singlesVerified"`
}

// playerHit is one search result. The numeric id is not always present; the
// canonical duprId usually is, but neither is guaranteed.
type playerHit struct {
	ID       int64      `json:"id"`
	DuprID   string     `json:"duprId"`
	FullName string     `json:"fullName"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	Age      int        `json:"age"`
	Gender   string     `json:"gender"`
	Ratings  hitRatings `json:"ratings"`
}

type searchResponse struct {
	Result struct {
		Hits []playerHit `json:"hits"`
	} `json:"result"`
}

type playerResponse struct {
	Result playerHit `json:"result"`
}

type enrollRequest struct {
	UserIDs []int64 `json:"userIds"`
}

// MemberInvite is one entry for the bulk email-based add endpoint.
type MemberInvite struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type enrollByEmailRequest struct {
	AddMembers []MemberInvite `json:"addMembers"`
}
