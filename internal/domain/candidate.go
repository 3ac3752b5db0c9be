package domain

import "strconv"

// NotRated is the display value used when the rating service reports no
// rating for a player.
const NotRated = "NR"

// Ratings carries a player's doubles/singles ratings and whether each is
// backed by verified match results.
type Ratings struct {
	Doubles         string `json:"doubles"`
	Singles         string `json:"singles"`
	DoublesVerified bool   `json:"doublesVerified"`
	SinglesVerified bool   `json:"singlesVerified"`
}

// Reliability renders a verified flag the way the views record it.
func Reliability(verified bool) string {
	if verified {
		return "Verified"
	}
	return "Unverified"
}

// Candidate is a single search hit from the rating service. Candidates are
// ephemeral: produced by one search, consumed while processing one row, and
// never persisted directly.
type Candidate struct {
	NumericID   int64   `json:"id"`
	CanonicalID string  `json:"duprId"`
	FullName    string  `json:"fullName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Ratings     Ratings `json:"ratings"`
	Age         int     `json:"age"`
	Gender      string  `json:"gender"`
}

// HasNumericID reports whether the search hit carried the internal numeric
// identifier required by the enrollment endpoint.
func (c Candidate) HasNumericID() bool {
	return c.NumericID != 0
}

// RecordID returns the identifier the views key on: the canonical id when
// present, otherwise the numeric id rendered as a string.
func (c Candidate) RecordID() string {
	if c.CanonicalID != "" {
		return c.CanonicalID
	}
	if c.NumericID != 0 {
		return strconv.FormatInt(c.NumericID, 10)
	}
	return ""
}

// DoublesOrNR returns the doubles rating, defaulting to NR when absent.
func (c Candidate) DoublesOrNR() string {
	if c.Ratings.Doubles == "" {
		return NotRated
	}
	return c.Ratings.Doubles
}

// SinglesOrNR returns the singles rating, defaulting to NR when absent.
func (c Candidate) SinglesOrNR() string {
	if c.Ratings.Singles == "" {
		return NotRated
	}
	return c.Ratings.Singles
}
