package domain

import "time"

// CurrentStateRecord is the latest known rating snapshot for one canonical
// player id. The current-state view holds exactly one record per id.
type CurrentStateRecord struct {
	CanonicalID        string `json:"duprId"`
	FullName           string `json:"fullName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	DoublesRating      string `json:"doublesRating"`
	DoublesReliability string `json:"doublesReliability"`
	SinglesRating      string `json:"singlesRating"`
	SinglesReliability string `json:"singlesReliability"`
}

// HistoryRecord is one append-only entry in the rating history view. Records
// are never updated or deduplicated; the full series is the audit trail.
type HistoryRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	CanonicalID   string    `json:"duprId"`
	DoublesRating string    `json:"doublesRating"`
	SinglesRating string    `json:"singlesRating"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Age           int       `json:"age"`
	Gender        string    `json:"gender"`
}

// NewCurrentStateRecord builds the current-state row for a selected candidate.
func NewCurrentStateRecord(c Candidate, fallbackName string) CurrentStateRecord {
	name := c.FullName
	if name == "" {
		name = fallbackName
	}
	return CurrentStateRecord{
		CanonicalID:        c.RecordID(),
		FullName:           name,
		Email:              c.Email,
		Phone:              c.Phone,
		DoublesRating:      c.DoublesOrNR(),
		DoublesReliability: Reliability(c.Ratings.DoublesVerified),
		SinglesRating:      c.SinglesOrNR(),
		SinglesReliability: Reliability(c.Ratings.SinglesVerified),
	}
}

// NewHistoryRecord builds the history entry for one successful match event.
func NewHistoryRecord(at time.Time, firstName, lastName string, c Candidate) HistoryRecord {
	return HistoryRecord{
		Timestamp:     at,
		FirstName:     firstName,
		LastName:      lastName,
		CanonicalID:   c.RecordID(),
		DoublesRating: c.DoublesOrNR(),
		SinglesRating: c.SinglesOrNR(),
		FullName:      c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
		Age:           c.Age,
		Gender:        c.Gender,
	}
}
