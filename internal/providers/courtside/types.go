package courtside

type currentRating struct {
	Single float64 `json:"single"`
	Double float64 `json:"double"`
}

type userRecord struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	CurrentRating currentRating `json:"current_rating"`
}

type usersResponse struct {
	Users []userRecord `json:"users"`
}

// UserRating is the read-only rating snapshot the booking facility holds for
// a member. Advisory only; never part of match or enrollment decisions.
type UserRating struct {
	ID      int64
	Name    string
	Email   string
	Singles float64
	Doubles float64
}
