package dupr

import "dupr-sync-service/internal/domain"

func mapHit(hit playerHit) domain.Candidate {
	return domain.Candidate{
		NumericID:   hit.ID,
		CanonicalID: hit.DuprID,
		FullName:    hit.FullName,
		Email:       hit.Email,
		Phone:       hit.Phone,
		Age:         hit.Age,
		Gender:      hit.Gender,
		Ratings: domain.Ratings{
			Doubles:         hit.Ratings.Doubles,
			Singles:         hit.Ratings.Singles,
			DoublesVerified: hit.Ratings.DoublesVerified,
			SinglesVerified: hit.Ratings.SinglesVerified,
		},
	}
}

func mapHits(hits []playerHit) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, mapHit(hit))
	}
	return candidates
}
