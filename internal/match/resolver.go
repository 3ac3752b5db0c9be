// Package match selects the best candidate from a player search and resolves
// the numeric id needed for enrollment.
package match

import (
	"strings"

	"dupr-sync-service/internal/domain"
)

// SelectBestMatch picks one candidate from a search result. An exact email
// match wins, then a digits-only phone match, then the first hit. Returns nil
// only for an empty candidate list.
func SelectBestMatch(candidates []domain.Candidate, email, phone string) *domain.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	if email != "" {
		for i := range candidates {
			if strings.EqualFold(candidates[i].Email, email) {
				return &candidates[i]
			}
		}
	}

	if normalized := normalizePhone(phone); normalized != "" {
		for i := range candidates {
			if normalizePhone(candidates[i].Phone) == normalized {
				return &candidates[i]
			}
		}
	}

	return &candidates[0]
}

// normalizePhone strips everything but digits so formatting differences
// ("(303) 555-0101" vs "3035550101") do not break the comparison.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
