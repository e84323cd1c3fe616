package exam

import (
	"sort"

	"github.com/shiv90154/Lms-sub002/backend/models"
)

// RankAttempts assigns dense ranks to the completed attempts of one test:
// sorted by score descending, equal scores share a rank and the next
// distinct score gets rank+1. Ties are ordered by earliest submission so
// the listing is stable, but submission time never splits a rank.
//
// Every attempt also gets a TotalAttempts snapshot, so a result card can say
// "rank 3 of 120" as of its last recomputation. The slice is mutated and
// returned sorted.
func RankAttempts(attempts []models.TestAttempt) []models.TestAttempt {
	sort.SliceStable(attempts, func(i, j int) bool {
		if attempts[i].Score != attempts[j].Score {
			return attempts[i].Score > attempts[j].Score
		}
		ti, tj := attempts[i].SubmittedAt, attempts[j].SubmittedAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.Before(*tj)
	})

	rank := 0
	prevScore := 0.0
	for i := range attempts {
		if i == 0 || attempts[i].Score != prevScore {
			rank++
			prevScore = attempts[i].Score
		}
		attempts[i].Rank = rank
		attempts[i].TotalAttempts = len(attempts)
	}

	return attempts
}
