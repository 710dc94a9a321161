package estimator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ahrav/go-rankings/internal/domain"
)

// FormatRanking orders entities by ascending mean rank and assigns 1-based
// positions. Equal scores fall back to alphabetical order of the entity
// identifier so the output is deterministic.
func FormatRanking(entities []domain.Entity, scores []float64) (domain.FinalRanking, error) {
	if len(entities) != len(scores) {
		return nil, fmt.Errorf("format ranking: %d entities but %d scores", len(entities), len(scores))
	}

	ranking := make(domain.FinalRanking, len(entities))
	for i, e := range entities {
		ranking[i] = domain.Standing{Entity: e, Score: scores[i]}
	}
	slices.SortStableFunc(ranking, func(a, b domain.Standing) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity, b.Entity)
	})
	for i := range ranking {
		ranking[i].Position = i + 1
	}
	return ranking, nil
}
