package estimator

import (
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-rankings/internal/domain"
)

// closestEntity returns the candidate whose case-folded name is nearest to
// name by edit distance, or "" when nothing is reasonably close.
func closestEntity(name domain.Entity, candidates []domain.Entity) domain.Entity {
	// A Caser is stateful and must not be shared between workers.
	fold := cases.Fold()
	target := fold.String(string(name))
	length := len([]rune(target))
	limit := max(1, length/2)

	var (
		best     domain.Entity
		bestDist = limit + 1
	)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, fold.String(string(c)))
		if d < bestDist && d < length {
			best, bestDist = c, d
		}
	}
	return best
}

// unknownEntityError reports an entity missing from the assignment along
// with the closest known spelling.
func unknownEntityError(name domain.Entity, known []domain.Entity) error {
	err := domain.NewInputError(string(name), "not present in rank assignment", domain.ErrUnknownEntity)
	err.Suggestion = string(closestEntity(name, known))
	return err
}
