package estimator

import (
	"fmt"
	"slices"

	"github.com/ahrav/go-rankings/internal/domain"
)

// CorrectionPass applies the outcome-driven swap rule to one trial.
//
// The pass visits every outcome with Period <= cutoff exactly once, in
// nondecreasing period order with table order preserved inside a period.
// Whenever the winner currently holds a worse (numerically greater) rank
// than the loser the two ranks are exchanged. The pass is not iterated to a
// fixed point, so the result depends on both outcome order and the
// starting permutation.
//
// A CorrectionPass is immutable after construction and safe to share
// across goroutines.
type CorrectionPass struct {
	cutoff int
	steps  []domain.Outcome
}

// NewCorrectionPass selects and orders the outcomes visible at cutoff.
// A negative cutoff is an InputError.
func NewCorrectionPass(table domain.OutcomeTable, cutoff int) (*CorrectionPass, error) {
	if cutoff < 0 {
		return nil, domain.NewInputError("cutoff_period",
			fmt.Sprintf("must be non-negative, got %d", cutoff), nil)
	}

	steps := make([]domain.Outcome, 0, len(table))
	for _, o := range table {
		if o.Period <= cutoff {
			steps = append(steps, o)
		}
	}
	slices.SortStableFunc(steps, func(a, b domain.Outcome) int { return a.Period - b.Period })

	return &CorrectionPass{cutoff: cutoff, steps: steps}, nil
}

// Cutoff returns the inclusive period limit.
func (p *CorrectionPass) Cutoff() int { return p.cutoff }

// Steps returns the number of outcomes the pass visits.
func (p *CorrectionPass) Steps() int { return len(p.steps) }

// Apply runs the pass over a in place and returns the number of swaps made.
// If an outcome names an entity that a does not contain, Apply stops and
// returns an InputError; a may then be partially corrected and must be
// discarded.
func (p *CorrectionPass) Apply(a *domain.RankAssignment) (int, error) {
	swaps := 0
	for _, o := range p.steps {
		winnerRank, ok := a.Rank(o.Winner)
		if !ok {
			return swaps, unknownEntityError(o.Winner, a.Entities())
		}
		loserRank, ok := a.Rank(o.Loser)
		if !ok {
			return swaps, unknownEntityError(o.Loser, a.Entities())
		}
		if winnerRank <= loserRank {
			continue
		}
		if err := a.Swap(o.Winner, o.Loser); err != nil {
			return swaps, err
		}
		swaps++
	}
	return swaps, nil
}
