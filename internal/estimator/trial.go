package estimator

import (
	"math/rand/v2"

	"github.com/ahrav/go-rankings/internal/domain"
)

// TrialGenerator draws the initial RankAssignment of a trial: a uniformly
// random permutation of [1, N] laid over the roster in extractor order.
type TrialGenerator struct {
	roster *domain.Roster
}

// NewTrialGenerator creates a generator for the given roster.
func NewTrialGenerator(roster *domain.Roster) *TrialGenerator {
	return &TrialGenerator{roster: roster}
}

// Generate consumes fresh randomness from rng and returns a new assignment.
// The generator itself holds no random state, so the same rng state always
// yields the same assignment.
func (g *TrialGenerator) Generate(rng *rand.Rand) (*domain.RankAssignment, error) {
	ranks := rng.Perm(g.roster.Len())
	for i := range ranks {
		ranks[i]++
	}
	return g.roster.Assign(ranks)
}

// trialRNG returns the generator for trial i of a run seeded with seed.
// Deriving the stream from (seed, i) keeps a run reproducible no matter
// which worker executes which trial.
func trialRNG(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(i)))
}
