package estimator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-rankings/internal/domain"
)

// DefaultTrialCount is the number of trials run when none is configured.
const DefaultTrialCount = 1000

// Aggregator runs independent trials and averages each entity's final rank.
//
// Trials are spread over Workers goroutines. Each worker keeps a private
// per-entity sum and the sums are merged once the worker finishes, so no
// update is lost and the merged totals do not depend on scheduling. Each
// trial draws from its own stream derived from (Seed, trial index); for a
// fixed Seed the result is identical for every Workers value.
type Aggregator struct {
	// TrialCount is the number of trials; must be at least 1.
	TrialCount int
	// Workers is the number of goroutines running trials. Values below 1
	// run the trials sequentially on a single worker.
	Workers int
	// Seed selects the random streams of every trial.
	Seed uint64
}

// Tally is the result of an aggregation run.
type Tally struct {
	// Scores holds the mean rank per entity, aligned with the roster.
	Scores []float64
	// Swaps is the total number of corrections made across all trials.
	Swaps int64
}

// Run executes the trials. The first error from any trial cancels the
// remaining work and is returned without a partial tally. Cancellation of
// ctx is checked between trials.
func (ag Aggregator) Run(ctx context.Context, gen *TrialGenerator, pass *CorrectionPass) (*Tally, error) {
	if ag.TrialCount < 1 {
		return nil, domain.NewInputError("trial_count", "must be at least 1", nil)
	}

	n := gen.roster.Len()
	workers := min(max(ag.Workers, 1), ag.TrialCount)

	var (
		mu     sync.Mutex
		totals = make([]int64, n)
		swaps  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			sums := make([]int64, n)
			var localSwaps int64

			for i := w; i < ag.TrialCount; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}

				a, err := gen.Generate(trialRNG(ag.Seed, i))
				if err != nil {
					return err
				}
				s, err := pass.Apply(a)
				if err != nil {
					return err
				}
				localSwaps += int64(s)
				a.AddTo(sums)
			}

			mu.Lock()
			defer mu.Unlock()
			for j, v := range sums {
				totals[j] += v
			}
			swaps += localSwaps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	for j, sum := range totals {
		scores[j] = float64(sum) / float64(ag.TrialCount)
	}
	return &Tally{Scores: scores, Swaps: swaps}, nil
}
