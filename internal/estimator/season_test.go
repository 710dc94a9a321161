package estimator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rankings/internal/testutils"
)

// TestComputeRanking_SyntheticSeason checks that a full synthetic season
// ranks the strongest teams well ahead of the weakest.
func TestComputeRanking_SyntheticSeason(t *testing.T) {
	season := testutils.GenerateSeason(2025, 24, 12, 17)

	opts := Options{CutoffPeriod: 12, TrialCount: 500, Workers: 4}.WithSeed(3)
	ranking, err := ComputeRanking(context.Background(), season.Outcomes(), opts)
	require.NoError(t, err)
	require.Len(t, ranking, 24)

	meanPosition := func(from, to int) float64 {
		sum := 0
		for _, ts := range season.Teams[from:to] {
			s, ok := ranking.Lookup(ts.Team)
			require.True(t, ok, "%s missing from ranking", ts.Team)
			sum += s.Position
		}
		return float64(sum) / float64(to-from)
	}

	strongest, weakest := meanPosition(0, 6), meanPosition(18, 24)
	assert.Less(t, strongest, weakest, "strongest six average %.1f, weakest six %.1f", strongest, weakest)
}

// BenchmarkComputeRanking measures a season-sized computation across
// worker counts.
func BenchmarkComputeRanking(b *testing.B) {
	outcomes := testutils.GenerateSeason(2025, 134, 14, 1).Outcomes()

	for _, workers := range []int{1, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			opts := Options{CutoffPeriod: 14, TrialCount: 200, Workers: workers}.WithSeed(1)
			b.ResetTimer()
			for b.Loop() {
				if _, err := ComputeRanking(context.Background(), outcomes, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
