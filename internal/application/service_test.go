package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahrav/go-rankings/infrastructure/middleware"
	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/ports"
)

type fakeSource struct {
	outcomes domain.OutcomeTable
	err      error
	years    []int
}

func (f *fakeSource) Outcomes(_ context.Context, year int) (domain.OutcomeTable, error) {
	f.years = append(f.years, year)
	return f.outcomes, f.err
}

type recordingMetrics struct {
	mu         sync.Mutex
	counters   map[string]float64
	statuses   []string
	gauges     map[string]float64
	histograms map[string]float64
	latencies  []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string]float64),
	}
}

func (m *recordingMetrics) RecordLatency(op string, _ time.Duration, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, op)
}

func (m *recordingMetrics) RecordCounter(metric string, v float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metric] += v
	if metric == middleware.MetricComputations {
		m.statuses = append(m.statuses, labels["status"])
	}
}

func (m *recordingMetrics) RecordGauge(metric string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metric] = v
}

func (m *recordingMetrics) RecordHistogram(metric string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[metric] = v
}

var _ ports.MetricsCollector = (*recordingMetrics)(nil)

var season = domain.OutcomeTable{
	{Period: 1, Winner: "Iowa State", Loser: "Kansas State"},
	{Period: 1, Winner: "Ohio State", Loser: "Texas"},
	{Period: 2, Winner: "Texas", Loser: "San Jose State"},
	{Period: 3, Winner: "Kansas State", Loser: "Texas"},
}

func ptr[T any](v T) *T { return &v }

func TestRankingService_Rank(t *testing.T) {
	src := &fakeSource{outcomes: season}
	metrics := newRecordingMetrics()
	svc := NewRankingService(src, RankingConfig{TrialCount: 200, Workers: 2}, metrics, zap.NewNop())

	res, err := svc.Rank(context.Background(), RankRequest{Year: 2025, Seed: ptr(uint64(7))})
	require.NoError(t, err)

	assert.Equal(t, []int{2025}, src.years)
	assert.Equal(t, 2025, res.Year)
	assert.Equal(t, len(season), res.Outcomes)
	assert.Equal(t, 3, res.Cutoff, "defaults to the last week in the table")
	assert.Equal(t, 200, res.Trials)
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, 5, res.Entities)
	require.Len(t, res.Ranking, 5)
	for i, s := range res.Ranking {
		assert.Equal(t, i+1, s.Position)
	}

	assert.Equal(t, []string{"success"}, metrics.statuses)
	assert.InDelta(t, 200, metrics.counters[middleware.MetricTrials], 1e-9)
	assert.InDelta(t, 5, metrics.gauges[middleware.MetricEntities], 1e-9)
	assert.Contains(t, metrics.histograms, middleware.MetricSwapsPerTrial)
	assert.Equal(t, []string{"compute_ranking"}, metrics.latencies)
}

func TestRankingService_RequestOverrides(t *testing.T) {
	svc := NewRankingService(&fakeSource{outcomes: season}, RankingConfig{TrialCount: 50, Workers: 1}, nil, nil)

	res, err := svc.Rank(context.Background(), RankRequest{
		Year:       2025,
		Week:       ptr(1),
		TrialCount: 80,
		Seed:       ptr(uint64(3)),
		Workers:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cutoff)
	assert.Equal(t, 80, res.Trials)

	same, err := svc.Rank(context.Background(), RankRequest{Year: 2025, Week: ptr(1), TrialCount: 80, Seed: ptr(uint64(3))})
	require.NoError(t, err)
	assert.Equal(t, res.Ranking, same.Ranking, "worker count must not change a seeded result")
}

func TestRankingService_DefaultSeedIsReproducible(t *testing.T) {
	svc := NewRankingService(&fakeSource{outcomes: season}, RankingConfig{TrialCount: 60, Seed: ptr(uint64(11)), Workers: 1}, nil, nil)

	a, err := svc.Rank(context.Background(), RankRequest{Year: 2025})
	require.NoError(t, err)
	b, err := svc.Rank(context.Background(), RankRequest{Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, uint64(11), a.Seed)
	assert.Equal(t, a.Ranking, b.Ranking)
}

func TestRankingService_Errors(t *testing.T) {
	sourceErr := errors.New("schedule unavailable")

	tests := []struct {
		name       string
		source     *fakeSource
		req        RankRequest
		wantErr    error
		wantStatus string
	}{
		{
			name:       "year before the first season",
			source:     &fakeSource{outcomes: season},
			req:        RankRequest{Year: 1800},
			wantErr:    domain.ErrInput,
			wantStatus: "input_error",
		},
		{
			name:       "source failure",
			source:     &fakeSource{err: sourceErr},
			req:        RankRequest{Year: 2025},
			wantErr:    sourceErr,
			wantStatus: "error",
		},
		{
			name:       "empty season",
			source:     &fakeSource{outcomes: domain.OutcomeTable{}},
			req:        RankRequest{Year: 2025},
			wantErr:    domain.ErrEmptyOutcomeTable,
			wantStatus: "input_error",
		},
		{
			name:       "negative week",
			source:     &fakeSource{outcomes: season},
			req:        RankRequest{Year: 2025, Week: ptr(-1)},
			wantErr:    domain.ErrInput,
			wantStatus: "input_error",
		},
		{
			name:       "too many workers",
			source:     &fakeSource{outcomes: season},
			req:        RankRequest{Year: 2025, Workers: 10_000},
			wantErr:    domain.ErrInvalidConfiguration,
			wantStatus: "config_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newRecordingMetrics()
			svc := NewRankingService(tt.source, RankingConfig{TrialCount: 10, Workers: 1}, metrics, nil)

			res, err := svc.Rank(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.wantStatus}, metrics.statuses)
			assert.Zero(t, metrics.counters[middleware.MetricTrials])
		})
	}
}

func TestRankingService_Canceled(t *testing.T) {
	metrics := newRecordingMetrics()
	svc := NewRankingService(&fakeSource{outcomes: season}, RankingConfig{TrialCount: 100_000, Workers: 1}, metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Rank(ctx, RankRequest{Year: 2025, Seed: ptr(uint64(1))})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"canceled"}, metrics.statuses)
}
