// Package application orchestrates ranking computations: it loads
// configuration, obtains a season's outcomes and runs the estimator.
package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ahrav/go-rankings/infrastructure/middleware"
	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/estimator"
	"github.com/ahrav/go-rankings/internal/ports"
)

// RankRequest selects a season and overrides ranking options. Zero values
// fall back to the service defaults.
type RankRequest struct {
	Year int
	// Week is the inclusive cutoff; nil ranks every week in the table.
	Week       *int
	TrialCount int
	Seed       *uint64
	Workers    int
}

// RankResult is an estimator result annotated with the season it covers.
type RankResult struct {
	Year     int `json:"year"`
	Outcomes int `json:"outcomes"`
	estimator.Result
}

// RankingService loads outcomes and computes rankings. It is safe for
// concurrent use.
type RankingService struct {
	source   ports.OutcomeSource
	defaults RankingConfig
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewRankingService creates a RankingService. Nil metrics and logger are
// replaced with no-op implementations.
func NewRankingService(
	source ports.OutcomeSource,
	defaults RankingConfig,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *RankingService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{source: source, defaults: defaults, metrics: metrics, logger: logger}
}

// Rank computes the consensus ranking for req.
func (s *RankingService) Rank(ctx context.Context, req RankRequest) (*RankResult, error) {
	start := time.Now()
	res, err := s.rank(ctx, req)

	status := statusOf(err)
	labels := map[string]string{"status": status}
	s.metrics.RecordLatency("compute_ranking", time.Since(start), labels)
	s.metrics.RecordCounter(middleware.MetricComputations, 1, labels)

	if err != nil {
		s.logger.Warn("ranking failed",
			zap.Int("year", req.Year),
			zap.String("status", status),
			zap.Error(err),
		)
		return nil, err
	}

	season := strconv.Itoa(res.Year)
	s.metrics.RecordCounter(middleware.MetricTrials, float64(res.Trials), labels)
	s.metrics.RecordGauge(middleware.MetricEntities, float64(res.Entities), map[string]string{"season": season})
	s.metrics.RecordHistogram(middleware.MetricSwapsPerTrial, float64(res.Swaps)/float64(res.Trials), nil)

	s.logger.Info("computed ranking",
		zap.Int("year", res.Year),
		zap.Int("cutoff_period", res.Cutoff),
		zap.Int("entities", res.Entities),
		zap.Int("trials", res.Trials),
		zap.Uint64("seed", res.Seed),
		zap.Int64("swaps", res.Swaps),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *RankingService) rank(ctx context.Context, req RankRequest) (*RankResult, error) {
	if req.Year < FirstSeason {
		return nil, domain.NewInputError("year", fmt.Sprintf("must be at least %d, got %d", FirstSeason, req.Year), nil)
	}

	outcomes, err := s.source.Outcomes(ctx, req.Year)
	if err != nil {
		return nil, fmt.Errorf("load season %d: %w", req.Year, err)
	}

	opts := s.options(req, outcomes)
	res, err := estimator.Estimate(ctx, outcomes, opts)
	if err != nil {
		return nil, err
	}
	return &RankResult{Year: req.Year, Outcomes: len(outcomes), Result: *res}, nil
}

// options merges req over the service defaults. Without an explicit week
// the cutoff covers the whole table.
func (s *RankingService) options(req RankRequest, outcomes domain.OutcomeTable) estimator.Options {
	cutoff := max(outcomes.MaxPeriod(), 0)
	if req.Week != nil {
		cutoff = *req.Week
	}

	opts := s.defaults.EstimatorOptions(cutoff)
	if req.TrialCount != 0 {
		opts.TrialCount = req.TrialCount
	}
	if req.Seed != nil {
		opts.Seed = req.Seed
	}
	if req.Workers != 0 {
		opts.Workers = req.Workers
	}
	return opts
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInput):
		return "input_error"
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return "config_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
