// Package estimator implements the randomized ranking estimator: many
// independent trials, each a random permutation corrected once against the
// observed outcomes, averaged into a consensus ranking.
package estimator

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-rankings/internal/domain"
)

// MaxWorkers bounds Options.Workers.
const MaxWorkers = 256

// Options controls one ranking computation.
type Options struct {
	// CutoffPeriod is the last period, inclusive, whose outcomes are applied.
	CutoffPeriod int `json:"cutoff_period" validate:"min=0"`

	// TrialCount is the number of independent trials.
	TrialCount int `json:"trial_count" validate:"min=1"`

	// Seed makes the computation reproducible. When nil a seed is drawn
	// from crypto/rand and reported in Result.Seed.
	Seed *uint64 `json:"random_seed,omitempty"`

	// Workers is the number of goroutines running trials; 0 means 1.
	Workers int `json:"workers" validate:"min=0,max=256"`
}

// DefaultOptions returns options for a sequential run of DefaultTrialCount
// trials over all periods up to cutoff.
func DefaultOptions(cutoff int) Options {
	return Options{
		CutoffPeriod: cutoff,
		TrialCount:   DefaultTrialCount,
		Workers:      1,
	}
}

// WithSeed returns a copy of o using seed.
func (o Options) WithSeed(seed uint64) Options {
	o.Seed = &seed
	return o
}

// Result carries a FinalRanking together with run statistics.
type Result struct {
	Ranking  domain.FinalRanking `json:"ranking"`
	Entities int                 `json:"entities"`
	Trials   int                 `json:"trials"`
	Cutoff   int                 `json:"cutoff_period"`
	Seed     uint64              `json:"seed"`
	Swaps    int64               `json:"swaps"`
	Duration time.Duration       `json:"duration"`
}

var (
	validate = newValidator()
	tracer   = otel.Tracer("ranking-estimator")
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ComputeRanking runs the full computation and returns only the ranking.
func ComputeRanking(ctx context.Context, outcomes domain.OutcomeTable, opts Options) (domain.FinalRanking, error) {
	res, err := Estimate(ctx, outcomes, opts)
	if err != nil {
		return nil, err
	}
	return res.Ranking, nil
}

// Estimate validates opts, extracts the entities, runs the trials, and
// formats the ranking. Any InputError or ConfigError aborts the whole
// computation; no partial ranking is returned.
func Estimate(ctx context.Context, outcomes domain.OutcomeTable, opts Options) (*Result, error) {
	ctx, span := tracer.Start(ctx, "estimator.Estimate",
		trace.WithAttributes(
			attribute.Int("ranking.outcomes", len(outcomes)),
			attribute.Int("ranking.cutoff_period", opts.CutoffPeriod),
			attribute.Int("ranking.trial_count", opts.TrialCount),
			attribute.Int("ranking.workers", opts.Workers),
		),
	)
	defer span.End()

	res, err := estimate(ctx, outcomes, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("ranking.entities", res.Entities),
		attribute.Int64("ranking.swaps", res.Swaps),
		attribute.Int64("ranking.latency_ms", res.Duration.Milliseconds()),
	)
	return res, nil
}

func estimate(ctx context.Context, outcomes domain.OutcomeTable, opts Options) (*Result, error) {
	start := time.Now()

	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if err := outcomes.Validate(); err != nil {
		return nil, err
	}

	seed, err := resolveSeed(opts.Seed)
	if err != nil {
		return nil, err
	}

	entities, err := domain.ExtractEntities(outcomes)
	if err != nil {
		return nil, err
	}
	roster, err := domain.NewRoster(entities)
	if err != nil {
		return nil, err
	}
	pass, err := NewCorrectionPass(outcomes, opts.CutoffPeriod)
	if err != nil {
		return nil, err
	}

	agg := Aggregator{TrialCount: opts.TrialCount, Workers: opts.Workers, Seed: seed}
	tally, err := agg.Run(ctx, NewTrialGenerator(roster), pass)
	if err != nil {
		return nil, fmt.Errorf("run trials: %w", err)
	}

	ranking, err := FormatRanking(entities, tally.Scores)
	if err != nil {
		return nil, err
	}

	return &Result{
		Ranking:  ranking,
		Entities: len(entities),
		Trials:   opts.TrialCount,
		Cutoff:   opts.CutoffPeriod,
		Seed:     seed,
		Swaps:    tally.Swaps,
		Duration: time.Since(start),
	}, nil
}

// ValidateOptions checks opts before any trial runs. Invalid trial counts
// and cutoffs are InputErrors; any other violation is a ConfigError.
func ValidateOptions(opts Options) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewConfigError("options", err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "trial_count":
		return domain.NewInputError(fe.Field(), fmt.Sprintf("must be at least 1, got %v", fe.Value()), nil)
	case "cutoff_period":
		return domain.NewInputError(fe.Field(), fmt.Sprintf("must be non-negative, got %v", fe.Value()), nil)
	default:
		return domain.NewConfigError(fe.Field(),
			fmt.Errorf("value %v violates %s=%s", fe.Value(), fe.Tag(), fe.Param()))
	}
}

func resolveSeed(seed *uint64) (uint64, error) {
	if seed != nil {
		return *seed, nil
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
