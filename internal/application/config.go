package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-rankings/infrastructure/schedule"
	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/estimator"
)

// FirstSeason is the earliest year with a college football schedule.
const FirstSeason = 1869

// Config is the complete runtime configuration for the rankings service
// and CLI. It is loaded from YAML, and flags may override individual
// fields before Validate is called.
type Config struct {
	// Season selects which schedule is ranked.
	Season SeasonConfig `yaml:"season"`
	// Ranking carries the estimator options.
	Ranking RankingConfig `yaml:"ranking"`
	// Source controls how the schedule is obtained.
	Source SourceConfig `yaml:"source"`
	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`
}

// SeasonConfig identifies the season and the last week to include.
type SeasonConfig struct {
	// Year is the season year as used in the schedule page URL.
	Year int `yaml:"year" validate:"min=1869,max=2100"`
	// Week is the inclusive cutoff week. When nil every played week is used.
	// Its range is checked by the estimator as cutoff_period.
	Week *int `yaml:"week"`
}

// RankingConfig holds the estimator options. Names match the estimator's
// configuration keys.
type RankingConfig struct {
	// TrialCount is the number of independent trials per computation.
	TrialCount int `yaml:"trial_count" validate:"min=1,max=10000000"`
	// Seed fixes the random stream. When nil every computation draws a
	// fresh seed.
	Seed *uint64 `yaml:"random_seed"`
	// Workers is the number of goroutines running trials.
	Workers int `yaml:"workers" validate:"min=0,max=256"`
}

// SourceConfig controls schedule acquisition and caching.
type SourceConfig struct {
	// Local reads only the cached CSV and never touches the network.
	Local bool `yaml:"local"`
	// DataDir holds the schedule_<year>.csv cache files.
	DataDir string `yaml:"data_dir" validate:"required"`
	// URLTemplate is the schedule page URL with a %d verb for the year.
	URLTemplate string `yaml:"url_template" validate:"required,urltemplate"`
	// TableID is the id attribute of the results table.
	TableID string `yaml:"table_id" validate:"required"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`
	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `yaml:"rate_limit" validate:"gt=0,max=100"`
	// Burst is the token bucket size.
	Burst int `yaml:"burst" validate:"min=1,max=100"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=1,max=300"`
	// Retry configures recovery from transient fetch failures.
	Retry RetryConfig `yaml:"retry"`
	// CircuitBreaker stops fetching while the site keeps failing.
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig configures the fetch circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive transient failures that
	// open the circuit; 0 disables the breaker.
	MaxFailures int `yaml:"max_failures" validate:"min=0,max=100"`
	// CooldownSeconds is how long the circuit stays open.
	CooldownSeconds int `yaml:"cooldown_seconds" validate:"min=0,max=3600"`
}

// RetryConfig specifies the backoff applied to transient fetch failures.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first; 0 disables retries.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`
	// InitialWait is the base delay in milliseconds.
	InitialWait int `yaml:"initial_wait_ms" validate:"min=0,max=60000"`
	// MaxWait caps the delay in milliseconds.
	MaxWait int `yaml:"max_wait_ms" validate:"min=0,max=300000,gtefield=InitialWait"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, for example ":8080".
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Season: SeasonConfig{Year: time.Now().Year()},
		Ranking: RankingConfig{
			TrialCount: estimator.DefaultTrialCount,
			Workers:    1,
		},
		Source: SourceConfig{
			DataDir:        "data",
			URLTemplate:    schedule.DefaultURLTemplate,
			TableID:        schedule.DefaultTableID,
			UserAgent:      schedule.DefaultUserAgent,
			RateLimit:      1,
			Burst:          1,
			TimeoutSeconds: 30,
			Retry: RetryConfig{
				MaxRetries:  3,
				InitialWait: 1000,
				MaxWait:     30000,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:     5,
				CooldownSeconds: 60,
			},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// EstimatorOptions converts the ranking section into estimator options
// with the given cutoff.
func (c RankingConfig) EstimatorOptions(cutoff int) estimator.Options {
	return estimator.Options{
		CutoffPeriod: cutoff,
		TrialCount:   c.TrialCount,
		Seed:         c.Seed,
		Workers:      c.Workers,
	}
}

// LoadConfig reads path and decodes it over DefaultConfig. Keys absent from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	// Clean the path to prevent directory traversal attacks.
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, domain.NewConfigError("file", fmt.Errorf("failed to read file: %w", err))
	}
	return parseConfig(data)
}

// LoadConfigFromReader is LoadConfig for an arbitrary reader.
func LoadConfigFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, domain.NewConfigError("file", fmt.Errorf("failed to read data: %w", err))
	}
	return parseConfig(data)
}

// parseConfig uses strict decoding so misspelled keys are reported instead
// of silently ignored.
func parseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, domain.NewConfigError("yaml", fmt.Errorf("YAML decode failed: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := registerCustomValidators(v); err != nil {
		panic(err)
	}
	return v
}

// Validate checks every field against its constraints. Failures are
// returned as a ConfigError keyed by the dotted YAML path of the first
// offending field, wrapping a ValidationError that lists all of them.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewConfigError("config", err)
	}

	verr := domain.NewValidationError("config")
	for _, fe := range fieldErrs {
		verr.AddError(fmt.Sprintf("%s: value %v violates %s", configKey(fe), fe.Value(), describeTag(fe)))
	}
	return domain.NewConfigError(configKey(fieldErrs[0]), verr)
}

func configKey(fe validator.FieldError) string {
	return strings.TrimPrefix(fe.Namespace(), "Config.")
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
