package application

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rankings/infrastructure/schedule"
	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/estimator"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, estimator.DefaultTrialCount, cfg.Ranking.TrialCount)
	assert.Equal(t, 1, cfg.Ranking.Workers)
	assert.Nil(t, cfg.Ranking.Seed)
	assert.Nil(t, cfg.Season.Week)
	assert.False(t, cfg.Source.Local)
	assert.Equal(t, "data", cfg.Source.DataDir)
	assert.Equal(t, schedule.DefaultURLTemplate, cfg.Source.URLTemplate)
	assert.InDelta(t, 1.0, cfg.Source.RateLimit, 1e-9)
	assert.Equal(t, 3, cfg.Source.Retry.MaxRetries)
}

func TestLoadConfigFromReader(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantKey string
		verify  func(t *testing.T, cfg Config)
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			verify: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultConfig().Source, cfg.Source)
			},
		},
		{
			name: "partial override",
			yaml: `
season:
  year: 2024
  week: 9
ranking:
  trial_count: 5000
  random_seed: 42
  workers: 8
source:
  local: true
  data_dir: /var/lib/rankings
`,
			verify: func(t *testing.T, cfg Config) {
				assert.Equal(t, 2024, cfg.Season.Year)
				require.NotNil(t, cfg.Season.Week)
				assert.Equal(t, 9, *cfg.Season.Week)
				assert.Equal(t, 5000, cfg.Ranking.TrialCount)
				require.NotNil(t, cfg.Ranking.Seed)
				assert.Equal(t, uint64(42), *cfg.Ranking.Seed)
				assert.Equal(t, 8, cfg.Ranking.Workers)
				assert.True(t, cfg.Source.Local)
				assert.Equal(t, "/var/lib/rankings", cfg.Source.DataDir)
				assert.Equal(t, 3, cfg.Source.Retry.MaxRetries, "untouched nested defaults survive")
			},
		},
		{
			name: "week zero is a valid cutoff",
			yaml: "season:\n  week: 0\n",
			verify: func(t *testing.T, cfg Config) {
				require.NotNil(t, cfg.Season.Week)
				assert.Equal(t, 0, *cfg.Season.Week)
			},
		},
		{
			name: "negative week is left to the estimator",
			yaml: "season:\n  week: -1\n",
			verify: func(t *testing.T, cfg Config) {
				require.NotNil(t, cfg.Season.Week)
				assert.Equal(t, -1, *cfg.Season.Week)
			},
		},
		{
			name:    "unknown key",
			yaml:    "ranking:\n  trials: 10\n",
			wantKey: "yaml",
		},
		{
			name:    "wrong type",
			yaml:    "ranking:\n  trial_count: many\n",
			wantKey: "yaml",
		},
		{
			name:    "zero trial count",
			yaml:    "ranking:\n  trial_count: 0\n",
			wantKey: "ranking.trial_count",
		},
		{
			name:    "too many workers",
			yaml:    "ranking:\n  workers: 1000\n",
			wantKey: "ranking.workers",
		},
		{
			name:    "year before the first season",
			yaml:    "season:\n  year: 1850\n",
			wantKey: "season.year",
		},
		{
			name:    "url template without year verb",
			yaml:    "source:\n  url_template: https://example.com/schedule.html\n",
			wantKey: "source.url_template",
		},
		{
			name:    "url template with relative url",
			yaml:    "source:\n  url_template: /cfb/years/%d-schedule.html\n",
			wantKey: "source.url_template",
		},
		{
			name:    "non-positive rate limit",
			yaml:    "source:\n  rate_limit: 0\n",
			wantKey: "source.rate_limit",
		},
		{
			name:    "max wait below initial wait",
			yaml:    "source:\n  retry:\n    initial_wait_ms: 5000\n    max_wait_ms: 100\n",
			wantKey: "source.retry.max_wait_ms",
		},
		{
			name:    "bad listen address",
			yaml:    "server:\n  addr: localhost\n",
			wantKey: "server.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigFromReader(strings.NewReader(tt.yaml))
			if tt.wantKey != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				var ce *domain.ConfigError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, tt.wantKey, ce.Key)
				return
			}
			require.NoError(t, err)
			if tt.verify != nil {
				tt.verify(t, cfg)
			}
		})
	}
}

func TestConfig_ValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ranking.TrialCount = 0
	cfg.Ranking.Workers = -2
	cfg.Source.DataDir = ""

	err := cfg.Validate()
	var ce *domain.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "ranking.trial_count", ce.Key)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 3)
	assert.Contains(t, verr.Errors[2], "source.data_dir")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("season:\n  year: 2023\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2023, cfg.Season.Year)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRankingConfig_EstimatorOptions(t *testing.T) {
	seed := uint64(9)
	rc := RankingConfig{TrialCount: 250, Seed: &seed, Workers: 4}

	opts := rc.EstimatorOptions(6)
	assert.Equal(t, 6, opts.CutoffPeriod)
	assert.Equal(t, 250, opts.TrialCount)
	assert.Equal(t, 4, opts.Workers)
	require.NotNil(t, opts.Seed)
	assert.Equal(t, seed, *opts.Seed)
	assert.NoError(t, estimator.ValidateOptions(opts))
}
