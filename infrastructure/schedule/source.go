package schedule

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/ports"
)

var _ ports.OutcomeSource = (*Source)(nil)

// SourceConfig controls where a Source reads schedules from.
type SourceConfig struct {
	// Local restricts the source to the on-disk cache; nothing is fetched.
	Local bool
	// URLTemplate is formatted with the season year.
	URLTemplate string
	// TableID is the id of the results table in the page.
	TableID string
}

// Source is the ports.OutcomeSource backed by the schedule page and a
// write-through CSV cache.
type Source struct {
	cfg     SourceConfig
	fetcher CoreFetcher
	cache   *FileCache
	logger  *zap.Logger
	// sf collapses concurrent loads of the same season into one fetch.
	sf singleflight.Group
}

// NewSource creates a Source. fetcher may be nil when cfg.Local is set.
func NewSource(cfg SourceConfig, fetcher CoreFetcher, cache *FileCache, logger *zap.Logger) *Source {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.TableID == "" {
		cfg.TableID = DefaultTableID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{cfg: cfg, fetcher: fetcher, cache: cache, logger: logger}
}

// Outcomes implements ports.OutcomeSource.
func (s *Source) Outcomes(ctx context.Context, year int) (domain.OutcomeTable, error) {
	table, err := s.Table(ctx, year)
	if err != nil {
		return nil, err
	}
	outcomes, err := table.Outcomes()
	if err != nil {
		return nil, fmt.Errorf("season %d: %w", year, err)
	}
	s.logger.Debug("derived outcomes",
		zap.Int("year", year),
		zap.Int("rows", len(table.Rows)),
		zap.Int("outcomes", len(outcomes)),
	)
	return outcomes, nil
}

// Table returns the cleaned schedule table for year. In local mode it is
// read from the cache; otherwise it is fetched, parsed, cleaned and
// written through to the cache before being returned. The table may be
// shared with concurrent callers and must not be modified.
func (s *Source) Table(ctx context.Context, year int) (*Table, error) {
	if s.cfg.Local {
		table, err := s.cache.Load(year)
		if err != nil {
			return nil, fmt.Errorf("load cached schedule: %w", err)
		}
		s.logger.Info("loaded schedule from cache",
			zap.Int("year", year),
			zap.String("path", s.cache.Path(year)),
			zap.Int("rows", len(table.Rows)),
		)
		return table, nil
	}

	// The shared load outlives any single caller; the fetcher's client
	// timeout bounds it instead.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(strconv.Itoa(year), func() (any, error) {
		return s.fetchAndStore(loadCtx, year)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch schedule: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("shared in-flight schedule fetch", zap.Int("year", year))
		}
		return res.Val.(*Table), nil
	}
}

func (s *Source) fetchAndStore(ctx context.Context, year int) (*Table, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("season %d: no fetcher configured and local mode is off", year)
	}

	url := fmt.Sprintf(s.cfg.URLTemplate, year)
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}

	table, err := ParseTable(bytes.NewReader(body), s.cfg.TableID)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %s: %w", url, err)
	}
	table.Clean()

	if err := s.cache.Save(year, table); err != nil {
		// The fetched table is still usable; only the offline copy failed.
		s.logger.Warn("failed to cache schedule", zap.Int("year", year), zap.Error(err))
	} else {
		s.logger.Info("cached schedule",
			zap.Int("year", year),
			zap.String("path", s.cache.Path(year)),
			zap.Int("rows", len(table.Rows)),
		)
	}
	return table, nil
}
