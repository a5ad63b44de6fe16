package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/fpf-results/internal/config"
	"github.com/pfrederiksen/fpf-results/internal/logger"
	"github.com/pfrederiksen/fpf-results/internal/pagecache"
	"github.com/pfrederiksen/fpf-results/internal/results"
)

var (
	// ErrMainPage means the competition details page could not be fetched.
	ErrMainPage = errors.New("competition page unavailable")
	// ErrNoFixtures means the details page linked no rounds.
	ErrNoFixtures = errors.New("no fixture ids found")
)

// PageFetcher retrieves the text of a page, possibly from a cache.
type PageFetcher interface {
	Get(ctx context.Context, url, cacheKey string) (string, error)
}

// Scraper fetches and parses one competition.
type Scraper struct {
	cfg     config.Config
	fetcher PageFetcher
	metrics *logger.Metrics
}

// New creates a Scraper for cfg using fetcher for every request.
func New(cfg config.Config, fetcher PageFetcher) *Scraper {
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: logger.DefaultMetrics(),
	}
}

// SetMetrics replaces the metrics tracker.
func (s *Scraper) SetMetrics(m *logger.Metrics) {
	s.metrics = m
}

// FetchFixtureIDs fetches the competition page and discovers its rounds.
// With a series configured only that series' rounds are returned.
func (s *Scraper) FetchFixtureIDs(ctx context.Context) ([]string, error) {
	page, err := s.fetcher.Get(ctx, s.cfg.CompetitionURL(), s.cfg.MainPageKey())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMainPage, err)
	}

	if s.cfg.Series != "" {
		series, ok := FindSeriesFixtureIDs(page, s.cfg.Series)
		if !ok {
			return nil, fmt.Errorf("%w for series %q", ErrNoFixtures, s.cfg.Series)
		}
		logger.Info("Found series", logger.Fields{
			"series":   s.cfg.Series,
			"serie_id": series.ID,
			"rounds":   len(series.FixtureIDs),
		})
		return series.FixtureIDs, nil
	}

	ids := FindFixtureIDs(page)
	if len(ids) == 0 {
		return nil, ErrNoFixtures
	}
	logger.Info("Found rounds", logger.Fields{"rounds": len(ids)})
	return ids, nil
}

// Run scrapes every round of the competition. Rounds whose fragment cannot
// be fetched are skipped; failing to discover rounds aborts the run.
func (s *Scraper) Run(ctx context.Context) (*results.Competition, error) {
	ids, err := s.FetchFixtureIDs(ctx)
	if err != nil {
		return nil, err
	}

	competition := results.NewCompetition()
	for i, id := range ids {
		if i > 0 {
			if err := pause(ctx, s.cfg.RoundPause); err != nil {
				return nil, err
			}
		}

		round, err := s.FetchRound(ctx, i+1, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.metrics.IncrCounter("rounds.skipped")
			logger.Warn("Skipping round", logger.Fields{
				"round":      i + 1,
				"fixture_id": id,
				"error":      err.Error(),
			})
			continue
		}
		competition.Add(round)
	}

	return competition, nil
}

// FetchRound fetches and parses one round fragment.
func (s *Scraper) FetchRound(ctx context.Context, index int, fixtureID string) (results.Round, error) {
	logger.Info("Processing round", logger.Fields{"round": index, "fixture_id": fixtureID})

	fragment, err := s.fetcher.Get(ctx, s.cfg.FixtureURL(fixtureID), s.cfg.FixtureKey(fixtureID))
	if err != nil {
		return results.Round{}, fmt.Errorf("fetching round %d: %w", index, err)
	}

	parsed, err := ParseFragment(fragment)
	if err != nil {
		return results.Round{}, fmt.Errorf("parsing round %d: %w", index, err)
	}

	for _, d := range parsed.Discarded {
		logger.Debug("Discarded classification row", logger.Fields{
			"fixture_id": fixtureID,
			"row":        d.Index,
			"reason":     d.Reason,
			"cells":      d.Cells,
		})
	}
	s.metrics.AddCounter("rows.discarded", int64(len(parsed.Discarded)))
	s.metrics.IncrCounter("rounds.parsed")

	return results.NewRound(index, fixtureID, parsed.Matches, parsed.Standings), nil
}

// ProbeResult summarises a single fetched fragment.
type ProbeResult struct {
	FixtureID string `json:"fixture_id"`
	URL       string `json:"url"`
	Bytes     int    `json:"bytes"`
	Matches   int    `json:"matches"`
	Standings int    `json:"standings"`
	Discarded int    `json:"discarded"`
	CachePath string `json:"cache_path"`
}

// Probe fetches one fixture fragment, stores it in the cache directory for
// inspection and reports what the parsers make of it.
func (s *Scraper) Probe(ctx context.Context, fixtureID string) (*ProbeResult, error) {
	url := s.cfg.FixtureURL(fixtureID)
	key := s.cfg.FixtureKey(fixtureID)

	fragment, err := s.fetcher.Get(ctx, url, key)
	if err != nil {
		return nil, fmt.Errorf("fetching fixture %s: %w", fixtureID, err)
	}

	cache := pagecache.New(s.cfg.CacheDir, 0)
	if err := cache.Set(key, fragment); err != nil {
		return nil, err
	}

	parsed, err := ParseFragment(fragment)
	if err != nil {
		return nil, err
	}

	return &ProbeResult{
		FixtureID: fixtureID,
		URL:       url,
		Bytes:     len(fragment),
		Matches:   len(parsed.Matches),
		Standings: len(parsed.Standings),
		Discarded: len(parsed.Discarded),
		CachePath: cache.Path(key),
	}, nil
}

// pause waits d between round requests to go easy on the site.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
