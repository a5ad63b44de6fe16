// Package config holds the settings of a scrape run.
//
// A Config is built from a named preset, then overridden by environment
// variables (optionally loaded from a .env file) and finally by command-line
// flags. The orchestrator receives it explicitly, so several competitions can
// be scraped side by side without sharing state.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL           = "https://resultados.fpf.pt"
	DefaultCacheDir          = "cache"
	DefaultRoundPause        = 1 * time.Second
	DefaultRateLimitCooldown = 60 * time.Second
	DefaultMaxAttempts       = 5
	DefaultTimeout           = 30 * time.Second
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	DefaultCrestsDir    = "img/crests"
	DefaultCrestsOutput = "data/crests.json"
)

// Config describes one competition scrape.
type Config struct {
	Name          string // used in cache keys and the SQLite export
	BaseURL       string
	CompetitionID int
	SeasonID      int
	Series        string // optional sub-division label, e.g. "SÉRIE B"

	OutputPath string
	SQLitePath string

	CacheDir string
	UseCache bool
	CacheTTL time.Duration // 0 keeps cached pages forever

	RoundPause        time.Duration
	RateLimitCooldown time.Duration
	MaxAttempts       int
	Timeout           time.Duration
	UserAgent         string
}

// CrestConfig describes a crest manifest build.
type CrestConfig struct {
	Dir    string
	Output string
}

var presets = map[string]Config{
	"seniores": {
		Name:          "seniores",
		CompetitionID: 28206,
		SeasonID:      105,
		OutputPath:    "data/seniores.json",
	},
	"infantis-c": {
		Name:          "infantis-c",
		CompetitionID: 28724,
		SeasonID:      105,
		Series:        "SÉRIE B",
		OutputPath:    "data/infantis-c.json",
	},
}

// Default returns a config with every tunable set to its default value.
func Default() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		CacheDir:          DefaultCacheDir,
		RoundPause:        DefaultRoundPause,
		RateLimitCooldown: DefaultRateLimitCooldown,
		MaxAttempts:       DefaultMaxAttempts,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
	}
}

// DefaultCrests returns the crest manifest defaults.
func DefaultCrests() CrestConfig {
	return CrestConfig{
		Dir:    DefaultCrestsDir,
		Output: DefaultCrestsOutput,
	}
}

// Preset returns the defaults merged with a named competition preset.
func Preset(name string) (Config, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, fmt.Errorf("unknown competition %q (known: %s)", name, strings.Join(PresetNames(), ", "))
	}
	cfg := Default()
	cfg.Name = p.Name
	cfg.CompetitionID = p.CompetitionID
	cfg.SeasonID = p.SeasonID
	cfg.Series = p.Series
	cfg.OutputPath = p.OutputPath
	return cfg, nil
}

// PresetNames lists the known competition presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from FPF_* environment variables.
func (c *Config) ApplyEnv() {
	c.BaseURL = envOrDefault("FPF_BASE_URL", c.BaseURL)
	c.CacheDir = envOrDefault("FPF_CACHE_DIR", c.CacheDir)
	c.UseCache = boolEnvOrDefault("FPF_USE_CACHE", c.UseCache)
	c.CacheTTL = durationEnvOrDefault("FPF_CACHE_TTL", c.CacheTTL)
	c.RoundPause = durationEnvOrDefault("FPF_ROUND_PAUSE", c.RoundPause)
	c.RateLimitCooldown = durationEnvOrDefault("FPF_RATE_LIMIT_COOLDOWN", c.RateLimitCooldown)
	c.MaxAttempts = intEnvOrDefault("FPF_MAX_ATTEMPTS", c.MaxAttempts)
	c.Timeout = durationEnvOrDefault("FPF_TIMEOUT", c.Timeout)
	c.UserAgent = envOrDefault("FPF_USER_AGENT", c.UserAgent)
	c.SQLitePath = envOrDefault("FPF_SQLITE_PATH", c.SQLitePath)
}

// ApplyEnv overrides crest settings from FPF_CRESTS_* environment variables.
func (c *CrestConfig) ApplyEnv() {
	c.Dir = envOrDefault("FPF_CRESTS_DIR", c.Dir)
	c.Output = envOrDefault("FPF_CRESTS_OUTPUT", c.Output)
}

// Validate reports every setting that makes a run impossible.
func (c Config) Validate() error {
	var errs []error
	if c.CompetitionID <= 0 {
		errs = append(errs, errors.New("competition id must be positive"))
	}
	if c.SeasonID <= 0 {
		errs = append(errs, errors.New("season id must be positive"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid base url %q", c.BaseURL))
	}
	if c.UseCache && c.CacheDir == "" {
		errs = append(errs, errors.New("cache directory is required when caching is enabled"))
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	return errors.Join(errs...)
}

// CompetitionURL is the competition details page that links every round.
func (c Config) CompetitionURL() string {
	return fmt.Sprintf("%s/Competition/Details?competitionId=%d&seasonId=%d",
		strings.TrimRight(c.BaseURL, "/"), c.CompetitionID, c.SeasonID)
}

// FixtureURL is the combined classification and matches fragment of a round.
func (c Config) FixtureURL(fixtureID string) string {
	return fmt.Sprintf("%s/Competition/GetClassificationAndMatchesByFixture?fixtureId=%s",
		strings.TrimRight(c.BaseURL, "/"), url.QueryEscape(fixtureID))
}

// Key prefixes cache keys so competitions sharing a cache directory do not
// collide.
func (c Config) Key() string {
	if c.Name != "" {
		return strings.ReplaceAll(c.Name, "-", "_")
	}
	return fmt.Sprintf("competition_%d_%d", c.CompetitionID, c.SeasonID)
}

// MainPageKey is the cache key of the competition details page.
func (c Config) MainPageKey() string {
	return c.Key() + "_main"
}

// FixtureKey is the cache key of one round fragment.
func (c Config) FixtureKey(fixtureID string) string {
	return c.Key() + "_fixture_" + fixtureID
}
