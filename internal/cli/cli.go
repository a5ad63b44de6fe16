package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/fpf-results/internal/config"
	"github.com/pfrederiksen/fpf-results/internal/crests"
	"github.com/pfrederiksen/fpf-results/internal/fetcher"
	"github.com/pfrederiksen/fpf-results/internal/logger"
	"github.com/pfrederiksen/fpf-results/internal/scraper"
	"github.com/pfrederiksen/fpf-results/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagFormat   string
	flagVerbose  bool
	flagLogLevel string
	flagEnvFile  string

	flagCompetition   string
	flagCompetitionID int
	flagSeasonID      int
	flagSeries        string
	flagOutput        string
	flagCache         bool
	flagCacheDir      string
	flagCacheTTL      time.Duration
	flagRoundPause    time.Duration
	flagSQLite        string

	flagCrestsDir    string
	flagCrestsOutput string
	flagCrestsPrefix string
	flagNoAliases    bool

	flagProbeCompetition string

	flagShowCompetition string
	flagRound           int
	flagSort            string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fpf-results",
		Short: "Scrape FPF competition results into JSON",
		Long: `A CLI tool to scrape match results and league standings from the
FPF results website (resultados.fpf.pt) and store them as JSON, together with
a manifest mapping club names to crest images.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagFormat, "format", "text", "Output format: text or json")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and metrics")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error (env FPF_LOG_LEVEL)")
	pf.StringVar(&flagEnvFile, "env-file", ".env", "Optional .env file with FPF_* settings")

	cmd.AddCommand(newFetchCmd(), newCrestsCmd(), newProbeCmd(), newShowCmd())
	return cmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape every round of a competition",
		Example: `  fpf-results fetch --competition seniores
  fpf-results fetch --competition infantis-c --cache
  fpf-results fetch --competition-id 28206 --season-id 105 --output data/custom.json`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	f := cmd.Flags()
	f.StringVar(&flagCompetition, "competition", "", "Competition preset: "+strings.Join(config.PresetNames(), ", "))
	f.IntVar(&flagCompetitionID, "competition-id", 0, "Competition id (overrides the preset)")
	f.IntVar(&flagSeasonID, "season-id", 0, "Season id (overrides the preset)")
	f.StringVar(&flagSeries, "series", "", "Only scrape the rounds of this series, e.g. \"SÉRIE B\"")
	f.StringVar(&flagOutput, "output", "", "Output JSON path")
	f.BoolVar(&flagCache, "cache", false, "Reuse pages saved in the cache directory")
	f.DurationVar(&flagCacheTTL, "cache-ttl", 0, "Maximum age of cached pages (0 means no expiry)")
	f.DurationVar(&flagRoundPause, "round-pause", config.DefaultRoundPause, "Pause between round requests")
	f.StringVar(&flagSQLite, "sqlite", "", "Also export the result to this SQLite database")
	addCacheDirFlag(cmd)
	return cmd
}

func newCrestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crests",
		Short: "Build the club name to crest manifest",
		Args:  cobra.NoArgs,
		RunE:  runCrests,
	}

	f := cmd.Flags()
	f.StringVar(&flagCrestsDir, "dir", config.DefaultCrestsDir, "Directory holding crest PNG files")
	f.StringVar(&flagCrestsOutput, "output", config.DefaultCrestsOutput, "Manifest output path")
	f.StringVar(&flagCrestsPrefix, "prefix", "", "Path prefix written in the manifest (defaults to --dir)")
	f.BoolVar(&flagNoAliases, "no-aliases", false, "Skip the built-in club name aliases")
	return cmd
}

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe FIXTURE_ID",
		Short: "Fetch one round fragment into the cache and report what parses",
		Args:  cobra.ExactArgs(1),
		RunE:  runProbe,
	}
	cmd.Flags().StringVar(&flagProbeCompetition, "competition", "", "Competition preset used to name the cache file")
	addCacheDirFlag(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [RESULT_JSON]",
		Short: "Print the standings and matches of a saved result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}

	f := cmd.Flags()
	f.StringVar(&flagShowCompetition, "competition", "seniores", "Competition preset whose output to read when no path is given")
	f.IntVar(&flagRound, "round", 0, "Round index to show (default: the last round with a table)")
	f.StringVar(&flagSort, "sort", string(SortByPosition), "Standings order: position, points, team or goals")
	return cmd
}

func addCacheDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCacheDir, "cache-dir", config.DefaultCacheDir, "Directory for cached pages")
}

func setup(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}

	levelName := flagLogLevel
	if !cmd.Flags().Changed("log-level") {
		if env := os.Getenv("FPF_LOG_LEVEL"); env != "" {
			levelName = env
		}
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return nil
}

// fetchConfig layers preset, environment and flags.
func fetchConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if flagCompetition != "" {
		preset, err := config.Preset(flagCompetition)
		if err != nil {
			return config.Config{}, err
		}
		cfg = preset
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("competition-id") {
		cfg.CompetitionID = flagCompetitionID
	}
	if flags.Changed("season-id") {
		cfg.SeasonID = flagSeasonID
	}
	if flags.Changed("series") {
		cfg.Series = flagSeries
	}
	if flags.Changed("output") {
		cfg.OutputPath = flagOutput
	}
	if flags.Changed("cache") {
		cfg.UseCache = flagCache
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = flagCacheDir
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL = flagCacheTTL
	}
	if flags.Changed("round-pause") {
		cfg.RoundPause = flagRoundPause
	}
	if flags.Changed("sqlite") {
		cfg.SQLitePath = flagSQLite
	}

	if flagCompetition == "" && cfg.CompetitionID == 0 && cfg.SeasonID == 0 {
		return config.Config{}, errors.New("--competition or --competition-id and --season-id are required")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := fetchConfig(cmd)
	if err != nil {
		return err
	}

	metrics := logger.NewMetrics()
	f := fetcher.New(cfg)
	f.SetMetrics(metrics)
	s := scraper.New(cfg, f)
	s.SetMetrics(metrics)

	if cache := f.Cache(); cache != nil && cfg.CacheTTL > 0 {
		removed, err := cache.CleanExpired()
		if err != nil {
			logger.Warn("Failed to clean page cache", logger.Fields{"dir": cfg.CacheDir, "error": err.Error()})
		} else if removed > 0 {
			logger.Debug("Removed expired pages", logger.Fields{"dir": cfg.CacheDir, "removed": removed})
		}
	}

	logger.Info("Starting scrape", logger.Fields{
		"competition":    cfg.Name,
		"competition_id": cfg.CompetitionID,
		"season_id":      cfg.SeasonID,
		"series":         cfg.Series,
		"cache":          cfg.UseCache,
	})

	started := time.Now()
	competition, err := s.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("scraping competition: %w", err)
	}

	if err := storage.SaveResult(cfg.OutputPath, competition); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	logger.Info("Saved result", logger.Fields{"path": cfg.OutputPath, "rounds": len(competition.Rounds)})

	if cfg.SQLitePath != "" {
		name := cfg.Name
		if name == "" {
			name = cfg.Key()
		}
		if err := storage.ExportSQLite(cmd.Context(), cfg.SQLitePath, name, competition); err != nil {
			return fmt.Errorf("exporting to sqlite: %w", err)
		}
		logger.Info("Exported to SQLite", logger.Fields{"path": cfg.SQLitePath})
	}

	report := &FetchReport{
		Competition: cfg.Name,
		Output:      cfg.OutputPath,
		SQLite:      cfg.SQLitePath,
		CompletedAt: time.Now().UTC(),
		Duration:    time.Since(started).Round(time.Millisecond).String(),
		Summary:     competition.Summary(),
		Skipped:     metrics.Counter("rounds.skipped"),
	}
	if flagVerbose {
		report.Metrics = metrics.GetSnapshot()
	}
	return WriteOutput(cmd.OutOrStdout(), report, OutputFormat(strings.ToLower(flagFormat)), flagVerbose)
}

func runCrests(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultCrests()
	cfg.ApplyEnv()
	if cmd.Flags().Changed("dir") {
		cfg.Dir = flagCrestsDir
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = flagCrestsOutput
	}

	prefix := flagCrestsPrefix
	if prefix == "" {
		prefix = filepath.ToSlash(filepath.Clean(cfg.Dir))
	}

	manifest, err := crests.Build(cfg.Dir, prefix)
	if err != nil {
		return err
	}
	crestCount := len(manifest)

	aliases := 0
	if !flagNoAliases {
		aliases = crests.ApplyAliases(manifest, crests.DefaultAliases)
	}

	if err := storage.SaveManifest(cfg.Output, manifest); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	logger.Info("Saved crest manifest", logger.Fields{
		"path":    cfg.Output,
		"crests":  crestCount,
		"aliases": aliases,
	})

	report := &CrestReport{
		Dir:     cfg.Dir,
		Output:  cfg.Output,
		Crests:  crestCount,
		Aliases: aliases,
	}
	return WriteOutput(cmd.OutOrStdout(), report, OutputFormat(strings.ToLower(flagFormat)), flagVerbose)
}

func runProbe(cmd *cobra.Command, args []string) error {
	fixtureID := strings.TrimSpace(args[0])
	if fixtureID == "" || strings.Trim(fixtureID, "0123456789") != "" {
		return fmt.Errorf("invalid fixture id: %q", args[0])
	}

	cfg := config.Default()
	if flagProbeCompetition != "" {
		preset, err := config.Preset(flagProbeCompetition)
		if err != nil {
			return err
		}
		cfg = preset
	}
	cfg.ApplyEnv()
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = flagCacheDir
	}
	// Always hit the network; the probe refreshes the cached copy.
	cfg.UseCache = false

	s := scraper.New(cfg, fetcher.New(cfg))
	res, err := s.Probe(cmd.Context(), fixtureID)
	if err != nil {
		if fetcher.IsNotFound(err) {
			return fmt.Errorf("fixture %s does not exist", fixtureID)
		}
		return err
	}

	return WriteOutput(cmd.OutOrStdout(), &ProbeReport{res}, OutputFormat(strings.ToLower(flagFormat)), flagVerbose)
}

func runShow(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		preset, err := config.Preset(flagShowCompetition)
		if err != nil {
			return err
		}
		path = preset.OutputPath
	}

	order := SortOrder(strings.ToLower(flagSort))
	if !order.Valid() {
		return fmt.Errorf("invalid sort order: %s (must be position, points, team or goals)", flagSort)
	}

	competition, err := storage.LoadResult(path)
	if err != nil {
		return err
	}

	report, err := newRoundReport(competition, flagRound, order)
	if err != nil {
		return err
	}
	return WriteOutput(cmd.OutOrStdout(), report, OutputFormat(strings.ToLower(flagFormat)), flagVerbose)
}

// Execute runs the CLI; an interrupt cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, NewRootCmd())
	stop()
	os.Exit(code)
}

// execute runs cmd and maps its outcome to an exit code. Failures are logged
// before any output file is written.
func execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("Command failed", nil, err)
		return ExitError
	}
	return ExitSuccess
}
