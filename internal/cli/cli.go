package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hockey-report/internal/cache"
	"github.com/pfrederiksen/hockey-report/internal/config"
	"github.com/pfrederiksen/hockey-report/internal/enrich"
	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/metrics"
	"github.com/pfrederiksen/hockey-report/internal/report"
	"github.com/pfrederiksen/hockey-report/internal/scraper"
	"github.com/pfrederiksen/hockey-report/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewFinals = 2
)

// ExitCodeError ends a run with a specific exit code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// app carries the state shared by all commands of one invocation.
type app struct {
	flagConfig  string
	flagDataDir string
	flagFormat  string
	flagVerbose bool

	cfg    *config.Config
	log    *logger.Logger
	format OutputFormat
	now    func() time.Time

	// fetcher overrides the configured fetchers when set.
	fetcher scraper.Fetcher
	closers []func()
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hockey-report",
		Short: "Track a hockey team's schedule and results from official game reports",
		Long: `A CLI tool that extracts a team's fixtures from the league schedule feed,
parses official game reports into scores, goal lists and results, and keeps
the enriched schedule on disk or in PostgreSQL.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.flagDataDir, "data-dir", "", "Data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&a.flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&a.flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newExtractCmd(a),
		newEnrichCmd(a),
		newEnrichAllCmd(a),
		newInjectStartTimesCmd(a),
		newExportICSCmd(a),
		newListCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.format = OutputFormat(strings.ToLower(a.flagFormat))
	if a.format != FormatText && a.format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.flagFormat)
	}

	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return err
	}
	if a.flagDataDir != "" {
		cfg.DataDir = a.flagDataDir
	}
	a.cfg = cfg

	level := logger.ParseLevel(cfg.LogLevel)
	if a.flagVerbose {
		level = logger.LevelDebug
	}
	a.log = logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(a.log)

	a.log.Debug("Configuration loaded", logger.Fields{
		"config":   a.flagConfig,
		"data_dir": cfg.DataDir,
		"subject":  cfg.Subject.Team,
	})
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) storage() (*storage.Storage, error) {
	s, err := storage.New(a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return s, nil
}

// postgres opens the configured database, or returns nil when none is set.
func (a *app) postgres(ctx context.Context) (*storage.PostgresStore, error) {
	if a.cfg.Postgres.DSN == "" {
		return nil, nil
	}
	pg, err := storage.NewPostgresStore(ctx, a.cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = pg.Close() })
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}

// plainFetcher fetches feeds and calendars over HTTP.
func (a *app) plainFetcher() scraper.Fetcher {
	if a.fetcher != nil {
		return a.fetcher
	}
	return scraper.NewHTTPFetcher(
		scraper.WithClient(&http.Client{Timeout: a.cfg.Fetch.Timeout}),
		scraper.WithUserAgent(a.cfg.Fetch.UserAgent),
		scraper.WithRetries(uint64(a.cfg.Fetch.Retries), 0),
		scraper.WithLogger(a.log),
	)
}

// pageFetcher fetches report and game center pages, in headless Chrome when
// the config asks for it.
func (a *app) pageFetcher() scraper.Fetcher {
	if a.fetcher != nil {
		return a.fetcher
	}
	if a.cfg.Fetch.Browser {
		b := scraper.NewBrowserFetcher(a.cfg.Fetch.UserAgent, a.cfg.Fetch.Timeout)
		a.closers = append(a.closers, b.Close)
		return b
	}
	return a.plainFetcher()
}

func (a *app) parser() *report.Parser {
	opts := a.cfg.ParserOptions(a.log)
	opts.Now = a.now
	return report.New(opts)
}

// runner builds the enrichment runner, with the Redis cache when configured.
func (a *app) runner(rec *metrics.Recorder) *enrich.Runner {
	opts := []enrich.Option{
		enrich.WithReportURL(a.cfg.Fetch.ReportURL),
		enrich.WithConcurrency(a.cfg.Concurrency),
		enrich.WithMetrics(rec),
		enrich.WithLogger(a.log),
	}
	if a.cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(a.cfg.Redis.URL, a.cfg.Redis.TTL)
		if err != nil {
			a.log.Warn("Report cache unavailable, continuing without it", logger.Fields{"error": err.Error()})
		} else {
			a.closers = append(a.closers, func() { _ = rc.Close() })
			opts = append(opts, enrich.WithCache(rc))
		}
	}
	return enrich.NewRunner(a.pageFetcher(), a.parser(), opts...)
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		os.Exit(ExitSuccess)
	}

	var exit *ExitCodeError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitError)
}

func writeTo(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
