// Package enrich fetches and parses the official report of every scheduled
// game, a bounded number at a time.
package enrich

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/hockey-report/internal/cache"
	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/metrics"
	"github.com/pfrederiksen/hockey-report/internal/report"
	"github.com/pfrederiksen/hockey-report/internal/scraper"
)

const defaultConcurrency = 4

// Runner enriches scheduled games.
type Runner struct {
	fetcher     scraper.Fetcher
	parser      *report.Parser
	reportURL   string
	concurrency int
	cache       cache.ReportCache
	metrics     *metrics.Recorder
	log         *logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithReportURL sets the report URL template (see scraper.ReportURL).
func WithReportURL(template string) Option {
	return func(r *Runner) { r.reportURL = template }
}

// WithConcurrency bounds how many games are fetched at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithCache reads and stores final reports in c.
func WithCache(c cache.ReportCache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithMetrics records per-game counters in m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(fetcher scraper.Fetcher, parser *report.Parser, opts ...Option) *Runner {
	r := &Runner{
		fetcher:     fetcher,
		parser:      parser,
		concurrency: defaultConcurrency,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary is the outcome of a batch.
type Summary struct {
	Games    []*game.Game
	ByStatus map[game.Status]int
	Failed   int // games whose report could not be fetched
}

// Run enriches every fixture. A game whose report cannot be fetched gets an
// Unavailable placeholder and a warning; the batch never aborts for a single
// game. Duplicate game ids are enriched once. The only error is the context's.
func (r *Runner) Run(ctx context.Context, fixtures []game.Scheduled) (*Summary, error) {
	var (
		mu      sync.Mutex
		results = make(map[int]*game.Game, len(fixtures))
		failed  int
	)

	seen := make(map[int]bool, len(fixtures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, f := range fixtures {
		if seen[f.GameID] {
			continue
		}
		seen[f.GameID] = true

		f := f
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			e, err := r.One(gctx, f)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.log.Warn("Report fetch failed, recording placeholder", logger.Fields{
					"game_id": f.GameID,
					"error":   err.Error(),
				})
				e = r.placeholder(f, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}

			mu.Lock()
			results[f.GameID] = game.FromEnriched(f, e)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enriching games: %w", err)
	}

	s := &Summary{
		Games:    make([]*game.Game, 0, len(results)),
		ByStatus: make(map[game.Status]int),
		Failed:   failed,
	}
	ids := make([]int, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		gm := results[id]
		s.Games = append(s.Games, gm)
		s.ByStatus[gm.Status]++
	}
	game.SortByDate(s.Games, time.Now())

	r.log.Info("Enrichment finished", logger.Fields{
		"games":  len(s.Games),
		"failed": failed,
		"final":  s.ByStatus[game.StatusFinal],
	})
	return s, nil
}

// One fetches and parses a single game's report. A cached final report is
// used instead of fetching. The error is the fetch error.
func (r *Runner) One(ctx context.Context, f game.Scheduled) (*game.EnrichedGame, error) {
	url := scraper.ReportURL(r.reportURL, f.GameID)
	pctx := report.ContextFor(f)
	log := r.log.With(logger.Fields{"game_id": f.GameID})

	if html, ok := r.cached(ctx, f.GameID, log); ok {
		e := r.parse(html, url, pctx)
		if e.Status == game.StatusFinal {
			r.metrics.RecordCacheHit()
			log.Debug("Report served from cache", nil)
			return e, nil
		}
	}

	html, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.metrics.RecordFetchFailure("report")
		return nil, err
	}

	e := r.parse(html, url, pctx)
	if e.Status == game.StatusFinal && r.cache != nil {
		if err := r.cache.PutReport(ctx, f.GameID, html); err != nil {
			log.Warn("Caching report failed", logger.Fields{"error": err.Error()})
		}
	}
	return e, nil
}

func (r *Runner) cached(ctx context.Context, gameID int, log *logger.Logger) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	html, ok, err := r.cache.GetReport(ctx, gameID)
	if err != nil {
		log.Warn("Report cache lookup failed", logger.Fields{"error": err.Error()})
		return "", false
	}
	return html, ok
}

func (r *Runner) parse(html, url string, ctx report.Context) *game.EnrichedGame {
	start := time.Now()
	e := r.parser.Parse(report.RawDocument{HTML: html, URL: url}, ctx)
	if d := e.Diagnostics; d != nil {
		r.metrics.RecordParse(string(e.Status), time.Since(start), d.GoalsFallback, d.GoalsExcluded)
	} else {
		r.metrics.RecordParse(string(e.Status), time.Since(start), 0, 0)
	}
	return e
}

func (r *Runner) placeholder(f game.Scheduled, err error) *game.EnrichedGame {
	return &game.EnrichedGame{
		GameID:        f.GameID,
		Status:        game.StatusUnavailable,
		GameReportURL: scraper.ReportURL(r.reportURL, f.GameID),
		Diagnostics:   &game.Diagnostics{Notes: []string{fmt.Sprintf("report fetch failed: %v", err)}},
	}
}
