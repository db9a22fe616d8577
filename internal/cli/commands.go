package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hockey-report/internal/api"
	"github.com/pfrederiksen/hockey-report/internal/calendar"
	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/metrics"
	"github.com/pfrederiksen/hockey-report/internal/notifier"
	"github.com/pfrederiksen/hockey-report/internal/schedule"
	"github.com/pfrederiksen/hockey-report/internal/storage"
)

func newExtractCmd(a *app) *cobra.Command {
	var feedFile string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the team's fixtures from the league schedule feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			var raw string
			if feedFile != "" {
				data, err := os.ReadFile(feedFile)
				if err != nil {
					return fmt.Errorf("reading feed file: %w", err)
				}
				raw = string(data)
			} else {
				var err error
				raw, err = schedule.NewClient(a.plainFetcher(), a.cfg.Fetch.FeedURL, a.cfg.Subject.City).FetchFeed(cmd.Context())
				if err != nil {
					return err
				}
			}

			fixtures, err := schedule.ParseFeed(raw, a.cfg.Subject.City)
			if err != nil {
				return err
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			if err := store.SaveGameIDs(fixtures); err != nil {
				return err
			}
			a.log.Info("Fixtures extracted", logger.Fields{"games": len(fixtures), "city": a.cfg.Subject.City})

			return writeFixtures(writeTo(cmd), fixtures, a.format)
		},
	}
	cmd.Flags().StringVar(&feedFile, "feed-file", "", "Read the schedule feed from a file instead of fetching it")
	return cmd
}

func newEnrichCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "enrich <game-id|game-center-url>",
		Short: "Parse one game's official report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			ctx := cmd.Context()

			id, err := a.resolveGameID(ctx, args[0])
			if err != nil {
				return err
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			fixture, found, err := store.FindFixture(id)
			if err != nil {
				a.log.Warn("Fixture lookup failed", logger.Fields{"game_id": id, "error": err.Error()})
			}
			if !found {
				fixture = game.Scheduled{GameID: id}
			}

			e, err := a.runner(nil).One(ctx, fixture)
			if err != nil {
				return fmt.Errorf("enriching game %d: %w", id, err)
			}

			if save {
				existing, err := store.LoadSchedule()
				if err != nil {
					return err
				}
				merged := game.Merge(existing, []*game.Game{game.FromEnriched(fixture, e)})
				if err := store.SaveSchedule(merged); err != nil {
					return err
				}
			}

			return writeEnriched(writeTo(cmd), e, a.format, a.flagVerbose)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Merge the result into the stored schedule")
	return cmd
}

// resolveGameID accepts a numeric id or a game center URL whose page links
// to the official report.
func (a *app) resolveGameID(ctx context.Context, arg string) (int, error) {
	if id, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("invalid game id: %d", id)
		}
		return id, nil
	}
	if !strings.Contains(arg, "://") {
		return 0, fmt.Errorf("invalid game id: %s", arg)
	}

	page, err := a.pageFetcher().Fetch(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("fetching game center: %w", err)
	}
	id, ok := schedule.GameIDFromGameCenter(page)
	if !ok {
		return 0, fmt.Errorf("no official report link on %s", arg)
	}
	return id, nil
}

func newEnrichAllCmd(a *app) *cobra.Command {
	var notify, dryRun bool
	cmd := &cobra.Command{
		Use:   "enrich-all",
		Short: "Enrich every extracted fixture and update the stored schedule",
		Long: `Enrich every fixture in game_ids.json, merge the results into the stored
schedule and report games that became Final since the last run.
Exits with status 2 when at least one game newly became Final.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			ctx := cmd.Context()

			store, err := a.storage()
			if err != nil {
				return err
			}
			fixtures, err := store.LoadGameIDs()
			if err != nil {
				return err
			}
			if len(fixtures) == 0 {
				return fmt.Errorf("no fixtures in %s; run extract first", store.Dir())
			}

			pg, err := a.postgres(ctx)
			if err != nil {
				return err
			}

			previous, err := store.LoadSchedule()
			if err != nil {
				return err
			}

			summary, err := a.runner(metrics.NewRecorder()).Run(ctx, fixtures)
			if err != nil {
				return err
			}

			merged := game.Merge(previous, summary.Games)
			if err := store.SaveSchedule(merged); err != nil {
				return err
			}
			if pg != nil {
				if err := pg.SaveGames(ctx, merged); err != nil {
					return err
				}
			}

			newly := game.NewlyFinal(previous, merged)
			if notify && len(newly) > 0 {
				if err := a.announcer(dryRun, cmd).Notify(newly); err != nil {
					a.log.Error("Notification failed", nil, err)
				}
			}

			result := &EnrichAllResult{
				Games:      len(summary.Games),
				Failed:     summary.Failed,
				ByStatus:   summary.ByStatus,
				NewlyFinal: newly,
			}
			if result.NewlyFinal == nil {
				result.NewlyFinal = []*game.Game{}
			}
			if err := writeEnrichAll(writeTo(cmd), result, a.format); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			if len(newly) > 0 {
				return &ExitCodeError{Code: ExitNewFinals}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "Announce newly Final games on Telegram")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print notifications instead of sending them")
	return cmd
}

// announcer prints to stderr unless Telegram is configured and this is not a
// dry run.
func (a *app) announcer(dryRun bool, cmd *cobra.Command) notifier.Notifier {
	subject := a.cfg.Calendar.Name
	if dryRun || a.cfg.Telegram.Token == "" {
		if !dryRun {
			a.log.Warn("Telegram is not configured, printing notifications", nil)
		}
		return notifier.NewDryRunNotifier(cmd.ErrOrStderr(), subject)
	}
	n, err := notifier.NewTelegramNotifier(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, subject)
	if err != nil {
		a.log.Error("Telegram unavailable, printing notifications", nil, err)
		return notifier.NewDryRunNotifier(cmd.ErrOrStderr(), subject)
	}
	return n
}

func newInjectStartTimesCmd(a *app) *cobra.Command {
	var icsFile string
	cmd := &cobra.Command{
		Use:   "inject-start-times",
		Short: "Set scheduled start times from the team's iCalendar feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			var ics string
			if icsFile != "" {
				data, err := os.ReadFile(icsFile)
				if err != nil {
					return fmt.Errorf("reading calendar file: %w", err)
				}
				ics = string(data)
			} else {
				var err error
				ics, err = a.plainFetcher().Fetch(cmd.Context(), a.cfg.Calendar.ICSURL)
				if err != nil {
					return fmt.Errorf("fetching calendar: %w", err)
				}
			}

			starts := calendar.ParseStartTimes(ics, a.cfg.Location())
			store, err := a.storage()
			if err != nil {
				return err
			}

			fixtures, err := store.LoadGameIDs()
			if err != nil {
				return err
			}
			nFixtures := calendar.InjectFixtureStartTimes(fixtures, starts, a.now())
			if err := store.SaveGameIDs(fixtures); err != nil {
				return err
			}

			games, err := store.LoadSchedule()
			if err != nil {
				return err
			}
			nGames := calendar.InjectStartTimes(games, starts, a.now())
			if err := store.SaveSchedule(games); err != nil {
				return err
			}

			a.log.Info("Start times injected", logger.Fields{
				"calendar_events": len(starts),
				"fixtures":        nFixtures,
				"games":           nGames,
			})
			if a.format == FormatJSON {
				return writeJSON(writeTo(cmd), map[string]int{
					"calendar_events": len(starts),
					"fixtures":        nFixtures,
					"games":           nGames,
				})
			}
			fmt.Fprintf(writeTo(cmd), "Injected start times into %d fixtures and %d games (%d calendar events)\n",
				nFixtures, nGames, len(starts))
			return nil
		},
	}
	cmd.Flags().StringVar(&icsFile, "ics-file", "", "Read the calendar from a file instead of fetching it")
	return cmd
}

func newExportICSCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-ics",
		Short: "Export the stored schedule as an iCalendar feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			store, err := a.storage()
			if err != nil {
				return err
			}
			games, err := store.LoadSchedule()
			if err != nil {
				return err
			}

			ics := calendar.GenerateICS(games, a.cfg.Calendar.Name, a.cfg.Location(), a.now())
			if output == "" || output == "-" {
				_, err := fmt.Fprint(writeTo(cmd), ics)
				return err
			}
			if err := os.WriteFile(output, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing calendar: %w", err)
			}
			a.log.Info("Calendar exported", logger.Fields{"path": output, "games": len(games)})
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var sortFlag, statusFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			order, ok := parseSortOrder(sortFlag)
			if !ok {
				return fmt.Errorf("invalid sort order: %s (must be 'date', 'opponent' or 'status')", sortFlag)
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			games, err := store.LoadSchedule()
			if err != nil {
				return err
			}

			if statusFlag != "" {
				filtered := games[:0]
				for _, g := range games {
					if strings.EqualFold(string(g.Status), statusFlag) {
						filtered = append(filtered, g)
					}
				}
				games = filtered
			}

			sortGames(games, order, a.now())
			return writeGames(writeTo(cmd), games, a.format, a.flagVerbose)
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "date", "Sort order: date, opponent or status")
	cmd.Flags().StringVar(&statusFlag, "status", "", "Only games with this status")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			files, err := a.storage()
			if err != nil {
				return err
			}
			var store storage.GameStore = files
			pg, err := a.postgres(ctx)
			if err != nil {
				return err
			}
			if pg != nil {
				store = pg
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			rec := metrics.NewRecorder()
			srv := api.NewServer(addr, store, files, a.runner(rec), rec, a.log)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
