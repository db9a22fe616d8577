package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// EnrichAllResult is what enrich-all reports.
type EnrichAllResult struct {
	Games      int                 `json:"games"`
	Failed     int                 `json:"failed"`
	ByStatus   map[game.Status]int `json:"by_status"`
	NewlyFinal []*game.Game        `json:"newly_final"`
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeFixtures(w io.Writer, fixtures []game.Scheduled, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, fixtures)
	}
	if len(fixtures) == 0 {
		fmt.Fprintln(w, "No games found.")
		return nil
	}
	for _, f := range fixtures {
		fmt.Fprintf(w, "%d  %-12s %s %s\n", f.GameID, f.Date, where(f.Location), f.Opponent)
	}
	fmt.Fprintf(w, "\nTotal: %d games\n", len(fixtures))
	return nil
}

func writeEnriched(w io.Writer, e *game.EnrichedGame, format OutputFormat, verbose bool) error {
	if format == FormatJSON {
		return writeJSON(w, e)
	}

	fmt.Fprintf(w, "Game %d: %s\n", e.GameID, e.Status)
	if e.AwayTeam != nil && e.HomeTeam != nil {
		fmt.Fprintf(w, "  %s %s at %s %s\n", *e.AwayTeam, score(e.AwayScore), *e.HomeTeam, score(e.HomeScore))
	}
	if e.OvertimeType != game.OvertimeNone {
		fmt.Fprintf(w, "  Decided in: %s\n", e.OvertimeType)
	}
	if e.Result != nil {
		fmt.Fprintf(w, "  Result: %s\n", *e.Result)
	}
	writeGoals(w, "Away goals", e.AwayGoals)
	writeGoals(w, "Home goals", e.HomeGoals)
	if e.GameReportURL != "" {
		fmt.Fprintf(w, "  Report: %s\n", e.GameReportURL)
	}
	if verbose && e.Diagnostics != nil {
		fmt.Fprintf(w, "  Goals parsed %d, excluded %d, by fallback %d\n",
			e.Diagnostics.GoalsParsed, e.Diagnostics.GoalsExcluded, e.Diagnostics.GoalsFallback)
		for _, n := range e.Diagnostics.Notes {
			fmt.Fprintf(w, "  note: %s\n", n)
		}
	}
	return nil
}

func writeGoals(w io.Writer, label string, goals []string) {
	if len(goals) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", label)
	for _, g := range goals {
		fmt.Fprintf(w, "    %s\n", g)
	}
}

func writeGames(w io.Writer, games []*game.Game, format OutputFormat, verbose bool) error {
	if format == FormatJSON {
		return writeJSON(w, games)
	}
	if len(games) == 0 {
		fmt.Fprintln(w, "No games found.")
		return nil
	}
	for _, g := range games {
		line := fmt.Sprintf("%-12s %s %-16s %-11s", g.Date, where(g.Location), g.Opponent, g.Status)
		if g.Result != nil {
			line += " " + *g.Result
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
		if verbose {
			fmt.Fprintf(w, "     ID: %d\n", g.GameID)
			if g.GameReportURL != nil {
				fmt.Fprintf(w, "     Report: %s\n", *g.GameReportURL)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d games\n", len(games))
	return nil
}

func writeEnrichAll(w io.Writer, r *EnrichAllResult, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Enriched %d games (%d final, %d live, %d upcoming, %d unavailable)\n",
		r.Games, r.ByStatus[game.StatusFinal], r.ByStatus[game.StatusLive],
		r.ByStatus[game.StatusUpcoming], r.ByStatus[game.StatusUnavailable])
	if r.Failed > 0 {
		fmt.Fprintf(w, "%d reports could not be fetched\n", r.Failed)
	}
	for _, g := range r.NewlyFinal {
		result := "no result"
		if g.Result != nil {
			result = *g.Result
		}
		fmt.Fprintf(w, "NEW FINAL: %s %s %s\n", result, where(g.Location), g.Opponent)
	}
	return nil
}

func where(location string) string {
	if game.ParseSide(location) == game.SideAway {
		return "at"
	}
	return "vs"
}

func score(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
