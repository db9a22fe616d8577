// Package report turns an official hockey game report page into a
// game.EnrichedGame.
//
// Report pages are loosely structured HTML: nested layout tables, no thead or
// tbody, non-breaking-space padding and decorative rows between data rows.
// The parser finds the scoring summary and the goal summary by their content,
// reads both teams' scores and the goal-by-goal list, decides the game status
// and how it was settled, and formats a result string from the subject team's
// point of view.
//
// Parsing never fails for a per-game problem. A malformed or missing page
// degrades to an Unavailable or Upcoming record, and every non-fatal decision
// is written to the record's Diagnostics and to the logger.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
)

// RawDocument is a fetched report page.
type RawDocument struct {
	HTML string
	URL  string
}

// Context is what the schedule already knows about the game.
type Context struct {
	GameID         int
	Date           string
	Opponent       string
	Side           game.Side // subject team's side, if known
	ScheduledStart *time.Time
}

// ContextFor builds a parse context from a schedule entry.
func ContextFor(s game.Scheduled) Context {
	return Context{
		GameID:         s.GameID,
		Date:           s.Date,
		Opponent:       s.Opponent,
		Side:           s.Side(),
		ScheduledStart: s.ScheduledStart,
	}
}

// Options configures a Parser.
type Options struct {
	Teams       TeamRegistry
	SubjectTeam string // name fragment, e.g. "Greenville"
	Fallback    FallbackPolicy
	Location    *time.Location // zone of schedule dates and report clock times
	Now         func() time.Time
	Logger      *logger.Logger
}

// Parser parses report pages. It holds no per-parse state and is safe for
// concurrent use.
type Parser struct {
	opts Options
}

// New creates a Parser, filling in defaults for unset options.
func New(opts Options) *Parser {
	if opts.Fallback == "" {
		opts.Fallback = FallbackBalance
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	return &Parser{opts: opts}
}

// ParseReader reads the page from r and parses it. The only error is a read error.
func (p *Parser) ParseReader(r io.Reader, url string, ctx Context) (*game.EnrichedGame, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report for game %d: %w", ctx.GameID, err)
	}
	return p.Parse(RawDocument{HTML: string(body), URL: url}, ctx), nil
}

// Parse builds the enriched record for one report page. It always returns a
// record.
func (p *Parser) Parse(raw RawDocument, ctx Context) *game.EnrichedGame {
	log := p.opts.Logger.With(logger.Fields{"game_id": ctx.GameID})
	now := p.opts.Now()

	e := &game.EnrichedGame{
		GameID:        ctx.GameID,
		GameReportURL: raw.URL,
		Diagnostics:   &game.Diagnostics{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.HTML))
	if err != nil {
		e.Status = game.StatusUnavailable
		e.Diagnostics.Note(fmt.Sprintf("document could not be parsed: %v", err))
		log.Warn("Report not parseable", logger.Fields{"error": err.Error()})
		return e
	}

	text := nodeText(doc.Selection)
	signals := statusSignals{
		Empty:        text == "",
		NotAvailable: notAvailable.MatchString(text),
		Now:          now,
	}
	if signals.Empty || signals.NotAvailable {
		status, rule := inferStatus(signals)
		e.Status = status
		e.Diagnostics.Note("status: " + rule)
		log.Debug("Report unavailable", logger.Fields{"rule": rule})
		return e
	}

	scoringSel, scoringRule := locateScoringTable(doc)
	if scoringSel == nil {
		status, rule := inferStatus(signals)
		p.fillUpcoming(e, ctx)
		e.Status = status
		e.Diagnostics.Note("status: " + rule)
		log.Debug("No scoring summary", logger.Fields{"status": string(status)})
		return e
	}

	st, err := parseScoringTable(scoringSel)
	if err != nil {
		e.Status = game.StatusUnavailable
		e.Diagnostics.Note(err.Error())
		log.Warn("Malformed scoring summary", logger.Fields{"rule": scoringRule, "error": err.Error()})
		return e
	}
	log.Debug("Scoring summary located", logger.Fields{"rule": scoringRule})

	resolver := newSideResolver(st.Away.TeamLabel, st.Home.TeamLabel, p.opts.Teams, p.opts.Fallback)

	var events []GoalEvent
	if goalSel, goalRule := locateGoalTable(doc); goalSel != nil {
		events = parseGoalTable(goalSel)
		log.Debug("Goal summary located", logger.Fields{"rule": goalRule, "goals": len(events)})
	}
	attr := resolver.attribute(events, e.Diagnostics, log)
	e.Diagnostics.GoalsParsed = len(events)
	e.Diagnostics.GoalsExcluded = attr.excluded
	e.Diagnostics.GoalsFallback = attr.fallback

	meta := readMeta(doc)
	signals.HasScoring = true
	signals.GameLength = meta["Game Length"]
	signals.GameEnd = meta["Game End"]
	signals.FinalToken = hasFinalToken(text)
	signals.HasData = st.Away.Final+st.Home.Final > 0 || len(events) > 0
	signals.ScheduledStart = scheduledStart(ctx, meta, p.opts.Location, now)

	status, rule := inferStatus(signals)
	e.Diagnostics.Note("status: " + rule)

	awayScore, homeScore := st.Away.Final, st.Home.Final
	ot := classifyOvertime(status, st)
	if ot == game.OvertimeSO {
		attempts, _ := locateShootoutTable(doc)
		winner, signal := shootoutWinner(st, attempts, resolver)
		if winner == game.SideUnknown {
			if awayScore == homeScore {
				e.Diagnostics.Note("shootout winner undetermined; scores left tied")
				log.Warn("Shootout winner undetermined", nil)
			}
		} else {
			awayScore, homeScore = applyShootoutBonus(awayScore, homeScore, winner)
			log.Debug("Shootout winner", logger.Fields{"side": string(winner), "signal": signal})
		}
	}

	e.Status = status
	e.AwayTeam = game.Str(st.Away.TeamLabel)
	e.HomeTeam = game.Str(st.Home.TeamLabel)
	e.AwayScore = game.Int(awayScore)
	e.HomeScore = game.Int(homeScore)
	e.AwayGoals = attr.away
	e.HomeGoals = attr.home
	e.OvertimeType = ot

	if status == game.StatusFinal {
		subject := resolveSubject(p.opts.SubjectTeam, st.Away.TeamLabel, st.Home.TeamLabel, ctx.Side, e.Diagnostics)
		result, reason := composeResult(status, subject, homeScore, awayScore, ot)
		if result != "" {
			e.Result = game.Str(result)
		} else if reason != "" {
			e.Diagnostics.Note(reason)
			log.Warn("Result unresolved", logger.Fields{"reason": reason})
		}
	}

	log.Info("Parsed game report", logger.Fields{
		"status":        string(e.Status),
		"home_score":    homeScore,
		"away_score":    awayScore,
		"overtime_type": string(ot),
	})
	return e
}

// fillUpcoming sets the fields of a game whose report has no scoring
// summary yet. Team names come from the schedule when it knows them.
func (p *Parser) fillUpcoming(e *game.EnrichedGame, ctx Context) {
	e.HomeScore = game.Int(0)
	e.AwayScore = game.Int(0)
	e.HomeGoals = []string{}
	e.AwayGoals = []string{}

	if p.opts.SubjectTeam == "" || ctx.Opponent == "" {
		return
	}
	switch ctx.Side {
	case game.SideHome:
		e.HomeTeam = game.Str(p.opts.SubjectTeam)
		e.AwayTeam = game.Str(ctx.Opponent)
	case game.SideAway:
		e.AwayTeam = game.Str(p.opts.SubjectTeam)
		e.HomeTeam = game.Str(ctx.Opponent)
	}
}
