package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// statusSignals are the facts status inference looks at, gathered from one
// document snapshot.
type statusSignals struct {
	Empty          bool
	NotAvailable   bool
	HasScoring     bool
	GameLength     string
	GameEnd        string
	FinalToken     bool
	HasData        bool // non-zero score or at least one goal
	ScheduledStart *time.Time
	Now            time.Time
}

// statusRule is one entry of the precedence list. The first matching rule
// decides the status.
type statusRule struct {
	name   string
	status game.Status
	match  func(s statusSignals) bool
}

var (
	elapsedClock  = regexp.MustCompile(`^\d{1,3}:\d{2}`)
	finalToken    = regexp.MustCompile(`(?i)\bfinal\b`)
	notAvailable  = regexp.MustCompile(`(?i)\bthis game is not available\b`)
	finalNegation = regexp.MustCompile(`(?i)not available`)
	clockTime     = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([ap])?\.?m?\.?`)
	blankMetaText = map[string]bool{"": true, "-": true, "--": true, "tbd": true, "n/a": true}
)

var statusRules = []statusRule{
	{"empty document", game.StatusUnavailable, func(s statusSignals) bool { return s.Empty }},
	{"not available marker", game.StatusUnavailable, func(s statusSignals) bool { return s.NotAvailable }},
	{"no scoring summary", game.StatusUpcoming, func(s statusSignals) bool { return !s.HasScoring }},
	{"game length recorded", game.StatusFinal, func(s statusSignals) bool {
		return elapsedClock.MatchString(s.GameLength) && !isZeroClock(s.GameLength)
	}},
	{"game end recorded", game.StatusFinal, func(s statusSignals) bool {
		return !blankMetaText[strings.ToLower(s.GameEnd)]
	}},
	{"final marker", game.StatusFinal, func(s statusSignals) bool { return s.FinalToken }},
	{"scheduled day passed with scores", game.StatusFinal, func(s statusSignals) bool {
		return s.ScheduledStart != nil && s.HasData && dayBefore(*s.ScheduledStart, s.Now)
	}},
	{"scheduled start passed", game.StatusLive, func(s statusSignals) bool {
		return s.ScheduledStart != nil && !s.Now.Before(*s.ScheduledStart)
	}},
	{"scheduled start ahead", game.StatusUpcoming, func(s statusSignals) bool {
		return s.ScheduledStart != nil
	}},
	{"scores without final marker", game.StatusLive, func(s statusSignals) bool { return s.HasData }},
	{"no data", game.StatusUpcoming, func(statusSignals) bool { return true }},
}

// inferStatus applies statusRules in order and reports which rule decided.
func inferStatus(s statusSignals) (game.Status, string) {
	for _, r := range statusRules {
		if r.match(s) {
			return r.status, r.name
		}
	}
	return game.StatusUpcoming, "no data"
}

// hasFinalToken looks for "Final" not followed closely by "not available".
func hasFinalToken(text string) bool {
	for _, loc := range finalToken.FindAllStringIndex(text, -1) {
		end := loc[1] + 40
		if end > len(text) {
			end = len(text)
		}
		if !finalNegation.MatchString(text[loc[1]:end]) {
			return true
		}
	}
	return false
}

func isZeroClock(s string) bool {
	return strings.Trim(elapsedClock.FindString(s), "0:") == ""
}

// dayBefore reports whether start falls on an earlier calendar day than now,
// both read in start's location.
func dayBefore(start, now time.Time) bool {
	now = now.In(start.Location())
	sy, sm, sd := start.Date()
	ny, nm, nd := now.Date()
	return time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC).Before(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC))
}

// scheduledStart returns the context's start when given; otherwise it
// combines the schedule date with the report's "Game Start" clock time.
func scheduledStart(ctx Context, meta map[string]string, loc *time.Location, now time.Time) *time.Time {
	if ctx.ScheduledStart != nil {
		t := *ctx.ScheduledStart
		return &t
	}
	if ctx.Date == "" {
		return nil
	}
	day := game.ParseDateAt(ctx.Date, now)
	if day.IsZero() {
		return nil
	}
	hour, minute, ok := parseClockTime(meta["Game Start"])
	if !ok {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	return &t
}

// parseClockTime reads "7:05 pm", "7:05PM EDT" or "19:05".
func parseClockTime(s string) (int, int, bool) {
	m := clockTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch strings.ToLower(m[3]) {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
