// Package calendar reads start times out of a team's iCalendar feed and
// exports the schedule as one.
package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

const (
	defaultFaceoffHour = 19
	gameDuration       = 150 * time.Minute
)

var dtstartLine = regexp.MustCompile(`(?m)^DTSTART((?:;[^:\r\n]*)*):(\d{8}T\d{6})(Z?)\s*$`)

// MonthDay keys start times by calendar day. Team calendars cover a single
// season, so month and day are enough to match a schedule date.
type MonthDay struct {
	Month time.Month
	Day   int
}

func monthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

// ParseStartTimes returns the DTSTART of every event in ics, keyed by the day
// it falls on locally. TZID parameters are honored; UTC ("Z") times are
// moved into loc and floating times are read in loc. All-day events are
// skipped. When two events share a day the later one in the file wins.
func ParseStartTimes(ics string, loc *time.Location) map[MonthDay]time.Time {
	if loc == nil {
		loc = time.UTC
	}
	starts := make(map[MonthDay]time.Time)

	for _, m := range dtstartLine.FindAllStringSubmatch(ics, -1) {
		params, raw, utc := m[1], m[2], m[3] == "Z"

		zone := loc
		if tzid := paramValue(params, "TZID"); tzid != "" && !utc {
			if z, err := time.LoadLocation(strings.Trim(tzid, `"`)); err == nil {
				zone = z
			}
		}

		var t time.Time
		var err error
		if utc {
			t, err = time.Parse("20060102T150405", raw)
			t = t.In(loc)
		} else {
			t, err = time.ParseInLocation("20060102T150405", raw, zone)
		}
		if err != nil {
			continue
		}
		starts[monthDayOf(t)] = t
	}
	return starts
}

func paramValue(params, name string) string {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(p, "=")
		if ok && strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// InjectStartTimes sets ScheduledStart on every game whose date has a start
// time and returns how many were set. ref places year-less dates in a season.
func InjectStartTimes(games []*game.Game, starts map[MonthDay]time.Time, ref time.Time) int {
	n := 0
	for _, g := range games {
		if g == nil {
			continue
		}
		d := game.ParseDateAt(g.Date, ref)
		if d.IsZero() {
			continue
		}
		start, ok := starts[monthDayOf(d)]
		if !ok {
			continue
		}
		s := start
		g.ScheduledStart = &s
		n++
	}
	return n
}

// InjectFixtureStartTimes is InjectStartTimes for extracted fixtures.
func InjectFixtureStartTimes(fixtures []game.Scheduled, starts map[MonthDay]time.Time, ref time.Time) int {
	n := 0
	for i := range fixtures {
		d := game.ParseDateAt(fixtures[i].Date, ref)
		if d.IsZero() {
			continue
		}
		if start, ok := starts[monthDayOf(d)]; ok {
			s := start
			fixtures[i].ScheduledStart = &s
			n++
		}
	}
	return n
}

// GenerateICS exports games as an iCalendar feed with one event per game.
// Games without a known start are placed at 7 pm in loc. Final games carry
// their result in the description.
func GenerateICS(games []*game.Game, subject string, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//hockey-report//schedule//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(subject)))

	for _, g := range games {
		if g == nil {
			continue
		}
		start := startOf(g, loc, now)
		if start.IsZero() {
			continue
		}

		ics.WriteString("BEGIN:VEVENT\r\n")
		ics.WriteString(fmt.Sprintf("UID:%d@hockey-report\r\n", g.GameID))
		ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start.Add(gameDuration))))
		ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary(g, subject))))
		if desc := description(g); desc != "" {
			ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(desc)))
		}
		if g.GameReportURL != nil {
			ics.WriteString(fmt.Sprintf("URL:%s\r\n", *g.GameReportURL))
		}
		ics.WriteString("STATUS:CONFIRMED\r\n")
		ics.WriteString("TRANSP:OPAQUE\r\n")
		ics.WriteString("END:VEVENT\r\n")
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func startOf(g *game.Game, loc *time.Location, now time.Time) time.Time {
	if g.ScheduledStart != nil {
		return *g.ScheduledStart
	}
	d := game.ParseDateAt(g.Date, now)
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), defaultFaceoffHour, 0, 0, 0, loc)
}

func summary(g *game.Game, subject string) string {
	if game.ParseSide(g.Location) == game.SideAway {
		return fmt.Sprintf("%s at %s", subject, g.Opponent)
	}
	return fmt.Sprintf("%s vs %s", subject, g.Opponent)
}

func description(g *game.Game) string {
	var lines []string
	if g.Status == game.StatusFinal && g.Result != nil {
		lines = append(lines, fmt.Sprintf("Final: %s", *g.Result))
	} else if g.Status != "" {
		lines = append(lines, string(g.Status))
	}
	if g.GameReportURL != nil {
		lines = append(lines, fmt.Sprintf("Report: %s", *g.GameReportURL))
	}
	return strings.Join(lines, "\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes text values per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
