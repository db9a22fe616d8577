package game

import (
	"regexp"
	"strings"
	"time"
)

var (
	weekdayPrefix = regexp.MustCompile(`^(?i)(mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)[a-z]*\.?,?\s+`)
	spaces        = regexp.MustCompile(`\s+`)
)

// Layouts tried after normalization. Those without a year get the season year.
var (
	datedLayouts = []string{
		"2006-01-02",
		"Jan 2 2006",
		"Jan 2, 2006",
		"January 2 2006",
		"January 2, 2006",
		"01/02/2006",
		"1/2/2006",
	}
	undatedLayouts = []string{
		"Jan 2",
		"January 2",
		"1/2",
	}
)

// ParseDate parses a schedule date such as "Fri, Oct 24", "Oct. 24" or
// "Oct 24, 2025". Returns time.Time{} if the text cannot be parsed.
func ParseDate(dateText string) time.Time {
	return ParseDateAt(dateText, time.Now())
}

// ParseDateAt is ParseDate with an explicit reference time. Dates without a
// year are placed in the hockey season containing ref: August through
// December belong to the season's first year, January through July to the next.
func ParseDateAt(dateText string, ref time.Time) time.Time {
	text := normalizeDate(dateText)
	if text == "" {
		return time.Time{}
	}

	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	for _, layout := range undatedLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		year := SeasonStartYear(ref)
		if t.Month() < time.August {
			year++
		}
		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}
}

// SeasonStartYear returns the calendar year in which the season containing t began.
func SeasonStartYear(t time.Time) int {
	if t.Month() >= time.August {
		return t.Year()
	}
	return t.Year() - 1
}

// SameMonthDay reports whether t falls on the given month and day.
func SameMonthDay(t time.Time, month time.Month, day int) bool {
	return t.Month() == month && t.Day() == day
}

func normalizeDate(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	s = weekdayPrefix.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, " ,", ",")
	s = spaces.ReplaceAllString(strings.TrimSpace(s), " ")
	// "Sept" is common in feeds but unknown to the time package.
	if strings.HasPrefix(strings.ToLower(s), "sept ") {
		s = "Sep" + s[4:]
	}
	return s
}
