package report

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GoalEvent is one scoring play from the goal summary, in document order.
type GoalEvent struct {
	TeamCode string
	Scorer   string
	Assists  []string
	Index    int
}

// Description formats the event as "Scorer (A1, A2)" or "Scorer (unassisted)".
func (g GoalEvent) Description() string {
	if len(g.Assists) == 0 {
		return g.Scorer + " (unassisted)"
	}
	return g.Scorer + " (" + strings.Join(g.Assists, ", ") + ")"
}

const maxAssists = 2

// Column offsets of the common report layout:
// # | Per | Time | Team | Str | Goal | Assist | Assist
const (
	defaultTeamCol   = 3
	defaultScorerCol = 5
	defaultAssistCol = 6
)

var teamHeader = regexp.MustCompile(`(?i)\bteam\b`)

type goalColumns struct {
	team    int
	scorer  int
	assists []int
}

// newGoalColumns reads column roles from the header row, keeping the default
// offset for any role the header does not label.
func newGoalColumns(header []string) goalColumns {
	cols := goalColumns{team: -1, scorer: -1}
	for i, h := range header {
		switch {
		case assistHeader.MatchString(h):
			cols.assists = append(cols.assists, i)
		case cols.scorer < 0 && goalHeader.MatchString(h):
			cols.scorer = i
		case cols.team < 0 && teamHeader.MatchString(h):
			cols.team = i
		}
	}
	if cols.team < 0 {
		cols.team = defaultTeamCol
	}
	if cols.scorer < 0 {
		cols.scorer = defaultScorerCol
	}
	if len(cols.assists) == 0 {
		cols.assists = []int{defaultAssistCol}
	}
	return cols
}

// minCells is the row width needed to hold every required column. Assist
// columns past the first are optional.
func (c goalColumns) minCells() int {
	n := c.team
	if c.scorer > n {
		n = c.scorer
	}
	if c.assists[0] > n {
		n = c.assists[0]
	}
	return n + 1
}

// parseGoalTable extracts goal events from a located goal table. Rows that
// are too short, repeat the header, or name no scorer are skipped.
func parseGoalTable(table *goquery.Selection) []GoalEvent {
	rows := ownRows(table)
	if len(rows) == 0 {
		return nil
	}

	// Without a recognizable header row every row is a candidate and the
	// default offsets apply.
	var header []string
	headerIdx := goalHeaderIndex(table)
	if headerIdx >= 0 {
		header = cellTexts(rows[headerIdx])
	}
	cols := newGoalColumns(header)

	var events []GoalEvent
	for _, row := range rows[headerIdx+1:] {
		cells := cellTexts(row)
		if len(cells) < cols.minCells() || isHeaderRepeat(cells, header, cols) {
			continue
		}

		scorer := stripParenthetical(cells[cols.scorer])
		if scorer == "" {
			continue
		}

		events = append(events, GoalEvent{
			TeamCode: strings.ToUpper(cleanText(cells[cols.team])),
			Scorer:   scorer,
			Assists:  readAssists(cells, cols.assists),
			Index:    len(events),
		})
	}
	return events
}

func isHeaderRepeat(cells, header []string, cols goalColumns) bool {
	scorer := cells[cols.scorer]
	if h, ok := cell(header, cols.scorer); ok && h != "" && strings.EqualFold(scorer, h) {
		return true
	}
	return goalHeader.MatchString(scorer) && strings.EqualFold(scorer, strings.TrimSpace(goalHeader.FindString(scorer)))
}

func readAssists(cells []string, idx []int) []string {
	var names []string
	for _, i := range idx {
		v, ok := cell(cells, i)
		if !ok {
			continue
		}
		for _, part := range strings.Split(v, ",") {
			name := stripParenthetical(part)
			if name == "" || strings.EqualFold(name, "unassisted") {
				continue
			}
			names = append(names, name)
			if len(names) == maxAssists {
				return names
			}
		}
	}
	return names
}
