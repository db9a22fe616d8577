package report

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tableRule is one way of recognizing a table by its content. Rules for the
// same table kind are tried in order; the first rule with a match wins.
type tableRule struct {
	name  string
	match func(table *goquery.Selection) bool
}

var (
	totalsHeader  = regexp.MustCompile(`(?i)^(t|tot|total|totals)$`)
	goalHeader    = regexp.MustCompile(`(?i)\b(goals?|scorer)\b`)
	assistHeader  = regexp.MustCompile(`(?i)\bassists?\b`)
	goalMarker    = regexp.MustCompile(`(?i)\bgoals?\b`)
	assistMarker  = regexp.MustCompile(`(?i)\bassists?\b`)
	shootoutLabel = regexp.MustCompile(`(?i)\bshoot-?outs?\b`)
)

var scoringRules = []tableRule{
	{
		name: "SCORING caption with totals column",
		match: func(t *goquery.Selection) bool {
			return strings.Contains(nodeText(t), "SCORING") && totalsRowIndex(t) >= 0
		},
	},
	{
		name: "scoring caption (any case) with totals column",
		match: func(t *goquery.Selection) bool {
			text := strings.ToLower(nodeText(t))
			return strings.Contains(text, "scoring") &&
				!strings.Contains(text, "shots") &&
				totalsRowIndex(t) >= 0
		},
	},
}

var goalRules = []tableRule{
	{
		name: "header row with goal and assist columns",
		match: func(t *goquery.Selection) bool {
			return goalHeaderIndex(t) >= 0
		},
	},
	{
		name: "goals and assists markers in text",
		match: func(t *goquery.Selection) bool {
			text := nodeText(t)
			return goalMarker.MatchString(text) && assistMarker.MatchString(text)
		},
	},
}

var shootoutRules = []tableRule{
	{
		name: "shootout caption",
		match: func(t *goquery.Selection) bool {
			return shootoutLabel.MatchString(nodeText(t)) && len(ownRows(t)) >= 2
		},
	},
}

// locateScoringTable finds the per-period scoring summary. Nil means the
// report has no published scoring summary yet.
func locateScoringTable(doc *goquery.Document) (*goquery.Selection, string) {
	return locate(doc, scoringRules)
}

// locateGoalTable finds the goal-by-goal summary. Nil means no goals recorded.
func locateGoalTable(doc *goquery.Document) (*goquery.Selection, string) {
	return locate(doc, goalRules)
}

// locateShootoutTable finds the shootout attempts table, if any.
func locateShootoutTable(doc *goquery.Document) (*goquery.Selection, string) {
	return locate(doc, shootoutRules)
}

// locate applies rules in priority order and returns the first innermost
// matching table together with the name of the rule that found it. Report
// pages nest layout tables, so an outer table that matches only because it
// contains the real one is skipped.
func locate(doc *goquery.Document, rules []tableRule) (*goquery.Selection, string) {
	for _, rule := range rules {
		var found *goquery.Selection
		doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
			if !rule.match(t) {
				return true
			}
			if t.Find("table").FilterFunction(func(_ int, inner *goquery.Selection) bool {
				return rule.match(inner)
			}).Length() > 0 {
				return true
			}
			found = t
			return false
		})
		if found != nil {
			return found, rule.name
		}
	}
	return nil, ""
}

// totalsRowIndex returns the index of the first own row carrying a totals
// column label, or -1.
func totalsRowIndex(table *goquery.Selection) int {
	for i, row := range ownRows(table) {
		for _, c := range cellTexts(row) {
			if totalsHeader.MatchString(c) {
				return i
			}
		}
	}
	return -1
}

// goalHeaderIndex returns the index of the first own row that labels both a
// goal/scorer column and an assist column, or -1.
func goalHeaderIndex(table *goquery.Selection) int {
	for i, row := range ownRows(table) {
		var hasGoal, hasAssist bool
		for _, c := range cellTexts(row) {
			if assistHeader.MatchString(c) {
				hasAssist = true
			} else if goalHeader.MatchString(c) {
				hasGoal = true
			}
		}
		if hasGoal && hasAssist {
			return i
		}
	}
	return -1
}

var metaLabels = []string{"Game Start", "Game End", "Game Length"}

var inlineMeta = regexp.MustCompile(`(?i)^(game start|game end|game length)\s*:\s*(.*)$`)

// readMeta collects the Game Start / Game End / Game Length values. They show
// up either as label/value cell pairs or as "Label: value" inside one cell.
func readMeta(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := leafCellTexts(row)
		for i, c := range cells {
			if m := inlineMeta.FindStringSubmatch(c); m != nil && strings.TrimSpace(m[2]) != "" {
				setMeta(meta, m[1], m[2])
				continue
			}
			label := strings.TrimSpace(strings.TrimSuffix(c, ":"))
			for _, known := range metaLabels {
				if strings.EqualFold(label, known) {
					if v, ok := cell(cells, i+1); ok {
						setMeta(meta, known, v)
					}
				}
			}
		}
	})
	return meta
}

// leafCellTexts is cellTexts with cells that wrap a nested table blanked out,
// so layout rows do not swallow the text of the tables inside them.
func leafCellTexts(row *goquery.Selection) []string {
	var out []string
	row.ChildrenFiltered("td, th").Each(func(_ int, c *goquery.Selection) {
		if c.Find("table").Length() > 0 {
			out = append(out, "")
			return
		}
		out = append(out, cleanText(c.Text()))
	})
	return out
}

func setMeta(meta map[string]string, label, value string) {
	for _, known := range metaLabels {
		if strings.EqualFold(label, known) {
			label = known
		}
	}
	if _, exists := meta[label]; exists {
		return
	}
	meta[label] = cleanText(value)
}
