package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	leadingInt  = regexp.MustCompile(`^-?\d+`)
	nonLetters  = regexp.MustCompile(`[^A-Za-z]`)
	parenthesis = regexp.MustCompile(`\s*\(.*?\)`)
)

// cleanText replaces non-breaking spaces, collapses runs of whitespace and trims.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// nodeText is the cleaned text of sel with a space between text nodes, so
// neighbouring cells read as separate words.
func nodeText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				parts = append(parts, c.Text())
			case "#comment", "script", "style":
			default:
				walk(c)
			}
		})
	}
	walk(sel)
	return cleanText(strings.Join(parts, " "))
}

// toInt reads the leading integer of a cell. Anything else counts as zero.
func toInt(s string) int {
	n, _ := parseInt(s)
	return n
}

// toOptionalInt is toInt for optional columns: empty or non-numeric cells are absent.
func toOptionalInt(s string) *int {
	n, ok := parseInt(s)
	if !ok {
		return nil
	}
	return &n
}

func parseInt(s string) (int, bool) {
	m := leadingInt.FindString(cleanText(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func hasNumber(cells []string) bool {
	for _, c := range cells {
		if _, ok := parseInt(c); ok {
			return true
		}
	}
	return false
}

// ownRows returns the rows that belong to table itself, not to tables nested in it.
func ownRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Closest("table").IsSelection(table) {
			rows = append(rows, row)
		}
	})
	return rows
}

// cellTexts returns the cleaned text of a row's direct td/th children.
func cellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td, th")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, cleanText(c.Text()))
	})
	return out
}

// cell is an index-guarded lookup.
func cell(cells []string, i int) (string, bool) {
	if i < 0 || i >= len(cells) {
		return "", false
	}
	return cells[i], true
}

// stripParenthetical keeps everything before the first "(".
func stripParenthetical(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return cleanText(s)
}
