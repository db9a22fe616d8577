package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructureError reports a located table whose rows do not have the expected shape.
type StructureError struct {
	Table  string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s table: %s", e.Table, e.Reason)
}

// ScoringRow is one team's line in the scoring summary.
type ScoringRow struct {
	TeamLabel    string
	PeriodScores []int
	OT           *int // nil when the game has no OT column or the cell is blank
	SO           *int // nil when the game has no SO column or the cell is blank
	Final        int
}

// scoringTable is the parsed scoring summary. The first data row is always
// the visiting team and the second the home team; labels are not consulted.
type scoringTable struct {
	Away        ScoringRow
	Home        ScoringRow
	HasOTColumn bool
	HasSOColumn bool
}

var (
	periodHeader = regexp.MustCompile(`^\d+$`)
	otHeader     = regexp.MustCompile(`(?i)^ot\d*$`)
	soHeader     = regexp.MustCompile(`(?i)^so$`)
)

// scoringColumns maps header positions to column roles.
type scoringColumns struct {
	header  []string
	periods []int
	ot      []int
	so      []int
}

func newScoringColumns(header []string) scoringColumns {
	cols := scoringColumns{header: header}
	for i, h := range header {
		switch {
		case periodHeader.MatchString(h):
			cols.periods = append(cols.periods, i)
		case otHeader.MatchString(h):
			cols.ot = append(cols.ot, i)
		case soHeader.MatchString(h):
			cols.so = append(cols.so, i)
		}
	}
	return cols
}

// rowIndex translates a header position into a position in a data row. The
// totals column is last in both, so rows of a different width are aligned
// on their right edge (a blank corner cell or a colspan shifts the left edge).
func (c scoringColumns) rowIndex(row []string, headerIdx int) int {
	return headerIdx + len(row) - len(c.header)
}

func (c scoringColumns) parseRow(cells []string) ScoringRow {
	row := ScoringRow{
		TeamLabel: cells[0],
		Final:     toInt(cells[len(cells)-1]),
	}
	for _, h := range c.periods {
		v, _ := cell(cells, c.rowIndex(cells, h))
		row.PeriodScores = append(row.PeriodScores, toInt(v))
	}
	row.OT = c.sumOptional(cells, c.ot)
	row.SO = c.sumOptional(cells, c.so)
	return row
}

// sumOptional adds the numeric cells found at the given header positions.
// Nil when none of them holds a number.
func (c scoringColumns) sumOptional(cells []string, headerIdx []int) *int {
	var total *int
	for _, h := range headerIdx {
		v, ok := cell(cells, c.rowIndex(cells, h))
		if !ok {
			continue
		}
		if n := toOptionalInt(v); n != nil {
			if total == nil {
				total = new(int)
			}
			*total += *n
		}
	}
	return total
}

// parseScoringTable extracts the away and home rows from a located scoring table.
func parseScoringTable(table *goquery.Selection) (*scoringTable, error) {
	rows := ownRows(table)
	headerIdx := totalsRowIndex(table)
	if headerIdx < 0 {
		return nil, &StructureError{Table: "scoring", Reason: "no totals header row"}
	}
	cols := newScoringColumns(cellTexts(rows[headerIdx]))

	var data [][]string
	for _, row := range rows[headerIdx+1:] {
		cells := cellTexts(row)
		if !isScoringDataRow(cells) {
			continue
		}
		data = append(data, cells)
		if len(data) == 2 {
			break
		}
	}

	if len(data) < 2 {
		return nil, &StructureError{
			Table:  "scoring",
			Reason: fmt.Sprintf("found %d team rows, need 2", len(data)),
		}
	}

	return &scoringTable{
		Away:        cols.parseRow(data[0]),
		Home:        cols.parseRow(data[1]),
		HasOTColumn: len(cols.ot) > 0,
		HasSOColumn: len(cols.so) > 0,
	}, nil
}

// isScoringDataRow skips spacer rows, repeated captions and repeated headers.
func isScoringDataRow(cells []string) bool {
	if len(cells) < 2 {
		return false
	}
	label := cells[0]
	if label == "" || strings.EqualFold(label, "scoring") {
		return false
	}
	if totalsHeader.MatchString(cells[len(cells)-1]) {
		return false
	}
	return hasNumber(cells[1:])
}
