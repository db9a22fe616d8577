package report

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

var (
	attemptResultHeader = regexp.MustCompile(`(?i)^(result|goal|scored)\??$`)
	successfulAttempt   = regexp.MustCompile(`(?i)^(goal|scored|yes|y|g|1)$`)
)

// classifyOvertime decides how a game was settled. Only Final games get a
// non-None classification.
//
// A shootout is recognized by a non-zero SO column, or by an SO column next
// to tied totals: reports often leave the SO cells at 0 and record the
// shootout only in the attempts table.
func classifyOvertime(status game.Status, st *scoringTable) game.OvertimeType {
	if status != game.StatusFinal || st == nil {
		return game.OvertimeNone
	}
	if deref(st.Away.SO)+deref(st.Home.SO) > 0 {
		return game.OvertimeSO
	}
	if st.HasSOColumn && st.Away.Final == st.Home.Final {
		return game.OvertimeSO
	}
	if deref(st.Away.OT)+deref(st.Home.OT) > 0 {
		return game.OvertimeOT
	}
	return game.OvertimeNone
}

// shootoutWinner determines who won the shootout. It tries the SO column
// values first, then the shootout attempts table. SideUnknown means the
// winner cannot be determined.
func shootoutWinner(st *scoringTable, attempts *goquery.Selection, r sideResolver) (game.Side, string) {
	if st.Away.SO != nil && st.Home.SO != nil && *st.Away.SO != *st.Home.SO {
		if *st.Away.SO > *st.Home.SO {
			return game.SideAway, "SO column"
		}
		return game.SideHome, "SO column"
	}

	if attempts != nil {
		away, home := countShootoutGoals(attempts, r)
		switch {
		case away > home:
			return game.SideAway, "shootout attempts"
		case home > away:
			return game.SideHome, "shootout attempts"
		}
	}
	return game.SideUnknown, ""
}

// countShootoutGoals tallies successful attempts per side.
func countShootoutGoals(table *goquery.Selection, r sideResolver) (away, home int) {
	rows := ownRows(table)
	teamCol, resultCol := 0, -1
	start := 0
	for i, row := range rows {
		cells := cellTexts(row)
		found := false
		for j, c := range cells {
			if teamHeader.MatchString(c) {
				teamCol, found = j, true
			} else if attemptResultHeader.MatchString(c) {
				resultCol, found = j, true
			}
		}
		if found {
			start = i + 1
			break
		}
	}

	for _, row := range rows[start:] {
		cells := cellTexts(row)
		if len(cells) < 2 {
			continue
		}
		col := resultCol
		if col < 0 {
			col = len(cells) - 1
		}
		result, ok := cell(cells, col)
		if !ok || !successfulAttempt.MatchString(result) {
			continue
		}
		code, _ := cell(cells, teamCol)
		switch r.match(code) {
		case game.SideAway:
			away++
		case game.SideHome:
			home++
		}
	}
	return away, home
}

// applyShootoutBonus credits the shootout winner with one goal. Totals that
// are no longer tied are left alone, so applying it twice is harmless.
func applyShootoutBonus(away, home int, winner game.Side) (int, int) {
	if away != home {
		return away, home
	}
	switch winner {
	case game.SideAway:
		away++
	case game.SideHome:
		home++
	}
	return away, home
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
