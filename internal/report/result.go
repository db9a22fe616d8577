package report

import (
	"fmt"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// composeResult formats the subject team's result, e.g. "W 4-3" or
// "L(SO) 3-2". The higher score is always written first. It returns an
// empty string and a reason when no result can be given.
func composeResult(status game.Status, subject game.Side, home, away int, ot game.OvertimeType) (string, string) {
	if status != game.StatusFinal {
		return "", ""
	}
	if subject == game.SideUnknown {
		return "", "result omitted: subject side unresolved"
	}

	own, opp := home, away
	if subject == game.SideAway {
		own, opp = away, home
	}
	if own == opp {
		return "", fmt.Sprintf("result omitted: final score tied %d-%d", own, opp)
	}

	outcome := "L"
	if own > opp {
		outcome = "W"
	}
	if ot != game.OvertimeNone {
		outcome += "(" + string(ot) + ")"
	}
	return fmt.Sprintf("%s %d-%d", outcome, max(own, opp), min(own, opp)), ""
}
