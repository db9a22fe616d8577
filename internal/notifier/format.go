package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// Headline is the one-line result, e.g. "W(OT) 4-3 vs Atlanta" or
// "L 2-1 at Savannah". Games without a result read "Final vs Atlanta".
func Headline(g *game.Game) string {
	where := "vs"
	if game.ParseSide(g.Location) == game.SideAway {
		where = "at"
	}
	result := "Final"
	if g.Result != nil && *g.Result != "" {
		result = *g.Result
	}
	return fmt.Sprintf("%s %s %s", result, where, g.Opponent)
}

// FormatFinal formats a finished game as an HTML Telegram message.
func FormatFinal(g *game.Game, subject string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("🏒 <b>%s</b>\n", html.EscapeString(subject)))
	msg.WriteString(fmt.Sprintf("%s\n", html.EscapeString(Headline(g))))

	if g.Date != "" {
		msg.WriteString(fmt.Sprintf("📅 %s\n", html.EscapeString(g.Date)))
	}

	if goals := scorers(g); goals != "" {
		msg.WriteString("\n" + goals)
	}

	if g.GameReportURL != nil {
		msg.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">Official game report</a>", html.EscapeString(*g.GameReportURL)))
	}

	return strings.TrimRight(msg.String(), "\n")
}

// scorers lists the subject team's goals.
func scorers(g *game.Game) string {
	goals := g.HomeGoals
	if game.ParseSide(g.Location) == game.SideAway {
		goals = g.AwayGoals
	}
	if len(goals) == 0 {
		return ""
	}
	var b strings.Builder
	for _, goal := range goals {
		b.WriteString(fmt.Sprintf("🚨 %s\n", html.EscapeString(goal)))
	}
	return b.String()
}
