package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// DigestThreshold is the most games announced one message each. Larger
// batches, such as the first run of a season, become a single digest.
const DigestThreshold = 3

// Record counts results in the usual standings form.
type Record struct {
	Wins, Losses, OvertimeLosses int
}

func (r Record) String() string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.OvertimeLosses)
}

// RecordOf tallies the results of games. Games without a result are skipped.
func RecordOf(games []*game.Game) Record {
	var r Record
	for _, g := range games {
		if g == nil || g.Result == nil {
			continue
		}
		switch res := *g.Result; {
		case strings.HasPrefix(res, "W"):
			r.Wins++
		case strings.HasPrefix(res, "L(OT)"), strings.HasPrefix(res, "L(SO)"):
			r.OvertimeLosses++
		case strings.HasPrefix(res, "L"):
			r.Losses++
		}
	}
	return r
}

// FormatDigest formats a batch of finished games as one HTML message.
func FormatDigest(games []*game.Game, subject string) string {
	if len(games) == 0 {
		return "No new results."
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("🏒 <b>%s</b>\n", html.EscapeString(subject)))
	msg.WriteString(fmt.Sprintf("📬 %d new result%s • %s\n\n", len(games), pluralize(len(games)), RecordOf(games)))

	for _, g := range games {
		msg.WriteString("  • ")
		if g.Date != "" {
			msg.WriteString(html.EscapeString(g.Date) + ": ")
		}
		msg.WriteString(html.EscapeString(Headline(g)) + "\n")
	}
	return strings.TrimRight(msg.String(), "\n")
}

// Messages renders what a notifier posts for games: one message per game,
// or a single digest above DigestThreshold.
func Messages(games []*game.Game, subject string) []string {
	if len(games) == 0 {
		return nil
	}
	if len(games) > DigestThreshold {
		return []string{FormatDigest(games, subject)}
	}
	msgs := make([]string, len(games))
	for i, g := range games {
		msgs[i] = FormatFinal(g, subject)
	}
	return msgs
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
