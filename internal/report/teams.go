package report

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
)

// TeamRegistry maps team names (or distinctive name fragments) to the codes
// used in goal summaries, e.g. "Greenville" -> "GVL".
type TeamRegistry map[string]string

// CodeFor returns the code of the longest registry name contained in label.
func (r TeamRegistry) CodeFor(label string) (string, bool) {
	lower := strings.ToLower(label)
	var best, code string
	for name, c := range r {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" || !strings.Contains(lower, n) {
			continue
		}
		if len(n) > len(best) || (len(n) == len(best) && c < code) {
			best, code = n, c
		}
	}
	if best == "" {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(code)), true
}

// FallbackPolicy decides what happens to a goal whose team code matches
// neither side, or both.
type FallbackPolicy string

const (
	// FallbackBalance credits the side with fewer goals so far, ties to away.
	// Best effort only: it keeps the goal lists complete but may be wrong.
	FallbackBalance FallbackPolicy = "balance"
	// FallbackDrop leaves the goal out of both lists.
	FallbackDrop FallbackPolicy = "drop"
)

// ParseFallbackPolicy accepts "balance" and "drop". Anything else is an error.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackBalance:
		return FallbackBalance, nil
	case FallbackDrop:
		return FallbackDrop, nil
	default:
		return "", fmt.Errorf("unknown fallback policy %q (want balance or drop)", s)
	}
}

// teamKey is what the resolver knows about one scoring row.
type teamKey struct {
	label    string
	code     string // from the registry, empty when unknown
	short    string // first letters of the label, upper-cased
	initials string
}

func newTeamKey(label string, teams TeamRegistry) teamKey {
	k := teamKey{label: strings.ToUpper(label)}
	k.code, _ = teams.CodeFor(label)

	letters := strings.ToUpper(nonLetters.ReplaceAllString(label, ""))
	if len(letters) > 3 {
		letters = letters[:3]
	}
	k.short = letters

	for _, word := range strings.Fields(label) {
		w := nonLetters.ReplaceAllString(word, "")
		if w != "" {
			k.initials += strings.ToUpper(w[:1])
		}
	}
	return k
}

// matchesHeuristic applies the derived-abbreviation tests used when the
// registry has no code for this team.
func (k teamKey) matchesHeuristic(code string) bool {
	if code == "" {
		return false
	}
	if k.short != "" && strings.HasPrefix(code, k.short) {
		return true
	}
	if len(code) >= 2 && strings.Contains(k.label, code) {
		return true
	}
	return len(k.initials) >= 2 && k.initials == code
}

// sideResolver maps goal-table team codes onto the two scoring rows.
type sideResolver struct {
	away   teamKey
	home   teamKey
	policy FallbackPolicy
}

func newSideResolver(awayLabel, homeLabel string, teams TeamRegistry, policy FallbackPolicy) sideResolver {
	if policy == "" {
		policy = FallbackBalance
	}
	return sideResolver{
		away:   newTeamKey(awayLabel, teams),
		home:   newTeamKey(homeLabel, teams),
		policy: policy,
	}
}

// match returns the side a code belongs to, or SideUnknown when the code
// matches neither side or both.
func (r sideResolver) match(code string) game.Side {
	code = strings.ToUpper(strings.TrimSpace(code))

	awayExact := r.away.code != "" && r.away.code == code
	homeExact := r.home.code != "" && r.home.code == code
	switch {
	case awayExact && !homeExact:
		return game.SideAway
	case homeExact && !awayExact:
		return game.SideHome
	case awayExact && homeExact:
		return game.SideUnknown
	}

	awayMatch := r.away.code == "" && r.away.matchesHeuristic(code)
	homeMatch := r.home.code == "" && r.home.matchesHeuristic(code)
	switch {
	case awayMatch && !homeMatch:
		return game.SideAway
	case homeMatch && !awayMatch:
		return game.SideHome
	default:
		return game.SideUnknown
	}
}

// attribution is the outcome of assigning every goal event to a side.
type attribution struct {
	away     []string
	home     []string
	excluded int
	fallback int
}

// attribute assigns events to sides in document order. Every event ends up
// in exactly one list or is counted as excluded; both fallback paths leave a
// diagnostic note.
func (r sideResolver) attribute(events []GoalEvent, diag *game.Diagnostics, log *logger.Logger) attribution {
	a := attribution{away: []string{}, home: []string{}}
	for _, ev := range events {
		side := r.match(ev.TeamCode)
		if side == game.SideUnknown {
			side = r.fallback(a)
			fields := logger.Fields{
				"team_code":  ev.TeamCode,
				"goal_index": ev.Index,
				"scorer":     ev.Scorer,
				"policy":     string(r.policy),
			}
			if side == game.SideUnknown {
				a.excluded++
				diag.Note(fmt.Sprintf("goal %d (%s): team code %q unresolved, excluded", ev.Index+1, ev.Scorer, ev.TeamCode))
				log.Warn("Goal excluded: team code unresolved", fields)
				continue
			}
			a.fallback++
			fields["side"] = string(side)
			diag.Note(fmt.Sprintf("goal %d (%s): team code %q unresolved, credited to %s side with fewer goals",
				ev.Index+1, ev.Scorer, ev.TeamCode, strings.ToLower(string(side))))
			log.Warn("Goal attributed by fallback", fields)
		}

		if side == game.SideAway {
			a.away = append(a.away, ev.Description())
		} else {
			a.home = append(a.home, ev.Description())
		}
	}
	return a
}

func (r sideResolver) fallback(a attribution) game.Side {
	if r.policy == FallbackDrop {
		return game.SideUnknown
	}
	if len(a.away) <= len(a.home) {
		return game.SideAway
	}
	return game.SideHome
}

// resolveSubject finds the subject team's side. With a name fragment it must
// match exactly one scoring label; without one the caller's side is used.
func resolveSubject(fragment string, awayLabel, homeLabel string, known game.Side, diag *game.Diagnostics) game.Side {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		if known == game.SideUnknown {
			diag.Note("subject side unknown: no subject team configured and no side in context")
		}
		return known
	}

	inAway := strings.Contains(strings.ToLower(awayLabel), fragment)
	inHome := strings.Contains(strings.ToLower(homeLabel), fragment)

	var side game.Side
	switch {
	case inAway && !inHome:
		side = game.SideAway
	case inHome && !inAway:
		side = game.SideHome
	default:
		diag.Note(fmt.Sprintf("subject team %q matches %s scoring rows", fragment, matchCount(inAway, inHome)))
		return game.SideUnknown
	}

	if known != game.SideUnknown && known != side {
		diag.Note(fmt.Sprintf("subject is %s in report but %s in schedule", strings.ToLower(string(side)), strings.ToLower(string(known))))
	}
	return side
}

func matchCount(a, b bool) string {
	if a && b {
		return "both"
	}
	return "neither of the"
}
