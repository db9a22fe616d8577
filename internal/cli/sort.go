package cli

import (
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate     SortOrder = "date"
	SortByOpponent SortOrder = "opponent"
	SortByStatus   SortOrder = "status"
)

// statusRank orders finished games first.
var statusRank = map[game.Status]int{
	game.StatusFinal:       0,
	game.StatusLive:        1,
	game.StatusUpcoming:    2,
	game.StatusUnavailable: 3,
}

// sortGames sorts games based on the specified sort order
func sortGames(games []*game.Game, sortOrder SortOrder, ref time.Time) {
	switch sortOrder {
	case SortByDate:
		game.SortByDate(games, ref)
	case SortByOpponent:
		game.SortByDate(games, ref)
		sort.SliceStable(games, func(i, j int) bool {
			return strings.ToLower(games[i].Opponent) < strings.ToLower(games[j].Opponent)
		})
	case SortByStatus:
		game.SortByDate(games, ref)
		sort.SliceStable(games, func(i, j int) bool {
			return rank(games[i].Status) < rank(games[j].Status)
		})
	}
}

func rank(s game.Status) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank)
}

func parseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortByDate, SortByOpponent, SortByStatus:
		return o, true
	}
	return "", false
}
