package game

import (
	"sort"
	"time"
)

// Merge overwrites existing records with fresh ones by game id and returns the
// combined schedule sorted by date. Neither input is modified.
func Merge(existing, fresh []*Game) []*Game {
	byID := make(map[int]*Game, len(existing)+len(fresh))
	for _, g := range existing {
		if g != nil {
			byID[g.GameID] = g
		}
	}
	for _, g := range fresh {
		if g != nil {
			byID[g.GameID] = g
		}
	}

	merged := make([]*Game, 0, len(byID))
	for _, g := range byID {
		merged = append(merged, g)
	}
	SortByDate(merged, time.Now())
	return merged
}

// SortByDate orders games chronologically. Games with unparseable dates go
// last, ordered by their raw date text and then game id.
func SortByDate(games []*Game, ref time.Time) {
	sort.SliceStable(games, func(i, j int) bool {
		return before(games[i], games[j], ref)
	})
}

func before(a, b *Game, ref time.Time) bool {
	da := ParseDateAt(a.Date, ref)
	db := ParseDateAt(b.Date, ref)

	switch {
	case !da.IsZero() && !db.IsZero():
		if !da.Equal(db) {
			return da.Before(db)
		}
	case !da.IsZero():
		return true
	case !db.IsZero():
		return false
	default:
		if a.Date != b.Date {
			return a.Date < b.Date
		}
	}
	return a.GameID < b.GameID
}

// NewlyFinal returns the games in current that are Final and were not Final
// in previous.
func NewlyFinal(previous, current []*Game) []*Game {
	wasFinal := make(map[int]bool, len(previous))
	for _, g := range previous {
		if g != nil && g.Status == StatusFinal {
			wasFinal[g.GameID] = true
		}
	}

	var out []*Game
	for _, g := range current {
		if g == nil || g.Status != StatusFinal || wasFinal[g.GameID] {
			continue
		}
		out = append(out, g)
	}
	return out
}
