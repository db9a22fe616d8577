package notifier

import (
	"github.com/pfrederiksen/hockey-report/internal/game"
)

// Notifier defines the interface for announcing finished games
type Notifier interface {
	// Notify posts one message per game
	Notify(games []*game.Game) error
}
