// Package game defines the records shared by the report parser, the schedule
// feed and the persistence layer.
//
// A Scheduled fixture comes from the league feed, an EnrichedGame from parsing
// the game's official report, and a Game is the stored combination of both.
// The package also parses the feed's loose date strings and merges snapshots
// by game id.
package game
