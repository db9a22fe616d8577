// Package storage persists the subject team's schedule.
//
// Storage keeps JSON files in a data directory: game_ids.json holds the
// fixtures extracted from the schedule feed and schedule.json the enriched
// records. PostgresStore keeps the enriched records in a games table. Both
// satisfy GameStore. The default data directory is ~/.local/share/hockey-report/.
package storage
