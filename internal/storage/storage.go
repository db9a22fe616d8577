package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

const (
	scheduleFile = "schedule.json"
	gameIDsFile  = "game_ids.json"
)

// GameStore loads and saves enriched schedule records.
type GameStore interface {
	LoadGames(ctx context.Context) ([]*game.Game, error)
	SaveGames(ctx context.Context, games []*game.Game) error
}

// Storage handles file persistence in a data directory.
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// LoadSchedule reads schedule.json. A missing file is an empty schedule.
func (s *Storage) LoadSchedule() ([]*game.Game, error) {
	games := []*game.Game{}
	if err := s.readJSON(scheduleFile, &games); err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	return games, nil
}

// SaveSchedule writes schedule.json sorted by date.
func (s *Storage) SaveSchedule(games []*game.Game) error {
	sorted := append([]*game.Game(nil), games...)
	game.SortByDate(sorted, time.Now())
	if err := s.writeJSON(scheduleFile, sorted); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	return nil
}

// LoadGameIDs reads game_ids.json. A missing file is an empty list.
func (s *Storage) LoadGameIDs() ([]game.Scheduled, error) {
	fixtures := []game.Scheduled{}
	if err := s.readJSON(gameIDsFile, &fixtures); err != nil {
		return nil, fmt.Errorf("loading game ids: %w", err)
	}
	return fixtures, nil
}

// SaveGameIDs writes game_ids.json.
func (s *Storage) SaveGameIDs(fixtures []game.Scheduled) error {
	if fixtures == nil {
		fixtures = []game.Scheduled{}
	}
	if err := s.writeJSON(gameIDsFile, fixtures); err != nil {
		return fmt.Errorf("saving game ids: %w", err)
	}
	return nil
}

// LoadGames implements GameStore on schedule.json.
func (s *Storage) LoadGames(_ context.Context) ([]*game.Game, error) {
	return s.LoadSchedule()
}

// SaveGames implements GameStore on schedule.json.
func (s *Storage) SaveGames(_ context.Context, games []*game.Game) error {
	return s.SaveSchedule(games)
}

// FindFixture returns the fixture with the given id from game_ids.json.
func (s *Storage) FindFixture(gameID int) (game.Scheduled, bool, error) {
	fixtures, err := s.LoadGameIDs()
	if err != nil {
		return game.Scheduled{}, false, err
	}
	for _, f := range fixtures {
		if f.GameID == gameID {
			return f, true, nil
		}
	}
	return game.Scheduled{}, false, nil
}

// FindGame returns the record with the given id.
func FindGame(games []*game.Game, gameID int) (*game.Game, bool) {
	for _, g := range games {
		if g != nil && g.GameID == gameID {
			return g, true
		}
	}
	return nil, false
}

func (s *Storage) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (s *Storage) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
