package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

var (
	_ GameStore = (*Storage)(nil)
	_ GameStore = (*PostgresStore)(nil)
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return s
}

func TestNewExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := New("~/hockey")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if want := filepath.Join(home, "hockey"); s.Dir() != want {
		t.Errorf("Dir() = %q, expected %q", s.Dir(), want)
	}
	if info, err := os.Stat(s.Dir()); err != nil || !info.IsDir() {
		t.Errorf("data directory was not created: %v", err)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	games, err := s.LoadSchedule()
	if err != nil {
		t.Fatalf("LoadSchedule on empty dir failed: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("expected an empty schedule, got %d games", len(games))
	}

	start := time.Date(2025, 10, 24, 23, 5, 0, 0, time.UTC)
	in := []*game.Game{
		{GameID: 3, Date: "Wed, Oct 29", Opponent: "South Carolina", Location: "Home", Status: game.StatusUpcoming},
		{
			GameID: 1, Date: "Fri, Oct 24", Opponent: "Atlanta", Location: "Home", ScheduledStart: &start,
			Status: game.StatusFinal, HomeScore: game.Int(4), AwayScore: game.Int(3),
			HomeGoals: []string{"A (B)"}, AwayGoals: []string{}, OvertimeType: game.OvertimeOT,
			Result: game.Str("W(OT) 4-3"),
		},
	}
	if err := s.SaveSchedule(in); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}
	if in[0].GameID != 3 {
		t.Error("SaveSchedule should not reorder its argument")
	}

	out, err := s.LoadGames(context.Background())
	if err != nil {
		t.Fatalf("LoadGames failed: %v", err)
	}
	if len(out) != 2 || out[0].GameID != 1 || out[1].GameID != 3 {
		t.Fatalf("expected games sorted by date, got %+v", out)
	}
	if out[0].ScheduledStart == nil || !out[0].ScheduledStart.Equal(start) {
		t.Errorf("scheduled start = %v", out[0].ScheduledStart)
	}
	if out[0].OvertimeType != game.OvertimeOT || *out[0].Result != "W(OT) 4-3" {
		t.Errorf("enrichment lost: %+v", out[0])
	}
	if out[1].HomeScore != nil || out[1].OvertimeType != game.OvertimeNone {
		t.Errorf("upcoming game gained fields: %+v", out[1])
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "schedule.json.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestGameIDs(t *testing.T) {
	s := newTestStorage(t)

	fixtures, err := s.LoadGameIDs()
	if err != nil || len(fixtures) != 0 {
		t.Fatalf("LoadGameIDs on empty dir = %v, %v", fixtures, err)
	}

	want := []game.Scheduled{
		{GameID: 25401, Date: "Fri, Oct 24", Opponent: "Atlanta", Location: "Home"},
		{GameID: 25410, Date: "Sat, Oct 25", Opponent: "Savannah", Location: "Away"},
	}
	if err := s.SaveGameIDs(want); err != nil {
		t.Fatalf("SaveGameIDs failed: %v", err)
	}

	got, err := s.LoadGameIDs()
	if err != nil {
		t.Fatalf("LoadGameIDs failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fixtures = %+v, expected %+v", got, want)
	}

	tests := []struct {
		name   string
		id     int
		wantOK bool
	}{
		{"existing fixture", 25410, true},
		{"unknown fixture", 99999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok, err := s.FindFixture(tt.id)
			if err != nil {
				t.Fatalf("FindFixture failed: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("found = %v, expected %v", ok, tt.wantOK)
			}
			if ok && f.GameID != tt.id {
				t.Errorf("fixture id = %d", f.GameID)
			}
		})
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := newTestStorage(t)
	if err := os.WriteFile(filepath.Join(s.Dir(), "schedule.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadSchedule(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestFindGame(t *testing.T) {
	games := []*game.Game{nil, {GameID: 1}, {GameID: 2}}
	if g, ok := FindGame(games, 2); !ok || g.GameID != 2 {
		t.Errorf("FindGame(2) = %v, %v", g, ok)
	}
	if _, ok := FindGame(games, 3); ok {
		t.Error("FindGame(3) should miss")
	}
}
