package report

import (
	"testing"
	"time"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

func TestInferStatus(t *testing.T) {
	now := time.Date(2025, time.November, 8, 20, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	tests := []struct {
		name     string
		signals  statusSignals
		want     game.Status
		wantRule string
	}{
		{
			name:     "empty document",
			signals:  statusSignals{Empty: true, HasScoring: true, GameLength: "2:30"},
			want:     game.StatusUnavailable,
			wantRule: "empty document",
		},
		{
			name:     "not available",
			signals:  statusSignals{NotAvailable: true, FinalToken: true},
			want:     game.StatusUnavailable,
			wantRule: "not available marker",
		},
		{
			name:     "no scoring summary",
			signals:  statusSignals{FinalToken: true, ScheduledStart: at(-time.Hour)},
			want:     game.StatusUpcoming,
			wantRule: "no scoring summary",
		},
		{
			name:     "game length",
			signals:  statusSignals{HasScoring: true, GameLength: "2:31", ScheduledStart: at(time.Hour)},
			want:     game.StatusFinal,
			wantRule: "game length recorded",
		},
		{
			name:     "zero game length is not final",
			signals:  statusSignals{HasScoring: true, GameLength: "0:00"},
			want:     game.StatusUpcoming,
			wantRule: "no data",
		},
		{
			name:     "game end",
			signals:  statusSignals{HasScoring: true, GameEnd: "9:31 pm"},
			want:     game.StatusFinal,
			wantRule: "game end recorded",
		},
		{
			name:     "placeholder game end",
			signals:  statusSignals{HasScoring: true, GameEnd: "-", HasData: true},
			want:     game.StatusLive,
			wantRule: "scores without final marker",
		},
		{
			name:     "final token",
			signals:  statusSignals{HasScoring: true, FinalToken: true},
			want:     game.StatusFinal,
			wantRule: "final marker",
		},
		{
			name:     "yesterday with scores",
			signals:  statusSignals{HasScoring: true, HasData: true, ScheduledStart: at(-24 * time.Hour)},
			want:     game.StatusFinal,
			wantRule: "scheduled day passed with scores",
		},
		{
			name:     "yesterday without scores",
			signals:  statusSignals{HasScoring: true, ScheduledStart: at(-24 * time.Hour)},
			want:     game.StatusLive,
			wantRule: "scheduled start passed",
		},
		{
			name:     "started today",
			signals:  statusSignals{HasScoring: true, HasData: true, ScheduledStart: at(-time.Hour)},
			want:     game.StatusLive,
			wantRule: "scheduled start passed",
		},
		{
			name:     "starts later",
			signals:  statusSignals{HasScoring: true, HasData: true, ScheduledStart: at(time.Hour)},
			want:     game.StatusUpcoming,
			wantRule: "scheduled start ahead",
		},
		{
			name:     "data without start or final marker",
			signals:  statusSignals{HasScoring: true, HasData: true},
			want:     game.StatusLive,
			wantRule: "scores without final marker",
		},
		{
			name:     "nothing",
			signals:  statusSignals{HasScoring: true},
			want:     game.StatusUpcoming,
			wantRule: "no data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.signals.Now = now
			got, rule := inferStatus(tt.signals)
			if got != tt.want {
				t.Errorf("status = %s, expected %s", got, tt.want)
			}
			if rule != tt.wantRule {
				t.Errorf("rule = %q, expected %q", rule, tt.wantRule)
			}
		})
	}
}

func TestHasFinalToken(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Final Score 4-3", true},
		{"FINAL", true},
		{"Final: game report not available", false},
		{"Final report not available. Final", true},
		{"Finalists", false},
		{"Game Status Final 3", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := hasFinalToken(tt.text); got != tt.want {
				t.Errorf("hasFinalToken(%q) = %v, expected %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in        string
		hour, min int
		ok        bool
	}{
		{"7:05 pm", 19, 5, true},
		{"7:05PM EDT", 19, 5, true},
		{"12:00 pm", 12, 0, true},
		{"12:30 a.m.", 0, 30, true},
		{"19:35", 19, 35, true},
		{"TBD", 0, 0, false},
		{"", 0, 0, false},
		{"25:00", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, ok := parseClockTime(tt.in)
			if ok != tt.ok || h != tt.hour || m != tt.min {
				t.Errorf("parseClockTime(%q) = %d, %d, %v; expected %d, %d, %v", tt.in, h, m, ok, tt.hour, tt.min, tt.ok)
			}
		})
	}
}

func TestScheduledStart(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	now := time.Date(2025, time.December, 1, 12, 0, 0, 0, loc)

	explicit := time.Date(2025, time.November, 8, 19, 0, 0, 0, loc)
	got := scheduledStart(Context{ScheduledStart: &explicit, Date: "Fri, Oct 24"}, nil, loc, now)
	if got == nil || !got.Equal(explicit) {
		t.Errorf("explicit start = %v, expected %v", got, explicit)
	}

	got = scheduledStart(Context{Date: "Fri, Oct 24"}, map[string]string{"Game Start": "7:05 pm EDT"}, loc, now)
	want := time.Date(2025, time.October, 24, 19, 5, 0, 0, loc)
	if got == nil || !got.Equal(want) {
		t.Errorf("derived start = %v, expected %v", got, want)
	}

	got = scheduledStart(Context{Date: "Sat, Jan 10"}, map[string]string{"Game Start": "3:05 pm"}, loc, now)
	want = time.Date(2026, time.January, 10, 15, 5, 0, 0, loc)
	if got == nil || !got.Equal(want) {
		t.Errorf("january start = %v, expected %v", got, want)
	}

	if got := scheduledStart(Context{Date: "Fri, Oct 24"}, map[string]string{}, loc, now); got != nil {
		t.Errorf("expected nil without a Game Start time, got %v", got)
	}
	if got := scheduledStart(Context{}, map[string]string{"Game Start": "7:05 pm"}, loc, now); got != nil {
		t.Errorf("expected nil without a date, got %v", got)
	}
}

func TestDayBeforeUsesStartLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	start := time.Date(2025, time.November, 8, 19, 0, 0, 0, loc)

	// 01:00 UTC on the 9th is still the 8th in EST.
	sameEvening := time.Date(2025, time.November, 9, 1, 0, 0, 0, time.UTC)
	if dayBefore(start, sameEvening) {
		t.Error("expected same calendar day in the start's location")
	}

	nextDay := time.Date(2025, time.November, 9, 6, 0, 0, 0, time.UTC)
	if !dayBefore(start, nextDay) {
		t.Error("expected the start day to have passed")
	}
}

func TestNotAvailableMarker(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"This game is not available.", true},
		{"THIS GAME IS NOT AVAILABLE", true},
		{"Highlight video not available", false},
		{"Final Score 4-3", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := notAvailable.MatchString(tt.text); got != tt.want {
				t.Errorf("notAvailable(%q) = %v, expected %v", tt.text, got, tt.want)
			}
		})
	}
}
