package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
)

var testTeams = TeamRegistry{
	"Greenville":          "GVL",
	"Atlanta":             "ATL",
	"South Carolina":      "SC",
	"Savannah":            "SAV",
	"Jacksonville":        "JAX",
	"Jacksonville Icemen": "JAX",
}

func TestTeamRegistryCodeFor(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"Greenville Swamp Rabbits", "GVL", true},
		{"atlanta gladiators", "ATL", true},
		{"Jacksonville Icemen", "JAX", true},
		{"Orlando Solar Bears", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := testTeams.CodeFor(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("CodeFor(%q) = %q, %v; expected %q, %v", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseFallbackPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FallbackPolicy
		wantErr bool
	}{
		{"", FallbackBalance, false},
		{"balance", FallbackBalance, false},
		{" DROP ", FallbackDrop, false},
		{"guess", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFallbackPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFallbackPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFallbackPolicy(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSideResolverMatch(t *testing.T) {
	withRegistry := newSideResolver("Atlanta Gladiators", "Greenville Swamp Rabbits", testTeams, FallbackBalance)
	noRegistry := newSideResolver("Atlanta Gladiators", "Greenville Swamp Rabbits", nil, FallbackBalance)
	sameLetters := newSideResolver("Orlando Solar Bears", "Orlando Reign", nil, FallbackBalance)

	tests := []struct {
		name string
		r    sideResolver
		code string
		want game.Side
	}{
		{"registry away", withRegistry, "ATL", game.SideAway},
		{"registry home", withRegistry, "gvl", game.SideHome},
		{"registry unknown code", withRegistry, "GRE", game.SideUnknown},
		{"prefix of derived code", noRegistry, "ATL", game.SideAway},
		{"longer code with derived prefix", noRegistry, "GREE", game.SideHome},
		{"code inside label", noRegistry, "SWAMP", game.SideHome},
		{"initials", noRegistry, "GSR", game.SideHome},
		{"no match", noRegistry, "GVL", game.SideUnknown},
		{"empty code", noRegistry, "", game.SideUnknown},
		{"both sides match", sameLetters, "ORL", game.SideUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.match(tt.code); got != tt.want {
				t.Errorf("match(%q) = %q, expected %q", tt.code, got, tt.want)
			}
		})
	}
}

func goalEvents(codes ...string) []GoalEvent {
	events := make([]GoalEvent, len(codes))
	for i, c := range codes {
		events[i] = GoalEvent{TeamCode: c, Scorer: "Player " + c, Index: i}
	}
	return events
}

func TestAttributeFallbackToFewerGoals(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.LevelWarn, &buf)
	r := newSideResolver("Atlanta Gladiators", "Greenville Swamp Rabbits", testTeams, FallbackBalance)
	diag := &game.Diagnostics{}

	// Away has 2, home has 3 when the unknown code comes up.
	a := r.attribute(goalEvents("ATL", "GVL", "ATL", "GVL", "GVL", "XYZ"), diag, log)

	if len(a.away) != 3 || len(a.home) != 3 {
		t.Fatalf("away=%d home=%d, expected 3 and 3", len(a.away), len(a.home))
	}
	if a.away[2] != "Player XYZ (unassisted)" {
		t.Errorf("fallback goal = %q, expected it last in away goals", a.away[2])
	}
	if a.fallback != 1 || a.excluded != 0 {
		t.Errorf("fallback=%d excluded=%d", a.fallback, a.excluded)
	}
	if len(diag.Notes) != 1 || !strings.Contains(diag.Notes[0], "XYZ") {
		t.Errorf("notes = %v", diag.Notes)
	}
	if !strings.Contains(buf.String(), "Goal attributed by fallback") {
		t.Errorf("expected a fallback warning, got %q", buf.String())
	}
}

func TestAttributeFallbackTieGoesAway(t *testing.T) {
	r := newSideResolver("A", "B", nil, FallbackBalance)
	a := r.attribute(goalEvents("ZZZ", "ZZZ", "ZZZ"), &game.Diagnostics{}, logger.Discard())

	if len(a.away) != 2 || len(a.home) != 1 {
		t.Errorf("away=%d home=%d, expected 2 and 1", len(a.away), len(a.home))
	}
}

func TestAttributeDropPolicy(t *testing.T) {
	r := newSideResolver("Atlanta Gladiators", "Greenville Swamp Rabbits", testTeams, FallbackDrop)
	diag := &game.Diagnostics{}
	events := goalEvents("ATL", "XYZ", "GVL")

	a := r.attribute(events, diag, logger.Discard())

	if a.excluded != 1 {
		t.Errorf("excluded = %d, expected 1", a.excluded)
	}
	if got := len(a.away) + len(a.home) + a.excluded; got != len(events) {
		t.Errorf("attributed+excluded = %d, expected %d", got, len(events))
	}
	if len(diag.Notes) != 1 {
		t.Errorf("notes = %v", diag.Notes)
	}
}

func TestAttributeIsExhaustive(t *testing.T) {
	codes := []string{"ATL", "GVL", "", "XYZ", "SAV", "GVL", "ATL", "A"}
	for _, policy := range []FallbackPolicy{FallbackBalance, FallbackDrop} {
		t.Run(string(policy), func(t *testing.T) {
			r := newSideResolver("Atlanta Gladiators", "Greenville Swamp Rabbits", testTeams, policy)
			a := r.attribute(goalEvents(codes...), &game.Diagnostics{}, logger.Discard())
			if got := len(a.away) + len(a.home) + a.excluded; got != len(codes) {
				t.Errorf("attributed+excluded = %d, expected %d", got, len(codes))
			}
		})
	}
}

func TestResolveSubject(t *testing.T) {
	tests := []struct {
		name      string
		fragment  string
		known     game.Side
		want      game.Side
		wantNotes int
	}{
		{"home match", "greenville", game.SideUnknown, game.SideHome, 0},
		{"away match", "Atlanta", game.SideAway, game.SideAway, 0},
		{"disagrees with schedule", "Greenville", game.SideAway, game.SideHome, 1},
		{"matches neither", "Orlando", game.SideHome, game.SideUnknown, 1},
		{"matches both", "a", game.SideHome, game.SideUnknown, 1},
		{"no fragment uses context", "", game.SideAway, game.SideAway, 0},
		{"no fragment and no context", "", game.SideUnknown, game.SideUnknown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := &game.Diagnostics{}
			got := resolveSubject(tt.fragment, "Atlanta Gladiators", "Greenville Swamp Rabbits", tt.known, diag)
			if got != tt.want {
				t.Errorf("resolveSubject = %q, expected %q", got, tt.want)
			}
			if len(diag.Notes) != tt.wantNotes {
				t.Errorf("notes = %v, expected %d", diag.Notes, tt.wantNotes)
			}
		})
	}
}

func TestNewTeamKey(t *testing.T) {
	k := newTeamKey("St. John's Maple Leafs", nil)
	want := teamKey{label: "ST. JOHN'S MAPLE LEAFS", short: "STJ", initials: "SJML"}
	if !reflect.DeepEqual(k, want) {
		t.Errorf("newTeamKey = %+v, expected %+v", k, want)
	}
}
