package game

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle state of a game as read from its report.
type Status string

const (
	StatusUnavailable Status = "Unavailable"
	StatusUpcoming    Status = "Upcoming"
	StatusLive        Status = "Live"
	StatusFinal       Status = "Final"
)

// OvertimeType classifies how a Final game was decided. The zero value means
// regulation and marshals as JSON null.
type OvertimeType string

const (
	OvertimeNone OvertimeType = ""
	OvertimeOT   OvertimeType = "OT"
	OvertimeSO   OvertimeType = "SO"
)

// MarshalJSON writes null for OvertimeNone.
func (o OvertimeType) MarshalJSON() ([]byte, error) {
	if o == OvertimeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(o))
}

// UnmarshalJSON accepts null, "", "OT" and "SO".
func (o *OvertimeType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OvertimeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = OvertimeType(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// Side is which bench a team occupies in a fixture.
type Side string

const (
	SideUnknown Side = ""
	SideHome    Side = "Home"
	SideAway    Side = "Away"
)

// ParseSide accepts "home"/"away" in any case.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return SideHome
	case "away", "visitor", "visiting":
		return SideAway
	default:
		return SideUnknown
	}
}

// Opposite returns the other side. SideUnknown stays unknown.
func (s Side) Opposite() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideUnknown
	}
}

// Scheduled is one fixture from the league schedule feed, seen from the
// subject team's point of view.
type Scheduled struct {
	GameID         int        `json:"game_id"`
	Date           string     `json:"date"`
	Opponent       string     `json:"opponent"`
	Location       string     `json:"location"` // "Home" or "Away"
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
}

// Side returns the subject team's side for this fixture.
func (s Scheduled) Side() Side {
	return ParseSide(s.Location)
}

// Diagnostics carries the non-fatal decisions made while parsing a report.
type Diagnostics struct {
	Notes         []string `json:"notes,omitempty"`
	GoalsParsed   int      `json:"goals_parsed"`
	GoalsExcluded int      `json:"goals_excluded"`
	GoalsFallback int      `json:"goals_fallback"`
}

// Note appends a diagnostic note.
func (d *Diagnostics) Note(msg string) {
	d.Notes = append(d.Notes, msg)
}

// EnrichedGame is the normalized summary of one official game report.
type EnrichedGame struct {
	GameID        int          `json:"game_id"`
	Status        Status       `json:"status"`
	HomeTeam      *string      `json:"home_team"`
	AwayTeam      *string      `json:"away_team"`
	HomeScore     *int         `json:"home_score"`
	AwayScore     *int         `json:"away_score"`
	HomeGoals     []string     `json:"home_goals"`
	AwayGoals     []string     `json:"away_goals"`
	OvertimeType  OvertimeType `json:"overtime_type"`
	Result        *string      `json:"result"`
	GameReportURL string       `json:"game_report_url"`
	Diagnostics   *Diagnostics `json:"diagnostics,omitempty"`
}

// Game is the persisted schedule record: the feed fields plus the latest
// enrichment of the report.
type Game struct {
	GameID         int          `json:"game_id"`
	Date           string       `json:"date"`
	Opponent       string       `json:"opponent"`
	Location       string       `json:"location"`
	ScheduledStart *time.Time   `json:"scheduled_start,omitempty"`
	Status         Status       `json:"status"`
	HomeTeam       *string      `json:"home_team,omitempty"`
	AwayTeam       *string      `json:"away_team,omitempty"`
	HomeScore      *int         `json:"home_score"`
	AwayScore      *int         `json:"away_score"`
	HomeGoals      []string     `json:"home_goals"`
	AwayGoals      []string     `json:"away_goals"`
	OvertimeType   OvertimeType `json:"overtime_type"`
	Result         *string      `json:"result"`
	GameReportURL  *string      `json:"game_report_url"`
}

// FromEnriched builds the persisted record for a scheduled fixture.
// A nil enrichment yields an Unavailable placeholder.
func FromEnriched(s Scheduled, e *EnrichedGame) *Game {
	g := &Game{
		GameID:         s.GameID,
		Date:           s.Date,
		Opponent:       s.Opponent,
		Location:       s.Location,
		ScheduledStart: s.ScheduledStart,
		Status:         StatusUnavailable,
	}
	if e == nil {
		return g
	}

	g.Status = e.Status
	g.HomeTeam = e.HomeTeam
	g.AwayTeam = e.AwayTeam
	g.HomeScore = e.HomeScore
	g.AwayScore = e.AwayScore
	g.HomeGoals = e.HomeGoals
	g.AwayGoals = e.AwayGoals
	g.OvertimeType = e.OvertimeType
	g.Result = e.Result
	if e.GameReportURL != "" {
		url := e.GameReportURL
		g.GameReportURL = &url
	}
	return g
}

// Scheduled returns the feed half of the record.
func (g *Game) Scheduled() Scheduled {
	return Scheduled{
		GameID:         g.GameID,
		Date:           g.Date,
		Opponent:       g.Opponent,
		Location:       g.Location,
		ScheduledStart: g.ScheduledStart,
	}
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}
