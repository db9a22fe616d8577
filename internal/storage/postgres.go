package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/pfrederiksen/hockey-report/internal/game"
)

const createGamesTable = `
	CREATE TABLE IF NOT EXISTS games (
		game_id         INTEGER PRIMARY KEY,
		game_date       TEXT NOT NULL,
		opponent        TEXT NOT NULL,
		location        TEXT NOT NULL,
		scheduled_start TIMESTAMPTZ,
		status          TEXT NOT NULL,
		home_team       TEXT,
		away_team       TEXT,
		home_score      INTEGER,
		away_score      INTEGER,
		home_goals      JSONB NOT NULL DEFAULT '[]',
		away_goals      JSONB NOT NULL DEFAULT '[]',
		overtime_type   TEXT,
		result          TEXT,
		game_report_url TEXT,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

const upsertGame = `
	INSERT INTO games (game_id, game_date, opponent, location, scheduled_start, status,
		home_team, away_team, home_score, away_score, home_goals, away_goals,
		overtime_type, result, game_report_url, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
	ON CONFLICT (game_id) DO UPDATE SET
		game_date = EXCLUDED.game_date,
		opponent = EXCLUDED.opponent,
		location = EXCLUDED.location,
		scheduled_start = EXCLUDED.scheduled_start,
		status = EXCLUDED.status,
		home_team = EXCLUDED.home_team,
		away_team = EXCLUDED.away_team,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		home_goals = EXCLUDED.home_goals,
		away_goals = EXCLUDED.away_goals,
		overtime_type = EXCLUDED.overtime_type,
		result = EXCLUDED.result,
		game_report_url = EXCLUDED.game_report_url,
		updated_at = NOW()
`

const selectGames = `
	SELECT game_id, game_date, opponent, location, scheduled_start, status,
		home_team, away_team, home_score, away_score, home_goals, away_goals,
		overtime_type, result, game_report_url
	FROM games
`

// PostgresStore keeps enriched records in PostgreSQL.
type PostgresStore struct {
	conn *sql.DB
}

// NewPostgresStore opens and pings the database.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{conn: db}, nil
}

// Close closes the database connection
func (p *PostgresStore) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Migrate creates the games table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.conn.ExecContext(ctx, createGamesTable); err != nil {
		return fmt.Errorf("creating games table: %w", err)
	}
	return nil
}

// SaveGames upserts every record by game id in one transaction.
func (p *PostgresStore) SaveGames(ctx context.Context, games []*game.Game) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertGame)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, g := range games {
		if g == nil {
			continue
		}
		row, err := toRow(g)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row.args()...); err != nil {
			return fmt.Errorf("saving game %d: %w", g.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing games: %w", err)
	}
	return nil
}

// LoadGames returns every record sorted by date.
func (p *PostgresStore) LoadGames(ctx context.Context) ([]*game.Game, error) {
	rows, err := p.conn.QueryContext(ctx, selectGames)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	games := []*game.Game{}
	for rows.Next() {
		var r gameRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		g, err := r.toGame()
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading games: %w", err)
	}

	game.SortByDate(games, time.Now())
	return games, nil
}

// gameRow is a games table row with nullable columns.
type gameRow struct {
	GameID         int
	Date           string
	Opponent       string
	Location       string
	ScheduledStart sql.NullTime
	Status         string
	HomeTeam       sql.NullString
	AwayTeam       sql.NullString
	HomeScore      sql.NullInt64
	AwayScore      sql.NullInt64
	HomeGoals      []byte
	AwayGoals      []byte
	OvertimeType   sql.NullString
	Result         sql.NullString
	GameReportURL  sql.NullString
}

func toRow(g *game.Game) (gameRow, error) {
	home, err := goalsJSON(g.HomeGoals)
	if err != nil {
		return gameRow{}, fmt.Errorf("encoding home goals of game %d: %w", g.GameID, err)
	}
	away, err := goalsJSON(g.AwayGoals)
	if err != nil {
		return gameRow{}, fmt.Errorf("encoding away goals of game %d: %w", g.GameID, err)
	}

	r := gameRow{
		GameID:        g.GameID,
		Date:          g.Date,
		Opponent:      g.Opponent,
		Location:      g.Location,
		Status:        string(g.Status),
		HomeTeam:      nullString(g.HomeTeam),
		AwayTeam:      nullString(g.AwayTeam),
		HomeScore:     nullInt(g.HomeScore),
		AwayScore:     nullInt(g.AwayScore),
		HomeGoals:     home,
		AwayGoals:     away,
		Result:        nullString(g.Result),
		GameReportURL: nullString(g.GameReportURL),
	}
	if g.ScheduledStart != nil {
		r.ScheduledStart = sql.NullTime{Time: *g.ScheduledStart, Valid: true}
	}
	if g.OvertimeType != game.OvertimeNone {
		r.OvertimeType = sql.NullString{String: string(g.OvertimeType), Valid: true}
	}
	return r, nil
}

func (r *gameRow) args() []any {
	return []any{
		r.GameID, r.Date, r.Opponent, r.Location, r.ScheduledStart, r.Status,
		r.HomeTeam, r.AwayTeam, r.HomeScore, r.AwayScore, string(r.HomeGoals), string(r.AwayGoals),
		r.OvertimeType, r.Result, r.GameReportURL,
	}
}

func (r *gameRow) dest() []any {
	return []any{
		&r.GameID, &r.Date, &r.Opponent, &r.Location, &r.ScheduledStart, &r.Status,
		&r.HomeTeam, &r.AwayTeam, &r.HomeScore, &r.AwayScore, &r.HomeGoals, &r.AwayGoals,
		&r.OvertimeType, &r.Result, &r.GameReportURL,
	}
}

func (r *gameRow) toGame() (*game.Game, error) {
	g := &game.Game{
		GameID:        r.GameID,
		Date:          r.Date,
		Opponent:      r.Opponent,
		Location:      r.Location,
		Status:        game.Status(r.Status),
		HomeTeam:      stringPtr(r.HomeTeam),
		AwayTeam:      stringPtr(r.AwayTeam),
		HomeScore:     intPtr(r.HomeScore),
		AwayScore:     intPtr(r.AwayScore),
		OvertimeType:  game.OvertimeType(r.OvertimeType.String),
		Result:        stringPtr(r.Result),
		GameReportURL: stringPtr(r.GameReportURL),
	}
	if r.ScheduledStart.Valid {
		t := r.ScheduledStart.Time
		g.ScheduledStart = &t
	}
	if err := json.Unmarshal(orEmptyList(r.HomeGoals), &g.HomeGoals); err != nil {
		return nil, fmt.Errorf("decoding home goals of game %d: %w", r.GameID, err)
	}
	if err := json.Unmarshal(orEmptyList(r.AwayGoals), &g.AwayGoals); err != nil {
		return nil, fmt.Errorf("decoding away goals of game %d: %w", r.GameID, err)
	}
	return g, nil
}

func goalsJSON(goals []string) ([]byte, error) {
	if goals == nil {
		goals = []string{}
	}
	return json.Marshal(goals)
}

func orEmptyList(b []byte) []byte {
	if len(b) == 0 {
		return []byte("[]")
	}
	return b
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
