package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/metrics"
	"github.com/pfrederiksen/hockey-report/internal/scraper"
)

type memStore struct {
	games []*game.Game
	err   error
	panic bool
}

func (m *memStore) LoadGames(context.Context) ([]*game.Game, error) {
	if m.panic {
		panic("store exploded")
	}
	return m.games, m.err
}

func (m *memStore) SaveGames(_ context.Context, games []*game.Game) error {
	m.games = games
	return nil
}

type memFixtures map[int]game.Scheduled

func (m memFixtures) FindFixture(id int) (game.Scheduled, bool, error) {
	f, ok := m[id]
	return f, ok, nil
}

type stubReports struct {
	got game.Scheduled
	err error
}

func (s *stubReports) One(_ context.Context, f game.Scheduled) (*game.EnrichedGame, error) {
	s.got = f
	if s.err != nil {
		return nil, s.err
	}
	return &game.EnrichedGame{
		GameID:      f.GameID,
		Status:      game.StatusFinal,
		Result:      game.Str("W 4-3"),
		Diagnostics: &game.Diagnostics{Notes: []string{"status: game length recorded"}},
	}, nil
}

func testStore() *memStore {
	return &memStore{games: []*game.Game{
		{GameID: 1, Date: "Fri, Oct 24", Opponent: "Atlanta", Location: "Home", Status: game.StatusFinal, Result: game.Str("W 4-3")},
		{GameID: 2, Date: "Sat, Oct 25", Opponent: "Savannah", Location: "Away", Status: game.StatusUpcoming},
		{GameID: 3, Date: "Wed, Oct 29", Opponent: "South Carolina", Location: "Home", Status: game.StatusFinal, Result: game.Str("L(SO) 2-1")},
	}}
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func newTestServer(store *memStore, fixtures FixtureSource, reports ReportSource) (*Server, *metrics.Recorder) {
	rec := metrics.NewRecorder()
	return NewServer(":0", store, fixtures, reports, rec, logger.Discard()), rec
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(testStore(), nil, nil)
	w := serve(t, s.Handler(), "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Errorf("body = %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestListGames(t *testing.T) {
	s, _ := newTestServer(testStore(), nil, nil)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantIDs  []int
	}{
		{"all games", "/api/v1/games", http.StatusOK, []int{1, 2, 3}},
		{"final only", "/api/v1/games?status=final", http.StatusOK, []int{1, 3}},
		{"upcoming only", "/api/v1/games?status=Upcoming", http.StatusOK, []int{2}},
		{"no live games", "/api/v1/games?status=Live", http.StatusOK, []int{}},
		{"unknown status", "/api/v1/games?status=postponed", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, s.Handler(), tt.path)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, expected %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantIDs == nil {
				return
			}
			var games []game.Game
			if err := json.Unmarshal(w.Body.Bytes(), &games); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if len(games) != len(tt.wantIDs) {
				t.Fatalf("got %d games, expected %d", len(games), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if games[i].GameID != id {
					t.Errorf("games[%d] = %d, expected %d", i, games[i].GameID, id)
				}
			}
		})
	}
}

func TestListGamesStoreError(t *testing.T) {
	s, _ := newTestServer(&memStore{err: errors.New("disk gone")}, nil, nil)
	w := serve(t, s.Handler(), "/api/v1/games")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "disk gone") {
		t.Errorf("error details missing: %s", w.Body.String())
	}
}

func TestGetGame(t *testing.T) {
	s, _ := newTestServer(testStore(), nil, nil)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"existing game", "/api/v1/games/3", http.StatusOK},
		{"missing game", "/api/v1/games/99", http.StatusNotFound},
		{"zero id", "/api/v1/games/0", http.StatusBadRequest},
		{"non-numeric id", "/api/v1/games/abc", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, s.Handler(), tt.path)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, expected %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}

	w := serve(t, s.Handler(), "/api/v1/games/3")
	if !strings.Contains(w.Body.String(), `"result":"L(SO) 2-1"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetReport(t *testing.T) {
	t.Run("fixture from extracted ids", func(t *testing.T) {
		reports := &stubReports{}
		fixtures := memFixtures{7: {GameID: 7, Opponent: "Iowa", Location: "Away"}}
		s, _ := newTestServer(testStore(), fixtures, reports)

		w := serve(t, s.Handler(), "/api/v1/games/7/report")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		if reports.got.Opponent != "Iowa" || reports.got.Location != "Away" {
			t.Errorf("report parsed with fixture %+v", reports.got)
		}
		if !strings.Contains(w.Body.String(), "game length recorded") {
			t.Errorf("diagnostics missing from body: %s", w.Body.String())
		}
	})

	t.Run("fixture from stored schedule", func(t *testing.T) {
		reports := &stubReports{}
		s, _ := newTestServer(testStore(), memFixtures{}, reports)

		if w := serve(t, s.Handler(), "/api/v1/games/2/report"); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if reports.got.Opponent != "Savannah" {
			t.Errorf("report parsed with fixture %+v", reports.got)
		}
	})

	t.Run("unknown fixture", func(t *testing.T) {
		reports := &stubReports{}
		s, _ := newTestServer(testStore(), nil, reports)

		if w := serve(t, s.Handler(), "/api/v1/games/42/report"); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if reports.got.GameID != 42 || reports.got.Opponent != "" {
			t.Errorf("report parsed with fixture %+v", reports.got)
		}
	})

	errorTests := []struct {
		name     string
		reports  ReportSource
		wantCode int
	}{
		{"fetch failure", &stubReports{err: errors.New("timeout")}, http.StatusBadGateway},
		{"upstream not found", &stubReports{err: &scraper.StatusError{URL: "x", StatusCode: http.StatusNotFound}}, http.StatusNotFound},
		{"not configured", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(testStore(), nil, tt.reports)
			if w := serve(t, s.Handler(), "/api/v1/games/1/report"); w.Code != tt.wantCode {
				t.Errorf("status = %d, expected %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(testStore(), nil, nil)
	serve(t, s.Handler(), "/api/v1/games/1")

	w := serve(t, s.Handler(), "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := `hockey_report_http_requests_total{code="200",route="/api/v1/games/{gameID:[0-9]+}"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("metrics missing %q", want)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	s, _ := newTestServer(&memStore{panic: true}, nil, nil)
	w := serve(t, s.Handler(), "/api/v1/games")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", w.Code)
	}
}
