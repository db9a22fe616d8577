package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pfrederiksen/hockey-report/internal/game"
	"github.com/pfrederiksen/hockey-report/internal/logger"
	"github.com/pfrederiksen/hockey-report/internal/scraper"
	"github.com/pfrederiksen/hockey-report/internal/storage"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store    storage.GameStore
	fixtures FixtureSource
	reports  ReportSource
	log      *logger.Logger
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "hockey-report",
	})
}

// ListGames returns the stored schedule, optionally filtered by ?status=.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.LoadGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load games", err)
		return
	}

	if want := r.URL.Query().Get("status"); want != "" {
		status, ok := parseStatus(want)
		if !ok {
			respondError(w, http.StatusBadRequest, "Unknown status "+strconv.Quote(want), nil)
			return
		}
		filtered := make([]*game.Game, 0, len(games))
		for _, g := range games {
			if g.Status == status {
				filtered = append(filtered, g)
			}
		}
		games = filtered
	}

	respondJSON(w, http.StatusOK, games)
}

// GetGame returns one stored game.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	games, err := h.store.LoadGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load games", err)
		return
	}
	g, found := storage.FindGame(games, id)
	if !found {
		respondError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// GetReport fetches and parses the game's report now, diagnostics included.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	if h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "Report fetching is not configured", nil)
		return
	}

	fixture := h.fixtureFor(r, id)
	e, err := h.reports.One(r.Context(), fixture)
	if err != nil {
		status := http.StatusBadGateway
		var se *scraper.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		respondError(w, status, "Failed to fetch game report", err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// fixtureFor finds what the schedule knows about the game: the extracted
// fixtures first, then the stored schedule, else only the id.
func (h *Handler) fixtureFor(r *http.Request, id int) game.Scheduled {
	if h.fixtures != nil {
		f, ok, err := h.fixtures.FindFixture(id)
		if err != nil {
			h.log.Warn("Fixture lookup failed", logger.Fields{"game_id": id, "error": err.Error()})
		} else if ok {
			return f
		}
	}
	if games, err := h.store.LoadGames(r.Context()); err == nil {
		if g, ok := storage.FindGame(games, id); ok {
			return g.Scheduled()
		}
	}
	return game.Scheduled{GameID: id}
}

func gameID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["gameID"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid game ID", err)
		return 0, false
	}
	return id, true
}

func parseStatus(s string) (game.Status, bool) {
	for _, st := range []game.Status{game.StatusUnavailable, game.StatusUpcoming, game.StatusLive, game.StatusFinal} {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
