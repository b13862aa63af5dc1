package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Dosada05/nations-cup/services"
	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// RegisterHandler обрабатывает POST /tournaments/{tournamentID}/teams
func (h *TeamHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.RegisterTeam(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/teams
func (h *TeamHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ListTeams(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /tournaments/{tournamentID}/teams/{country}
func (h *TeamHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	country, err := url.PathUnescape(chi.URLParam(r, "country"))
	if err != nil || country == "" {
		badRequestResponse(w, r, errors.New("invalid country in URL path"))
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), tournamentID, country)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler обрабатывает GET /tournaments/{tournamentID}/standings
func (h *TeamHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.Standings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	standings := make([]standingRow, 0, len(teams))
	for i, t := range teams {
		standings = append(standings, standingRow{
			Position:       i + 1,
			Country:        t.Country,
			Played:         t.Record.Played,
			Wins:           t.Record.Wins,
			Draws:          t.Record.Draws,
			Losses:         t.Record.Losses,
			GoalsFor:       t.Record.GoalsFor,
			GoalsAgainst:   t.Record.GoalsAgainst,
			GoalDifference: t.Record.GoalDifference(),
			Points:         t.Record.Points,
		})
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type standingRow struct {
	Position       int    `json:"position"`
	Country        string `json:"country"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}
