package handlers

import (
	"net/http"

	"github.com/Dosada05/nations-cup/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	bracketService    services.BracketService
}

func NewTournamentHandler(ts services.TournamentService, bs services.BracketService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		bracketService:    bs,
	}
}

type createTournamentInput struct {
	Name string `json:"name"`
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input createTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler обрабатывает GET /tournaments/{tournamentID}/bracket
func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceHandler обрабатывает POST /tournaments/{tournamentID}/advance.
// Повторяет проверку завершения текущей стадии; без изменений отвечает advanced=false.
func (h *TournamentHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transition, err := h.bracketService.AdvanceCurrent(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"advanced": transition != nil, "tournament": tournament}
	if transition != nil {
		env["transition"] = transition
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
