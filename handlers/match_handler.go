package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/nations-cup/models"
	"github.com/Dosada05/nations-cup/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

type resolveMatchInput struct {
	Method models.ResolutionMethod `json:"method"`
}

// GetHandler обрабатывает GET /matches/{matchID}
func (h *MatchHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveHandler обрабатывает POST /matches/{matchID}/resolve
func (h *MatchHandler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.ResolveMatch(r.Context(), id, input.Method)
	env := jsonResponse{"result": result}
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAdvancePending) && result != nil:
		// результат сохранен, продвижение сетки повторяется через /advance
		logRequestError(r, "bracket advancement pending", err)
		env["warning"] = services.ErrAdvancePending.Error()
	default:
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if winner, ok := result.Winner(); ok {
		env["winner"] = winner
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
