package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/efreeman/hitler-xl/api/internal/auth"
	"github.com/efreeman/hitler-xl/api/internal/service"
)

// ActionHandler dispatches a single named engine operation and broadcasts
// the resulting board view.
type ActionHandler struct {
	actions *service.ActionService
	hub     *Hub
}

// NewActionHandler creates an ActionHandler.
func NewActionHandler(actions *service.ActionService, hub *Hub) *ActionHandler {
	return &ActionHandler{actions: actions, hub: hub}
}

// Dispatch handles POST /api/v1/games/{id}/actions
func (h *ActionHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Operation string          `json:"operation"`
		Payload   json.RawMessage `json:"payload,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Operation == "" {
		writeError(w, http.StatusBadRequest, "operation is required")
		return
	}

	game, err := h.actions.GameRepo().FindByID(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	seat, ok := service.SeatFor(game, userID)
	if !ok {
		writeError(w, http.StatusForbidden, "you are not in this game")
		return
	}

	board, err := h.actions.Dispatch(r.Context(), gameID, seat, req.Operation, req.Payload)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrUnknownOperation):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotStarted):
			status = http.StatusBadRequest
		default:
			// hitler.Game's own errors (e.g. wrong phase, not eligible)
			// surface as 422: the request was well-formed but illegal
			// given current game state.
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	h.hub.BroadcastToGame(gameID, WSEvent{
		Type:   EventActionApplied,
		GameID: gameID,
		Data:   board,
	})

	writeJSON(w, http.StatusOK, board)
}
