package handler

import (
	"net/http"

	"github.com/efreeman/hitler-xl/api/internal/auth"
	"github.com/efreeman/hitler-xl/api/internal/repository"
	"github.com/efreeman/hitler-xl/api/internal/service"
)

// ActionLogHandler exposes a game's history and live board/player views.
type ActionLogHandler struct {
	logRepo repository.ActionLogRepository
	actions *service.ActionService
}

// NewActionLogHandler creates an ActionLogHandler.
func NewActionLogHandler(logRepo repository.ActionLogRepository, actions *service.ActionService) *ActionLogHandler {
	return &ActionLogHandler{logRepo: logRepo, actions: actions}
}

// ListActions handles GET /api/v1/games/{id}/actions
func (h *ActionLogHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	actions, err := h.logRepo.ListActions(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if actions == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, actions)
}

// BoardView handles GET /api/v1/games/{id}/board
func (h *ActionLogHandler) BoardView(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	board, err := h.actions.BoardView(r.Context(), gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == service.ErrGameNotFound {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// PlayerView handles GET /api/v1/games/{id}/me/view
func (h *ActionLogHandler) PlayerView(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

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

	view, err := h.actions.PlayerView(r.Context(), gameID, seat)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}
