package handler

import (
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/efreeman/hitler-xl/api/internal/auth"
	"github.com/efreeman/hitler-xl/api/internal/model"
	"github.com/efreeman/hitler-xl/api/internal/service"
	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// lobbyGame wraps a model.Game with a human-readable age for lobby listings,
// so clients don't each reimplement relative-time formatting.
type lobbyGame struct {
	model.Game
	Age string `json:"age"`
}

func toLobbyGames(games []model.Game) []lobbyGame {
	out := make([]lobbyGame, len(games))
	for i, g := range games {
		out[i] = lobbyGame{Game: g, Age: humanize.Time(g.CreatedAt)}
	}
	return out
}

// GameHandler handles table CRUD and lobby endpoints.
type GameHandler struct {
	gameSvc              *service.GameService
	wsHub                *Hub
	defaultFastConsensus bool
}

// NewGameHandler creates a GameHandler. defaultFastConsensus is applied to
// CreateGame requests that omit fast_consensus entirely.
func NewGameHandler(gameSvc *service.GameService, wsHub *Hub, defaultFastConsensus bool) *GameHandler {
	return &GameHandler{gameSvc: gameSvc, wsHub: wsHub, defaultFastConsensus: defaultFastConsensus}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name          string `json:"name"`
		Communists    bool   `json:"communists,omitempty"`
		Monarchist    bool   `json:"monarchist,omitempty"`
		Anarchist     bool   `json:"anarchist,omitempty"`
		Capitalist    bool   `json:"capitalist,omitempty"`
		Centrists     bool   `json:"centrists,omitempty"`
		FastConsensus *bool  `json:"fast_consensus,omitempty"`
		BotDifficulty string `json:"bot_difficulty,omitempty"`
		BotOnly       bool   `json:"bot_only,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	fastConsensus := h.defaultFastConsensus
	if req.FastConsensus != nil {
		fastConsensus = *req.FastConsensus
	}

	options := hitler.Options{
		Communists:    req.Communists,
		Monarchist:    req.Monarchist,
		Anarchist:     req.Anarchist,
		Capitalist:    req.Capitalist,
		Centrists:     req.Centrists,
		FastConsensus: fastConsensus,
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req.Name, userID, options, req.BotDifficulty, req.BotOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	filter := r.URL.Query().Get("filter")
	games, err := h.gameSvc.ListGames(r.Context(), userID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, toLobbyGames(games))
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	game, err := h.gameSvc.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.DeleteGame(r.Context(), gameID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotWaiting) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// StopGame handles POST /api/v1/games/{id}/stop
func (h *GameHandler) StopGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameSvc.StopGame(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotActive) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{Type: EventGameEnded, GameID: gameID, Data: game})
	writeJSON(w, http.StatusOK, game)
}

// AddBot handles POST /api/v1/games/{id}/bots
func (h *GameHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Difficulty string `json:"difficulty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.AddBot(r.Context(), gameID, userID, req.Difficulty); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotWaiting) || errors.Is(err, service.ErrGameFull) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// UpdateBotDifficulty handles PATCH /api/v1/games/{id}/players/{userId}/bot-difficulty
func (h *GameHandler) UpdateBotDifficulty(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	botUserID := r.PathValue("userId")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Difficulty string `json:"difficulty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.UpdateBotDifficulty(r.Context(), gameID, userID, botUserID, req.Difficulty); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrNotCreator) || errors.Is(err, service.ErrGameNotWaiting) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// UpdatePlayerSeat handles PATCH /api/v1/games/{id}/players/{userId}/seat
func (h *GameHandler) UpdatePlayerSeat(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	targetUserID := r.PathValue("userId")
	requestingUserID := auth.UserIDFromContext(r.Context())

	var req struct {
		Seat int `json:"seat"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.UpdatePlayerSeat(r.Context(), gameID, targetUserID, requestingUserID, req.Seat); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotWaiting) || errors.Is(err, service.ErrInvalidSeat) || errors.Is(err, service.ErrSeatTaken) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) || errors.Is(err, service.ErrNotInGame) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{
		Type:   EventSeatChanged,
		GameID: gameID,
		Data:   map[string]any{"user_id": targetUserID, "seat": req.Seat},
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// JoinGame handles POST /api/v1/games/{id}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.JoinGame(r.Context(), gameID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameFull) || errors.Is(err, service.ErrGameNotWaiting) || errors.Is(err, service.ErrAlreadyJoined) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// StartGame handles POST /api/v1/games/{id}/start
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameSvc.StartGame(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrNotCreator) || errors.Is(err, service.ErrNotEnough) || errors.Is(err, service.ErrGameNotWaiting) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{Type: EventGameStarted, GameID: gameID, Data: game})
	writeJSON(w, http.StatusOK, game)
}
