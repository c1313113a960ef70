package handlers

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/game"
	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"
)

type GameStatusResponse struct {
	Game    string `json:"game"`
	Games   int    `json:"games"`
	Players int    `json:"players"`
}

type GameStatusHandler struct {
	gameService   *game.Service
	playerService *player.Service
}

func NewGameStatusHandler(gameService *game.Service, playerService *player.Service) *GameStatusHandler {
	return &GameStatusHandler{gameService: gameService, playerService: playerService}
}

func (h *GameStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "game_status")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameCount, err := h.gameService.GetGameCount(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	playerCount, err := h.playerService.GetPlayerCount(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, GameStatusResponse{
		Game:    "Planets!",
		Games:   gameCount,
		Players: playerCount,
	})
}
