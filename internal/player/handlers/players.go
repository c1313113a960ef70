package handlers

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"

	"github.com/google/uuid"
)

type PlayersHandler struct {
	service *player.Service
}

func NewPlayersHandler(service *player.Service) *PlayersHandler {
	return &PlayersHandler{service: service}
}

// ServeHTTP lists the players of a game in turn order.
func (h *PlayersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "players", "remote_addr", r.RemoteAddr)
	logger.Debug("Players list requested")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid game ID format", err))
		return
	}

	players, err := h.service.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if players == nil {
		players = []*player.Player{}
	}

	response.Success(w, http.StatusOK, players)
}
