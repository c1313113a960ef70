package handlers

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"
)

type MeResponse struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "me")

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, logger, errors.Unauthorized("no player claims found in context"))
		return
	}

	response.Success(w, http.StatusOK, MeResponse{
		GameID:   claims.GameID.String(),
		PlayerID: claims.PlayerID.String(),
		Name:     claims.Name,
	})
}
