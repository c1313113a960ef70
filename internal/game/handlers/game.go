package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/game"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"

	"github.com/google/uuid"
)

type GameHandler struct {
	service *game.Service
}

func NewGameHandler(service *game.Service) *GameHandler {
	return &GameHandler{service: service}
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_game")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var gameConfig game.GameConfig
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&gameConfig); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	createdGame, err := h.service.CreateGame(ctx, gameConfig)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, createdGame)
}

func (h *GameHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_games")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	games, err := h.service.ListGames(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if games == nil {
		games = []game.Game{}
	}

	response.Success(w, http.StatusOK, games)
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_game")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := parseID(r, "id", "game")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	snapshot, err := h.service.GetGame(ctx, gameID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, snapshot)
}

func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "delete_game")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := parseID(r, "id", "game")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.DeleteGame(ctx, gameID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) GetGameStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_game_stats")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := parseID(r, "id", "game")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	stats, err := h.service.GetGameStats(ctx, gameID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, stats)
}

// ClaimPlanet hands a planet to the player identified by the request's
// session token.
func (h *GameHandler) ClaimPlanet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "claim_planet")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		response.Error(w, r, logger, errors.Unauthorized("player session required"))
		return
	}

	gameID, err := parseID(r, "id", "game")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if claims.GameID != gameID {
		response.Error(w, r, logger, errors.Forbidden("player session belongs to another game"))
		return
	}

	planetID, err := parseID(r, "planetID", "planet")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	claimed, err := h.service.ClaimPlanet(ctx, gameID, planetID, claims.PlayerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, claimed)
}

func parseID(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, errors.Validationf("%s ID is required", label)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.WrapValidation("invalid "+label+" ID format", err)
	}
	return id, nil
}
