package handlers

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/planet"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"

	"github.com/google/uuid"
)

type PlanetHandler struct {
	service *planet.Service
}

func NewPlanetHandler(service *planet.Service) *PlanetHandler {
	return &PlanetHandler{service: service}
}

// GetByGameID serves GET /api/games/{id}/planets with an optional owner
// query parameter.
func (h *PlanetHandler) GetByGameID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_planets_by_game")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid game ID format", err))
		return
	}

	var owner *uuid.UUID
	if raw := r.URL.Query().Get("owner"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid owner ID format", err))
			return
		}
		owner = &id
	}

	planets, err := h.service.GetByGameID(ctx, gameID, owner)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if planets == nil {
		planets = []*planet.Planet{}
	}

	response.Success(w, http.StatusOK, planets)
}
