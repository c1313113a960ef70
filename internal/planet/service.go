package planet

import (
	"context"
	"log/slog"

	"planets-tableau/internal/shared/errors"

	"github.com/google/uuid"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing planet service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetByGameID lists the planets of a game. When owner is set only planets
// owned by that player are returned.
func (s *Service) GetByGameID(ctx context.Context, gameID uuid.UUID, owner *uuid.UUID) ([]*Planet, error) {
	planets, err := s.repo.GetPlanetsByGameID(ctx, gameID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planets", err)
	}

	if owner == nil {
		return planets, nil
	}

	return OwnedBy(planets, *owner), nil
}
