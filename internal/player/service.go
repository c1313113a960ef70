package player

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
	logger.Debug("Initializing player service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// NewPlayers builds players from display names, rejecting blank or
// duplicate names. Turn order follows the input order.
func NewPlayers(names []string) ([]*Player, error) {
	seen := make(map[string]struct{}, len(names))
	players := make([]*Player, 0, len(names))

	for i, name := range names {
		p, err := New(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.Name]; dup {
			return nil, errors.Validationf("duplicate player name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		p.TurnOrder = i
		players = append(players, p)
	}

	return players, nil
}

func (s *Service) GetPlayersByGameID(ctx context.Context, gameID uuid.UUID) ([]*Player, error) {
	players, err := s.repo.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load players", err)
	}
	return players, nil
}

func (s *Service) GetPlayerCount(ctx context.Context) (int, error) {
	count, err := s.repo.GetPlayerCount(ctx)
	if err != nil {
		return 0, errors.WrapInternal("failed to count players", err)
	}
	return count, nil
}
