package player

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"planets-tableau/internal/shared/database"

	"github.com/google/uuid"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing player repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreatePlayers inserts the players of a game. Each player's GameID and
// CreatedAt are set from the arguments.
func (r *Repository) CreatePlayers(ctx context.Context, gameID uuid.UUID, players []*Player, createdAt time.Time, tx *database.Tx) error {
	if len(players) == 0 {
		return nil
	}

	exec := r.db.Executor(tx)

	logger := r.logger.With(
		"component", "player_repository",
		"operation", "create_players",
		"game_id", gameID,
		"count", len(players),
	)
	logger.Debug("Creating players")

	query := r.db.Rebind(`
		INSERT INTO game_players (id, game_id, name, turn_order, home_planet_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)

	for _, p := range players {
		p.GameID = gameID
		p.CreatedAt = createdAt.UTC().Truncate(time.Millisecond)

		var home uuid.NullUUID
		if p.HomePlanetID != nil {
			home = uuid.NullUUID{UUID: *p.HomePlanetID, Valid: true}
		}

		if _, err := exec.ExecContext(ctx, query, p.ID, gameID, p.Name, p.TurnOrder, home, p.CreatedAt.UnixMilli()); err != nil {
			logger.Error("Failed to create player", "player_id", p.ID, "error", err)
			return fmt.Errorf("failed to create player %s: %w", p.Name, err)
		}
	}

	logger.Debug("Players created successfully")
	return nil
}

func (r *Repository) GetPlayersByGameID(ctx context.Context, gameID uuid.UUID) ([]*Player, error) {
	logger := r.logger.With("component", "player_repository", "operation", "get_players_by_game", "game_id", gameID)
	logger.Debug("Getting players by game ID")

	query := r.db.Rebind(`
		SELECT id, game_id, name, turn_order, home_planet_id, created_at
		FROM game_players
		WHERE game_id = $1
		ORDER BY turn_order
	`)

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		logger.Error("Failed to query players", "error", err)
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var players []*Player
	for rows.Next() {
		var (
			p         Player
			home      uuid.NullUUID
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, &p.TurnOrder, &home, &createdAt); err != nil {
			logger.Error("Failed to scan player row", "error", err)
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		if home.Valid {
			p.SetHomePlanet(home.UUID)
		}
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	logger.Debug("Players retrieved", "count", len(players))
	return players, nil
}

func (r *Repository) DeletePlayersByGameID(ctx context.Context, gameID uuid.UUID, tx *database.Tx) error {
	query := r.db.Rebind(`DELETE FROM game_players WHERE game_id = $1`)
	if _, err := r.db.Executor(tx).ExecContext(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to delete players: %w", err)
	}
	return nil
}

func (r *Repository) GetPlayerCount(ctx context.Context) (int, error) {
	logger := r.logger.With("component", "player_repository", "operation", "get_count")

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_players").Scan(&count); err != nil {
		logger.Error("Failed to get player count", "error", err)
		return 0, fmt.Errorf("failed to get player count: %w", err)
	}

	return count, nil
}
