package game

import (
	"context"
	"database/sql"
	"errors"
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
	logger.Debug("Initializing game repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

const gameColumns = `id, name, status, width, height, min_distance, seed, created_at, updated_at`

func (r *Repository) CreateGame(ctx context.Context, game *Game, tx *database.Tx) error {
	logger := r.logger.With(
		"component", "game_repository",
		"operation", "create_game",
		"game_id", game.ID,
		"name", game.Name,
	)
	logger.Debug("Creating game")

	query := r.db.Rebind(`
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)

	_, err := r.db.Executor(tx).ExecContext(ctx, query,
		game.ID,
		game.Name,
		string(game.Status),
		game.Width,
		game.Height,
		game.MinDistance,
		game.Seed,
		game.CreatedAt.UnixMilli(),
		game.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		logger.Error("Failed to create game", "error", err)
		return fmt.Errorf("failed to create game: %w", err)
	}

	logger.Info("Game created successfully")
	return nil
}

// GetGameByID returns nil without error when the game does not exist.
func (r *Repository) GetGameByID(ctx context.Context, gameID uuid.UUID) (*Game, error) {
	logger := r.logger.With("component", "game_repository", "operation", "get_game", "game_id", gameID)
	logger.Debug("Getting game by ID")

	query := r.db.Rebind(`SELECT ` + gameColumns + ` FROM games WHERE id = $1`)

	game, err := scanGame(r.db.QueryRowContext(ctx, query, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		logger.Debug("Game not found")
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to get game", "error", err)
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (r *Repository) GetAllGames(ctx context.Context) ([]Game, error) {
	logger := r.logger.With("component", "game_repository", "operation", "get_all_games")
	logger.Debug("Getting all games")

	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query games", "error", err)
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var games []Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			logger.Error("Failed to scan game row", "error", err)
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	logger.Debug("Games retrieved", "count", len(games))
	return games, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, gameID uuid.UUID, status GameStatus, updatedAt time.Time, tx *database.Tx) error {
	logger := r.logger.With("component", "game_repository", "operation", "update_status", "game_id", gameID, "status", status)
	logger.Debug("Updating game status")

	query := r.db.Rebind(`UPDATE games SET status = $1, updated_at = $2 WHERE id = $3`)

	result, err := r.db.Executor(tx).ExecContext(ctx, query, string(status), updatedAt.UTC().UnixMilli(), gameID)
	if err != nil {
		logger.Error("Failed to update game status", "error", err)
		return fmt.Errorf("failed to update game status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("game %s not found", gameID)
	}

	logger.Info("Game status updated")
	return nil
}

// Touch bumps updated_at after a change to one of the game's planets.
func (r *Repository) Touch(ctx context.Context, gameID uuid.UUID, updatedAt time.Time, tx *database.Tx) error {
	query := r.db.Rebind(`UPDATE games SET updated_at = $1 WHERE id = $2`)
	if _, err := r.db.Executor(tx).ExecContext(ctx, query, updatedAt.UTC().UnixMilli(), gameID); err != nil {
		return fmt.Errorf("failed to touch game: %w", err)
	}
	return nil
}

// DeleteGame reports false when no game was deleted. Players and planets must
// be removed first within the same transaction.
func (r *Repository) DeleteGame(ctx context.Context, gameID uuid.UUID, tx *database.Tx) (bool, error) {
	logger := r.logger.With("component", "game_repository", "operation", "delete_game", "game_id", gameID)
	logger.Debug("Deleting game")

	query := r.db.Rebind(`DELETE FROM games WHERE id = $1`)

	result, err := r.db.Executor(tx).ExecContext(ctx, query, gameID)
	if err != nil {
		logger.Error("Failed to delete game", "error", err)
		return false, fmt.Errorf("failed to delete game: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Warn("No game found to delete")
		return false, nil
	}

	logger.Info("Game deleted successfully")
	return true, nil
}

func (r *Repository) GetGameCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get game count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*Game, error) {
	var (
		game                 Game
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&game.ID,
		&game.Name,
		&status,
		&game.Width,
		&game.Height,
		&game.MinDistance,
		&game.Seed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	game.Status = GameStatus(status)
	game.CreatedAt = time.UnixMilli(createdAt).UTC()
	game.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &game, nil
}
