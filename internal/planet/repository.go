package planet

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
	logger.Debug("Initializing planet repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

const planetColumns = `id, game_id, planet_index, x, y, size, home_player_id, owner_id, created_at, updated_at`

// CreatePlanets inserts every planet of a game. GameID and timestamps are set
// on the planets from the arguments.
func (r *Repository) CreatePlanets(ctx context.Context, gameID uuid.UUID, planets []*Planet, createdAt time.Time, tx *database.Tx) error {
	if len(planets) == 0 {
		return nil
	}

	exec := r.db.Executor(tx)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "create_planets",
		"game_id", gameID,
		"count", len(planets),
	)
	logger.Debug("Creating planets")

	query := r.db.Rebind(`
		INSERT INTO planets (` + planetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)

	ts := createdAt.UTC().Truncate(time.Millisecond)
	for _, p := range planets {
		p.GameID = gameID
		p.CreatedAt = ts
		p.UpdatedAt = ts

		_, err := exec.ExecContext(ctx, query,
			p.ID,
			gameID,
			p.Index,
			p.Coordinate.X,
			p.Coordinate.Y,
			string(p.Size),
			nullUUID(p.HomePlayerID),
			nullUUID(p.OwnerID),
			ts.UnixMilli(),
			ts.UnixMilli(),
		)
		if err != nil {
			logger.Error("Failed to create planet", "planet_id", p.ID, "error", err)
			return fmt.Errorf("failed to create planet: %w", err)
		}
	}

	logger.Info("Planets created successfully")
	return nil
}

func (r *Repository) GetPlanetsByGameID(ctx context.Context, gameID uuid.UUID) ([]*Planet, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "get_planets_by_game", "game_id", gameID)
	logger.Debug("Getting planets by game ID")

	query := r.db.Rebind(`
		SELECT ` + planetColumns + `
		FROM planets
		WHERE game_id = $1
		ORDER BY planet_index
	`)

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		logger.Error("Failed to query planets", "error", err)
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var planets []*Planet
	for rows.Next() {
		var (
			p                    Planet
			size                 string
			home, owner          uuid.NullUUID
			createdAt, updatedAt int64
		)
		err := rows.Scan(
			&p.ID,
			&p.GameID,
			&p.Index,
			&p.Coordinate.X,
			&p.Coordinate.Y,
			&size,
			&home,
			&owner,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan planet row", "error", err)
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}

		p.Size = PlanetSize(size)
		p.HomePlayerID = uuidPtr(home)
		p.OwnerID = uuidPtr(owner)
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		planets = append(planets, &p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating planets: %w", err)
	}

	logger.Debug("Planets retrieved", "count", len(planets))
	return planets, nil
}

// UpdateOwner stores the owner of a planet. It reports false when no planet
// with that id exists in the game.
func (r *Repository) UpdateOwner(ctx context.Context, gameID, planetID uuid.UUID, ownerID *uuid.UUID, updatedAt time.Time, tx *database.Tx) (bool, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "update_owner", "game_id", gameID, "planet_id", planetID)
	logger.Debug("Updating planet owner")

	query := r.db.Rebind(`UPDATE planets SET owner_id = $1, updated_at = $2 WHERE id = $3 AND game_id = $4`)

	result, err := r.db.Executor(tx).ExecContext(ctx, query,
		nullUUID(ownerID), updatedAt.UTC().UnixMilli(), planetID, gameID)
	if err != nil {
		logger.Error("Failed to update planet owner", "error", err)
		return false, fmt.Errorf("failed to update planet owner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Warn("Planet not found for owner update")
		return false, nil
	}

	logger.Debug("Planet owner updated")
	return true, nil
}

func (r *Repository) DeletePlanetsByGameID(ctx context.Context, gameID uuid.UUID, tx *database.Tx) error {
	query := r.db.Rebind(`DELETE FROM planets WHERE game_id = $1`)
	if _, err := r.db.Executor(tx).ExecContext(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to delete planets: %w", err)
	}
	return nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}
