package middleware

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/shared/database"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"

	"github.com/google/uuid"
)

// GameAccessMiddleware admits a player only to the game their token was
// issued for, and only while they are still seated in it.
type GameAccessMiddleware struct {
	db        *database.DB
	validator TokenValidator
}

func NewGameAccessMiddleware(db *database.DB, validator TokenValidator) *GameAccessMiddleware {
	return &GameAccessMiddleware{db: db, validator: validator}
}

func (m *GameAccessMiddleware) Require(next http.Handler) http.Handler {
	return RequirePlayer(m.validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "game_access",
			"method", r.Method,
			"path", r.URL.Path,
		)

		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		gameID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid game ID format", err))
			return
		}

		if claims.GameID != gameID {
			logger.Warn("Player attempted to act in another game",
				"player_id", claims.PlayerID,
				"token_game_id", claims.GameID,
				"game_id", gameID)
			response.Error(w, r, logger, errors.Forbidden("game access required"))
			return
		}

		var seated int
		err = m.db.QueryRowContext(r.Context(),
			m.db.Rebind(`SELECT COUNT(*) FROM game_players WHERE game_id = $1 AND id = $2`),
			gameID, claims.PlayerID,
		).Scan(&seated)
		if err != nil {
			response.Error(w, r, logger, errors.WrapInternal("failed to check game membership", err))
			return
		}

		if seated == 0 {
			response.Error(w, r, logger, errors.Forbidden("game access required"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}
