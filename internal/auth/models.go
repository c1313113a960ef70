package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims identify a player seated in one game.
type Claims struct {
	GameID   uuid.UUID `json:"game_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	jwt.RegisteredClaims
}
