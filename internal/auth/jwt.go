package auth

import (
	"fmt"
	"time"

	"planets-tableau/internal/player"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "planets-tableau"

// TokenIssuer signs and validates player session tokens with HS256.
type TokenIssuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, expiration time.Duration) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long")
	}
	if expiration <= 0 {
		return nil, fmt.Errorf("token expiration must be positive")
	}

	return &TokenIssuer{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}, nil
}

func (i *TokenIssuer) Generate(gameID uuid.UUID, p *player.Player) (string, error) {
	now := i.now()

	claims := Claims{
		GameID:   gameID,
		PlayerID: p.ID,
		Name:     p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.GameID == uuid.Nil || claims.PlayerID == uuid.Nil {
		return nil, fmt.Errorf("token is missing game or player")
	}

	return claims, nil
}
