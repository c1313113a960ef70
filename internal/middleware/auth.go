package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/shared/cookies"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"
)

// TokenValidator turns a session token into player claims.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequirePlayer accepts a bearer token or the auth_token cookie and stores
// the player's claims in the request context.
func RequirePlayer(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := slog.With(
				"middleware", "jwt",
				"method", r.Method,
				"path", r.URL.Path,
			)

			token := TokenFromRequest(r)
			if token == "" {
				response.Error(w, r, logger, errors.Unauthorized("authentication required"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Debug("Token rejected", "error", err)
				response.Error(w, r, logger, errors.Unauthorized("invalid token"))
				return
			}

			logger.Debug("JWT authentication successful",
				"game_id", claims.GameID,
				"player_id", claims.PlayerID)

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// TokenFromRequest prefers the Authorization header over the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := r.Cookie(cookies.AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
