package handlers

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/middleware"
	"planets-tableau/internal/shared/cookies"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"
)

// SessionHandler moves a player's bearer token into an HttpOnly cookie for
// browser clients, and clears it again.
type SessionHandler struct {
	session *cookies.Session
}

func NewSessionHandler(session *cookies.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

// Create expects the request to have passed game access checks.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_session")

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, logger, errors.Unauthorized("no player claims found in context"))
		return
	}

	h.session.SetAuthCookie(w, middleware.TokenFromRequest(r))

	logger.Info("Player session started", "game_id", claims.GameID, "player_id", claims.PlayerID)

	response.Success(w, http.StatusOK, MeResponse{
		GameID:   claims.GameID.String(),
		PlayerID: claims.PlayerID.String(),
		Name:     claims.Name,
	})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_session", "remote_addr", r.RemoteAddr)
	logger.Debug("Logout requested")

	h.session.ClearAuthCookie(w)

	w.WriteHeader(http.StatusNoContent)
}
