package broadcast

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// GameLookup reports whether a game exists; it returns a not found error
// otherwise.
type GameLookup interface {
	Exists(ctx context.Context, gameID uuid.UUID) error
}

type helloMessage struct {
	Type     string    `json:"type"`
	GameID   uuid.UUID `json:"game_id"`
	ClientID string    `json:"client_id"`
}

// Handler streams the events of one game over a websocket.
type Handler struct {
	hub      *Hub
	games    GameLookup
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, games GameLookup, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Handler{
		hub:   hub,
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "game_events")

	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid game ID format", err))
		return
	}

	if err := h.games.Exists(r.Context(), gameID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	// Subscribe before the handshake completes so no event published after
	// the client connects is missed.
	sub := h.hub.Subscribe(gameID)
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger = logger.With("game_id", gameID, "client_id", sub.ID.String())
	logger.Info("Websocket client connected", "subscribers", h.hub.SubscriberCount(gameID))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := write(conn, helloMessage{Type: "subscribed", GameID: gameID, ClientID: sub.ID.String()}); err != nil {
		logger.Debug("Failed to send hello", "error", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"),
					time.Now().Add(writeWait))
				return
			}
			if err := write(conn, ev); err != nil {
				logger.Debug("Failed to write event", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			logger.Info("Websocket client disconnected")
			return
		}
	}
}

func write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
