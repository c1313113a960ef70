package server

import (
	"log/slog"
	"net/http"

	"planets-tableau/internal/broadcast"
	"planets-tableau/internal/game"
	gameHandlers "planets-tableau/internal/game/handlers"
	"planets-tableau/internal/middleware"
	"planets-tableau/internal/planet"
	planetHandlers "planets-tableau/internal/planet/handlers"
	"planets-tableau/internal/player"
	playerHandlers "planets-tableau/internal/player/handlers"
	serverHandlers "planets-tableau/internal/server/handlers"
	"planets-tableau/internal/shared/cookies"
	"planets-tableau/internal/shared/database"
	"planets-tableau/internal/shared/redis"
)

type Routes struct {
	db             *database.DB
	redis          *redis.Client
	gameService    *game.Service
	playerService  *player.Service
	planetService  *planet.Service
	hub            *broadcast.Hub
	tokens         middleware.TokenValidator
	adminToken     string
	allowedOrigins []string
	session        *cookies.Session
	logger         *slog.Logger
}

type RoutesConfig struct {
	DB             *database.DB
	Redis          *redis.Client
	GameService    *game.Service
	PlayerService  *player.Service
	PlanetService  *planet.Service
	Hub            *broadcast.Hub
	Tokens         middleware.TokenValidator
	AdminToken     string
	AllowedOrigins []string
	Session        *cookies.Session
	Logger         *slog.Logger
}

func NewRoutes(cfg RoutesConfig) *Routes {
	return &Routes{
		db:             cfg.DB,
		redis:          cfg.Redis,
		gameService:    cfg.GameService,
		playerService:  cfg.PlayerService,
		planetService:  cfg.PlanetService,
		hub:            cfg.Hub,
		tokens:         cfg.Tokens,
		adminToken:     cfg.AdminToken,
		allowedOrigins: cfg.AllowedOrigins,
		session:        cfg.Session,
		logger:         cfg.Logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	var redisPinger serverHandlers.Pinger
	if r.redis != nil {
		redisPinger = serverHandlers.PingFunc(r.redis.Ping)
	}

	healthHandler := serverHandlers.NewHealthHandler(r.db, redisPinger)
	gameStatusHandler := gameHandlers.NewGameStatusHandler(r.gameService, r.playerService)
	gameHandler := gameHandlers.NewGameHandler(r.gameService)
	planetHandler := planetHandlers.NewPlanetHandler(r.planetService)
	playersHandler := playerHandlers.NewPlayersHandler(r.playerService)
	meHandler := playerHandlers.NewMeHandler()
	sessionHandler := playerHandlers.NewSessionHandler(r.session)
	eventsHandler := broadcast.NewHandler(r.hub, r.gameService, r.allowedOrigins)

	gameAccess := middleware.NewGameAccessMiddleware(r.db, r.tokens)
	requireAdmin := middleware.RequireAdmin(r.adminToken)

	// Public endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.Handle("GET /api/game/status", gameStatusHandler)
	mux.HandleFunc("GET /api/games", gameHandler.GetGames)
	mux.HandleFunc("POST /api/games", gameHandler.CreateGame)
	mux.HandleFunc("GET /api/games/{id}", gameHandler.GetGame)
	mux.HandleFunc("GET /api/games/{id}/stats", gameHandler.GetGameStats)
	mux.HandleFunc("GET /api/games/{id}/planets", planetHandler.GetByGameID)
	mux.Handle("GET /api/games/{id}/players", playersHandler)
	mux.Handle("GET /api/games/{id}/events", eventsHandler)

	// Player endpoints (session token for the game in the path)
	mux.Handle("GET /api/games/{id}/players/me", gameAccess.Require(meHandler))
	mux.Handle("POST /api/games/{id}/session", gameAccess.Require(http.HandlerFunc(sessionHandler.Create)))
	mux.HandleFunc("DELETE /api/games/{id}/session", sessionHandler.Delete)
	mux.Handle("POST /api/games/{id}/planets/{planetID}/claim", gameAccess.Require(http.HandlerFunc(gameHandler.ClaimPlanet)))

	// Admin endpoints
	mux.Handle("DELETE /api/games/{id}", requireAdmin(http.HandlerFunc(gameHandler.DeleteGame)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/game/status", "/api/games", "/api/games/{id}", "/api/games/{id}/stats", "/api/games/{id}/planets", "/api/games/{id}/players", "/api/games/{id}/events"},
		"player_endpoints", []string{"/api/games/{id}/players/me", "/api/games/{id}/session", "/api/games/{id}/planets/{planetID}/claim"},
		"admin_endpoints", []string{"DELETE /api/games/{id}"},
	)

	return mux
}
