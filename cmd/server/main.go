package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/broadcast"
	"planets-tableau/internal/game"
	"planets-tableau/internal/middleware"
	"planets-tableau/internal/planet"
	"planets-tableau/internal/player"
	"planets-tableau/internal/server"
	"planets-tableau/internal/shared/config"
	"planets-tableau/internal/shared/cookies"
	"planets-tableau/internal/shared/database"
	"planets-tableau/internal/shared/logger"
	"planets-tableau/internal/shared/redis"
	"planets-tableau/internal/shared/telemetry"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.GlobalConfig); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := slog.With("component", "main")
	log.Info("Starting Planets! tableau server", "environment", cfg.Server.Environment)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("Failed to flush traces", "error", err)
		}
	}()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	log.Info("Database ready", "driver", db.Driver())

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close Redis", "error", err)
		}
	}()

	var cache game.Cache = game.NewMemoryCache()
	if rdb != nil {
		cache = game.NewRedisCache(rdb.Client, game.WithCacheTTL(cfg.Redis.SnapshotTTL))
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	if err != nil {
		return err
	}

	appLogger := slog.Default()
	hub := broadcast.NewHub(appLogger)

	playerRepo := player.NewRepository(db, appLogger)
	planetRepo := planet.NewRepository(db, appLogger)
	gameRepo := game.NewRepository(db, appLogger)

	playerService := player.NewService(playerRepo, appLogger)
	planetService := planet.NewService(planetRepo, appLogger)
	gameService := game.NewService(db, gameRepo, playerRepo, planetRepo, cache, tokens, hub, cfg.Tableau, appLogger)

	routes := server.NewRoutes(server.RoutesConfig{
		DB:             db,
		Redis:          rdb,
		GameService:    gameService,
		PlayerService:  playerService,
		PlanetService:  planetService,
		Hub:            hub,
		Tokens:         tokens,
		AdminToken:     cfg.Auth.AdminToken,
		AllowedOrigins: []string{cfg.Frontend.URL},
		Session:        cookies.NewSession(cfg.Auth, cfg.Frontend),
		Logger:         appLogger,
	})

	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit)
	cors := middleware.NewCORS(cfg.Frontend)

	handler := http.Handler(routes.Setup())
	handler = rateLimiter.Middleware(handler)
	handler = cors.Middleware(handler)
	handler = middleware.RequestID(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr, "url", cfg.Server.URL)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
