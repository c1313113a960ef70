package game

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"planets-tableau/internal/broadcast"
	"planets-tableau/internal/planet"
	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/config"
	"planets-tableau/internal/shared/database"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/random"
	"planets-tableau/internal/spatial"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultGameName   = "Planets"
	maxGameNameLength = 100
)

// TokenGenerator issues the session token a player uses to act in a game.
type TokenGenerator interface {
	Generate(gameID uuid.UUID, p *player.Player) (string, error)
}

// EventPublisher receives game events for live subscribers.
type EventPublisher interface {
	Publish(ev broadcast.Event) int
	CloseGame(gameID uuid.UUID)
}

type Service struct {
	db         *database.DB
	gameRepo   *Repository
	playerRepo *player.Repository
	planetRepo *planet.Repository
	cache      Cache
	tokens     TokenGenerator
	events     EventPublisher
	defaults   config.TableauConfig
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
	newSeed    func() (int64, error)

	// claimMu serialises ownership changes so the snapshot read, the update
	// and the cache refresh are not interleaved.
	claimMu sync.Mutex
}

func NewService(
	db *database.DB,
	gameRepo *Repository,
	playerRepo *player.Repository,
	planetRepo *planet.Repository,
	cache Cache,
	tokens TokenGenerator,
	events EventPublisher,
	defaults config.TableauConfig,
	logger *slog.Logger,
) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}

	return &Service{
		db:         db,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		planetRepo: planetRepo,
		cache:      cache,
		tokens:     tokens,
		events:     events,
		defaults:   defaults,
		logger:     logger,
		tracer:     otel.Tracer("planets-tableau/internal/game"),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newSeed:    random.NewSeed,
	}
}

type resolvedConfig struct {
	name        string
	width       int
	height      int
	planetCount int
	minDistance int
	players     []string
}

func (s *Service) resolve(cfg GameConfig) (resolvedConfig, error) {
	rc := resolvedConfig{
		name:        strings.TrimSpace(cfg.Name),
		width:       cfg.Width,
		height:      cfg.Height,
		planetCount: s.defaults.PlanetCount,
		minDistance: s.defaults.MinDistance,
		players:     cfg.Players,
	}

	if rc.name == "" {
		rc.name = defaultGameName
	}
	if utf8.RuneCountInString(rc.name) > maxGameNameLength {
		return rc, errors.Validationf("game name must be at most %d characters", maxGameNameLength)
	}
	if rc.width == 0 {
		rc.width = s.defaults.Width
	}
	if rc.height == 0 {
		rc.height = s.defaults.Height
	}
	if cfg.PlanetCount != nil {
		rc.planetCount = *cfg.PlanetCount
	}
	if cfg.MinDistance != nil {
		rc.minDistance = *cfg.MinDistance
	}
	if limit := s.defaults.MaxDimension; limit > 0 && (rc.width > limit || rc.height > limit) {
		return rc, errors.Validationf("tableau must be at most %dx%d, got %dx%d", limit, limit, rc.width, rc.height)
	}
	if limit := s.defaults.MaxPlanets; limit > 0 && rc.planetCount > limit {
		return rc, errors.Validationf("a game has at most %d neutral planets, got %d", limit, rc.planetCount)
	}
	if len(rc.players) == 0 {
		return rc, errors.Validation("at least one player is required")
	}
	if s.defaults.MaxPlayers > 0 && len(rc.players) > s.defaults.MaxPlayers {
		return rc, errors.Validationf("a game seats at most %d players, got %d", s.defaults.MaxPlayers, len(rc.players))
	}

	return rc, nil
}

// CreateGame generates a tableau, stores it and issues one session token per
// player. The same seed and configuration always produce the same board.
func (s *Service) CreateGame(ctx context.Context, cfg GameConfig) (_ *CreatedGame, err error) {
	ctx, span := s.tracer.Start(ctx, "game.CreateGame")
	defer func() { endSpan(span, err) }()

	logger := s.logger.With("component", "game_service", "operation", "create_game", "name", cfg.Name)
	logger.Debug("Creating new game")

	rc, err := s.resolve(cfg)
	if err != nil {
		return nil, err
	}

	var seed int64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else if seed, err = s.newSeed(); err != nil {
		return nil, errors.WrapInternal("failed to seed game", err)
	}

	players, err := player.NewPlayers(rc.players)
	if err != nil {
		return nil, err
	}

	tableau, err := spatial.NewTableau(spatial.NewCoordinate(rc.width, rc.height))
	if err != nil {
		return nil, err
	}

	gen := planet.NewGenerator(seed, planet.WithMaxAttempts(s.defaults.MaxAttempts))
	planets, err := planet.NewPlanets(tableau, players, rc.planetCount, rc.minDistance, gen)
	if err != nil {
		logger.Debug("Failed to generate planets", "error", err)
		return nil, err
	}

	now := s.now()
	game := &Game{
		ID:          uuid.New(),
		Name:        rc.name,
		Status:      GameStatusCreating,
		Width:       rc.width,
		Height:      rc.height,
		MinDistance: rc.minDistance,
		Seed:        seed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	span.SetAttributes(
		attribute.String("game.id", game.ID.String()),
		attribute.Int("game.players", len(players)),
		attribute.Int("game.planets", planets.Len()),
		attribute.Int64("game.seed", seed),
	)

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.gameRepo.CreateGame(ctx, game, tx); err != nil {
			return err
		}
		if err := s.playerRepo.CreatePlayers(ctx, game.ID, planets.Players(), now, tx); err != nil {
			return err
		}
		if err := s.planetRepo.CreatePlanets(ctx, game.ID, planets.All(), now, tx); err != nil {
			return err
		}
		return s.gameRepo.UpdateStatus(ctx, game.ID, GameStatusActive, now, tx)
	})
	if err != nil {
		logger.Error("Failed to store game", "error", err)
		return nil, errors.WrapInternal("failed to store game", err)
	}
	game.Status = GameStatusActive

	snapshot := &Snapshot{
		Game:    game,
		Players: planets.Players(),
		Planets: planets.All(),
	}
	s.storeSnapshot(ctx, logger, snapshot)

	tokens := make(map[uuid.UUID]string, len(snapshot.Players))
	for _, p := range snapshot.Players {
		token, err := s.tokens.Generate(game.ID, p)
		if err != nil {
			return nil, errors.WrapInternal("failed to issue player token", err)
		}
		tokens[p.ID] = token
	}

	s.publish(broadcast.Event{Type: broadcast.EventGameCreated, GameID: game.ID, At: now})

	logger.Info("Game created and activated successfully",
		"game_id", game.ID,
		"players", len(snapshot.Players),
		"planets", len(snapshot.Planets),
		"seed", seed)

	return &CreatedGame{Snapshot: snapshot, Tokens: tokens}, nil
}

// GetGame returns the cached snapshot when there is one and loads the game
// from the database otherwise.
func (s *Service) GetGame(ctx context.Context, gameID uuid.UUID) (_ *Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, "game.GetGame", trace.WithAttributes(attribute.String("game.id", gameID.String())))
	defer func() { endSpan(span, err) }()

	logger := s.logger.With("component", "game_service", "operation", "get_game", "game_id", gameID)

	snapshot, err := s.cache.Get(ctx, gameID)
	if err != nil {
		logger.Warn("Snapshot cache read failed, loading from database", "error", err)
	}
	if snapshot != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return snapshot, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	snapshot, err = s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.storeSnapshot(ctx, logger, snapshot)
	return snapshot, nil
}

func (s *Service) load(ctx context.Context, gameID uuid.UUID) (*Snapshot, error) {
	game, err := s.gameRepo.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load game", err)
	}
	if game == nil {
		return nil, errors.NotFoundf("game %s not found", gameID)
	}

	players, err := s.playerRepo.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load players", err)
	}

	planets, err := s.planetRepo.GetPlanetsByGameID(ctx, gameID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load planets", err)
	}

	if players == nil {
		players = []*player.Player{}
	}
	if planets == nil {
		planets = []*planet.Planet{}
	}

	return &Snapshot{Game: game, Players: players, Planets: planets}, nil
}

// Exists returns a not found error for unknown games.
func (s *Service) Exists(ctx context.Context, gameID uuid.UUID) error {
	if snapshot, err := s.cache.Get(ctx, gameID); err == nil && snapshot != nil {
		return nil
	}

	game, err := s.gameRepo.GetGameByID(ctx, gameID)
	if err != nil {
		return errors.WrapInternal("failed to load game", err)
	}
	if game == nil {
		return errors.NotFoundf("game %s not found", gameID)
	}
	return nil
}

func (s *Service) ListGames(ctx context.Context) ([]Game, error) {
	games, err := s.gameRepo.GetAllGames(ctx)
	if err != nil {
		return nil, errors.WrapInternal("failed to list games", err)
	}
	return games, nil
}

func (s *Service) GetGameCount(ctx context.Context) (int, error) {
	count, err := s.gameRepo.GetGameCount(ctx)
	if err != nil {
		return 0, errors.WrapInternal("failed to count games", err)
	}
	return count, nil
}

func (s *Service) GetGameStats(ctx context.Context, gameID uuid.UUID) (*GameStats, error) {
	snapshot, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return snapshot.Stats(), nil
}

// DeleteGame removes a game with its players and planets and disconnects its
// event subscribers.
func (s *Service) DeleteGame(ctx context.Context, gameID uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "game.DeleteGame", trace.WithAttributes(attribute.String("game.id", gameID.String())))
	defer func() { endSpan(span, err) }()

	logger := s.logger.With("component", "game_service", "operation", "delete_game", "game_id", gameID)
	logger.Debug("Deleting game and all related data")

	var deleted bool
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.planetRepo.DeletePlanetsByGameID(ctx, gameID, tx); err != nil {
			return err
		}
		if err := s.playerRepo.DeletePlayersByGameID(ctx, gameID, tx); err != nil {
			return err
		}
		var err error
		deleted, err = s.gameRepo.DeleteGame(ctx, gameID, tx)
		return err
	})
	if err != nil {
		return errors.WrapInternal("failed to delete game", err)
	}

	if err := s.cache.Delete(ctx, gameID); err != nil {
		logger.Warn("Failed to evict snapshot", "error", err)
	}

	if !deleted {
		return errors.NotFoundf("game %s not found", gameID)
	}

	s.publish(broadcast.Event{Type: broadcast.EventGameDeleted, GameID: gameID, At: s.now()})
	if s.events != nil {
		s.events.CloseGame(gameID)
	}

	logger.Info("Game deleted")
	return nil
}

// ClaimPlanet makes playerID the owner of planetID. The player must be seated
// in the game and the game must be active.
func (s *Service) ClaimPlanet(ctx context.Context, gameID, planetID, playerID uuid.UUID) (_ *planet.Planet, err error) {
	ctx, span := s.tracer.Start(ctx, "game.ClaimPlanet", trace.WithAttributes(
		attribute.String("game.id", gameID.String()),
		attribute.String("planet.id", planetID.String()),
		attribute.String("player.id", playerID.String()),
	))
	defer func() { endSpan(span, err) }()

	logger := s.logger.With(
		"component", "game_service",
		"operation", "claim_planet",
		"game_id", gameID,
		"planet_id", planetID,
		"player_id", playerID,
	)
	logger.Debug("Claiming planet")

	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	snapshot, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if snapshot.Game.Status != GameStatusActive {
		return nil, errors.Conflictf("game %s is %s", gameID, snapshot.Game.Status)
	}

	tableau, err := snapshot.Game.Tableau()
	if err != nil {
		return nil, errors.WrapInternal("stored game has an invalid tableau", err)
	}

	planets, err := planet.Restore(tableau, snapshot.Players, snapshot.Planets, snapshot.Game.MinDistance, nil)
	if err != nil {
		return nil, errors.WrapInternal("failed to restore planets", err)
	}

	claimed, err := planets.SetOwner(planetID, playerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var found bool
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		found, err = s.planetRepo.UpdateOwner(ctx, gameID, planetID, claimed.OwnerID, now, tx)
		if err != nil || !found {
			return err
		}
		return s.gameRepo.Touch(ctx, gameID, now, tx)
	})
	if err != nil {
		return nil, errors.WrapInternal("failed to store planet owner", err)
	}
	if !found {
		if err := s.cache.Delete(ctx, gameID); err != nil {
			logger.Warn("Failed to evict stale snapshot", "error", err)
		}
		return nil, errors.NotFoundf("planet %s not found", planetID)
	}

	claimed.UpdatedAt = now
	snapshot.Game.UpdatedAt = now
	s.storeSnapshot(ctx, logger, snapshot)

	owner := playerID
	planetRef := planetID
	s.publish(broadcast.Event{
		Type:     broadcast.EventPlanetOwnerChanged,
		GameID:   gameID,
		PlanetID: &planetRef,
		OwnerID:  &owner,
		At:       now,
	})

	logger.Info("Planet claimed")
	return claimed, nil
}

func (s *Service) storeSnapshot(ctx context.Context, logger *slog.Logger, snapshot *Snapshot) {
	if err := s.cache.Set(ctx, snapshot); err != nil {
		logger.Warn("Failed to cache snapshot", "error", err)
	}
}

func (s *Service) publish(ev broadcast.Event) {
	if s.events == nil {
		return
	}
	delivered := s.events.Publish(ev)
	s.logger.Debug("Event published", "component", "game_service", "event", ev.Type, "game_id", ev.GameID, "delivered", delivered)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
