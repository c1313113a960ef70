package game

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"planets-tableau/internal/auth"
	"planets-tableau/internal/broadcast"
	"planets-tableau/internal/planet"
	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/config"
	"planets-tableau/internal/shared/database/databasetest"
	"planets-tableau/internal/shared/errors"

	"github.com/google/uuid"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	service *Service
	repo    *Repository
	cache   *MemoryCache
	hub     *broadcast.Hub
	tokens  *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := databasetest.Open(t)

	tokens, err := auth.NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	repo := NewRepository(db, logger)
	cache := NewMemoryCache()
	hub := broadcast.NewHub(logger)
	defaults := config.TableauConfig{
		Width:        150,
		Height:       150,
		PlanetCount:  10,
		MinDistance:  10,
		MaxPlayers:   4,
		MaxAttempts:  1000,
		MaxPlanets:   50,
		MaxDimension: 1000,
	}

	service := NewService(db, repo, player.NewRepository(db, logger), planet.NewRepository(db, logger),
		cache, tokens, hub, defaults, logger)

	return &testEnv{service: service, repo: repo, cache: cache, hub: hub, tokens: tokens}
}

func seed(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func (e *testEnv) createGame(t *testing.T) *CreatedGame {
	t.Helper()
	created, err := e.service.CreateGame(context.Background(), GameConfig{
		Name:    "Test",
		Players: []string{"Aaron", "Peter"},
		Seed:    seed(42),
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return created
}

func TestCreateGame_PersistsBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createGame(t)

	if created.Game.Status != GameStatusActive {
		t.Fatalf("status = %s", created.Game.Status)
	}
	if created.Game.Width != 150 || created.Game.MinDistance != 10 || created.Game.Seed != 42 {
		t.Fatalf("defaults not applied: %+v", created.Game)
	}
	if len(created.Players) != 2 || len(created.Planets) != 12 {
		t.Fatalf("players=%d planets=%d", len(created.Players), len(created.Planets))
	}
	if len(created.Tokens) != 2 {
		t.Fatalf("tokens = %d", len(created.Tokens))
	}

	for _, p := range created.Players {
		claims, err := env.tokens.Validate(created.Tokens[p.ID])
		if err != nil {
			t.Fatalf("token for %s: %v", p.Name, err)
		}
		if claims.GameID != created.Game.ID || claims.PlayerID != p.ID {
			t.Fatalf("claims = %+v", claims)
		}
	}

	stored, err := env.repo.GetGameByID(ctx, created.Game.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetGameByID: %v %v", stored, err)
	}
	if stored.Status != GameStatusActive {
		t.Fatalf("stored status = %s", stored.Status)
	}

	// drop the cache so the snapshot is rebuilt from the database
	if err := env.cache.Delete(ctx, created.Game.ID); err != nil {
		t.Fatalf("cache delete: %v", err)
	}

	snapshot, err := env.service.GetGame(ctx, created.Game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if len(snapshot.Planets) != 12 || len(snapshot.Players) != 2 {
		t.Fatalf("loaded players=%d planets=%d", len(snapshot.Players), len(snapshot.Planets))
	}
	for i, p := range snapshot.Planets {
		want := created.Planets[i]
		if p.ID != want.ID || p.Coordinate != want.Coordinate || p.Size != want.Size {
			t.Fatalf("planet %d differs after reload", i)
		}
	}
	for i, p := range snapshot.Players {
		if p.ID != created.Players[i].ID || p.TurnOrder != i {
			t.Fatalf("player %d out of turn order", i)
		}
		if p.HomePlanetID == nil {
			t.Fatalf("player %s lost their home planet", p.Name)
		}
	}

	if cached, _ := env.cache.Get(ctx, created.Game.ID); cached == nil {
		t.Fatalf("GetGame should repopulate the cache")
	}
}

func TestCreateGame_SameSeedSameBoard(t *testing.T) {
	env := newTestEnv(t)

	first := env.createGame(t)
	second := env.createGame(t)

	for i := range first.Planets {
		if first.Planets[i].Coordinate != second.Planets[i].Coordinate || first.Planets[i].Size != second.Planets[i].Size {
			t.Fatalf("planet %d differs for equal seeds", i)
		}
	}
}

func TestCreateGame_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]GameConfig{
		"no players":       {},
		"too many players": {Players: []string{"a", "b", "c", "d", "e"}},
		"duplicate names":  {Players: []string{"Aaron", "Aaron"}},
		"blank name":       {Players: []string{"  "}},
		"negative planets": {Players: []string{"Aaron"}, PlanetCount: intPtr(-1)},
		"negative width":   {Players: []string{"Aaron"}, Width: -5},
		"too many planets": {Players: []string{"Aaron"}, Width: 1000, Height: 1000, PlanetCount: intPtr(20000)},
		"oversized board":  {Players: []string{"Aaron"}, Width: 1_000_000, Height: 1_000_000},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.service.CreateGame(ctx, cfg)
			if !errors.Is(err, errors.ErrorTypeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateGame_NoSpace(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateGame(context.Background(), GameConfig{
		Players:     []string{"Aaron"},
		Width:       30,
		Height:      30,
		PlanetCount: intPtr(40),
		Seed:        seed(1),
	})
	if !errors.Is(err, errors.ErrorTypeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	games, err := env.service.ListGames(context.Background())
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("failed generation must not store a game, got %d", len(games))
	}
}

func TestGetGame_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetGame(context.Background(), uuid.New())
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := env.service.Exists(context.Background(), uuid.New()); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Fatalf("Exists: expected not found, got %v", err)
	}
}

func neutralPlanet(t *testing.T, planets []*planet.Planet) *planet.Planet {
	t.Helper()
	for _, p := range planets {
		if !p.IsHome() {
			return p
		}
	}
	t.Fatalf("no neutral planet")
	return nil
}

func TestClaimPlanet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createGame(t)
	claimer := created.Players[0]
	target := neutralPlanet(t, created.Planets)

	sub := env.hub.Subscribe(created.Game.ID)
	defer sub.Close()

	claimed, err := env.service.ClaimPlanet(ctx, created.Game.ID, target.ID, claimer.ID)
	if err != nil {
		t.Fatalf("ClaimPlanet: %v", err)
	}
	if !claimed.IsOwnedBy(claimer.ID) {
		t.Fatalf("planet not owned by claimer")
	}

	select {
	case ev := <-sub.C:
		if ev.Type != broadcast.EventPlanetOwnerChanged || *ev.PlanetID != target.ID || *ev.OwnerID != claimer.ID {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event published")
	}

	// both the cache and the database reflect the new owner
	cached, err := env.service.GetGame(ctx, created.Game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if !findPlanet(t, cached.Planets, target.ID).IsOwnedBy(claimer.ID) {
		t.Fatalf("cached snapshot not updated")
	}

	_ = env.cache.Delete(ctx, created.Game.ID)
	stored, err := env.service.GetGame(ctx, created.Game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if !findPlanet(t, stored.Planets, target.ID).IsOwnedBy(claimer.ID) {
		t.Fatalf("owner not persisted")
	}

	stats, err := env.service.GetGameStats(ctx, created.Game.ID)
	if err != nil {
		t.Fatalf("GetGameStats: %v", err)
	}
	if stats.PlanetsByOwner[claimer.ID] != 2 {
		t.Fatalf("claimer owns %d planets, want 2", stats.PlanetsByOwner[claimer.ID])
	}
	if stats.UnownedPlanets != 9 || stats.NeutralPlanets != 10 {
		t.Fatalf("stats = %+v", stats)
	}
}

func findPlanet(t *testing.T, planets []*planet.Planet, id uuid.UUID) *planet.Planet {
	t.Helper()
	for _, p := range planets {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("planet %s not found", id)
	return nil
}

func TestClaimPlanet_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createGame(t)
	target := neutralPlanet(t, created.Planets)

	_, err := env.service.ClaimPlanet(ctx, created.Game.ID, uuid.New(), created.Players[0].ID)
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Fatalf("unknown planet: %v", err)
	}

	_, err = env.service.ClaimPlanet(ctx, created.Game.ID, target.ID, uuid.New())
	if !errors.Is(err, errors.ErrorTypeValidation) {
		t.Fatalf("unknown player: %v", err)
	}

	_, err = env.service.ClaimPlanet(ctx, uuid.New(), target.ID, created.Players[0].ID)
	if !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Fatalf("unknown game: %v", err)
	}
}

func TestClaimPlanet_OtherPlayersHomeIsRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createGame(t)
	aaron, peter := created.Players[0], created.Players[1]

	_, err := env.service.ClaimPlanet(ctx, created.Game.ID, *aaron.HomePlanetID, peter.ID)
	if !errors.Is(err, errors.ErrorTypeConflict) {
		t.Fatalf("claiming another player's home: %v", err)
	}

	_ = env.cache.Delete(ctx, created.Game.ID)
	stored, err := env.service.GetGame(ctx, created.Game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if !findPlanet(t, stored.Planets, *aaron.HomePlanetID).IsOwnedBy(aaron.ID) {
		t.Fatalf("home planet owner changed")
	}
}

func TestDeleteGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createGame(t)

	sub := env.hub.Subscribe(created.Game.ID)

	if err := env.service.DeleteGame(ctx, created.Game.ID); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}

	if _, err := env.service.GetGame(ctx, created.Game.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Fatalf("deleted game still readable: %v", err)
	}

	ev, ok := <-sub.C
	if !ok || ev.Type != broadcast.EventGameDeleted {
		t.Fatalf("expected game deleted event, got %+v (open=%v)", ev, ok)
	}
	if _, ok := <-sub.C; ok {
		t.Fatalf("subscription should be closed")
	}

	if err := env.service.DeleteGame(ctx, created.Game.ID); !errors.Is(err, errors.ErrorTypeNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListGames(t *testing.T) {
	env := newTestEnv(t)
	env.createGame(t)
	env.createGame(t)

	games, err := env.service.ListGames(context.Background())
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %d", len(games))
	}

	count, err := env.service.GetGameCount(context.Background())
	if err != nil || count != 2 {
		t.Fatalf("GetGameCount = %d, %v", count, err)
	}
}
