package game

import (
	"time"

	"planets-tableau/internal/planet"
	"planets-tableau/internal/player"
	"planets-tableau/internal/spatial"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GameStatusCreating  GameStatus = "creating"
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
)

// Game is a persisted tableau. The board always spans (0, 0) to
// (Width, Height).
type Game struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Status      GameStatus `json:"status"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	MinDistance int        `json:"min_distance"`
	Seed        int64      `json:"seed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (g *Game) Tableau() (spatial.Tableau, error) {
	return spatial.NewTableau(spatial.NewCoordinate(g.Width, g.Height))
}

// GameConfig is the request for a new game. Zero values are replaced by the
// configured defaults.
type GameConfig struct {
	Name        string   `json:"name"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	PlanetCount *int     `json:"planet_count"`
	MinDistance *int     `json:"min_distance"`
	Players     []string `json:"players"`
	Seed        *int64   `json:"seed"`
}

// Snapshot is the full state of a game as served to clients and cached.
type Snapshot struct {
	Game    *Game            `json:"game"`
	Players []*player.Player `json:"players"`
	Planets []*planet.Planet `json:"planets"`
}

// CreatedGame is returned once, on creation. Tokens maps player IDs to
// their session tokens.
type CreatedGame struct {
	*Snapshot
	Tokens map[uuid.UUID]string `json:"tokens"`
}

type GameStats struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Status         GameStatus        `json:"status"`
	PlayerCount    int               `json:"player_count"`
	PlanetCount    int               `json:"planet_count"`
	NeutralPlanets int               `json:"neutral_planets"`
	UnownedPlanets int               `json:"unowned_planets"`
	PlanetsByOwner map[uuid.UUID]int `json:"planets_by_owner"`
	PlanetsBySize  map[string]int    `json:"planets_by_size"`
}

// Stats summarises the planets of a snapshot.
func (s *Snapshot) Stats() *GameStats {
	stats := &GameStats{
		ID:             s.Game.ID,
		Name:           s.Game.Name,
		Status:         s.Game.Status,
		PlayerCount:    len(s.Players),
		PlanetCount:    len(s.Planets),
		PlanetsByOwner: make(map[uuid.UUID]int, len(s.Players)),
		PlanetsBySize:  make(map[string]int, len(planet.AllSizes())),
	}

	for _, p := range s.Players {
		stats.PlanetsByOwner[p.ID] = 0
	}
	for _, size := range planet.AllSizes() {
		stats.PlanetsBySize[size.String()] = 0
	}

	for _, p := range s.Planets {
		stats.PlanetsBySize[p.Size.String()]++
		if !p.IsHome() {
			stats.NeutralPlanets++
		}
		if p.OwnerID == nil {
			stats.UnownedPlanets++
			continue
		}
		stats.PlanetsByOwner[*p.OwnerID]++
	}

	return stats
}
