package player

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxNameLength = 64

// Player is a participant seated at a tableau. A player has at most one home
// planet, assigned when the board is generated.
type Player struct {
	ID           uuid.UUID  `json:"id"`
	GameID       uuid.UUID  `json:"game_id"`
	Name         string     `json:"name"`
	TurnOrder    int        `json:"turn_order"`
	HomePlanetID *uuid.UUID `json:"home_planet_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// New creates a player with a fresh identity and a validated display name.
func New(name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrInvalidName
	}

	return &Player{
		ID:   uuid.New(),
		Name: name,
	}, nil
}

func (p *Player) SetHomePlanet(planetID uuid.UUID) {
	p.HomePlanetID = &planetID
}

func (p *Player) HasHomePlanet() bool {
	return p.HomePlanetID != nil
}

func (p *Player) String() string {
	return fmt.Sprintf("Player(name=%s)", p.Name)
}
