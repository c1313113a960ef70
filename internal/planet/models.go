package planet

import (
	"encoding/json"
	"fmt"
	"time"

	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/spatial"

	"github.com/google/uuid"
)

type PlanetSize string

const (
	PlanetSizeSmall  PlanetSize = "small"
	PlanetSizeMedium PlanetSize = "medium"
	PlanetSizeLarge  PlanetSize = "large"
)

// AllSizes returns every planet size, smallest first.
func AllSizes() []PlanetSize {
	return []PlanetSize{PlanetSizeSmall, PlanetSizeMedium, PlanetSizeLarge}
}

func ParsePlanetSize(s string) (PlanetSize, error) {
	size := PlanetSize(s)
	if !size.IsValid() {
		return "", errors.Validationf("invalid planet size %q, must be one of small, medium, large", s)
	}
	return size, nil
}

func (s PlanetSize) IsValid() bool {
	switch s {
	case PlanetSizeSmall, PlanetSizeMedium, PlanetSizeLarge:
		return true
	default:
		return false
	}
}

// Radius is the drawn radius of a planet of this size in tableau units.
func (s PlanetSize) Radius() int {
	switch s {
	case PlanetSizeSmall:
		return 25
	case PlanetSizeMedium:
		return 50
	case PlanetSizeLarge:
		return 75
	default:
		return 0
	}
}

func (s PlanetSize) String() string {
	return string(s)
}

func (s *PlanetSize) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WrapValidation("planet size must be a string", err)
	}
	parsed, err := ParsePlanetSize(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Planet struct {
	ID           uuid.UUID          `json:"id"`
	GameID       uuid.UUID          `json:"game_id"`
	Index        int                `json:"planet_index"`
	Coordinate   spatial.Coordinate `json:"coordinate"`
	Size         PlanetSize         `json:"size"`
	HomePlayerID *uuid.UUID         `json:"home_player_id"`
	OwnerID      *uuid.UUID         `json:"owner_id"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	homePlayerName string
}

// New creates a planet at coord. When home is set the planet becomes that
// player's home planet and starts out owned by them.
func New(coord spatial.Coordinate, size PlanetSize, home *player.Player) (*Planet, error) {
	if !size.IsValid() {
		return nil, errors.Validationf("invalid planet size %q, must be a valid planet size", size)
	}

	p := &Planet{
		ID:         uuid.New(),
		Coordinate: coord,
		Size:       size,
	}

	if home != nil {
		homeID := home.ID
		p.HomePlayerID = &homeID
		p.homePlayerName = home.Name
		p.SetOwner(home.ID)
		home.SetHomePlanet(p.ID)
	}

	return p, nil
}

// MarshalJSON adds the drawn radius of the planet's size.
func (p *Planet) MarshalJSON() ([]byte, error) {
	type plain Planet
	return json.Marshal(struct {
		plain
		Radius int `json:"radius"`
	}{
		plain:  plain(*p),
		Radius: p.Size.Radius(),
	})
}

func (p *Planet) SetOwner(playerID uuid.UUID) {
	p.OwnerID = &playerID
}

func (p *Planet) ClearOwner() {
	p.OwnerID = nil
}

func (p *Planet) IsHome() bool {
	return p.HomePlayerID != nil
}

func (p *Planet) IsOwnedBy(playerID uuid.UUID) bool {
	return p.OwnerID != nil && *p.OwnerID == playerID
}

func (p *Planet) String() string {
	if p.HomePlayerID != nil {
		home := p.homePlayerName
		if home == "" {
			home = p.HomePlayerID.String()
		}
		return fmt.Sprintf("Planet(coordinate=%s, planet_size=%s, home_player=%s)", p.Coordinate, p.Size, home)
	}
	return fmt.Sprintf("Planet(coordinate=%s, planet_size=%s)", p.Coordinate, p.Size)
}

// Collides reports whether p lies strictly closer than minDistance to any
// planet in others. A planet never collides with itself.
func Collides(p *Planet, others []*Planet, minDistance int) bool {
	return collidesAt(p.Coordinate, p.ID, others, minDistance)
}

func collidesAt(coord spatial.Coordinate, self uuid.UUID, others []*Planet, minDistance int) bool {
	for _, other := range others {
		if other.ID == self {
			continue
		}
		if coord.Within(other.Coordinate, minDistance) {
			return true
		}
	}
	return false
}
