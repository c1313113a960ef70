package planet

import (
	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/spatial"

	"github.com/google/uuid"
)

// Planets creates and keeps track of every planet on a tableau. Home planets
// come first, one per player in seating order, followed by neutral planets.
// No two planets are ever closer than the minimum distance.
type Planets struct {
	tableau     spatial.Tableau
	players     []*player.Player
	minDistance int
	home        []*Planet
	neutral     []*Planet
	gen         *Generator
}

// NewPlanets seats the players in random order, gives each of them a medium
// home planet and then scatters count neutral planets of any size.
func NewPlanets(tableau spatial.Tableau, players []*player.Player, count, minDistance int, gen *Generator) (*Planets, error) {
	if count < 0 {
		return nil, errors.Validationf("number of planets must not be negative, got %d", count)
	}
	if minDistance < 0 {
		return nil, errors.Validationf("minimum distance must not be negative, got %d", minDistance)
	}
	if gen == nil {
		return nil, errors.Validation("a planet generator is required")
	}
	if err := checkPlayers(players); err != nil {
		return nil, err
	}

	p := &Planets{
		tableau:     tableau,
		players:     append([]*player.Player(nil), players...),
		minDistance: minDistance,
		gen:         gen,
	}

	gen.Shuffle(p.players)

	for i, pl := range p.players {
		pl.TurnOrder = i
		home, err := p.CreatePlanet([]PlanetSize{PlanetSizeMedium}, pl)
		if err != nil {
			return nil, err
		}
		home.Index = len(p.home)
		p.home = append(p.home, home)
	}

	for i := 0; i < count; i++ {
		planet, err := p.CreatePlanet(AllSizes(), nil)
		if err != nil {
			return nil, err
		}
		planet.Index = len(p.home) + len(p.neutral)
		p.neutral = append(p.neutral, planet)
	}

	return p, nil
}

// Restore rebuilds a collection from stored players and planets without
// generating anything. Planets are expected in index order.
func Restore(tableau spatial.Tableau, players []*player.Player, planets []*Planet, minDistance int, gen *Generator) (*Planets, error) {
	if err := checkPlayers(players); err != nil {
		return nil, err
	}

	p := &Planets{
		tableau:     tableau,
		players:     append([]*player.Player(nil), players...),
		minDistance: minDistance,
		gen:         gen,
	}

	for _, planet := range planets {
		if planet.IsHome() {
			if pl, err := p.Player(*planet.HomePlayerID); err == nil {
				planet.homePlayerName = pl.Name
			}
			p.home = append(p.home, planet)
		} else {
			p.neutral = append(p.neutral, planet)
		}
	}

	return p, nil
}

func checkPlayers(players []*player.Player) error {
	seen := make(map[uuid.UUID]struct{}, len(players))
	for _, pl := range players {
		if pl == nil {
			return errors.Validation("player must not be nil")
		}
		if _, dup := seen[pl.ID]; dup {
			return player.ErrDuplicatePlayer
		}
		seen[pl.ID] = struct{}{}
	}
	return nil
}

// CreatePlanet generates a planet that does not collide with any planet in
// the collection. The planet is not added to the collection.
func (p *Planets) CreatePlanet(sizes []PlanetSize, home *player.Player) (*Planet, error) {
	if p.gen == nil {
		return nil, errors.Validation("collection has no planet generator")
	}
	return p.gen.CreateRandomPlanet(p.tableau.Area, p.minDistance, sizes, p.All(), home)
}

// Add appends a neutral planet after checking it fits on the tableau.
func (p *Planets) Add(planet *Planet) error {
	if planet.IsHome() {
		return errors.Validation("home planets are only created when the tableau is generated")
	}

	bounds, err := p.tableau.Inset(p.minDistance)
	if err != nil {
		return err
	}
	if !bounds.Contains(planet.Coordinate) {
		return errors.Validationf("planet at %s is outside the playable area %s", planet.Coordinate, bounds)
	}
	if Collides(planet, p.All(), p.minDistance) {
		return errors.Conflictf("planet at %s is closer than %d to another planet", planet.Coordinate, p.minDistance)
	}

	planet.Index = len(p.home) + len(p.neutral)
	p.neutral = append(p.neutral, planet)
	return nil
}

// All returns the home planets followed by the neutral planets.
func (p *Planets) All() []*Planet {
	all := make([]*Planet, 0, len(p.home)+len(p.neutral))
	all = append(all, p.home...)
	return append(all, p.neutral...)
}

func (p *Planets) HomePlanets() []*Planet {
	return append([]*Planet(nil), p.home...)
}

func (p *Planets) NeutralPlanets() []*Planet {
	return append([]*Planet(nil), p.neutral...)
}

// Players returns the players in seating order.
func (p *Planets) Players() []*player.Player {
	return append([]*player.Player(nil), p.players...)
}

func (p *Planets) Tableau() spatial.Tableau {
	return p.tableau
}

func (p *Planets) MinDistance() int {
	return p.minDistance
}

func (p *Planets) Len() int {
	return len(p.home) + len(p.neutral)
}

func (p *Planets) Find(id uuid.UUID) (*Planet, error) {
	for _, planet := range p.All() {
		if planet.ID == id {
			return planet, nil
		}
	}
	return nil, errors.NotFoundf("planet not found with id: %s", id)
}

func (p *Planets) Player(id uuid.UUID) (*player.Player, error) {
	for _, pl := range p.players {
		if pl.ID == id {
			return pl, nil
		}
	}
	return nil, errors.NotFoundf("player not found with id: %s", id)
}

// OwnedBy returns the planets currently owned by playerID.
func (p *Planets) OwnedBy(playerID uuid.UUID) []*Planet {
	return OwnedBy(p.All(), playerID)
}

// OwnedBy filters planets down to the ones owned by playerID, keeping their
// order. The result is never nil.
func OwnedBy(planets []*Planet, playerID uuid.UUID) []*Planet {
	owned := make([]*Planet, 0, len(planets))
	for _, planet := range planets {
		if planet.IsOwnedBy(playerID) {
			owned = append(owned, planet)
		}
	}
	return owned
}

// SetOwner hands planetID over to playerID, who must be seated at this
// tableau. A home planet always stays with its home player.
func (p *Planets) SetOwner(planetID, playerID uuid.UUID) (*Planet, error) {
	planet, err := p.Find(planetID)
	if err != nil {
		return nil, err
	}
	if _, err := p.Player(playerID); err != nil {
		return nil, errors.Validationf("player %s is not seated at this tableau", playerID)
	}
	if planet.IsHome() && *planet.HomePlayerID != playerID {
		return nil, errors.Conflictf("planet %s is the home planet of player %s", planetID, *planet.HomePlayerID)
	}

	planet.SetOwner(playerID)
	return planet, nil
}
