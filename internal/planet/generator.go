package planet

import (
	"math/rand/v2"

	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/spatial"

	"github.com/google/uuid"
)

const DefaultMaxAttempts = 1000

// ErrNoSpace is returned when no collision free position was found within
// the attempt budget.
var ErrNoSpace = errors.Conflictf("no free position left for a new planet")

type Generator struct {
	rng         *rand.Rand
	maxAttempts int
}

type GeneratorOption func(*Generator)

// WithMaxAttempts bounds how many positions are tried per planet.
func WithMaxAttempts(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// NewGenerator returns a generator whose output is fully determined by seed.
func NewGenerator(seed int64, opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:         rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateRandomPlanet places a planet of one of sizes inside area, keeping
// minDistance from the area edges and from every planet in collisions.
func (g *Generator) CreateRandomPlanet(area spatial.Area, minDistance int, sizes []PlanetSize, collisions []*Planet, home *player.Player) (*Planet, error) {
	if err := checkPlanetSizes(sizes); err != nil {
		return nil, err
	}

	if minDistance < 0 {
		return nil, errors.Validationf("minimum distance must not be negative, got %d", minDistance)
	}

	bounds, err := area.Inset(minDistance)
	if err != nil {
		return nil, err
	}

	size := sizes[g.rng.IntN(len(sizes))]

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		coord := spatial.Coordinate{
			X: g.between(bounds.UpperLeft.X, bounds.BottomRight.X),
			Y: g.between(bounds.UpperLeft.Y, bounds.BottomRight.Y),
		}

		if collidesAt(coord, uuid.Nil, collisions, minDistance) {
			continue
		}

		return New(coord, size, home)
	}

	return nil, ErrNoSpace
}

// Shuffle reorders players in place.
func (g *Generator) Shuffle(players []*player.Player) {
	g.rng.Shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func checkPlanetSizes(sizes []PlanetSize) error {
	if len(sizes) == 0 {
		return errors.Validation("at least one planet size is required")
	}
	for _, size := range sizes {
		if !size.IsValid() {
			return errors.Validationf("invalid planet size %q, all values must be valid planet sizes", size)
		}
	}
	return nil
}
