package spatial

import (
	"fmt"

	"planets-tableau/internal/shared/errors"
)

// Area is a rectangle described by its upper left and bottom right corners,
// both inclusive.
type Area struct {
	UpperLeft   Coordinate `json:"upper_left"`
	BottomRight Coordinate `json:"bottom_right"`
}

func NewArea(upperLeft, bottomRight Coordinate) (Area, error) {
	if bottomRight.X < upperLeft.X || bottomRight.Y < upperLeft.Y {
		return Area{}, errors.Validationf("area corners %s and %s are inverted", upperLeft, bottomRight)
	}
	return Area{UpperLeft: upperLeft, BottomRight: bottomRight}, nil
}

func (a Area) Width() int {
	return a.BottomRight.X - a.UpperLeft.X
}

func (a Area) Height() int {
	return a.BottomRight.Y - a.UpperLeft.Y
}

func (a Area) Contains(c Coordinate) bool {
	return c.X >= a.UpperLeft.X && c.X <= a.BottomRight.X &&
		c.Y >= a.UpperLeft.Y && c.Y <= a.BottomRight.Y
}

// Inset shrinks every edge of the area by margin.
func (a Area) Inset(margin int) (Area, error) {
	if margin < 0 {
		return Area{}, errors.Validationf("inset margin must not be negative, got %d", margin)
	}

	inner, err := NewArea(
		Coordinate{X: a.UpperLeft.X + margin, Y: a.UpperLeft.Y + margin},
		Coordinate{X: a.BottomRight.X - margin, Y: a.BottomRight.Y - margin},
	)
	if err != nil {
		return Area{}, errors.Validationf("area %s is too small for a margin of %d", a, margin)
	}

	return inner, nil
}

func (a Area) String() string {
	return fmt.Sprintf("Area(%s, %s)", a.UpperLeft, a.BottomRight)
}

// Tableau is the game board. Its upper left corner is always (0, 0), so only
// the bottom right corner sets the playing space.
type Tableau struct {
	Area
}

func NewTableau(bottomRight Coordinate) (Tableau, error) {
	if bottomRight.X <= 0 || bottomRight.Y <= 0 {
		return Tableau{}, errors.Validationf("tableau size must be positive, got %s", bottomRight)
	}
	area, err := NewArea(Coordinate{}, bottomRight)
	if err != nil {
		return Tableau{}, err
	}
	return Tableau{Area: area}, nil
}

// Size returns the width and height of the tableau.
func (t Tableau) Size() (int, int) {
	return t.BottomRight.X, t.BottomRight.Y
}
