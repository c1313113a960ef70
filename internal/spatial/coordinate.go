package spatial

import "fmt"

// Coordinate is an integer position on the tableau. X grows to the right and
// Y grows downwards, as on a screen.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// DistanceSquared returns the squared euclidean distance to other.
func (c Coordinate) DistanceSquared(other Coordinate) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	return dx*dx + dy*dy
}

// Within reports whether other is strictly closer than distance.
func (c Coordinate) Within(other Coordinate, distance int) bool {
	return c.DistanceSquared(other) < distance*distance
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}
