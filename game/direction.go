package game

import (
	"strings"

	"github.com/joonazan/vec2"
)

// Direction is a logical heading. The zero value is DirectionNone.
type Direction int8

const (
	DirectionNone Direction = iota
	Up
	Down
	Left
	Right
)

// Directions lists every valid heading in a stable order.
var Directions = [...]Direction{Up, Down, Left, Right}

// Unit vectors in (x, z). Up points towards z=0, matching the scene where
// the camera looks down the positive z axis.
var unitVectors = [...]vec2.Vector{
	Up:    {X: 0, Y: -1},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Vector returns the unit vector for d, or the zero vector for an invalid d.
func (d Direction) Vector() vec2.Vector {
	if !d.Valid() {
		return vec2.Vector{}
	}
	return unitVectors[d]
}

func (d Direction) Delta() (dx, dz int) {
	v := d.Vector()
	return int(v.X), int(v.Y)
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return DirectionNone
}

// Dot is the dot product of the unit vectors of a and b: 1 for the same
// heading, -1 for opposite headings and 0 for perpendicular ones.
func Dot(a, b Direction) int {
	va, vb := a.Vector(), b.Vector()
	return int(va.X*vb.X + va.Y*vb.Y)
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// ParseDirection decodes a raw input code: DOM key codes ("ArrowUp"),
// names ("up"), WASD and vi keys. Unknown codes report false.
func ParseDirection(code string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "arrowup", "up", "w", "k":
		return Up, true
	case "arrowdown", "down", "s", "j":
		return Down, true
	case "arrowleft", "left", "a", "h":
		return Left, true
	case "arrowright", "right", "d", "l":
		return Right, true
	}
	return DirectionNone, false
}
