// Package game implements the simulation core of a snake on a toroidal grid.
//
// The core is deterministic and single-threaded: the surrounding application
// owns tick timing and calls Advance once per tick. Rendering layers observe
// the core through the Observer port and read-only queries; the core never
// depends on any rendering API.
package game

import "fmt"

// Point is a grid coordinate. X grows to the right, Z grows "down" the board
// (towards the viewer in the 3D scene).
type Point struct {
	X int
	Z int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// Grid maps coordinates of a Width x Height torus to linear indexes.
// Index = Z*Width + X.
type Grid struct {
	Width  int
	Height int
}

func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height}
}

// Cells is the number of cells on the board.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Index converts an in-bounds coordinate to its linear index.
// Callers wrap before indexing; out-of-bounds input is not checked.
func (g Grid) Index(p Point) int {
	return p.Z*g.Width + p.X
}

// Point is the inverse of Index.
func (g Grid) Point(i int) Point {
	return Point{X: i % g.Width, Z: i / g.Width}
}

func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Z >= 0 && p.Z < g.Height
}

// Wrap folds a coordinate that is at most one cell outside the board back
// onto the opposite edge. Each axis wraps independently.
func (g Grid) Wrap(p Point) Point {
	p.X = wrapAxis(p.X, g.Width)
	p.Z = wrapAxis(p.Z, g.Height)
	return p
}

// Wrapped reports whether Wrap would move p.
func (g Grid) Wrapped(p Point) bool {
	return g.Wrap(p) != p
}

func wrapAxis(v, extent int) int {
	if v < 0 {
		return extent - 1
	}
	if v > extent-1 {
		return 0
	}
	return v
}

// Center is where a fresh snake head is placed.
func (g Grid) Center() Point {
	return Point{X: g.Width / 2, Z: g.Height / 2}
}

// Step moves p one cell in d and wraps the result.
func (g Grid) Step(p Point, d Direction) Point {
	dx, dz := d.Delta()
	return g.Wrap(Point{X: p.X + dx, Z: p.Z + dz})
}
