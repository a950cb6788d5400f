package game

import (
	"errors"
	"fmt"
	"iter"
)

// InitialLength is the number of segments of a fresh snake: a head and
// three body segments.
const InitialLength = 4

// DefaultDirection is the heading of a fresh snake.
const DefaultDirection = Up

// ErrInvariant reports a state the update rules can never produce. Seeing
// it means a bug, not a gameplay event.
var ErrInvariant = errors.New("game: invariant violated")

type State uint8

const (
	Alive State = iota
	Dead
)

func (s State) String() string {
	if s == Dead {
		return "dead"
	}
	return "alive"
}

// TickResult describes what one Advance changed.
type TickResult struct {
	Turn          int
	Head          Point
	HeadIndex     int
	Direction     Direction
	Length        int
	Grew          bool
	Wrapped       bool
	SelfCollision bool
}

// Controller owns the snake body and its heading and advances them one
// tick at a time.
//
// RequestDirection may be called at any time between ticks; it only writes
// the buffered heading. Everything else must be serialized with Advance by
// the caller.
type Controller struct {
	grid     Grid
	observer Observer

	chain     *Chain
	direction Direction
	pending   Direction
	occupied  []int // tail to head; the head is the last entry
	state     State
	turn      int
	deaths    int
}

// NewController creates a controller with a fresh snake at the board center.
func NewController(grid Grid, observer Observer) *Controller {
	if observer == nil {
		observer = NopObserver{}
	}
	c := &Controller{grid: grid, observer: observer}
	c.rebuild()
	return c
}

// NewControllerWithBody creates a controller whose snake occupies body,
// head first, heading in dir.
func NewControllerWithBody(grid Grid, body []Point, dir Direction, observer Observer) (*Controller, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("body must have at least one segment")
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %d", dir)
	}
	for i, p := range body {
		if !grid.InBounds(p) {
			return nil, fmt.Errorf("segment %d at %v is outside %dx%d", i, p, grid.Width, grid.Height)
		}
	}
	if observer == nil {
		observer = NopObserver{}
	}

	c := &Controller{grid: grid, observer: observer, direction: dir, state: Alive}
	c.chain = NewChain(body[0], observer)
	for i := 1; i < len(body); i++ {
		c.chain.AppendTail(&body[i])
	}
	c.rebuildOccupied()
	return c, nil
}

// rebuild discards the current chain and lays out a fresh one: the head at
// the center and the body trailing behind it, opposite DefaultDirection.
func (c *Controller) rebuild() {
	c.direction = DefaultDirection
	c.pending = DirectionNone
	c.turn = 0

	pos := c.grid.Center()
	c.chain = NewChain(pos, c.observer)
	back := c.direction.Opposite()
	for i := 1; i < InitialLength; i++ {
		pos = c.grid.Step(pos, back)
		c.chain.AppendTail(&pos)
	}
	c.rebuildOccupied()
	c.state = Alive
}

// RequestDirection buffers a new heading for the next tick. Invalid
// headings and headings that are not perpendicular to the current one are
// ignored; an accepted request replaces any earlier buffered one.
func (c *Controller) RequestDirection(d Direction) {
	if !d.Valid() || Dot(c.direction, d) != 0 {
		return
	}
	c.pending = d
}

// Advance runs one tick.
func (c *Controller) Advance() TickResult {
	if c.pending != DirectionNone {
		c.direction = c.pending
		c.pending = DirectionNone
	}

	grew := c.chain.PropagateFollow()

	head := c.chain.Segment(c.chain.Head()).Position
	dx, dz := c.direction.Delta()
	next := Point{X: head.X + dx, Z: head.Z + dz}
	wrapped := !c.grid.InBounds(next)
	next = c.grid.Wrap(next)
	c.chain.SetHeadPosition(next)

	c.rebuildOccupied()
	c.turn++

	r := TickResult{
		Turn:          c.turn,
		Head:          next,
		HeadIndex:     c.grid.Index(next),
		Direction:     c.direction,
		Length:        c.chain.Len(),
		Grew:          grew,
		Wrapped:       wrapped,
		SelfCollision: c.CheckSelfCollision(),
	}
	c.observer.Advanced(r)
	return r
}

func (c *Controller) rebuildOccupied() {
	occ := make([]int, 0, c.chain.Len())
	for _, s := range c.chain.FromTail() {
		occ = append(occ, c.grid.Index(s.Position))
	}
	c.occupied = occ
}

// CheckSelfCollision reports whether the head shares its cell with any
// other segment. Only the head's own slot is excluded.
func (c *Controller) CheckSelfCollision() bool {
	last := len(c.occupied) - 1
	head := c.occupied[last]
	for _, i := range c.occupied[:last] {
		if i == head {
			return true
		}
	}
	return false
}

// CheckEntityCollision reports whether any entity sits on the head's cell.
func (c *Controller) CheckEntityCollision(entities []Entity) bool {
	head := c.HeadIndex()
	for _, e := range entities {
		if c.grid.Index(e.Position) == head {
			return true
		}
	}
	return false
}

// MarkHeadCarriesGrowth records that the head just ate. The snake grows by
// one segment once the marker has travelled to the tail.
func (c *Controller) MarkHeadCarriesGrowth() {
	c.chain.MarkHead()
}

// Kill ends the round: every segment is released and a fresh snake is
// built in its place.
func (c *Controller) Kill() {
	c.state = Dead
	c.deaths++
	c.chain.Release()
	c.rebuild()
}

// Reset rebuilds the snake without counting a death.
func (c *Controller) Reset() {
	c.chain.Release()
	c.rebuild()
}

// CheckInvariants verifies that no two non-head segments share a cell and
// that the occupied indexes mirror the chain.
func (c *Controller) CheckInvariants() error {
	if c.chain.Len() < 1 {
		return fmt.Errorf("%w: empty chain", ErrInvariant)
	}
	if len(c.occupied) != c.chain.Len() {
		return fmt.Errorf("%w: %d occupied indexes for %d segments", ErrInvariant, len(c.occupied), c.chain.Len())
	}
	seen := make(map[int]struct{}, len(c.occupied))
	for _, i := range c.occupied[:len(c.occupied)-1] {
		if _, dup := seen[i]; dup {
			return fmt.Errorf("%w: cell %v occupied twice", ErrInvariant, c.grid.Point(i))
		}
		seen[i] = struct{}{}
	}
	visited := 0
	for range c.chain.FromHead() {
		visited++
		if visited > c.chain.Len() {
			return fmt.Errorf("%w: cycle in chain", ErrInvariant)
		}
	}
	if visited != c.chain.Len() {
		return fmt.Errorf("%w: traversal visited %d of %d segments", ErrInvariant, visited, c.chain.Len())
	}
	return nil
}

func (c *Controller) Grid() Grid           { return c.grid }
func (c *Controller) State() State         { return c.state }
func (c *Controller) Direction() Direction { return c.direction }
func (c *Controller) Pending() Direction   { return c.pending }
func (c *Controller) Len() int             { return c.chain.Len() }
func (c *Controller) Turn() int            { return c.turn }
func (c *Controller) Deaths() int          { return c.deaths }

func (c *Controller) Head() Point {
	return c.chain.Segment(c.chain.Head()).Position
}

func (c *Controller) HeadIndex() int {
	return c.occupied[len(c.occupied)-1]
}

// OccupiedIndexes returns a copy of the occupied cells, tail to head.
func (c *Controller) OccupiedIndexes() []int {
	out := make([]int, len(c.occupied))
	copy(out, c.occupied)
	return out
}

// Segments yields the body head to tail, for renderers syncing transforms.
func (c *Controller) Segments() iter.Seq2[NodeHandle, Segment] {
	return c.chain.FromHead()
}

// Body returns the segment positions head first.
func (c *Controller) Body() []Point {
	out := make([]Point, 0, c.chain.Len())
	for _, s := range c.chain.FromHead() {
		out = append(out, s.Position)
	}
	return out
}
