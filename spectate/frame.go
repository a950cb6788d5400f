// Package spectate serves a read-only live view of a running session over
// HTTP and websockets, and follows such a view from another process.
package spectate

import (
	"encoding/json"

	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/rules"
)

type Coord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Frame is the board as published after one tick.
type Frame struct {
	Turn      int     `json:"turn"`
	Round     int     `json:"round"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Direction string  `json:"direction"`
	Body      []Coord `json:"body"`
	Candies   []Coord `json:"candies"`
	Obstacles []Coord `json:"obstacles"`
	Eaten     int     `json:"eaten"`
	Deaths    int     `json:"deaths"`
	Died      bool    `json:"died,omitempty"`
	Cause     string  `json:"cause,omitempty"`
}

// Event wraps everything sent over the websocket.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const EventFrame = "frame"

// NewFrame builds a frame from the outcome of a step and the snapshot
// taken after it.
func NewFrame(out rules.Outcome, snap *game.Snapshot) Frame {
	f := Frame{
		Turn:      snap.Turn,
		Round:     snap.Round,
		Width:     snap.Width,
		Height:    snap.Height,
		Direction: snap.Direction.String(),
		Body:      coords(snap.Body),
		Candies:   coords(snap.Candies),
		Obstacles: coords(snap.Obstacles),
		Eaten:     snap.Eaten,
		Deaths:    snap.Deaths,
		Died:      out.Died,
	}
	if out.Died {
		f.Cause = out.Cause.String()
	}
	return f
}

// Snapshot turns the frame back into a board for local rendering.
func (f Frame) Snapshot() *game.Snapshot {
	dir, _ := game.ParseDirection(f.Direction)
	return &game.Snapshot{
		Width:     f.Width,
		Height:    f.Height,
		Turn:      f.Turn,
		Round:     f.Round,
		Direction: dir,
		Body:      points(f.Body),
		Growth:    make([]bool, len(f.Body)),
		Candies:   points(f.Candies),
		Obstacles: points(f.Obstacles),
		Eaten:     f.Eaten,
		Deaths:    f.Deaths,
	}
}

func points(cs []Coord) []game.Point {
	out := make([]game.Point, len(cs))
	for i, c := range cs {
		out[i] = game.Point{X: c.X, Z: c.Z}
	}
	return out
}

func coords(ps []game.Point) []Coord {
	out := make([]Coord, len(ps))
	for i, p := range ps {
		out[i] = Coord{X: p.X, Z: p.Z}
	}
	return out
}

// Cells lays the frame out row by row for rendering. Each cell is one of
// "empty", "candy", "obstacle", "body" or "head".
func (f Frame) Cells() [][]string {
	rows := make([][]string, f.Height)
	for z := range rows {
		rows[z] = make([]string, f.Width)
		for x := range rows[z] {
			rows[z][x] = "empty"
		}
	}
	put := func(c Coord, kind string) {
		if c.Z >= 0 && c.Z < f.Height && c.X >= 0 && c.X < f.Width {
			rows[c.Z][c.X] = kind
		}
	}
	for _, c := range f.Candies {
		put(c, "candy")
	}
	for _, c := range f.Obstacles {
		put(c, "obstacle")
	}
	for i := len(f.Body) - 1; i >= 0; i-- {
		if i == 0 {
			put(f.Body[i], "head")
		} else {
			put(f.Body[i], "body")
		}
	}
	return rows
}
