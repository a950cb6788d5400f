// Package autopilot supplies headings for sessions nobody is steering:
// headless runs, demos and recordings.
package autopilot

import (
	"context"
	"fmt"

	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/inference"
	"github.com/brensch/snek3d/rules"
)

// Policy picks the heading to request before the next tick.
type Policy interface {
	Next(ctx context.Context, snap *game.Snapshot) (game.Direction, error)
}

// Greedy heads for the nearest reachable candy along the torus. With no
// candy in reach it picks the safe heading with the most room.
type Greedy struct{}

func (Greedy) Next(_ context.Context, snap *game.Snapshot) (game.Direction, error) {
	safe := rules.SafeDirections(snap)
	if len(safe) == 0 {
		return snap.Direction, nil
	}

	g := snap.Grid()
	blocked := snap.Blocked()
	candies := make(game.IndexSet, len(snap.Candies))
	for _, p := range snap.Candies {
		candies.Add(g.Index(p))
	}

	best, bestDist, bestRoom := safe[0], -1, -1
	for _, d := range safe {
		start := g.Index(g.Step(snap.Head(), d))
		dist, room := search(g, start, blocked, candies)
		switch {
		case dist >= 0 && (bestDist < 0 || dist < bestDist):
			best, bestDist, bestRoom = d, dist, room
		case dist < 0 && bestDist < 0 && room > bestRoom:
			best, bestRoom = d, room
		}
	}
	return best, nil
}

// search runs a breadth-first flood from start. It returns the distance to
// the closest target (-1 if none is reachable) and the number of cells
// reached.
func search(g game.Grid, start int, blocked, targets game.IndexSet) (dist, room int) {
	seen := make([]bool, g.Cells())
	seen[start] = true
	frontier := []int{start}
	dist = -1
	for depth := 0; len(frontier) > 0; depth++ {
		var next []int
		for _, i := range frontier {
			room++
			if dist < 0 && targets.Has(i) {
				dist = depth
			}
			p := g.Point(i)
			for _, d := range game.Directions {
				j := g.Index(g.Step(p, d))
				if seen[j] || blocked.Has(j) {
					continue
				}
				seen[j] = true
				next = append(next, j)
			}
		}
		frontier = next
	}
	return dist, room
}

// Model asks a predictor for policy logits and takes the best safe heading.
type Model struct {
	Predictor inference.Predictor
}

func (m Model) Next(ctx context.Context, snap *game.Snapshot) (game.Direction, error) {
	policy, _, err := m.Predictor.Predict(ctx, snap)
	if err != nil {
		return game.DirectionNone, fmt.Errorf("predict turn %d: %w", snap.Turn, err)
	}
	if len(policy) != len(game.Directions) {
		return game.DirectionNone, fmt.Errorf("policy has %d logits, want %d", len(policy), len(game.Directions))
	}
	safe := rules.SafeDirections(snap)
	if len(safe) == 0 {
		return snap.Direction, nil
	}
	best := safe[0]
	for _, d := range safe[1:] {
		if policy[logit(d)] > policy[logit(best)] {
			best = d
		}
	}
	return best, nil
}

func logit(d game.Direction) int {
	for i, x := range game.Directions {
		if x == d {
			return i
		}
	}
	return -1
}

// Fallback uses Secondary whenever Primary fails.
type Fallback struct {
	Primary   Policy
	Secondary Policy
}

func (f Fallback) Next(ctx context.Context, snap *game.Snapshot) (game.Direction, error) {
	d, err := f.Primary.Next(ctx, snap)
	if err == nil {
		return d, nil
	}
	return f.Secondary.Next(ctx, snap)
}
