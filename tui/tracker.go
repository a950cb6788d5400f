package tui

import (
	"sync"

	"github.com/brensch/snek3d/game"
)

// Tracker mirrors the segment handles the snake reports, the way a scene
// graph would keep one visual node per segment.
type Tracker struct {
	mu      sync.Mutex
	live    map[game.NodeHandle]game.Point
	added   int
	removed int
	last    game.TickResult
}

func NewTracker() *Tracker {
	return &Tracker{live: make(map[game.NodeHandle]game.Point)}
}

func (t *Tracker) SegmentAdded(h game.NodeHandle, pos game.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[h] = pos
	t.added++
}

func (t *Tracker) SegmentRemoved(h game.NodeHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, h)
	t.removed++
}

func (t *Tracker) Advanced(r game.TickResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = r
}

// Live is the number of segments currently mirrored.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

func (t *Tracker) Counts() (added, removed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.added, t.removed
}

func (t *Tracker) Last() game.TickResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

var _ game.Observer = (*Tracker)(nil)
