package game

import (
	"strings"
	"testing"
)

// dumpBoard is a test helper to visualize the snake on its grid.
// H marks the head, digits count body segments, * marks a growth marker.
func dumpBoard(c *Controller) string {
	g := c.Grid()
	cells := make([][]byte, g.Height)
	for z := range cells {
		cells[z] = []byte(strings.Repeat(".", g.Width))
	}
	first := true
	for _, s := range c.Segments() {
		p := s.Position
		switch {
		case first:
			cells[p.Z][p.X] = 'H'
			first = false
		case s.Growth:
			cells[p.Z][p.X] = '*'
		case cells[p.Z][p.X] == '.':
			cells[p.Z][p.X] = '1'
		case cells[p.Z][p.X] >= '1' && cells[p.Z][p.X] < '9':
			cells[p.Z][p.X]++
		}
	}
	var sb strings.Builder
	for _, row := range cells {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func logAdvance(t *testing.T, label string, before string, r TickResult, c *Controller) {
	t.Helper()
	t.Logf("%s\n  BEFORE:\n%s  AFTER (dir=%s grew=%v wrapped=%v):\n%s", label, before, r.Direction, r.Grew, r.Wrapped, dumpBoard(c))
}

func mustController(t *testing.T, g Grid, body []Point, dir Direction, ob Observer) *Controller {
	t.Helper()
	c, err := NewControllerWithBody(g, body, dir, ob)
	if err != nil {
		t.Fatalf("NewControllerWithBody: %v", err)
	}
	return c
}

func assertBody(t *testing.T, c *Controller, want []Point) {
	t.Helper()
	got := c.Body()
	if len(got) != len(want) {
		t.Fatalf("body len=%d want=%d (body=%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v (body=%v)", i, got[i], want[i], got)
		}
	}
}

// recordingObserver counts notifications.
type recordingObserver struct {
	added    []NodeHandle
	removed  []NodeHandle
	advanced []TickResult
}

func (r *recordingObserver) SegmentAdded(h NodeHandle, _ Point) { r.added = append(r.added, h) }
func (r *recordingObserver) SegmentRemoved(h NodeHandle)        { r.removed = append(r.removed, h) }
func (r *recordingObserver) Advanced(tr TickResult)             { r.advanced = append(r.advanced, tr) }
