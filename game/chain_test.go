package game

import "testing"

func buildChain(ob Observer, pts ...Point) *Chain {
	c := NewChain(pts[0], ob)
	for i := 1; i < len(pts); i++ {
		c.AppendTail(&pts[i])
	}
	return c
}

func positions(c *Chain) []Point {
	var out []Point
	for _, s := range c.FromHead() {
		out = append(out, s.Position)
	}
	return out
}

func TestChain_AppendTailInheritsTailPosition(t *testing.T) {
	ob := &recordingObserver{}
	c := buildChain(ob, Point{X: 1, Z: 1}, Point{X: 1, Z: 2})
	h := c.AppendTail(nil)

	if h != c.Tail() {
		t.Fatalf("appended handle %d is not the tail %d", h, c.Tail())
	}
	if got := c.Segment(h).Position; got != (Point{X: 1, Z: 2}) {
		t.Fatalf("new tail at %v want (1,2)", got)
	}
	if len(ob.added) != 3 {
		t.Fatalf("added notifications=%d want 3", len(ob.added))
	}
	if p, ok := c.Prev(h); !ok || c.Segment(p).Position != (Point{X: 1, Z: 2}) {
		t.Fatalf("new tail is not linked to the old tail")
	}
	if _, ok := c.Next(h); ok {
		t.Fatalf("tail must not have a successor")
	}
	if _, ok := c.Prev(c.Head()); ok {
		t.Fatalf("head must not have a predecessor")
	}
}

func TestChain_TraversalVisitsEverySegmentOnce(t *testing.T) {
	c := buildChain(nil, Point{X: 0}, Point{X: 1}, Point{X: 2}, Point{X: 3})

	var fromHead, fromTail []NodeHandle
	for h := range c.FromHead() {
		fromHead = append(fromHead, h)
	}
	for h := range c.FromTail() {
		fromTail = append(fromTail, h)
	}
	if len(fromHead) != 4 || len(fromTail) != 4 {
		t.Fatalf("visited %d/%d segments want 4", len(fromHead), len(fromTail))
	}
	for i := range fromHead {
		if fromHead[i] != fromTail[len(fromTail)-1-i] {
			t.Fatalf("head and tail traversals disagree: %v vs %v", fromHead, fromTail)
		}
	}

	// Restartable and stoppable.
	n := 0
	for range c.FromHead() {
		n++
		if n == 2 {
			break
		}
	}
	again := 0
	for range c.FromHead() {
		again++
	}
	if n != 2 || again != 4 {
		t.Fatalf("early stop visited %d, restart visited %d", n, again)
	}
}

func TestChain_PropagateFollowCopiesPreMovePositions(t *testing.T) {
	c := buildChain(nil, Point{X: 5, Z: 5}, Point{X: 5, Z: 6}, Point{X: 5, Z: 7}, Point{X: 5, Z: 8})

	if grew := c.PropagateFollow(); grew {
		t.Fatalf("unexpected growth")
	}
	want := []Point{{X: 5, Z: 5}, {X: 5, Z: 5}, {X: 5, Z: 6}, {X: 5, Z: 7}}
	got := positions(c)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after propagate body=%v want %v", got, want)
		}
	}
}

func TestChain_GrowthMarkerShiftsTowardsTail(t *testing.T) {
	c := buildChain(nil, Point{X: 0}, Point{X: 1}, Point{X: 2})
	c.MarkHead()

	markers := func() []bool {
		var out []bool
		for _, s := range c.FromHead() {
			out = append(out, s.Growth)
		}
		return out
	}

	c.PropagateFollow()
	if m := markers(); m[0] || !m[1] || m[2] {
		t.Fatalf("after 1 step markers=%v want [false true false]", m)
	}
	c.PropagateFollow()
	if m := markers(); m[0] || m[1] || !m[2] {
		t.Fatalf("after 2 steps markers=%v want [false false true]", m)
	}

	tailBefore := c.Segment(c.Tail()).Position
	if grew := c.PropagateFollow(); !grew {
		t.Fatalf("marker on tail must grow the chain")
	}
	if c.Len() != 4 {
		t.Fatalf("len=%d want 4", c.Len())
	}
	if got := c.Segment(c.Tail()).Position; got != tailBefore {
		t.Fatalf("new tail at %v want old tail position %v", got, tailBefore)
	}
	for i, m := range markers() {
		if m {
			t.Fatalf("marker left on segment %d after growth", i)
		}
	}
}

func TestChain_ReleaseNotifiesEverySegment(t *testing.T) {
	ob := &recordingObserver{}
	c := buildChain(ob, Point{X: 0}, Point{X: 1}, Point{X: 2})
	c.Release()

	if len(ob.removed) != 3 {
		t.Fatalf("removed notifications=%d want 3", len(ob.removed))
	}
	if ob.removed[0] != 0 || ob.removed[2] != 2 {
		t.Fatalf("removal order=%v want head to tail", ob.removed)
	}
	if c.Len() != 0 {
		t.Fatalf("len=%d after release", c.Len())
	}
}
