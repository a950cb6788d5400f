package game

// Snapshot is a self-contained copy of the board, safe to hand to other
// goroutines (renderers, recorders, policies).
type Snapshot struct {
	Width     int
	Height    int
	Turn      int // ticks since the session started
	Round     int // rounds started, 1-based
	Direction Direction
	Body      []Point // head first
	Growth    []bool  // growth markers, parallel to Body
	Candies   []Point
	Obstacles []Point
	Deaths    int
	Eaten     int
}

// Capture copies the controller's body and the registry's entities.
func Capture(c *Controller, r *Registry) *Snapshot {
	s := &Snapshot{
		Width:     c.grid.Width,
		Height:    c.grid.Height,
		Direction: c.direction,
		Body:      make([]Point, 0, c.Len()),
		Growth:    make([]bool, 0, c.Len()),
		Deaths:    c.deaths,
	}
	for _, seg := range c.Segments() {
		s.Body = append(s.Body, seg.Position)
		s.Growth = append(s.Growth, seg.Growth)
	}
	if r != nil {
		s.Candies = r.Of(Candy)
		s.Obstacles = r.Of(Obstacle)
	}
	return s
}

func (s *Snapshot) Grid() Grid {
	return Grid{Width: s.Width, Height: s.Height}
}

func (s *Snapshot) Head() Point {
	return s.Body[0]
}

// Blocked is the set of cells a head must not enter: the body minus the
// tail (which moves away on the next tick) plus obstacles.
func (s *Snapshot) Blocked() IndexSet {
	g := s.Grid()
	set := make(IndexSet, len(s.Body)+len(s.Obstacles))
	body := s.Body
	if len(body) > 1 && !s.Growth[len(s.Growth)-1] {
		body = body[:len(body)-1]
	}
	for _, p := range body {
		set.Add(g.Index(p))
	}
	for _, p := range s.Obstacles {
		set.Add(g.Index(p))
	}
	return set
}

// Clone performs a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Body = append([]Point(nil), s.Body...)
	out.Growth = append([]bool(nil), s.Growth...)
	out.Candies = append([]Point(nil), s.Candies...)
	out.Obstacles = append([]Point(nil), s.Obstacles...)
	return &out
}
