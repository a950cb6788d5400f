package game

// Kind distinguishes collectibles from obstacles.
type Kind uint8

const (
	Candy Kind = iota
	Obstacle
)

func (k Kind) String() string {
	switch k {
	case Candy:
		return "candy"
	case Obstacle:
		return "obstacle"
	}
	return "unknown"
}

// Entity is a positioned collectible or obstacle.
type Entity struct {
	Kind     Kind
	Position Point
}

// Registry is a flat collection of entities addressed by grid index. At most
// one entity occupies a cell.
type Registry struct {
	grid     Grid
	entities []Entity
}

func NewRegistry(grid Grid) *Registry {
	return &Registry{grid: grid}
}

func (r *Registry) Len() int { return len(r.entities) }

// Add places e on the board. It reports false if the cell is taken.
func (r *Registry) Add(e Entity) bool {
	if _, ok := r.At(r.grid.Index(e.Position)); ok {
		return false
	}
	r.entities = append(r.entities, e)
	return true
}

// At returns the entity at grid index i.
func (r *Registry) At(i int) (Entity, bool) {
	for _, e := range r.entities {
		if r.grid.Index(e.Position) == i {
			return e, true
		}
	}
	return Entity{}, false
}

// RemoveAt removes the entity at grid index i and returns it.
func (r *Registry) RemoveAt(i int) (Entity, bool) {
	for j, e := range r.entities {
		if r.grid.Index(e.Position) != i {
			continue
		}
		last := len(r.entities) - 1
		r.entities[j] = r.entities[last]
		r.entities = r.entities[:last]
		return e, true
	}
	return Entity{}, false
}

// Entities returns a copy of the current entities.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Indexes returns the grid index of every entity.
func (r *Registry) Indexes() []int {
	out := make([]int, len(r.entities))
	for i, e := range r.entities {
		out[i] = r.grid.Index(e.Position)
	}
	return out
}

func (r *Registry) Count(k Kind) int {
	n := 0
	for _, e := range r.entities {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Of returns the positions of every entity of kind k.
func (r *Registry) Of(k Kind) []Point {
	var out []Point
	for _, e := range r.entities {
		if e.Kind == k {
			out = append(out, e.Position)
		}
	}
	return out
}

func (r *Registry) Clear() {
	r.entities = r.entities[:0]
}
