package game

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// IndexSet is a set of occupied grid indexes.
type IndexSet map[int]struct{}

func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

func (s IndexSet) Add(i int) {
	s[i] = struct{}{}
}

// Occupancy builds the union of the snake's occupied cells and every
// entity's cell.
func Occupancy(grid Grid, snake []int, entities []Entity) IndexSet {
	set := make(IndexSet, len(snake)+len(entities))
	for _, i := range snake {
		set.Add(i)
	}
	for _, e := range entities {
		set.Add(grid.Index(e.Position))
	}
	return set
}

// Allocator picks free cells for new candies and obstacles.
type Allocator struct {
	grid Grid
	rng  *rand.Rand
}

// NewAllocator returns an allocator drawing from rng. If rng is nil the
// allocator seeds itself deterministically from the grid size, so runs are
// reproducible.
func NewAllocator(grid Grid, rng *rand.Rand) *Allocator {
	if rng == nil {
		seed := int64(deterministicSeed(grid, 0x535041574E5F494E)) // "SPAWN_IN"
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Allocator{grid: grid, rng: rng}
}

// SampleFreeIndex draws indexes uniformly from the board until it finds one
// that is not in occupied.
//
// At least one free cell must exist. This is not checked: on a full board
// the call never returns. Boards are small relative to the snake, so callers
// that can fill the board check FreeCells first.
func (a *Allocator) SampleFreeIndex(occupied IndexSet) int {
	n := a.grid.Cells()
	for {
		i := a.rng.Intn(n)
		if !occupied.Has(i) {
			return i
		}
	}
}

// FreeCells counts the cells not in occupied.
func (a *Allocator) FreeCells(occupied IndexSet) int {
	free := a.grid.Cells()
	for i := range occupied {
		if i >= 0 && i < a.grid.Cells() {
			free--
		}
	}
	return free
}

func deterministicSeed(grid Grid, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(uint32(grid.Width))|(uint64(uint32(grid.Height))<<32))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])

	return h.Sum64()
}
