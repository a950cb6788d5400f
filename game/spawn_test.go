package game

import (
	"math/rand"
	"testing"
)

func TestSampleFreeIndex_NeverReturnsOccupied(t *testing.T) {
	g := NewGrid(6, 5)
	rng := rand.New(rand.NewSource(42))
	a := NewAllocator(g, rng)

	for trial := 0; trial < 200; trial++ {
		occupied := make(IndexSet)
		// Leave at least one cell free.
		n := rng.Intn(g.Cells())
		for len(occupied) < n {
			occupied.Add(rng.Intn(g.Cells()))
		}
		i := a.SampleFreeIndex(occupied)
		if i < 0 || i >= g.Cells() {
			t.Fatalf("trial %d: index %d out of range", trial, i)
		}
		if occupied.Has(i) {
			t.Fatalf("trial %d: returned occupied index %d", trial, i)
		}
	}
}

func TestSampleFreeIndex_SingleFreeCell(t *testing.T) {
	g := NewGrid(4, 4)
	a := NewAllocator(g, nil)
	occupied := make(IndexSet)
	for i := 0; i < g.Cells(); i++ {
		if i != 11 {
			occupied.Add(i)
		}
	}
	if got := a.SampleFreeIndex(occupied); got != 11 {
		t.Fatalf("got %d want 11", got)
	}
	if free := a.FreeCells(occupied); free != 1 {
		t.Fatalf("free=%d want 1", free)
	}
}

func TestNewAllocator_NilRNGIsDeterministic(t *testing.T) {
	g := NewGrid(10, 10)
	a, b := NewAllocator(g, nil), NewAllocator(g, nil)
	occupied := IndexSet{0: {}, 1: {}}
	for i := 0; i < 20; i++ {
		if x, y := a.SampleFreeIndex(occupied), b.SampleFreeIndex(occupied); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestOccupancy(t *testing.T) {
	g := NewGrid(10, 10)
	set := Occupancy(g, []int{3, 4}, []Entity{{Kind: Candy, Position: Point{X: 9, Z: 9}}})
	for _, i := range []int{3, 4, 99} {
		if !set.Has(i) {
			t.Fatalf("index %d missing from %v", i, set)
		}
	}
	if len(set) != 3 {
		t.Fatalf("len=%d want 3", len(set))
	}
}
