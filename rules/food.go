package rules

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/brensch/snek3d/game"
)

// Settings controls the board and how it is stocked.
//   - MinimumCandy: ensure at least this many candies exist after each tick
//   - CandySpawnChance: percentage chance (0-100) to spawn one extra candy each tick
//   - Obstacles: obstacles placed at the start of every round
type Settings struct {
	Width            int
	Height           int
	MinimumCandy     int
	CandySpawnChance int
	Obstacles        int
}

var DefaultSettings = Settings{Width: 10, Height: 10, MinimumCandy: 1, CandySpawnChance: 0, Obstacles: 3}

// placeObstacles puts the round's obstacles on free cells, keeping the cell
// in front of the fresh head clear so a round never starts lost.
func (s *Session) placeObstacles() {
	occupied := s.occupancy()
	guard := s.grid.Step(s.snake.Head(), s.snake.Direction())
	occupied.Add(s.grid.Index(guard))

	for i := 0; i < s.settings.Obstacles; i++ {
		if s.alloc.FreeCells(occupied) == 0 {
			return
		}
		idx := s.alloc.SampleFreeIndex(occupied)
		s.entities.Add(game.Entity{Kind: game.Obstacle, Position: s.grid.Point(idx)})
		occupied.Add(idx)
	}
}

// applyCandyRules tops the board up to MinimumCandy and, when extra is set,
// rolls for one bonus candy. It stops early once the board is full.
func (s *Session) applyCandyRules(extra bool) []game.Entity {
	deficit := s.settings.MinimumCandy - s.entities.Count(game.Candy)
	if deficit < 0 {
		deficit = 0
	}
	toSpawn := deficit
	if extra && s.settings.CandySpawnChance > 0 && s.rng.Intn(100) < s.settings.CandySpawnChance {
		toSpawn++
	}
	if toSpawn == 0 {
		return nil
	}

	occupied := s.occupancy()
	var spawned []game.Entity
	for ; toSpawn > 0; toSpawn-- {
		if s.alloc.FreeCells(occupied) == 0 {
			break
		}
		idx := s.alloc.SampleFreeIndex(occupied)
		e := game.Entity{Kind: game.Candy, Position: s.grid.Point(idx)}
		s.entities.Add(e)
		occupied.Add(idx)
		spawned = append(spawned, e)
	}
	return spawned
}

func (s *Session) occupancy() game.IndexSet {
	return game.Occupancy(s.grid, s.snake.OccupiedIndexes(), s.entities.Entities())
}

func settingsSeed(settings Settings) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []int{settings.Width, settings.Height, settings.MinimumCandy, settings.CandySpawnChance, settings.Obstacles} {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
