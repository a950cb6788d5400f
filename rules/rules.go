// Package rules drives rounds of the snake core: it reacts to every tick by
// feeding the snake, killing it on collisions and keeping the board stocked
// with candy.
package rules

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/brensch/snek3d/game"
)

// DeathCause says why a round ended.
type DeathCause uint8

const (
	DeathNone DeathCause = iota
	DeathSelf
	DeathObstacle
)

func (c DeathCause) String() string {
	switch c {
	case DeathSelf:
		return "self"
	case DeathObstacle:
		return "obstacle"
	}
	return "none"
}

// Outcome describes one Step.
type Outcome struct {
	Turn    int
	Round   int
	Tick    game.TickResult
	Ate     bool
	Died    bool
	Cause   DeathCause
	Spawned []game.Entity
}

// Session owns one snake and the entities around it. It is not safe for
// concurrent use, except RequestDirection which may race with nothing but
// itself between ticks.
type Session struct {
	settings Settings
	grid     game.Grid
	rng      *rand.Rand
	logger   *slog.Logger

	snake    *game.Controller
	entities *game.Registry
	alloc    *game.Allocator

	turn  int
	round int
	eaten int
}

// NewSession validates settings and sets up the first round. A nil rng
// makes the session deterministic for the given settings.
func NewSession(settings Settings, rng *rand.Rand, observer game.Observer, logger *slog.Logger) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		seed := int64(settingsSeed(settings))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}
	if logger == nil {
		logger = slog.Default()
	}

	grid := game.NewGrid(settings.Width, settings.Height)
	s := &Session{
		settings: settings,
		grid:     grid,
		rng:      rng,
		logger:   logger,
		snake:    game.NewController(grid, observer),
		entities: game.NewRegistry(grid),
		alloc:    game.NewAllocator(grid, rng),
	}
	s.startRound()
	return s, nil
}

func (s *Session) startRound() {
	s.round++
	s.entities.Clear()
	s.placeObstacles()
	s.applyCandyRules(false)
	s.logger.Debug("round started",
		slog.Int("round", s.round),
		slog.Int("obstacles", s.entities.Count(game.Obstacle)),
		slog.Int("candies", s.entities.Count(game.Candy)),
	)
}

// RequestDirection forwards a heading to the snake.
func (s *Session) RequestDirection(d game.Direction) {
	s.snake.RequestDirection(d)
}

// Step advances the snake one tick and applies the round rules.
func (s *Session) Step() Outcome {
	r := s.snake.Advance()
	s.turn++

	out := Outcome{Turn: s.turn, Round: s.round, Tick: r}

	switch {
	case r.SelfCollision:
		out.Cause = DeathSelf
	case s.snake.CheckEntityCollision(s.entitiesOf(game.Obstacle)):
		out.Cause = DeathObstacle
	}
	if out.Cause != DeathNone {
		out.Died = true
		s.logger.Info("snake died",
			slog.Int("round", s.round),
			slog.Int("turn", s.turn),
			slog.String("cause", out.Cause.String()),
			slog.Int("length", r.Length),
		)
		s.snake.Kill()
		s.startRound()
		return out
	}

	if s.snake.CheckEntityCollision(s.entitiesOf(game.Candy)) {
		// Mark before the candy leaves the registry.
		s.snake.MarkHeadCarriesGrowth()
		s.entities.RemoveAt(r.HeadIndex)
		s.eaten++
		out.Ate = true
		s.logger.Debug("candy eaten", slog.Int("turn", s.turn), slog.String("at", r.Head.String()))
	}

	out.Spawned = s.applyCandyRules(true)
	return out
}

func (s *Session) entitiesOf(k game.Kind) []game.Entity {
	all := s.entities.Entities()
	out := all[:0]
	for _, e := range all {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot captures the whole board.
func (s *Session) Snapshot() *game.Snapshot {
	snap := game.Capture(s.snake, s.entities)
	snap.Turn = s.turn
	snap.Round = s.round
	snap.Eaten = s.eaten
	return snap
}

func (s *Session) Settings() Settings       { return s.settings }
func (s *Session) Grid() game.Grid          { return s.grid }
func (s *Session) Snake() *game.Controller  { return s.snake }
func (s *Session) Entities() *game.Registry { return s.entities }
func (s *Session) Turn() int                { return s.turn }
func (s *Session) Round() int               { return s.round }
func (s *Session) Eaten() int               { return s.eaten }

// SafeDirections returns the headings that neither reverse the snake nor
// step onto its body or an obstacle on the next tick.
func SafeDirections(snap *game.Snapshot) []game.Direction {
	if snap == nil || len(snap.Body) == 0 {
		return nil
	}
	g := snap.Grid()
	blocked := snap.Blocked()
	head := snap.Head()

	out := make([]game.Direction, 0, len(game.Directions))
	for _, d := range game.Directions {
		if game.Dot(snap.Direction, d) == -1 {
			continue
		}
		if blocked.Has(g.Index(g.Step(head, d))) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Validate reports settings no round can be played with.
func (s Settings) Validate() error {
	if s.Width < 1 || s.Height < game.InitialLength {
		return fmt.Errorf("board %dx%d too small: need at least 1x%d", s.Width, s.Height, game.InitialLength)
	}
	if s.MinimumCandy < 0 || s.Obstacles < 0 {
		return fmt.Errorf("negative entity counts: candy=%d obstacles=%d", s.MinimumCandy, s.Obstacles)
	}
	if s.CandySpawnChance < 0 || s.CandySpawnChance > 100 {
		return fmt.Errorf("candy spawn chance %d outside 0-100", s.CandySpawnChance)
	}
	// One cell in front of the head is kept clear of obstacles.
	need := s.Obstacles + s.MinimumCandy
	if free := s.Width*s.Height - game.InitialLength - 1; need > 0 && need > free {
		return fmt.Errorf("%d obstacles and %d candies do not fit on a %dx%d board", s.Obstacles, s.MinimumCandy, s.Width, s.Height)
	}
	return nil
}
