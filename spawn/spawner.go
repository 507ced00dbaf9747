// Package spawn runs the self-rescheduling target spawn and expiry process
package spawn

import (
	"time"

	"github.com/lixenwraith/whack/board"
	"github.com/lixenwraith/whack/engine"
)

// Source supplies uniform random integers in [0, n)
// *math/rand/v2.Rand satisfies it
type Source interface {
	IntN(n int) int
}

// Host receives spawn lifecycle callbacks, implemented by the round controller
type Host interface {
	// Active reports whether the round is running and not paused
	Active() bool
	// Spawned is called after a target is placed on the board
	Spawned(t board.Target)
	// Expired is called before an unclaimed target is removed, for miss handling
	Expired(t board.Target)
	// Cleared is called after an expired target is removed
	Cleared(t board.Target)
}

// Config holds spawn timing for one round
type Config struct {
	Cells       int
	Lifetime    time.Duration
	IntervalMin time.Duration
	IntervalMax time.Duration
}

// Spawner places targets on random free cells at random intervals and expires them
// All spawn and expiry timers share one TaskGroup, Stop cancels every one of them
type Spawner struct {
	cfg   Config
	board *board.Board
	clock engine.TimeProvider
	rng   Source
	host  Host
	tasks *engine.TaskGroup

	nextSpawn uint64
}

// New creates a spawner; clock provides game time for target expiry stamps
func New(cfg Config, b *board.Board, sched engine.Scheduler, clock engine.TimeProvider, rng Source, host Host) *Spawner {
	if cfg.IntervalMax < cfg.IntervalMin {
		cfg.IntervalMax = cfg.IntervalMin
	}
	if clock == nil {
		clock = sched
	}
	return &Spawner{
		cfg:   cfg,
		board: b,
		clock: clock,
		rng:   rng,
		host:  host,
		tasks: engine.NewTaskGroup(sched),
	}
}

// Start cancels any pending timers and begins a fresh spawn chain
func (s *Spawner) Start() {
	s.tasks.Cancel()
	s.scheduleNext()
}

// Stop cancels every pending spawn and expiry
func (s *Spawner) Stop() {
	s.tasks.Cancel()
}

// Resume re-arms expiry for targets left on the board with their remaining
// game-time lifetime, then starts a fresh spawn chain
func (s *Spawner) Resume() {
	s.tasks.Cancel()

	now := s.clock.Now()
	for _, t := range s.board.Targets() {
		remaining := t.ExpiresAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		s.arm(t, remaining)
	}
	s.scheduleNext()
}

// Pending returns the number of scheduled spawn and expiry callbacks
func (s *Spawner) Pending() int {
	return s.tasks.Pending()
}

// Attempt performs one spawn attempt without rescheduling
// Returns false when every cell is occupied
func (s *Spawner) Attempt() (board.Target, bool) {
	free := s.board.FreeCells(s.cfg.Cells)
	if len(free) == 0 {
		return board.Target{}, false
	}

	s.nextSpawn++
	t := board.Target{
		Cell:      free[s.rng.IntN(len(free))],
		Spawn:     s.nextSpawn,
		ExpiresAt: s.clock.Now().Add(s.cfg.Lifetime),
	}
	if !s.board.Occupy(t) {
		return board.Target{}, false
	}

	s.host.Spawned(t)
	s.arm(t, s.cfg.Lifetime)
	return t, true
}

// NextDelay draws the wait before the next spawn attempt
func (s *Spawner) NextDelay() time.Duration {
	span := int((s.cfg.IntervalMax - s.cfg.IntervalMin) / time.Millisecond)
	if span <= 0 {
		return s.cfg.IntervalMin
	}
	return s.cfg.IntervalMin + time.Duration(s.rng.IntN(span+1))*time.Millisecond
}

func (s *Spawner) scheduleNext() {
	s.tasks.After(s.NextDelay(), s.tick)
}

func (s *Spawner) tick() {
	if !s.host.Active() {
		return
	}
	s.Attempt()
	s.scheduleNext()
}

func (s *Spawner) arm(t board.Target, after time.Duration) {
	s.tasks.After(after, func() {
		s.expire(t)
	})
}

func (s *Spawner) expire(t board.Target) {
	if !s.host.Active() {
		return
	}
	current, ok := s.board.Target(t.Cell)
	if !ok || current.Spawn != t.Spawn {
		// Hit by the player, or the cell was reused by a later spawn
		return
	}

	s.host.Expired(t)
	s.board.VacateIf(t.Cell, t.Spawn)
	s.host.Cleared(t)
}
