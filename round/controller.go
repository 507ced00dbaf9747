// Package round owns the lifecycle of a single-player round: phases, countdown,
// spawning and scoring
package round

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/board"
	"github.com/lixenwraith/whack/engine"
	"github.com/lixenwraith/whack/score"
	"github.com/lixenwraith/whack/spawn"
)

const countdownInterval = time.Second

// Options wires a Controller to its collaborators, only Scheduler is required
type Options struct {
	Scheduler   engine.Scheduler
	Rand        spawn.Source
	Listener    Listener
	Effects     Effects
	Leaderboard Finalizer
	Logger      zerolog.Logger
}

// Snapshot is a point-in-time copy of round state
type Snapshot struct {
	RoundID   string `json:"round_id,omitempty"`
	Phase     Phase  `json:"phase"`
	Score     int    `json:"score"`
	Remaining int    `json:"remaining"`
	Occupied  []int  `json:"occupied"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
}

// Controller is the single owner of round state
// Every method and every timer callback must run on the scheduler's owner goroutine
// Invalid calls for the current phase are silent no-ops
type Controller struct {
	cfg Config

	sched     engine.Scheduler
	clock     *engine.PausableClock
	board     *board.Board
	spawner   *spawn.Spawner
	ledger    *score.Ledger
	countdown *engine.TaskGroup

	listener    Listener
	effects     Effects
	leaderboard Finalizer
	log         zerolog.Logger

	phase     Phase
	remaining int
	roundID   uuid.UUID
}

// NewController validates cfg and creates an idle controller
func NewController(cfg Config, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("%w: nil scheduler", ErrInvalidConfig)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	if opts.Effects == nil {
		opts.Effects = NopEffects{}
	}

	c := &Controller{
		cfg:         cfg,
		sched:       opts.Scheduler,
		clock:       engine.NewPausableClock(opts.Scheduler),
		board:       board.New(cfg.Cells()),
		ledger:      score.NewLedger(cfg.HitPoints, cfg.MissPenalty),
		countdown:   engine.NewTaskGroup(opts.Scheduler),
		listener:    opts.Listener,
		effects:     opts.Effects,
		leaderboard: opts.Leaderboard,
		log:         opts.Logger.With().Str("component", "round").Logger(),
		remaining:   cfg.RoundSeconds,
	}
	c.spawner = spawn.New(spawn.Config{
		Cells:       cfg.Cells(),
		Lifetime:    cfg.TargetLifetime(),
		IntervalMin: cfg.SpawnIntervalMin(),
		IntervalMax: cfg.SpawnIntervalMax(),
	}, c.board, opts.Scheduler, c.clock, opts.Rand, spawnHost{c})

	return c, nil
}

// Config returns the immutable round configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// Start begins a fresh round from Idle or Ended
func (c *Controller) Start() {
	if c.phase != Idle && c.phase != Ended {
		return
	}

	c.cancelTimers()
	c.clearBoard()
	c.ledger.Reset()
	c.remaining = c.cfg.RoundSeconds
	c.clock.Reset()
	c.roundID = uuid.New()
	c.phase = Running

	c.countdown.Every(countdownInterval, c.tick)
	c.spawner.Start()

	c.listener.ScoreChanged(c.ledger.Score())
	c.listener.TimeChanged(c.remaining, false)
	c.log.Info().Str("round_id", c.roundID.String()).Int("seconds", c.remaining).Msg("round started")
}

// Stop ends a running or paused round and records its score
func (c *Controller) Stop() {
	if !CanTransition(c.phase, Ended) {
		return
	}

	c.cancelTimers()
	c.clearBoard()
	c.phase = Ended

	final := c.ledger.Score()
	c.listener.RoundEnded(final)
	c.effects.RoundOver(final)
	if c.leaderboard != nil {
		c.leaderboard.Finalize(final)
	}
	c.log.Info().
		Str("round_id", c.roundID.String()).
		Int("score", final).
		Int("remaining", c.remaining).
		Dur("played", c.clock.Elapsed()).
		Dur("paused", c.clock.GetTotalPauseDuration()).
		Msg("round ended")
}

// TogglePause switches between Running and Paused
func (c *Controller) TogglePause() {
	switch c.phase {
	case Running:
		c.cancelTimers()
		c.clock.Pause()
		c.phase = Paused
		c.listener.TimeChanged(c.remaining, true)
		c.log.Debug().Str("round_id", c.roundID.String()).Msg("paused")

	case Paused:
		c.clock.Resume()
		c.phase = Running
		c.countdown.Every(countdownInterval, c.tick)
		c.spawner.Resume()
		c.listener.TimeChanged(c.remaining, false)
		c.log.Debug().Str("round_id", c.roundID.String()).Msg("resumed")
	}
}

// RegisterHit handles a click on cell, a click on an empty cell is a miss
func (c *Controller) RegisterHit(cell int) {
	if c.phase != Running {
		return
	}
	if !c.board.IsOccupied(cell) {
		c.RegisterMiss()
		return
	}

	c.board.Vacate(cell)
	s := c.ledger.ApplyHit()
	c.listener.TargetCleared(cell)
	c.listener.ScoreChanged(s)
	c.effects.Hit(cell)
}

// RegisterMiss handles a click inside the board that hit no target
func (c *Controller) RegisterMiss() {
	if c.phase != Running {
		return
	}
	s := c.ledger.ApplyMiss()
	c.listener.ScoreChanged(s)
	c.effects.Miss()
}

// Reset abandons any round and returns to Idle without recording a score
func (c *Controller) Reset() {
	c.cancelTimers()
	c.clearBoard()
	c.ledger.Reset()
	c.remaining = c.cfg.RoundSeconds
	c.clock.Reset()
	c.phase = Idle

	c.listener.ScoreChanged(0)
	c.listener.TimeChanged(c.remaining, false)
}

func (c *Controller) Phase() Phase {
	return c.phase
}

func (c *Controller) Score() int {
	return c.ledger.Score()
}

// Remaining returns whole seconds left in the round
func (c *Controller) Remaining() int {
	return c.remaining
}

func (c *Controller) IsOccupied(cell int) bool {
	return c.board.IsOccupied(cell)
}

// RoundID returns the id of the current or last round, empty before the first Start
func (c *Controller) RoundID() string {
	if c.roundID == uuid.Nil {
		return ""
	}
	return c.roundID.String()
}

// Snapshot copies the observable state
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		RoundID:   c.RoundID(),
		Phase:     c.phase,
		Score:     c.ledger.Score(),
		Remaining: c.remaining,
		Occupied:  c.board.Occupied(),
		Rows:      c.cfg.Rows,
		Cols:      c.cfg.Cols,
	}
}

func (c *Controller) tick() {
	if c.phase != Running {
		return
	}
	c.remaining--
	if c.remaining < 0 {
		c.remaining = 0
	}
	c.listener.TimeChanged(c.remaining, false)
	if c.remaining == 0 {
		c.Stop()
	}
}

func (c *Controller) cancelTimers() {
	c.countdown.Cancel()
	c.spawner.Stop()
}

func (c *Controller) clearBoard() {
	for _, cell := range c.board.Clear() {
		c.listener.TargetCleared(cell)
	}
}

// spawnHost adapts the controller to spawn.Host without exporting the callbacks
type spawnHost struct {
	c *Controller
}

func (h spawnHost) Active() bool {
	return h.c.phase == Running
}

func (h spawnHost) Spawned(t board.Target) {
	h.c.listener.TargetSpawned(t.Cell)
	h.c.effects.Spawned(t.Cell)
}

// Expired applies the miss penalty while the target is still on the board
func (h spawnHost) Expired(t board.Target) {
	s := h.c.ledger.ApplyMiss()
	h.c.listener.ScoreChanged(s)
	h.c.effects.Expired(t.Cell)
}

func (h spawnHost) Cleared(t board.Target) {
	h.c.listener.TargetCleared(t.Cell)
}
