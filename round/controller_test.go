package round

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/engine"
	"github.com/lixenwraith/whack/score"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fixedSource always picks the same index, clamped to n
type fixedSource struct {
	index int
}

func (f fixedSource) IntN(n int) int {
	if f.index >= n {
		return n - 1
	}
	return f.index
}

// recorder mirrors what a presentation layer would render
type recorder struct {
	rendered map[int]bool
	scores   []int
	times    []int
	paused   bool
	ended    []int
	spawned  int
}

func newRecorder() *recorder {
	return &recorder{rendered: make(map[int]bool)}
}

func (r *recorder) ScoreChanged(s int) { r.scores = append(r.scores, s) }

func (r *recorder) TimeChanged(remaining int, paused bool) {
	r.times = append(r.times, remaining)
	r.paused = paused
}

func (r *recorder) TargetSpawned(cell int) {
	r.rendered[cell] = true
	r.spawned++
}

func (r *recorder) TargetCleared(cell int) { delete(r.rendered, cell) }

func (r *recorder) RoundEnded(final int) { r.ended = append(r.ended, final) }

func (r *recorder) renderedCells() []int {
	cells := make([]int, 0, len(r.rendered))
	for c := range r.rendered {
		cells = append(cells, c)
	}
	slices.Sort(cells)
	return cells
}

// countingEffects counts side-effect hooks
type countingEffects struct {
	spawned, hits, misses, expired, over int
}

func (e *countingEffects) Spawned(int)   { e.spawned++ }
func (e *countingEffects) Hit(int)       { e.hits++ }
func (e *countingEffects) Miss()         { e.misses++ }
func (e *countingEffects) Expired(int)   { e.expired++ }
func (e *countingEffects) RoundOver(int) { e.over++ }

// countingStore is an in-memory score.Store that counts saves
type countingStore struct {
	entries []int
	saves   int
}

func (s *countingStore) Load(context.Context) ([]int, error) { return slices.Clone(s.entries), nil }

func (s *countingStore) Save(_ context.Context, e []int) error {
	s.saves++
	s.entries = slices.Clone(e)
	return nil
}

type harness struct {
	ctrl    *Controller
	sched   *engine.ManualScheduler
	rec     *recorder
	effects *countingEffects
	store   *countingStore
}

func newHarness(t *testing.T, cfg Config, rng interface{ IntN(int) int }) *harness {
	t.Helper()
	h := &harness{
		sched:   engine.NewManualScheduler(testEpoch),
		rec:     newRecorder(),
		effects: &countingEffects{},
		store:   &countingStore{},
	}
	ctrl, err := NewController(cfg, Options{
		Scheduler:   h.sched,
		Rand:        rng,
		Listener:    h.rec,
		Effects:     h.effects,
		Leaderboard: score.NewLeaderboard(h.store, cfg.MaxLeaderboardEntries, zerolog.Nop()),
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.ctrl = ctrl
	return h
}

// checkMirror asserts the rendered set equals board occupancy
func (h *harness) checkMirror(t *testing.T) {
	t.Helper()
	board := h.ctrl.Snapshot().Occupied
	if got := h.rec.renderedCells(); !slices.Equal(got, board) {
		t.Fatalf("Rendered %v, board %v", got, board)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{Idle, Running, true},
		{Idle, Paused, false},
		{Idle, Ended, false},
		{Running, Paused, true},
		{Running, Ended, true},
		{Running, Running, false},
		{Paused, Running, true},
		{Paused, Ended, true},
		{Paused, Paused, false},
		{Ended, Running, true},
		{Ended, Paused, false},
		{Ended, Ended, false},
		{Running, Idle, true},
		{Paused, Idle, true},
		{Ended, Idle, true},
		{Idle, Idle, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	mutate := func(f func(*Config)) Config {
		c := DefaultConfig()
		f(&c)
		return c
	}

	tests := []struct {
		name  string
		cfg   Config
		valid bool
	}{
		{"default", DefaultConfig(), true},
		{"zero rows", mutate(func(c *Config) { c.Rows = 0 }), false},
		{"negative cols", mutate(func(c *Config) { c.Cols = -1 }), false},
		{"zero round", mutate(func(c *Config) { c.RoundSeconds = 0 }), false},
		{"zero lifetime", mutate(func(c *Config) { c.TargetLifetimeMs = 0 }), false},
		{"min above max", mutate(func(c *Config) { c.SpawnIntervalMinMs = 2000 }), false},
		{"min equals max", mutate(func(c *Config) { c.SpawnIntervalMaxMs = 500 }), true},
		{"negative penalty", mutate(func(c *Config) { c.MissPenalty = -5 }), false},
		{"zero penalty", mutate(func(c *Config) { c.MissPenalty = 0 }), true},
		{"no leaderboard", mutate(func(c *Config) { c.MaxLeaderboardEntries = 0 }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := NewController(mutate(func(c *Config) { c.Rows = 0 }), Options{Scheduler: engine.NewManualScheduler(testEpoch)}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewController with bad config: err = %v", err)
	}
	if _, err := NewController(DefaultConfig(), Options{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewController without scheduler: err = %v", err)
	}
}

func TestInitialState(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{})
	c := h.ctrl

	if c.Phase() != Idle || c.Score() != 0 || c.Remaining() != 30 {
		t.Fatalf("Initial state: phase=%s score=%d remaining=%d", c.Phase(), c.Score(), c.Remaining())
	}
	if c.RoundID() != "" {
		t.Errorf("RoundID before first start = %q", c.RoundID())
	}

	// Controls are inert while idle
	c.RegisterHit(0)
	c.RegisterMiss()
	c.TogglePause()
	c.Stop()
	if c.Phase() != Idle || len(h.rec.scores) != 0 || len(h.rec.ended) != 0 {
		t.Errorf("Idle controls had effect: phase=%s scores=%v ended=%v", c.Phase(), h.rec.scores, h.rec.ended)
	}
}

func TestCountdownEndsRound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoundSeconds = 3
	h := newHarness(t, cfg, fixedSource{})

	h.ctrl.Start()
	if h.ctrl.RoundID() == "" {
		t.Error("Start did not assign a round id")
	}

	h.sched.Advance(time.Second)
	if h.ctrl.Remaining() != 2 {
		t.Fatalf("Remaining after 1s = %d, want 2", h.ctrl.Remaining())
	}

	h.sched.Advance(2 * time.Second)
	if h.ctrl.Phase() != Ended {
		t.Fatalf("Phase after 3s = %s, want ended", h.ctrl.Phase())
	}
	if !slices.Equal(h.rec.times, []int{3, 2, 1, 0}) {
		t.Errorf("TimeChanged sequence = %v, want [3 2 1 0]", h.rec.times)
	}
	if len(h.rec.rendered) != 0 || len(h.ctrl.Snapshot().Occupied) != 0 {
		t.Error("Board not cleared at round end")
	}
	if h.sched.Pending() != 0 {
		t.Errorf("Timers still pending after round end: %d", h.sched.Pending())
	}
	if len(h.rec.ended) != 1 || h.effects.over != 1 {
		t.Errorf("RoundEnded=%v RoundOver=%d, want one each", h.rec.ended, h.effects.over)
	}
}

// Scenario A: misses at zero floor, round runs out, nothing recorded
func TestScenarioMissesAtZero(t *testing.T) {
	h := newHarness(t, DefaultConfig(), rand.New(rand.NewPCG(1, 1)))

	h.ctrl.Start()
	for i := 0; i < 5; i++ {
		h.ctrl.RegisterMiss()
		if h.ctrl.Score() != 0 {
			t.Fatalf("Score after miss %d = %d", i+1, h.ctrl.Score())
		}
	}

	h.sched.Advance(30 * time.Second)

	if h.ctrl.Phase() != Ended {
		t.Fatalf("Phase = %s, want ended", h.ctrl.Phase())
	}
	if !slices.Equal(h.rec.ended, []int{0}) {
		t.Errorf("Final scores = %v, want [0]", h.rec.ended)
	}
	if h.store.saves != 0 {
		t.Errorf("Leaderboard written %d times for a zero score", h.store.saves)
	}
	for _, s := range h.rec.scores {
		if s < 0 {
			t.Fatalf("Observed negative score %d", s)
		}
	}
}

// Scenario B: hit a spawned target
func TestScenarioHit(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{index: 3})

	h.ctrl.Start()
	h.sched.Advance(503 * time.Millisecond) // min interval plus IntN == 3 ms

	if !h.ctrl.IsOccupied(3) {
		t.Fatalf("Expected target at cell 3, board %v", h.ctrl.Snapshot().Occupied)
	}

	h.ctrl.RegisterHit(3)
	if h.ctrl.Score() != 10 {
		t.Errorf("Score after hit = %d, want 10", h.ctrl.Score())
	}
	if h.ctrl.IsOccupied(3) || h.rec.rendered[3] {
		t.Error("Cell 3 still occupied after hit")
	}
	if h.effects.hits != 1 {
		t.Errorf("Hit effects = %d, want 1", h.effects.hits)
	}

	// Hitting the now-empty cell is a miss
	h.ctrl.RegisterHit(3)
	if h.ctrl.Score() != 5 || h.effects.misses != 1 {
		t.Errorf("Empty-cell hit: score=%d misses=%d, want 5 and 1", h.ctrl.Score(), h.effects.misses)
	}
}

// Scenario C: an unclaimed target expires and costs the miss penalty
func TestScenarioExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetLifetimeMs = 1500
	cfg.SpawnIntervalMinMs = 1000
	cfg.SpawnIntervalMaxMs = 1000
	h := newHarness(t, cfg, fixedSource{index: 5})

	h.ctrl.Start()
	h.sched.Advance(time.Second)
	if !h.ctrl.IsOccupied(5) {
		t.Fatalf("Expected first target at cell 5")
	}

	// Second spawn skips the occupied cell and lands on 6
	h.sched.Advance(time.Second)
	if !h.ctrl.IsOccupied(6) {
		t.Fatalf("Expected second target at cell 6, board %v", h.ctrl.Snapshot().Occupied)
	}
	h.ctrl.RegisterHit(6)
	if h.ctrl.Score() != 10 {
		t.Fatalf("Score after hit = %d", h.ctrl.Score())
	}

	h.sched.Advance(500 * time.Millisecond)
	if h.ctrl.IsOccupied(5) {
		t.Error("Cell 5 still occupied after its lifetime")
	}
	if h.ctrl.Score() != 5 {
		t.Errorf("Score after expiry = %d, want 5", h.ctrl.Score())
	}
	if h.effects.expired != 1 {
		t.Errorf("Expired effects = %d, want 1", h.effects.expired)
	}
	h.checkMirror(t)
}

// Scenario D: a restarted round carries nothing over
func TestScenarioRestart(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{index: 2})

	h.ctrl.Start()
	h.sched.Advance(502 * time.Millisecond)
	h.ctrl.RegisterHit(2)
	h.sched.Advance(time.Second)
	firstID := h.ctrl.RoundID()

	h.ctrl.Stop()
	if h.ctrl.Phase() != Ended {
		t.Fatalf("Phase after stop = %s", h.ctrl.Phase())
	}
	if h.store.saves != 1 {
		t.Errorf("Leaderboard saves after positive round = %d, want 1", h.store.saves)
	}

	h.ctrl.Start()
	if h.ctrl.Score() != 0 || h.ctrl.Remaining() != 30 {
		t.Fatalf("Restart state: score=%d remaining=%d", h.ctrl.Score(), h.ctrl.Remaining())
	}
	if len(h.ctrl.Snapshot().Occupied) != 0 || len(h.rec.rendered) != 0 {
		t.Fatal("Targets from the first round survived restart")
	}
	if h.ctrl.RoundID() == firstID {
		t.Error("Restart reused the round id")
	}

	// Only the new round's timers remain: countdown plus first spawn
	if h.sched.Pending() != 2 {
		t.Errorf("Pending timers after restart = %d, want 2", h.sched.Pending())
	}
	spawned := h.rec.spawned
	h.sched.Advance(501 * time.Millisecond)
	if h.rec.spawned != spawned {
		t.Error("Spawn fired before the new round's first interval")
	}
}

func TestStopIdempotent(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{index: 0})

	h.ctrl.Start()
	h.sched.Advance(500 * time.Millisecond)
	h.ctrl.RegisterHit(0)

	h.ctrl.Stop()
	snap := h.ctrl.Snapshot()
	h.ctrl.Stop()

	if len(h.rec.ended) != 1 || h.store.saves != 1 || h.effects.over != 1 {
		t.Errorf("Second stop had effect: ended=%v saves=%d over=%d", h.rec.ended, h.store.saves, h.effects.over)
	}
	if got := h.ctrl.Snapshot(); got.Phase != snap.Phase || got.Score != snap.Score || got.Remaining != snap.Remaining {
		t.Errorf("Snapshot changed by second stop: %+v -> %+v", snap, got)
	}
}

func TestStartIgnoredWhileInProgress(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{index: 0})

	h.ctrl.Start()
	id := h.ctrl.RoundID()
	h.sched.Advance(2 * time.Second)
	h.ctrl.RegisterHit(h.ctrl.Snapshot().Occupied[0])

	h.ctrl.Start()
	if h.ctrl.RoundID() != id || h.ctrl.Score() != 10 || h.ctrl.Remaining() != 28 {
		t.Errorf("Start while running reset the round")
	}

	h.ctrl.TogglePause()
	h.ctrl.Start()
	if h.ctrl.Phase() != Paused || h.ctrl.RoundID() != id {
		t.Errorf("Start while paused changed phase to %s", h.ctrl.Phase())
	}
}

func TestPauseResumePreservesState(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{index: 4})

	h.ctrl.Start()
	h.sched.Advance(504 * time.Millisecond)
	h.ctrl.RegisterHit(4)
	h.sched.Advance(1496 * time.Millisecond) // 2s into the round

	score, remaining := h.ctrl.Score(), h.ctrl.Remaining()
	occupied := h.ctrl.Snapshot().Occupied

	h.ctrl.TogglePause()
	if h.ctrl.Phase() != Paused || !h.rec.paused {
		t.Fatalf("Expected paused, phase=%s listener paused=%v", h.ctrl.Phase(), h.rec.paused)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("Timers pending while paused: %d", h.sched.Pending())
	}

	// Controls are inert and time stands still while paused
	h.ctrl.RegisterMiss()
	h.ctrl.RegisterHit(0)
	h.sched.Advance(time.Minute)

	if h.ctrl.Score() != score || h.ctrl.Remaining() != remaining {
		t.Fatalf("Paused state drifted: score %d->%d remaining %d->%d", score, h.ctrl.Score(), remaining, h.ctrl.Remaining())
	}
	if got := h.ctrl.Snapshot().Occupied; !slices.Equal(got, occupied) {
		t.Errorf("Occupancy changed while paused: %v -> %v", occupied, got)
	}

	h.ctrl.TogglePause()
	if h.ctrl.Phase() != Running || h.rec.paused {
		t.Fatalf("Expected running after resume, phase=%s", h.ctrl.Phase())
	}
	if h.ctrl.Score() != score || h.ctrl.Remaining() != remaining {
		t.Errorf("Resume changed state: score=%d remaining=%d", h.ctrl.Score(), h.ctrl.Remaining())
	}

	// Countdown restarts cleanly after resume
	h.sched.Advance(time.Second)
	if h.ctrl.Remaining() != remaining-1 {
		t.Errorf("Remaining one second after resume = %d, want %d", h.ctrl.Remaining(), remaining-1)
	}
	h.checkMirror(t)
}

func TestStaleExpiryAfterPause(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnIntervalMinMs = 500
	cfg.SpawnIntervalMaxMs = 500
	h := newHarness(t, cfg, fixedSource{index: 7})

	h.ctrl.Start()
	h.ctrl.RegisterHit(0) // miss, keeps score at 0
	h.sched.Advance(500 * time.Millisecond)
	h.ctrl.RegisterHit(7)
	h.sched.Advance(500 * time.Millisecond) // next target at 7, expires at 3s
	if !h.ctrl.IsOccupied(7) {
		t.Fatal("Expected a target at cell 7")
	}
	h.sched.Advance(250 * time.Millisecond)
	before := h.ctrl.Score()

	h.ctrl.TogglePause()
	h.sched.Advance(10 * time.Second)

	if h.ctrl.Score() != before || !h.ctrl.IsOccupied(7) {
		t.Fatalf("Expiry acted while paused: score=%d occupied=%v", h.ctrl.Score(), h.ctrl.IsOccupied(7))
	}

	// Remaining lifetime is kept: 2s total, 0.25s used
	h.ctrl.TogglePause()
	h.sched.Advance(1749 * time.Millisecond)
	if !h.ctrl.IsOccupied(7) {
		t.Error("Target expired before its remaining lifetime")
	}
	h.sched.Advance(time.Millisecond)
	if h.ctrl.IsOccupied(7) {
		t.Error("Target outlived its lifetime after resume")
	}
	if h.ctrl.Score() != before-5 {
		t.Errorf("Score after expiry = %d, want %d", h.ctrl.Score(), before-5)
	}
	h.checkMirror(t)
}

func TestReset(t *testing.T) {
	h := newHarness(t, DefaultConfig(), fixedSource{index: 1})

	h.ctrl.Start()
	h.sched.Advance(501 * time.Millisecond)
	h.ctrl.RegisterHit(1)
	h.sched.Advance(time.Second)

	h.ctrl.Reset()
	if h.ctrl.Phase() != Idle || h.ctrl.Score() != 0 || h.ctrl.Remaining() != 30 {
		t.Fatalf("Reset state: phase=%s score=%d remaining=%d", h.ctrl.Phase(), h.ctrl.Score(), h.ctrl.Remaining())
	}
	if h.store.saves != 0 || len(h.rec.ended) != 0 {
		t.Error("Reset recorded a score")
	}
	if h.sched.Pending() != 0 || len(h.rec.rendered) != 0 {
		t.Error("Reset left timers or targets behind")
	}

	// Reset from Ended closes the end card and allows a new start
	h.ctrl.Start()
	h.ctrl.Stop()
	h.ctrl.Reset()
	h.ctrl.Start()
	if h.ctrl.Phase() != Running {
		t.Errorf("Start after reset: phase=%s", h.ctrl.Phase())
	}
}

func TestLeaderboardBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLeaderboardEntries = 3
	cfg.SpawnIntervalMinMs = 100
	cfg.SpawnIntervalMaxMs = 100
	h := newHarness(t, cfg, fixedSource{index: 0})

	// Round n scores n hits
	for n := 1; n <= 5; n++ {
		h.ctrl.Start()
		for i := 0; i < n; i++ {
			h.sched.Advance(100 * time.Millisecond)
			h.ctrl.RegisterHit(0)
		}
		h.ctrl.Stop()
	}

	if want := []int{50, 40, 30}; !slices.Equal(h.store.entries, want) {
		t.Errorf("Leaderboard = %v, want %v", h.store.entries, want)
	}
}

func TestOccupancyMirrorRandomPlay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows, cfg.Cols = 3, 3
	h := newHarness(t, cfg, rand.New(rand.NewPCG(42, 7)))
	clicks := rand.New(rand.NewPCG(9, 9))

	h.ctrl.Start()
	for step := 0; step < 400; step++ {
		switch clicks.IntN(6) {
		case 0:
			h.ctrl.RegisterHit(clicks.IntN(9))
		case 1:
			if occ := h.ctrl.Snapshot().Occupied; len(occ) > 0 {
				h.ctrl.RegisterHit(occ[clicks.IntN(len(occ))])
			}
		case 2:
			h.ctrl.RegisterMiss()
		case 3:
			if clicks.IntN(10) == 0 {
				h.ctrl.TogglePause()
			}
		}
		h.sched.Advance(time.Duration(clicks.IntN(300)) * time.Millisecond)

		if h.ctrl.Score() < 0 {
			t.Fatalf("step %d: negative score", step)
		}
		h.checkMirror(t)
	}
	t.Logf("✓ %d spawns, phase %s, score %d", h.rec.spawned, h.ctrl.Phase(), h.ctrl.Score())
}

func TestPhaseText(t *testing.T) {
	for p, want := range map[Phase]string{Idle: "idle", Running: "running", Paused: "paused", Ended: "ended", Phase(9): "unknown"} {
		b, err := p.MarshalText()
		if err != nil || string(b) != want {
			t.Errorf("MarshalText(%d) = %q, %v", p, b, err)
		}
	}
}

func TestStopLogsPlayedAndPausedTime(t *testing.T) {
	var buf bytes.Buffer
	sched := engine.NewManualScheduler(testEpoch)
	ctrl, err := NewController(DefaultConfig(), Options{
		Scheduler: sched,
		Rand:      fixedSource{index: 0},
		Logger:    zerolog.New(&buf),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	ctrl.Start()
	sched.Advance(time.Second)
	ctrl.TogglePause()
	sched.Advance(2 * time.Second)
	ctrl.TogglePause()
	sched.Advance(2 * time.Second)
	ctrl.Stop()

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, `"message":"round ended"`) {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("No round ended log in %q", buf.String())
	}
	if !strings.Contains(line, `"played":3000`) || !strings.Contains(line, `"paused":2000`) {
		t.Errorf("Round ended log = %s, want played 3s and paused 2s", line)
	}
	t.Logf("✓ Round end log reports game time and pause time")
}
