package engine

import (
	"testing"
	"time"
)

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	sched := NewManualScheduler(testEpoch)
	clock := NewPausableClock(sched)

	sched.Advance(2 * time.Second)
	if got := clock.Elapsed(); got != 2*time.Second {
		t.Fatalf("Elapsed = %v, want 2s", got)
	}

	clock.Pause()
	frozen := clock.Now()
	sched.Advance(10 * time.Second)

	if !clock.Now().Equal(frozen) {
		t.Errorf("Game time advanced while paused: %v -> %v", frozen, clock.Now())
	}
	if got := clock.GetTotalPauseDuration(); got != 10*time.Second {
		t.Errorf("Pause duration = %v, want 10s", got)
	}

	clock.Resume()
	sched.Advance(time.Second)

	if got := clock.Elapsed(); got != 3*time.Second {
		t.Errorf("Elapsed after resume = %v, want 3s", got)
	}
	if got := sched.Now().Sub(clock.Now()); got != 10*time.Second {
		t.Errorf("Game time lags real time by %v, want 10s", got)
	}
}

func TestPausableClockIdempotentPauseResume(t *testing.T) {
	sched := NewManualScheduler(testEpoch)
	clock := NewPausableClock(sched)

	clock.Pause()
	sched.Advance(time.Second)
	clock.Pause()
	sched.Advance(time.Second)
	clock.Resume()
	clock.Resume()

	if got := clock.GetTotalPauseDuration(); got != 2*time.Second {
		t.Errorf("Pause duration = %v, want 2s", got)
	}
	if clock.IsPaused() {
		t.Error("Clock still paused after Resume")
	}
}

func TestPausableClockReset(t *testing.T) {
	sched := NewManualScheduler(testEpoch)
	clock := NewPausableClock(sched)

	sched.Advance(time.Second)
	clock.Pause()
	sched.Advance(time.Second)

	clock.Reset()
	if clock.IsPaused() {
		t.Error("Reset should leave the clock running")
	}
	if clock.Elapsed() != 0 || clock.GetTotalPauseDuration() != 0 {
		t.Errorf("Reset left elapsed=%v paused=%v", clock.Elapsed(), clock.GetTotalPauseDuration())
	}
}
