package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides pausable game time with pause duration tracking
type PausableClock struct {
	mu sync.RWMutex

	// Base time tracking
	realStartTime time.Time // When clock was (re)started (real time)

	// Pause state
	isPaused        atomic.Bool
	pauseStartTime  time.Time     // When current pause started (real time)
	totalPausedTime time.Duration // Cumulative pause duration

	realTimeProvider TimeProvider
}

// NewPausableClock creates a running clock reading real time from tp
func NewPausableClock(tp TimeProvider) *PausableClock {
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	return &PausableClock{
		realStartTime:    tp.Now(),
		realTimeProvider: tp,
	}
}

// Now returns current game time (affected by pause)
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		// During pause: return frozen time at pause point
		return pc.pauseStartTime.Add(-pc.totalPausedTime)
	}

	// Game time = real time - total paused time
	return pc.realTimeProvider.Now().Add(-pc.totalPausedTime)
}

// Elapsed returns game time since the last Reset
func (pc *PausableClock) Elapsed() time.Duration {
	start := pc.startTime()
	return pc.Now().Sub(start)
}

func (pc *PausableClock) startTime() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.realStartTime
}

// Pause stops game time advancement
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.isPaused.CompareAndSwap(false, true) {
		pc.pauseStartTime = pc.realTimeProvider.Now()
	}
}

// Resume continues game time advancement
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.isPaused.CompareAndSwap(true, false) {
		if !pc.pauseStartTime.IsZero() {
			pc.totalPausedTime += pc.realTimeProvider.Now().Sub(pc.pauseStartTime)
			pc.pauseStartTime = time.Time{}
		}
	}
}

// Reset restarts the clock unpaused with no accumulated pause time
func (pc *PausableClock) Reset() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.isPaused.Store(false)
	pc.realStartTime = pc.realTimeProvider.Now()
	pc.pauseStartTime = time.Time{}
	pc.totalPausedTime = 0
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// GetTotalPauseDuration returns cumulative pause time
func (pc *PausableClock) GetTotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() && !pc.pauseStartTime.IsZero() {
		// Include current pause duration
		total += pc.realTimeProvider.Now().Sub(pc.pauseStartTime)
	}
	return total
}
