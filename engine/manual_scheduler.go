package engine

import (
	"sync"
	"time"
)

// ManualScheduler is a Scheduler driven by virtual time for tests and replays
// Callbacks fire only inside Advance, on the caller's goroutine, ordered by
// deadline and then by scheduling order
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Time
	period  time.Duration
	seq     uint64
	fn      func()
	pending bool
}

// NewManualScheduler creates a scheduler whose clock starts at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the current virtual time
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn at Now()+d, non-positive d fires on the next Advance
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return m.schedule(d, 0, fn)
}

// Every schedules fn at every multiple of d from Now()
func (m *ManualScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.schedule(d, d, fn)
}

func (m *ManualScheduler) schedule(d, period time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{
		s:       m,
		due:     m.now.Add(d),
		period:  period,
		seq:     m.seq,
		fn:      fn,
		pending: true,
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves virtual time forward by d, firing every callback that becomes due
// Callbacks scheduled while advancing fire in the same call if due before the end
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	if m.now.Before(target) {
		m.now = target
	}
	m.mu.Unlock()
}

// popDue returns the earliest due timer at or before target and moves the clock to it
func (m *ManualScheduler) popDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, t := range m.timers {
		if t.due.After(target) {
			continue
		}
		if idx < 0 || t.due.Before(m.timers[idx].due) ||
			(t.due.Equal(m.timers[idx].due) && t.seq < m.timers[idx].seq) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}

	t := m.timers[idx]
	if t.due.After(m.now) {
		m.now = t.due
	}

	if t.period > 0 {
		t.due = t.due.Add(t.period)
		m.seq++
		t.seq = m.seq
	} else {
		t.pending = false
		m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
	}
	return t
}

// Pending returns the number of scheduled callbacks
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Stop removes the timer from the schedule
func (t *manualTimer) Stop() bool {
	m := t.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if !t.pending {
		return false
	}
	t.pending = false
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
	return true
}
