package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is the real-time Scheduler
// Timer expiries are posted as tasks to a channel; the owner goroutine drains
// Tasks() (or calls Run) and executes them one at a time, so game state touched
// only from tasks needs no locking
type Loop struct {
	tasks    chan func()
	stopChan chan struct{}
	stopOnce sync.Once
	clock    TimeProvider
}

// NewLoop creates a loop with the given task buffer size
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 1
	}
	return &Loop{
		tasks:    make(chan func(), buffer),
		stopChan: make(chan struct{}),
		clock:    NewMonotonicTimeProvider(),
	}
}

// Now returns the wall clock time
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Tasks returns the channel the owner goroutine must drain
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Run executes tasks until ctx is cancelled or the loop is closed
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopChan:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Close unblocks pending posts and stops Run, timers stop firing
func (l *Loop) Close() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
}

// Post queues fn for execution on the owner goroutine
// Returns false if the loop was closed
func (l *Loop) Post(fn func()) bool {
	return l.post(fn, nil)
}

// Do runs fn on the owner goroutine and waits for it to finish
// If ctx ends before fn starts, fn is never run. If ctx ends while fn is running,
// Do returns the context error without waiting, so callers must not read state
// written by fn after an error; Call hands back a result safely
func (l *Loop) Do(ctx context.Context, fn func()) error {
	var state atomic.Int32 // taskQueued, taskStarted or taskAbandoned
	done := make(chan struct{})
	task := func() {
		if !state.CompareAndSwap(taskQueued, taskStarted) {
			return
		}
		defer close(done)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopChan:
		return context.Canceled
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		state.CompareAndSwap(taskQueued, taskAbandoned)
		return ctx.Err()
	case <-l.stopChan:
		state.CompareAndSwap(taskQueued, taskAbandoned)
		return context.Canceled
	}
}

const (
	taskQueued int32 = iota
	taskStarted
	taskAbandoned
)

// Call runs fn on the owner goroutine and returns its result
// On error the zero value is returned and a late result is dropped
func Call[T any](ctx context.Context, l *Loop, fn func() T) (T, error) {
	result := make(chan T, 1)
	if err := l.Do(ctx, func() { result <- fn() }); err != nil {
		var zero T
		return zero, err
	}
	return <-result, nil
}

func (l *Loop) post(fn func(), cancel <-chan struct{}) bool {
	select {
	case l.tasks <- fn:
		return true
	case <-cancel:
		return false
	case <-l.stopChan:
		return false
	}
}

// AfterFunc posts fn once after d
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := newLoopTimer(fn, false)
	t.timer = time.AfterFunc(d, func() {
		l.post(t.run, t.done)
	})
	return t
}

// Every posts fn every d until stopped
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := newLoopTimer(fn, true)
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !l.post(t.run, t.done) {
					return
				}
			case <-t.done:
				return
			case <-l.stopChan:
				return
			}
		}
	}()
	return t
}

// loopTimer guards its callback so a task queued before Stop never runs
type loopTimer struct {
	fn        func()
	repeating bool
	stopped   atomic.Bool
	done      chan struct{}
	timer     *time.Timer
}

func newLoopTimer(fn func(), repeating bool) *loopTimer {
	return &loopTimer{
		fn:        fn,
		repeating: repeating,
		done:      make(chan struct{}),
	}
}

// run executes on the owner goroutine
func (t *loopTimer) run() {
	if t.repeating {
		if t.stopped.Load() {
			return
		}
		t.fn()
		return
	}
	// One-shot: fired counts as stopped
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	close(t.done)
	t.fn()
}

func (t *loopTimer) Stop() bool {
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	close(t.done)
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}
