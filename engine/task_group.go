package engine

import "time"

// TaskGroup is a cancellation token over a set of scheduled callbacks
// Each callback captures the group generation at scheduling time and is discarded
// at fire time if the group has been cancelled since, which also covers tasks
// already queued on a Loop when Cancel runs
// Not safe for concurrent use, must be used from the scheduler's owner goroutine
type TaskGroup struct {
	sched  Scheduler
	gen    uint64
	nextID uint64
	timers map[uint64]Timer
}

// NewTaskGroup creates an empty group on sched
func NewTaskGroup(sched Scheduler) *TaskGroup {
	return &TaskGroup{
		sched:  sched,
		timers: make(map[uint64]Timer),
	}
}

// After schedules fn once after d within the current generation
func (g *TaskGroup) After(d time.Duration, fn func()) {
	gen := g.gen
	g.nextID++
	id := g.nextID
	g.timers[id] = g.sched.AfterFunc(d, func() {
		delete(g.timers, id)
		if g.gen != gen {
			return
		}
		fn()
	})
}

// Every schedules fn every d within the current generation
func (g *TaskGroup) Every(d time.Duration, fn func()) {
	gen := g.gen
	g.nextID++
	id := g.nextID
	g.timers[id] = g.sched.Every(d, func() {
		if g.gen != gen {
			return
		}
		fn()
	})
}

// Cancel stops every pending callback and invalidates the current generation
func (g *TaskGroup) Cancel() {
	g.gen++
	for id, t := range g.timers {
		t.Stop()
		delete(g.timers, id)
	}
}

// Generation returns the current generation
func (g *TaskGroup) Generation() uint64 {
	return g.gen
}

// Pending returns the number of callbacks not yet fired or cancelled
func (g *TaskGroup) Pending() int {
	return len(g.timers)
}
