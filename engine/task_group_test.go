package engine

import (
	"testing"
	"time"
)

func TestTaskGroupCancelStopsPending(t *testing.T) {
	sched := NewManualScheduler(testEpoch)
	group := NewTaskGroup(sched)

	fired := 0
	group.After(time.Second, func() { fired++ })
	group.Every(500*time.Millisecond, func() { fired++ })

	if group.Pending() != 2 {
		t.Fatalf("Expected 2 pending tasks, got %d", group.Pending())
	}

	group.Cancel()
	sched.Advance(5 * time.Second)

	if fired != 0 {
		t.Errorf("Cancelled tasks fired %d times", fired)
	}
	if group.Pending() != 0 {
		t.Errorf("Expected no pending tasks after Cancel, got %d", group.Pending())
	}
	if sched.Pending() != 0 {
		t.Errorf("Expected scheduler to be empty, got %d", sched.Pending())
	}
}

// leakyScheduler ignores Stop, modelling a timer whose task was already queued
type leakyScheduler struct {
	*ManualScheduler
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return true }

func (l leakyScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	l.ManualScheduler.AfterFunc(d, fn)
	return leakyTimer{}
}

func (l leakyScheduler) Every(d time.Duration, fn func()) Timer {
	l.ManualScheduler.Every(d, fn)
	return leakyTimer{}
}

func TestTaskGroupGenerationGuard(t *testing.T) {
	sched := leakyScheduler{NewManualScheduler(testEpoch)}
	group := NewTaskGroup(sched)

	var fired []int
	group.After(time.Second, func() { fired = append(fired, 1) })
	group.Every(time.Second, func() { fired = append(fired, 2) })

	group.Cancel()
	group.After(time.Second, func() { fired = append(fired, 3) })

	sched.Advance(time.Second)

	if len(fired) != 1 || fired[0] != 3 {
		t.Errorf("Expected only the new generation to fire, got %v", fired)
	}
	if group.Generation() != 1 {
		t.Errorf("Expected generation 1, got %d", group.Generation())
	}
}

func TestTaskGroupOneShotPrunesItself(t *testing.T) {
	sched := NewManualScheduler(testEpoch)
	group := NewTaskGroup(sched)

	group.After(100*time.Millisecond, func() {})
	sched.Advance(time.Second)

	if group.Pending() != 0 {
		t.Errorf("Fired one-shot still tracked: %d", group.Pending())
	}
}
