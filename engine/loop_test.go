package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopAfterFuncRunsOnOwner(t *testing.T) {
	loop := NewLoop(16)
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	loop.AfterFunc(10*time.Millisecond, func() { close(done) })

	go loop.Run(ctx)

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("AfterFunc callback never ran")
	}
}

func TestLoopStopDiscardsQueuedTask(t *testing.T) {
	loop := NewLoop(16)
	defer loop.Close()

	var fired atomic.Bool
	timer := loop.AfterFunc(time.Millisecond, func() { fired.Store(true) })

	// Wait until the expiry has been posted but not executed
	deadline := time.Now().Add(time.Second)
	for len(loop.Tasks()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timer task was never posted")
		}
		time.Sleep(time.Millisecond)
	}

	if !timer.Stop() {
		t.Fatal("Expected Stop to succeed before the task ran")
	}

	task := <-loop.Tasks()
	task()

	if fired.Load() {
		t.Error("Task queued before Stop still ran its callback")
	}
}

func TestLoopEvery(t *testing.T) {
	loop := NewLoop(16)
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var ticks atomic.Int32
	reached := make(chan struct{})
	var timer Timer
	timer = loop.Every(5*time.Millisecond, func() {
		if ticks.Add(1) == 3 {
			timer.Stop()
			close(reached)
		}
	})

	go loop.Run(ctx)

	select {
	case <-reached:
	case <-ctx.Done():
		t.Fatalf("Only %d ticks before timeout", ticks.Load())
	}

	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != 3 {
		t.Errorf("Ticks continued after Stop: %d", got)
	}
}

func TestLoopDo(t *testing.T) {
	loop := NewLoop(4)
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go loop.Run(ctx)

	value := 0
	if err := loop.Do(ctx, func() { value = 42 }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if value != 42 {
		t.Errorf("Do did not run fn, value=%d", value)
	}
}

func TestLoopDoAfterClose(t *testing.T) {
	loop := NewLoop(0)
	loop.Close()

	err := loop.Do(context.Background(), func() {})
	if err == nil {
		t.Error("Expected Do on a closed loop to fail")
	}
}

func TestCallReturnsResult(t *testing.T) {
	loop := NewLoop(4)
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go loop.Run(ctx)

	got, err := Call(ctx, loop, func() int { return 42 })
	if err != nil || got != 42 {
		t.Errorf("Call = %d, %v, want 42, nil", got, err)
	}
}

func TestCallCancelledWhileRunning(t *testing.T) {
	loop := NewLoop(4)
	defer loop.Close()

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go loop.Run(runCtx)

	release := make(chan struct{})
	finished := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The caller gives up while fn is still running on the owner goroutine
	got, err := Call(ctx, loop, func() int {
		defer close(finished)
		cancel()
		<-release
		return 42
	})
	close(release)
	<-finished

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call err = %v, want canceled", err)
	}
	if got != 0 {
		t.Errorf("Call returned %d after cancel, want zero value", got)
	}
	t.Logf("✓ A cancelled Call returns the zero value and never shares fn's result")
}

func TestDoAbandonedTaskNeverRuns(t *testing.T) {
	loop := NewLoop(4)
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	// Nothing drains the loop yet, so the task is still queued when ctx ends
	ran := false
	if err := loop.Do(ctx, func() { ran = true }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do err = %v, want deadline exceeded", err)
	}

	task := <-loop.Tasks()
	task()
	if ran {
		t.Error("Task abandoned by its caller still ran")
	}
	t.Logf("✓ Tasks whose caller gave up before they started are skipped")
}
