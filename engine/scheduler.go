package engine

import "time"

// Scheduler schedules one-shot and repeating callbacks
// Implementations run every callback on a single owner goroutine, so callbacks
// never race with each other or with code running on that goroutine
type Scheduler interface {
	TimeProvider

	// AfterFunc runs fn once after d
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn every d until stopped
	Every(d time.Duration, fn func()) Timer
}

// Timer is a handle to a scheduled callback
type Timer interface {
	// Stop cancels the callback, returns false if it was already stopped or fired
	Stop() bool
}
