package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu      sync.Mutex
	crashCleanup func()
	crashOut     io.Writer = os.Stderr
	crashExit              = os.Exit
)

// SetCrashHandler registers the terminal restore run before a crash report
// Pass nil to clear it
func SetCrashHandler(cleanup func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashCleanup = cleanup
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	cleanup := crashCleanup
	crashCleanup = nil
	out, exit := crashOut, crashExit
	crashMu.Unlock()

	// Restore terminal to sane state before writing anything
	if cleanup != nil {
		func() {
			defer func() { recover() }()
			cleanup()
		}()
	}

	fmt.Fprintf(out, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(out, "Stack Trace:\r\n%s\r\n", debug.Stack())
	if f, ok := out.(interface{ Sync() error }); ok {
		_ = f.Sync()
	}

	exit(1)
}

// Go runs a function in a new goroutine with panic recovery
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
