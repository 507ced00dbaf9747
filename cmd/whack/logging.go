package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFileName = "whack.log"
	maxLogSize  = 10 * 1024 * 1024 // 10MB
)

// setupLogging opens dir/whack.log when debug is set, otherwise logs are discarded
// The terminal belongs to the game, so logs never go to stdout or stderr
// A log file over maxLogSize is renamed with a timestamp before a new one is started
func setupLogging(debug bool, dir string, level zerolog.Level) (zerolog.Logger, *os.File) {
	if !debug {
		return zerolog.New(io.Discard), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return zerolog.New(io.Discard), nil
	}

	logPath := filepath.Join(dir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(dir, fmt.Sprintf("whack-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.New(io.Discard), nil
	}

	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, f
}
