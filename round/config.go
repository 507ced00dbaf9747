package round

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid round config")

// Config is immutable for the lifetime of a Controller
// Durations are integer milliseconds so the struct maps directly onto TOML
type Config struct {
	Rows                  int `toml:"rows"`
	Cols                  int `toml:"cols"`
	RoundSeconds          int `toml:"round_seconds"`
	TargetLifetimeMs      int `toml:"target_lifetime_ms"`
	SpawnIntervalMinMs    int `toml:"spawn_interval_min_ms"`
	SpawnIntervalMaxMs    int `toml:"spawn_interval_max_ms"`
	HitPoints             int `toml:"hit_points"`
	MissPenalty           int `toml:"miss_penalty"` // Points deducted per miss
	MaxLeaderboardEntries int `toml:"max_leaderboard_entries"`
}

// DefaultConfig returns the classic 4x4, 30 second round
func DefaultConfig() Config {
	return Config{
		Rows:                  4,
		Cols:                  4,
		RoundSeconds:          30,
		TargetLifetimeMs:      2000,
		SpawnIntervalMinMs:    500,
		SpawnIntervalMaxMs:    1500,
		HitPoints:             10,
		MissPenalty:           5,
		MaxLeaderboardEntries: 10,
	}
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	switch {
	case c.Rows <= 0 || c.Cols <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	case c.RoundSeconds <= 0:
		return fmt.Errorf("%w: round_seconds %d", ErrInvalidConfig, c.RoundSeconds)
	case c.TargetLifetimeMs <= 0:
		return fmt.Errorf("%w: target_lifetime_ms %d", ErrInvalidConfig, c.TargetLifetimeMs)
	case c.SpawnIntervalMinMs <= 0:
		return fmt.Errorf("%w: spawn_interval_min_ms %d", ErrInvalidConfig, c.SpawnIntervalMinMs)
	case c.SpawnIntervalMinMs > c.SpawnIntervalMaxMs:
		return fmt.Errorf("%w: spawn interval %d > %d", ErrInvalidConfig, c.SpawnIntervalMinMs, c.SpawnIntervalMaxMs)
	case c.HitPoints < 0 || c.MissPenalty < 0:
		return fmt.Errorf("%w: negative scoring delta", ErrInvalidConfig)
	case c.MaxLeaderboardEntries <= 0:
		return fmt.Errorf("%w: max_leaderboard_entries %d", ErrInvalidConfig, c.MaxLeaderboardEntries)
	}
	return nil
}

// Cells returns Rows*Cols
func (c Config) Cells() int {
	return c.Rows * c.Cols
}

func (c Config) TargetLifetime() time.Duration {
	return time.Duration(c.TargetLifetimeMs) * time.Millisecond
}

func (c Config) SpawnIntervalMin() time.Duration {
	return time.Duration(c.SpawnIntervalMinMs) * time.Millisecond
}

func (c Config) SpawnIntervalMax() time.Duration {
	return time.Duration(c.SpawnIntervalMaxMs) * time.Millisecond
}
