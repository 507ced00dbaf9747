// Package storage provides leaderboard persistence backends
// Every backend stores one ordered list of integers under a configurable key
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/score"
)

var (
	// ErrUnknownDriver is returned by Open for an unrecognised driver name
	ErrUnknownDriver = errors.New("unknown storage driver")
	// ErrCorrupt wraps stored data that cannot be decoded as a score list
	ErrCorrupt = score.ErrCorrupt
)

// Driver names
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// DefaultKey names the leaderboard inside shared stores
const DefaultKey = "whack:high_scores"

// Store is a closable leaderboard backend
type Store interface {
	score.Store
	io.Closer
}

// Config selects and parameterises a backend
type Config struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	Key           string `toml:"key"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// DefaultConfig keeps scores in a TOML file in the working directory
func DefaultConfig() Config {
	return Config{
		Driver: DriverFile,
		Path:   "whack_scores.toml",
		Key:    DefaultKey,
	}
}

// Open creates the backend named by cfg.Driver
// Backends that need a connection are checked before returning
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (Store, error) {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	log = log.With().Str("component", "storage").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.Path), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.Path, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.Path, err)
		}
		log.Debug().Str("path", cfg.Path).Msg("sqlite store ready")
		return s, nil
	case DriverRedis:
		s, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("open redis %q: %w", cfg.RedisAddr, err)
		}
		log.Debug().Str("addr", cfg.RedisAddr).Msg("redis store ready")
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
