// Package config assembles runtime settings from defaults, a TOML file and the environment
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/audio"
	"github.com/lixenwraith/whack/round"
	"github.com/lixenwraith/whack/storage"
)

// envFile is read into the environment before WHACK_* variables are applied
var envFile = ".env"

// LogConfig controls file logging
type LogConfig struct {
	Debug bool   `toml:"debug"`
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// HTTPConfig controls the status server, empty Addr disables it
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// Settings is the complete runtime configuration
type Settings struct {
	Round   round.Config   `toml:"round"`
	Storage storage.Config `toml:"storage"`
	Audio   audio.Config   `toml:"audio"`
	Log     LogConfig      `toml:"log"`
	HTTP    HTTPConfig     `toml:"http"`
}

// Default returns settings for a local single-player game
func Default() Settings {
	return Settings{
		Round:   round.DefaultConfig(),
		Storage: storage.DefaultConfig(),
		Audio:   audio.DefaultConfig(),
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load applies defaults, then path (if not empty), then .env and WHACK_* variables
// Unknown keys in the file are an error
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &s); err != nil {
			return s, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Missing .env is normal, a malformed one is not
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s, fmt.Errorf("load %s: %w", envFile, err)
	}
	s.applyEnv()

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func decode(data []byte, s *Settings) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%s", strict.String())
		}
		return err
	}
	return nil
}

// Validate checks the round config and the log level
func (s Settings) Validate() error {
	if err := s.Round.Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("log level %q: %w", s.Log.Level, err)
	}
	return nil
}

// LogLevel returns the parsed level, info when unset or invalid
func (s Settings) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.Log.Level)
	if err != nil || s.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func (s *Settings) applyEnv() {
	envInt("WHACK_ROWS", &s.Round.Rows)
	envInt("WHACK_COLS", &s.Round.Cols)
	envInt("WHACK_ROUND_SECONDS", &s.Round.RoundSeconds)
	envInt("WHACK_TARGET_LIFETIME_MS", &s.Round.TargetLifetimeMs)
	envInt("WHACK_SPAWN_MIN_MS", &s.Round.SpawnIntervalMinMs)
	envInt("WHACK_SPAWN_MAX_MS", &s.Round.SpawnIntervalMaxMs)
	envInt("WHACK_LEADERBOARD_SIZE", &s.Round.MaxLeaderboardEntries)

	envString("WHACK_STORAGE_DRIVER", &s.Storage.Driver)
	envString("WHACK_STORAGE_PATH", &s.Storage.Path)
	envString("WHACK_STORAGE_KEY", &s.Storage.Key)
	envString("WHACK_REDIS_ADDR", &s.Storage.RedisAddr)
	envString("WHACK_REDIS_PASSWORD", &s.Storage.RedisPassword)
	envInt("WHACK_REDIS_DB", &s.Storage.RedisDB)

	s.Audio.ApplyEnv()

	envString("WHACK_LOG_LEVEL", &s.Log.Level)
	envString("WHACK_LOG_DIR", &s.Log.Dir)
	envBool("WHACK_DEBUG", &s.Log.Debug)
	envString("WHACK_HTTP_ADDR", &s.HTTP.Addr)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
