package audio

import (
	"encoding/json"
	"os"
	"strconv"
)

// Config controls sound output
type Config struct {
	Enabled       bool                  `toml:"enabled"`
	MasterVolume  float64               `toml:"master_volume"` // 0.0-1.0
	SampleRate    int                   `toml:"sample_rate"`
	EffectVolumes map[SoundType]float64 `toml:"-"`
}

// DefaultConfig returns audio enabled at half volume
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MasterVolume: 0.5,
		SampleRate:   44100,
		EffectVolumes: map[SoundType]float64{
			SoundSpawn:     0.3,
			SoundHit:       1.0,
			SoundMiss:      0.8,
			SoundExpire:    0.6,
			SoundRoundOver: 0.7,
		},
	}
}

// ApplyEnv overrides fields from WHACK_* environment variables
// Malformed values are ignored
func (cfg *Config) ApplyEnv() {
	if cfg.EffectVolumes == nil {
		cfg.EffectVolumes = DefaultConfig().EffectVolumes
	}

	if enabled := os.Getenv("WHACK_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100 in the environment
	if volume := os.Getenv("WHACK_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clamp01(float64(val) / 100.0)
		}
	}

	if effectVols := os.Getenv("WHACK_SFX_VOLUMES"); effectVols != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(effectVols), &volumes); err == nil {
			for st := SoundType(0); st < soundTypeCount; st++ {
				if v, ok := volumes[st.String()]; ok {
					cfg.EffectVolumes[st] = clamp01(v)
				}
			}
		}
	}

	if sampleRate := os.Getenv("WHACK_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}
}

// volume returns the effective volume for a sound
func (cfg *Config) volume(st SoundType) float64 {
	v, ok := cfg.EffectVolumes[st]
	if !ok {
		v = 1.0
	}
	return v * clamp01(cfg.MasterVolume)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
