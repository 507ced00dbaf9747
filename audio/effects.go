package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Effect timings
const (
	spawnDuration = 40 * time.Millisecond
	spawnAttack   = 5 * time.Millisecond
	spawnRelease  = 30 * time.Millisecond

	hitNoteDuration = 60 * time.Millisecond
	hitAttack       = 2 * time.Millisecond
	hitRelease      = 40 * time.Millisecond

	missDuration = 120 * time.Millisecond
	missAttack   = 5 * time.Millisecond
	missRelease  = 60 * time.Millisecond

	expireDuration = 180 * time.Millisecond
	expireAttack   = 10 * time.Millisecond
	expireRelease  = 150 * time.Millisecond

	overNoteDuration = 150 * time.Millisecond
	overAttack       = 5 * time.Millisecond
	overRelease      = 100 * time.Millisecond
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a fixed-length wave generator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope shapes s with attack and release over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a linear volume, math.Log2(0) is -Inf so zero is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

func shaped(freq float64, wave WaveType, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, attack, release, rate)
}

// CreateSpawnSound is a soft high blip
func CreateSpawnSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	s := shaped(1320.0, WaveSine, spawnDuration, spawnAttack, spawnRelease, rate)
	return newVolume(s, cfg.volume(SoundSpawn))
}

// CreateHitSound is a rising two-note thwack with a noise transient
func CreateHitSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	thud := shaped(0, WaveNoise, hitNoteDuration/2, hitAttack, hitNoteDuration/3, rate)
	n1 := shaped(659.25, WaveSquare, hitNoteDuration, hitAttack, hitRelease, rate) // E5
	n2 := shaped(987.77, WaveSquare, hitNoteDuration, hitAttack, hitRelease, rate) // B5

	mixed := beep.Mix(
		newVolume(thud, 0.4),
		newVolume(beep.Seq(n1, n2), 0.6),
	)
	return newVolume(mixed, cfg.volume(SoundHit))
}

// CreateMissSound is a short low buzz
func CreateMissSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	s := shaped(110.0, WaveSaw, missDuration, missAttack, missRelease, rate)
	return newVolume(s, cfg.volume(SoundMiss))
}

// CreateExpireSound is a falling pair of sine notes
func CreateExpireSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	half := expireDuration / 2
	n1 := shaped(440.0, WaveSine, half, expireAttack, half/2, rate)
	n2 := shaped(330.0, WaveSine, half, expireAttack, expireRelease/2, rate)
	return newVolume(beep.Seq(n1, n2), cfg.volume(SoundExpire))
}

// CreateRoundOverSound is a three-note descending chime
func CreateRoundOverSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	seq := beep.Seq(
		shaped(783.99, WaveSine, overNoteDuration, overAttack, overRelease, rate), // G5
		shaped(659.25, WaveSine, overNoteDuration, overAttack, overRelease, rate), // E5
		shaped(523.25, WaveSine, overNoteDuration*2, overAttack, overRelease*2, rate), // C5
	)
	return newVolume(seq, cfg.volume(SoundRoundOver))
}

// GetSoundEffect returns the streamer for soundType, nil if unknown
func GetSoundEffect(soundType SoundType, cfg *Config) beep.Streamer {
	switch soundType {
	case SoundSpawn:
		return CreateSpawnSound(cfg)
	case SoundHit:
		return CreateHitSound(cfg)
	case SoundMiss:
		return CreateMissSound(cfg)
	case SoundExpire:
		return CreateExpireSound(cfg)
	case SoundRoundOver:
		return CreateRoundOverSound(cfg)
	default:
		return nil
	}
}
