// Package audio synthesises short game sound effects with beep
package audio

// SoundType represents different sound effects
type SoundType int

const (
	SoundSpawn     SoundType = iota // Target appears
	SoundHit                        // Target whacked
	SoundMiss                       // Click on an empty cell
	SoundExpire                     // Target escaped
	SoundRoundOver                  // Countdown finished or round stopped
	soundTypeCount
)

// String returns the key used in WHACK_SFX_VOLUMES
func (s SoundType) String() string {
	switch s {
	case SoundSpawn:
		return "spawn"
	case SoundHit:
		return "hit"
	case SoundMiss:
		return "miss"
	case SoundExpire:
		return "expire"
	case SoundRoundOver:
		return "over"
	default:
		return "unknown"
	}
}
