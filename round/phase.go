package round

// Phase is the lifecycle state of a round
type Phase int

const (
	Idle Phase = iota
	Running
	Paused
	Ended
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// validTransitions excludes the reset edge, any phase may return to Idle
var validTransitions = map[Phase][]Phase{
	Idle:    {Running},
	Running: {Paused, Ended},
	Paused:  {Running, Ended},
	Ended:   {Running},
}

// CanTransition checks if a phase transition is valid
func CanTransition(from, to Phase) bool {
	if to == Idle {
		return true
	}
	for _, p := range validTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
