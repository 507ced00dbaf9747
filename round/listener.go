package round

// Listener receives state changes synchronously on the owner goroutine
type Listener interface {
	ScoreChanged(score int)
	TimeChanged(remaining int, paused bool)
	TargetSpawned(cell int)
	TargetCleared(cell int)
	RoundEnded(finalScore int)
}

// NopListener ignores every notification
type NopListener struct{}

func (NopListener) ScoreChanged(int)      {}
func (NopListener) TimeChanged(int, bool) {}
func (NopListener) TargetSpawned(int)     {}
func (NopListener) TargetCleared(int)     {}
func (NopListener) RoundEnded(int)        {}

// Effects are fire-and-forget side effects such as sound and metrics
type Effects interface {
	Spawned(cell int)
	Hit(cell int)
	Miss()
	Expired(cell int)
	RoundOver(score int)
}

// NopEffects ignores every effect
type NopEffects struct{}

func (NopEffects) Spawned(int)   {}
func (NopEffects) Hit(int)       {}
func (NopEffects) Miss()         {}
func (NopEffects) Expired(int)   {}
func (NopEffects) RoundOver(int) {}

// MultiEffects fans each effect out in order
type MultiEffects []Effects

func (m MultiEffects) Spawned(cell int) {
	for _, e := range m {
		e.Spawned(cell)
	}
}

func (m MultiEffects) Hit(cell int) {
	for _, e := range m {
		e.Hit(cell)
	}
}

func (m MultiEffects) Miss() {
	for _, e := range m {
		e.Miss()
	}
}

func (m MultiEffects) Expired(cell int) {
	for _, e := range m {
		e.Expired(cell)
	}
}

func (m MultiEffects) RoundOver(score int) {
	for _, e := range m {
		e.RoundOver(score)
	}
}

// Finalizer records a completed round's score, *score.Leaderboard satisfies it
type Finalizer interface {
	Finalize(score int)
}
