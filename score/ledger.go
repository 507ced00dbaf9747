// Package score keeps the running score of a round and the persisted high-score list
package score

// Ledger accumulates score for one round, never below zero
type Ledger struct {
	hitPoints   int
	missPenalty int
	score       int
}

// NewLedger creates a ledger awarding hitPoints per hit and deducting missPenalty per miss
func NewLedger(hitPoints, missPenalty int) *Ledger {
	return &Ledger{hitPoints: hitPoints, missPenalty: missPenalty}
}

// Score returns the current score
func (l *Ledger) Score() int {
	return l.score
}

// ApplyHit adds the hit reward and returns the new score
func (l *Ledger) ApplyHit() int {
	l.score += l.hitPoints
	return l.score
}

// ApplyMiss deducts the miss penalty, floored at zero, and returns the new score
func (l *Ledger) ApplyMiss() int {
	l.score -= l.missPenalty
	if l.score < 0 {
		l.score = 0
	}
	return l.score
}

// Reset zeroes the score
func (l *Ledger) Reset() {
	l.score = 0
}
