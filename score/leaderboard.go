package score

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/core"
)

// DefaultStoreTimeout bounds the store calls made by one Leaderboard operation
const DefaultStoreTimeout = 2 * time.Second

// ErrCorrupt marks stored data that cannot be decoded as a score list
// Stores wrap it so a Leaderboard can tell bad data from an unavailable store
var ErrCorrupt = errors.New("corrupt high score data")

// Store persists the high-score list
// Missing data loads as an empty list with no error
type Store interface {
	Load(ctx context.Context) ([]int, error)
	Save(ctx context.Context, entries []int) error
}

// Leaderboard applies the high-score rules on top of a Store
// Storage failures are logged and never surface to the caller
type Leaderboard struct {
	mu      sync.Mutex // Serializes load-insert-save in Finalize
	store   Store
	max     int
	timeout time.Duration
	log     zerolog.Logger
}

// NewLeaderboard creates a leaderboard keeping at most max entries
func NewLeaderboard(store Store, max int, log zerolog.Logger) *Leaderboard {
	return &Leaderboard{
		store:   store,
		max:     max,
		timeout: DefaultStoreTimeout,
		log:     log.With().Str("component", "leaderboard").Logger(),
	}
}

// Entries returns the stored scores, descending
// A missing, unreadable or malformed list reads as empty
func (lb *Leaderboard) Entries() []int {
	ctx, cancel := context.WithTimeout(context.Background(), lb.timeout)
	defer cancel()

	raw, err := lb.store.Load(ctx)
	if err != nil {
		lb.log.Warn().Err(err).Msg("load high scores, using empty list")
		return []int{}
	}
	return Sanitize(raw, lb.max)
}

// Finalize records a completed round's score
// Scores of zero or below are discarded. A corrupt list is replaced, but when the
// store cannot be read at all the score is dropped so saved entries survive
func (lb *Leaderboard) Finalize(score int) {
	if score <= 0 {
		return
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), lb.timeout)
	defer cancel()

	raw, err := lb.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCorrupt):
		lb.log.Warn().Err(err).Msg("stored high scores corrupt, starting a new list")
		raw = nil
	default:
		lb.log.Error().Err(err).Int("score", score).Msg("load high scores, score not recorded")
		return
	}

	entries := Insert(Sanitize(raw, lb.max), score, lb.max)
	if err := lb.store.Save(ctx, entries); err != nil {
		lb.log.Error().Err(err).Int("score", score).Msg("save high scores")
		return
	}
	lb.log.Debug().Int("score", score).Ints("entries", entries).Msg("high scores saved")
}

// AsyncFinalizer records scores on a background goroutine so slow stores do not
// block the caller
type AsyncFinalizer struct {
	lb *Leaderboard
	wg sync.WaitGroup
}

// NewAsyncFinalizer wraps lb
func NewAsyncFinalizer(lb *Leaderboard) *AsyncFinalizer {
	return &AsyncFinalizer{lb: lb}
}

// Finalize queues score for recording and returns immediately
func (a *AsyncFinalizer) Finalize(score int) {
	if score <= 0 {
		return
	}
	a.wg.Add(1)
	core.Go(func() {
		defer a.wg.Done()
		a.lb.Finalize(score)
	})
}

// Wait blocks until every queued score has been recorded or dropped
func (a *AsyncFinalizer) Wait() {
	a.wg.Wait()
}
