package analysis

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// BudgetConfig sets when sampling is cut back to protect the game clock.
type BudgetConfig struct {
	LowWater      time.Duration // below this, iterations are halved
	CriticalWater time.Duration // below this, MinIterations are used
	MinIterations int
}

// DefaultBudgetConfig returns thresholds suited to a game clock of tens of seconds.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		LowWater:      5 * time.Second,
		CriticalWater: time.Second,
		MinIterations: 10,
	}
}

// TimeBudget tracks how long sampling has taken and how much of the game
// clock is left, and scales iteration counts down as the clock runs out.
// A nil *TimeBudget never scales and records nothing.
type TimeBudget struct {
	clock quartz.Clock
	cfg   BudgetConfig

	mu        sync.Mutex
	sampling  time.Duration
	estimates int
	remaining time.Duration
	known     bool
}

// NewTimeBudget creates a budget reading time from clock.
func NewTimeBudget(clock quartz.Clock, cfg BudgetConfig) *TimeBudget {
	if cfg.MinIterations < 1 {
		cfg.MinIterations = 1
	}
	return &TimeBudget{clock: clock, cfg: cfg}
}

// Start marks the beginning of a sampling run. Calling the returned func
// records its duration.
func (b *TimeBudget) Start() func() {
	if b == nil {
		return func() {}
	}
	start := b.clock.Now()
	return func() {
		elapsed := b.clock.Since(start)
		b.mu.Lock()
		b.sampling += elapsed
		b.estimates++
		b.mu.Unlock()
	}
}

// SetRemaining records the game clock reported by the engine.
func (b *TimeBudget) SetRemaining(d time.Duration) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.remaining = d
	b.known = true
	b.mu.Unlock()
}

// Iterations scales a base iteration count to the time left. It never
// returns less than 1.
func (b *TimeBudget) Iterations(base int) int {
	if base < 1 {
		base = 1
	}
	if b == nil {
		return base
	}
	b.mu.Lock()
	remaining, known := b.remaining, b.known
	b.mu.Unlock()

	switch {
	case !known:
		return base
	case remaining < b.cfg.CriticalWater:
		return min(base, b.cfg.MinIterations)
	case remaining < b.cfg.LowWater:
		return max(base/2, min(base, b.cfg.MinIterations))
	}
	return base
}

// Sampling returns the cumulative sampling time and number of runs recorded.
func (b *TimeBudget) Sampling() (time.Duration, int) {
	if b == nil {
		return 0, 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sampling, b.estimates
}
