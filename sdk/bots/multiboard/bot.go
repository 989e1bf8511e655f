package multiboard

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/allocation"
	"github.com/lox/multiboard/sdk/analysis"
	"github.com/lox/multiboard/sdk/config"
)

// Options wires a Bot. Zero values take defaults: DefaultPolicy, one worker,
// the real clock and a disabled logger.
type Options struct {
	ID      string
	Seed    int64
	Policy  *Policy
	Weights *analysis.RangeWeights
	Range   *analysis.Range
	Workers int
	Clock   quartz.Clock
	Logger  *zerolog.Logger
}

// Bot plays the three boards of each round: it plans the allocation when
// the round starts and answers every decision request with three actions.
type Bot struct {
	id       string
	logger   zerolog.Logger
	rng      *rand.Rand
	policy   *Policy
	planner  *allocation.Planner
	selector *Selector
	session  *RoundSession
	budget   *analysis.TimeBudget
	rounds   int
}

// New builds a bot from options.
func New(opts Options) (*Bot, error) {
	policy := opts.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	policy.applyDefaults()
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.Mode() == analysis.ModeRangeWeighted && opts.Weights == nil {
		return nil, fmt.Errorf("sampling %q: %w", policy.Sampling, analysis.ErrNoRangeWeights)
	}

	clock := opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.ID != "" {
		logger = logger.With().Str("bot", opts.ID).Logger()
	}

	budget := analysis.NewTimeBudget(clock, analysis.DefaultBudgetConfig())
	estimator := &analysis.Estimator{
		Workers: max(opts.Workers, 1),
		Weights: opts.Weights,
		Boost:   policy.WeightBoost,
		Range:   opts.Range,
		Budget:  budget,
	}
	rng := randutil.New(opts.Seed)

	return &Bot{
		id:       opts.ID,
		logger:   logger,
		rng:      rng,
		policy:   policy,
		planner:  allocation.NewPlanner(estimator, policy.PlannerPolicy(), logger),
		selector: NewSelector(policy, estimator, budget, rng, logger),
		session:  NewRoundSession(),
		budget:   budget,
	}, nil
}

// NewFromConfig loads the policy file and starting hand table named by cfg.
func NewFromConfig(cfg *config.BotConfig, logger zerolog.Logger) (*Bot, error) {
	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}

	var weights *analysis.RangeWeights
	if cfg.RangeTable != "" {
		if weights, err = analysis.LoadRangeWeightsFile(cfg.RangeTable); err != nil {
			return nil, err
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return New(Options{
		ID:      cfg.BotID,
		Seed:    seed,
		Policy:  policy,
		Weights: weights,
		Workers: cfg.Workers,
		Logger:  &logger,
	})
}

// ID returns the bot's name.
func (b *Bot) ID() string { return b.id }

// Policy returns the effective policy.
func (b *Bot) Policy() *Policy { return b.policy }

// Session exposes the current round's state.
func (b *Bot) Session() *RoundSession { return b.session }

// HandleNewRound plans the allocation for the six dealt cards and resets
// the round session. gameClock is the engine's remaining time for the game.
func (b *Bot) HandleNewRound(ctx context.Context, cards [6]poker.Card, gameClock time.Duration) (allocation.Allocation, error) {
	b.budget.SetRemaining(gameClock)
	iterations := b.budget.Iterations(b.planner.Policy().Iterations)

	alloc, err := b.planner.PlanWithIterations(ctx, b.rng, cards, iterations)
	if err != nil {
		return allocation.Allocation{}, fmt.Errorf("planning allocation: %w", err)
	}
	b.session.Reset(alloc)
	b.rounds++

	ev := b.logger.Info().
		Int("round", b.rounds).
		Str("id", b.session.ID().String()).
		Dur("game_clock", gameClock)
	for i, h := range alloc.Holes {
		ev = ev.Str(fmt.Sprintf("board%d", i+1), fmt.Sprintf("%s %s %.2f", h, poker.CategorizeHole(h), alloc.Equity[i]))
	}
	ev.Msg("new round")
	return alloc, nil
}

// GetActions returns one action per board. On error no action is usable and
// the caller should treat the bot as failed.
func (b *Bot) GetActions(ctx context.Context, state RoundState) ([NumBoards]Action, error) {
	if state.GameClock > 0 {
		b.budget.SetRemaining(state.GameClock)
	}
	actions, err := b.selector.Decide(ctx, b.session, state)
	if err != nil {
		var zero [NumBoards]Action
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		b.logger.Error().Err(err).Int("street", state.Street).Msg("decision failed")
		return zero, err
	}
	return actions, nil
}

// HandleRoundOver logs a summary of the round and drops its state. delta is
// our bankroll change.
func (b *Bot) HandleRoundOver(gameClock time.Duration, delta int) {
	b.budget.SetRemaining(gameClock)
	hits, misses := b.session.EvalCache().Stats()
	sampling, runs := b.budget.Sampling()

	b.logger.Info().
		Int("round", b.rounds).
		Str("id", b.session.ID().String()).
		Int("delta", delta).
		Int("decisions", b.session.Decisions()).
		Uint64("eval_hits", hits).
		Uint64("eval_misses", misses).
		Int("estimates", runs).
		Dur("sampling_total", sampling).
		Dur("game_clock", gameClock).
		Msg("round over")
	b.session.Reset(allocation.Allocation{})
}
