package multiboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/rs/zerolog"

	"github.com/lox/multiboard/sdk/analysis"
)

// ErrNoAllocation is returned when a board needs a hole before the round
// was planned.
var ErrNoAllocation = errors.New("no hole allocated for board")

// EquitySource estimates a hole's equity. *analysis.Estimator implements it.
type EquitySource interface {
	Estimate(ctx context.Context, rng *rand.Rand, req analysis.Request) (analysis.EquityResult, error)
}

// Selector chooses one action per board, spending from a shared stack.
type Selector struct {
	policy *Policy
	equity EquitySource
	budget *analysis.TimeBudget
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewSelector creates a selector. budget may be nil.
func NewSelector(policy *Policy, equity EquitySource, budget *analysis.TimeBudget, rng *rand.Rand, logger zerolog.Logger) *Selector {
	return &Selector{
		policy: policy,
		equity: equity,
		budget: budget,
		rng:    rng,
		logger: logger,
	}
}

// Decide returns exactly one action per board, or an error and no actions.
// Raise and call costs across all boards never exceed state.Stack.
func (s *Selector) Decide(ctx context.Context, session *RoundSession, state RoundState) ([NumBoards]Action, error) {
	var actions [NumBoards]Action
	if session.observe(state.Street) {
		s.logger.Debug().Int("street", state.Street).Str("round", session.ID().String()).Msg("new street")
	}

	alloc := session.Allocation()
	phases := [NumBoards]Phase{}
	var equities [NumBoards]float64
	for i, b := range state.Boards {
		phases[i] = PhaseOf(b)
		if phases[i] == PhaseAssignPending || phases[i] == PhaseActiveDecision {
			if h := alloc.Holes[i]; !h[0].Valid() || !h[1].Valid() {
				return actions, fmt.Errorf("board %d: %w", i+1, ErrNoAllocation)
			}
		}
		if phases[i] != PhaseActiveDecision {
			continue
		}
		eq, err := s.boardEquity(ctx, session, i, state.Street, b)
		if err != nil {
			return actions, fmt.Errorf("board %d: %w", i+1, err)
		}
		equities[i] = eq
	}

	order := []int{0, 1, 2}
	if s.policy.OrderByStrength {
		slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(equities[b], equities[a]) })
	}

	ledger := NewLedger(state.Stack)
	for _, i := range order {
		b := state.Boards[i]
		var act Action
		var cost int
		switch phases[i] {
		case PhaseAssignPending:
			act = Assign(alloc.Holes[i])
		case PhaseTerminal, PhaseSettled:
			act = Check()
		case PhaseActiveDecision:
			act, cost = s.decideBoard(i, state.Street, b, equities[i], &ledger)
		}
		if err := ledger.Commit(cost); err != nil {
			return [NumBoards]Action{}, fmt.Errorf("board %d: %w", i+1, err)
		}
		actions[i] = act
	}

	s.logger.Debug().
		Str("round", session.ID().String()).
		Int("street", state.Street).
		Int("stack", state.Stack).
		Int("spent", ledger.Spent()).
		Stringer("board1", actions[0]).
		Stringer("board2", actions[1]).
		Stringer("board3", actions[2]).
		Msg("actions chosen")
	return actions, nil
}

// boardEquity returns the cached estimate for the board and street, running
// the estimator on a miss.
func (s *Selector) boardEquity(ctx context.Context, session *RoundSession, board, street int, b BoardState) (float64, error) {
	if eq, ok := session.Equity(board, street); ok {
		return eq, nil
	}
	alloc := session.Allocation()
	res, err := s.equity.Estimate(ctx, s.rng, analysis.Request{
		Hole:       alloc.Holes[board],
		Dead:       alloc.Others(board),
		Community:  b.Community,
		Iterations: s.budget.Iterations(s.policy.Iterations),
		Mode:       s.policy.Mode(),
		Cache:      session.EvalCache(),
	})
	if err != nil {
		return 0, err
	}
	eq := res.Equity()
	session.StoreEquity(board, street, eq)
	return eq, nil
}

// decideBoard applies the betting policy to one active board and returns
// the action with the chips it commits.
func (s *Selector) decideBoard(board, street int, b BoardState, equity float64, ledger *Ledger) (Action, int) {
	cost := b.ContinueCost()
	potTotal := b.PotTotal()

	target := b.MyPip + cost + int(s.policy.multiplier(street)*float64(potTotal+cost))
	target = min(max(target, b.MinRaise), b.MaxRaise)
	raiseCost := target - b.MyPip

	var commit Action
	var commitCost int
	switch {
	case b.Legal.Has(ActionRaise) && raiseCost >= 0 && ledger.CanAfford(raiseCost):
		commit, commitCost = Raise(target), raiseCost
	case b.Legal.Has(ActionCall) && ledger.CanAfford(cost):
		commit, commitCost = Call(), cost
	case b.Legal.Has(ActionCheck):
		commit = Check()
	default:
		commit = Fold()
	}

	log := s.logger.Debug().
		Int("board", board+1).
		Float64("equity", equity).
		Int("cost", cost).
		Int("pot", potTotal).
		Int("available", ledger.Available())

	if cost > 0 {
		strength := equity
		if cost > s.policy.IntimidationThreshold {
			strength = max(0, strength-s.policy.IntimidationPenalty)
		}
		potOdds := float64(cost) / float64(potTotal+cost)
		log = log.Float64("strength", strength).Float64("pot_odds", potOdds)

		if strength < potOdds {
			log.Str("action", "fold").Msg("behind the price")
			return Fold(), 0
		}
		if strength > s.policy.RaiseEquityFloor && s.rng.Float64() < strength {
			log.Stringer("action", commit).Msg("committing")
			return commit, commitCost
		}
		if b.Legal.Has(ActionCall) && ledger.CanAfford(cost) {
			log.Str("action", "call").Msg("calling the price")
			return Call(), cost
		}
		log.Str("action", "fold").Msg("cannot afford to call")
		return Fold(), 0
	}

	if s.rng.Float64() < equity {
		log.Stringer("action", commit).Msg("committing")
		return commit, commitCost
	}
	log.Str("action", "check").Msg("checking")
	return Check(), 0
}
