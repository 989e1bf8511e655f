// Package allocation splits a six card deal into three two card holes, one
// per board.
package allocation

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/analysis"
)

// NumBoards is the number of boards played simultaneously.
const NumBoards = 3

// ErrAllocationInvariant means grouping did not produce exactly three holes
// using every card. It indicates a bug, not bad input.
var ErrAllocationInvariant = errors.New("allocation must produce three holes covering all six cards")

// Policy tunes the planner.
type Policy struct {
	// MinPairRank is the lowest pair kept together, on the 2-14 scale.
	MinPairRank int
	// SwapProbability is the chance of swapping boards 3 and 2, then
	// independently boards 2 and 1, after ordering. Zero disables it.
	SwapProbability float64
	// Iterations per isolated strength estimate.
	Iterations int
	Mode       analysis.Mode
}

// DefaultPolicy keeps pairs of fives or better and never swaps.
func DefaultPolicy() Policy {
	return Policy{
		MinPairRank: 5,
		Iterations:  100,
	}
}

// Allocation is the hole played on each board. Holes are pairwise disjoint
// and ordered by ascending isolated equity, so the last board holds the
// strongest hole unless a swap fired.
type Allocation struct {
	Holes  [NumBoards]poker.Hole
	Equity [NumBoards]float64
}

// Cards returns the union of all holes.
func (a Allocation) Cards() poker.Hand {
	var h poker.Hand
	for _, hole := range a.Holes {
		h |= hole.Hand()
	}
	return h
}

// Others returns the cards held on every board except board.
func (a Allocation) Others(board int) []poker.Card {
	out := make([]poker.Card, 0, 2*(NumBoards-1))
	for i, hole := range a.Holes {
		if i != board {
			out = append(out, hole[0], hole[1])
		}
	}
	return out
}

func (a Allocation) String() string {
	parts := make([]string, NumBoards)
	for i, h := range a.Holes {
		parts[i] = fmt.Sprintf("%s(%.2f)", h, a.Equity[i])
	}
	return strings.Join(parts, " ")
}

// Planner groups a deal into holes and orders them by strength.
type Planner struct {
	estimator *analysis.Estimator
	policy    Policy
	logger    zerolog.Logger
}

// NewPlanner creates a planner. Zero policy fields fall back to DefaultPolicy.
func NewPlanner(estimator *analysis.Estimator, policy Policy, logger zerolog.Logger) *Planner {
	def := DefaultPolicy()
	if policy.MinPairRank == 0 {
		policy.MinPairRank = def.MinPairRank
	}
	if policy.Iterations == 0 {
		policy.Iterations = def.Iterations
	}
	return &Planner{estimator: estimator, policy: policy, logger: logger}
}

// Policy returns the effective policy.
func (p *Planner) Policy() Policy { return p.policy }

// Plan groups cards into holes, estimates each in isolation (the other four
// dealt cards are dead, no community) and orders the boards weakest first.
func (p *Planner) Plan(ctx context.Context, rng *rand.Rand, cards [6]poker.Card) (Allocation, error) {
	return p.PlanWithIterations(ctx, rng, cards, p.policy.Iterations)
}

// PlanWithIterations is Plan with an explicit sample count, for callers
// scaling work to a time budget.
func (p *Planner) PlanWithIterations(ctx context.Context, rng *rand.Rand, cards [6]poker.Card, iterations int) (Allocation, error) {
	holes, err := Group(cards, p.policy.MinPairRank)
	if err != nil {
		return Allocation{}, err
	}

	type scored struct {
		hole   poker.Hole
		equity float64
	}
	ranked := make([]scored, NumBoards)
	for i, hole := range holes {
		dead := make([]poker.Card, 0, 4)
		for j, other := range holes {
			if j != i {
				dead = append(dead, other[0], other[1])
			}
		}
		res, err := p.estimator.Estimate(ctx, rng, analysis.Request{
			Hole:       hole,
			Dead:       dead,
			Iterations: iterations,
			Mode:       p.policy.Mode,
		})
		if err != nil {
			return Allocation{}, fmt.Errorf("estimating hole %s: %w", hole, err)
		}
		ranked[i] = scored{hole: hole, equity: res.Equity()}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return cmp.Compare(a.equity, b.equity) })

	if randutil.Bernoulli(rng, p.policy.SwapProbability) {
		ranked[2], ranked[1] = ranked[1], ranked[2]
	}
	if randutil.Bernoulli(rng, p.policy.SwapProbability) {
		ranked[1], ranked[0] = ranked[0], ranked[1]
	}

	var alloc Allocation
	for i, s := range ranked {
		alloc.Holes[i] = s.hole
		alloc.Equity[i] = s.equity
	}
	p.logger.Debug().
		Str("allocation", alloc.String()).
		Int("iterations", iterations).
		Msg("allocated holes")
	return alloc, nil
}

// Group pairs six cards into three holes: pairs at or above minPairRank
// (2-14 scale), then adjacent ranks, then suits, then whatever is left.
func Group(cards [6]poker.Card, minPairRank int) ([NumBoards]poker.Hole, error) {
	var holes []poker.Hole
	var used poker.Hand

	take := func(a, b poker.Card) {
		holes = append(holes, poker.Hole{a, b})
		used |= poker.NewHand(a, b)
	}
	remaining := func() []poker.Card {
		var out []poker.Card
		for _, c := range byRankDesc(cards[:]) {
			if !used.HasCard(c) {
				out = append(out, c)
			}
		}
		return out
	}

	// pairs: a rank seen two or four times yields one or two pairs, three
	// times yields one pair and a single
	byRank := make(map[uint8][]poker.Card)
	for _, c := range byRankDesc(cards[:]) {
		byRank[c.Rank()] = append(byRank[c.Rank()], c)
	}
	for rank := int(poker.Ace); rank >= 0; rank-- {
		group := byRank[uint8(rank)]
		if rank+2 < minPairRank {
			continue
		}
		for len(group) >= 2 {
			take(group[0], group[1])
			group = group[2:]
		}
	}

	// adjacent ranks, walking high to low
	rest := remaining()
	for i := 0; i+1 < len(rest); i++ {
		a, b := rest[i], rest[i+1]
		if used.HasCard(a) || used.HasCard(b) {
			continue
		}
		if int(a.Rank())-int(b.Rank()) <= 1 {
			take(a, b)
		}
	}

	// suits: two or three of a suit make one hole, four make two
	bySuit := make(map[uint8][]poker.Card)
	for _, c := range remaining() {
		bySuit[c.Suit()] = append(bySuit[c.Suit()], c)
	}
	for suit := range uint8(4) {
		group := bySuit[suit]
		switch len(group) {
		case 2, 3:
			take(group[0], group[1])
		case 4:
			take(group[0], group[1])
			take(group[2], group[3])
		}
	}

	rest = remaining()
	for i := 0; i+1 < len(rest); i += 2 {
		take(rest[i], rest[i+1])
	}

	var out [NumBoards]poker.Hole
	if len(holes) != NumBoards || used.CountCards() != len(cards) || len(remaining()) != 0 {
		return out, fmt.Errorf("%w: %d holes, %d cards left", ErrAllocationInvariant, len(holes), len(remaining()))
	}
	copy(out[:], holes)
	return out, nil
}

func byRankDesc(cards []poker.Card) []poker.Card {
	out := slices.Clone(cards)
	slices.SortStableFunc(out, func(a, b poker.Card) int {
		if c := cmp.Compare(b.Rank(), a.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.Suit(), b.Suit())
	})
	return out
}
