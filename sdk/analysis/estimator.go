package analysis

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
)

var (
	ErrZeroIterations    = errors.New("iterations must be at least 1")
	ErrNoRangeWeights    = errors.New("range weighted estimate needs a starting hand table")
	ErrNoOpponentSamples = errors.New("no opponent hole has positive weight")
	ErrTooManyCommunity  = errors.New("more than five community cards")
)

// Mode selects how opponent holes are drawn.
type Mode uint8

const (
	// ModeUniform draws opponent holes uniformly from unseen cards.
	ModeUniform Mode = iota
	// ModeRangeWeighted draws opponent holes in proportion to their
	// starting hand table value plus a flat boost, capped at 1.
	ModeRangeWeighted
)

func (m Mode) String() string {
	switch m {
	case ModeUniform:
		return "uniform"
	case ModeRangeWeighted:
		return "weighted"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode accepts "uniform" and "weighted" (or "range").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "uniform", "":
		return ModeUniform, nil
	case "weighted", "range", "range-weighted":
		return ModeRangeWeighted, nil
	}
	return 0, fmt.Errorf("unknown sampling mode %q", s)
}

// DefaultWeightBoost is added to every table value before capping at 1, so
// weak holes still get sampled.
const DefaultWeightBoost = 0.2

// Request describes one estimate. Dead holds cards known to be out of play
// that are neither the hole nor the community, such as the holes played on
// the other boards.
type Request struct {
	Hole       poker.Hole
	Dead       []poker.Card
	Community  []poker.Card
	Iterations int
	Mode       Mode

	// Cache, when set, memoizes hand evaluations across calls.
	Cache *poker.EvalCache
}

// Estimator runs Monte Carlo equity estimates. The zero value samples
// uniformly on a single goroutine.
type Estimator struct {
	Workers int
	Weights *RangeWeights
	Boost   *float64    // added to table values; nil uses DefaultWeightBoost
	Range   *Range      // optional filter on opponent classes in weighted mode
	Budget  *TimeBudget // optional
}

// Estimate returns hole's equity against one opponent. rng is the only
// source of randomness: the same seed, request and worker count give the
// same result. The context is checked between batches of iterations.
func (e *Estimator) Estimate(ctx context.Context, rng *rand.Rand, req Request) (EquityResult, error) {
	if req.Iterations < 1 {
		return EquityResult{}, ErrZeroIterations
	}
	if len(req.Community) > 5 {
		return EquityResult{}, fmt.Errorf("%w: got %d", ErrTooManyCommunity, len(req.Community))
	}
	defer e.Budget.Start()()

	known := make([]poker.Card, 0, 2+len(req.Dead)+len(req.Community))
	known = append(known, req.Hole[0], req.Hole[1])
	known = append(known, req.Community...)
	known = append(known, req.Dead...)
	deck, err := poker.NewDeckWithout(rng, known...)
	if err != nil {
		return EquityResult{}, fmt.Errorf("removing known cards: %w", err)
	}

	unseen := deck.Cards()
	need := 5 - len(req.Community)
	if len(unseen) < 2+need {
		return EquityResult{}, fmt.Errorf("%w: %d unseen, need %d", poker.ErrDeckExhausted, len(unseen), 2+need)
	}

	sim := &simulation{
		hero:      req.Hole.Hand(),
		community: poker.NewHand(req.Community...),
		need:      need,
		unseen:    unseen,
		cache:     req.Cache,
	}
	if req.Mode == ModeRangeWeighted {
		if e.Weights == nil {
			return EquityResult{}, ErrNoRangeWeights
		}
		if sim.opponents, err = e.opponentDistribution(unseen); err != nil {
			return EquityResult{}, err
		}
	}

	workers := min(max(e.Workers, 1), req.Iterations)
	rngs := randutil.Split(rng, workers)
	results := make([]EquityResult, workers)

	g, ctx := errgroup.WithContext(ctx)
	per, rem := req.Iterations/workers, req.Iterations%workers
	for w := range workers {
		n := per
		if w < rem {
			n++
		}
		g.Go(func() error {
			res, err := sim.run(ctx, rngs[w], n)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return EquityResult{}, err
	}

	var total EquityResult
	for _, r := range results {
		total.Add(r)
	}
	return total, nil
}

// opponentDistribution weights every two card combination of the unseen
// cards and returns it as a cumulative distribution.
func (e *Estimator) opponentDistribution(unseen []poker.Card) (*distribution, error) {
	boost := DefaultWeightBoost
	if e.Boost != nil {
		boost = *e.Boost
	}

	d := &distribution{}
	total := 0.0
	for i := 0; i < len(unseen); i++ {
		for j := i + 1; j < len(unseen); j++ {
			sh := poker.StartingHandFromCards(unseen[i], unseen[j])
			if !e.Range.Contains(sh) {
				continue
			}
			ev, err := e.Weights.Lookup(sh)
			if err != nil {
				return nil, err
			}
			w := min(1, max(0, ev+boost))
			if w == 0 {
				continue
			}
			total += w
			d.holes = append(d.holes, poker.Hole{unseen[i], unseen[j]})
			d.cumulative = append(d.cumulative, total)
		}
	}
	if total == 0 {
		return nil, ErrNoOpponentSamples
	}
	return d, nil
}

type distribution struct {
	holes      []poker.Hole
	cumulative []float64
}

func (d *distribution) sample(rng *rand.Rand) poker.Hole {
	total := d.cumulative[len(d.cumulative)-1]
	i := sort.SearchFloat64s(d.cumulative, rng.Float64()*total)
	if i >= len(d.holes) {
		i = len(d.holes) - 1
	}
	return d.holes[i]
}

// simulation is the read-only state shared by workers.
type simulation struct {
	hero      poker.Hand
	community poker.Hand
	need      int
	unseen    []poker.Card
	opponents *distribution // nil samples uniformly
	cache     *poker.EvalCache
}

const batchSize = 256

func (s *simulation) run(ctx context.Context, rng *rand.Rand, iterations int) (EquityResult, error) {
	var res EquityResult
	pool := make([]poker.Card, 0, len(s.unseen))

	for i := range iterations {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		var opp poker.Hand
		var drawn []poker.Card
		if s.opponents != nil {
			opp = s.opponents.sample(rng).Hand()
			pool = pool[:0]
			for _, c := range s.unseen {
				if !opp.HasCard(c) {
					pool = append(pool, c)
				}
			}
			drawInto(rng, pool, s.need)
			drawn = pool[:s.need]
		} else {
			pool = append(pool[:0], s.unseen...)
			drawInto(rng, pool, 2+s.need)
			opp = poker.NewHand(pool[0], pool[1])
			drawn = pool[2 : 2+s.need]
		}
		board := s.community | poker.NewHand(drawn...)

		hero, err := s.cache.Evaluate(s.hero | board)
		if err != nil {
			return res, err
		}
		villain, err := s.cache.Evaluate(opp | board)
		if err != nil {
			return res, err
		}

		res.Samples++
		switch {
		case hero > villain:
			res.Wins++
		case hero == villain:
			res.Ties++
		}
	}
	return res, nil
}

// drawInto moves n uniformly chosen cards to the front of cards.
func drawInto(rng *rand.Rand, cards []poker.Card, n int) {
	for i := range n {
		j := i + rng.IntN(len(cards)-i)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
