// Package simulator plays the multi-board bot through complete rounds
// against scripted opponents and collects chip statistics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/internal/statistics"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/allocation"
	"github.com/lox/multiboard/sdk/bots/multiboard"
)

const (
	StartingStack = 400
	Blind         = 1
	MinBet        = 2
)

// ErrIllegalAction is returned when the player answers with an action the
// board did not offer, or spends more than its stack.
var ErrIllegalAction = errors.New("illegal action")

var streets = []int{multiboard.StreetPreflop, multiboard.StreetFlop, multiboard.StreetTurn, multiboard.StreetRiver}

// Player is the bot under test. *multiboard.Bot implements it.
type Player interface {
	HandleNewRound(ctx context.Context, cards [6]poker.Card, gameClock time.Duration) (allocation.Allocation, error)
	GetActions(ctx context.Context, state multiboard.RoundState) ([multiboard.NumBoards]multiboard.Action, error)
	HandleRoundOver(gameClock time.Duration, delta int)
}

// Config holds configuration for running simulations
type Config struct {
	Rounds    int
	Seed      int64
	Opponent  Opponent
	GameClock time.Duration // reported to the player every round
	Timeout   time.Duration // per round, zero disables
	Logger    *log.Logger
}

// Simulator runs rounds back to back.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Opponent == nil {
		config.Opponent = CallingStation{}
	}
	if config.GameClock == 0 {
		config.GameClock = time.Minute
	}
	return &Simulator{config: config}
}

// Run plays the configured number of rounds. Round i uses seed Seed+i, so
// any round can be replayed alone.
func (s *Simulator) Run(ctx context.Context, player Player) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}

	for i := range s.config.Rounds {
		seed := s.config.Seed + int64(i)
		round, err := s.playWithTimeout(ctx, player, seed)
		if err != nil {
			return nil, fmt.Errorf("round %d (seed %d): %w", i+1, seed, err)
		}
		stats.Add(round.Result)

		if s.config.Logger != nil {
			s.config.Logger.Debug("round complete", "round", i+1, "seed", seed, "delta", round.Result.Delta())
		}
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

func (s *Simulator) playWithTimeout(ctx context.Context, player Player, seed int64) (*Round, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	round, err := PlayRound(ctx, player, s.config.Opponent, randutil.New(seed), nil, s.config.GameClock)
	if err != nil {
		return nil, err
	}
	round.Result.Seed = seed
	return round, nil
}

// Step is one decision request and the player's answer.
type Step struct {
	Label   string
	State   multiboard.RoundState
	Actions [multiboard.NumBoards]multiboard.Action
}

// Round is the full record of one played round.
type Round struct {
	Dealt      [6]poker.Card
	Allocation allocation.Allocation
	Opponents  [multiboard.NumBoards]poker.Hole
	Community  [multiboard.NumBoards][]poker.Card
	Steps      []Step
	Result     statistics.RoundResult
}

// PlayRound deals a round (our six cards unless dealt is given, then each
// board's opponent hole and five community cards), plays it to showdown and
// reports the result to the player.
func PlayRound(ctx context.Context, player Player, opp Opponent, rng *rand.Rand, dealt []poker.Card, gameClock time.Duration) (*Round, error) {
	r := &Round{}
	if dealt == nil {
		deck := poker.NewDeck(rng)
		deck.Shuffle()
		var err error
		if dealt, err = deck.Deal(6); err != nil {
			return nil, err
		}
	}
	if len(dealt) != 6 || poker.NewHand(dealt...).CountCards() != 6 {
		return nil, fmt.Errorf("need 6 distinct cards, got %d", len(dealt))
	}
	r.Dealt = [6]poker.Card(dealt)

	// boards are dealt from independent decks
	for i := range r.Community {
		deck, err := poker.NewDeckWithout(rng, dealt...)
		if err != nil {
			return nil, err
		}
		deck.Shuffle()
		cards, err := deck.Deal(7)
		if err != nil {
			return nil, err
		}
		r.Opponents[i] = poker.Hole{cards[0], cards[1]}
		r.Community[i] = cards[2:]
	}

	alloc, err := player.HandleNewRound(ctx, r.Dealt, gameClock)
	if err != nil {
		return nil, err
	}
	r.Allocation = alloc

	state := multiboard.RoundState{
		Stack:     StartingStack - multiboard.NumBoards*Blind,
		GameClock: gameClock,
	}
	invested := [multiboard.NumBoards]int{Blind, Blind, Blind}
	pots := [multiboard.NumBoards]int{2 * Blind, 2 * Blind, 2 * Blind}
	var folded [multiboard.NumBoards]bool

	for i := range state.Boards {
		state.Boards[i] = multiboard.BoardState{Legal: multiboard.NewActionSet(multiboard.ActionAssign)}
	}
	actions, err := player.GetActions(ctx, state)
	if err != nil {
		return nil, err
	}
	for i, a := range actions {
		if a.Kind != multiboard.ActionAssign || a.Hole != alloc.Holes[i] {
			return nil, fmt.Errorf("board %d: %w: want assign %s, got %s", i+1, ErrIllegalAction, alloc.Holes[i], a)
		}
	}
	r.Steps = append(r.Steps, Step{Label: "assign", State: state, Actions: actions})

	for _, street := range streets {
		state.Street = street
		var bets [multiboard.NumBoards]int
		for i := range state.Boards {
			if folded[i] {
				state.Boards[i] = multiboard.BoardState{Terminal: true, Pot: pots[i], Community: r.Community[i][:street]}
				continue
			}
			bets[i] = opp.Bet(rng, street, pots[i])
			state.Boards[i] = boardState(bets[i], pots[i], state.Stack, r.Community[i][:street])
		}

		actions, err := player.GetActions(ctx, state)
		if err != nil {
			return nil, err
		}
		r.Steps = append(r.Steps, Step{Label: streetName(street), State: state, Actions: actions})

		for i, a := range actions {
			b := state.Boards[i]
			if b.Terminal {
				continue
			}
			if !b.Legal.Has(a.Kind) {
				return nil, fmt.Errorf("board %d %s: %w: %s not in %s", i+1, streetName(street), ErrIllegalAction, a, b.Legal)
			}
			spend := 0
			switch a.Kind {
			case multiboard.ActionFold:
				folded[i] = true
			case multiboard.ActionCall:
				spend = bets[i]
			case multiboard.ActionRaise:
				if a.Amount < b.MinRaise || a.Amount > b.MaxRaise {
					return nil, fmt.Errorf("board %d: %w: raise to %d outside [%d, %d]", i+1, ErrIllegalAction, a.Amount, b.MinRaise, b.MaxRaise)
				}
				// the opponent always calls
				spend = a.Amount
			}
			state.Stack -= spend
			invested[i] += spend
			pots[i] += 2 * spend
		}
		if state.Stack < 0 {
			return nil, fmt.Errorf("%w: stack overspent by %d", ErrIllegalAction, -state.Stack)
		}
	}

	for i := range r.Result.Boards {
		res := statistics.BoardResult{Pot: pots[i], Folded: folded[i]}
		if folded[i] {
			res.Delta = -invested[i]
		} else {
			cmp, err := showdown(alloc.Holes[i], r.Opponents[i], r.Community[i])
			if err != nil {
				return nil, fmt.Errorf("board %d showdown: %w", i+1, err)
			}
			res.Showdown = true
			res.Delta = cmp * invested[i]
		}
		r.Result.Boards[i] = res
	}

	player.HandleRoundOver(gameClock, r.Result.Delta())
	return r, nil
}

// boardState is the decision we face on a live board: a bet to call or
// fold, or a free check.
func boardState(bet, pot, stack int, community []poker.Card) multiboard.BoardState {
	if bet > 0 {
		legal := multiboard.NewActionSet(multiboard.ActionFold, multiboard.ActionCall)
		if stack >= 2*bet {
			legal |= multiboard.NewActionSet(multiboard.ActionRaise)
		}
		return multiboard.BoardState{
			Legal:     legal,
			OppPip:    bet,
			Pot:       pot,
			MinRaise:  2 * bet,
			MaxRaise:  max(stack, 2*bet),
			Community: community,
		}
	}
	legal := multiboard.NewActionSet(multiboard.ActionCheck)
	if stack >= MinBet {
		legal |= multiboard.NewActionSet(multiboard.ActionRaise)
	}
	return multiboard.BoardState{
		Legal:     legal,
		Pot:       pot,
		MinRaise:  MinBet,
		MaxRaise:  max(stack, MinBet),
		Community: community,
	}
}

// showdown returns 1 when hero wins, -1 when villain wins and 0 on a tie.
func showdown(hero, villain poker.Hole, community []poker.Card) (int, error) {
	board := poker.NewHand(community...)
	h, err := poker.Evaluate(hero.Hand() | board)
	if err != nil {
		return 0, err
	}
	v, err := poker.Evaluate(villain.Hand() | board)
	if err != nil {
		return 0, err
	}
	switch {
	case h > v:
		return 1, nil
	case h < v:
		return -1, nil
	}
	return 0, nil
}

func streetName(street int) string {
	switch street {
	case multiboard.StreetPreflop:
		return "preflop"
	case multiboard.StreetFlop:
		return "flop"
	case multiboard.StreetTurn:
		return "turn"
	case multiboard.StreetRiver:
		return "river"
	}
	return fmt.Sprintf("street %d", street)
}
