package simulator

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/allocation"
	"github.com/lox/multiboard/sdk/bots/multiboard"
)

// scriptedPlayer groups the deal without estimating and then checks or
// calls everything, or checks regardless when stubborn is set.
type scriptedPlayer struct {
	alloc    allocation.Allocation
	stubborn bool
	deltas   []int
}

func (p *scriptedPlayer) HandleNewRound(_ context.Context, cards [6]poker.Card, _ time.Duration) (allocation.Allocation, error) {
	holes, err := allocation.Group(cards, 5)
	if err != nil {
		return allocation.Allocation{}, err
	}
	p.alloc = allocation.Allocation{Holes: holes}
	return p.alloc, nil
}

func (p *scriptedPlayer) GetActions(_ context.Context, state multiboard.RoundState) ([multiboard.NumBoards]multiboard.Action, error) {
	var out [multiboard.NumBoards]multiboard.Action
	for i, b := range state.Boards {
		switch {
		case b.Legal.Has(multiboard.ActionAssign):
			out[i] = multiboard.Assign(p.alloc.Holes[i])
		case b.Legal.Has(multiboard.ActionCheck) || p.stubborn:
			out[i] = multiboard.Check()
		default:
			out[i] = multiboard.Call()
		}
	}
	return out, nil
}

func (p *scriptedPlayer) HandleRoundOver(_ time.Duration, delta int) {
	p.deltas = append(p.deltas, delta)
}

func TestPlayRoundCallingStation(t *testing.T) {
	p := &scriptedPlayer{}
	r, err := PlayRound(context.Background(), p, CallingStation{}, randutil.New(1), nil, time.Minute)
	require.NoError(t, err)

	assert.Len(t, r.Steps, 5)
	assert.Equal(t, "assign", r.Steps[0].Label)
	assert.Equal(t, "river", r.Steps[4].Label)
	assert.Len(t, r.Steps[4].State.Boards[0].Community, 5)
	for _, step := range r.Steps {
		assert.Equal(t, time.Minute, step.State.GameClock, step.Label)
	}

	used := poker.NewHand(r.Dealt[:]...)
	for i, b := range r.Result.Boards {
		assert.True(t, b.Showdown)
		assert.False(t, b.Folded)
		assert.Equal(t, 2*Blind, b.Pot)
		assert.LessOrEqual(t, max(b.Delta, -b.Delta), Blind)

		board := poker.NewHand(r.Community[i]...)
		assert.Equal(t, 7, (board | r.Opponents[i].Hand()).CountCards())
		assert.Zero(t, (board|r.Opponents[i].Hand())&used, "board %d reuses a dealt card", i+1)
	}
	assert.Equal(t, []int{r.Result.Delta()}, p.deltas)
}

func TestPlayRoundAggressiveOpponent(t *testing.T) {
	p := &scriptedPlayer{}
	r, err := PlayRound(context.Background(), p, Aggressive{Frequency: 1}, randutil.New(2), nil, time.Minute)
	require.NoError(t, err)

	// half pot every street, called: 2 -> 6 -> 12 -> 24 -> 48
	for _, b := range r.Result.Boards {
		assert.Equal(t, 48, b.Pot)
		assert.Contains(t, []int{-24, 0, 24}, b.Delta)
	}
	river := r.Steps[4].State
	assert.Equal(t, 12, river.Boards[0].OppPip)
	assert.Equal(t, StartingStack-3*Blind-3*(2+3+6), river.Stack)
}

func TestPlayRoundDeterministic(t *testing.T) {
	a, err := PlayRound(context.Background(), &scriptedPlayer{}, Aggressive{Frequency: 0.5}, randutil.New(42), nil, time.Minute)
	require.NoError(t, err)
	b, err := PlayRound(context.Background(), &scriptedPlayer{}, Aggressive{Frequency: 0.5}, randutil.New(42), nil, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, a.Dealt, b.Dealt)
	assert.Equal(t, a.Result, b.Result)
}

func TestPlayRoundRejectsIllegalActions(t *testing.T) {
	p := &scriptedPlayer{stubborn: true}
	_, err := PlayRound(context.Background(), p, Aggressive{Frequency: 1}, randutil.New(3), nil, time.Minute)
	require.ErrorIs(t, err, ErrIllegalAction)
	assert.Empty(t, p.deltas)
}

func TestPlayRoundGivenCards(t *testing.T) {
	cards := poker.MustParseCards("As Ad Kh Kd 2c 7d")
	r, err := PlayRound(context.Background(), &scriptedPlayer{}, CallingStation{}, randutil.New(4), cards, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, [6]poker.Card(cards), r.Dealt)

	_, err = PlayRound(context.Background(), &scriptedPlayer{}, CallingStation{}, randutil.New(4), cards[:5], time.Minute)
	require.Error(t, err)
}

func TestNewOpponent(t *testing.T) {
	for _, name := range []string{"call", "aggressive"} {
		opp, err := NewOpponent(name)
		require.NoError(t, err)
		assert.Equal(t, name, opp.Name())
	}
	_, err := NewOpponent("fold")
	require.Error(t, err)
}

func TestSimulatorRunsBot(t *testing.T) {
	policy := multiboard.DefaultPolicy()
	policy.Iterations = 40
	policy.Allocation.Iterations = 40
	bot, err := multiboard.New(multiboard.Options{Seed: 11, Policy: policy, Clock: quartz.NewMock(t)})
	require.NoError(t, err)

	sim := New(Config{
		Rounds:   4,
		Seed:     100,
		Opponent: Aggressive{Frequency: 0.7},
		Timeout:  30 * time.Second,
		Logger:   log.New(io.Discard),
	})
	stats, err := sim.Run(context.Background(), bot)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Rounds)
	assert.True(t, stats.IsLedgerBalanced())
	for _, b := range stats.Boards {
		assert.Equal(t, 4, b.Rounds)
	}
}

func TestSimulatorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bot, err := multiboard.New(multiboard.Options{Seed: 1, Clock: quartz.NewMock(t)})
	require.NoError(t, err)
	_, err = New(Config{Rounds: 2}).Run(ctx, bot)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
