package simulator

import (
	"fmt"
	rand "math/rand/v2"
)

// Opponent scripts the other player. It may open each street with a bet
// and always calls our raises.
type Opponent interface {
	Name() string
	// Bet returns the chips the opponent bets before we act, 0 to check.
	Bet(rng *rand.Rand, street, pot int) int
}

// CallingStation never bets.
type CallingStation struct{}

func (CallingStation) Name() string                 { return "call" }
func (CallingStation) Bet(*rand.Rand, int, int) int { return 0 }

// Aggressive bets half the pot with the given frequency.
type Aggressive struct {
	Frequency float64
}

func (Aggressive) Name() string { return "aggressive" }

func (a Aggressive) Bet(rng *rand.Rand, _ int, pot int) int {
	if rng.Float64() >= a.Frequency {
		return 0
	}
	return max(MinBet, pot/2)
}

// NewOpponent returns an opponent by name.
func NewOpponent(name string) (Opponent, error) {
	switch name {
	case "call":
		return CallingStation{}, nil
	case "aggressive":
		return Aggressive{Frequency: 0.7}, nil
	default:
		return nil, fmt.Errorf("unknown opponent type %q (available: call, aggressive)", name)
	}
}
