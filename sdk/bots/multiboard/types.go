// Package multiboard decides one action per board for a player holding three
// holes on three simultaneous boards funded from a single chip stack.
package multiboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/allocation"
)

// NumBoards is the number of boards played each round.
const NumBoards = allocation.NumBoards

// Betting streets, numbered by the community cards showing.
const (
	StreetPreflop = 0
	StreetFlop    = 3
	StreetTurn    = 4
	StreetRiver   = 5
)

// ActionKind enumerates the actions the engine accepts on a board.
type ActionKind uint8

const (
	ActionAssign ActionKind = iota
	ActionFold
	ActionCheck
	ActionCall
	ActionRaise
)

func (k ActionKind) String() string {
	switch k {
	case ActionAssign:
		return "assign"
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionRaise:
		return "raise"
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// Action is the decision for one board. Amount is the raise target for
// ActionRaise; Hole is set for ActionAssign.
type Action struct {
	Kind   ActionKind
	Amount int
	Hole   poker.Hole
}

func Assign(h poker.Hole) Action { return Action{Kind: ActionAssign, Hole: h} }
func Fold() Action               { return Action{Kind: ActionFold} }
func Check() Action              { return Action{Kind: ActionCheck} }
func Call() Action               { return Action{Kind: ActionCall} }
func Raise(to int) Action        { return Action{Kind: ActionRaise, Amount: to} }

func (a Action) String() string {
	switch a.Kind {
	case ActionAssign:
		return "assign " + a.Hole.String()
	case ActionRaise:
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Kind.String()
}

// ActionSet is a set of legal action kinds.
type ActionSet uint8

// NewActionSet builds a set from kinds.
func NewActionSet(kinds ...ActionKind) ActionSet {
	var s ActionSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set.
func (s ActionSet) Has(k ActionKind) bool { return s&(1<<k) != 0 }

func (s ActionSet) String() string {
	var parts []string
	for k := ActionAssign; k <= ActionRaise; k++ {
		if s.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// BoardState is the engine's view of one board for the current decision.
type BoardState struct {
	Legal     ActionSet
	MyPip     int // chips we have put in during this betting street
	OppPip    int
	Pot       int // chips in the pot from earlier streets
	MinRaise  int
	MaxRaise  int
	Community []poker.Card
	Terminal  bool // the board's hand is over
	Settled   bool // betting on this board is closed until the next street
}

// ContinueCost is what it costs to stay in the hand.
func (b BoardState) ContinueCost() int { return b.OppPip - b.MyPip }

// PotTotal is every chip committed to the board so far.
func (b BoardState) PotTotal() int { return b.MyPip + b.OppPip + b.Pot }

// RoundState is everything the engine reports for one get-actions call.
type RoundState struct {
	Street int
	Stack  int // our chips not yet committed on any board
	Boards [NumBoards]BoardState

	// GameClock is the engine's remaining time for the game, 0 if not
	// reported with this request.
	GameClock time.Duration
}

// Phase is where a board sits in its per-round state machine.
type Phase uint8

const (
	PhaseAssignPending Phase = iota
	PhaseActiveDecision
	PhaseSettled
	PhaseTerminal
)

func (p Phase) String() string {
	return [...]string{"assign-pending", "active", "settled", "terminal"}[p]
}

// PhaseOf classifies a board. Assignment takes precedence, then terminal,
// then settled.
func PhaseOf(b BoardState) Phase {
	switch {
	case b.Legal.Has(ActionAssign):
		return PhaseAssignPending
	case b.Terminal:
		return PhaseTerminal
	case b.Settled:
		return PhaseSettled
	}
	return PhaseActiveDecision
}
