package multiboard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/allocation"
)

// Ledger is the running total of chips committed across boards within one
// decision call.
type Ledger struct {
	stack int
	spent int
}

// NewLedger starts a ledger against the stack available at call start.
func NewLedger(stack int) Ledger { return Ledger{stack: stack} }

// Available is what later boards may still spend.
func (l *Ledger) Available() int { return l.stack - l.spent }

// CanAfford reports whether cost fits in what is left.
func (l *Ledger) CanAfford(cost int) bool { return cost <= l.Available() }

// Commit records a spend. Callers check CanAfford first; overspending is a bug.
func (l *Ledger) Commit(cost int) error {
	if cost < 0 {
		return fmt.Errorf("negative commit %d", cost)
	}
	if !l.CanAfford(cost) {
		return fmt.Errorf("commit of %d exceeds available %d", cost, l.Available())
	}
	l.spent += cost
	return nil
}

// Spent is the total committed so far.
func (l *Ledger) Spent() int { return l.spent }

type streetKey struct {
	board  int
	street int
}

// RoundSession is the state that lives for one round: the allocation,
// equities already estimated per board and street, and the evaluation memo.
// Reset clears it when a new round starts.
type RoundSession struct {
	mu         sync.Mutex
	id         uuid.UUID
	allocation allocation.Allocation
	equity     map[streetKey]float64
	evals      *poker.EvalCache
	street     int
	decisions  int
}

// NewRoundSession returns an empty session.
func NewRoundSession() *RoundSession {
	s := &RoundSession{evals: poker.NewEvalCache()}
	s.Reset(allocation.Allocation{})
	return s
}

// Reset starts a new round with the given allocation.
func (s *RoundSession) Reset(a allocation.Allocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.New()
	s.allocation = a
	s.equity = make(map[streetKey]float64)
	s.evals.Clear()
	s.street = StreetPreflop
	s.decisions = 0
}

// ID identifies the round in logs.
func (s *RoundSession) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Allocation returns the holes assigned this round.
func (s *RoundSession) Allocation() allocation.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocation
}

// Equity returns the cached equity for a board on a street.
func (s *RoundSession) Equity(board, street int) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.equity[streetKey{board, street}]
	return v, ok
}

// StoreEquity caches an estimate. It is never overwritten within a street.
func (s *RoundSession) StoreEquity(board, street int, equity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := streetKey{board, street}
	if _, ok := s.equity[k]; !ok {
		s.equity[k] = equity
	}
}

// EvalCache is the round's hand evaluation memo.
func (s *RoundSession) EvalCache() *poker.EvalCache { return s.evals }

// observe notes the street of a decision call and reports whether it moved.
func (s *RoundSession) observe(street int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions++
	if street != s.street {
		s.street = street
		return true
	}
	return false
}

// Decisions counts decision calls this round.
func (s *RoundSession) Decisions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decisions
}
