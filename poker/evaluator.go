package poker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	ph "github.com/paulhankin/poker"
)

// Strength is the value of a 5-7 card hand. Higher values are stronger and
// equal values tie.
type Strength int16

// ErrInvalidHandSize is returned when evaluating fewer than 5 or more than 7 cards.
var ErrInvalidHandSize = errors.New("hand must hold 5 to 7 cards")

// libCards maps our bit positions onto the evaluator's card encoding.
var libCards [52]ph.Card

func init() {
	suits := [4]ph.Suit{ph.Club, ph.Diamond, ph.Heart, ph.Spade}
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			// library ranks run 1..13 with the ace low
			r := ph.Rank(rank + 2)
			if rank == Ace {
				r = 1
			}
			c, err := ph.MakeCard(suits[suit], r)
			if err != nil {
				panic(fmt.Sprintf("poker: building card table: %v", err))
			}
			libCards[suit*13+rank] = c
		}
	}
}

func toLib(c Card) ph.Card {
	return libCards[c.bitPosition()]
}

// Evaluate scores a hand of 5, 6 or 7 cards. Six card hands score as their
// best five card subset.
func Evaluate(h Hand) (Strength, error) {
	n := h.CountCards()
	if n < 5 || n > 7 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidHandSize, n)
	}

	var buf [7]ph.Card
	i := 0
	for v := uint64(h); v != 0; v &= v - 1 {
		buf[i] = toLib(Card(v & -v))
		i++
	}

	switch n {
	case 7:
		return Strength(ph.Eval7(&buf)), nil
	case 5:
		var five [5]ph.Card
		copy(five[:], buf[:5])
		return Strength(ph.Eval5(&five)), nil
	}

	best := Strength(-1 << 15)
	var five [5]ph.Card
	for skip := range 6 {
		k := 0
		for j := range 6 {
			if j != skip {
				five[k] = buf[j]
				k++
			}
		}
		if s := Strength(ph.Eval5(&five)); s > best {
			best = s
		}
	}
	return best, nil
}

// Describe names the hand's category, e.g. "pair of aces".
func Describe(h Hand) (string, error) {
	cards := h.Cards()
	lib := make([]ph.Card, len(cards))
	for i, c := range cards {
		lib[i] = toLib(c)
	}
	return ph.Describe(lib)
}

// EvalCache memoizes Evaluate by exact card set. It is safe for concurrent use.
type EvalCache struct {
	mu     sync.RWMutex
	scores map[Hand]Strength
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewEvalCache returns an empty cache.
func NewEvalCache() *EvalCache {
	return &EvalCache{scores: make(map[Hand]Strength)}
}

// Evaluate returns the cached strength for h, computing it on a miss.
// A nil cache evaluates directly.
func (c *EvalCache) Evaluate(h Hand) (Strength, error) {
	if c == nil {
		return Evaluate(h)
	}
	c.mu.RLock()
	s, ok := c.scores[h]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return s, nil
	}

	s, err := Evaluate(h)
	if err != nil {
		return 0, err
	}
	c.misses.Add(1)
	c.mu.Lock()
	c.scores[h] = s
	c.mu.Unlock()
	return s, nil
}

// Stats returns hit and miss counts since the last Clear.
func (c *EvalCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of memoized hands.
func (c *EvalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

// Clear drops every memoized entry and resets the counters.
func (c *EvalCache) Clear() {
	c.mu.Lock()
	clear(c.scores)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}
