package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrCardNotFound is returned when removing a card the deck no longer holds.
var ErrCardNotFound = errors.New("card not in deck")

// ErrDeckExhausted is returned when a deal asks for more cards than remain.
var ErrDeckExhausted = errors.New("not enough cards in deck")

// Deck is the ordered set of cards not yet removed or dealt. It never holds
// duplicates.
type Deck struct {
	cards []Card
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck returns a full, unshuffled 52-card deck using rng for shuffles.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, 52), rng: rng}
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewDeckWithout returns a full deck minus the given cards. Removing a card
// twice (for instance a duplicate in dead) fails with ErrCardNotFound.
func NewDeckWithout(rng *rand.Rand, dead ...Card) (*Deck, error) {
	d := NewDeck(rng)
	for _, c := range dead {
		if err := d.Remove(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Remove takes card out of the deck.
func (d *Deck) Remove(card Card) error {
	for i, c := range d.cards {
		if c == card {
			d.cards = append(d.cards[:i], d.cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCardNotFound, card)
}

// Contains reports whether card is still in the deck.
func (d *Deck) Contains(card Card) bool {
	for _, c := range d.cards {
		if c == card {
			return true
		}
	}
	return false
}

// Shuffle shuffles the remaining cards using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes n random cards from the deck. Only the n drawn positions are
// shuffled, so dealing a handful of cards costs O(n).
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, len(d.cards))
	}
	for i := range n {
		j := i + d.rng.IntN(len(d.cards)-i)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	dealt := make([]Card, n)
	copy(dealt, d.cards[:n])
	d.cards = d.cards[n:]
	return dealt, nil
}

// Cards returns a copy of the cards remaining, in deck order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}
