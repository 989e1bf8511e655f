package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/multiboard/internal/randutil"
)

func TestDeckDeal(t *testing.T) {
	t.Parallel()
	deck := NewDeck(randutil.New(42))
	require.Equal(t, 52, deck.CardsRemaining())

	first, err := deck.Deal(2)
	require.NoError(t, err)
	second, err := deck.Deal(3)
	require.NoError(t, err)
	assert.Equal(t, 47, deck.CardsRemaining())

	dealt := NewHand(append(first, second...)...)
	assert.Equal(t, 5, dealt.CountCards(), "dealt cards must be distinct")
	for _, c := range deck.Cards() {
		assert.False(t, dealt.HasCard(c), "%s dealt but still in deck", c)
	}

	_, err = deck.Deal(48)
	require.ErrorIs(t, err, ErrDeckExhausted)
}

func TestDeckRemoveTwiceFails(t *testing.T) {
	t.Parallel()
	deck := NewDeck(randutil.New(1))
	as := NewCard(Ace, Spades)

	require.NoError(t, deck.Remove(as))
	assert.False(t, deck.Contains(as))
	assert.Equal(t, 51, deck.CardsRemaining())

	err := deck.Remove(as)
	require.ErrorIs(t, err, ErrCardNotFound)
	assert.Equal(t, 51, deck.CardsRemaining())
}

func TestNewDeckWithout(t *testing.T) {
	t.Parallel()
	dead := MustParseCards("As Kd 7h")
	deck, err := NewDeckWithout(randutil.New(3), dead...)
	require.NoError(t, err)
	assert.Equal(t, 49, deck.CardsRemaining())

	_, err = NewDeckWithout(randutil.New(3), MustParseCards("As As")...)
	require.ErrorIs(t, err, ErrCardNotFound)
}

func TestDeckShuffleDeterministic(t *testing.T) {
	t.Parallel()
	a := NewDeck(randutil.New(7))
	b := NewDeck(randutil.New(7))
	a.Shuffle()
	b.Shuffle()
	assert.Equal(t, a.Cards(), b.Cards())
	assert.Len(t, a.Cards(), 52)
}
