package poker

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	assert.Equal(t, Ace, aceSpades.Rank())
	assert.Equal(t, Spades, aceSpades.Suit())
	assert.Equal(t, "As", aceSpades.String())
	assert.Equal(t, "2c", NewCard(Two, Clubs).String())
	assert.Equal(t, "??", Card(0).String())
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{"ace of spades", "As", NewCard(Ace, Spades), false},
		{"two of hearts", "2h", NewCard(Two, Hearts), false},
		{"lowercase", "kd", NewCard(King, Diamonds), false},
		{"ten with T", "Tc", NewCard(Ten, Clubs), false},
		{"ten with 10", "10d", NewCard(Ten, Diamonds), false},
		{"invalid rank", "Xs", 0, true},
		{"invalid suit", "Ax", 0, true},
		{"empty", "", 0, true},
		{"too short", "A", 0, true},
		{"too long", "Asd", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, card)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"As Kd 2c", "AsKd2c", "As,Kd, 2c"} {
		cards, err := ParseCards(input)
		require.NoError(t, err, input)
		assert.Equal(t, []Card{NewCard(Ace, Spades), NewCard(King, Diamonds), NewCard(Two, Clubs)}, cards, input)
	}

	_, err := ParseCards("As K")
	require.Error(t, err)
}

func TestAll52Cards(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			card := NewCard(rank, suit)
			require.True(t, card.Valid())
			str := card.String()
			require.False(t, seen[str], "duplicate card %s", str)
			seen[str] = true

			parsed, err := ParseCard(str)
			require.NoError(t, err)
			require.Equal(t, card, parsed)
		}
	}
	assert.Len(t, seen, 52)
}

func TestHandOperations(t *testing.T) {
	t.Parallel()
	as, kh, qd := NewCard(Ace, Spades), NewCard(King, Hearts), NewCard(Queen, Diamonds)

	hand := NewHand(as, kh)
	assert.True(t, hand.HasCard(as))
	assert.True(t, hand.HasCard(kh))
	assert.False(t, hand.HasCard(qd))
	assert.Equal(t, 2, hand.CountCards())

	hand.AddCard(qd)
	assert.Equal(t, 3, hand.CountCards())
	assert.Equal(t, NewHand(qd), hand.Without(NewHand(as, kh)))
	assert.Equal(t, hand, NewHand(as).Union(NewHand(kh, qd)))

	// set semantics: insertion order does not matter
	assert.Equal(t, NewHand(qd, kh, as), hand)
	assert.ElementsMatch(t, []Card{as, kh, qd}, hand.Cards())
}

func TestHandBitset(t *testing.T) {
	t.Parallel()
	as, ah, tc := NewCard(Ace, Spades), NewCard(Ace, Hearts), NewCard(Two, Clubs)
	assert.Equal(t, 1, bits.OnesCount64(uint64(as)))
	assert.Zero(t, as&ah)
	assert.Zero(t, as&tc)
	assert.Equal(t, 3, NewHand(as, ah, tc).CountCards())
}

func TestGetSuitMask(t *testing.T) {
	t.Parallel()
	var hand Hand
	for rank := range uint8(13) {
		hand.AddCard(NewCard(rank, Spades))
	}
	assert.Equal(t, uint16(0x1FFF), hand.GetSuitMask(Spades))
	assert.Zero(t, hand.GetSuitMask(Hearts))
}

func TestHoleHand(t *testing.T) {
	t.Parallel()
	h := Hole{NewCard(Ace, Spades), NewCard(King, Spades)}
	assert.Equal(t, "AsKs", h.String())
	assert.Equal(t, 2, h.Hand().CountCards())
}
