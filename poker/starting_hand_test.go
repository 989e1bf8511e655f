package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartingHandOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cards string
		want  string
	}{
		{"As Ad", "AA"},
		{"Ks As", "AKs"},
		{"2c 7d", "72o"},
		{"Th Jh", "JTs"},
	}
	for _, tc := range tests {
		c := MustParseCards(tc.cards)
		assert.Equal(t, tc.want, StartingHandOf(Hole{c[0], c[1]}).String(), tc.cards)
	}
}

func TestParseStartingHand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    StartingHand
		wantErr bool
	}{
		{"AA", StartingHand{High: Ace, Low: Ace}, false},
		{"AKs", StartingHand{High: Ace, Low: King, Suited: true}, false},
		{"AKo", StartingHand{High: Ace, Low: King}, false},
		{"AK s", StartingHand{High: Ace, Low: King, Suited: true}, false},
		{"KA", StartingHand{High: Ace, Low: King}, false},
		{"72", StartingHand{High: Seven, Low: Two}, false},
		{"AAs", StartingHand{}, true},
		{"AKx", StartingHand{}, true},
		{"A", StartingHand{}, true},
		{"ZZ", StartingHand{}, true},
	}
	for _, tc := range tests {
		got, err := ParseStartingHand(tc.input)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidStartingHand, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestAllStartingHands(t *testing.T) {
	t.Parallel()
	all := AllStartingHands()
	require.Len(t, all, 169)

	keys := make(map[uint64]bool, len(all))
	for _, sh := range all {
		require.False(t, keys[sh.Key()], "duplicate key for %s", sh)
		keys[sh.Key()] = true

		parsed, err := ParseStartingHand(sh.String())
		require.NoError(t, err)
		assert.Equal(t, sh, parsed)
	}
}

func TestStartingHandHole(t *testing.T) {
	t.Parallel()
	for _, sh := range AllStartingHands() {
		h := sh.Hole()
		require.True(t, h[0].Valid() && h[1].Valid())
		require.Equal(t, 2, h.Hand().CountCards(), "%s", sh)
		assert.Equal(t, sh, StartingHandOf(h))
	}
}
