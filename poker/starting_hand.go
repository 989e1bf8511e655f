package poker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStartingHand is returned for text that names no starting hand class.
var ErrInvalidStartingHand = errors.New("invalid starting hand")

// StartingHand is the suit-independent class of a two card hole: the two
// ranks (High >= Low) and whether the cards share a suit. There are 169
// classes. Pairs are never suited.
type StartingHand struct {
	High   uint8
	Low    uint8
	Suited bool
}

// StartingHandOf returns the class of a hole.
func StartingHandOf(h Hole) StartingHand {
	return StartingHandFromCards(h[0], h[1])
}

// StartingHandFromCards returns the class of two distinct cards.
func StartingHandFromCards(a, b Card) StartingHand {
	hi, lo := a.Rank(), b.Rank()
	if lo > hi {
		hi, lo = lo, hi
	}
	return StartingHand{High: hi, Low: lo, Suited: hi != lo && a.Suit() == b.Suit()}
}

// IsPair reports whether both cards share a rank.
func (s StartingHand) IsPair() bool { return s.High == s.Low }

// Key packs the class into a small integer, unique per class.
func (s StartingHand) Key() uint64 {
	k := uint64(s.High)<<8 | uint64(s.Low)<<1
	if s.Suited {
		k |= 1
	}
	return k
}

// String renders "AA", "AKs" or "AKo".
func (s StartingHand) String() string {
	if s.High > Ace || s.Low > Ace {
		return "??"
	}
	out := string(rankChars[s.High]) + string(rankChars[s.Low])
	switch {
	case s.IsPair():
		return out
	case s.Suited:
		return out + "s"
	default:
		return out + "o"
	}
}

// ParseStartingHand accepts "AA", "AKs", "AKo", and the spaced forms "AK s"
// and "AK o". Two unpaired ranks with no suffix mean offsuit.
func ParseStartingHand(text string) (StartingHand, error) {
	t := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	if len(t) < 2 || len(t) > 3 {
		return StartingHand{}, fmt.Errorf("%w: %q", ErrInvalidStartingHand, text)
	}
	a := strings.IndexByte(rankChars, upper(t[0]))
	b := strings.IndexByte(rankChars, upper(t[1]))
	if a < 0 || b < 0 {
		return StartingHand{}, fmt.Errorf("%w: %q", ErrInvalidStartingHand, text)
	}
	hi, lo := uint8(a), uint8(b)
	if lo > hi {
		hi, lo = lo, hi
	}
	sh := StartingHand{High: hi, Low: lo}

	if len(t) == 3 {
		switch lower(t[2]) {
		case 's':
			sh.Suited = true
		case 'o':
		default:
			return StartingHand{}, fmt.Errorf("%w: %q", ErrInvalidStartingHand, text)
		}
		if sh.IsPair() {
			return StartingHand{}, fmt.Errorf("%w: pair cannot carry a suit marker: %q", ErrInvalidStartingHand, text)
		}
	}
	return sh, nil
}

// AllStartingHands lists the 169 classes, pairs first from AA down, then
// suited and offsuit hands by descending high card.
func AllStartingHands() []StartingHand {
	out := make([]StartingHand, 0, 169)
	for r := int(Ace); r >= 0; r-- {
		out = append(out, StartingHand{High: uint8(r), Low: uint8(r)})
	}
	for hi := int(Ace); hi >= 1; hi-- {
		for lo := hi - 1; lo >= 0; lo-- {
			out = append(out,
				StartingHand{High: uint8(hi), Low: uint8(lo), Suited: true},
				StartingHand{High: uint8(hi), Low: uint8(lo)},
			)
		}
	}
	return out
}

// Hole returns one concrete hole of the class: the high card is a club, the
// low card a club when suited and a diamond otherwise.
func (s StartingHand) Hole() Hole {
	low := Diamonds
	if s.Suited {
		low = Clubs
	}
	return Hole{NewCard(s.High, Clubs), NewCard(s.Low, low)}
}
