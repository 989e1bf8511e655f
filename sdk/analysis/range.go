package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/multiboard/poker"
)

// Range is a set of starting hand classes written in the usual notation:
// "AA,KK", "AKs,AKo", "TT+", "A5s-A2s", "KTs+", "22-66". The estimator uses
// it to restrict which opponent holes are sampled.
type Range struct {
	classes map[poker.StartingHand]struct{}
}

// NewRange creates a new empty range.
func NewRange() *Range {
	return &Range{classes: make(map[poker.StartingHand]struct{})}
}

// ParseRange builds a range from comma separated notation.
func ParseRange(notation string) (*Range, error) {
	r := NewRange()
	for part := range strings.SplitSeq(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addPart(part); err != nil {
			return nil, fmt.Errorf("invalid range part %q: %w", part, err)
		}
	}
	return r, nil
}

func (r *Range) addPart(part string) error {
	switch {
	case strings.HasSuffix(part, "+"):
		return r.addPlus(strings.TrimSuffix(part, "+"))
	case strings.Contains(part, "-"):
		return r.addDash(part)
	}
	return r.addSingle(part)
}

// addSingle adds one class, or both the suited and offsuit class when an
// unpaired hand has no suffix.
func (r *Range) addSingle(notation string) error {
	sh, err := poker.ParseStartingHand(notation)
	if err != nil {
		return err
	}
	r.add(sh, suitedness(notation))
	return nil
}

// addPlus handles "TT+" (pairs at or above TT) and "KTs+" (kicker climbs
// to one below the high card).
func (r *Range) addPlus(base string) error {
	sh, err := poker.ParseStartingHand(base)
	if err != nil {
		return err
	}
	if sh.IsPair() {
		for rank := sh.High; rank <= poker.Ace; rank++ {
			r.add(poker.StartingHand{High: rank, Low: rank}, suitAny)
		}
		return nil
	}
	mode := suitedness(base)
	for low := sh.Low; low < sh.High; low++ {
		r.add(poker.StartingHand{High: sh.High, Low: low}, mode)
	}
	return nil
}

// addDash handles "22-66" and "A5s-A2s".
func (r *Range) addDash(notation string) error {
	ends := strings.Split(notation, "-")
	if len(ends) != 2 {
		return fmt.Errorf("invalid dash range format")
	}
	start, err := poker.ParseStartingHand(ends[0])
	if err != nil {
		return err
	}
	end, err := poker.ParseStartingHand(ends[1])
	if err != nil {
		return err
	}

	switch {
	case start.IsPair() && end.IsPair():
		lo, hi := min(start.High, end.High), max(start.High, end.High)
		for rank := lo; rank <= hi; rank++ {
			r.add(poker.StartingHand{High: rank, Low: rank}, suitAny)
		}
	case start.High == end.High:
		mode := suitedness(strings.TrimSpace(ends[0]))
		lo, hi := min(start.Low, end.Low), max(start.Low, end.Low)
		for low := lo; low <= hi; low++ {
			r.add(poker.StartingHand{High: start.High, Low: low}, mode)
		}
	default:
		return fmt.Errorf("unsupported range format: %s", notation)
	}
	return nil
}

type suitMode uint8

const (
	suitAny suitMode = iota
	suitOnly
	offsuitOnly
)

func suitedness(notation string) suitMode {
	switch {
	case strings.HasSuffix(notation, "s"):
		return suitOnly
	case strings.HasSuffix(notation, "o"):
		return offsuitOnly
	}
	return suitAny
}

func (r *Range) add(sh poker.StartingHand, mode suitMode) {
	if sh.IsPair() {
		r.classes[poker.StartingHand{High: sh.High, Low: sh.Low}] = struct{}{}
		return
	}
	if mode != offsuitOnly {
		r.classes[poker.StartingHand{High: sh.High, Low: sh.Low, Suited: true}] = struct{}{}
	}
	if mode != suitOnly {
		r.classes[poker.StartingHand{High: sh.High, Low: sh.Low}] = struct{}{}
	}
}

// Contains reports whether the class is in the range. A nil range holds
// every class.
func (r *Range) Contains(sh poker.StartingHand) bool {
	if r == nil {
		return true
	}
	_, ok := r.classes[sh]
	return ok
}

// ContainsCards reports whether two hole cards fall in the range.
func (r *Range) ContainsCards(c1, c2 poker.Card) bool {
	return r.Contains(poker.StartingHandFromCards(c1, c2))
}

// Size returns the number of classes in the range.
func (r *Range) Size() int {
	return len(r.classes)
}

// Combos returns the number of concrete two card holes the range covers:
// 6 per pair, 4 per suited class, 12 per offsuit class.
func (r *Range) Combos() int {
	n := 0
	for sh := range r.classes {
		switch {
		case sh.IsPair():
			n += 6
		case sh.Suited:
			n += 4
		default:
			n += 12
		}
	}
	return n
}

// Classes lists the range sorted by packed key, strongest high card last.
func (r *Range) Classes() []poker.StartingHand {
	out := make([]poker.StartingHand, 0, len(r.classes))
	for sh := range r.classes {
		out = append(out, sh)
	}
	slices.SortFunc(out, func(a, b poker.StartingHand) int {
		return int(a.Key()) - int(b.Key())
	})
	return out
}
