package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	chd "github.com/opencoff/go-chd"

	"github.com/lox/multiboard/poker"
)

var (
	// ErrUnknownStartingHand is returned when a lookup or load misses a class.
	ErrUnknownStartingHand = errors.New("unknown starting hand")
	// ErrMalformedTable is returned for unreadable starting hand tables.
	ErrMalformedTable = errors.New("malformed starting hand table")
)

const numStartingHands = 169

// RangeWeights maps every starting hand class to a precomputed strength
// (an expected value in [0, 1]). The table is immutable once built; slots are
// assigned by a minimal perfect hash over the packed class keys.
type RangeWeights struct {
	index  *chd.Chd
	keys   []uint64
	values []float64
}

// NewRangeWeights builds a table from a complete class map.
func NewRangeWeights(values map[poker.StartingHand]float64) (*RangeWeights, error) {
	for _, sh := range poker.AllStartingHands() {
		if _, ok := values[sh]; !ok {
			return nil, fmt.Errorf("%w: %s missing from table", ErrUnknownStartingHand, sh)
		}
	}
	if len(values) != numStartingHands {
		return nil, fmt.Errorf("%w: %d entries, want %d", ErrMalformedTable, len(values), numStartingHands)
	}

	b, err := chd.New()
	if err != nil {
		return nil, fmt.Errorf("building starting hand index: %w", err)
	}
	for sh := range values {
		if err := b.Add(sh.Key()); err != nil {
			return nil, fmt.Errorf("adding %s to starting hand index: %w", sh, err)
		}
	}
	index, err := b.Freeze(0.9)
	if err != nil {
		return nil, fmt.Errorf("building starting hand index: %w", err)
	}

	slots := make(map[uint64]poker.StartingHand, len(values))
	size := uint64(0)
	for sh := range values {
		slot := index.Find(sh.Key())
		if prev, dup := slots[slot]; dup {
			return nil, fmt.Errorf("starting hand index collision between %s and %s", prev, sh)
		}
		slots[slot] = sh
		size = max(size, slot+1)
	}

	w := &RangeWeights{
		index:  index,
		keys:   make([]uint64, size),
		values: make([]float64, size),
	}
	for slot, sh := range slots {
		w.keys[slot] = sh.Key()
		w.values[slot] = values[sh]
	}
	return w, nil
}

// Lookup returns the table value for a class.
func (w *RangeWeights) Lookup(sh poker.StartingHand) (float64, error) {
	key := sh.Key()
	slot := w.index.Find(key)
	if slot >= uint64(len(w.keys)) || w.keys[slot] != key {
		return 0, fmt.Errorf("%w: %s", ErrUnknownStartingHand, sh)
	}
	return w.values[slot], nil
}

// LookupHole returns the table value for the class of a hole.
func (w *RangeWeights) LookupHole(h poker.Hole) (float64, error) {
	return w.Lookup(poker.StartingHandOf(h))
}

// LoadRangeWeights reads a two column CSV with a "Holes,EVs" header. Hole
// keys may be "AKs"/"AKo"/"AA" or the spaced form "AK s" where a missing
// marker means offsuit. Every one of the 169 classes must be present.
func LoadRangeWeights(r io.Reader) (*RangeWeights, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = 2
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedTable, err)
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "Holes") || !strings.EqualFold(strings.TrimSpace(header[1]), "EVs") {
		return nil, fmt.Errorf("%w: header %q, want Holes,EVs", ErrMalformedTable, header)
	}

	values := make(map[poker.StartingHand]float64, numStartingHands)
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		sh, err := poker.ParseStartingHand(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		ev, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value for %s: %v", ErrMalformedTable, sh, err)
		}
		if prev, dup := values[sh]; dup && prev != ev {
			return nil, fmt.Errorf("%w: conflicting values for %s", ErrMalformedTable, sh)
		}
		values[sh] = ev
	}
	return NewRangeWeights(values)
}

// LoadRangeWeightsFile opens path and calls LoadRangeWeights.
func LoadRangeWeightsFile(path string) (*RangeWeights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening starting hand table: %w", err)
	}
	defer f.Close()
	return LoadRangeWeights(f)
}
