package analysis

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"
	"strconv"

	"github.com/lox/multiboard/poker"
)

// GenerateRangeTable estimates the preflop equity of every starting hand
// class against a uniformly random opponent. The result loads into
// NewRangeWeights.
func GenerateRangeTable(ctx context.Context, rng *rand.Rand, est *Estimator, iterations int) (map[poker.StartingHand]float64, error) {
	values := make(map[poker.StartingHand]float64, numStartingHands)
	for _, sh := range poker.AllStartingHands() {
		res, err := est.Estimate(ctx, rng, Request{
			Hole:       sh.Hole(),
			Iterations: iterations,
			Mode:       ModeUniform,
		})
		if err != nil {
			return nil, fmt.Errorf("estimating %s: %w", sh, err)
		}
		values[sh] = res.Equity()
	}
	return values, nil
}

// WriteRangeTable writes a Holes,EVs table, strongest class first.
func WriteRangeTable(w io.Writer, values map[poker.StartingHand]float64) error {
	classes := make([]poker.StartingHand, 0, len(values))
	for sh := range values {
		classes = append(classes, sh)
	}
	slices.SortFunc(classes, func(a, b poker.StartingHand) int {
		if c := cmp.Compare(values[b], values[a]); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Holes", "EVs"}); err != nil {
		return err
	}
	for _, sh := range classes {
		if err := cw.Write([]string{sh.String(), strconv.FormatFloat(values[sh], 'f', 6, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
