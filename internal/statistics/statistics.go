package statistics

import (
	"fmt"
	"math"
	"sort"
)

// NumBoards matches the boards played per round.
const NumBoards = 3

// BoardResult is the outcome of one board in a round.
type BoardResult struct {
	Delta    int  // chips won (negative when lost)
	Pot      int  // final pot in chips
	Showdown bool // reached the river with both players in
	Folded   bool // we folded
}

// RoundResult represents the outcome of a single round across all boards
type RoundResult struct {
	Seed   int64 // RNG seed for this round (for replay)
	Boards [NumBoards]BoardResult
}

// Delta is the round's net chips.
func (r RoundResult) Delta() int {
	total := 0
	for _, b := range r.Boards {
		total += b.Delta
	}
	return total
}

// BoardStats tracks results for one board position. Board 3 holds the
// strongest hole unless the planner swapped.
type BoardStats struct {
	Rounds       int
	Showdowns    int
	ShowdownWins int
	Folds        int
	SumChips     float64
}

// Mean returns the average chips won on the board per round.
func (b BoardStats) Mean() float64 {
	if b.Rounds == 0 {
		return 0
	}
	return b.SumChips / float64(b.Rounds)
}

// Statistics tracks chip results over many rounds
type Statistics struct {
	Rounds    int
	SumChips  float64
	SumChips2 float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation

	Boards [NumBoards]BoardStats

	MaxPot   int
	AllChips float64 // Total chips from board results, for the ledger check
}

// Mean returns the arithmetic mean of all results in chips per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumChips / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumChips2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	delta := float64(result.Delta())
	s.Rounds++
	s.SumChips += delta
	s.SumChips2 += delta * delta
	s.Values = append(s.Values, delta)

	for i, b := range result.Boards {
		bs := &s.Boards[i]
		bs.Rounds++
		bs.SumChips += float64(b.Delta)
		if b.Folded {
			bs.Folds++
		}
		if b.Showdown {
			bs.Showdowns++
			if b.Delta > 0 {
				bs.ShowdownWins++
			}
		}
		s.AllChips += float64(b.Delta)
		s.MaxPot = max(s.MaxPot, b.Pot)
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that per-board results add up to the round totals
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllChips-s.SumChips) <= 1e-6
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: boards=%.2f, rounds=%.2f", s.AllChips, s.SumChips)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)", len(s.Values), s.Rounds)
	}
	for i, b := range s.Boards {
		if b.Rounds != s.Rounds {
			return fmt.Errorf("board %d rounds (%d) does not match rounds count (%d)", i+1, b.Rounds, s.Rounds)
		}
		if b.ShowdownWins > b.Showdowns {
			return fmt.Errorf("board %d showdown wins (%d) exceed showdowns (%d)", i+1, b.ShowdownWins, b.Showdowns)
		}
		if b.Showdowns+b.Folds > b.Rounds {
			return fmt.Errorf("board %d showdowns plus folds exceed rounds", i+1)
		}
	}
	return nil
}
