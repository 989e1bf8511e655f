// Package analysis estimates the showdown equity of a two card hole against a
// single opponent with Monte Carlo sampling, either uniformly over unseen
// cards or weighted by a starting hand strength table.
package analysis

import (
	"math"
)

// EquityResult is the tally of one estimate.
type EquityResult struct {
	Wins    uint32
	Ties    uint32
	Samples uint32
}

// Add merges another tally into e.
func (e *EquityResult) Add(o EquityResult) {
	e.Wins += o.Wins
	e.Ties += o.Ties
	e.Samples += o.Samples
}

// WinRate returns the fraction of samples won outright.
func (e EquityResult) WinRate() float64 {
	if e.Samples == 0 {
		return 0.0
	}
	return float64(e.Wins) / float64(e.Samples)
}

// TieRate returns the fraction of samples that split the pot.
func (e EquityResult) TieRate() float64 {
	if e.Samples == 0 {
		return 0.0
	}
	return float64(e.Ties) / float64(e.Samples)
}

// LossRate returns the fraction of samples lost.
func (e EquityResult) LossRate() float64 {
	if e.Samples == 0 {
		return 0.0
	}
	return float64(e.Samples-e.Wins-e.Ties) / float64(e.Samples)
}

// Score is the integer tally: two points per win, one per tie.
func (e EquityResult) Score() uint64 {
	return 2*uint64(e.Wins) + uint64(e.Ties)
}

// Equity returns Score / (2 * Samples), in [0, 1].
func (e EquityResult) Equity() float64 {
	if e.Samples == 0 {
		return 0.0
	}
	return float64(e.Score()) / (2 * float64(e.Samples))
}

// ConfidenceInterval returns the 95% confidence interval for equity
func (e EquityResult) ConfidenceInterval() (lower, upper float64) {
	equity := e.Equity()
	n := float64(e.Samples)
	if n == 0 {
		return 0.0, 0.0
	}

	// normal approximation to the binomial, ±1.96 standard errors
	margin := 1.96 * math.Sqrt((equity*(1.0-equity))/n)

	return math.Max(0.0, equity-margin), math.Min(1.0, equity+margin)
}
