package multiboard

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/multiboard/sdk/allocation"
	"github.com/lox/multiboard/sdk/analysis"
)

// Policy holds the tunable constants of the action selector and planner.
// It can be loaded from an HCL file:
//
//	preflop_multiplier     = 0.4
//	postflop_multiplier    = 0.75
//	intimidation_threshold = 5
//	sampling               = "weighted"
//	weight_boost           = 0.2
//
//	allocation {
//	  min_pair_rank    = 5
//	  swap_probability = 0.15
//	}
type Policy struct {
	PreflopMultiplier     float64 `hcl:"preflop_multiplier,optional"`
	PostflopMultiplier    float64 `hcl:"postflop_multiplier,optional"`
	IntimidationThreshold int     `hcl:"intimidation_threshold,optional"`
	IntimidationPenalty   float64 `hcl:"intimidation_penalty,optional"`
	RaiseEquityFloor      float64 `hcl:"raise_equity_floor,optional"`
	Iterations            int     `hcl:"iterations,optional"`
	Sampling              string  `hcl:"sampling,optional"`
	OrderByStrength       bool    `hcl:"order_by_strength,optional"`

	// WeightBoost is added to starting hand table values in weighted
	// sampling. Unset means analysis.DefaultWeightBoost; 0 is honoured.
	WeightBoost *float64 `hcl:"weight_boost,optional"`

	Allocation *AllocationSettings `hcl:"allocation,block"`
}

// AllocationSettings tunes the six card planner.
type AllocationSettings struct {
	MinPairRank     int     `hcl:"min_pair_rank,optional"`
	SwapProbability float64 `hcl:"swap_probability,optional"`
	Iterations      int     `hcl:"iterations,optional"`
}

// DefaultPolicy returns the standard constants.
func DefaultPolicy() *Policy {
	p := &Policy{}
	p.applyDefaults()
	return p
}

func (p *Policy) applyDefaults() {
	if p.PreflopMultiplier == 0 {
		p.PreflopMultiplier = 0.4
	}
	if p.PostflopMultiplier == 0 {
		p.PostflopMultiplier = 0.75
	}
	if p.IntimidationThreshold == 0 {
		p.IntimidationThreshold = 5
	}
	if p.IntimidationPenalty == 0 {
		p.IntimidationPenalty = 0.15
	}
	if p.RaiseEquityFloor == 0 {
		p.RaiseEquityFloor = 0.5
	}
	if p.Iterations == 0 {
		p.Iterations = 100
	}
	if p.Sampling == "" {
		p.Sampling = analysis.ModeUniform.String()
	}
	if p.Allocation == nil {
		p.Allocation = &AllocationSettings{}
	}
	if p.Allocation.MinPairRank == 0 {
		p.Allocation.MinPairRank = allocation.DefaultPolicy().MinPairRank
	}
	if p.Allocation.Iterations == 0 {
		p.Allocation.Iterations = p.Iterations
	}
}

// LoadPolicy reads an HCL policy file. A missing file yields the defaults;
// fields left out of the file take their default values.
func LoadPolicy(filename string) (*Policy, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var p Policy
	diags = gohcl.DecodeBody(file.Body, nil, &p)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the policy for values the selector cannot use.
func (p *Policy) Validate() error {
	if p.PreflopMultiplier < 0 || p.PostflopMultiplier < 0 {
		return fmt.Errorf("raise multipliers must not be negative")
	}
	if p.IntimidationThreshold < 0 {
		return fmt.Errorf("intimidation threshold must not be negative: %d", p.IntimidationThreshold)
	}
	if p.IntimidationPenalty < 0 || p.IntimidationPenalty > 1 {
		return fmt.Errorf("intimidation penalty must be within [0, 1]: %v", p.IntimidationPenalty)
	}
	if p.RaiseEquityFloor < 0 || p.RaiseEquityFloor > 1 {
		return fmt.Errorf("raise equity floor must be within [0, 1]: %v", p.RaiseEquityFloor)
	}
	if p.Iterations < 1 {
		return fmt.Errorf("iterations must be positive: %d", p.Iterations)
	}
	if _, err := analysis.ParseMode(p.Sampling); err != nil {
		return err
	}
	if p.WeightBoost != nil && (*p.WeightBoost < 0 || *p.WeightBoost > 1) {
		return fmt.Errorf("weight boost must be within [0, 1]: %v", *p.WeightBoost)
	}
	if a := p.Allocation; a != nil {
		if a.MinPairRank < 2 || a.MinPairRank > 14 {
			return fmt.Errorf("allocation min_pair_rank must be within 2-14: %d", a.MinPairRank)
		}
		if a.SwapProbability < 0 || a.SwapProbability > 1 {
			return fmt.Errorf("allocation swap_probability must be within [0, 1]: %v", a.SwapProbability)
		}
		if a.Iterations < 1 {
			return fmt.Errorf("allocation iterations must be positive: %d", a.Iterations)
		}
	}
	return nil
}

// Mode returns the sampling mode. Validate has already checked it.
func (p *Policy) Mode() analysis.Mode {
	m, _ := analysis.ParseMode(p.Sampling)
	return m
}

// PlannerPolicy converts the allocation settings for the planner.
func (p *Policy) PlannerPolicy() allocation.Policy {
	return allocation.Policy{
		MinPairRank:     p.Allocation.MinPairRank,
		SwapProbability: p.Allocation.SwapProbability,
		Iterations:      p.Allocation.Iterations,
		Mode:            p.Mode(),
	}
}

// multiplier returns the raise sizing multiplier for a street.
func (p *Policy) multiplier(street int) float64 {
	if street < StreetFlop {
		return p.PreflopMultiplier
	}
	return p.PostflopMultiplier
}
