package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/allocation"
	"github.com/lox/multiboard/sdk/analysis"
)

type AllocateCmd struct {
	Cards       string  `arg:"" help:"Six dealt cards, e.g. 'AsAdKhKd2c7d'"`
	Iterations  int     `short:"i" help:"Iterations per isolated estimate" default:"2000"`
	MinPairRank int     `help:"Lowest pair kept together (2-14)" default:"5"`
	Swap        float64 `help:"Probability of each board swap after ordering" default:"0"`
	Table       string  `short:"t" help:"Starting hand table CSV; switches estimates to weighted sampling" type:"path"`
	Workers     int     `short:"w" help:"Worker goroutines" default:"4"`
	Seed        *int64  `help:"Random seed for reproducible results"`
}

func (c *AllocateCmd) Run(rc *runContext) error {
	cards, err := poker.ParseCards(c.Cards)
	if err != nil {
		return fmt.Errorf("parsing cards: %w", err)
	}
	if len(cards) != 6 {
		return fmt.Errorf("need exactly 6 cards, got %d", len(cards))
	}
	if poker.NewHand(cards...).CountCards() != 6 {
		return fmt.Errorf("duplicate card in %s", formatCards(cards))
	}

	policy := allocation.DefaultPolicy()
	policy.Iterations = c.Iterations
	policy.MinPairRank = c.MinPairRank
	policy.SwapProbability = c.Swap

	est := &analysis.Estimator{Workers: c.Workers}
	if c.Table != "" {
		if est.Weights, err = analysis.LoadRangeWeightsFile(c.Table); err != nil {
			return err
		}
		policy.Mode = analysis.ModeRangeWeighted
	}

	seed := seedOrNow(c.Seed)
	rc.logger.Debug("allocating", "cards", formatCards(cards), "mode", policy.Mode, "seed", seed)

	planner := allocation.NewPlanner(est, policy, zerolog.Nop())
	alloc, err := planner.Plan(context.Background(), randutil.New(seed), [6]poker.Card(cards))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("board"),
		headerStyle.Render("hole"),
		headerStyle.Render("class"),
		headerStyle.Render("equity"))
	for i, h := range alloc.Holes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1,
			handStyle.Render(h.String()),
			categoryStyle.Render(fmt.Sprintf("%s %s", poker.StartingHandOf(h), poker.CategorizeHole(h))),
			winStyle.Render(percent(alloc.Equity[i])))
	}
	return w.Flush()
}
