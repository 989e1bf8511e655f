package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/analysis"
)

type EquityCmd struct {
	Hole       string `arg:"" help:"Hole cards, e.g. 'AsKd'"`
	Board      string `short:"b" help:"Community cards (e.g., 'Td7s8h')"`
	Dead       string `short:"d" help:"Cards known to be out of play, e.g. our other holes"`
	Iterations int    `short:"i" help:"Number of Monte Carlo iterations" default:"20000"`
	Mode       string `short:"m" help:"Opponent sampling (uniform|weighted)" default:"uniform" enum:"uniform,weighted"`
	Table      string `short:"t" help:"Starting hand table CSV (Holes,EVs), required for weighted sampling" type:"path"`
	Range      string `short:"r" help:"Restrict opponent holes to a range, e.g. 'TT+,AQs+'"`
	Workers    int    `short:"w" help:"Worker goroutines" default:"4"`
	Seed       *int64 `help:"Random seed for reproducible results"`
}

func (c *EquityCmd) Run(rc *runContext) error {
	cards, err := poker.ParseCards(c.Hole)
	if err != nil {
		return fmt.Errorf("parsing hole: %w", err)
	}
	if len(cards) != 2 {
		return fmt.Errorf("hole must contain exactly 2 cards, got %d", len(cards))
	}
	hole := poker.Hole{cards[0], cards[1]}

	board, err := parseCardsFlag("board", c.Board)
	if err != nil {
		return err
	}
	dead, err := parseCardsFlag("dead", c.Dead)
	if err != nil {
		return err
	}
	mode, err := analysis.ParseMode(c.Mode)
	if err != nil {
		return err
	}

	est := &analysis.Estimator{Workers: c.Workers}
	if c.Table != "" {
		if est.Weights, err = analysis.LoadRangeWeightsFile(c.Table); err != nil {
			return err
		}
	}
	if c.Range != "" {
		if est.Range, err = analysis.ParseRange(c.Range); err != nil {
			return err
		}
		rc.logger.Debug("opponent range", "classes", est.Range.Size(), "combos", est.Range.Combos())
	}

	seed := seedOrNow(c.Seed)
	rc.logger.Debug("estimating", "hole", hole, "mode", mode, "iterations", c.Iterations, "seed", seed)

	start := time.Now()
	res, err := est.Estimate(context.Background(), randutil.New(seed), analysis.Request{
		Hole:       hole,
		Dead:       dead,
		Community:  board,
		Iterations: c.Iterations,
		Mode:       mode,
		Cache:      poker.NewEvalCache(),
	})
	if err != nil {
		return err
	}
	duration := time.Since(start)

	if len(board) > 0 {
		fmt.Fprintf(rc.out, "%s\n", headerStyle.Render("board"))
		fmt.Fprintf(rc.out, "%s\n\n", formatCards(board))
	}

	lower, upper := res.ConfidenceInterval()
	w := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("hole"),
		headerStyle.Render("equity"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"),
		headerStyle.Render("95% ci"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		handStyle.Render(hole.String()),
		winStyle.Render(percent(res.Equity())),
		winStyle.Render(percent(res.WinRate())),
		tieStyle.Render(percent(res.TieRate())),
		categoryStyle.Render(fmt.Sprintf("%s - %s", percent(lower), percent(upper))))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(rc.out, "\n%d iterations (%s) in %v\n", res.Samples, mode, duration.Truncate(time.Millisecond))
	return nil
}
