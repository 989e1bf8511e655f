package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/lox/multiboard/internal/simulator"
)

type BenchCmd struct {
	Rounds   int           `short:"n" help:"Rounds to play" default:"200"`
	Opponent string        `short:"o" help:"Opponent type (call|aggressive)" default:"aggressive" enum:"call,aggressive"`
	Clock    time.Duration `help:"Game clock reported to the bot" default:"5m"`
	Timeout  time.Duration `help:"Per-round timeout" default:"30s"`
	JSON     bool          `help:"Output bot logs as JSON instead of console format"`
	Seed     *int64        `help:"Base seed; round i uses seed+i"`
}

func (c *BenchCmd) Run(rc *runContext) error {
	bot, err := botFromEnv(c.JSON)
	if err != nil {
		return err
	}
	opp, err := simulator.NewOpponent(c.Opponent)
	if err != nil {
		return err
	}

	seed := seedOrNow(c.Seed)
	rc.logger.Info("benchmarking", "bot", bot.ID(), "opponent", opp.Name(), "rounds", c.Rounds, "seed", seed)

	start := time.Now()
	sim := simulator.New(simulator.Config{
		Rounds:    c.Rounds,
		Seed:      seed,
		Opponent:  opp,
		GameClock: c.Clock,
		Timeout:   c.Timeout,
		Logger:    rc.logger,
	})
	stats, err := sim.Run(context.Background(), bot)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	low, high := stats.ConfidenceInterval95()
	fmt.Fprintf(rc.out, "%s\n", headerStyle.Render("chips per round"))
	fmt.Fprintf(rc.out, "mean %s  median %.1f  stddev %.1f  95%% ci [%.2f, %.2f]\n\n",
		winStyle.Render(fmt.Sprintf("%+.2f", stats.Mean())),
		stats.Median(),
		stats.StdDev(),
		low, high)

	w := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("board"),
		headerStyle.Render("mean"),
		headerStyle.Render("showdowns"),
		headerStyle.Render("won"),
		headerStyle.Render("folds"))
	for i, b := range stats.Boards {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
			i+1,
			winStyle.Render(fmt.Sprintf("%+.2f", b.Mean())),
			b.Showdowns,
			b.ShowdownWins,
			b.Folds)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(rc.out, "\n%d rounds vs %s in %v (largest pot %d)\n", stats.Rounds, opp.Name(), duration.Truncate(time.Millisecond), stats.MaxPot)
	return nil
}
