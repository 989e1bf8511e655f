package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/internal/simulator"
	"github.com/lox/multiboard/poker"
	"github.com/lox/multiboard/sdk/bots/multiboard"
	"github.com/lox/multiboard/sdk/config"
)

type RoundCmd struct {
	Cards    string        `arg:"" optional:"" help:"Six dealt cards; random when omitted"`
	Opponent string        `short:"o" help:"Opponent type (call|aggressive)" default:"call" enum:"call,aggressive"`
	Clock    time.Duration `help:"Game clock reported to the bot" default:"30s"`
	JSON     bool          `help:"Output bot logs as JSON instead of console format"`
	Seed     *int64        `help:"Random seed for the deal and community cards"`
}

func (c *RoundCmd) Run(rc *runContext) error {
	bot, err := botFromEnv(c.JSON)
	if err != nil {
		return err
	}
	opp, err := simulator.NewOpponent(c.Opponent)
	if err != nil {
		return err
	}

	var dealt []poker.Card
	if c.Cards != "" {
		if dealt, err = poker.ParseCards(c.Cards); err != nil {
			return fmt.Errorf("parsing cards: %w", err)
		}
	}

	seed := seedOrNow(c.Seed)
	rc.logger.Debug("playing round", "bot", bot.ID(), "opponent", opp.Name(), "seed", seed)

	r, err := simulator.PlayRound(context.Background(), bot, opp, randutil.New(seed), dealt, c.Clock)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(rc.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("street"),
		headerStyle.Render("board 1"),
		headerStyle.Render("board 2"),
		headerStyle.Render("board 3"))
	for _, step := range r.Steps {
		writeStep(w, step)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(rc.out)
	for i, b := range r.Result.Boards {
		fmt.Fprintf(rc.out, "board %d: %s vs %s on %s, pot %d, %s\n",
			i+1,
			handStyle.Render(r.Allocation.Holes[i].String()),
			r.Opponents[i],
			formatCards(r.Community[i]),
			b.Pot,
			deltaStyle(b.Delta))
	}
	fmt.Fprintf(rc.out, "net %s\n", deltaStyle(r.Result.Delta()))
	return nil
}

func writeStep(w io.Writer, step simulator.Step) {
	cells := make([]any, 0, multiboard.NumBoards+1)
	cells = append(cells, categoryStyle.Render(step.Label))
	for i, a := range step.Actions {
		cell := a.String()
		if bet := step.State.Boards[i].OppPip; bet > 0 {
			cell = fmt.Sprintf("%s (faced %d)", cell, bet)
		}
		cells = append(cells, handStyle.Render(cell))
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cells...)
}

func deltaStyle(delta int) string {
	s := fmt.Sprintf("%+d", delta)
	if delta < 0 {
		return tieStyle.Render(s)
	}
	return winStyle.Render(s)
}

// botFromEnv builds the bot the way a deployed process would: settings from
// MULTIBOARD_* variables, bot logs through zerolog on stderr.
func botFromEnv(json bool) (*multiboard.Bot, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	logger, err := newBotLogger(os.Stderr, cfg.LogLevel, json)
	if err != nil {
		return nil, err
	}
	return multiboard.NewFromConfig(cfg, logger)
}

// newBotLogger builds the zerolog logger handed to the bot: pretty console
// output by default, JSON when asked.
func newBotLogger(out io.Writer, level string, json bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if json {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
