package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/multiboard/poker"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Debug    bool             `help:"Enable debug logging"`
	Equity   EquityCmd        `cmd:"" help:"Estimate a hole's equity against one opponent"`
	Allocate AllocateCmd      `cmd:"" help:"Split six cards into three holes"`
	Round    RoundCmd         `cmd:"" help:"Play one round against a scripted opponent, bot configured from the environment"`
	Bench    BenchCmd         `cmd:"" help:"Play many rounds and report chip statistics"`
	Table    TableCmd         `cmd:"" help:"Generate the starting hand table used for weighted sampling"`
}

// runContext is bound into every command's Run method.
type runContext struct {
	out    io.Writer
	logger *log.Logger
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("multiboard-odds"),
		kong.Description("Equity and allocation tools for the multi-board bot"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	level := log.InfoLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	err := ctx.Run(&runContext{out: os.Stdout, logger: logger})
	ctx.FatalIfErrorf(err)
}

// seedOrNow returns the explicit seed, or one derived from the clock.
func seedOrNow(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

// parseCardsFlag parses an optional card list, returning nil for "".
func parseCardsFlag(name, s string) ([]poker.Card, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	cards, err := poker.ParseCards(s)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return cards, nil
}

func formatCards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
