package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/lox/multiboard/internal/fileutil"
	"github.com/lox/multiboard/internal/randutil"
	"github.com/lox/multiboard/sdk/analysis"
)

type TableCmd struct {
	Output     string `short:"o" help:"Output CSV file" default:"hole_evs.csv" type:"path"`
	Iterations int    `short:"i" help:"Monte Carlo iterations per starting hand" default:"10000"`
	Workers    int    `short:"w" help:"Worker goroutines" default:"4"`
	Seed       int64  `help:"Random seed" default:"42"`
}

func (c *TableCmd) Run(rc *runContext) error {
	rc.logger.Info("generating starting hand table", "iterations", c.Iterations, "output", c.Output)

	start := time.Now()
	values, err := analysis.GenerateRangeTable(context.Background(), randutil.New(c.Seed), &analysis.Estimator{Workers: c.Workers}, c.Iterations)
	if err != nil {
		return err
	}

	err = fileutil.WriteAtomic(c.Output, 0o644, func(w io.Writer) error {
		return analysis.WriteRangeTable(w, values)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(rc.out, "wrote %d starting hands to %s in %v\n", len(values), c.Output, time.Since(start).Truncate(time.Millisecond))
	return nil
}
