package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:   "show",
		Usage:  "List stored datasets and runs, or print the results of one run",
		Action: showAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run",
				Usage: "Run id to print",
			},
		},
	}
}

func showAction(c *cli.Context) error {
	ctx := c.Context
	w := c.App.Writer
	s, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	if id := c.String("run"); id != "" {
		run, err := s.LoadRun(ctx, id)
		if err != nil {
			return err
		}
		result, err := s.LoadResult(ctx, id)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "run %s: %s vs %s, %s, %s, k=%d, %s\n", run.ID, run.Queries, run.Reference,
			run.Kernel, run.Mode, run.K, humanize.Time(run.CreatedAt)); err != nil {
			return err
		}
		for q := 0; q < result.Queries; q++ {
			indices, values := result.Column(q)
			if _, err := fmt.Fprintf(w, "query %d:", q); err != nil {
				return err
			}
			for r := range indices {
				if _, err := fmt.Fprintf(w, " %d(%.6g)", indices[r], values[r]); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil
	}

	datasets, err := s.Datasets(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "datasets:"); err != nil {
		return err
	}
	for _, d := range datasets {
		if _, err := fmt.Fprintf(w, "  %s: %s %s points, dim %d\n", d.Name, humanize.Comma(int64(d.Size)), d.Kind, d.Dim); err != nil {
			return err
		}
	}
	runs, err := s.Runs(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "runs:"); err != nil {
		return err
	}
	for _, r := range runs {
		if _, err := fmt.Fprintf(w, "  %s: %s vs %s, %s, %s, k=%d, %s evaluations, %s\n", r.ID, r.Queries, r.Reference,
			r.Kernel, r.Mode, r.K, humanize.Comma(int64(r.Evaluations)), humanize.Time(r.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}
