package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/viant/fastmks/store"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Import float32 embeddings from a table of the database as a dataset",
		Action: importAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Dataset name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "table",
				Aliases:  []string{"t"},
				Usage:    "Source table",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "column",
				Usage: "Embedding BLOB column",
				Value: "embedding",
			},
			&cli.BoolFlag{
				Name:  "normalize",
				Usage: "Scale embeddings to unit length",
			},
		},
	}
}

func importAction(c *cli.Context) error {
	ctx := c.Context
	s, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()
	spec := store.ImportSpec{Table: c.String("table"), Column: c.String("column"), Normalize: c.Bool("normalize")}
	n, err := s.ImportEmbeddings(ctx, spec, c.String("name"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "imported %s embeddings from %s.%s into %s\n",
		humanize.Comma(int64(n)), spec.Table, spec.Column, c.String("name"))
	return err
}
