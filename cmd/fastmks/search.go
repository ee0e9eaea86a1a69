package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/fastmks"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/internal/config"
	"github.com/viant/fastmks/internal/logger"
	"github.com/viant/fastmks/internal/metrics"
	"github.com/viant/fastmks/kernel"
	"github.com/viant/fastmks/store"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:   "search",
		Usage:  "Find the k reference points with the largest kernel value for every query",
		Action: searchAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "reference",
				Aliases:  []string{"r"},
				Usage:    "Reference dataset name",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "queries",
				Aliases: []string{"q"},
				Usage:   "Query dataset name (defaults to the reference set)",
			},
			&cli.IntFlag{
				Name:    "k",
				Aliases: []string{"n"},
				Usage:   "Number of results per query",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Search mode (naive, single, dual)",
			},
			&cli.StringFlag{
				Name:  "kernel",
				Usage: "Kernel name (linear, polynomial, gaussian, laplacian, epanechnikov, triangular, cosine, tanh)",
			},
			&cli.Float64Flag{Name: "degree", Usage: "Polynomial degree"},
			&cli.Float64Flag{Name: "offset", Usage: "Polynomial or tanh offset"},
			&cli.Float64Flag{Name: "bandwidth", Usage: "Bandwidth of radial kernels"},
			&cli.Float64Flag{Name: "base", Usage: "Cover tree expansion constant"},
			&cli.StringFlag{Name: "bound", Usage: "Node bound strategy (per_node, level)"},
			&cli.IntFlag{Name: "parallel", Usage: "Workers for naive and single-tree search"},
			&cli.BoolFlag{Name: "save", Usage: "Persist results as a run"},
			&cli.IntFlag{Name: "print", Usage: "Number of queries to print", Value: 5},
			&cli.StringFlag{Name: "metrics-file", Usage: "Write Prometheus metrics to this text file"},
		},
	}
}

// searchSettings merges command flags over the configuration.
func searchSettings(c *cli.Context) (config.Config, error) {
	cfg := configFrom(c)
	if c.IsSet("k") {
		cfg.Search.K = c.Int("k")
	}
	if c.IsSet("mode") {
		cfg.Search.Mode = c.String("mode")
	}
	if c.IsSet("kernel") {
		cfg.Kernel = kernel.Config{Name: c.String("kernel")}
	}
	if c.IsSet("degree") {
		cfg.Kernel.Degree = c.Float64("degree")
	}
	if c.IsSet("offset") {
		cfg.Kernel.Offset = c.Float64("offset")
	}
	if c.IsSet("bandwidth") {
		cfg.Kernel.Bandwidth = c.Float64("bandwidth")
	}
	if c.IsSet("base") {
		cfg.Search.Base = c.Float64("base")
	}
	if c.IsSet("bound") {
		cfg.Search.Bound = c.String("bound")
	}
	if c.IsSet("parallel") {
		cfg.Search.Parallelism = c.Int("parallel")
	}
	if c.IsSet("metrics-file") {
		cfg.Metrics.Textfile = c.String("metrics-file")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func searchAction(c *cli.Context) error {
	ctx := c.Context
	log := logger.FromContext(ctx)
	cfg, err := searchSettings(c)
	if err != nil {
		return err
	}
	k, err := kernel.New(cfg.Kernel)
	if err != nil {
		return err
	}
	mode, err := fastmks.ParseMode(cfg.Search.Mode)
	if err != nil {
		return err
	}
	bound, err := fastmks.ParseBoundStrategy(cfg.Search.Bound)
	if err != nil {
		return err
	}

	s, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	refName, queryName := c.String("reference"), c.String("queries")
	var refs, queries dataset.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = s.LoadDataset(gctx, refName)
		return err
	})
	if queryName != "" && queryName != refName {
		g.Go(func() error {
			var err error
			queries, err = s.LoadDataset(gctx, queryName)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	if err := collector.Register(registry); err != nil {
		return err
	}
	opts := []fastmks.Option{
		fastmks.WithMode(mode),
		fastmks.WithBase(cfg.Search.Base),
		fastmks.WithBoundStrategy(bound),
		fastmks.WithParallelism(cfg.Search.Parallelism),
		fastmks.WithLogger(log),
		fastmks.WithMetrics(collector),
	}
	if queries != nil {
		opts = append(opts, fastmks.WithQueries(queries))
	} else {
		queryName = refName
	}
	started := time.Now()
	mks, err := fastmks.New(refs, k, opts...)
	if err != nil {
		return err
	}
	result, err := mks.Search(cfg.Search.K)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	if err := printResult(c, mks, result, elapsed); err != nil {
		return err
	}
	if c.Bool("save") {
		id, err := s.SaveResult(ctx, store.Run{
			Reference: refName,
			Queries:   queryName,
			Kernel:    fmt.Sprint(k),
			Mode:      mks.Mode().String(),
		}, result)
		if err != nil {
			return err
		}
		log.Info("run saved", zap.String("run", id))
		if _, err := fmt.Fprintf(c.App.Writer, "run %s\n", id); err != nil {
			return err
		}
	}
	if path := cfg.Metrics.Textfile; path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("write metrics %s: %w", path, err)
		}
	}
	return nil
}

func printResult(c *cli.Context, mks *fastmks.FastMKS, result *index.Result, elapsed time.Duration) error {
	w := c.App.Writer
	if _, err := fmt.Fprintf(w, "%s\n%s queries, k=%d, %s kernel evaluations, %s prunes in %s\n",
		mks, humanize.Comma(int64(result.Queries)), result.K,
		humanize.Comma(int64(result.Stats.Evaluations)), humanize.Comma(int64(result.Stats.Prunes)),
		elapsed.Round(time.Microsecond)); err != nil {
		return err
	}
	limit := c.Int("print")
	if limit > result.Queries {
		limit = result.Queries
	}
	for q := 0; q < limit; q++ {
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
