package fastmks

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/index/cover"
	"github.com/viant/fastmks/internal/metrics"
)

// Mode is the search execution strategy.
type Mode int

const (
	// Dual recurses over a query tree and the reference tree together.
	Dual Mode = iota
	// Single descends the reference tree once per query.
	Single
	// Naive evaluates every query-reference pair.
	Naive
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Naive:
		return "naive"
	}
	return "dual"
}

// ParseMode resolves a mode name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dual", "dual_tree":
		return Dual, nil
	case "single", "single_tree":
		return Single, nil
	case "naive", "brute", "bruteforce":
		return Naive, nil
	}
	return Dual, fmt.Errorf("fastmks: %w: unknown mode %q", index.ErrInvalidArgument, name)
}

// ParseBoundStrategy resolves a bound strategy name.
func ParseBoundStrategy(name string) (cover.BoundStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "per_node", "node":
		return cover.BoundPerNode, nil
	case "level":
		return cover.BoundLevel, nil
	}
	return cover.BoundPerNode, fmt.Errorf("fastmks: %w: unknown bound strategy %q", index.ErrInvalidArgument, name)
}

type options struct {
	naive       bool
	single      bool
	queries     dataset.Dataset
	base        float64
	bound       cover.BoundStrategy
	parallelism int
	logger      *zap.Logger
	metrics     *metrics.Collector
}

// Option configures a FastMKS.
type Option func(*options)

// WithNaive selects exhaustive search.
func WithNaive() Option { return func(o *options) { o.naive = true } }

// WithSingleTree selects single-tree search instead of the default dual-tree.
func WithSingleTree() Option { return func(o *options) { o.single = true } }

// WithMode selects the mode by value.
func WithMode(m Mode) Option {
	return func(o *options) {
		switch m {
		case Naive:
			o.naive = true
		case Single:
			o.single = true
		}
	}
}

// WithQueries fixes the query set searched by Search. In dual-tree mode its
// tree is built once at construction.
func WithQueries(queries dataset.Dataset) Option { return func(o *options) { o.queries = queries } }

// WithBase sets the cover-tree expansion constant.
func WithBase(base float64) Option { return func(o *options) { o.base = base } }

// WithBoundStrategy selects how node radii are derived.
func WithBoundStrategy(s cover.BoundStrategy) Option { return func(o *options) { o.bound = s } }

// WithParallelism runs naive and single-tree queries on up to n workers.
func WithParallelism(n int) Option { return func(o *options) { o.parallelism = n } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records every search in c.
func WithMetrics(c *metrics.Collector) Option { return func(o *options) { o.metrics = c } }
