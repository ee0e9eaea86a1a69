package cover

import (
	"go.uber.org/zap"

	"github.com/viant/fastmks/internal/cover/tree"
)

// BoundStrategy selects how node radii are derived.
type BoundStrategy = tree.BoundStrategy

const (
	// BoundPerNode derives radii from actual child distances (tighter).
	BoundPerNode = tree.BoundPerNode
	// BoundLevel derives radii from the node level alone (no kernel calls).
	BoundLevel = tree.BoundLevel
)

// Traversal selects the search strategy.
type Traversal int

const (
	// DualTree indexes the queries too and recurses over node pairs.
	DualTree Traversal = iota
	// SingleTree descends the reference tree once per query.
	SingleTree
)

func (t Traversal) String() string {
	if t == SingleTree {
		return "single"
	}
	return "dual"
}

type options struct {
	base        float64
	bound       BoundStrategy
	traversal   Traversal
	parallelism int
	logger      *zap.Logger
}

func defaultOptions() options {
	return options{
		base:      tree.DefaultBase,
		bound:     BoundPerNode,
		traversal: DualTree,
		logger:    zap.NewNop(),
	}
}

// Option configures an Index.
type Option func(*options)

// WithBase sets the cover-tree expansion constant; values <= 1 keep the default.
func WithBase(base float64) Option {
	return func(o *options) {
		if base > 1 {
			o.base = base
		}
	}
}

// WithBoundStrategy selects how node radii are derived.
func WithBoundStrategy(s BoundStrategy) Option { return func(o *options) { o.bound = s } }

// WithTraversal selects single-tree or dual-tree search.
func WithTraversal(t Traversal) Option { return func(o *options) { o.traversal = t } }

// WithParallelism runs single-tree queries on up to n workers. The bound
// cache is precomputed before the first parallel search.
func WithParallelism(n int) Option { return func(o *options) { o.parallelism = n } }

// WithLogger sets the logger used for build and search diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
