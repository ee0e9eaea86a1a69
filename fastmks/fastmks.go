package fastmks

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/index/bruteforce"
	"github.com/viant/fastmks/index/cover"
	"github.com/viant/fastmks/kernel"
)

// FastMKS owns a reference set, a kernel and the structures built for the
// selected mode.
type FastMKS struct {
	refs      dataset.Dataset
	queries   dataset.Dataset
	kernel    kernel.Kernel
	mode      Mode
	naive     *bruteforce.Index
	tree      *cover.Index
	queryTree *cover.Index
	options   options
}

// New validates the configuration and builds the reference index (and the
// query index when a query set is fixed in dual-tree mode).
func New(refs dataset.Dataset, k kernel.Kernel, opts ...Option) (*FastMKS, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.naive && o.single {
		return nil, fmt.Errorf("fastmks: %w: naive and single-tree modes are mutually exclusive", index.ErrInvalidArgument)
	}
	if err := index.ValidateReferences(refs); err != nil {
		return nil, fmt.Errorf("fastmks: %w", err)
	}
	if k == nil {
		return nil, fmt.Errorf("fastmks: %w: nil kernel", index.ErrInvalidArgument)
	}
	if o.queries != nil && o.queries.Len() > 0 && o.queries.Dim() != refs.Dim() {
		return nil, fmt.Errorf("fastmks: %w: query dim %d != reference dim %d", index.ErrDimensionMismatch, o.queries.Dim(), refs.Dim())
	}

	f := &FastMKS{refs: refs, queries: o.queries, kernel: k, options: o}
	switch {
	case o.naive:
		f.mode = Naive
	case o.single:
		f.mode = Single
	default:
		f.mode = Dual
	}

	started := time.Now()
	var err error
	if f.mode == Naive {
		f.naive, err = bruteforce.New(refs, k, bruteforce.WithParallelism(o.parallelism), bruteforce.WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("fastmks: %w", err)
		}
	} else {
		traversal := cover.DualTree
		if f.mode == Single {
			traversal = cover.SingleTree
		}
		f.tree, err = cover.New(refs, k,
			cover.WithTraversal(traversal),
			cover.WithBase(o.base),
			cover.WithBoundStrategy(o.bound),
			cover.WithParallelism(o.parallelism),
			cover.WithLogger(o.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("fastmks: %w", err)
		}
		if f.mode == Dual && f.queries != nil && f.queries.Len() > 0 {
			if f.queryTree, err = f.tree.NewQueryIndex(f.queries); err != nil {
				return nil, fmt.Errorf("fastmks: %w", err)
			}
		}
	}
	o.logger.Info("fastmks index ready",
		zap.Stringer("mode", f.mode),
		zap.String("kernel", kernelName(k)),
		zap.Int("references", refs.Len()),
		zap.Int("dim", refs.Dim()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return f, nil
}

// Search answers the query set fixed with WithQueries, or searches the
// reference set against itself when none was given.
func (f *FastMKS) Search(k int) (*index.Result, error) {
	queries := f.queries
	if queries == nil {
		queries = f.refs
	}
	started := time.Now()
	var (
		result *index.Result
		err    error
	)
	switch f.mode {
	case Naive:
		result, err = f.naive.Search(queries, k)
	case Single:
		result, err = f.tree.SearchSingle(queries, k)
	default:
		queryTree := f.queryTree
		if queryTree == nil {
			queryTree = f.tree
		}
		if queries.Len() == 0 {
			result, err = f.tree.Search(queries, k)
		} else {
			result, err = f.tree.SearchDual(queryTree, k)
		}
	}
	return f.finish(queries, k, result, err, started)
}

// SearchQueries answers an explicit query set. In dual-tree mode a query
// tree is built for it on every call.
func (f *FastMKS) SearchQueries(queries dataset.Dataset, k int) (*index.Result, error) {
	started := time.Now()
	var (
		result *index.Result
		err    error
	)
	if f.mode == Naive {
		result, err = f.naive.Search(queries, k)
	} else {
		result, err = f.tree.Search(queries, k)
	}
	return f.finish(queries, k, result, err, started)
}

func (f *FastMKS) finish(queries dataset.Dataset, k int, result *index.Result, err error, started time.Time) (*index.Result, error) {
	if err != nil {
		return nil, fmt.Errorf("fastmks: %s search: %w", f.mode, err)
	}
	elapsed := time.Since(started)
	f.options.metrics.Observe(f.mode.String(), result.Stats, elapsed)
	f.options.logger.Info("fastmks search completed",
		zap.Stringer("mode", f.mode),
		zap.Int("queries", queries.Len()),
		zap.Int("k", k),
		zap.Uint64("evaluations", result.Stats.Evaluations),
		zap.Uint64("prunes", result.Stats.Prunes),
		zap.Uint64("base_cases", result.Stats.BaseCases),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// Mode returns the selected execution strategy.
func (f *FastMKS) Mode() Mode { return f.mode }

// References returns the reference set.
func (f *FastMKS) References() dataset.Dataset { return f.refs }

// Kernel returns the kernel.
func (f *FastMKS) Kernel() kernel.Kernel { return f.kernel }

// String describes the configuration.
func (f *FastMKS) String() string {
	s := fmt.Sprintf("FastMKS(mode=%s, kernel=%s, references=%d, dim=%d", f.mode, kernelName(f.kernel), f.refs.Len(), f.refs.Dim())
	if f.tree != nil {
		s += fmt.Sprintf(", depth=%d", f.tree.Depth())
	}
	if f.queries != nil {
		s += fmt.Sprintf(", queries=%d", f.queries.Len())
	}
	return s + ")"
}

func kernelName(k kernel.Kernel) string {
	if s, ok := k.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", k)
}
