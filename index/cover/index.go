package cover

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/internal/cover/tree"
	"github.com/viant/fastmks/kernel"
)

// Index is a cover tree over a dataset in the kernel-induced metric together
// with its bound cache. The same type serves as the reference index and as
// the query index of a dual-tree search.
type Index struct {
	data    dataset.Dataset
	kernel  kernel.Kernel
	metric  *Metric
	tree    *tree.Tree
	bounds  *BoundCache
	stat    Statistic
	options options
}

// New builds a cover tree over refs. The first point becomes the root and
// the remaining points are inserted in dataset order.
func New(refs dataset.Dataset, k kernel.Kernel, opts ...Option) (*Index, error) {
	if err := index.ValidateReferences(refs); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	if k == nil {
		return nil, fmt.Errorf("cover: %w: nil kernel", index.ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return build(refs, k, o)
}

func build(data dataset.Dataset, k kernel.Kernel, o options) (*Index, error) {
	started := time.Now()
	metric := NewMetric(k, data)
	t, err := tree.Build(data.Len(), metric.Distance, o.base)
	if err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	bounds := NewBoundCache(t, metric, o.bound)
	idx := &Index{data: data, kernel: k, metric: metric, tree: t, bounds: bounds, stat: bounds, options: o}
	o.logger.Debug("cover tree built",
		zap.Int("points", data.Len()),
		zap.Int("depth", t.Depth()),
		zap.Float64("base", t.Base()),
		zap.Stringer("bound", o.bound),
		zap.Uint64("evaluations", metric.Evaluations()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return idx, nil
}

// NewQueryIndex builds a cover tree over queries sharing the kernel, base
// and bound strategy of i, for use with SearchDual.
func (i *Index) NewQueryIndex(queries dataset.Dataset) (*Index, error) {
	if err := index.ValidateReferences(queries); err != nil {
		return nil, fmt.Errorf("cover: query index: %w", err)
	}
	if queries.Dim() != i.data.Dim() {
		return nil, fmt.Errorf("cover: %w: query dim %d != reference dim %d", index.ErrDimensionMismatch, queries.Dim(), i.data.Dim())
	}
	return build(queries, i.kernel, i.options)
}

// References returns the indexed dataset.
func (i *Index) References() dataset.Dataset { return i.data }

// Kernel returns the kernel the tree was built with.
func (i *Index) Kernel() kernel.Kernel { return i.kernel }

// Bounds returns the bound cache.
func (i *Index) Bounds() *BoundCache { return i.bounds }

// Metric returns the kernel-induced metric over the indexed dataset.
func (i *Index) Metric() *Metric { return i.metric }

// Depth returns the number of tree levels on the longest root-to-leaf path.
func (i *Index) Depth() int { return i.tree.Depth() }

// Len returns the number of tree nodes, one per indexed point.
func (i *Index) Len() int { return i.tree.Len() }

// Traversal returns the configured search strategy.
func (i *Index) Traversal() Traversal { return i.options.traversal }

// Search returns the k best reference points for every query using the
// configured traversal. A dual-tree search over the indexed dataset itself
// reuses the reference tree as the query tree.
func (i *Index) Search(queries dataset.Dataset, k int) (*index.Result, error) {
	if i.options.traversal == SingleTree {
		return i.SearchSingle(queries, k)
	}
	if err := index.ValidateSearch(i.data, queries, k); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	if queries.Len() == 0 {
		return index.NewResult(k, 0), nil
	}
	queryIndex := i
	if !sameDataset(queries, i.data) {
		var err error
		if queryIndex, err = i.NewQueryIndex(queries); err != nil {
			return nil, err
		}
	}
	return i.SearchDual(queryIndex, k)
}

func sameDataset(a, b dataset.Dataset) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

var _ index.Index = (*Index)(nil)
