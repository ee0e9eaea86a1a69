package bruteforce

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/kernel"
)

// Index answers max-kernel queries by scanning the whole reference set.
type Index struct {
	refs        dataset.Dataset
	kernel      kernel.Kernel
	parallelism int
	logger      *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithParallelism scores query blocks on up to n workers.
func WithParallelism(n int) Option { return func(i *Index) { i.parallelism = n } }

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(i *Index) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates a brute-force index over refs.
func New(refs dataset.Dataset, k kernel.Kernel, opts ...Option) (*Index, error) {
	if err := index.ValidateReferences(refs); err != nil {
		return nil, fmt.Errorf("bruteforce: %w", err)
	}
	if k == nil {
		return nil, fmt.Errorf("bruteforce: %w: nil kernel", index.ErrInvalidArgument)
	}
	i := &Index{refs: refs, kernel: k, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// References returns the indexed reference set.
func (i *Index) References() dataset.Dataset { return i.refs }

// Search evaluates the kernel between every query and every reference point
// and keeps the k best per query.
func (i *Index) Search(queries dataset.Dataset, k int) (*index.Result, error) {
	if err := index.ValidateSearch(i.refs, queries, k); err != nil {
		return nil, fmt.Errorf("bruteforce: %w", err)
	}
	started := time.Now()
	result := index.NewResult(k, queries.Len())
	err := index.ForEachBlock(queries.Len(), i.parallelism, func(start, end int) error {
		list := index.NewList(k)
		var stats index.Stats
		for q := start; q < end; q++ {
			list.Reset()
			query := queries.At(q)
			for r := 0; r < i.refs.Len(); r++ {
				list.Offer(r, i.kernel.Evaluate(query, i.refs.At(r)))
			}
			stats.Evaluations += uint64(i.refs.Len())
			stats.BaseCases += uint64(i.refs.Len())
			if err := result.SetColumn(q, list); err != nil {
				return err
			}
		}
		result.Stats.Add(stats)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bruteforce: %w", err)
	}
	i.logger.Debug("naive search completed",
		zap.Int("queries", queries.Len()),
		zap.Int("references", i.refs.Len()),
		zap.Int("k", k),
		zap.Uint64("evaluations", result.Stats.Evaluations),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

var _ index.Index = (*Index)(nil)
