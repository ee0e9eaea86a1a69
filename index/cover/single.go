package cover

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/vector"
)

// SearchSingle answers every query with its own best-first descent of the
// reference tree. With parallelism > 1 the bound cache is precomputed and
// query blocks run on pooled workers, each with a private candidate list.
func (i *Index) SearchSingle(queries dataset.Dataset, k int) (*index.Result, error) {
	if err := index.ValidateSearch(i.data, queries, k); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	started := time.Now()
	if i.options.parallelism > 1 {
		i.bounds.Precompute()
	}
	result := index.NewResult(k, queries.Len())
	err := index.ForEachBlock(queries.Len(), i.options.parallelism, func(start, end int) error {
		s := &singleSearch{index: i, list: index.NewList(k)}
		for q := start; q < end; q++ {
			s.run(queries.At(q))
			if err := result.SetColumn(q, s.list); err != nil {
				return err
			}
		}
		result.Stats.Add(s.stats)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	i.options.logger.Debug("single-tree search completed",
		zap.Int("queries", queries.Len()),
		zap.Int("references", i.data.Len()),
		zap.Int("k", k),
		zap.Uint64("evaluations", result.Stats.Evaluations),
		zap.Uint64("prunes", result.Stats.Prunes),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// singleSearch holds the per-worker state of single-tree search.
type singleSearch struct {
	index    *Index
	list     *index.List
	frontier frontier
	stats    index.Stats
}

// run fills s.list with the best references for query. Each representative
// is evaluated and offered when its parent is expanded, so a popped node
// only needs its children examined.
func (s *singleSearch) run(query vector.Vector) {
	s.list.Reset()
	s.frontier.reset()
	t := s.index.tree
	stat := s.index.stat
	k := s.index.kernel

	queryNorm := featureNorm(k.Evaluate(query, query))
	root := t.Root()
	value := k.Evaluate(query, s.index.data.At(int(t.Node(root).Point())))
	s.stats.Evaluations += 2
	s.offer(t.Node(root).Point(), value)
	if !t.Node(root).IsLeaf() {
		s.frontier.push(root, value+stat.Radius(root)*queryNorm)
	}

	for s.frontier.Len() > 0 {
		top := s.frontier.pop()
		if top.bound < s.list.Threshold() {
			s.stats.Prunes += uint64(1 + s.frontier.Len())
			return
		}
		s.stats.Visited++
		for _, child := range t.Node(top.node).Children() {
			node := t.Node(child)
			value := k.Evaluate(query, s.index.data.At(int(node.Point())))
			s.stats.Evaluations++
			s.offer(node.Point(), value)
			if node.IsLeaf() {
				continue
			}
			bound := value + stat.Radius(child)*queryNorm
			if bound < s.list.Threshold() {
				s.stats.Prunes++
				continue
			}
			s.frontier.push(child, bound)
		}
	}
}

func (s *singleSearch) offer(point int32, value float64) {
	s.stats.BaseCases++
	s.list.Offer(int(point), value)
}
