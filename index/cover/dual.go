package cover

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/viant/fastmks/index"
)

// SearchDual answers every point of queryIndex by a simultaneous recursion
// over the query tree and the reference tree. Passing i itself searches the
// reference set against itself with a single tree.
func (i *Index) SearchDual(queryIndex *Index, k int) (*index.Result, error) {
	if queryIndex == nil {
		return nil, fmt.Errorf("cover: %w: nil query index", index.ErrInvalidArgument)
	}
	if err := index.ValidateSearch(i.data, queryIndex.data, k); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	started := time.Now()
	d := newDualSearch(queryIndex, i, k)
	qRoot, rRoot := queryIndex.tree.Root(), i.tree.Root()
	value := d.evaluate(queryIndex.tree.Node(qRoot).Point(), i.tree.Node(rRoot).Point())
	d.recurse(view{node: qRoot}, view{node: rRoot}, value)

	result := index.NewResult(k, queryIndex.data.Len())
	for q, list := range d.lists {
		if err := result.SetColumn(q, list); err != nil {
			return nil, fmt.Errorf("cover: %w", err)
		}
	}
	result.Stats = d.stats
	i.options.logger.Debug("dual-tree search completed",
		zap.Int("queries", queryIndex.data.Len()),
		zap.Int("references", i.data.Len()),
		zap.Int("k", k),
		zap.Bool("self", queryIndex == i),
		zap.Uint64("evaluations", d.stats.Evaluations),
		zap.Uint64("prunes", d.stats.Prunes),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// boundSlack widens parent-derived bounds to absorb rounding where the
// triangle inequality is tight.
const boundSlack = 1e-12

// view is a node seen either whole (its point and all descendants) or as
// its representative point alone.
type view struct {
	node     int32
	selfOnly bool
}

// pairing is a query view and reference view with their representatives'
// kernel value and the bound on any kernel value beneath them.
type pairing struct {
	query, ref view
	value      float64
	bound      float64
}

// dualSearch holds the state of one dual-tree search.
type dualSearch struct {
	query, ref *Index
	lists      []*index.List
	// thresholds caches, per query node, a lower bound on the k-th value of
	// every query beneath it. Entries only rise.
	thresholds []float64
	stats      index.Stats
}

func newDualSearch(query, ref *Index, k int) *dualSearch {
	d := &dualSearch{
		query:      query,
		ref:        ref,
		lists:      make([]*index.List, query.data.Len()),
		thresholds: make([]float64, query.tree.Len()),
	}
	for q := range d.lists {
		d.lists[q] = index.NewList(k)
	}
	for n := range d.thresholds {
		d.thresholds[n] = math.Inf(-1)
	}
	return d
}

func (d *dualSearch) evaluate(queryPoint, refPoint int32) float64 {
	d.stats.Evaluations++
	return d.query.kernel.Evaluate(d.query.data.At(int(queryPoint)), d.ref.data.At(int(refPoint)))
}

// single reports whether v stands for exactly one point.
func single(idx *Index, v view) bool {
	return v.selfOnly || idx.tree.Node(v.node).IsLeaf()
}

// radius returns the furthest-descendant bound of v.
func radius(idx *Index, v view) float64 {
	if single(idx, v) {
		return 0
	}
	return idx.stat.Radius(v.node)
}

// spread bounds the distance from the representative of parent to any point
// under child, where child is one of the views expand returns for parent.
func spread(idx *Index, parent, child view) float64 {
	if single(idx, parent) || child.selfOnly {
		return 0
	}
	s := idx.stat.ParentDistance(child.node) + radius(idx, child)
	if r := radius(idx, parent); r < s {
		return r
	}
	return s
}

// expand returns the child views of v: v itself when it is a single point,
// otherwise the node's own point followed by its children.
func expand(idx *Index, v view) []view {
	if single(idx, v) {
		return []view{{node: v.node, selfOnly: true}}
	}
	children := idx.tree.Node(v.node).Children()
	out := make([]view, 0, 1+len(children))
	out = append(out, view{node: v.node, selfOnly: true})
	for _, c := range children {
		out = append(out, view{node: c})
	}
	return out
}

// bound returns the upper bound on K(q, r) for q under qv and r under rv,
// given the kernel value between their representatives.
func (d *dualSearch) bound(qv, rv view, value float64) float64 {
	qRadius, rRadius := radius(d.query, qv), radius(d.ref, rv)
	if qRadius == 0 && rRadius == 0 {
		return value
	}
	qNorm := featureNorm(d.query.stat.SelfKernel(qv.node))
	rNorm := featureNorm(d.ref.stat.SelfKernel(rv.node))
	return value + qRadius*rRadius + qRadius*rNorm + rRadius*qNorm
}

// threshold returns the value a reference must reach to enter the list of
// any query beneath qv.
func (d *dualSearch) threshold(qv view) float64 {
	if single(d.query, qv) {
		return d.lists[d.query.tree.Node(qv.node).Point()].Threshold()
	}
	return d.thresholds[qv.node]
}

// refresh recomputes the cached threshold of a query node from its own
// list and its children.
func (d *dualSearch) refresh(node int32) {
	n := d.query.tree.Node(node)
	value := d.lists[n.Point()].Threshold()
	for _, c := range n.Children() {
		if t := d.threshold(view{node: c}); t < value {
			value = t
		}
	}
	if value > d.thresholds[node] {
		d.thresholds[node] = value
	}
}

func (d *dualSearch) recurse(qv, rv view, value float64) {
	qSingle, rSingle := single(d.query, qv), single(d.ref, rv)
	qPoint := d.query.tree.Node(qv.node).Point()
	rPoint := d.ref.tree.Node(rv.node).Point()
	if qSingle && rSingle {
		d.stats.BaseCases++
		d.lists[qPoint].Offer(int(rPoint), value)
		return
	}
	d.stats.Visited++

	// Child pairs are first bounded from the parent representatives so that
	// hopeless pairs are dropped before their kernel value is evaluated.
	qNorm := featureNorm(d.query.stat.SelfKernel(qv.node))
	rNorm := featureNorm(d.ref.stat.SelfKernel(rv.node))
	queryViews, refViews := expand(d.query, qv), expand(d.ref, rv)
	pairs := make([]pairing, 0, len(queryViews)*len(refViews))
	for _, q := range queryViews {
		qp := d.query.tree.Node(q.node).Point()
		qSpread := spread(d.query, qv, q)
		for _, r := range refViews {
			rp := d.ref.tree.Node(r.node).Point()
			v := value
			if qp != qPoint || rp != rPoint {
				rSpread := spread(d.ref, rv, r)
				inherited := value + qSpread*rSpread + qSpread*rNorm + rSpread*qNorm
				if inherited+boundSlack*(math.Abs(inherited)+1) < d.threshold(q) {
					d.stats.Prunes++
					continue
				}
				v = d.evaluate(qp, rp)
			}
			pairs = append(pairs, pairing{query: q, ref: r, value: v, bound: d.bound(q, r, v)})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].bound > pairs[b].bound })

	for _, p := range pairs {
		if p.bound < d.threshold(p.query) {
			d.stats.Prunes++
			continue
		}
		d.recurse(p.query, p.ref, p.value)
	}
	if !qSingle {
		d.refresh(qv.node)
	}
}
