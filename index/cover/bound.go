package cover

import (
	"github.com/viant/fastmks/internal/cover/tree"
)

// Statistic supplies the per-node quantities traversals use to bound the
// kernel value achievable beneath a node.
type Statistic interface {
	// SelfKernel returns K(p, p) for the node representative p.
	SelfKernel(node int32) float64
	// Radius returns an upper bound on the kernel-induced distance between
	// the node representative and any point beneath the node.
	Radius(node int32) float64
	// ParentDistance returns the kernel-induced distance between the node
	// representative and its parent's representative, 0 for the root.
	ParentDistance(node int32) float64
}

// Bound is the record cached per tree node.
type Bound struct {
	// SelfKernel is K(p, p) for the node representative.
	SelfKernel float64
	// Radius bounds the distance from the representative to its furthest
	// descendant.
	Radius float64
	// ParentDistance is the distance from the parent representative.
	ParentDistance float64
	computed       bool
	placed         bool
}

// Computed reports whether the radius has been derived.
func (b *Bound) Computed() bool { return b.computed }

// BoundCache holds one Bound per node of a tree. Radii are derived on first
// use and never change afterwards.
//
// Lazy derivation writes to the cache, so concurrent readers are only safe
// after Precompute, which fills every record in one single-threaded pass
// and freezes the cache.
type BoundCache struct {
	tree     *tree.Tree
	metric   *Metric
	strategy BoundStrategy
	records  []Bound
	frozen   bool
}

// NewBoundCache creates an empty cache for t, seeding self-kernels from m.
func NewBoundCache(t *tree.Tree, m *Metric, strategy BoundStrategy) *BoundCache {
	c := &BoundCache{tree: t, metric: m, strategy: strategy, records: make([]Bound, t.Len())}
	for id := range c.records {
		c.records[id].SelfKernel = m.SelfKernel(t.Node(int32(id)).Point())
	}
	return c
}

// SelfKernel returns K(p, p) for the node representative.
func (c *BoundCache) SelfKernel(node int32) float64 { return c.records[node].SelfKernel }

// Radius returns the furthest-descendant bound of node, deriving it once.
func (c *BoundCache) Radius(node int32) float64 {
	r := &c.records[node]
	if r.computed {
		return r.Radius
	}
	switch c.strategy {
	case BoundLevel:
		r.Radius = c.tree.LevelRadius(node)
	default:
		n := c.tree.Node(node)
		radius := 0.0
		for _, child := range n.Children() {
			d := c.ParentDistance(child) + c.Radius(child)
			if d > radius {
				radius = d
			}
		}
		r.Radius = radius
	}
	r.computed = true
	return r.Radius
}

// ParentDistance returns the distance between node and its parent
// representatives, deriving it once.
func (c *BoundCache) ParentDistance(node int32) float64 {
	r := &c.records[node]
	if r.placed {
		return r.ParentDistance
	}
	n := c.tree.Node(node)
	if parent := n.Parent(); parent != tree.None {
		r.ParentDistance = c.metric.Distance(c.tree.Node(parent).Point(), n.Point())
	}
	r.placed = true
	return r.ParentDistance
}

// Record returns the bound record of node, deriving its radius first.
func (c *BoundCache) Record(node int32) Bound {
	c.Radius(node)
	c.ParentDistance(node)
	return c.records[node]
}

// Precompute derives every record bottom-up and freezes the cache.
func (c *BoundCache) Precompute() {
	if c.frozen {
		return
	}
	for _, id := range c.tree.PostOrder() {
		c.ParentDistance(id)
		c.Radius(id)
	}
	c.frozen = true
}

// Frozen reports whether Precompute has completed.
func (c *BoundCache) Frozen() bool { return c.frozen }

var _ Statistic = (*BoundCache)(nil)
