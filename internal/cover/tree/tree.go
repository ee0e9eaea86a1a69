package tree

import (
	"fmt"
	"math"
)

// DefaultBase is the cover-tree expansion constant used when none is given.
const DefaultBase = 1.3

// DistanceFunc computes the distance between two points addressed by their
// dataset indices.
type DistanceFunc func(i, j int32) float64

// BoundStrategy selects how a node's furthest-descendant radius is derived.
type BoundStrategy int

const (
	// BoundPerNode derives the radius from children distances (tighter pruning).
	BoundPerNode BoundStrategy = iota
	// BoundLevel uses a geometric bound derived from the node level.
	BoundLevel
)

func (s BoundStrategy) String() string {
	if s == BoundLevel {
		return "level"
	}
	return "per_node"
}

// Tree is an arena-backed cover tree. Node i always holds point i, and the
// first point of the dataset is the root.
//
// Invariants: every child c of node n satisfies d(n, c) <= base^level(n)
// and level(c) < level(n). Consequently every descendant of n lies within
// base^(level(n)+1)/(base-1) of n.
type Tree struct {
	nodes    []Node
	base     float64
	distance DistanceFunc
	depth    int
}

// Build constructs a cover tree over size points in index order.
func Build(size int, distance DistanceFunc, base float64) (*Tree, error) {
	if size <= 0 {
		return nil, fmt.Errorf("tree: cannot build over %d points", size)
	}
	if distance == nil {
		return nil, fmt.Errorf("tree: distance function is nil")
	}
	if base <= 1 {
		base = DefaultBase
	}
	t := &Tree{nodes: make([]Node, 0, size), base: base, distance: distance}

	maxDist := 0.0
	for i := 1; i < size; i++ {
		if d := distance(0, int32(i)); d > maxDist {
			maxDist = d
		}
	}
	t.nodes = append(t.nodes, NewNode(0, t.rootLevel(maxDist), None, base))
	t.depth = 1
	for i := 1; i < size; i++ {
		t.insert(int32(i))
	}
	return t, nil
}

// rootLevel returns the smallest level whose scale covers maxDist.
func (t *Tree) rootLevel(maxDist float64) int32 {
	if maxDist <= 0 || math.IsNaN(maxDist) {
		return 0
	}
	if math.IsInf(maxDist, 1) {
		return math.MaxInt32 / 2
	}
	level := int32(math.Ceil(math.Log(maxDist) / math.Log(t.base)))
	for math.Pow(t.base, float64(level)) < maxDist {
		level++
	}
	return level
}

func (t *Tree) insert(point int32) {
	current := int32(0)
	depth := 1
	for {
		best := None
		bestDist := math.Inf(1)
		for _, c := range t.nodes[current].children {
			child := &t.nodes[c]
			d := t.distance(point, child.point)
			if d <= child.baseLevel && d < bestDist {
				best, bestDist = c, d
			}
		}
		depth++
		if best == None {
			id := int32(len(t.nodes))
			t.nodes = append(t.nodes, NewNode(point, t.nodes[current].level-1, current, t.base))
			t.nodes[current].children = append(t.nodes[current].children, id)
			if depth > t.depth {
				t.depth = depth
			}
			return
		}
		current = best
	}
}

// Root returns the root node id.
func (t *Tree) Root() int32 { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given id.
func (t *Tree) Node(id int32) *Node { return &t.nodes[id] }

// Base returns the expansion constant.
func (t *Tree) Base() float64 { return t.base }

// Depth returns the number of levels on the longest root-to-leaf path.
func (t *Tree) Depth() int { return t.depth }

// Distance evaluates the tree's distance function.
func (t *Tree) Distance(i, j int32) float64 { return t.distance(i, j) }

// LevelRadius returns the geometric upper bound on the distance between a
// node and any of its descendants.
func (t *Tree) LevelRadius(id int32) float64 {
	n := &t.nodes[id]
	if n.IsLeaf() {
		return 0
	}
	return n.baseLevel * t.base / (t.base - 1)
}

// PostOrder returns node ids with every child listed before its parent.
func (t *Tree) PostOrder() []int32 {
	out := make([]int32, 0, len(t.nodes))
	type frame struct {
		id   int32
		next int
	}
	stack := []frame{{id: 0}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := t.nodes[top.id].children
		if top.next < len(children) {
			c := children[top.next]
			top.next++
			stack = append(stack, frame{id: c})
			continue
		}
		out = append(out, top.id)
		stack = stack[:len(stack)-1]
	}
	return out
}

// Descendants returns the points held under id, including its own.
func (t *Tree) Descendants(id int32) []int32 {
	var out []int32
	stack := []int32{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, t.nodes[n].point)
		stack = append(stack, t.nodes[n].children...)
	}
	return out
}
