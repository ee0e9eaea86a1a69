package tree

import "math"

// None marks a missing node reference (the root's parent).
const None int32 = -1

// Node represents a cover-tree node stored in the tree arena. Parent and
// children are arena ids, never pointers.
type Node struct {
	point     int32
	level     int32
	baseLevel float64
	parent    int32
	children  []int32
}

// NewNode constructs a node for the provided point and level.
func NewNode(point, level, parent int32, base float64) Node {
	return Node{
		point:     point,
		level:     level,
		baseLevel: math.Pow(base, float64(level)),
		parent:    parent,
	}
}

// Point returns the index of the node's representative in its dataset.
func (n *Node) Point() int32 { return n.point }

// Level returns the node scale exponent.
func (n *Node) Level() int32 { return n.level }

// Scale returns base^level, the covering radius for the node's children.
func (n *Node) Scale() float64 { return n.baseLevel }

// Parent returns the parent node id or None for the root.
func (n *Node) Parent() int32 { return n.parent }

// Children returns child node ids in insertion order.
func (n *Node) Children() []int32 { return n.children }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }
