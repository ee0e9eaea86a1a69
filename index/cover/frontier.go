package cover

import "container/heap"

// frontierEntry is a tree node awaiting expansion with its kernel bound.
type frontierEntry struct {
	node  int32
	bound float64
}

// frontier is a max-heap of nodes ordered by bound; ties pop the lower node
// id first so traversal order is deterministic.
type frontier []frontierEntry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].bound != f[j].bound {
		return f[i].bound > f[j].bound
	}
	return f[i].node < f[j].node
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) { *f = append(*f, x.(frontierEntry)) }

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

func (f *frontier) push(node int32, bound float64) {
	heap.Push(f, frontierEntry{node: node, bound: bound})
}

func (f *frontier) pop() frontierEntry { return heap.Pop(f).(frontierEntry) }

func (f *frontier) reset() { *f = (*f)[:0] }
