package index

import (
	"fmt"
	"sync/atomic"
)

// Result holds search output as two parallel column-major matrices of K
// rows and one column per query: reference indices and kernel values, each
// column ordered by value descending.
type Result struct {
	K       int
	Queries int
	Indices []int
	Values  []float64
	Stats   Stats
}

// NewResult allocates a result for k neighbors of the given number of queries.
func NewResult(k, queries int) *Result {
	return &Result{
		K:       k,
		Queries: queries,
		Indices: make([]int, k*queries),
		Values:  make([]float64, k*queries),
	}
}

// Index returns the reference index at rank for query.
func (r *Result) Index(rank, query int) int { return r.Indices[query*r.K+rank] }

// Value returns the kernel value at rank for query.
func (r *Result) Value(rank, query int) float64 { return r.Values[query*r.K+rank] }

// Column returns the indices and values of a query, best first.
func (r *Result) Column(query int) ([]int, []float64) {
	start := query * r.K
	return r.Indices[start : start+r.K], r.Values[start : start+r.K]
}

// SetColumn copies a finished candidate list into the query's column.
func (r *Result) SetColumn(query int, list *List) error {
	if list.Len() != r.K {
		return fmt.Errorf("index: query %d holds %d candidates, want %d", query, list.Len(), r.K)
	}
	indices, values := r.Column(query)
	for i, c := range list.Entries() {
		indices[i] = c.Index
		values[i] = c.Value
	}
	return nil
}

// Stats counts traversal work.
type Stats struct {
	// Evaluations is the number of kernel evaluations between queries and references.
	Evaluations uint64
	// Prunes is the number of discarded nodes (single-tree) or node pairs (dual-tree).
	Prunes uint64
	// BaseCases is the number of query-reference pairs offered to candidate lists.
	BaseCases uint64
	// Visited is the number of expanded nodes or node pairs.
	Visited uint64
}

// Add accumulates other into s. It is safe for concurrent use.
func (s *Stats) Add(other Stats) {
	atomic.AddUint64(&s.Evaluations, other.Evaluations)
	atomic.AddUint64(&s.Prunes, other.Prunes)
	atomic.AddUint64(&s.BaseCases, other.BaseCases)
	atomic.AddUint64(&s.Visited, other.Visited)
}
