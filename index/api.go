package index

import "github.com/viant/fastmks/dataset"

// Index answers max-kernel queries against a fixed reference set.
type Index interface {
	// Search returns, for every query point, the k reference points with the
	// largest kernel value, as k x len(queries) column-major matrices.
	// k must be positive and not exceed the reference set size, and queries
	// must share the reference dimension.
	Search(queries dataset.Dataset, k int) (*Result, error)

	// References returns the indexed reference set.
	References() dataset.Dataset
}
