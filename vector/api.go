package vector

import (
	"fmt"
	"sort"
)

// Vector is a point of fixed dimension stored either densely or sparsely.
type Vector interface {
	// Dim returns the logical dimension of the vector.
	Dim() int
	// NNZ returns the number of stored coordinates.
	NNZ() int
	// At returns the coordinate at position i.
	At(i int) float64
}

// Dense stores every coordinate.
type Dense []float64

// Dim returns the vector dimension.
func (d Dense) Dim() int { return len(d) }

// NNZ returns the number of stored coordinates.
func (d Dense) NNZ() int { return len(d) }

// At returns the i-th coordinate.
func (d Dense) At(i int) float64 { return d[i] }

// Sparse stores non-zero coordinates in ascending index order.
type Sparse struct {
	N       int
	Indices []int32
	Values  []float64
}

// NewSparse builds a sparse vector, sorting coordinates by index and
// dropping explicit zeros.
func NewSparse(dim int, indices []int32, values []float64) (*Sparse, error) {
	if len(indices) != len(values) {
		return nil, fmt.Errorf("vector: sparse indices/values length mismatch: %d != %d", len(indices), len(values))
	}
	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return indices[order[a]] < indices[order[b]] })
	s := &Sparse{N: dim}
	for _, o := range order {
		idx := indices[o]
		if idx < 0 || int(idx) >= dim {
			return nil, fmt.Errorf("vector: sparse index %d out of range [0,%d)", idx, dim)
		}
		if n := len(s.Indices); n > 0 && s.Indices[n-1] == idx {
			return nil, fmt.Errorf("vector: duplicate sparse index %d", idx)
		}
		if values[o] == 0 {
			continue
		}
		s.Indices = append(s.Indices, idx)
		s.Values = append(s.Values, values[o])
	}
	return s, nil
}

// Dim returns the logical dimension.
func (s *Sparse) Dim() int { return s.N }

// NNZ returns the number of non-zero coordinates.
func (s *Sparse) NNZ() int { return len(s.Indices) }

// At returns the i-th coordinate, zero when not stored.
func (s *Sparse) At(i int) float64 {
	pos := sort.Search(len(s.Indices), func(j int) bool { return int(s.Indices[j]) >= i })
	if pos < len(s.Indices) && int(s.Indices[pos]) == i {
		return s.Values[pos]
	}
	return 0
}

// ToDense expands a vector into dense storage.
func ToDense(v Vector) Dense {
	switch t := v.(type) {
	case Dense:
		return append(Dense(nil), t...)
	case *Sparse:
		out := make(Dense, t.N)
		for j, idx := range t.Indices {
			out[idx] = t.Values[j]
		}
		return out
	}
	out := make(Dense, v.Dim())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

// ToSparse compresses a vector, keeping only non-zero coordinates.
func ToSparse(v Vector) *Sparse {
	if s, ok := v.(*Sparse); ok {
		return &Sparse{N: s.N, Indices: append([]int32(nil), s.Indices...), Values: append([]float64(nil), s.Values...)}
	}
	s := &Sparse{N: v.Dim()}
	for i := 0; i < v.Dim(); i++ {
		if x := v.At(i); x != 0 {
			s.Indices = append(s.Indices, int32(i))
			s.Values = append(s.Values, x)
		}
	}
	return s
}
