package vector

import (
	"fmt"
	"math"
)

// Dot computes the inner product of two vectors of equal dimension.
// Products are accumulated in ascending coordinate order so that dense and
// sparse storage of the same data produce identical sums.
func Dot(a, b Vector) float64 {
	switch x := a.(type) {
	case Dense:
		switch y := b.(type) {
		case Dense:
			var s float64
			for i := range x {
				s += x[i] * y[i]
			}
			return s
		case *Sparse:
			return dotSparseDense(y, x)
		}
	case *Sparse:
		switch y := b.(type) {
		case Dense:
			return dotSparseDense(x, y)
		case *Sparse:
			return dotSparseSparse(x, y)
		}
	}
	var s float64
	for i := 0; i < a.Dim(); i++ {
		s += a.At(i) * b.At(i)
	}
	return s
}

func dotSparseDense(s *Sparse, d Dense) float64 {
	var sum float64
	for j, idx := range s.Indices {
		sum += s.Values[j] * d[idx]
	}
	return sum
}

func dotSparseSparse(a, b *Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// SquaredDistance computes the squared Euclidean distance between two vectors.
func SquaredDistance(a, b Vector) float64 {
	switch x := a.(type) {
	case Dense:
		switch y := b.(type) {
		case Dense:
			var s float64
			for i := range x {
				d := x[i] - y[i]
				s += d * d
			}
			return s
		case *Sparse:
			return sqDistDenseSparse(x, y)
		}
	case *Sparse:
		switch y := b.(type) {
		case Dense:
			return sqDistDenseSparse(y, x)
		case *Sparse:
			return sqDistSparseSparse(x, y)
		}
	}
	var s float64
	for i := 0; i < a.Dim(); i++ {
		d := a.At(i) - b.At(i)
		s += d * d
	}
	return s
}

func sqDistDenseSparse(d Dense, s *Sparse) float64 {
	var sum float64
	j := 0
	for i := range d {
		v := d[i]
		if j < len(s.Indices) && int(s.Indices[j]) == i {
			v -= s.Values[j]
			j++
		}
		sum += v * v
	}
	return sum
}

func sqDistSparseSparse(a, b *Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		var d float64
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			d = a.Values[i]
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			d = b.Values[j]
			j++
		default:
			d = a.Values[i] - b.Values[j]
			i++
			j++
		}
		sum += d * d
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v Vector) float64 { return math.Sqrt(Dot(v, v)) }

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different dimensions or if either
// vector has zero magnitude.
func CosineSimilarity(a, b Vector) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", a.Dim(), b.Dim())
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with zero-magnitude vector")
	}
	return Dot(a, b) / (na * nb), nil
}

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different dimensions.
func L2Distance(a, b Vector) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", a.Dim(), b.Dim())
	}
	return math.Sqrt(SquaredDistance(a, b)), nil
}
