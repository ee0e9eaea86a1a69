package dataset

import (
	"math/rand"

	"github.com/viant/fastmks/vector"
)

// Randn returns n points of dimension dim drawn from a standard normal
// distribution.
func Randn(rng *rand.Rand, dim, n int) *Dense {
	d := NewDense(dim, n)
	for _, c := range d.cols {
		for j := range c {
			c[j] = rng.NormFloat64()
		}
	}
	return d
}

// Randu returns n points of dimension dim drawn uniformly from [0, 1).
func Randu(rng *rand.Rand, dim, n int) *Dense {
	d := NewDense(dim, n)
	for _, c := range d.cols {
		for j := range c {
			c[j] = rng.Float64()
		}
	}
	return d
}

// Sprandu returns n sparse points of dimension dim where every coordinate is
// non-zero with probability density and non-zero values are uniform in (0, 1).
func Sprandu(rng *rand.Rand, dim, n int, density float64) *Sparse {
	s := NewSparse(dim, n)
	for i := range s.cols {
		col := &vector.Sparse{N: dim}
		for j := 0; j < dim; j++ {
			if rng.Float64() >= density {
				continue
			}
			v := rng.Float64()
			for v == 0 {
				v = rng.Float64()
			}
			col.Indices = append(col.Indices, int32(j))
			col.Values = append(col.Values, v)
		}
		s.cols[i] = col
	}
	return s
}
