package dataset

import (
	"fmt"

	"github.com/viant/fastmks/vector"
)

// Dataset is an ordered sequence of points of equal dimension.
type Dataset interface {
	// Len returns the number of points.
	Len() int
	// Dim returns the dimension shared by every point.
	Dim() int
	// At returns the i-th point.
	At(i int) vector.Vector
}

// Dense stores every point as a vector.Dense column.
type Dense struct {
	dim  int
	cols []vector.Dense
}

// NewDense creates a zero-filled dense dataset with n points of dimension dim.
func NewDense(dim, n int) *Dense {
	d := &Dense{dim: dim, cols: make([]vector.Dense, n)}
	backing := make([]float64, dim*n)
	for i := range d.cols {
		d.cols[i] = backing[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return d
}

// FromColumns builds a dense dataset from columns of equal length.
func FromColumns(cols ...[]float64) (*Dense, error) {
	if len(cols) == 0 {
		return &Dense{}, nil
	}
	dim := len(cols[0])
	d := NewDense(dim, len(cols))
	for i, c := range cols {
		if len(c) != dim {
			return nil, fmt.Errorf("dataset: inconsistent column dims %d vs %d", len(c), dim)
		}
		copy(d.cols[i], c)
	}
	return d, nil
}

// Len returns the number of points.
func (d *Dense) Len() int { return len(d.cols) }

// Dim returns the point dimension.
func (d *Dense) Dim() int { return d.dim }

// At returns the i-th point.
func (d *Dense) At(i int) vector.Vector { return d.cols[i] }

// Column returns the i-th column for in-place edits.
func (d *Dense) Column(i int) vector.Dense { return d.cols[i] }

// Sparse stores every point as a compressed vector.Sparse column.
type Sparse struct {
	dim  int
	cols []*vector.Sparse
}

// NewSparse creates a sparse dataset with n all-zero points of dimension dim.
func NewSparse(dim, n int) *Sparse {
	s := &Sparse{dim: dim, cols: make([]*vector.Sparse, n)}
	for i := range s.cols {
		s.cols[i] = &vector.Sparse{N: dim}
	}
	return s
}

// Len returns the number of points.
func (s *Sparse) Len() int { return len(s.cols) }

// Dim returns the point dimension.
func (s *Sparse) Dim() int { return s.dim }

// At returns the i-th point.
func (s *Sparse) At(i int) vector.Vector { return s.cols[i] }

// Set replaces the i-th point.
func (s *Sparse) Set(i int, v *vector.Sparse) error {
	if v.N != s.dim {
		return fmt.Errorf("dataset: sparse column dim %d != dataset dim %d", v.N, s.dim)
	}
	s.cols[i] = v
	return nil
}

// Density returns the fraction of stored coordinates.
func (s *Sparse) Density() float64 {
	if s.dim == 0 || len(s.cols) == 0 {
		return 0
	}
	nnz := 0
	for _, c := range s.cols {
		nnz += c.NNZ()
	}
	return float64(nnz) / float64(s.dim*len(s.cols))
}

// FromVectors builds a dataset from points, keeping a sparse representation
// only when every point is sparse.
func FromVectors(points []vector.Vector) (Dataset, error) {
	if len(points) == 0 {
		return &Dense{}, nil
	}
	dim := points[0].Dim()
	allSparse := true
	for _, p := range points {
		if p.Dim() != dim {
			return nil, fmt.Errorf("dataset: inconsistent vector dims %d vs %d", p.Dim(), dim)
		}
		if _, ok := p.(*vector.Sparse); !ok {
			allSparse = false
		}
	}
	if allSparse {
		s := &Sparse{dim: dim, cols: make([]*vector.Sparse, len(points))}
		for i, p := range points {
			s.cols[i] = p.(*vector.Sparse)
		}
		return s, nil
	}
	d := &Dense{dim: dim, cols: make([]vector.Dense, len(points))}
	for i, p := range points {
		if dv, ok := p.(vector.Dense); ok {
			d.cols[i] = dv
			continue
		}
		d.cols[i] = vector.ToDense(p)
	}
	return d, nil
}

// ToDense copies any dataset into dense storage.
func ToDense(ds Dataset) *Dense {
	d := &Dense{dim: ds.Dim(), cols: make([]vector.Dense, ds.Len())}
	for i := range d.cols {
		d.cols[i] = vector.ToDense(ds.At(i))
	}
	return d
}

// ToSparse copies any dataset into sparse storage.
func ToSparse(ds Dataset) *Sparse {
	s := &Sparse{dim: ds.Dim(), cols: make([]*vector.Sparse, ds.Len())}
	for i := range s.cols {
		s.cols[i] = vector.ToSparse(ds.At(i))
	}
	return s
}

// Kind names the storage representation of a dataset.
func Kind(ds Dataset) string {
	if _, ok := ds.(*Sparse); ok {
		return "sparse"
	}
	return "dense"
}
