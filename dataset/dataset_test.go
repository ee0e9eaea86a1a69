package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/fastmks/vector"
)

func TestFromColumns(t *testing.T) {
	d, err := FromColumns([]float64{1, 2}, []float64{3, 4}, []float64{5, 6})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 2, d.Dim())
	assert.Equal(t, vector.Dense{3, 4}, d.At(1))

	_, err = FromColumns([]float64{1, 2}, []float64{3})
	assert.Error(t, err)
}

func TestDenseSparseConversion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := Sprandu(rng, 10, 50, 0.3)
	require.Equal(t, 50, s.Len())
	require.Equal(t, 10, s.Dim())
	assert.Greater(t, s.Density(), 0.1)
	assert.Less(t, s.Density(), 0.5)

	d := ToDense(s)
	back := ToSparse(d)
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, vector.ToDense(s.At(i)), d.At(i))
		assert.Equal(t, s.At(i), back.At(i))
	}
	assert.Equal(t, "sparse", Kind(s))
	assert.Equal(t, "dense", Kind(d))
}

func TestFromVectors(t *testing.T) {
	sp := vector.ToSparse(vector.Dense{0, 1, 0})
	ds, err := FromVectors([]vector.Vector{sp, sp})
	require.NoError(t, err)
	assert.Equal(t, "sparse", Kind(ds))

	ds, err = FromVectors([]vector.Vector{sp, vector.Dense{1, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, "dense", Kind(ds))
	assert.Equal(t, vector.Dense{0, 1, 0}, ds.At(0))

	_, err = FromVectors([]vector.Vector{sp, vector.Dense{1}})
	assert.Error(t, err)
}

func TestRandomGenerators(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := Randn(rng, 5, 100)
	u := Randu(rng, 8, 100)
	assert.Equal(t, 100, n.Len())
	assert.Equal(t, 8, u.Dim())
	for i := 0; i < u.Len(); i++ {
		for _, x := range u.Column(i) {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.Less(t, x, 1.0)
		}
	}
}
