package kernel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/vector"
)

func TestKernels_KnownValues(t *testing.T) {
	a := vector.Dense{1, 2, 0}
	b := vector.Dense{3, 0, 4}

	assert.Equal(t, 3.0, Linear{}.Evaluate(a, b))
	assert.Equal(t, 64.0, NewPolynomial(3, 1).Evaluate(a, b))
	assert.Equal(t, 9.0, NewPolynomial(0, 0).Evaluate(a, b))
	// |a-b|² = 4 + 4 + 16 = 24
	assert.InDelta(t, math.Exp(-12), Gaussian{Bandwidth: 1}.Evaluate(a, b), 1e-15)
	assert.InDelta(t, math.Exp(-math.Sqrt(24)/2), Laplacian{Bandwidth: 2}.Evaluate(a, b), 1e-15)
	assert.InDelta(t, 1-24.0/36, Epanechnikov{Bandwidth: 6}.Evaluate(a, b), 1e-15)
	assert.Equal(t, 0.0, Epanechnikov{Bandwidth: 1}.Evaluate(a, b))
	assert.InDelta(t, 1-math.Sqrt(24)/10, Triangular{Bandwidth: 10}.Evaluate(a, b), 1e-15)
	assert.InDelta(t, 3/(math.Sqrt(5)*5), Cosine{}.Evaluate(a, b), 1e-15)
	assert.Equal(t, 0.0, Cosine{}.Evaluate(a, vector.Dense{0, 0, 0}))
	assert.InDelta(t, math.Tanh(0.5*3-1), HyperbolicTangent{Scale: 0.5, Offset: -1}.Evaluate(a, b), 1e-15)
}

func TestKernels_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ds := dataset.Randn(rng, 6, 20)
	kernels := []Kernel{
		Linear{}, NewPolynomial(3, 0.5), Gaussian{Bandwidth: 2}, Laplacian{Bandwidth: 2},
		Epanechnikov{Bandwidth: 4}, Triangular{Bandwidth: 4}, Cosine{}, HyperbolicTangent{Scale: 1},
	}
	for _, k := range kernels {
		for i := 0; i < ds.Len(); i++ {
			for j := 0; j < ds.Len(); j++ {
				assert.Equal(t, k.Evaluate(ds.At(i), ds.At(j)), k.Evaluate(ds.At(j), ds.At(i)))
			}
		}
	}
}

// Pairwise evaluations agree between sparse and dense storage of the same
// logical points.
func TestKernels_SparseDenseAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	sparse := dataset.Sprandu(rng, 10, 100, 0.3)
	dense := dataset.ToDense(sparse)
	pk := NewPolynomial(3, 0)

	for i := 0; i < 100; i++ {
		for j := 0; j < 100; j++ {
			sv := pk.Evaluate(sparse.At(i), sparse.At(j))
			dv := pk.Evaluate(dense.At(i), dense.At(j))
			if math.Abs(sv) < 1e-10 {
				assert.InDelta(t, 0, dv, 1e-10)
				continue
			}
			assert.InEpsilon(t, dv, sv, 1e-7)
		}
	}
}

func TestNew(t *testing.T) {
	testCases := []struct {
		description string
		cfg         Config
		expect      Kernel
		expectErr   bool
	}{
		{description: "default linear", cfg: Config{}, expect: Linear{}},
		{description: "polynomial", cfg: Config{Name: "Polynomial", Degree: 5, Offset: 2.5}, expect: Polynomial{Degree: 5, Offset: 2.5}},
		{description: "polynomial default degree", cfg: Config{Name: "poly"}, expect: Polynomial{Degree: 2}},
		{description: "gaussian default bandwidth", cfg: Config{Name: "gaussian"}, expect: Gaussian{Bandwidth: 1}},
		{description: "tanh default scale", cfg: Config{Name: "tanh", Offset: 1}, expect: HyperbolicTangent{Scale: 1, Offset: 1}},
		{description: "cosine", cfg: Config{Name: "cosine"}, expect: Cosine{}},
		{description: "negative bandwidth", cfg: Config{Name: "triangular", Bandwidth: -1}, expectErr: true},
		{description: "negative gaussian bandwidth", cfg: Config{Name: "gaussian", Bandwidth: -0.5}, expectErr: true},
		{description: "nan laplacian bandwidth", cfg: Config{Name: "laplacian", Bandwidth: math.NaN()}, expectErr: true},
		{description: "epanechnikov default bandwidth", cfg: Config{Name: "epanechnikov"}, expect: Epanechnikov{Bandwidth: 1}},
		{description: "unknown", cfg: Config{Name: "sigmoidal"}, expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := New(testCase.cfg)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestNew_BandwidthKernelsHaveUnitSelfKernel(t *testing.T) {
	x := vector.Dense{0.5, -2, 3}
	for _, name := range []string{"gaussian", "laplacian", "epanechnikov", "triangular"} {
		k, err := New(Config{Name: name})
		require.NoError(t, err, name)
		assert.Equal(t, 1.0, k.Evaluate(x, x), name)
	}
	// the zero value skips validation
	assert.True(t, math.IsNaN(Gaussian{}.Evaluate(x, x)))
}
