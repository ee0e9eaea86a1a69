package cover

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/index/bruteforce"
	"github.com/viant/fastmks/kernel"
)

// requireSameResult checks that two results agree on every index and that
// values agree within 1e-5 relative.
func requireSameResult(t *testing.T, expected, actual *index.Result) {
	t.Helper()
	require.Equal(t, expected.K, actual.K)
	require.Equal(t, expected.Queries, actual.Queries)
	for q := 0; q < expected.Queries; q++ {
		for r := 0; r < expected.K; r++ {
			require.Equal(t, expected.Index(r, q), actual.Index(r, q), "query %d rank %d", q, r)
			want, got := expected.Value(r, q), actual.Value(r, q)
			if want == 0 {
				require.InDelta(t, want, got, 1e-15, "query %d rank %d", q, r)
				continue
			}
			require.InEpsilon(t, want, got, 1e-5, "query %d rank %d", q, r)
		}
	}
}

func requireOrdered(t *testing.T, result *index.Result) {
	t.Helper()
	for q := 0; q < result.Queries; q++ {
		_, values := result.Column(q)
		for r := 1; r < len(values); r++ {
			require.GreaterOrEqual(t, values[r-1], values[r], "query %d rank %d", q, r)
		}
	}
}

func naive(t *testing.T, refs, queries dataset.Dataset, k kernel.Kernel, n int) *index.Result {
	t.Helper()
	idx, err := bruteforce.New(refs, k)
	require.NoError(t, err)
	result, err := idx.Search(queries, n)
	require.NoError(t, err)
	return result
}

func TestIndex_SingleTreeMatchesNaive(t *testing.T) {
	refs := dataset.Randn(rand.New(rand.NewSource(1)), 5, 1000)
	k := kernel.Linear{}
	idx, err := New(refs, k, WithTraversal(SingleTree))
	require.NoError(t, err)
	actual, err := idx.Search(refs, 10)
	require.NoError(t, err)
	requireSameResult(t, naive(t, refs, refs, k, 10), actual)
	requireOrdered(t, actual)
	assert.Less(t, actual.Stats.Evaluations, uint64(1000*1000))
}

func TestIndex_DualTreePrunesBeforeEvaluating(t *testing.T) {
	refs := dataset.Randn(rand.New(rand.NewSource(21)), 3, 1500)
	k := kernel.Linear{}
	idx, err := New(refs, k)
	require.NoError(t, err)
	actual, err := idx.SearchDual(idx, 1)
	require.NoError(t, err)
	requireSameResult(t, naive(t, refs, refs, k, 1), actual)
	assert.Less(t, actual.Stats.Evaluations, uint64(1500*1500))
	assert.NotZero(t, actual.Stats.Prunes)
}

func TestIndex_DualTreeMatchesNaive(t *testing.T) {
	if testing.Short() {
		t.Skip("large dataset")
	}
	refs := dataset.Randn(rand.New(rand.NewSource(2)), 10, 5000)
	k := kernel.Linear{}
	idx, err := New(refs, k)
	require.NoError(t, err)
	actual, err := idx.Search(refs, 10)
	require.NoError(t, err)
	requireSameResult(t, naive(t, refs, refs, k, 10), actual)
	requireOrdered(t, actual)
}

func TestIndex_DualTreeMatchesSingleTree_Polynomial(t *testing.T) {
	if testing.Short() {
		t.Skip("large dataset")
	}
	refs := dataset.Randu(rand.New(rand.NewSource(3)), 8, 5000)
	k := kernel.NewPolynomial(5, 2.5)
	dual, err := New(refs, k)
	require.NoError(t, err)
	single, err := New(refs, k, WithTraversal(SingleTree))
	require.NoError(t, err)

	expected, err := single.Search(refs, 10)
	require.NoError(t, err)
	actual, err := dual.Search(refs, 10)
	require.NoError(t, err)
	requireSameResult(t, expected, actual)
}

func TestIndex_SparseMatchesDense(t *testing.T) {
	testCases := []struct {
		description string
		kernel      kernel.Kernel
	}{
		{description: "linear", kernel: kernel.Linear{}},
		{description: "polynomial degree 3", kernel: kernel.NewPolynomial(3, 0)},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			sparse := dataset.Sprandu(rand.New(rand.NewSource(4)), 10, 100, 0.3)
			dense := dataset.ToDense(sparse)

			for i := 0; i < sparse.Len(); i++ {
				for j := 0; j < sparse.Len(); j++ {
					s := testCase.kernel.Evaluate(sparse.At(i), sparse.At(j))
					d := testCase.kernel.Evaluate(dense.At(i), dense.At(j))
					if math.Abs(s) < 1e-10 {
						require.InDelta(t, 0, d, 1e-10)
						continue
					}
					require.InEpsilon(t, d, s, 1e-5)
				}
			}

			for _, traversal := range []Traversal{SingleTree, DualTree} {
				sparseIndex, err := New(sparse, testCase.kernel, WithTraversal(traversal))
				require.NoError(t, err)
				denseIndex, err := New(dense, testCase.kernel, WithTraversal(traversal))
				require.NoError(t, err)
				expected, err := denseIndex.Search(dense, 3)
				require.NoError(t, err)
				actual, err := sparseIndex.Search(sparse, 3)
				require.NoError(t, err)
				requireSameResult(t, expected, actual)
				requireSameResult(t, naive(t, dense, dense, testCase.kernel, 3), actual)
			}
		})
	}
}

func TestIndex_ModesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	refs := dataset.Randn(rng, 6, 400)
	queries := dataset.Randn(rng, 6, 150)
	testCases := []struct {
		description string
		kernel      kernel.Kernel
		options     []Option
	}{
		{description: "linear dual", kernel: kernel.Linear{}},
		{description: "linear single", kernel: kernel.Linear{}, options: []Option{WithTraversal(SingleTree)}},
		{description: "linear level bound", kernel: kernel.Linear{}, options: []Option{WithBoundStrategy(BoundLevel)}},
		{description: "linear base 2", kernel: kernel.Linear{}, options: []Option{WithBase(2)}},
		{description: "gaussian dual", kernel: kernel.Gaussian{Bandwidth: 1.5}},
		{description: "gaussian single level", kernel: kernel.Gaussian{Bandwidth: 1.5}, options: []Option{WithTraversal(SingleTree), WithBoundStrategy(BoundLevel)}},
		{description: "polynomial dual", kernel: kernel.NewPolynomial(2, 1)},
		{description: "cosine single", kernel: kernel.Cosine{}, options: []Option{WithTraversal(SingleTree)}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			idx, err := New(refs, testCase.kernel, testCase.options...)
			require.NoError(t, err)
			for _, k := range []int{1, 5} {
				actual, err := idx.Search(queries, k)
				require.NoError(t, err)
				requireSameResult(t, naive(t, refs, queries, testCase.kernel, k), actual)
				requireOrdered(t, actual)
			}
		})
	}
}

func TestIndex_ParallelSingleTree(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	refs := dataset.Randn(rng, 4, 600)
	queries := dataset.Randn(rng, 4, 300)
	k := kernel.Linear{}

	sequential, err := New(refs, k, WithTraversal(SingleTree))
	require.NoError(t, err)
	parallel, err := New(refs, k, WithTraversal(SingleTree), WithParallelism(4))
	require.NoError(t, err)

	expected, err := sequential.Search(queries, 7)
	require.NoError(t, err)
	actual, err := parallel.Search(queries, 7)
	require.NoError(t, err)
	assert.True(t, parallel.Bounds().Frozen())
	requireSameResult(t, expected, actual)
	assert.Equal(t, expected.Stats, actual.Stats)
}

func TestIndex_DualTreeWithDuplicates(t *testing.T) {
	base := dataset.Randn(rand.New(rand.NewSource(9)), 3, 20)
	cols := make([][]float64, 0, 60)
	for i := 0; i < base.Len(); i++ {
		p := base.Column(i)
		cols = append(cols, p, p, p)
	}
	refs, err := dataset.FromColumns(cols...)
	require.NoError(t, err)
	for _, traversal := range []Traversal{SingleTree, DualTree} {
		idx, err := New(refs, kernel.Linear{}, WithTraversal(traversal))
		require.NoError(t, err)
		actual, err := idx.Search(refs, 4)
		require.NoError(t, err)
		requireSameResult(t, naive(t, refs, refs, kernel.Linear{}, 4), actual)
	}
}

func TestIndex_SinglePoint(t *testing.T) {
	refs, err := dataset.FromColumns([]float64{1, 2})
	require.NoError(t, err)
	queries, err := dataset.FromColumns([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	for _, traversal := range []Traversal{SingleTree, DualTree} {
		idx, err := New(refs, kernel.Linear{}, WithTraversal(traversal))
		require.NoError(t, err)
		result, err := idx.Search(queries, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 0}, result.Indices)
		assert.Equal(t, []float64{1, 2}, result.Values)
	}
}

func TestIndex_Errors(t *testing.T) {
	refs := dataset.Randn(rand.New(rand.NewSource(7)), 3, 10)
	_, err := New(dataset.NewDense(3, 0), kernel.Linear{})
	assert.True(t, errors.Is(err, index.ErrInvalidArgument))
	_, err = New(refs, nil)
	assert.True(t, errors.Is(err, index.ErrInvalidArgument))

	idx, err := New(refs, kernel.Linear{})
	require.NoError(t, err)
	_, err = idx.Search(refs, 0)
	assert.True(t, errors.Is(err, index.ErrInvalidArgument))
	_, err = idx.Search(refs, 11)
	assert.True(t, errors.Is(err, index.ErrInvalidArgument))
	_, err = idx.Search(dataset.Randn(rand.New(rand.NewSource(8)), 4, 2), 1)
	assert.True(t, errors.Is(err, index.ErrDimensionMismatch))
	_, err = idx.SearchDual(nil, 1)
	assert.True(t, errors.Is(err, index.ErrInvalidArgument))

	result, err := idx.Search(dataset.NewDense(3, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Queries)
}
