package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/fastmks/dataset"
)

func TestResult_SetColumn(t *testing.T) {
	r := NewResult(2, 3)
	l := NewList(2)
	l.Offer(4, 0.5)
	l.Offer(8, 1.5)
	require.NoError(t, r.SetColumn(1, l))
	assert.Equal(t, 8, r.Index(0, 1))
	assert.Equal(t, 4, r.Index(1, 1))
	assert.Equal(t, 1.5, r.Value(0, 1))
	indices, values := r.Column(1)
	assert.Equal(t, []int{8, 4}, indices)
	assert.Equal(t, []float64{1.5, 0.5}, values)

	short := NewList(2)
	short.Offer(1, 1)
	assert.Error(t, r.SetColumn(0, short))
}

func TestStats_Add(t *testing.T) {
	var s Stats
	s.Add(Stats{Evaluations: 3, Prunes: 1})
	s.Add(Stats{Evaluations: 2, BaseCases: 4, Visited: 7})
	assert.Equal(t, Stats{Evaluations: 5, Prunes: 1, BaseCases: 4, Visited: 7}, s)
}

func TestValidateSearch(t *testing.T) {
	refs, err := dataset.FromColumns([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, err)
	queries3, err := dataset.FromColumns([]float64{1, 2, 3})
	require.NoError(t, err)

	testCases := []struct {
		description string
		refs        dataset.Dataset
		queries     dataset.Dataset
		k           int
		expectErr   error
	}{
		{description: "valid", refs: refs, queries: refs, k: 2},
		{description: "zero k", refs: refs, queries: refs, k: 0, expectErr: ErrInvalidArgument},
		{description: "k too large", refs: refs, queries: refs, k: 3, expectErr: ErrInvalidArgument},
		{description: "empty references", refs: dataset.NewDense(2, 0), queries: refs, k: 1, expectErr: ErrInvalidArgument},
		{description: "dimension mismatch", refs: refs, queries: queries3, k: 1, expectErr: ErrDimensionMismatch},
	}
	for _, testCase := range testCases {
		err := ValidateSearch(testCase.refs, testCase.queries, testCase.k)
		if testCase.expectErr == nil {
			assert.NoError(t, err, testCase.description)
			continue
		}
		assert.True(t, errors.Is(err, testCase.expectErr), testCase.description)
	}
}
