package index

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Offer(t *testing.T) {
	l := NewList(3)
	assert.Equal(t, math.Inf(-1), l.Threshold())
	assert.True(t, l.Offer(0, 1.0))
	assert.True(t, l.Offer(1, 3.0))
	assert.False(t, l.Full())
	assert.True(t, l.Offer(2, 2.0))
	require.True(t, l.Full())
	assert.Equal(t, 1.0, l.Threshold())

	assert.False(t, l.Offer(3, 0.5), "below threshold")
	assert.True(t, l.Offer(4, 2.5))
	assert.Equal(t, []Candidate{{1, 3}, {4, 2.5}, {2, 2}}, l.Entries())
	assert.Equal(t, 2.0, l.Threshold())
}

func TestList_TieBreak(t *testing.T) {
	l := NewList(2)
	l.Offer(5, 1)
	l.Offer(7, 1)
	assert.False(t, l.Offer(9, 1), "equal value with larger index keeps the existing entry")
	assert.True(t, l.Offer(2, 1), "equal value with smaller index ranks higher")
	assert.Equal(t, []Candidate{{2, 1}, {5, 1}}, l.Entries())
}

// The final list does not depend on offer order.
func TestList_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(rng.Intn(20))
	}
	expected := make([]Candidate, len(values))
	for i, v := range values {
		expected[i] = Candidate{Index: i, Value: v}
	}
	sort.Slice(expected, func(a, b int) bool { return expected[a].ranksAbove(expected[b]) })
	expected = expected[:10]

	for trial := 0; trial < 5; trial++ {
		l := NewList(10)
		for _, i := range rng.Perm(len(values)) {
			l.Offer(i, values[i])
		}
		assert.Equal(t, expected, l.Entries())
		for i := 1; i < l.Len(); i++ {
			assert.GreaterOrEqual(t, l.Entries()[i-1].Value, l.Entries()[i].Value)
		}
	}
}

func TestList_Reset(t *testing.T) {
	l := NewList(1)
	l.Offer(1, 1)
	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.False(t, NewList(0).Offer(1, 1))
}
