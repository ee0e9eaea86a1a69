package index

import (
	"math"
	"sort"
)

// Candidate is a reference point offered to a query's candidate list.
type Candidate struct {
	Index int
	Value float64
}

// ranksAbove orders candidates by value descending, then index ascending.
func (c Candidate) ranksAbove(o Candidate) bool {
	if c.Value != o.Value {
		return c.Value > o.Value
	}
	return c.Index < o.Index
}

// List keeps the best k candidates of a single query, sorted by value
// descending with ties broken by ascending reference index. The order does
// not depend on the sequence of offers, so every traversal strategy yields
// the same list for the same data.
type List struct {
	k       int
	entries []Candidate
}

// NewList creates an empty list with capacity k.
func NewList(k int) *List {
	return &List{k: k, entries: make([]Candidate, 0, k)}
}

// Offer inserts the candidate when the list has room or when it ranks above
// the current k-th entry, evicting that entry. It reports whether the list
// changed.
func (l *List) Offer(index int, value float64) bool {
	c := Candidate{Index: index, Value: value}
	n := len(l.entries)
	if n == l.k {
		if l.k == 0 || !c.ranksAbove(l.entries[n-1]) {
			return false
		}
		l.entries = l.entries[:n-1]
		n--
	}
	pos := sort.Search(n, func(i int) bool { return c.ranksAbove(l.entries[i]) })
	l.entries = append(l.entries, Candidate{})
	copy(l.entries[pos+1:], l.entries[pos:n])
	l.entries[pos] = c
	return true
}

// Full reports whether the list holds k entries.
func (l *List) Full() bool { return len(l.entries) == l.k }

// Threshold returns the k-th best value, or -Inf while the list is not full.
// A candidate must reach this value to enter the list.
func (l *List) Threshold() float64 {
	if len(l.entries) < l.k || l.k == 0 {
		return math.Inf(-1)
	}
	return l.entries[l.k-1].Value
}

// Len returns the number of held entries.
func (l *List) Len() int { return len(l.entries) }

// Entries returns the held entries, best first.
func (l *List) Entries() []Candidate { return l.entries }

// Reset empties the list, keeping its capacity.
func (l *List) Reset() { l.entries = l.entries[:0] }
