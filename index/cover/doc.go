// Package cover provides max-kernel search over cover trees built in the
// metric induced by a kernel, d(x,y) = sqrt(K(x,x) - 2K(x,y) + K(y,y)).
//
// Each tree node carries a bound record (self-kernel and furthest-descendant
// radius) from which an upper bound on the kernel value achievable beneath
// the node is derived. Single-tree search descends the reference tree once
// per query, best-first; dual-tree search builds a second tree over the
// queries and recurses over node pairs, pruning a pair once its bound falls
// below the k-th best value of every query beneath the query node.
//
// Bound records are computed lazily during traversal. An Index is therefore
// not safe for concurrent searches unless BoundCache.Precompute was called
// first; parallel single-tree search does so automatically.
package cover
