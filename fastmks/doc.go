// Package fastmks answers exact max-kernel search: for every query point,
// the k reference points with the largest kernel value.
//
// A FastMKS value owns the reference index (and, for dual-tree search over a
// fixed query set, the query index) and dispatches each search to naive,
// single-tree or dual-tree execution. All modes return identical indices.
//
//	refs := dataset.Randn(rng, 10, 5000)
//	mks, err := fastmks.New(refs, kernel.NewPolynomial(2, 1))
//	result, err := mks.Search(10)
//	indices, values := result.Column(0)
package fastmks
