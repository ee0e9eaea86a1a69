// Package kernel provides similarity functions searched by max-kernel search.
// A Kernel is any symmetric binary function returning a real value; no
// positive-semi-definiteness is required, although tree pruning is only
// guaranteed exact for positive-semi-definite kernels.
package kernel
