// Package vector defines the point representations searched by this module:
//   - Dense: a contiguous slice of float64 coordinates
//   - Sparse: a compressed vector holding only non-zero coordinates
//   - Dot/distance primitives shared by both representations
//   - Binary encodings (sqlite-vec float32 embeddings and tagged vectors)
package vector
