package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	kindDense  byte = 'D'
	kindSparse byte = 'S'
)

// EncodeEmbedding encodes a slice of float32 values into the sqlite-vec BLOB
// representation: a little-endian sequence of IEEE 754 float32 values
// without a length prefix.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding back into a
// slice of float32 values.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	n := len(b) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// Marshal encodes a vector as a tagged BLOB that preserves its storage
// representation:
//
//	dense:  'D', dim(uint32), dim x float64
//	sparse: 'S', dim(uint32), nnz(uint32), nnz x index(uint32), nnz x float64
func Marshal(v Vector) ([]byte, error) {
	switch t := v.(type) {
	case Dense:
		out := make([]byte, 5+8*len(t))
		out[0] = kindDense
		binary.LittleEndian.PutUint32(out[1:5], uint32(len(t)))
		for i, x := range t {
			binary.LittleEndian.PutUint64(out[5+8*i:], math.Float64bits(x))
		}
		return out, nil
	case *Sparse:
		nnz := len(t.Indices)
		out := make([]byte, 9+12*nnz)
		out[0] = kindSparse
		binary.LittleEndian.PutUint32(out[1:5], uint32(t.N))
		binary.LittleEndian.PutUint32(out[5:9], uint32(nnz))
		off := 9
		for _, idx := range t.Indices {
			binary.LittleEndian.PutUint32(out[off:], uint32(idx))
			off += 4
		}
		for _, x := range t.Values {
			binary.LittleEndian.PutUint64(out[off:], math.Float64bits(x))
			off += 8
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("vector: cannot marshal nil vector")
	}
	return Marshal(ToDense(v))
}

// Unmarshal decodes a BLOB produced by Marshal. Untagged BLOBs whose length
// is a multiple of 4 are decoded as sqlite-vec float32 embeddings.
func Unmarshal(b []byte) (Vector, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("vector: empty vector blob")
	}
	switch b[0] {
	case kindDense:
		if len(b) >= 5 {
			dim := int(binary.LittleEndian.Uint32(b[1:5]))
			if len(b) == 5+8*dim {
				out := make(Dense, dim)
				for i := range out {
					out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[5+8*i:]))
				}
				return out, nil
			}
		}
	case kindSparse:
		if len(b) >= 9 {
			dim := int(binary.LittleEndian.Uint32(b[1:5]))
			nnz := int(binary.LittleEndian.Uint32(b[5:9]))
			if len(b) == 9+12*nnz {
				s := &Sparse{N: dim, Indices: make([]int32, nnz), Values: make([]float64, nnz)}
				off := 9
				for i := range s.Indices {
					idx := binary.LittleEndian.Uint32(b[off:])
					if uint64(idx) >= uint64(dim) {
						return nil, fmt.Errorf("vector: sparse index %d out of range [0,%d)", idx, dim)
					}
					if i > 0 && int32(idx) <= s.Indices[i-1] {
						return nil, fmt.Errorf("vector: sparse indices not strictly increasing at position %d", i)
					}
					s.Indices[i] = int32(idx)
					off += 4
				}
				for i := range s.Values {
					s.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
					off += 8
				}
				return s, nil
			}
		}
	}
	emb, err := DecodeEmbedding(b)
	if err != nil {
		return nil, err
	}
	out := make(Dense, len(emb))
	for i, x := range emb {
		out[i] = float64(x)
	}
	return out, nil
}
