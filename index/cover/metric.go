package cover

import (
	"math"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/kernel"
)

// Metric embeds a kernel into a metric space over one dataset:
// d(x,y) = sqrt(max(K(x,x) - 2K(x,y) + K(y,y), 0)). The clamp tolerates
// rounding and kernels that are not positive semi-definite.
//
// The metric only drives tree construction and radius derivation; search
// results are always ranked by raw kernel value.
type Metric struct {
	kernel      kernel.Kernel
	data        dataset.Dataset
	self        []float64
	evaluations uint64
}

// NewMetric evaluates and caches K(x,x) for every point of data.
func NewMetric(k kernel.Kernel, data dataset.Dataset) *Metric {
	m := &Metric{kernel: k, data: data, self: make([]float64, data.Len())}
	for i := range m.self {
		p := data.At(i)
		m.self[i] = k.Evaluate(p, p)
	}
	m.evaluations = uint64(len(m.self))
	return m
}

// Distance returns the kernel-induced distance between points i and j.
func (m *Metric) Distance(i, j int32) float64 {
	if i == j {
		return 0
	}
	v := m.self[i] - 2*m.Evaluate(i, j) + m.self[j]
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Evaluate returns K(x_i, x_j).
func (m *Metric) Evaluate(i, j int32) float64 {
	m.evaluations++
	return m.kernel.Evaluate(m.data.At(int(i)), m.data.At(int(j)))
}

// SelfKernel returns the cached K(x_i, x_i).
func (m *Metric) SelfKernel(i int32) float64 { return m.self[i] }

// Norm returns the feature-space norm sqrt(K(x_i, x_i)), zero when the
// self-kernel is negative.
func (m *Metric) Norm(i int32) float64 { return featureNorm(m.self[i]) }

// Evaluations returns the number of kernel evaluations performed so far.
func (m *Metric) Evaluations() uint64 { return m.evaluations }

func featureNorm(selfKernel float64) float64 {
	if selfKernel <= 0 {
		return 0
	}
	return math.Sqrt(selfKernel)
}
