package kernel

import (
	"fmt"
	"math"

	"github.com/viant/fastmks/vector"
)

// Kernel evaluates the similarity between two points. Implementations must
// be symmetric and deterministic, and free of side effects.
type Kernel interface {
	Evaluate(a, b vector.Vector) float64
}

// Func adapts a plain function to the Kernel interface.
type Func func(a, b vector.Vector) float64

// Evaluate calls f(a, b).
func (f Func) Evaluate(a, b vector.Vector) float64 { return f(a, b) }

// Linear is the inner product kernel K(a,b) = a·b.
type Linear struct{}

// Evaluate returns a·b.
func (Linear) Evaluate(a, b vector.Vector) float64 { return vector.Dot(a, b) }

func (Linear) String() string { return "linear" }

// Polynomial is the kernel K(a,b) = (a·b + Offset)^Degree.
type Polynomial struct {
	Degree float64
	Offset float64
}

// NewPolynomial returns a polynomial kernel; the zero degree defaults to 2.
func NewPolynomial(degree, offset float64) Polynomial {
	if degree == 0 {
		degree = 2
	}
	return Polynomial{Degree: degree, Offset: offset}
}

// Evaluate returns (a·b + offset)^degree.
func (p Polynomial) Evaluate(a, b vector.Vector) float64 {
	return math.Pow(vector.Dot(a, b)+p.Offset, p.Degree)
}

func (p Polynomial) String() string {
	return fmt.Sprintf("polynomial(degree=%g,offset=%g)", p.Degree, p.Offset)
}

// Gaussian is the kernel K(a,b) = exp(-|a-b|² / (2·Bandwidth²)).
// Bandwidth must be positive: the zero value yields NaN for K(x,x). Use New
// to get a validated kernel.
type Gaussian struct {
	Bandwidth float64
}

// Evaluate returns the gaussian similarity of a and b.
func (g Gaussian) Evaluate(a, b vector.Vector) float64 {
	return math.Exp(-vector.SquaredDistance(a, b) / (2 * g.Bandwidth * g.Bandwidth))
}

func (g Gaussian) String() string { return fmt.Sprintf("gaussian(bandwidth=%g)", g.Bandwidth) }

// Laplacian is the kernel K(a,b) = exp(-|a-b| / Bandwidth).
// Bandwidth must be positive; the zero value yields NaN for K(x,x).
type Laplacian struct {
	Bandwidth float64
}

// Evaluate returns the laplacian similarity of a and b.
func (l Laplacian) Evaluate(a, b vector.Vector) float64 {
	return math.Exp(-math.Sqrt(vector.SquaredDistance(a, b)) / l.Bandwidth)
}

func (l Laplacian) String() string { return fmt.Sprintf("laplacian(bandwidth=%g)", l.Bandwidth) }

// Epanechnikov is the kernel K(a,b) = max(0, 1 - |a-b|² / Bandwidth²).
// Bandwidth must be positive; the zero value yields NaN for K(x,x).
type Epanechnikov struct {
	Bandwidth float64
}

// Evaluate returns the epanechnikov similarity of a and b.
func (e Epanechnikov) Evaluate(a, b vector.Vector) float64 {
	return math.Max(0, 1-vector.SquaredDistance(a, b)/(e.Bandwidth*e.Bandwidth))
}

func (e Epanechnikov) String() string { return fmt.Sprintf("epanechnikov(bandwidth=%g)", e.Bandwidth) }

// Triangular is the kernel K(a,b) = max(0, 1 - |a-b| / Bandwidth).
// Bandwidth must be positive; the zero value yields NaN for K(x,x).
type Triangular struct {
	Bandwidth float64
}

// Evaluate returns the triangular similarity of a and b.
func (t Triangular) Evaluate(a, b vector.Vector) float64 {
	return math.Max(0, 1-math.Sqrt(vector.SquaredDistance(a, b))/t.Bandwidth)
}

func (t Triangular) String() string { return fmt.Sprintf("triangular(bandwidth=%g)", t.Bandwidth) }

// Cosine is the normalized inner product. Zero vectors have similarity 0.
type Cosine struct{}

// Evaluate returns a·b / (|a||b|).
func (Cosine) Evaluate(a, b vector.Vector) float64 {
	na, nb := vector.Norm(a), vector.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return vector.Dot(a, b) / (na * nb)
}

func (Cosine) String() string { return "cosine" }

// HyperbolicTangent is the sigmoid kernel K(a,b) = tanh(Scale·a·b + Offset).
// It is not positive semi-definite.
type HyperbolicTangent struct {
	Scale  float64
	Offset float64
}

// Evaluate returns tanh(scale·a·b + offset).
func (h HyperbolicTangent) Evaluate(a, b vector.Vector) float64 {
	return math.Tanh(h.Scale*vector.Dot(a, b) + h.Offset)
}

func (h HyperbolicTangent) String() string {
	return fmt.Sprintf("tanh(scale=%g,offset=%g)", h.Scale, h.Offset)
}
