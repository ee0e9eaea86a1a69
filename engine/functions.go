package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	sqlite "modernc.org/sqlite"

	"github.com/viant/fastmks/kernel"
	"github.com/viant/fastmks/vector"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterKernelFunctions registers the kernel scalar functions with the
// driver so they are available on connections opened after this call.
// Arguments are vector BLOBs: float32 embeddings or tagged dense/sparse
// vectors produced by vector.Marshal.
//
//	mks_linear(a, b)
//	mks_polynomial(a, b, degree, offset)
//	mks_gaussian(a, b, bandwidth)
//	mks_cosine(a, b)
//	mks_laplacian(a, b, bandwidth)
//	mks_epanechnikov(a, b, bandwidth)
//	mks_triangular(a, b, bandwidth)
//	mks_tanh(a, b, scale, offset)
func RegisterKernelFunctions() error {
	registerOnce.Do(func() {
		for _, fn := range []struct {
			name  string
			nargs int32
			impl  func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)
		}{
			{"mks_linear", 2, linearImpl},
			{"mks_polynomial", 4, polynomialImpl},
			{"mks_gaussian", 3, bandwidthImpl("mks_gaussian", "gaussian")},
			{"mks_cosine", 2, cosineImpl},
			{"mks_laplacian", 3, bandwidthImpl("mks_laplacian", "laplacian")},
			{"mks_epanechnikov", 3, bandwidthImpl("mks_epanechnikov", "epanechnikov")},
			{"mks_triangular", 3, bandwidthImpl("mks_triangular", "triangular")},
			{"mks_tanh", 4, tanhImpl},
		} {
			if err := sqlite.RegisterDeterministicScalarFunction(fn.name, fn.nargs, fn.impl); err != nil {
				registerErr = fmt.Errorf("engine: register %s: %w", fn.name, err)
				return
			}
		}
	})
	return registerErr
}

func asVector(arg driver.Value) (vector.Vector, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.Unmarshal(v)
	default:
		return nil, fmt.Errorf("engine: unsupported argument type %T for vector; want BLOB", arg)
	}
}

func asFloat(name string, arg driver.Value) (float64, error) {
	switch v := arg.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("engine: %s must be numeric, got %T", name, arg)
	}
}

// evaluate decodes the first two arguments and applies k. NULL vectors
// yield NULL.
func evaluate(name string, k kernel.Kernel, args []driver.Value) (driver.Value, error) {
	a, err := asVector(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b, err := asVector(args[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if a == nil || b == nil {
		return nil, nil
	}
	if a.Dim() != b.Dim() {
		return nil, fmt.Errorf("%s: dim mismatch %d vs %d", name, a.Dim(), b.Dim())
	}
	return k.Evaluate(a, b), nil
}

func linearImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	return evaluate("mks_linear", kernel.Linear{}, args)
}

func cosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	return evaluate("mks_cosine", kernel.Cosine{}, args)
}

func polynomialImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	degree, err := asFloat("degree", args[2])
	if err != nil {
		return nil, fmt.Errorf("mks_polynomial: %w", err)
	}
	offset, err := asFloat("offset", args[3])
	if err != nil {
		return nil, fmt.Errorf("mks_polynomial: %w", err)
	}
	return evaluate("mks_polynomial", kernel.NewPolynomial(degree, offset), args)
}

// bandwidthImpl builds the scalar function for a kernel parameterized by a
// bandwidth in its third argument.
func bandwidthImpl(name, kernelName string) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		bandwidth, err := asFloat("bandwidth", args[2])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if bandwidth <= 0 {
			return nil, fmt.Errorf("%s: bandwidth must be positive, got %g", name, bandwidth)
		}
		k, err := kernel.New(kernel.Config{Name: kernelName, Bandwidth: bandwidth})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return evaluate(name, k, args)
	}
}

func tanhImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	scale, err := asFloat("scale", args[2])
	if err != nil {
		return nil, fmt.Errorf("mks_tanh: %w", err)
	}
	offset, err := asFloat("offset", args[3])
	if err != nil {
		return nil, fmt.Errorf("mks_tanh: %w", err)
	}
	return evaluate("mks_tanh", kernel.HyperbolicTangent{Scale: scale, Offset: offset}, args)
}
