package kernel

import (
	"fmt"
	"strings"
)

// Config describes a kernel by name and parameters.
type Config struct {
	Name      string  `yaml:"name"`
	Degree    float64 `yaml:"degree"`
	Offset    float64 `yaml:"offset"`
	Bandwidth float64 `yaml:"bandwidth"`
	Scale     float64 `yaml:"scale"`
}

// New resolves a Config into a Kernel. A zero bandwidth or scale selects 1.
func New(cfg Config) (Kernel, error) {
	bandwidth := cfg.Bandwidth
	if bandwidth == 0 {
		bandwidth = 1
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", "linear", "ip", "inner_product":
		return Linear{}, nil
	case "polynomial", "poly":
		return NewPolynomial(cfg.Degree, cfg.Offset), nil
	case "gaussian", "rbf":
		if err := checkBandwidth("gaussian", bandwidth); err != nil {
			return nil, err
		}
		return Gaussian{Bandwidth: bandwidth}, nil
	case "laplacian":
		if err := checkBandwidth("laplacian", bandwidth); err != nil {
			return nil, err
		}
		return Laplacian{Bandwidth: bandwidth}, nil
	case "epanechnikov":
		if err := checkBandwidth("epanechnikov", bandwidth); err != nil {
			return nil, err
		}
		return Epanechnikov{Bandwidth: bandwidth}, nil
	case "triangular":
		if err := checkBandwidth("triangular", bandwidth); err != nil {
			return nil, err
		}
		return Triangular{Bandwidth: bandwidth}, nil
	case "cosine", "cos":
		return Cosine{}, nil
	case "tanh", "hyptan", "hyperbolic_tangent":
		scale := cfg.Scale
		if scale == 0 {
			scale = 1
		}
		return HyperbolicTangent{Scale: scale, Offset: cfg.Offset}, nil
	}
	return nil, fmt.Errorf("kernel: unknown kernel %q", cfg.Name)
}

func checkBandwidth(name string, bandwidth float64) error {
	if !(bandwidth > 0) {
		return fmt.Errorf("kernel: %s bandwidth must be positive, got %g", name, bandwidth)
	}
	return nil
}
