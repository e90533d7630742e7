package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Activation is a scalar nonlinearity.
type Activation int

const (
	// SiLU applies x * sigmoid(x).
	SiLU Activation = iota
	// Tanh applies tanh(x).
	Tanh
	// Sigmoid applies 1 / (1 + exp(-x)).
	Sigmoid
	// Identity applies no nonlinearity.
	Identity
)

// ParseActivation maps a configuration name to an Activation.
func ParseActivation(name string) (Activation, error) {
	switch name {
	case "silu", "swish":
		return SiLU, nil
	case "tanh":
		return Tanh, nil
	case "sigmoid":
		return Sigmoid, nil
	case "identity", "none":
		return Identity, nil
	}
	return 0, fmt.Errorf("unknown activation %q", name)
}

// String returns the configuration name of the activation.
func (a Activation) String() string {
	switch a {
	case SiLU:
		return "silu"
	case Tanh:
		return "tanh"
	case Sigmoid:
		return "sigmoid"
	case Identity:
		return "identity"
	}
	return fmt.Sprintf("Activation(%d)", int(a))
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case SiLU:
		return x / (1 + math.Exp(-x))
	case Tanh:
		return math.Tanh(x)
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	}
	return x
}

// SecondMomentScale returns 1/sqrt(E[f(z)^2]) for z ~ N(0, 1).
//
// Multiplying the activation by this factor keeps unit-variance inputs at
// unit second moment through deep stacks. The expectation is evaluated
// with Gauss-Hermite quadrature.
func (a Activation) SecondMomentScale() float64 {
	if a == Identity {
		return 1
	}
	f := func(x float64) float64 {
		v := a.Apply(math.Sqrt2 * x)
		return v * v
	}
	moment := quad.Fixed(f, math.Inf(-1), math.Inf(1), 40, quad.Hermite{}, 0) / math.Sqrt(math.Pi)
	return 1 / math.Sqrt(moment)
}
