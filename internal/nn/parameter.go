package nn

import "github.com/born-ml/mace/internal/tensor"

// Parameter is a named, learnable weight array.
//
// Parameters are read-only during a forward pass and can be shared by
// concurrent evaluations.
type Parameter struct {
	name  string
	shape tensor.Shape
	data  []float64
}

// NewParameter wraps data with a name and shape.
// Panics if the shape does not match len(data).
func NewParameter(name string, shape tensor.Shape, data []float64) *Parameter {
	if shape.NumElements() != len(data) {
		panic("nn.NewParameter: shape " + name + " does not match data length")
	}
	return &Parameter{name: name, shape: shape.Clone(), data: data}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.shape
}

// Data returns the underlying values.
func (p *Parameter) Data() []float64 {
	return p.data
}

// Len returns the number of scalars in the parameter.
func (p *Parameter) Len() int {
	return len(p.data)
}

// CountParameters sums the sizes of params.
func CountParameters(params []*Parameter) int {
	n := 0
	for _, p := range params {
		n += p.Len()
	}
	return n
}
