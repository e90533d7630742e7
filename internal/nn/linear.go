package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/mace/internal/tensor"
)

// Linear implements a fully connected layer on a single sample.
//
// Performs the transformation: y = (W x) / sqrt(in_features) + b
// where:
//   - x has in_features entries
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias with out_features entries
//
// Weights are drawn from N(0, 1) and rescaled at evaluation time, which
// keeps the output variance independent of the layer width.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features], nil when disabled
	scale       float64
}

// NewLinear creates a new Linear layer.
//
// Parameters:
//   - inFeatures: Number of input features
//   - outFeatures: Number of output features
//   - bias: Whether to add a learnable bias (initialized to zero)
//   - init: Source of initial weights
func NewLinear(inFeatures, outFeatures int, bias bool, init *Initializer) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("nn.NewLinear: invalid size %dx%d", inFeatures, outFeatures))
	}
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight: NewParameter("weight", tensor.Shape{outFeatures, inFeatures},
			init.Normal(outFeatures*inFeatures)),
		scale: 1 / math.Sqrt(float64(inFeatures)),
	}
	if bias {
		l.bias = NewParameter("bias", tensor.Shape{outFeatures}, Zeros(outFeatures))
	}
	return l
}

// Forward computes y from x. Panics if the slice lengths do not match the
// layer size.
func (l *Linear) Forward(x, y []float64) {
	if len(x) != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected %d input features, got %d", l.inFeatures, len(x)))
	}
	if len(y) != l.outFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected %d output features, got %d", l.outFeatures, len(y)))
	}

	w := l.weight.Data()
	for o := 0; o < l.outFeatures; o++ {
		row := w[o*l.inFeatures : (o+1)*l.inFeatures]
		var sum float64
		for i, v := range x {
			sum += row[i] * v
		}
		y[o] = sum * l.scale
	}
	if l.bias != nil {
		for o, b := range l.bias.Data() {
			y[o] += b
		}
	}
}

// Parameters returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
