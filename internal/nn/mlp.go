package nn

import "fmt"

// MLP chains Linear layers with a normalized activation between them.
//
// Example:
//
//	init := nn.NewInitializer(1)
//	mlp := nn.NewMLP([]int{8, 64, 64, 96}, nn.SiLU, false, init)
//	mlp.Forward(radial, weights) // len(radial) == 8, len(weights) == 96
type MLP struct {
	layers []*Linear
	act    Activation
	scale  float64
	widest int
}

// NewMLP creates an MLP with the given layer widths (input first, output
// last). The activation is applied after every layer except the last.
func NewMLP(widths []int, act Activation, bias bool, init *Initializer) *MLP {
	if len(widths) < 2 {
		panic(fmt.Sprintf("nn.NewMLP: need at least input and output widths, got %v", widths))
	}
	m := &MLP{act: act, scale: act.SecondMomentScale()}
	for i := 0; i+1 < len(widths); i++ {
		m.layers = append(m.layers, NewLinear(widths[i], widths[i+1], bias, init))
		m.widest = max(m.widest, widths[i+1])
	}
	return m
}

// Forward evaluates the network on x and writes the result to y.
func (m *MLP) Forward(x, y []float64) {
	buf := make([]float64, 2*m.widest)
	m.forward(x, y, buf)
}

// Scratch returns the buffer length ForwardInto needs.
func (m *MLP) Scratch() int {
	return 2 * m.widest
}

// ForwardInto is Forward with a caller-owned scratch buffer of at least
// Scratch() entries, for hot loops that evaluate one sample per edge.
func (m *MLP) ForwardInto(x, y, scratch []float64) {
	m.forward(x, y, scratch)
}

func (m *MLP) forward(x, y, buf []float64) {
	in := x
	for i, l := range m.layers {
		if i == len(m.layers)-1 {
			l.Forward(in, y)
			return
		}
		half := (i % 2) * m.widest
		out := buf[half : half+l.OutFeatures()]
		l.Forward(in, out)
		for j, v := range out {
			out[j] = m.act.Apply(v) * m.scale
		}
		in = out
	}
}

// InFeatures returns the input width.
func (m *MLP) InFeatures() int {
	return m.layers[0].InFeatures()
}

// OutFeatures returns the output width.
func (m *MLP) OutFeatures() int {
	return m.layers[len(m.layers)-1].OutFeatures()
}

// Parameters returns the parameters of every layer.
func (m *MLP) Parameters() []*Parameter {
	var params []*Parameter
	for _, l := range m.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}
