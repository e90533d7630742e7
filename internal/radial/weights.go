package radial

import "github.com/born-ml/mace/internal/nn"

// WeightMLP maps radial features of one edge to the weights of every
// coupling path of a layer's tensor product. It acts on each edge
// independently.
type WeightMLP struct {
	mlp *nn.MLP
}

// NewWeightMLP creates a bias-free network numBasis -> hidden... -> numel.
func NewWeightMLP(numBasis int, hidden []int, numel int, act nn.Activation, init *nn.Initializer) *WeightMLP {
	widths := make([]int, 0, len(hidden)+2)
	widths = append(widths, numBasis)
	widths = append(widths, hidden...)
	widths = append(widths, numel)
	return &WeightMLP{mlp: nn.NewMLP(widths, act, false, init)}
}

// Forward writes the path weights of one edge into out. scratch must hold
// Scratch() values and is reused across calls by the same goroutine.
func (w *WeightMLP) Forward(features, out, scratch []float64) {
	w.mlp.ForwardInto(features, out, scratch)
}

// Scratch returns the scratch length Forward needs.
func (w *WeightMLP) Scratch() int {
	return w.mlp.Scratch()
}

// OutFeatures returns the number of weights per edge.
func (w *WeightMLP) OutFeatures() int {
	return w.mlp.OutFeatures()
}

// Parameters returns the network parameters.
func (w *WeightMLP) Parameters() []*nn.Parameter {
	return w.mlp.Parameters()
}
