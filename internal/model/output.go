package model

import "github.com/born-ml/mace/internal/o3"

// Output holds the results of a forward pass over a batch.
type Output struct {
	// Energy is the total energy of every graph.
	Energy []float64
	// NodeEnergy is the reference energy plus every layer's readout, per
	// node.
	NodeEnergy []float64
	// Contributions splits Energy per graph into the reference energy
	// (index 0) and one term per layer.
	Contributions [][]float64
	// NodeFeatures holds the node features after every layer, row-major
	// with layout FeatureIrreps[layer].
	NodeFeatures  [][]float64
	FeatureIrreps []o3.Irreps
}

// Features returns the features of node i after layer l.
func (o *Output) Features(l, i int) []float64 {
	d := o.FeatureIrreps[l].Dim()
	return o.NodeFeatures[l][i*d : (i+1)*d]
}
