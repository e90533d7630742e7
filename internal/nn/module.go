// Package nn implements the dense building blocks of the potential.
//
// This package provides:
//   - Parameter: named weight arrays
//   - Linear: fully connected layer with fan-in normalization
//   - MLP: stacked Linear layers with normalized activations
//   - Activation: SiLU, Tanh, Sigmoid
//   - Initializer: seeded weight initialization
//
// All layers operate on one sample at a time on float64 slices; batching
// is handled by the caller with internal/parallel.
package nn

// Module is implemented by every layer that owns parameters.
type Module interface {
	// Parameters returns all learnable parameters of this module.
	Parameters() []*Parameter
}
