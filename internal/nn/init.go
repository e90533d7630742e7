package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer draws initial weights from a seeded source, so two models
// built with the same seed hold identical parameters.
//
// An Initializer is not safe for concurrent use; models are constructed
// sequentially.
type Initializer struct {
	src rand.Source
}

// NewInitializer creates an Initializer seeded with seed.
func NewInitializer(seed uint64) *Initializer {
	return &Initializer{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Normal returns n values drawn from N(0, 1).
//
// Layers scale their weights by 1/sqrt(fan_in) at evaluation time, so unit
// variance keeps activations normalized.
func (in *Initializer) Normal(n int) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: in.src}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// Zeros returns n zeros.
func Zeros(n int) []float64 {
	return make([]float64, n)
}
