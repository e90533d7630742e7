// Package radial encodes edge lengths.
//
// Embedding combines a Bessel basis sqrt(2/rMax) sin(nπr/rMax)/r with a
// smooth envelope that vanishes at the cutoff. WeightMLP maps the result
// to per-edge tensor-product weights.
package radial

import (
	"fmt"
	"math"

	"github.com/born-ml/mace/internal/errkind"
)

// Bessel is the radial basis sqrt(2/rMax) * sin(k_n r)/r, k_n = nπ/rMax,
// n = 1..N. The 1/r singularity is removable: at r = 0 the value is
// sqrt(2/rMax) * k_n.
type Bessel struct {
	rMax      float64
	freqs     []float64
	prefactor float64
}

// NewBessel creates a basis of n functions on [0, rMax].
func NewBessel(n int, rMax float64) (*Bessel, error) {
	if n < 1 {
		return nil, fmt.Errorf("bessel basis size %d: %w", n, errkind.ErrConfiguration)
	}
	if !(rMax > 0) || math.IsInf(rMax, 0) {
		return nil, fmt.Errorf("bessel cutoff %v: %w", rMax, errkind.ErrConfiguration)
	}
	b := &Bessel{rMax: rMax, freqs: make([]float64, n), prefactor: math.Sqrt(2 / rMax)}
	for i := range b.freqs {
		b.freqs[i] = float64(i+1) * math.Pi / rMax
	}
	return b, nil
}

// Len returns the number of basis functions.
func (b *Bessel) Len() int {
	return len(b.freqs)
}

// Compute writes the basis at distance r into out.
func (b *Bessel) Compute(r float64, out []float64) {
	for i, k := range b.freqs {
		out[i] = b.prefactor * k * sinc(k*r)
	}
}

// sinc returns sin(x)/x, switching to its Taylor series near zero.
func sinc(x float64) float64 {
	if math.Abs(x) < 1e-4 {
		x2 := x * x
		return 1 - x2/6 + x2*x2/120
	}
	return math.Sin(x) / x
}
