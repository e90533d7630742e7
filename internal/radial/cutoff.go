package radial

import (
	"fmt"
	"math"

	"github.com/born-ml/mace/internal/errkind"
)

// Envelope multiplies the radial basis so that features go to zero at the
// cutoff. Implementations must return exactly 0 for r >= the cutoff.
type Envelope interface {
	Value(r float64) float64
}

// PolynomialCutoff is the envelope
//
//	f(x) = 1 - (p+1)(p+2)/2 x^p + p(p+2) x^(p+1) - p(p+1)/2 x^(p+2),  x = r/rMax
//
// for r < rMax and 0 beyond. f, f' and f'' vanish at rMax, and f(0) = 1.
type PolynomialCutoff struct {
	p    float64
	rMax float64
}

// NewPolynomialCutoff creates an envelope of order p on [0, rMax].
func NewPolynomialCutoff(p int, rMax float64) (*PolynomialCutoff, error) {
	if p < 1 {
		return nil, fmt.Errorf("polynomial cutoff order %d: %w", p, errkind.ErrConfiguration)
	}
	if !(rMax > 0) || math.IsInf(rMax, 0) {
		return nil, fmt.Errorf("polynomial cutoff radius %v: %w", rMax, errkind.ErrConfiguration)
	}
	return &PolynomialCutoff{p: float64(p), rMax: rMax}, nil
}

// Value evaluates the envelope at r.
func (c *PolynomialCutoff) Value(r float64) float64 {
	if r >= c.rMax {
		return 0
	}
	x := r / c.rMax
	p := c.p
	xp := math.Pow(x, p)
	return 1 - (p+1)*(p+2)/2*xp + p*(p+2)*xp*x - p*(p+1)/2*xp*x*x
}
