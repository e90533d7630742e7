package o3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/errkind"
)

// MaxL is the highest degree supported by the coupling tables.
const MaxL = 4

// minNorm is the smallest vector norm with a well-defined direction.
const minNorm = 1e-9

// SHDim returns the number of spherical-harmonic components up to lMax.
func SHDim(lMax int) int {
	return (lMax + 1) * (lMax + 1)
}

// SphericalHarmonics writes the real spherical harmonics of the direction
// of v, degrees 0..lMax, into out (length SHDim(lMax)).
//
// Block l starts at l*l and holds orders m = -l..l. The normalization is
// "component": for every direction the block l has squared norm 2l+1, and
// the degree-0 block is the constant 1.
//
// Returns ErrDomain when v has (near) zero or non-finite norm.
func SphericalHarmonics(lMax int, v r3.Vec, out []float64) error {
	if lMax < 0 {
		return fmt.Errorf("spherical harmonics degree %d: %w", lMax, errkind.ErrConfiguration)
	}
	if len(out) != SHDim(lMax) {
		panic(fmt.Sprintf("o3.SphericalHarmonics: output length %d, want %d", len(out), SHDim(lMax)))
	}
	norm := r3.Norm(v)
	if !(norm > minNorm) || math.IsInf(norm, 0) {
		return fmt.Errorf("edge vector %v has undefined direction: %w", v, errkind.ErrDomain)
	}
	u := r3.Scale(1/norm, v)
	x, y, z := u.X, u.Y, u.Z

	// (x + iy)^m = a[m] + i b[m]
	a, b := make([]float64, lMax+1), make([]float64, lMax+1)
	a[0] = 1
	for m := 1; m <= lMax; m++ {
		a[m] = x*a[m-1] - y*b[m-1]
		b[m] = x*b[m-1] + y*a[m-1]
	}

	q := legendre(lMax, z)
	for l := 0; l <= lMax; l++ {
		blk := out[l*l : (l+1)*(l+1)]
		blk[l] = math.Sqrt(float64(2*l+1)) * q[l][0]
		for m := 1; m <= l; m++ {
			ratio := 1.0 // (l-m)!/(l+m)!
			for k := l - m + 1; k <= l+m; k++ {
				ratio /= float64(k)
			}
			c := math.Sqrt(2*float64(2*l+1)*ratio) * q[l][m]
			blk[l+m] = c * a[m]
			blk[l-m] = c * b[m]
		}
	}
	return nil
}

// legendre returns q[l][m] = d^m/dz^m P_l(z), the associated Legendre
// function with the sin^m factor removed, for 0 <= m <= l <= lMax.
func legendre(lMax int, z float64) [][]float64 {
	q := make([][]float64, lMax+1)
	for l := range q {
		q[l] = make([]float64, l+1)
	}
	for m := 0; m <= lMax; m++ {
		dd := 1.0 // (2m-1)!!
		for k := 1; k < 2*m; k += 2 {
			dd *= float64(k)
		}
		q[m][m] = dd
		if m+1 <= lMax {
			q[m+1][m] = float64(2*m+1) * z * dd
		}
		for l := m + 2; l <= lMax; l++ {
			q[l][m] = (float64(2*l-1)*z*q[l-1][m] - float64(l+m-1)*q[l-2][m]) / float64(l-m)
		}
	}
	return q
}
