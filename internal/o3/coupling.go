package o3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/errkind"
)

// CouplingTable holds real Clebsch-Gordan coefficients for every degree
// triple up to a maximum degree.
//
// The table is built once and is read-only afterwards, so a single table
// can be shared by every layer and every goroutine.
type CouplingTable struct {
	lMax   int
	coeffs map[[3]int][]float64
}

// NewCouplingTable precomputes the coefficients of every (l1, l2, l3) with
// all degrees <= lMax that satisfies the triangle rule.
//
// Returns ErrConfiguration when lMax is outside [0, MaxL].
func NewCouplingTable(lMax int) (*CouplingTable, error) {
	if lMax < 0 || lMax > MaxL {
		return nil, fmt.Errorf("coupling table degree %d outside [0, %d]: %w", lMax, MaxL, errkind.ErrConfiguration)
	}
	rots := referenceRotations()
	ds := make([][]*mat.Dense, len(rots))
	for r, rot := range rots {
		ds[r] = make([]*mat.Dense, lMax+1)
		for l := 0; l <= lMax; l++ {
			ds[r][l] = WignerD(l, rot)
		}
	}

	t := &CouplingTable{lMax: lMax, coeffs: make(map[[3]int][]float64)}
	for l1 := 0; l1 <= lMax; l1++ {
		for l2 := 0; l2 <= lMax; l2++ {
			for l3 := 0; l3 <= lMax; l3++ {
				if !triangle(l1, l2, l3) {
					continue
				}
				t.coeffs[[3]int{l1, l2, l3}] = solveCoupling(l1, l2, l3, ds)
			}
		}
	}
	return t, nil
}

// LMax returns the highest degree in the table.
func (t *CouplingTable) LMax() int {
	return t.lMax
}

// Get returns the coefficients C[m3][m1][m2] (row-major, orders shifted by
// +l) coupling degrees l1 and l2 into l3, normalized to unit Frobenius
// norm. Returns nil when the triangle rule forbids the triple.
// Panics if a degree exceeds LMax.
func (t *CouplingTable) Get(l1, l2, l3 int) []float64 {
	if l1 > t.lMax || l2 > t.lMax || l3 > t.lMax {
		panic(fmt.Sprintf("o3.CouplingTable.Get: (%d,%d,%d) beyond table degree %d", l1, l2, l3, t.lMax))
	}
	return t.coeffs[[3]int{l1, l2, l3}]
}

// referenceRotations returns two generic rotations. Invariance under both
// implies invariance under the whole rotation group they generate, which
// is dense in SO(3).
func referenceRotations() []r3.Rotation {
	return []r3.Rotation{
		r3.NewRotation(0.7391, r3.Unit(r3.Vec{X: 0.3, Y: -1.1, Z: 0.8})),
		r3.NewRotation(2.1317, r3.Unit(r3.Vec{X: -0.9, Y: 0.2, Z: 1.7})),
	}
}

// solveCoupling finds the unit vector c with
// D3 C(a, b) = C(D1 a, D2 b) for each reference rotation,
// as the null space of the stacked constraint matrix.
func solveCoupling(l1, l2, l3 int, ds [][]*mat.Dense) []float64 {
	d1, d2, d3 := 2*l1+1, 2*l2+1, 2*l3+1
	n := d1 * d2 * d3
	idx := func(k, i, j int) int { return (k*d1+i)*d2 + j }

	a := mat.NewDense(len(ds)*n, n, nil)
	for r := range ds {
		D1, D2, D3 := ds[r][l1], ds[r][l2], ds[r][l3]
		for k := 0; k < d3; k++ {
			for i := 0; i < d1; i++ {
				for j := 0; j < d2; j++ {
					row := r*n + idx(k, i, j)
					for kk := 0; kk < d3; kk++ {
						a.Set(row, idx(kk, i, j), a.At(row, idx(kk, i, j))+D3.At(k, kk))
					}
					for ii := 0; ii < d1; ii++ {
						for jj := 0; jj < d2; jj++ {
							c := D1.At(ii, i) * D2.At(jj, j)
							a.Set(row, idx(k, ii, jj), a.At(row, idx(k, ii, jj))-c)
						}
					}
				}
			}
		}
	}

	basis := nullSpace(a)
	if len(basis) != 1 {
		panic(fmt.Sprintf("o3: coupling (%d,%d,%d) has %d-dimensional solution space", l1, l2, l3, len(basis)))
	}
	c := basis[0]
	fixSign(c)
	return c
}

// nullSpace returns an orthonormal basis of the null space of a.
func nullSpace(a *mat.Dense) [][]float64 {
	_, n := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		panic("o3: SVD failed to converge")
	}
	vals := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	tol := 1e-9 * math.Max(1, vals[0])
	var out [][]float64
	for j := 0; j < n; j++ {
		if j < len(vals) && vals[j] > tol {
			continue
		}
		out = append(out, mat.Col(nil, j, &v))
	}
	return out
}

// fixSign flushes round-off to zero and makes the largest entry positive.
func fixSign(c []float64) {
	best := 0
	for i, v := range c {
		if math.Abs(v) < 1e-12 {
			c[i] = 0
		}
		if math.Abs(v) > math.Abs(c[best])+1e-9 {
			best = i
		}
	}
	if c[best] < 0 {
		for i := range c {
			c[i] = -c[i]
		}
	}
}
