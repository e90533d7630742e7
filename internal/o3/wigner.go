package o3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// WignerD returns the (2l+1)x(2l+1) matrix D with Y_l(R v) = D Y_l(v) for
// the rotation rot, in the real basis of SphericalHarmonics.
//
// D is recovered by least squares from harmonics sampled on a spiral of
// directions, so it is consistent with SphericalHarmonics by construction.
func WignerD(l int, rot r3.Rotation) *mat.Dense {
	d := 2*l + 1
	pts := spherePoints(max(4*d, 16))

	yv := mat.NewDense(len(pts), d, nil)
	yr := mat.NewDense(len(pts), d, nil)
	buf := make([]float64, SHDim(l))
	for i, p := range pts {
		mustHarmonics(l, p, buf)
		yv.SetRow(i, buf[l*l:])
		mustHarmonics(l, rot.Rotate(p), buf)
		yr.SetRow(i, buf[l*l:])
	}

	// yr = yv D^T
	var dt mat.Dense
	if err := dt.Solve(yv, yr); err != nil {
		panic(fmt.Sprintf("o3.WignerD: degree %d: %v", l, err))
	}
	return mat.DenseCopyOf(dt.T())
}

// RotateFeatures applies the rotation representation of is to x block by
// block and channel by channel. Parity is ignored: rot is proper.
func RotateFeatures(is Irreps, rot r3.Rotation, x []float64) []float64 {
	if len(x) != is.Dim() {
		panic(fmt.Sprintf("o3.RotateFeatures: length %d, want %d", len(x), is.Dim()))
	}
	out := make([]float64, len(x))
	cache := make(map[int]*mat.Dense)
	for b, off := range is.Offsets() {
		mi := is[b]
		d, ok := cache[mi.L]
		if !ok {
			d = WignerD(mi.L, rot)
			cache[mi.L] = d
		}
		n := mi.Irrep.Dim()
		for u := 0; u < mi.Mul; u++ {
			src := mat.NewVecDense(n, x[off+u*n:off+(u+1)*n])
			dst := mat.NewVecDense(n, out[off+u*n:off+(u+1)*n])
			dst.MulVec(d, src)
		}
	}
	return out
}

// spherePoints returns n directions on a Fibonacci spiral.
func spherePoints(n int) []r3.Vec {
	golden := math.Pi * (3 - math.Sqrt(5))
	pts := make([]r3.Vec, n)
	for i := range pts {
		z := 1 - (2*float64(i)+1)/float64(n)
		r := math.Sqrt(1 - z*z)
		phi := golden * float64(i)
		pts[i] = r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	}
	return pts
}

func mustHarmonics(lMax int, v r3.Vec, out []float64) {
	if err := SphericalHarmonics(lMax, v, out); err != nil {
		panic(err)
	}
}
