package o3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestWignerDRotatesHarmonics(t *testing.T) {
	rng := newRand(2)
	for l := 0; l <= MaxL; l++ {
		rot := randomRotation(rng)
		d := WignerD(l, rot)

		v := randomVec(rng)
		y := make([]float64, SHDim(l))
		yr := make([]float64, SHDim(l))
		require.NoError(t, SphericalHarmonics(l, v, y))
		require.NoError(t, SphericalHarmonics(l, rot.Rotate(v), yr))

		assert.InDeltaSlice(t, yr[l*l:], mulVec(d, y[l*l:]), 1e-9, "degree %d", l)
	}
}

func TestWignerDOrthogonal(t *testing.T) {
	rng := newRand(3)
	for l := 0; l <= MaxL; l++ {
		d := WignerD(l, randomRotation(rng))
		var dtd mat.Dense
		dtd.Mul(d.T(), d)
		n := 2*l + 1
		assert.Truef(t, mat.EqualApprox(&dtd, eye(n), 1e-9), "degree %d", l)
	}
}

func TestWignerDIdentity(t *testing.T) {
	id := r3.NewRotation(0, r3.Vec{Z: 1})
	assert.True(t, mat.EqualApprox(WignerD(2, id), eye(5), 1e-9))
}

func TestRotateFeatures(t *testing.T) {
	rng := newRand(4)
	is, err := ParseIrreps("2x0e+2x1o")
	require.NoError(t, err)
	rot := randomRotation(rng)

	x := []float64{1, 2, 0, 0, 1, 0, 1, 0}
	got := RotateFeatures(is, rot, x)

	assert.InDeltaSlice(t, []float64{1, 2}, got[:2], 1e-12)
	d := WignerD(1, rot)
	assert.InDeltaSlice(t, mulVec(d, x[2:5]), got[2:5], 1e-12)
	assert.InDeltaSlice(t, mulVec(d, x[5:8]), got[5:8], 1e-12)
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
