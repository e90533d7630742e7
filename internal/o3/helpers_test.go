package o3

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func randomVec(rng *rand.Rand) r3.Vec {
	return r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
}

func randomRotation(rng *rand.Rand) r3.Rotation {
	return r3.NewRotation(rng.Float64()*2*math.Pi, r3.Unit(randomVec(rng)))
}

func randomSlice(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func mulVec(d *mat.Dense, x []float64) []float64 {
	r, _ := d.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(d, mat.NewVecDense(len(x), x))
	return out.RawVector().Data
}

// requireTable builds a coupling table or fails the test.
func requireTable(t *testing.T, lMax int) *CouplingTable {
	t.Helper()
	table, err := NewCouplingTable(lMax)
	require.NoError(t, err)
	return table
}
