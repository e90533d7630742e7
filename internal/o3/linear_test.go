package o3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mace/internal/nn"
)

func TestLinearEquivariance(t *testing.T) {
	rng := newRand(7)
	in, err := ParseIrreps("3x0e+2x1o+1x1o+2x2e")
	require.NoError(t, err)
	out, err := ParseIrreps("2x0e+4x1o+1x2e+2x1e")
	require.NoError(t, err)
	l := NewLinear(in, out, nn.NewInitializer(1))

	x := randomSlice(rng, in.Dim())
	rot := randomRotation(rng)

	y := make([]float64, out.Dim())
	yr := make([]float64, out.Dim())
	l.Forward(x, y)
	l.Forward(RotateFeatures(in, rot, x), yr)
	assert.InDeltaSlice(t, RotateFeatures(out, rot, y), yr, 1e-10)

	// No input carries 1e.
	offs := out.Offsets()
	assert.Equal(t, make([]float64, 6), y[offs[3]:])
}

func TestLinearKeepsDegreesApart(t *testing.T) {
	in, _ := ParseIrreps("1x0e+1x1o")
	out, _ := ParseIrreps("1x0e+1x1o")
	l := NewLinear(in, out, nn.NewInitializer(2))
	assert.Len(t, l.Parameters(), 2)

	y := make([]float64, 4)
	l.Forward([]float64{0, 1, 2, 3}, y)
	assert.Zero(t, y[0], "scalar output only sees the scalar input")

	l.Forward([]float64{1, 0, 0, 0}, y)
	assert.Equal(t, []float64{y[0], 0, 0, 0}, y)
	assert.Equal(t, in, l.InIrreps())
	assert.Equal(t, out, l.OutIrreps())
}
