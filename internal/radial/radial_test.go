package radial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/nn"
)

func TestEmbeddingZeroBeyondCutoff(t *testing.T) {
	e, err := NewEmbedding(8, 5, 3.0)
	require.NoError(t, err)
	out := make([]float64, e.Len())
	for _, r := range []float64{3.0, 3.0000001, 4, 100, math.Inf(1)} {
		e.Compute(r, out)
		for i, v := range out {
			assert.Zerof(t, v, "r=%v basis %d", r, i)
		}
	}
}

func TestEmbeddingFiniteAtOrigin(t *testing.T) {
	e, err := NewEmbedding(8, 5, 3.0)
	require.NoError(t, err)
	out := make([]float64, e.Len())
	for _, r := range []float64{0, 1e-300, 1e-12, 1e-6} {
		e.Compute(r, out)
		for n, v := range out {
			require.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0), "r=%v basis %d", r, n)
			// Limit: sqrt(2/rMax) * nπ/rMax.
			want := math.Sqrt(2/3.0) * float64(n+1) * math.Pi / 3.0
			assert.InDelta(t, want, v, 1e-4*want)
		}
	}
}

func TestBesselValues(t *testing.T) {
	b, err := NewBessel(3, 2.0)
	require.NoError(t, err)
	out := make([]float64, 3)
	b.Compute(0.7, out)
	for i, v := range out {
		k := float64(i+1) * math.Pi / 2
		assert.InDelta(t, math.Sqrt(1.0)*math.Sin(k*0.7)/0.7, v, 1e-12)
	}
}

func TestPolynomialCutoffSmooth(t *testing.T) {
	for _, p := range []int{2, 5, 6} {
		c, err := NewPolynomialCutoff(p, 2.0)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, c.Value(0), 1e-15)
		assert.Equal(t, 0.0, c.Value(2.0))

		// Value, slope and curvature approach zero at the cutoff.
		h := 1e-3
		near := c.Value(2 - h)
		assert.Less(t, math.Abs(near), 1e-6, "p=%d", p)
		slope := (c.Value(2-h) - c.Value(2-2*h)) / h
		assert.Less(t, math.Abs(slope), 1e-3, "p=%d", p)

		prev := c.Value(0)
		for r := 0.05; r < 2; r += 0.05 {
			v := c.Value(r)
			assert.LessOrEqual(t, v, prev+1e-12, "monotone decay, p=%d r=%v", p, r)
			prev = v
		}
	}
}

func TestConfigurationErrors(t *testing.T) {
	_, err := NewEmbedding(0, 5, 3)
	assert.True(t, errors.Is(err, errkind.ErrConfiguration))
	_, err = NewEmbedding(8, 0, 3)
	assert.True(t, errors.Is(err, errkind.ErrConfiguration))
	_, err = NewEmbedding(8, 5, 0)
	assert.True(t, errors.Is(err, errkind.ErrConfiguration))
	_, err = NewBessel(8, math.Inf(1))
	assert.True(t, errors.Is(err, errkind.ErrConfiguration))
}

type stepEnvelope struct{ rMax float64 }

func (s stepEnvelope) Value(r float64) float64 {
	if r >= s.rMax {
		return 0
	}
	return 0.5
}

func TestEmbeddingCustomEnvelope(t *testing.T) {
	b, err := NewBessel(4, 1.5)
	require.NoError(t, err)
	e := NewEmbeddingWithEnvelope(b, stepEnvelope{rMax: 1.5})

	raw := make([]float64, 4)
	b.Compute(0.4, raw)
	out := make([]float64, 4)
	e.Compute(0.4, out)
	for i := range raw {
		assert.InDelta(t, raw[i]/2, out[i], 1e-15)
	}
}

func TestWeightMLP(t *testing.T) {
	w := NewWeightMLP(8, []int{16, 16}, 24, nn.SiLU, nn.NewInitializer(3))
	assert.Equal(t, 24, w.OutFeatures())
	assert.Equal(t, 8*16+16*16+16*24, nn.CountParameters(w.Parameters()))

	feats := make([]float64, 8)
	feats[0] = 1
	out := make([]float64, 24)
	w.Forward(feats, out, make([]float64, w.Scratch()))
	assert.NotEqual(t, make([]float64, 24), out)
}
