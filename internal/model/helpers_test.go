package model

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/config"
	"github.com/born-ml/mace/internal/graph"
	"github.com/born-ml/mace/internal/parallel"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func randomRotation(rng *rand.Rand) r3.Rotation {
	axis := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	return r3.NewRotation(rng.Float64()*2*math.Pi, r3.Unit(axis))
}

// testConfig is a small H/C/O model that builds quickly.
func testConfig() config.Config {
	c := config.Default()
	c.Elements = []int{1, 6, 8}
	c.AtomicEnergies = []float64{-0.5, -37.8, -75.0}
	c.AvgNumNeighbors = 3
	c.RMax = 3.0
	c.NumBessel = 8
	c.MaxEll = 2
	c.NumInteractions = 2
	c.Channels = 8
	c.HiddenMaxL = 1
	c.Correlation = 3
	c.RadialHidden = []int{16, 16}
	c.Seed = 7
	return c
}

func newTestModel(t *testing.T, cfg config.Config) *Model {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	return m
}

func water() graph.Structure {
	return graph.Structure{
		Numbers: []int{8, 1, 1},
		Positions: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 0.757, Y: 0.586, Z: 0},
			{X: -0.757, Y: 0.586, Z: 0},
		},
	}
}

func methane() graph.Structure {
	return graph.Structure{
		Numbers: []int{6, 1, 1, 1, 1},
		Positions: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 0.63, Y: 0.63, Z: 0.63},
			{X: -0.63, Y: -0.63, Z: 0.63},
			{X: -0.63, Y: 0.63, Z: -0.63},
			{X: 0.63, Y: -0.63, Z: -0.63},
		},
	}
}

func transform(s graph.Structure, f func(r3.Vec) r3.Vec) graph.Structure {
	out := s
	out.Positions = make([]r3.Vec, len(s.Positions))
	for i, p := range s.Positions {
		out.Positions[i] = f(p)
	}
	return out
}

func energy(t *testing.T, m *Model, s graph.Structure) *Output {
	t.Helper()
	g, err := graph.Build(s, m.Elements(), m.Config().RMax)
	require.NoError(t, err)
	out, err := m.Energy(g)
	require.NoError(t, err)
	return out
}

func sequential() Option {
	return WithParallel(parallel.Sequential())
}
