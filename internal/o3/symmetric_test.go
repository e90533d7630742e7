package o3

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/tensor"
)

func scalarVectorBasis(t *testing.T, correlation int) *SymmetricBasis {
	t.Helper()
	table := requireTable(t, 2)
	in := []Irrep{NaturalIrrep(0), NaturalIrrep(1)}
	out := []Irrep{NaturalIrrep(0), NaturalIrrep(1)}
	b, err := NewSymmetricBasis(in, out, correlation, 2, table)
	require.NoError(t, err)
	return b
}

// TestSymmetricBasisPathCounts compares against the polynomial invariants
// of a scalar s and a vector v: s, s², v·v, s³, s(v·v) and v, sv, s²v, (v·v)v.
func TestSymmetricBasisPathCounts(t *testing.T) {
	b := scalarVectorBasis(t, 3)
	assert.Equal(t, 4, b.Dim())
	assert.Equal(t, 3, b.Correlation())

	want := [][]int{{1, 2, 2}, {1, 1, 2}}
	for o := range b.Out() {
		for nu := 1; nu <= 3; nu++ {
			assert.Equalf(t, want[o][nu-1], b.NumPaths(o, nu), "out %s order %d", b.Out()[o], nu)
		}
	}
}

func TestSymmetricBasisPermutationSymmetry(t *testing.T) {
	b := scalarVectorBasis(t, 3)
	shape := tensor.Repeat(b.Dim(), 3)
	size := shape.NumElements()
	idx := make([]int, 3)
	for o, ir := range b.Out() {
		for _, u := range b.Tensors(o, 3) {
			for M := 0; M < ir.Dim(); M++ {
				for I := 0; I < size; I++ {
					shape.Unravel(I, idx)
					swapped := shape.Ravel([]int{idx[1], idx[0], idx[2]})
					cycled := shape.Ravel([]int{idx[2], idx[0], idx[1]})
					require.InDelta(t, u[M*size+I], u[M*size+swapped], 1e-10)
					require.InDelta(t, u[M*size+I], u[M*size+cycled], 1e-10)
				}
			}
		}
	}
}

func TestSymmetricBasisOrthonormal(t *testing.T) {
	b := scalarVectorBasis(t, 3)
	for o := range b.Out() {
		for nu := 1; nu <= 3; nu++ {
			us := b.Tensors(o, nu)
			for i := range us {
				for j := range us {
					want := 0.0
					if i == j {
						want = 1
					}
					assert.InDelta(t, want, floats.Dot(us[i], us[j]), 1e-9)
				}
			}
		}
	}
}

func TestSymmetricBasisEquivariance(t *testing.T) {
	table := requireTable(t, 2)
	in := []Irrep{NaturalIrrep(0), NaturalIrrep(1), NaturalIrrep(2)}
	out := []Irrep{NaturalIrrep(0), NaturalIrrep(1)}
	b, err := NewSymmetricBasis(in, out, 3, 2, table)
	require.NoError(t, err)

	rng := newRand(8)
	inIrreps := Irreps{{Mul: 1, Irrep: in[0]}, {Mul: 1, Irrep: in[1]}, {Mul: 1, Irrep: in[2]}}
	a := randomSlice(rng, b.Dim())
	rot := randomRotation(rng)
	ar := RotateFeatures(inIrreps, rot, a)

	for o, ir := range out {
		for nu := 1; nu <= 3; nu++ {
			w := randomSlice(rng, b.NumPaths(o, nu))
			got := b.Evaluate(o, nu, w, ar)
			want := RotateFeatures(Irreps{{Mul: 1, Irrep: ir}}, rot, b.Evaluate(o, nu, w, a))
			assert.InDeltaSlicef(t, want, got, 1e-8, "out %s order %d", ir, nu)
		}
	}
}

func TestSymmetricBasisConfigurationErrors(t *testing.T) {
	table := requireTable(t, 1)
	scalar := []Irrep{NaturalIrrep(0)}

	_, err := NewSymmetricBasis(scalar, scalar, 0, 1, table)
	assert.True(t, errors.Is(err, errkind.ErrConfiguration))

	_, err = NewSymmetricBasis(scalar, scalar, 2, 2, table)
	assert.True(t, errors.Is(err, errkind.ErrConfiguration), "intermediate degree beyond table")

	_, err = NewSymmetricBasis(scalar, []Irrep{{L: 1, P: 1}}, 2, 1, table)
	assert.True(t, errors.Is(err, errkind.ErrConfiguration), "unreachable output")
}

func TestPermutations(t *testing.T) {
	assert.Len(t, permutations(3), 6)
	assert.Len(t, permutations(4), 24)
	assert.Equal(t, [][]int{{1, 0}, {0, 1}}, permutations(2))
}
