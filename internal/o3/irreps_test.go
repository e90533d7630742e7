package o3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIrreps(t *testing.T) {
	is, err := ParseIrreps("32x0e + 32x1o+2e")
	require.NoError(t, err)
	require.Len(t, is, 3)

	assert.Equal(t, MulIrrep{Mul: 32, Irrep: Irrep{L: 0, P: 1}}, is[0])
	assert.Equal(t, MulIrrep{Mul: 32, Irrep: Irrep{L: 1, P: -1}}, is[1])
	assert.Equal(t, MulIrrep{Mul: 1, Irrep: Irrep{L: 2, P: 1}}, is[2])
	assert.Equal(t, "32x0e+32x1o+1x2e", is.String())
	assert.Equal(t, 32+96+5, is.Dim())
	assert.Equal(t, []int{0, 32, 128}, is.Offsets())
	assert.Equal(t, 2, is.MaxL())
}

func TestParseIrrepsErrors(t *testing.T) {
	for _, s := range []string{"3x", "x1o", "1q", "-1e", "ax0e"} {
		_, err := ParseIrreps(s)
		assert.Errorf(t, err, "input %q", s)
	}
}

func TestSphericalIrreps(t *testing.T) {
	is := SphericalIrreps(3, 4)
	assert.Equal(t, "4x0e+4x1o+4x2e+4x3o", is.String())
	c, ok := is.Channels()
	assert.True(t, ok)
	assert.Equal(t, 4, c)
	assert.Equal(t, 4*SHDim(3), is.Dim())

	_, ok = Irreps{{Mul: 2, Irrep: NaturalIrrep(0)}, {Mul: 3, Irrep: NaturalIrrep(1)}}.Channels()
	assert.False(t, ok)
}

func TestCouples(t *testing.T) {
	tests := []struct {
		a, b, out string
		want      bool
	}{
		{"1o", "1o", "0e", true},
		{"1o", "1o", "1e", true},
		{"1o", "1o", "1o", false},
		{"1o", "2e", "3o", true},
		{"1o", "2e", "4o", false},
		{"0e", "2e", "2e", true},
	}
	for _, tt := range tests {
		a, _ := ParseIrrep(tt.a)
		b, _ := ParseIrrep(tt.b)
		out, _ := ParseIrrep(tt.out)
		assert.Equalf(t, tt.want, Couples(a, b, out), "%s x %s -> %s", tt.a, tt.b, tt.out)
	}
}

func TestSortedAndScalars(t *testing.T) {
	is, err := ParseIrreps("4x1o+2x0e+3x1o+1x1e")
	require.NoError(t, err)
	assert.Equal(t, "2x0e+1x1e+7x1o", is.Sorted().String())
	assert.Equal(t, "2x0e", is.Scalars().String())
	assert.True(t, is.Contains(Irrep{L: 1, P: 1}))
	assert.False(t, is.Contains(Irrep{L: 2, P: 1}))
}
