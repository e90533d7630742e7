package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSiLUApply tests SiLU against hand-computed values.
func TestSiLUApply(t *testing.T) {
	// For x=-2: -2 * sigmoid(-2) = -2 * 0.1192 ≈ -0.2384
	// For x=1:   1 * sigmoid(1)  = 1 * 0.7311 ≈ 0.7311
	inputs := []float64{-2, -1, 0, 1, 2}
	expected := []float64{-0.2384, -0.2689, 0, 0.7311, 1.7616}
	for i, x := range inputs {
		assert.InDelta(t, expected[i], SiLU.Apply(x), 1e-4, "x=%v", x)
	}
}

func TestParseActivation(t *testing.T) {
	tests := []struct {
		name string
		want Activation
	}{
		{"silu", SiLU},
		{"swish", SiLU},
		{"tanh", Tanh},
		{"sigmoid", Sigmoid},
		{"none", Identity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseActivation(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseActivation("relu6")
	assert.Error(t, err)
}

// TestSecondMomentScale checks the quadrature against closed forms.
func TestSecondMomentScale(t *testing.T) {
	assert.Equal(t, 1.0, Identity.SecondMomentScale())

	// E[sigmoid(z)^2] has no closed form, but must lie in (0.25, 0.5).
	s := Sigmoid.SecondMomentScale()
	assert.Greater(t, s, math.Sqrt(2))
	assert.Less(t, s, 2.0)

	// E[silu(z)^2] ≈ 0.3558.
	assert.InDelta(t, 1.6765, SiLU.SecondMomentScale(), 1e-3)
}
