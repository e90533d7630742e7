package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"cube", Shape{3, 4, 2}, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.NumElements())
		})
	}
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{1, 2}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
}

func TestShapeRavelUnravel(t *testing.T) {
	s := Shape{3, 4, 5}
	idx := make([]int, 3)
	for off := 0; off < s.NumElements(); off++ {
		s.Unravel(off, idx)
		require.Equal(t, off, s.Ravel(idx))
	}

	s.Unravel(23, idx)
	assert.Equal(t, []int{1, 0, 3}, idx)
}

func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{20, 5, 1}, Shape{3, 4, 5}.ComputeStrides())
	assert.Empty(t, Shape{}.ComputeStrides())
}

func TestRepeat(t *testing.T) {
	assert.True(t, Repeat(9, 3).Equal(Shape{9, 9, 9}))
	assert.True(t, Shape{1, 2}.Clone().Equal(Shape{1, 2}))
}
