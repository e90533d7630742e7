package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScatterSum(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	membership := []int{0, 0, 2, 2, 2}

	got := ScatterSum(values, membership, 4)
	assert.Equal(t, []float64{3, 0, 12, 0}, got)
}

func TestScatterSumEmpty(t *testing.T) {
	assert.Equal(t, []float64{0, 0}, ScatterSum(nil, nil, 2))
	assert.Empty(t, ScatterSum(nil, nil, 0))
}

func TestScatterSumLengthMismatch(t *testing.T) {
	assert.Panics(t, func() { ScatterSum([]float64{1}, []int{0, 0}, 1) })
}
