package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/errkind"
)

func TestElementTable(t *testing.T) {
	table, err := NewElementTable([]int{8, 1})
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []int{8, 1}, table.Numbers())
	i, ok := table.Index(1)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = table.Index(6)
	assert.False(t, ok)

	v, err := table.OneHot(8)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, v)
	_, err = table.OneHot(6)
	assert.True(t, errors.Is(err, errkind.ErrInvalidInput))
	assert.Equal(t, "{O:8, H:1}", table.String())
}

func TestElementTableErrors(t *testing.T) {
	for _, numbers := range [][]int{nil, {1, 1}, {0}, {119}} {
		_, err := NewElementTable(numbers)
		assert.Truef(t, errors.Is(err, errkind.ErrConfiguration), "numbers %v", numbers)
	}
}

func TestElementTableFromStructures(t *testing.T) {
	structures := []Structure{
		{Numbers: []int{8, 1, 1}, Positions: make([]r3.Vec, 3)},
		{Numbers: []int{6, 1}, Positions: make([]r3.Vec, 2)},
	}
	table, err := ElementTableFromStructures(structures)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 8}, table.Numbers())
}

func TestSymbols(t *testing.T) {
	z, ok := AtomicNumber("o")
	assert.True(t, ok)
	assert.Equal(t, 8, z)
	_, ok = AtomicNumber("Xx")
	assert.False(t, ok)
	assert.Equal(t, "Og", Symbol(118))
	assert.Equal(t, "X", Symbol(0))
}
