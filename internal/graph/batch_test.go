package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewBatch(t *testing.T) {
	table := hydrogenOxygen(t)
	g1, err := Build(water(), table, 3.0)
	require.NoError(t, err)
	empty, err := Build(Structure{}, table, 3.0)
	require.NoError(t, err)
	h2 := Structure{Numbers: []int{1, 1}, Positions: []r3.Vec{{}, {Z: 0.74}}}
	g2, err := Build(h2, table, 3.0)
	require.NoError(t, err)

	b := NewBatch(g1, empty, g2)
	assert.Equal(t, 3, b.NumGraphs)
	assert.Equal(t, 5, b.NumNodes)
	assert.Equal(t, []int{0, 3, 3, 5}, b.Ptr)
	assert.Equal(t, []int{0, 0, 0, 2, 2}, b.Membership)
	assert.Equal(t, 8, b.NumEdges())
	assert.Equal(t, []int{3, 4}, b.Senders[6:])
	assert.Equal(t, []int{4, 3}, b.Receivers[6:])
	assert.Equal(t, []int{7}, b.Incoming(3))

	for k, g := range []*Graph{g1, empty, g2} {
		sub := b.Subgraph(k)
		assert.Equal(t, g.NumNodes, sub.NumNodes)
		assert.Equal(t, g.Senders, sub.Senders)
		assert.Equal(t, g.Receivers, sub.Receivers)
		assert.Equal(t, g.Lengths, sub.Lengths)
	}
}

func TestNewBatchCutoff(t *testing.T) {
	table := hydrogenOxygen(t)
	g1, err := Build(water(), table, 3.0)
	require.NoError(t, err)
	g2, err := Build(water(), table, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 1.0, NewBatch(g1, g2).RMax)
	assert.Equal(t, 1.0, NewBatch(g2, g1).RMax)
	assert.Equal(t, 1.0, NewBatch(g1, g2).Subgraph(0).RMax)
	assert.Equal(t, 3.0, NewBatch(g1).RMax)
}

func TestBuildBatchWrapsStructureIndex(t *testing.T) {
	table := hydrogenOxygen(t)
	_, err := BuildBatch([]Structure{water(), {Numbers: []int{1}}}, table, 3.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structure 1")
}
