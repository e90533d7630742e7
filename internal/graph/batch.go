package graph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Batch packs several graphs into one index space.
//
// Nodes of graph k occupy [Ptr[k], Ptr[k+1]) and Membership[i] is the
// graph of node i, so Membership is non-decreasing. Graphs with no atoms
// are allowed.
type Batch struct {
	*Graph
	Membership []int
	Ptr        []int
	NumGraphs  int
}

// NewBatch concatenates graphs, offsetting node indices of edges. The
// batch cutoff is the smallest cutoff of its graphs.
func NewBatch(graphs ...*Graph) *Batch {
	combined := &Graph{}
	b := &Batch{Graph: combined, Ptr: make([]int, len(graphs)+1), NumGraphs: len(graphs)}
	for k, g := range graphs {
		off := combined.NumNodes
		b.Ptr[k] = off
		combined.NumNodes += g.NumNodes
		combined.Numbers = append(combined.Numbers, g.Numbers...)
		combined.Species = append(combined.Species, g.Species...)
		combined.Positions = append(combined.Positions, g.Positions...)
		for e := range g.Senders {
			combined.Senders = append(combined.Senders, g.Senders[e]+off)
			combined.Receivers = append(combined.Receivers, g.Receivers[e]+off)
		}
		combined.Shifts = append(combined.Shifts, g.Shifts...)
		combined.Vectors = append(combined.Vectors, g.Vectors...)
		combined.Lengths = append(combined.Lengths, g.Lengths...)
		if k == 0 || g.RMax < combined.RMax {
			combined.RMax = g.RMax
		}
		for i := 0; i < g.NumNodes; i++ {
			b.Membership = append(b.Membership, k)
		}
	}
	b.Ptr[len(graphs)] = combined.NumNodes
	combined.index()
	return b
}

// BuildBatch builds the graph of every structure and packs them.
func BuildBatch(structures []Structure, table ElementTable, rMax float64) (*Batch, error) {
	graphs := make([]*Graph, len(structures))
	for i, s := range structures {
		g, err := Build(s, table, rMax)
		if err != nil {
			return nil, fmt.Errorf("structure %d: %w", i, err)
		}
		graphs[i] = g
	}
	return NewBatch(graphs...), nil
}

// Subgraph returns the nodes and edges of graph k as a standalone graph.
func (b *Batch) Subgraph(k int) *Graph {
	lo, hi := b.Ptr[k], b.Ptr[k+1]
	g := &Graph{
		NumNodes:  hi - lo,
		Numbers:   append([]int(nil), b.Numbers[lo:hi]...),
		Species:   append([]int(nil), b.Species[lo:hi]...),
		Positions: append([]r3.Vec(nil), b.Positions[lo:hi]...),
		RMax:      b.RMax,
	}
	for e, s := range b.Senders {
		if s < lo || s >= hi {
			continue
		}
		g.Senders = append(g.Senders, s-lo)
		g.Receivers = append(g.Receivers, b.Receivers[e]-lo)
		g.Shifts = append(g.Shifts, b.Shifts[e])
		g.Vectors = append(g.Vectors, b.Vectors[e])
		g.Lengths = append(g.Lengths, b.Lengths[e])
	}
	g.index()
	return g
}
