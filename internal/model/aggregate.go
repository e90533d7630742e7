package model

import "fmt"

// ScatterSum adds values[i] into the slot of graph membership[i] and
// returns one total per graph. Nodes are visited in index order, so the
// result is reproducible bit for bit. Graphs without nodes sum to zero.
func ScatterSum(values []float64, membership []int, numGraphs int) []float64 {
	if len(values) != len(membership) {
		panic(fmt.Sprintf("model.ScatterSum: %d values for %d memberships", len(values), len(membership)))
	}
	out := make([]float64, numGraphs)
	for i, v := range values {
		out[membership[i]] += v
	}
	return out
}
