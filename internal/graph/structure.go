package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/errkind"
)

// Cell holds the three lattice vectors of a periodic cell as rows.
type Cell [3]r3.Vec

// Structure is an atomic configuration. Energy and Forces are reference
// labels carried along with the geometry; the forward pass never reads
// them.
type Structure struct {
	Numbers   []int
	Positions []r3.Vec
	Cell      *Cell
	PBC       [3]bool
	Energy    *float64
	Forces    []r3.Vec
}

// Len returns the number of atoms.
func (s Structure) Len() int {
	return len(s.Positions)
}

// Periodic reports whether any axis is periodic.
func (s Structure) Periodic() bool {
	return s.PBC[0] || s.PBC[1] || s.PBC[2]
}

// Validate checks array lengths and that every coordinate is finite.
// Returns ErrInvalidInput on failure.
func (s Structure) Validate() error {
	if len(s.Numbers) != len(s.Positions) {
		return fmt.Errorf("%d atomic numbers for %d positions: %w",
			len(s.Numbers), len(s.Positions), errkind.ErrInvalidInput)
	}
	if s.Forces != nil && len(s.Forces) != len(s.Positions) {
		return fmt.Errorf("%d forces for %d positions: %w", len(s.Forces), len(s.Positions), errkind.ErrInvalidInput)
	}
	for i, p := range s.Positions {
		if !finite(p) {
			return fmt.Errorf("atom %d has non-finite position %v: %w", i, p, errkind.ErrInvalidInput)
		}
	}
	if s.Periodic() && s.Cell == nil {
		return fmt.Errorf("periodic structure without a cell: %w", errkind.ErrInvalidInput)
	}
	if s.Cell != nil {
		for i, a := range s.Cell {
			if !finite(a) {
				return fmt.Errorf("lattice vector %d is non-finite: %w", i, errkind.ErrInvalidInput)
			}
		}
	}
	return nil
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
