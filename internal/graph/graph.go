package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/born-ml/mace/internal/errkind"
)

// minDistance is the shortest edge accepted; closer pairs have no
// well-defined direction.
const minDistance = 1e-8

// Graph is the directed neighbor graph of a structure.
//
// Edge e points from Senders[e] to Receivers[e] with vector
//
//	Vectors[e] = Positions[Receivers[e]] - Positions[Senders[e]] + Shifts[e]
//
// and Lengths[e] = |Vectors[e]| > 0. Both directions of every pair are
// present, and pairs repeat once per periodic image within the cutoff.
type Graph struct {
	NumNodes  int
	Numbers   []int
	Species   []int
	Positions []r3.Vec
	Senders   []int
	Receivers []int
	Shifts    []r3.Vec
	Vectors   []r3.Vec
	Lengths   []float64
	RMax      float64

	inPtr   []int
	inEdges []int
}

// NumEdges returns the number of directed edges.
func (g *Graph) NumEdges() int {
	return len(g.Senders)
}

// Incoming returns the edges received by node i in ascending edge order.
// The slice must not be modified.
func (g *Graph) Incoming(i int) []int {
	return g.inEdges[g.inPtr[i]:g.inPtr[i+1]]
}

// Build constructs the neighbor graph of s under cutoff rMax.
//
// For each ordered pair of atoms and each periodic image, the edge is kept
// when its length is at most rMax; an atom pairs with its own images but
// never with itself in the home cell. Positions need not lie inside the
// cell; Shifts absorb the lattice vectors between an atom and its wrapped
// copy. Edges are ordered by sender, then image, then receiver.
//
// Returns ErrInvalidInput for a non-positive cutoff, malformed structure,
// singular cell, or element missing from table, and ErrDomain when two
// atoms coincide.
func Build(s Structure, table ElementTable, rMax float64) (*Graph, error) {
	if !(rMax > 0) || math.IsInf(rMax, 0) {
		return nil, fmt.Errorf("cutoff %v must be positive and finite: %w", rMax, errkind.ErrInvalidInput)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		NumNodes:  s.Len(),
		Numbers:   append([]int(nil), s.Numbers...),
		Species:   make([]int, s.Len()),
		Positions: append([]r3.Vec(nil), s.Positions...),
		RMax:      rMax,
	}
	for i, z := range s.Numbers {
		idx, ok := table.Index(z)
		if !ok {
			return nil, fmt.Errorf("atom %d: element %s (Z=%d) not in table %s: %w",
				i, Symbol(z), z, table, errkind.ErrInvalidInput)
		}
		g.Species[i] = idx
	}

	images, wraps, err := periodicImages(s, rMax)
	if err != nil {
		return nil, err
	}
	for i := 0; i < g.NumNodes; i++ {
		for _, img := range images {
			for j := 0; j < g.NumNodes; j++ {
				if i == j && img.home {
					continue
				}
				shift := r3.Add(img.shift, r3.Sub(wraps[i], wraps[j]))
				v := r3.Add(r3.Sub(g.Positions[j], g.Positions[i]), shift)
				d := r3.Norm(v)
				if d > rMax {
					continue
				}
				if d < minDistance {
					return nil, fmt.Errorf("atoms %d and %d coincide (distance %g): %w", i, j, d, errkind.ErrDomain)
				}
				g.Senders = append(g.Senders, i)
				g.Receivers = append(g.Receivers, j)
				g.Shifts = append(g.Shifts, shift)
				g.Vectors = append(g.Vectors, v)
				g.Lengths = append(g.Lengths, d)
			}
		}
	}
	g.index()
	return g, nil
}

type image struct {
	shift r3.Vec
	home  bool
}

// periodicImages lists the lattice translations that can bring an atom
// within rMax of another, together with the lattice vector wraps[i] that
// moves atom i into the home cell along every periodic axis.
//
// With wrapped fractional coordinates in [0, 1), ceil(rMax/d_k) images are
// needed on each side of a periodic axis k, where d_k = 1/|b_k| is the
// spacing of lattice planes and b_k the reciprocal vector.
func periodicImages(s Structure, rMax float64) ([]image, []r3.Vec, error) {
	wraps := make([]r3.Vec, s.Len())
	if !s.Periodic() {
		return []image{{home: true}}, wraps, nil
	}

	c := s.Cell
	a := mat.NewDense(3, 3, []float64{
		c[0].X, c[0].Y, c[0].Z,
		c[1].X, c[1].Y, c[1].Z,
		c[2].X, c[2].Y, c[2].Z,
	})
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, nil, fmt.Errorf("cell is singular: %v: %w", err, errkind.ErrInvalidInput)
	}

	var n [3]int
	for k := 0; k < 3; k++ {
		if !s.PBC[k] {
			continue
		}
		b := r3.Vec{X: inv.At(0, k), Y: inv.At(1, k), Z: inv.At(2, k)}
		n[k] = int(math.Ceil(rMax * r3.Norm(b)))
		for i, p := range s.Positions {
			cells := math.Floor(r3.Dot(p, b))
			wraps[i] = r3.Add(wraps[i], r3.Scale(cells, c[k]))
		}
	}

	var out []image
	for i := -n[0]; i <= n[0]; i++ {
		for j := -n[1]; j <= n[1]; j++ {
			for k := -n[2]; k <= n[2]; k++ {
				shift := r3.Add(r3.Add(r3.Scale(float64(i), c[0]), r3.Scale(float64(j), c[1])), r3.Scale(float64(k), c[2]))
				out = append(out, image{shift: shift, home: i == 0 && j == 0 && k == 0})
			}
		}
	}
	return out, wraps, nil
}

// index builds the receiver-sorted incoming edge lists.
func (g *Graph) index() {
	g.inPtr = make([]int, g.NumNodes+1)
	for _, r := range g.Receivers {
		g.inPtr[r+1]++
	}
	for i := 0; i < g.NumNodes; i++ {
		g.inPtr[i+1] += g.inPtr[i]
	}
	g.inEdges = make([]int, len(g.Receivers))
	fill := append([]int(nil), g.inPtr[:g.NumNodes]...)
	for e, r := range g.Receivers {
		g.inEdges[fill[r]] = e
		fill[r]++
	}
}
