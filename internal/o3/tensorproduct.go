package o3

import (
	"fmt"
	"math"

	"github.com/born-ml/mace/internal/errkind"
)

// Path is one coupling route of a TensorProduct: block In1 of the node
// features times block In2 of the edge attributes into Out.
type Path struct {
	In1, In2 int
	Out      Irrep
	Mul      int
}

type cgEntry struct {
	i3, i1, i2 int
	c          float64
}

type tpPath struct {
	Path
	off1, off2, outOff int
	d1, d3             int
	weightOff          int
	entries            []cgEntry
}

// TensorProduct couples multi-channel features with single-channel edge
// attributes channel by channel ("uvu"): each channel u of block In1 is
// coupled with the attribute block and scaled by its own weight.
//
//	out[path][u][M3] = w[path][u] * sqrt(2l3+1) * Σ C[M3][m1][m2] x[u][m1] y[m2]
//
// Weights are supplied per call, one per (path, channel), so they can be
// generated per edge from the radial basis.
type TensorProduct struct {
	in1, in2 Irreps
	out      Irreps
	paths    []tpPath
	numel    int
}

// NewTensorProduct enumerates every path whose output irrep is listed in
// targets. in2 must have multiplicity one per block.
//
// Returns ErrConfiguration if a block of in2 has multiplicity other than
// one, a degree exceeds the coupling table, or no path reaches a target.
func NewTensorProduct(in1, in2 Irreps, targets []Irrep, table *CouplingTable) (*TensorProduct, error) {
	for _, mi := range in2 {
		if mi.Mul != 1 {
			return nil, fmt.Errorf("tensor product attributes %s must have multiplicity 1: %w", in2, errkind.ErrConfiguration)
		}
	}
	if max(in1.MaxL(), in2.MaxL()) > table.LMax() {
		return nil, fmt.Errorf("tensor product %s x %s exceeds coupling table degree %d: %w",
			in1, in2, table.LMax(), errkind.ErrConfiguration)
	}

	tp := &TensorProduct{in1: in1, in2: in2}
	offs1, offs2 := in1.Offsets(), in2.Offsets()
	outOff, weightOff := 0, 0
	reached := make(map[Irrep]bool)
	for b1, mi1 := range in1 {
		for b2, mi2 := range in2 {
			for _, ir3 := range targets {
				if !Couples(mi1.Irrep, mi2.Irrep, ir3) || ir3.L > table.LMax() {
					continue
				}
				p := tpPath{
					Path:      Path{In1: b1, In2: b2, Out: ir3, Mul: mi1.Mul},
					off1:      offs1[b1],
					off2:      offs2[b2],
					outOff:    outOff,
					d1:        mi1.Irrep.Dim(),
					d3:        ir3.Dim(),
					weightOff: weightOff,
				}
				p.entries = sparseCoupling(table.Get(mi1.L, mi2.L, ir3.L), mi1.Irrep.Dim(), mi2.Irrep.Dim(),
					math.Sqrt(float64(ir3.Dim())))
				tp.paths = append(tp.paths, p)
				tp.out = append(tp.out, MulIrrep{Mul: mi1.Mul, Irrep: ir3})
				outOff += mi1.Mul * ir3.Dim()
				weightOff += mi1.Mul
				reached[ir3] = true
			}
		}
	}
	tp.numel = weightOff
	for _, ir := range targets {
		if !reached[ir] {
			return nil, fmt.Errorf("no coupling path of %s x %s reaches %s: %w", in1, in2, ir, errkind.ErrConfiguration)
		}
	}
	return tp, nil
}

// sparseCoupling lists the nonzero entries of a C[m3][m1][m2] table.
func sparseCoupling(c []float64, d1, d2 int, scale float64) []cgEntry {
	var out []cgEntry
	for idx, v := range c {
		if v == 0 {
			continue
		}
		i2 := idx % d2
		i1 := (idx / d2) % d1
		i3 := idx / (d1 * d2)
		out = append(out, cgEntry{i3: i3, i1: i1, i2: i2, c: v * scale})
	}
	return out
}

// OutIrreps returns the output layout: one block per path, in path order.
func (tp *TensorProduct) OutIrreps() Irreps {
	return tp.out
}

// WeightNumel returns the number of weights Forward expects.
func (tp *TensorProduct) WeightNumel() int {
	return tp.numel
}

// Paths returns the coupling paths in output order.
func (tp *TensorProduct) Paths() []Path {
	out := make([]Path, len(tp.paths))
	for i, p := range tp.paths {
		out[i] = p.Path
	}
	return out
}

// Forward computes the weighted product of x (layout in1) and y (layout
// in2) into out (layout OutIrreps). out is overwritten.
func (tp *TensorProduct) Forward(x, y, w, out []float64) {
	if len(x) != tp.in1.Dim() || len(y) != tp.in2.Dim() || len(w) != tp.numel || len(out) != tp.out.Dim() {
		panic(fmt.Sprintf("TensorProduct.Forward: got lengths x=%d y=%d w=%d out=%d, want %d %d %d %d",
			len(x), len(y), len(w), len(out), tp.in1.Dim(), tp.in2.Dim(), tp.numel, tp.out.Dim()))
	}
	clear(out)
	for i := range tp.paths {
		p := &tp.paths[i]
		for u := 0; u < p.Mul; u++ {
			wu := w[p.weightOff+u]
			if wu == 0 {
				continue
			}
			xu := x[p.off1+u*p.d1 : p.off1+(u+1)*p.d1]
			ou := out[p.outOff+u*p.d3 : p.outOff+(u+1)*p.d3]
			for _, e := range p.entries {
				ou[e.i3] += wu * e.c * xu[e.i1] * y[p.off2+e.i2]
			}
		}
	}
}
