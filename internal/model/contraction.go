package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/o3"
	"github.com/born-ml/mace/internal/tensor"
)

// SymmetricContraction raises the body order of the atomic basis. For
// every channel c and output irrep L it computes
//
//	B[c][M] = Σ_ν Σ_k W_ν[z][k][c] Σ U_ν,k[M][i1..iν] A[c][i1] ... A[c][iν]
//
// where z is the species of the node and U the symmetric coupling basis.
// The sum over body orders is evaluated as a nested recurrence, contracting
// one copy of A at a time starting from the highest order.
type SymmetricContraction struct {
	in       o3.Irreps
	out      o3.Irreps
	basis    *o3.SymmetricBasis
	channels int
	species  int
	inOffs   []int
	outOffs  []int
	weights  [][]*nn.Parameter // [out][nu-1], shape [species, paths, channels]
	maxSize  int
}

// NewSymmetricContraction builds the contraction of in (equal multiplicity
// in every block) to the irreps out, up to body order correlation, with
// intermediate degrees limited by the coupling table.
func NewSymmetricContraction(in o3.Irreps, out []o3.Irrep, correlation, numSpecies int,
	table *o3.CouplingTable, init *nn.Initializer,
) (*SymmetricContraction, error) {
	channels, ok := in.Channels()
	if !ok {
		return nil, fmt.Errorf("symmetric contraction input %s needs equal multiplicities: %w", in, errkind.ErrConfiguration)
	}
	if numSpecies < 1 {
		return nil, fmt.Errorf("symmetric contraction for %d species: %w", numSpecies, errkind.ErrConfiguration)
	}
	basis, err := o3.NewSymmetricBasis(in.Irreps(), out, correlation, table.LMax(), table)
	if err != nil {
		return nil, err
	}

	outIrreps := make(o3.Irreps, len(out))
	for o, ir := range out {
		outIrreps[o] = o3.MulIrrep{Mul: channels, Irrep: ir}
	}
	sc := &SymmetricContraction{
		in:       in,
		out:      outIrreps,
		basis:    basis,
		channels: channels,
		species:  numSpecies,
		inOffs:   in.Offsets(),
		outOffs:  outIrreps.Offsets(),
		weights:  make([][]*nn.Parameter, len(out)),
	}
	for o, ir := range out {
		sc.weights[o] = make([]*nn.Parameter, correlation)
		sc.maxSize = max(sc.maxSize, ir.Dim()*tensor.Repeat(basis.Dim(), correlation).NumElements())
		for nu := 1; nu <= correlation; nu++ {
			paths := basis.NumPaths(o, nu)
			if paths == 0 {
				continue
			}
			data := init.Normal(numSpecies * paths * channels)
			floats.Scale(1/float64(paths), data)
			name := fmt.Sprintf("weights_%s_%d", ir, nu)
			sc.weights[o][nu-1] = nn.NewParameter(name, tensor.Shape{numSpecies, paths, channels}, data)
		}
	}
	return sc, nil
}

// InIrreps returns the input layout.
func (sc *SymmetricContraction) InIrreps() o3.Irreps {
	return sc.in
}

// OutIrreps returns the output layout: channels copies of every output
// irrep.
func (sc *SymmetricContraction) OutIrreps() o3.Irreps {
	return sc.out
}

// Basis returns the coupling basis.
func (sc *SymmetricContraction) Basis() *o3.SymmetricBasis {
	return sc.basis
}

// Forward contracts the features x of one node of the given species into
// y, overwriting it.
func (sc *SymmetricContraction) Forward(species int, x, y []float64) {
	if len(x) != sc.in.Dim() || len(y) != sc.out.Dim() {
		panic(fmt.Sprintf("SymmetricContraction.Forward: got lengths %d -> %d, want %d -> %d",
			len(x), len(y), sc.in.Dim(), sc.out.Dim()))
	}
	if species < 0 || species >= sc.species {
		panic(fmt.Sprintf("SymmetricContraction.Forward: species %d out of range [0, %d)", species, sc.species))
	}
	dim := sc.basis.Dim()
	a := make([]float64, dim)
	bufs := [2][]float64{make([]float64, sc.maxSize), make([]float64, sc.maxSize)}

	for c := 0; c < sc.channels; c++ {
		sc.gather(c, x, a)
		for o, mi := range sc.out {
			d := mi.Irrep.Dim()
			res := sc.contract(o, d, species, c, a, bufs)
			copy(y[sc.outOffs[o]+c*d:sc.outOffs[o]+(c+1)*d], res)
		}
	}
}

// gather extracts channel c of every input block into a.
func (sc *SymmetricContraction) gather(c int, x, a []float64) {
	pos := 0
	for b, mi := range sc.in {
		d := mi.Irrep.Dim()
		copy(a[pos:pos+d], x[sc.inOffs[b]+c*d:sc.inOffs[b]+(c+1)*d])
		pos += d
	}
}

// contract evaluates output o for one channel. The tensor at order ν is
// laid out [M][i1..iν] with iν fastest, so contracting iν with a reduces
// it to the layout of order ν-1.
func (sc *SymmetricContraction) contract(o, d, species, c int, a []float64, bufs [2][]float64) []float64 {
	dim := len(a)
	corr := sc.basis.Correlation()
	var cur []float64
	for nu := corr; nu >= 1; nu-- {
		size := d * tensor.Repeat(dim, nu).NumElements()
		t := bufs[nu%2][:size]
		if nu == corr {
			clear(t)
		} else {
			copy(t, cur)
		}
		if p := sc.weights[o][nu-1]; p != nil {
			w := p.Data()
			paths := p.Shape()[1]
			for k, u := range sc.basis.Tensors(o, nu) {
				if wk := w[(species*paths+k)*sc.channels+c]; wk != 0 {
					floats.AddScaled(t, wk, u)
				}
			}
		}
		next := bufs[(nu+1)%2][:size/dim]
		for P := range next {
			next[P] = floats.Dot(t[P*dim:(P+1)*dim], a)
		}
		cur = next
	}
	return cur
}

// Parameters returns the species-indexed weights.
func (sc *SymmetricContraction) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, perOrder := range sc.weights {
		for _, p := range perOrder {
			if p != nil {
				params = append(params, p)
			}
		}
	}
	return params
}
