package model

import (
	"fmt"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/o3"
)

// ReadoutKind selects how a layer maps node features to a node energy.
type ReadoutKind int

const (
	// ReadoutLinear is a single equivariant linear map to one scalar.
	ReadoutLinear ReadoutKind = iota
	// ReadoutNonLinear is linear -> gate -> linear over the scalar
	// channels.
	ReadoutNonLinear
)

// String returns the readout name.
func (k ReadoutKind) String() string {
	switch k {
	case ReadoutLinear:
		return "linear"
	case ReadoutNonLinear:
		return "nonlinear"
	}
	return fmt.Sprintf("ReadoutKind(%d)", int(k))
}

// readout produces one energy per node. It reads only the 0e channels of
// its input, so node energies are rotation invariant.
type readout struct {
	kind    ReadoutKind
	in      o3.Irreps
	linear  *o3.Linear
	mlp     *nn.MLP
	scalars []int // indices of the 0e channels in the input layout
	buf     int
}

func newReadout(kind ReadoutKind, in o3.Irreps, width int, gate nn.Activation, init *nn.Initializer) (*readout, error) {
	r := &readout{kind: kind, in: in}
	scalar := o3.Irrep{L: 0, P: 1}
	for b, off := range in.Offsets() {
		if in[b].Irrep != scalar {
			continue
		}
		for u := 0; u < in[b].Mul; u++ {
			r.scalars = append(r.scalars, off+u)
		}
	}
	if len(r.scalars) == 0 {
		return nil, fmt.Errorf("readout of %s has no scalar channels: %w", in, errkind.ErrConfiguration)
	}

	switch kind {
	case ReadoutLinear:
		r.linear = o3.NewLinear(in, o3.Irreps{{Mul: 1, Irrep: scalar}}, init)
	case ReadoutNonLinear:
		r.mlp = nn.NewMLP([]int{len(r.scalars), width, 1}, gate, false, init)
		r.buf = r.mlp.Scratch()
	default:
		return nil, fmt.Errorf("readout %v: %w", kind, errkind.ErrConfiguration)
	}
	return r, nil
}

// forward returns the energy of one node with features x.
func (r *readout) forward(x []float64) float64 {
	var y [1]float64
	if r.kind == ReadoutLinear {
		r.linear.Forward(x, y[:])
		return y[0]
	}
	s := make([]float64, len(r.scalars)+r.buf)
	in, scratch := s[:len(r.scalars)], s[len(r.scalars):]
	for i, idx := range r.scalars {
		in[i] = x[idx]
	}
	r.mlp.ForwardInto(in, y[:], scratch)
	return y[0]
}

func (r *readout) parameters() []*nn.Parameter {
	if r.linear != nil {
		return r.linear.Parameters()
	}
	return r.mlp.Parameters()
}
