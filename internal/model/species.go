package model

import (
	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/o3"
)

// speciesLinear is an equivariant linear map with a separate weight set
// per chemical element. It is the tensor product of node features with
// the one-hot species vector, evaluated by table lookup.
type speciesLinear struct {
	in, out o3.Irreps
	per     []*o3.Linear
}

func newSpeciesLinear(in, out o3.Irreps, numSpecies int, init *nn.Initializer) *speciesLinear {
	s := &speciesLinear{in: in, out: out, per: make([]*o3.Linear, numSpecies)}
	for z := range s.per {
		s.per[z] = o3.NewLinear(in, out, init)
	}
	return s
}

func (s *speciesLinear) forward(species int, x, y []float64) {
	s.per[species].Forward(x, y)
}

func (s *speciesLinear) parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, l := range s.per {
		params = append(params, l.Parameters()...)
	}
	return params
}
