package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/graph"
	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/o3"
	"github.com/born-ml/mace/internal/parallel"
	"github.com/born-ml/mace/internal/radial"
)

// InteractionKind selects the message-passing block of a layer.
type InteractionKind int

const (
	// InteractionAgnostic applies a species-dependent linear map to the
	// aggregated message and has no skip connection.
	InteractionAgnostic InteractionKind = iota
	// InteractionResidual adds a species-dependent skip connection from
	// the layer input to the output of the symmetric contraction.
	InteractionResidual
)

// ParseInteractionKind maps a configuration name to an InteractionKind.
func ParseInteractionKind(name string) (InteractionKind, error) {
	switch name {
	case "agnostic":
		return InteractionAgnostic, nil
	case "residual":
		return InteractionResidual, nil
	}
	return 0, fmt.Errorf("unknown interaction %q: %w", name, errkind.ErrConfiguration)
}

// String returns the configuration name.
func (k InteractionKind) String() string {
	switch k {
	case InteractionAgnostic:
		return "agnostic"
	case InteractionResidual:
		return "residual"
	}
	return fmt.Sprintf("InteractionKind(%d)", int(k))
}

// interaction forms messages from neighbor features and edge attributes.
//
// Per receiver i:
//
//	m_i = linear(Σ_{e: j->i} TP(up(h_j), Y_e; R(r_e))) / avgNumNeighbors
//
// where R is the radial weight network. The agnostic variant then applies
// a species-dependent linear map to m_i; the residual variant instead maps
// h_i to the hidden irreps for use as a skip connection.
type interaction struct {
	kind     InteractionKind
	in       o3.Irreps
	attrs    o3.Irreps
	target   o3.Irreps
	numBasis int
	up       *o3.Linear
	tp       *o3.TensorProduct
	weights  *radial.WeightMLP
	linear   *o3.Linear
	species  *speciesLinear
	invAvg   float64
}

type interactionConfig struct {
	kind            InteractionKind
	in, hidden      o3.Irreps
	attrs, target   o3.Irreps
	numBasis        int
	radialHidden    []int
	numSpecies      int
	avgNumNeighbors float64
}

func newInteraction(cfg interactionConfig, table *o3.CouplingTable, init *nn.Initializer) (*interaction, error) {
	tp, err := o3.NewTensorProduct(cfg.in, cfg.attrs, cfg.target.Irreps(), table)
	if err != nil {
		return nil, err
	}
	it := &interaction{
		kind:     cfg.kind,
		in:       cfg.in,
		attrs:    cfg.attrs,
		target:   cfg.target,
		numBasis: cfg.numBasis,
		up:       o3.NewLinear(cfg.in, cfg.in, init),
		tp:       tp,
		weights:  radial.NewWeightMLP(cfg.numBasis, cfg.radialHidden, tp.WeightNumel(), nn.SiLU, init),
		linear:   o3.NewLinear(tp.OutIrreps(), cfg.target, init),
		invAvg:   1 / cfg.avgNumNeighbors,
	}
	switch cfg.kind {
	case InteractionAgnostic:
		it.species = newSpeciesLinear(cfg.target, cfg.target, cfg.numSpecies, init)
	case InteractionResidual:
		it.species = newSpeciesLinear(cfg.in, cfg.hidden, cfg.numSpecies, init)
	default:
		return nil, fmt.Errorf("interaction %v: %w", cfg.kind, errkind.ErrConfiguration)
	}
	return it, nil
}

// forward returns the messages of every node (layout target) and, for the
// residual variant, the skip connection (layout hidden). x holds the node
// features, attrs the edge harmonics and feats the radial edge features,
// all row-major.
func (it *interaction) forward(g *graph.Graph, x, attrs, feats []float64, cfg parallel.Config) (msg, sc []float64) {
	n := g.NumNodes
	inDim, shDim, numBasis := it.in.Dim(), it.attrs.Dim(), it.numBasis
	midDim, tgtDim := it.tp.OutIrreps().Dim(), it.target.Dim()

	up := make([]float64, n*inDim)
	parallel.For(n, func(i int) {
		it.up.Forward(x[i*inDim:(i+1)*inDim], up[i*inDim:(i+1)*inDim])
	}, cfg)

	msg = make([]float64, n*tgtDim)
	parallel.ForChunk(n, func(start, end int) {
		acc := make([]float64, midDim)
		edge := make([]float64, midDim)
		mixed := make([]float64, tgtDim)
		w := make([]float64, it.tp.WeightNumel())
		scratch := make([]float64, it.weights.Scratch())
		for i := start; i < end; i++ {
			clear(acc)
			for _, e := range g.Incoming(i) {
				j := g.Senders[e]
				it.weights.Forward(feats[e*numBasis:(e+1)*numBasis], w, scratch)
				it.tp.Forward(up[j*inDim:(j+1)*inDim], attrs[e*shDim:(e+1)*shDim], w, edge)
				floats.Add(acc, edge)
			}
			out := msg[i*tgtDim : (i+1)*tgtDim]
			if it.kind == InteractionAgnostic {
				it.linear.Forward(acc, mixed)
				floats.Scale(it.invAvg, mixed)
				it.species.forward(g.Species[i], mixed, out)
				continue
			}
			it.linear.Forward(acc, out)
			floats.Scale(it.invAvg, out)
		}
	}, cfg)

	if it.kind != InteractionResidual {
		return msg, nil
	}
	scDim := it.species.out.Dim()
	sc = make([]float64, n*scDim)
	parallel.For(n, func(i int) {
		it.species.forward(g.Species[i], x[i*inDim:(i+1)*inDim], sc[i*scDim:(i+1)*scDim])
	}, cfg)
	return msg, sc
}

func (it *interaction) parameters() []*nn.Parameter {
	var params []*nn.Parameter
	params = append(params, it.up.Parameters()...)
	params = append(params, it.weights.Parameters()...)
	params = append(params, it.linear.Parameters()...)
	params = append(params, it.species.parameters()...)
	return params
}
