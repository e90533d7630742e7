package model

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/mace/internal/config"
	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/graph"
	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/o3"
	"github.com/born-ml/mace/internal/parallel"
	"github.com/born-ml/mace/internal/radial"
)

// Option configures a Model.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	parallel parallel.Config
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithParallel sets how per-node and per-edge work is split across
// goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.parallel = cfg
	}
}

type layer struct {
	interaction *interaction
	product     *SymmetricContraction
	linear      *o3.Linear
	readout     *readout
	hidden      o3.Irreps
}

// Model is the potential: species embedding, a stack of layers and the
// reference energies. It is immutable after New.
type Model struct {
	cfg       config.Config
	elements  graph.ElementTable
	e0        []float64
	table     *o3.CouplingTable
	radial    *radial.Embedding
	attrs     o3.Irreps
	embedding *nn.Linear
	embedded  o3.Irreps
	layers    []layer

	logger   zerolog.Logger
	parallel parallel.Config
}

// New builds a model from cfg with weights drawn from cfg.Seed.
//
// Returns ErrConfiguration when cfg is invalid. No partial model is
// returned.
func New(cfg config.Config, opts ...Option) (*Model, error) {
	o := &options{
		logger:   zerolog.Nop(),
		parallel: parallel.DefaultConfig(),
	}
	if cfg.Workers > 0 {
		o.parallel = parallel.WithWorkers(cfg.Workers)
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kinds, err := interactionKinds(cfg)
	if err != nil {
		return nil, err
	}
	gate, err := nn.ParseActivation(cfg.Gate)
	if err != nil {
		return nil, fmt.Errorf("gate: %v: %w", err, errkind.ErrConfiguration)
	}
	elements, err := graph.NewElementTable(cfg.Elements)
	if err != nil {
		return nil, err
	}
	table, err := o3.NewCouplingTable(cfg.MaxEll)
	if err != nil {
		return nil, err
	}
	emb, err := radial.NewEmbedding(cfg.NumBessel, cfg.NumPolyCutoff, cfg.RMax)
	if err != nil {
		return nil, err
	}

	init := nn.NewInitializer(cfg.Seed)
	numSpecies := elements.Len()
	m := &Model{
		cfg:       cfg,
		elements:  elements,
		e0:        make([]float64, numSpecies),
		table:     table,
		radial:    emb,
		attrs:     o3.SphericalIrreps(cfg.MaxEll, 1),
		embedding: nn.NewLinear(numSpecies, cfg.Channels, false, init),
		embedded:  o3.Irreps{{Mul: cfg.Channels, Irrep: o3.NaturalIrrep(0)}},
		logger:    o.logger,
		parallel:  o.parallel,
	}
	copy(m.e0, cfg.AtomicEnergies)

	target := o3.SphericalIrreps(cfg.MaxEll, cfg.Channels)
	in := m.embedded
	for l, kind := range kinds {
		last := l == len(kinds)-1
		hidden := o3.SphericalIrreps(cfg.HiddenMaxL, cfg.Channels)
		rk := ReadoutLinear
		if last {
			hidden = o3.SphericalIrreps(0, cfg.Channels)
			rk = ReadoutNonLinear
		}

		it, err := newInteraction(interactionConfig{
			kind:            kind,
			in:              in,
			hidden:          hidden,
			attrs:           m.attrs,
			target:          target,
			numBasis:        emb.Len(),
			radialHidden:    cfg.RadialHidden,
			numSpecies:      numSpecies,
			avgNumNeighbors: cfg.AvgNumNeighbors,
		}, table, init)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		product, err := NewSymmetricContraction(target, hidden.Irreps(), cfg.Correlation, numSpecies, table, init)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		ro, err := newReadout(rk, hidden, cfg.MLPWidth, gate, init)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		m.layers = append(m.layers, layer{
			interaction: it,
			product:     product,
			linear:      o3.NewLinear(product.OutIrreps(), hidden, init),
			readout:     ro,
			hidden:      hidden,
		})
		m.logger.Debug().
			Int("layer", l).
			Str("interaction", kind.String()).
			Str("readout", rk.String()).
			Str("messages", it.tp.OutIrreps().Sorted().String()).
			Str("hidden", hidden.String()).
			Msg("layer built")
		in = hidden
	}

	m.logger.Info().
		Str("elements", elements.String()).
		Int("layers", len(m.layers)).
		Int("parameters", nn.CountParameters(m.Parameters())).
		Msg("model built")
	return m, nil
}

func interactionKinds(cfg config.Config) ([]InteractionKind, error) {
	kinds := make([]InteractionKind, cfg.NumInteractions)
	for l := range kinds {
		if len(cfg.Interactions) == 0 {
			if l > 0 {
				kinds[l] = InteractionResidual
			}
			continue
		}
		k, err := ParseInteractionKind(cfg.Interactions[l])
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		kinds[l] = k
	}
	return kinds, nil
}

// Config returns the configuration the model was built from.
func (m *Model) Config() config.Config {
	return m.cfg
}

// Elements returns the element table graphs must be built with.
func (m *Model) Elements() graph.ElementTable {
	return m.elements
}

// NumLayers returns the number of interaction layers.
func (m *Model) NumLayers() int {
	return len(m.layers)
}

// HiddenIrreps returns the node feature layout after layer l.
func (m *Model) HiddenIrreps(l int) o3.Irreps {
	return m.layers[l].hidden
}

// Parameters returns every learnable parameter in a fixed order.
func (m *Model) Parameters() []*nn.Parameter {
	params := m.embedding.Parameters()
	for _, ly := range m.layers {
		params = append(params, ly.interaction.parameters()...)
		params = append(params, ly.product.Parameters()...)
		params = append(params, ly.linear.Parameters()...)
		params = append(params, ly.readout.parameters()...)
	}
	return params
}

// Energy evaluates a single graph.
func (m *Model) Energy(g *graph.Graph) (*Output, error) {
	return m.Forward(graph.NewBatch(g))
}

// Forward evaluates every graph of the batch.
//
// Returns ErrInvalidInput when the batch was built with a different
// element table or a shorter cutoff than the model, and ErrDomain for a
// zero-length edge.
func (m *Model) Forward(b *graph.Batch) (*Output, error) {
	g := b.Graph
	if err := m.check(g); err != nil {
		return nil, err
	}
	attrs, feats, err := m.encodeEdges(g)
	if err != nil {
		return nil, err
	}

	n := g.NumNodes
	numLayers := len(m.layers)
	out := &Output{
		NodeEnergy:    make([]float64, n),
		NodeFeatures:  make([][]float64, numLayers),
		FeatureIrreps: make([]o3.Irreps, numLayers),
	}

	e0 := make([]float64, n)
	for i, z := range g.Species {
		e0[i] = m.e0[z]
	}
	contributions := [][]float64{ScatterSum(e0, b.Membership, b.NumGraphs)}
	copy(out.NodeEnergy, e0)

	x := m.embed(g)
	nodeEnergy := make([]float64, n)
	for l := range m.layers {
		ly := &m.layers[l]
		msg, sc := ly.interaction.forward(g, x, attrs, feats, m.parallel)
		x = m.product(ly, g, msg, sc)

		dim := ly.hidden.Dim()
		parallel.For(n, func(i int) {
			nodeEnergy[i] = ly.readout.forward(x[i*dim : (i+1)*dim])
		}, m.parallel)
		floats.Add(out.NodeEnergy, nodeEnergy)
		contributions = append(contributions, ScatterSum(nodeEnergy, b.Membership, b.NumGraphs))

		out.NodeFeatures[l] = x
		out.FeatureIrreps[l] = ly.hidden
		m.logger.Debug().
			Int("layer", l).
			Int("nodes", n).
			Int("edges", g.NumEdges()).
			Msg("layer evaluated")
	}

	out.Energy = make([]float64, b.NumGraphs)
	out.Contributions = make([][]float64, b.NumGraphs)
	for k := range out.Energy {
		row := make([]float64, len(contributions))
		for c, per := range contributions {
			row[c] = per[k]
		}
		out.Contributions[k] = row
		out.Energy[k] = floats.Sum(row)
	}
	return out, nil
}

// check verifies that g was built for this model. A graph without atoms
// has nothing to evaluate and passes any cutoff.
func (m *Model) check(g *graph.Graph) error {
	if g.NumNodes > 0 && g.RMax < m.cfg.RMax {
		return fmt.Errorf("graph cutoff %g is shorter than model cutoff %g: %w", g.RMax, m.cfg.RMax, errkind.ErrInvalidInput)
	}
	for i, z := range g.Numbers {
		idx, ok := m.elements.Index(z)
		if !ok || idx != g.Species[i] {
			return fmt.Errorf("atom %d: element %s not indexed as in %s: %w",
				i, graph.Symbol(z), m.elements, errkind.ErrInvalidInput)
		}
	}
	return nil
}

// encodeEdges computes the spherical harmonics and radial features of
// every edge.
func (m *Model) encodeEdges(g *graph.Graph) (attrs, feats []float64, err error) {
	ne := g.NumEdges()
	shDim, nb := m.attrs.Dim(), m.radial.Len()
	attrs = make([]float64, ne*shDim)
	feats = make([]float64, ne*nb)
	errs := make([]error, ne)
	parallel.For(ne, func(e int) {
		errs[e] = o3.SphericalHarmonics(m.cfg.MaxEll, g.Vectors[e], attrs[e*shDim:(e+1)*shDim])
		m.radial.Compute(g.Lengths[e], feats[e*nb:(e+1)*nb])
	}, m.parallel)
	for e, err := range errs {
		if err != nil {
			return nil, nil, fmt.Errorf("edge %d (%d -> %d): %w", e, g.Senders[e], g.Receivers[e], err)
		}
	}
	return attrs, feats, nil
}

// embed maps the one-hot species of every node to scalar features.
func (m *Model) embed(g *graph.Graph) []float64 {
	dim := m.embedded.Dim()
	x := make([]float64, g.NumNodes*dim)
	onehot := make([]float64, m.elements.Len())
	for i, z := range g.Species {
		clear(onehot)
		onehot[z] = 1
		m.embedding.Forward(onehot, x[i*dim:(i+1)*dim])
	}
	return x
}

// product applies the symmetric contraction, the linear map to the hidden
// irreps and the skip connection when present.
func (m *Model) product(ly *layer, g *graph.Graph, msg, sc []float64) []float64 {
	n := g.NumNodes
	inDim, midDim, dim := ly.product.InIrreps().Dim(), ly.product.OutIrreps().Dim(), ly.hidden.Dim()
	x := make([]float64, n*dim)
	parallel.ForChunk(n, func(start, end int) {
		buf := make([]float64, midDim)
		for i := start; i < end; i++ {
			ly.product.Forward(g.Species[i], msg[i*inDim:(i+1)*inDim], buf)
			xi := x[i*dim : (i+1)*dim]
			ly.linear.Forward(buf, xi)
			if sc != nil {
				floats.Add(xi, sc[i*dim:(i+1)*dim])
			}
		}
	}, m.parallel)
	return x
}

// EvaluateBatch evaluates graphs concurrently, one Output per graph in
// input order. It stops at the first error or when ctx is cancelled.
func (m *Model) EvaluateBatch(ctx context.Context, graphs []*graph.Graph) ([]*Output, error) {
	outs := make([]*Output, len(graphs))
	eg, ctx := errgroup.WithContext(ctx)
	limit := m.parallel.NumWorkers
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(limit)
	for k, g := range graphs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := m.Energy(g)
			if err != nil {
				return fmt.Errorf("graph %d: %w", k, err)
			}
			outs[k] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}
