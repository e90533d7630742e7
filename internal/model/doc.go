// Package model assembles the equivariant message-passing potential.
//
// A Model embeds species into scalar node features and applies a stack of
// layers. Each layer forms messages from neighbor features, spherical
// harmonics of the edge directions and a learned radial basis, raises
// their body order with a symmetric contraction, and reads out one energy
// per node. Node energies of all layers plus per-element reference
// energies are summed per graph.
//
// Example:
//
//	cfg := config.Default()
//	m, err := model.New(cfg)
//	if err != nil {
//		return err
//	}
//	g, err := graph.Build(structure, m.Elements(), cfg.RMax)
//	if err != nil {
//		return err
//	}
//	out, err := m.Energy(g)
//
// Forward passes do not modify the model, so one Model can serve many
// goroutines.
package model
