// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mace evaluates an equivariant many-body interatomic potential.
//
// # Overview
//
// The potential maps an atomic structure to its energy in four stages:
//   - Graph: neighbor pairs within a cutoff, with periodic images
//   - Encoding: spherical harmonics of edge directions and a Bessel
//     radial basis with a smooth polynomial cutoff
//   - Layers: tensor-product messages, neighbor sums and a symmetric
//     contraction that raises the body order
//   - Readout: per-node energies summed per structure, plus per-element
//     reference energies
//
// # Basic Usage
//
//	cfg, err := mace.LoadConfig("model.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := mace.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	structures, err := mace.ReadXYZFile("water.xyz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	batch, err := mace.BuildBatch(structures, model.Elements(), cfg.RMax)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := model.Forward(batch)
//	// out.Energy[k] is the energy of structure k
//
// # Errors
//
// Failures wrap one of ErrConfiguration, ErrInvalidInput or ErrDomain;
// test with errors.Is.
//
// # Concurrency
//
// A Model is read-only after New. Forward, Energy and EvaluateBatch may be
// called from many goroutines.
package mace
