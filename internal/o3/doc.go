// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package o3 implements the rotation-equivariant algebra of the potential.
//
// # Overview
//
// Features are organized in irreducible representations ("irreps") of
// O(3), written like e3nn: "32x0e+32x1o" is 32 scalar channels and 32
// vector channels. Within a block, data is channel-major:
//
//	index = offset(block) + channel*(2l+1) + (m+l)
//
// The package provides:
//   - Irrep, Irreps: descriptors and block layout
//   - SphericalHarmonics: real, component-normalized angular encoding
//   - WignerD: rotation matrices consistent with SphericalHarmonics
//   - CouplingTable: real Clebsch-Gordan coefficients, precomputed once
//   - TensorProduct: weighted "uvu" coupling of node features and edges
//   - Linear: per-irrep channel mixing
//   - SymmetricBasis: permutation-symmetric many-body coupling tensors
//
// # Conventions
//
// WignerD and CouplingTable are derived numerically from
// SphericalHarmonics (least squares and null spaces via gonum), so all
// tables share one real basis and no phase convention has to be chosen
// by hand.
package o3
