// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes the dense layers the potential is built from.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, MLP
//   - Activations: SiLU, Tanh, Sigmoid, Identity
//   - Utilities: Module interface, Parameter, CountParameters
//   - Initialization: Initializer with seeded Normal draws
//
// Layers work on one sample at a time on float64 slices and scale their
// weights by 1/sqrt(fan_in), so unit-variance inputs stay normalized.
//
// # Basic Usage
//
//	init := nn.NewInitializer(42)
//	mlp := nn.NewMLP([]int{8, 64, 64, 16}, nn.SiLU, false, init)
//
//	y := make([]float64, 16)
//	mlp.Forward(x, y)
package nn
