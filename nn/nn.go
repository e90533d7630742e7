// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mace/internal/nn"
)

// Module is implemented by every layer that owns parameters.
type Module = nn.Module

// Parameter is a named weight array.
type Parameter = nn.Parameter

// CountParameters returns the total number of scalars in params.
func CountParameters(params []*Parameter) int {
	return nn.CountParameters(params)
}

// Initializer draws reproducible initial weights.
type Initializer = nn.Initializer

// NewInitializer creates an Initializer seeded with seed.
func NewInitializer(seed uint64) *Initializer {
	return nn.NewInitializer(seed)
}

// Layers

// Linear is a fully connected layer.
type Linear = nn.Linear

// NewLinear creates a linear layer with N(0, 1) weights.
//
// Example:
//
//	layer := nn.NewLinear(8, 16, false, nn.NewInitializer(1))
func NewLinear(inFeatures, outFeatures int, bias bool, init *Initializer) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, bias, init)
}

// MLP is a stack of Linear layers with normalized activations.
type MLP = nn.MLP

// NewMLP creates an MLP with the given widths, input first.
func NewMLP(widths []int, act Activation, bias bool, init *Initializer) *MLP {
	return nn.NewMLP(widths, act, bias, init)
}

// Activations

// Activation is a scalar nonlinearity.
type Activation = nn.Activation

// Supported activations.
const (
	SiLU     = nn.SiLU
	Tanh     = nn.Tanh
	Sigmoid  = nn.Sigmoid
	Identity = nn.Identity
)

// ParseActivation maps a name such as "silu" to an Activation.
func ParseActivation(name string) (Activation, error) {
	return nn.ParseActivation(name)
}
