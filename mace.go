// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mace

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/born-ml/mace/internal/config"
	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/graph"
	"github.com/born-ml/mace/internal/model"
	"github.com/born-ml/mace/internal/o3"
	"github.com/born-ml/mace/internal/parallel"
	"github.com/born-ml/mace/internal/xyz"
)

// Errors reported by the potential.
var (
	ErrConfiguration = errkind.ErrConfiguration
	ErrInvalidInput  = errkind.ErrInvalidInput
	ErrDomain        = errkind.ErrDomain
)

// Config holds the model hyperparameters.
type Config = config.Config

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a YAML, TOML or JSON file on top of the defaults, with
// MACE_* environment overrides. An empty path loads defaults only.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// NewLogger creates a leveled logger writing to w.
func NewLogger(level string, w io.Writer, console bool) zerolog.Logger {
	return config.NewLogger(level, w, console)
}

// Structures and graphs

// Structure is an atomic configuration.
type Structure = graph.Structure

// Cell holds the three lattice vectors of a periodic structure.
type Cell = graph.Cell

// ElementTable maps atomic numbers to species indices.
type ElementTable = graph.ElementTable

// Graph is the neighbor graph of one structure.
type Graph = graph.Graph

// Batch is several graphs packed into one index space.
type Batch = graph.Batch

// NewElementTable creates a table from atomic numbers in index order.
func NewElementTable(numbers []int) (ElementTable, error) {
	return graph.NewElementTable(numbers)
}

// BuildGraph builds the neighbor graph of s under cutoff rMax.
func BuildGraph(s Structure, table ElementTable, rMax float64) (*Graph, error) {
	return graph.Build(s, table, rMax)
}

// BuildBatch builds and packs the graphs of structures.
func BuildBatch(structures []Structure, table ElementTable, rMax float64) (*Batch, error) {
	return graph.BuildBatch(structures, table, rMax)
}

// ReadXYZ parses XYZ or extended XYZ frames.
func ReadXYZ(r io.Reader) ([]Structure, error) {
	return xyz.Read(r)
}

// ReadXYZFile parses the XYZ file at path.
func ReadXYZFile(path string) ([]Structure, error) {
	return xyz.ReadFile(path)
}

// WriteXYZ writes structures as extended XYZ, optionally with energies.
func WriteXYZ(w io.Writer, structures []Structure, energies []float64) error {
	return xyz.Write(w, structures, energies)
}

// Model

// Model is the potential.
type Model = model.Model

// Output holds energies and node features of a forward pass.
type Output = model.Output

// Option configures a Model.
type Option = model.Option

// Irreps describes the block layout of node features.
type Irreps = o3.Irreps

// InteractionKind selects the message-passing block of a layer.
type InteractionKind = model.InteractionKind

// Interaction variants.
const (
	InteractionAgnostic = model.InteractionAgnostic
	InteractionResidual = model.InteractionResidual
)

// New builds a model from cfg.
//
// Example:
//
//	cfg := mace.DefaultConfig()
//	cfg.Channels = 32
//	model, err := mace.New(cfg, mace.WithWorkers(4))
func New(cfg Config, opts ...Option) (*Model, error) {
	return model.New(cfg, opts...)
}

// WithLogger sets the model logger.
func WithLogger(logger zerolog.Logger) Option {
	return model.WithLogger(logger)
}

// WithWorkers limits the goroutines used per forward pass. n == 1 runs
// sequentially.
func WithWorkers(n int) Option {
	return model.WithParallel(parallel.WithWorkers(n))
}
