// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mace_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mace"
)

const molecules = `3
Properties=species:S:1:pos:R:3
O 0.0 0.0 0.0
H 0.757 0.586 0.0
H -0.757 0.586 0.0
5
methane
C 0 0 0
H 0.63 0.63 0.63
H -0.63 -0.63 0.63
H -0.63 0.63 -0.63
H 0.63 -0.63 -0.63
`

func smallConfig() mace.Config {
	cfg := mace.DefaultConfig()
	cfg.Elements = []int{1, 6, 8}
	cfg.AtomicEnergies = []float64{-0.5, -37.8, -75.0}
	cfg.RMax = 3.0
	cfg.MaxEll = 2
	cfg.Channels = 8
	cfg.Correlation = 2
	cfg.RadialHidden = []int{16}
	return cfg
}

func TestEndToEnd(t *testing.T) {
	cfg := smallConfig()
	model, err := mace.New(cfg, mace.WithWorkers(2))
	require.NoError(t, err)

	structures, err := mace.ReadXYZ(strings.NewReader(molecules))
	require.NoError(t, err)
	require.Len(t, structures, 2)

	batch, err := mace.BuildBatch(structures, model.Elements(), cfg.RMax)
	require.NoError(t, err)
	out, err := model.Forward(batch)
	require.NoError(t, err)
	require.Len(t, out.Energy, 2)

	var graphs []*mace.Graph
	for _, s := range structures {
		g, err := mace.BuildGraph(s, model.Elements(), cfg.RMax)
		require.NoError(t, err)
		graphs = append(graphs, g)
	}
	outs, err := model.EvaluateBatch(context.Background(), graphs)
	require.NoError(t, err)
	for k := range graphs {
		assert.InDelta(t, out.Energy[k], outs[k].Energy[0], 1e-10)
	}

	var buf bytes.Buffer
	require.NoError(t, mace.WriteXYZ(&buf, structures, out.Energy))
	back, err := mace.ReadXYZ(&buf)
	require.NoError(t, err)
	assert.InDelta(t, out.Energy[1], *back[1].Energy, 1e-12)
}

func TestErrorsClassify(t *testing.T) {
	cfg := smallConfig()
	cfg.Correlation = 7
	_, err := mace.New(cfg)
	assert.True(t, errors.Is(err, mace.ErrConfiguration))

	table, err := mace.NewElementTable([]int{1})
	require.NoError(t, err)
	structures, err := mace.ReadXYZ(strings.NewReader(molecules))
	require.NoError(t, err)
	_, err = mace.BuildGraph(structures[0], table, 3.0)
	assert.ErrorIs(t, err, mace.ErrInvalidInput)

	table, err = mace.NewElementTable([]int{1, 8})
	require.NoError(t, err)
	s := structures[0]
	s.Positions[1] = s.Positions[0]
	_, err = mace.BuildGraph(s, table, 3.0)
	assert.ErrorIs(t, err, mace.ErrDomain)
}

func TestLoggerOption(t *testing.T) {
	var buf bytes.Buffer
	_, err := mace.New(smallConfig(), mace.WithLogger(mace.NewLogger("info", &buf, false)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "model built")
}
