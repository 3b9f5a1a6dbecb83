// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMDDStringReportsDimsNodesArcsLayers(t *testing.T) {
	m := buildScenario1(t)
	s := m.String()
	assert.True(t, strings.Contains(s, "nodes=4"))
	assert.True(t, strings.Contains(s, "arcs=5"))
	assert.True(t, strings.Contains(s, "layers=2"))
	assert.True(t, strings.Contains(s, "region"))
	assert.True(t, strings.Contains(s, "priority"))
}

func TestMDDSizeMatchesNodeCount(t *testing.T) {
	m := buildScenario1(t)
	nodes, _, _ := m.Size()
	assert.Equal(t, m.NodeCount(), nodes)
}

func TestMDDNodesFiltersByLayer(t *testing.T) {
	m := buildScenario1(t)

	root := m.Nodes(0)
	require.Len(t, root, 1)
	assert.Len(t, root[0].Edges, 2)

	regionLayer := m.Nodes(1)
	require.Len(t, regionLayer, 2)

	terminal := m.Nodes(2)
	require.Len(t, terminal, 1)
	assert.Empty(t, terminal[0].Edges)
	assert.Equal(t, 3, terminal[0].TerminalCount)
}

func TestMDDAllNodesCoversEveryLayer(t *testing.T) {
	m := buildScenario1(t)
	all := m.AllNodes()
	assert.Len(t, all, m.NodeCount())
	for id, nv := range all {
		assert.Equal(t, id, nv.ID)
	}
}

func TestMDDDimensionIndex(t *testing.T) {
	m := buildScenario1(t)
	assert.Equal(t, 0, m.DimensionIndex("region"))
	assert.Equal(t, 1, m.DimensionIndex("priority"))
	assert.Equal(t, -1, m.DimensionIndex("bogus"))
}

func TestMDDEdgeViewCountsMatchRows(t *testing.T) {
	m := buildScenario1(t)
	root := m.Nodes(0)[0]
	total := 0
	for _, e := range root.Edges {
		total += e.Count
	}
	assert.Equal(t, 3, total)
}

func TestMDDBuildIDIsFreshPerFit(t *testing.T) {
	b := NewBuilder(scenario1Schema(), WithOrdering(FixedOrdering))
	m1, _, err := b.Fit(context.Background(), scenario1Rows())
	require.NoError(t, err)
	m2, _, err := b.Fit(context.Background(), scenario1Rows())
	require.NoError(t, err)
	assert.NotEqual(t, m1.BuildID, m2.BuildID)
}
