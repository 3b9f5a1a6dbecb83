// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestWithCustomDistance(t *testing.T) {
	schema := NewSchema(Dimension{Name: "priority", Type: Ordinal})
	rows := []Row{
		{"priority": Int(1)},
		{"priority": Int(2)},
		{"priority": Int(3)},
		{"priority": Int(5)},
	}
	b := NewBuilder(schema, WithOrdering(FixedOrdering))
	m, _, err := b.Fit(context.Background(), rows)
	require.NoError(t, err)

	distFns := map[string]DistanceFunc{
		"priority": func(wanted, have Value) float64 {
			return math.Abs(wanted.Float64() - have.Float64())
		},
	}
	results, err := m.Nearest(Pattern{"priority": Int(4)}, distFns, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	got := map[string]float64{}
	for _, r := range results {
		got[r.Path["priority"].Label()] = r.Details["distance"]
	}
	assert.Contains(t, got, "3")
	assert.Contains(t, got, "5")
	assert.Equal(t, 1.0, got["3"])
	assert.Equal(t, 1.0, got["5"])
}

func TestNearestZeroKReturnsEmpty(t *testing.T) {
	schema := NewSchema(Dimension{Name: "priority", Type: Ordinal})
	rows := []Row{{"priority": Int(1)}, {"priority": Int(2)}}
	b := NewBuilder(schema, WithOrdering(FixedOrdering))
	m, _, err := b.Fit(context.Background(), rows)
	require.NoError(t, err)

	results, err := m.Nearest(Pattern{"priority": Int(1)}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
