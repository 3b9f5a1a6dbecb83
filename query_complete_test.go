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

func completeSchema() *Schema {
	return NewSchema(
		Dimension{Name: "region", Type: Categorical},
		Dimension{Name: "product", Type: Categorical},
	)
}

func completeRows() []Row {
	return []Row{
		{"region": String("EU"), "product": String("A")},
		{"region": String("EU"), "product": String("A")},
		{"region": String("EU"), "product": String("B")},
		{"region": String("US"), "product": String("A")},
	}
}

func TestCompleteLaplaceSmoothingRanksAndScores(t *testing.T) {
	b := NewBuilder(completeSchema(), WithOrdering(FixedOrdering), WithLaplaceAlpha(0.1))
	m, _, err := b.Fit(context.Background(), completeRows())
	require.NoError(t, err)

	results, err := m.Complete(Pattern{"region": String("EU")}, 2, 4)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, String("A"), results[0].Path["product"])
	want := math.Log((2 + 0.1) / (3 + 0.1*2))
	assert.InDelta(t, want, results[0].Score, 1e-9)

	assert.Equal(t, String("B"), results[1].Path["product"])
	wantB := math.Log((1 + 0.1) / (3 + 0.1*2))
	assert.InDelta(t, wantB, results[1].Score, 1e-9)
}

func TestCompleteZeroKReturnsEmpty(t *testing.T) {
	b := NewBuilder(completeSchema(), WithOrdering(FixedOrdering))
	m, _, err := b.Fit(context.Background(), completeRows())
	require.NoError(t, err)

	results, err := m.Complete(Pattern{"region": String("EU")}, 0, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
