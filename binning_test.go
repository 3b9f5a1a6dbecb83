// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitBinnerQuantileRoundTrip(t *testing.T) {
	// Scenario 6: qty in {1,2,3,4}, quantile k=2.
	bm, err := FitBinner([]float64{1, 2, 3, 4}, BinConfig{Strategy: Quantile, K: 2}, DefaultMissingToken)
	require.NoError(t, err)
	assert.Len(t, bm.Edges, 3)

	lower := bm.Apply(1.5, false)
	upper := bm.Apply(3.5, false)
	assert.NotEqual(t, lower, upper)
}

func TestFitBinnerFixedWidth(t *testing.T) {
	bm, err := FitBinner([]float64{0, 10}, BinConfig{Strategy: FixedWidth, K: 2}, DefaultMissingToken)
	require.NoError(t, err)
	assert.Equal(t, "[0,5)", bm.Apply(2, false))
	assert.Equal(t, "[5,10]", bm.Apply(10, false))
}

func TestFitBinnerDegenerateEmptyValues(t *testing.T) {
	bm, err := FitBinner(nil, BinConfig{Strategy: Quantile, K: 4}, DefaultMissingToken)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, bm.Edges)
}

func TestFitBinnerInvalidK(t *testing.T) {
	_, err := FitBinner([]float64{1, 2}, BinConfig{Strategy: Quantile, K: 0}, DefaultMissingToken)
	require.Error(t, err)
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestFitBinnerExplicitEdges(t *testing.T) {
	bm, err := FitBinner(nil, BinConfig{Edges: []float64{0, 1, 2}}, DefaultMissingToken)
	require.NoError(t, err)
	assert.Equal(t, 2, bm.K)
}

func TestBinModelApplyMissing(t *testing.T) {
	bm, err := FitBinner([]float64{1, 2, 3}, BinConfig{Strategy: FixedWidth, K: 2}, "N/A")
	require.NoError(t, err)
	assert.Equal(t, "N/A", bm.Apply(0, true))
}

func TestIdempotentBinningLabelsPassThrough(t *testing.T) {
	// Applying the schema's label resolution twice to an already-binned
	// interval string is a no-op: the binner is only ever invoked on raw
	// numeric input, never on an interval string it already produced.
	bm, err := FitBinner([]float64{1, 2, 3, 4}, BinConfig{Strategy: Quantile, K: 2}, DefaultMissingToken)
	require.NoError(t, err)
	label := bm.Apply(2.5, false)
	assert.NotEmpty(t, label)

	m := &MDD{BinModels: map[string]*BinModel{"qty": bm}}
	assert.Equal(t, label, m.labelFor("qty", Float(2.5)))
	assert.Equal(t, label, m.labelFor("qty", String(label)))
}
