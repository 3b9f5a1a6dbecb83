// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicSchema() *Schema {
	return NewSchema(
		Dimension{Name: "region", Type: Categorical},
		Dimension{Name: "priority", Type: Ordinal},
	)
}

func TestSchemaNamesAndGet(t *testing.T) {
	s := basicSchema()
	assert.Equal(t, []string{"region", "priority"}, s.Names())

	d, ok := s.Get("region")
	require.True(t, ok)
	assert.Equal(t, Categorical, d.Type)

	_, ok = s.Get("nope")
	assert.False(t, ok)
}

func TestSchemaSubsetUnknownDimension(t *testing.T) {
	s := basicSchema()
	_, err := s.Subset([]string{"region", "bogus"})
	require.Error(t, err)
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestSchemaValidatePermutation(t *testing.T) {
	s := basicSchema()

	require.NoError(t, s.ValidatePermutation([]string{"priority", "region"}))

	err := s.ValidatePermutation([]string{"region"})
	require.Error(t, err)
	var oe *OrderingError
	assert.ErrorAs(t, err, &oe)

	err = s.ValidatePermutation([]string{"region", "region"})
	assert.Error(t, err)

	err = s.ValidatePermutation([]string{"region", "bogus"})
	assert.Error(t, err)
}

func TestDimensionMissingToken(t *testing.T) {
	d := Dimension{Name: "x"}
	assert.Equal(t, DefaultMissingToken, d.missingToken())

	d.MissingToken = "N/A"
	assert.Equal(t, "N/A", d.missingToken())
}
