// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueLabel(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"string", String("EU"), "EU"},
		{"int", Int(42), "42"},
		{"float", Float(3.5), "3.5"},
		{"bool-true", Bool(true), "true"},
		{"bool-false", Bool(false), "false"},
		{"missing", Missing, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.v.Label())
		})
	}
}

func TestValueEqualCrossKindNumeric(t *testing.T) {
	assert.True(t, Int(2).Equal(Float(2.0)))
	assert.False(t, Int(2).Equal(Float(2.1)))
	assert.False(t, Int(2).Equal(String("2")))
}

func TestValueIsMissing(t *testing.T) {
	assert.True(t, Missing.IsMissing())
	assert.False(t, String("x").IsMissing())
}

func TestValueFloat64Panics(t *testing.T) {
	assert.Panics(t, func() { String("x").Float64() })
}
