// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant of Value is populated.
type Kind uint8

// The five value kinds supported at the data model boundary: strings,
// 64-bit integers, 64-bit floats, booleans and the distinguished missing
// sentinel. Int and Float values of a Numeric dimension are replaced by an
// interval-string label (see BinModel.Apply) before compilation; other
// values become arc labels through Label, and Missing through the
// dimension's missing token.
const (
	KindMissing Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// Value is an opaque, hashable, orderable arc label. It is the tagged
// variant referenced in the package design notes: we avoid sharing a single
// universal representation across dimensions by keeping each runtime value
// tagged with its own kind, and let Label() collapse it to the single
// comparable string used as a map key inside a Node.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
}

// Missing is the zero Value, representing an absent or null entry.
var Missing = Value{kind: KindMissing}

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps a 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a 64-bit floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float64 returns the numeric value of v, for use by the binning component.
// It panics if v is not KindInt or KindFloat; callers must check Kind first.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		panic(fmt.Sprintf("mdd: Float64 called on non-numeric Value (kind %d)", v.kind))
	}
}

// Label renders v as the comparable string used as an arc label. Numeric
// values render using a format compatible with the interval-string labels
// produced by BinModel.Apply, strings render verbatim, and Missing renders
// as the empty string (the actual missing token used on arcs is supplied by
// the Dimension, not by Value itself).
func (v Value) Label() string {
	switch v.kind {
	case KindMissing:
		return ""
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Equal reports whether two values denote the same label.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		// Numeric values of different kinds still compare equal if their
		// rendered labels coincide (e.g. Int(2) and Float(2.0)); everything
		// else compares by kind and payload.
		if (v.kind == KindInt || v.kind == KindFloat) && (other.kind == KindInt || other.kind == KindFloat) {
			return v.Label() == other.Label()
		}
		return false
	}
	switch v.kind {
	case KindMissing:
		return true
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	default:
		return false
	}
}

func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}
	return v.Label()
}
