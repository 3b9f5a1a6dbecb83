// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import "fmt"

// DimensionType is the declared kind of a Dimension: whether its values are
// unordered categories, ranked categories, numeric quantities to be binned,
// or a mix the caller handles itself.
type DimensionType int

// The four supported dimension types.
const (
	Categorical DimensionType = iota
	Ordinal
	Numeric
	Mixed
)

func (t DimensionType) String() string {
	switch t {
	case Categorical:
		return "categorical"
	case Ordinal:
		return "ordinal"
	case Numeric:
		return "numeric"
	case Mixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// DefaultMissingToken is the arc label substituted for an absent value when
// a Dimension does not declare one of its own.
const DefaultMissingToken = "__MISSING__"

// Dimension declares one column of the input table: its name, its type, an
// optional ordinal rank map, an optional numeric bin config, and the token
// used in place of a missing value.
type Dimension struct {
	Name         string
	Type         DimensionType
	RankMap      map[string]int
	Bins         *BinConfig
	MissingToken string
}

// missingToken returns d.MissingToken, defaulting to DefaultMissingToken.
func (d Dimension) missingToken() string {
	if d.MissingToken == "" {
		return DefaultMissingToken
	}
	return d.MissingToken
}

// Schema is the ordered sequence of dimensions declared by the caller. It
// fixes dimension names and types but not the compilation order: that is
// chosen by the ordering engine and recorded on the resulting MDD.
type Schema struct {
	Dims        []Dimension
	nameToIndex map[string]int
}

// NewSchema builds a Schema from an ordered list of dimensions, indexing
// dimensions by name for O(1) lookup.
func NewSchema(dims ...Dimension) *Schema {
	s := &Schema{Dims: dims, nameToIndex: make(map[string]int, len(dims))}
	for i, d := range dims {
		s.nameToIndex[d.Name] = i
	}
	return s
}

// Names returns the declared dimension names, in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		out[i] = d.Name
	}
	return out
}

// Get returns the Dimension with the given name.
func (s *Schema) Get(name string) (Dimension, bool) {
	i, ok := s.nameToIndex[name]
	if !ok {
		return Dimension{}, false
	}
	return s.Dims[i], true
}

// MustGet returns the Dimension with the given name, panicking if absent.
// Used internally once a name has already been validated against the
// schema.
func (s *Schema) MustGet(name string) Dimension {
	d, ok := s.Get(name)
	if !ok {
		panic(fmt.Sprintf("mdd: dimension %q not in schema", name))
	}
	return d
}

// Subset returns a new Schema restricted to the given names, in the order
// given. It is used to reorder a Schema according to a chosen dimension
// permutation.
func (s *Schema) Subset(orderedNames []string) (*Schema, error) {
	dims := make([]Dimension, 0, len(orderedNames))
	for _, n := range orderedNames {
		d, ok := s.Get(n)
		if !ok {
			return nil, &SchemaError{Dimension: n, Op: "Subset", Err: fmt.Errorf("unknown dimension")}
		}
		dims = append(dims, d)
	}
	return NewSchema(dims...), nil
}

// ValidatePermutation checks that order is exactly a permutation of the
// schema's dimension names (same set, no duplicates, no omissions).
func (s *Schema) ValidatePermutation(order []string) error {
	if len(order) != len(s.Dims) {
		return &OrderingError{Op: "ValidatePermutation", Err: fmt.Errorf("order has %d names, schema has %d", len(order), len(s.Dims))}
	}
	seen := make(map[string]bool, len(order))
	for _, n := range order {
		if _, ok := s.nameToIndex[n]; !ok {
			return &OrderingError{Op: "ValidatePermutation", Err: fmt.Errorf("unknown dimension %q", n)}
		}
		if seen[n] {
			return &OrderingError{Op: "ValidatePermutation", Err: fmt.Errorf("duplicate dimension %q", n)}
		}
		seen[n] = true
	}
	return nil
}
