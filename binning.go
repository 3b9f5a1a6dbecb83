// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// BinStrategy selects how numeric bin edges are derived from training data.
type BinStrategy int

// The two supported binning strategies.
const (
	Quantile BinStrategy = iota
	FixedWidth
)

func (s BinStrategy) String() string {
	if s == FixedWidth {
		return "fixed_width"
	}
	return "quantile"
}

// BinConfig declares how a numeric Dimension should be quantized before
// compilation: which strategy to use, how many bins to aim for, and
// optional explicit cut points.
type BinConfig struct {
	Strategy BinStrategy
	K        int
	Edges    []float64 // explicit cut points; when set, Strategy/K are ignored
}

// BinModel is a sorted array of cut points derived once from training data
// for a single numeric dimension. A value maps to the unique interval whose
// range contains it; the last bin is right-inclusive. Missing values map to
// the missing token.
type BinModel struct {
	Edges        []float64
	Strategy     BinStrategy
	K            int
	MissingToken string
}

// FitBinner computes a BinModel from a set of training values, following
// the strategy and target bin count in cfg. Quantile strategy uses
// empirical quantiles of the non-missing values; fixed-width uses
// equal-width intervals over [min, max]. Duplicate edges produced by heavy
// ties are collapsed, which can leave the effective bin count below cfg.K.
//
// A numeric column with no non-missing values produces a degenerate model
// with a single bin over [0,1]; BinModel.Apply still returns the missing
// token whenever its missing flag is set, regardless of the model.
func FitBinner(values []float64, cfg BinConfig, missingToken string) (*BinModel, error) {
	if missingToken == "" {
		missingToken = DefaultMissingToken
	}
	if len(cfg.Edges) > 0 {
		edges := append([]float64(nil), cfg.Edges...)
		sort.Float64s(edges)
		edges = dedupeSorted(edges)
		if len(edges) < 2 {
			return nil, &SchemaError{Op: "FitBinner", Err: fmt.Errorf("explicit edges collapse to fewer than 2 unique points")}
		}
		return &BinModel{Edges: edges, Strategy: cfg.Strategy, K: len(edges) - 1, MissingToken: missingToken}, nil
	}
	if cfg.K < 1 {
		return nil, &SchemaError{Op: "FitBinner", Err: fmt.Errorf("k must be a positive integer, got %d", cfg.K)}
	}
	if len(values) == 0 {
		return &BinModel{Edges: []float64{0, 1}, Strategy: cfg.Strategy, K: 1, MissingToken: missingToken}, nil
	}

	switch cfg.Strategy {
	case FixedWidth:
		lo, hi := minMax(values)
		var edges []float64
		if lo == hi {
			edges = []float64{lo, hi + 1e-9}
		} else {
			edges = linspace(lo, hi, cfg.K+1)
		}
		return &BinModel{Edges: edges, Strategy: cfg.Strategy, K: len(edges) - 1, MissingToken: missingToken}, nil
	case Quantile:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		qs := linspace(0, 1, cfg.K+1)
		edges := make([]float64, len(qs))
		for i, q := range qs {
			edges[i] = quantile(sorted, q)
		}
		edges = dedupeSorted(edges)
		if len(edges) < 2 {
			lo, hi := minMax(values)
			edges = []float64{lo, hi + 1e-9}
		}
		return &BinModel{Edges: edges, Strategy: cfg.Strategy, K: len(edges) - 1, MissingToken: missingToken}, nil
	default:
		return nil, &SchemaError{Op: "FitBinner", Err: fmt.Errorf("unknown binning strategy: %v", cfg.Strategy)}
	}
}

// Apply maps a single value to its interval-string label, or to the missing
// token if missing is true. The resulting label has the form "[lo,hi)" for
// all bins except the last, which is right-inclusive ("[lo,hi]").
func (m *BinModel) Apply(x float64, missing bool) string {
	if missing || math.IsNaN(x) {
		return m.MissingToken
	}
	idx := searchRight(m.Edges, x) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.Edges)-2 {
		idx = len(m.Edges) - 2
	}
	lo, hi := m.Edges[idx], m.Edges[idx+1]
	if idx < len(m.Edges)-2 {
		return fmt.Sprintf("[%s,%s)", formatEdge(lo), formatEdge(hi))
	}
	return fmt.Sprintf("[%s,%s]", formatEdge(lo), formatEdge(hi))
}

// searchRight returns the index of the first element of edges strictly
// greater than x (equivalent to numpy.searchsorted(..., side="right")).
func searchRight(edges []float64, x float64) int {
	lo, hi := 0, len(edges)
	for lo < hi {
		mid := (lo + hi) / 2
		if edges[mid] <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func dedupeSorted(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, v := range xs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo, hi}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}

// quantile computes the empirical quantile q (in [0,1]) of an already
// sorted slice using linear interpolation between closest ranks, matching
// numpy.quantile's default behaviour.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
