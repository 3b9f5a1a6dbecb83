// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Builder compiles tables of rows into MDDs according to a Schema and a
// BuildConfig: it fits numeric bin models, chooses a dimension order, runs
// the selected compiler, and assembles the resulting MDD plus a BuildReport
// describing how it got there.
type Builder struct {
	Schema *Schema
	Config BuildConfig
}

// NewBuilder returns a Builder for schema, with opts applied on top of
// DefaultBuildConfig.
func NewBuilder(schema *Schema, opts ...BuildOption) *Builder {
	return &Builder{Schema: schema, Config: NewBuildConfig(opts...)}
}

// Fit compiles rows into an MDD: fit a BinModel for every numeric
// dimension, choose a dimension order per b.Config.Ordering,
// compile with the trie or slice method per b.Config.CompilationMethod, and
// (for the trie method, when enabled) reduce the result to canonical form.
func (b *Builder) Fit(ctx context.Context, rows []Row) (*MDD, BuildReport, error) {
	if b.Schema == nil || len(b.Schema.Dims) == 0 {
		return nil, BuildReport{}, &SchemaError{Op: "Fit", Err: fmt.Errorf("schema must declare at least one dimension")}
	}

	buildID := uuid.New().String()
	log := newBuildLogger(b.Config.Logger, buildID)

	binModels, err := b.fitBinModels(rows)
	if err != nil {
		return nil, BuildReport{}, err
	}
	missingTokens := defaultMissingTokens(b.Schema)

	eval, err := b.chooseOrder(ctx, rows, log)
	if err != nil {
		return nil, BuildReport{}, err
	}
	order := eval.Order
	log.ordering(order, orderingStrategyName(b.Config.Ordering))

	subSchema, err := b.Schema.Subset(order)
	if err != nil {
		return nil, BuildReport{}, err
	}

	nodes, root, terminalLayer, err := b.compile(rows, subSchema, order, binModels, missingTokens)
	if err != nil {
		return nil, BuildReport{}, err
	}

	if b.Config.CompilationMethod == Trie && b.Config.EnableReduction {
		before := len(nodes)
		nodes, root, err = reduceTrie(nodes, root, terminalLayer, b.Config.Logger)
		if err != nil {
			return nil, BuildReport{}, err
		}
		log.reduced(before, len(nodes))
	}

	m := newMDD(order, nodes, root, terminalLayer, b.Config.LaplaceAlpha, binModels, missingTokens)
	m.BuildID = uuid.MustParse(buildID)

	nodeCount, arcCount, layers := m.Size()
	log.compiled(compilationMethodName(b.Config.CompilationMethod), nodeCount, arcCount, layers)

	report := BuildReport{
		Order:       order,
		Diagnostics: eval.Diagnostics,
		Nodes:       nodeCount,
		Arcs:        arcCount,
		Layers:      layers,
	}
	return m, report, nil
}

// fitBinModels fits a BinModel for every Numeric dimension in the schema,
// using the dimension's own BinConfig when declared, or
// b.Config.DefaultNumericBins otherwise. Every dimension is attempted even
// once one fails, so a caller fixing a multi-column schema sees every
// offending column at once instead of one at a time.
func (b *Builder) fitBinModels(rows []Row) (map[string]*BinModel, error) {
	out := make(map[string]*BinModel)
	var issues error
	for _, d := range b.Schema.Dims {
		if d.Type != Numeric {
			continue
		}
		cfg := b.Config.DefaultNumericBins
		if d.Bins != nil {
			cfg = *d.Bins
		}
		values := make([]float64, 0, len(rows))
		badValue := false
		for _, r := range rows {
			v, ok := r[d.Name]
			if !ok || v.IsMissing() {
				continue
			}
			if v.Kind() != KindInt && v.Kind() != KindFloat {
				issues = appendIssue(issues, &SchemaError{Dimension: d.Name, Value: v.Label(), Op: "FitBinner", Err: fmt.Errorf("expected numeric value")})
				badValue = true
				break
			}
			values = append(values, v.Float64())
		}
		if badValue {
			continue
		}
		bm, err := FitBinner(values, cfg, d.missingToken())
		if err != nil {
			issues = appendIssue(issues, err)
			continue
		}
		out[d.Name] = bm
	}
	if issues != nil {
		return nil, issues
	}
	return out, nil
}

// chooseOrder runs the configured ordering strategy over rows.
func (b *Builder) chooseOrder(ctx context.Context, rows []Row, log buildLogger) (OrderEval, error) {
	switch b.Config.Ordering {
	case FixedOrdering:
		order := b.Config.FixedOrder
		if len(order) == 0 {
			order = b.Schema.Names()
		}
		return Fixed(b.Schema, order)
	case SearchOrdering:
		return Search(ctx, rows, b.Schema, b.Config.OrderingConfig, log)
	default:
		return Heuristic(rows, b.Schema)
	}
}

// compile dispatches to the trie or slice compiler per
// b.Config.CompilationMethod.
func (b *Builder) compile(rows []Row, schema *Schema, order []string, binModels map[string]*BinModel, missingTokens map[string]string) ([]*Node, int, int, error) {
	switch b.Config.CompilationMethod {
	case Slice:
		return compileSlice(rows, schema, order, binModels, missingTokens)
	default:
		return buildTrieBinned(rows, schema, order, binModels, missingTokens)
	}
}

func orderingStrategyName(s OrderingStrategy) string {
	switch s {
	case FixedOrdering:
		return "fixed"
	case SearchOrdering:
		return "search"
	default:
		return "heuristic"
	}
}

func compilationMethodName(m CompilationMethod) string {
	if m == Slice {
		return "slice"
	}
	return "trie"
}
