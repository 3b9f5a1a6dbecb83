// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"time"

	"go.uber.org/zap"
)

// OrderingStrategy selects how the ordering engine picks a dimension
// permutation before compilation.
type OrderingStrategy int

// The three supported ordering strategies.
const (
	FixedOrdering OrderingStrategy = iota
	HeuristicOrdering
	SearchOrdering
)

// Objective selects the objective function used by the randomized search
// ordering strategy.
type Objective int

// The four supported search objectives. Nodes, Arcs and NodesPlusArcs
// require a full compile per evaluated candidate and should be paired with
// a small OrderingConfig.BeamWidth to avoid an O(evals * compile) blowup.
const (
	PrefixDistinctSum Objective = iota
	Nodes
	Arcs
	NodesPlusArcs
)

// OrderingConfig parameterizes the Search ordering strategy: how long it
// may run, how many candidates it may evaluate, how many candidates are
// proposed and evaluated per round (beam width), which objective to optimize, and the
// random seed controlling its proposals.
type OrderingConfig struct {
	TimeBudget time.Duration
	MaxEvals   int
	BeamWidth  int
	Objective  Objective
	Seed       int64
}

// DefaultOrderingConfig returns sensible defaults for the randomized search
// ordering strategy: a 2s budget, 100 evaluations, a beam of 8, and the
// cheap prefix-distinct-sum objective.
func DefaultOrderingConfig() OrderingConfig {
	return OrderingConfig{
		TimeBudget: 2 * time.Second,
		MaxEvals:   100,
		BeamWidth:  8,
		Objective:  PrefixDistinctSum,
		Seed:       0,
	}
}

// BuildConfig configures one call to Builder.Fit: the ordering strategy,
// the compilation method, whether reduction is enabled for the trie method,
// the Laplace smoothing parameter used by query-time probability
// estimates, and default numeric binning.
type BuildConfig struct {
	Ordering           OrderingStrategy
	FixedOrder         []string
	CompilationMethod  CompilationMethod
	EnableReduction    bool
	LaplaceAlpha       float64
	DefaultNumericBins BinConfig
	OrderingConfig     OrderingConfig
	Logger             *zap.Logger
}

// CompilationMethod selects between the two-phase trie-then-reduce
// compiler and the incremental slice compiler.
type CompilationMethod int

// The two supported compilation methods.
const (
	Trie CompilationMethod = iota
	Slice
)

// DefaultBuildConfig returns the configuration used when a caller does not
// specify one: heuristic ordering, trie compilation with reduction enabled,
// alpha=0.1, and quantile binning with 10 bins as the numeric default.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Ordering:           HeuristicOrdering,
		CompilationMethod:  Trie,
		EnableReduction:    true,
		LaplaceAlpha:       0.1,
		DefaultNumericBins: BinConfig{Strategy: Quantile, K: 10},
		OrderingConfig:     DefaultOrderingConfig(),
		Logger:             nopLogger(),
	}
}

// BuildOption configures a BuildConfig, following the functional-options
// pattern used throughout this package's constructors.
type BuildOption func(*BuildConfig)

// WithOrdering sets the ordering strategy.
func WithOrdering(s OrderingStrategy) BuildOption {
	return func(c *BuildConfig) { c.Ordering = s }
}

// WithFixedOrder sets the caller-supplied dimension order used by the
// FixedOrdering strategy. It is validated against the schema at build time;
// leaving it unset falls back to the schema's own declaration order.
func WithFixedOrder(order []string) BuildOption {
	return func(c *BuildConfig) { c.FixedOrder = append([]string(nil), order...) }
}

// WithOrderingConfig sets the parameters used by the Search ordering
// strategy.
func WithOrderingConfig(cfg OrderingConfig) BuildOption {
	return func(c *BuildConfig) { c.OrderingConfig = cfg }
}

// WithCompilationMethod selects the trie or slice compiler.
func WithCompilationMethod(m CompilationMethod) BuildOption {
	return func(c *BuildConfig) { c.CompilationMethod = m }
}

// WithReduction enables or disables the bottom-up reduction pass; it only
// applies to the trie compilation method.
func WithReduction(enabled bool) BuildOption {
	return func(c *BuildConfig) { c.EnableReduction = enabled }
}

// WithLaplaceAlpha sets the smoothing parameter used by probability-ranked
// queries (Complete).
func WithLaplaceAlpha(alpha float64) BuildOption {
	return func(c *BuildConfig) { c.LaplaceAlpha = alpha }
}

// WithDefaultNumericBins sets the bin config applied to numeric dimensions
// that do not declare their own.
func WithDefaultNumericBins(cfg BinConfig) BuildOption {
	return func(c *BuildConfig) { c.DefaultNumericBins = cfg }
}

// WithLogger injects a structured logger for build diagnostics; the
// default is a no-op logger, so builds stay silent unless a caller opts
// in.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *BuildConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// NewBuildConfig returns DefaultBuildConfig with the given options applied.
func NewBuildConfig(opts ...BuildOption) BuildConfig {
	c := DefaultBuildConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// QueryConfig parameterizes the beam and enumeration bounds used by the
// Complete and Match queries.
type QueryConfig struct {
	Beam  int
	Limit int
}

// DefaultQueryConfig returns sensible defaults: beam=25, limit=1000.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{Beam: 25, Limit: 1000}
}

// BuildReport carries the diagnostics produced while choosing a dimension
// order and compiling an MDD: the order's diagnostics (entropy and
// cardinality per dimension for heuristic order, or the search objective's
// best score and evaluation count) plus the final diagram's size.
type BuildReport struct {
	Order       []string
	Diagnostics map[string]float64
	Nodes       int
	Arcs        int
	Layers      int
}
