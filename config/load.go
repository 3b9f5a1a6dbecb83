// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package mddconfig loads a mdd.BuildConfig from a configuration file (or
// environment variables), following the YAML-first, env-override layering
// used elsewhere in the example pack's deployments. It lives outside the
// core mdd package because configuration loading is an external-collaborator
// concern: the core only ever consumes an already-populated BuildConfig.
package mddconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dalzilio/mdd4tables"
)

// fileConfig mirrors mdd.BuildConfig's shape using plain strings/numbers for
// the enum fields, since viper unmarshals those from YAML/JSON scalars
// rather than our typed enums directly.
type fileConfig struct {
	Ordering           string      `mapstructure:"ordering"`
	FixedOrder         []string    `mapstructure:"fixed_order"`
	CompilationMethod  string      `mapstructure:"compilation_method"`
	EnableReduction    bool        `mapstructure:"enable_reduction"`
	LaplaceAlpha       float64     `mapstructure:"laplace_alpha"`
	DefaultNumericBins binConfig   `mapstructure:"default_numeric_bins"`
	OrderingConfig     orderingCfg `mapstructure:"ordering_config"`
}

type binConfig struct {
	Strategy string `mapstructure:"strategy"`
	K        int    `mapstructure:"k"`
}

type orderingCfg struct {
	TimeBudgetSeconds float64 `mapstructure:"time_budget_s"`
	MaxEvals          int     `mapstructure:"max_evals"`
	BeamWidth         int     `mapstructure:"beam_width"`
	Objective         string  `mapstructure:"objective"`
	Seed              int64   `mapstructure:"seed"`
}

// Load reads a mdd.BuildConfig from the given file paths (first existing
// one wins) and environment variables prefixed MDD_, falling back to
// mdd.DefaultBuildConfig for anything unset. logger is attached to the
// returned config; pass nil to keep it silent.
func Load(logger *zap.Logger, paths ...string) (mdd.BuildConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("MDD")
	v.AutomaticEnv()

	defaults := mdd.DefaultBuildConfig()
	v.SetDefault("ordering", "heuristic")
	v.SetDefault("compilation_method", "trie")
	v.SetDefault("enable_reduction", defaults.EnableReduction)
	v.SetDefault("laplace_alpha", defaults.LaplaceAlpha)
	v.SetDefault("default_numeric_bins.strategy", "quantile")
	v.SetDefault("default_numeric_bins.k", defaults.DefaultNumericBins.K)
	v.SetDefault("ordering_config.time_budget_s", defaults.OrderingConfig.TimeBudget.Seconds())
	v.SetDefault("ordering_config.max_evals", defaults.OrderingConfig.MaxEvals)
	v.SetDefault("ordering_config.beam_width", defaults.OrderingConfig.BeamWidth)
	v.SetDefault("ordering_config.objective", "prefix_distinct_sum")
	v.SetDefault("ordering_config.seed", defaults.OrderingConfig.Seed)

	for _, p := range paths {
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); notFound || errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return mdd.BuildConfig{}, fmt.Errorf("mddconfig: reading %s: %w", p, err)
		}
		break
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return mdd.BuildConfig{}, fmt.Errorf("mddconfig: unmarshal: %w", err)
	}

	cfg := defaults
	cfg.Logger = logger

	switch fc.Ordering {
	case "fixed":
		cfg.Ordering = mdd.FixedOrdering
	case "search":
		cfg.Ordering = mdd.SearchOrdering
	default:
		cfg.Ordering = mdd.HeuristicOrdering
	}
	cfg.FixedOrder = fc.FixedOrder

	switch fc.CompilationMethod {
	case "slice":
		cfg.CompilationMethod = mdd.Slice
	default:
		cfg.CompilationMethod = mdd.Trie
	}

	cfg.EnableReduction = fc.EnableReduction
	cfg.LaplaceAlpha = fc.LaplaceAlpha

	binStrategy := mdd.Quantile
	if fc.DefaultNumericBins.Strategy == "fixed_width" {
		binStrategy = mdd.FixedWidth
	}
	cfg.DefaultNumericBins = mdd.BinConfig{Strategy: binStrategy, K: fc.DefaultNumericBins.K}

	objective := mdd.PrefixDistinctSum
	switch fc.OrderingConfig.Objective {
	case "nodes":
		objective = mdd.Nodes
	case "arcs":
		objective = mdd.Arcs
	case "nodes_plus_arcs":
		objective = mdd.NodesPlusArcs
	}
	cfg.OrderingConfig = mdd.OrderingConfig{
		TimeBudget: time.Duration(fc.OrderingConfig.TimeBudgetSeconds * float64(time.Second)),
		MaxEvals:   fc.OrderingConfig.MaxEvals,
		BeamWidth:  fc.OrderingConfig.BeamWidth,
		Objective:  objective,
		Seed:       fc.OrderingConfig.Seed,
	}

	return cfg, nil
}
