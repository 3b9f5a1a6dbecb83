// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestSearchLeavesNoGoroutines guards the errgroup-based fan-out inside
// Search: every worker spawned to evaluate a candidate order must have
// exited by the time Search returns, for every round of the beam.
func TestSearchLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewSchema(
		Dimension{Name: "a", Type: Categorical},
		Dimension{Name: "b", Type: Categorical},
		Dimension{Name: "c", Type: Categorical},
	)
	rows := []Row{
		{"a": Int(0), "b": Int(0), "c": Int(0)},
		{"a": Int(0), "b": Int(0), "c": Int(1)},
		{"a": Int(1), "b": Int(0), "c": Int(0)},
		{"a": Int(1), "b": Int(0), "c": Int(1)},
	}
	cfg := OrderingConfig{TimeBudget: 300 * time.Millisecond, MaxEvals: 30, BeamWidth: 6, Objective: Nodes, Seed: 7}

	_, err := Search(context.Background(), rows, s, cfg, newBuildLogger(nil, "leak-guard"))
	require.NoError(t, err)
}
