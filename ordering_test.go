// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	return []Row{
		{"region": String("EU"), "priority": Int(1)},
		{"region": String("EU"), "priority": Int(2)},
		{"region": String("US"), "priority": Int(1)},
	}
}

func TestFixedOrderingValidatesPermutation(t *testing.T) {
	s := basicSchema()
	eval, err := Fixed(s, []string{"region", "priority"})
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "priority"}, eval.Order)

	_, err = Fixed(s, []string{"region"})
	assert.Error(t, err)
}

func TestHeuristicOrderingIsAPermutation(t *testing.T) {
	s := basicSchema()
	eval, err := Heuristic(sampleRows(), s)
	require.NoError(t, err)
	require.NoError(t, s.ValidatePermutation(eval.Order))
}

func TestEvaluateOrderPrefixDistinctSum(t *testing.T) {
	s := basicSchema()
	rows := sampleRows()
	score, err := EvaluateOrder(rows, []string{"region", "priority"}, s)
	require.NoError(t, err)
	// prefix 1 (region): {EU, US} = 2 distinct; prefix 2 (region,priority):
	// {EU/1, EU/2, US/1} = 3 distinct. Total = 5.
	assert.Equal(t, 5.0, score)
}

func TestSearchZeroBudgetReturnsHeuristic(t *testing.T) {
	s := basicSchema()
	rows := sampleRows()
	heuristic, err := Heuristic(rows, s)
	require.NoError(t, err)

	search, err := Search(context.Background(), rows, s, OrderingConfig{}, newBuildLogger(nil, "t"))
	require.NoError(t, err)
	assert.Equal(t, heuristic.Order, search.Order)
}

func TestSearchMonotonicityAgainstHeuristic(t *testing.T) {
	s := basicSchema()
	rows := sampleRows()
	cfg := OrderingConfig{TimeBudget: 200 * time.Millisecond, MaxEvals: 20, BeamWidth: 4, Objective: PrefixDistinctSum, Seed: 1}
	result, err := Search(context.Background(), rows, s, cfg, newBuildLogger(nil, "t"))
	require.NoError(t, err)

	heuristicScore, err := EvaluateOrder(rows, mustHeuristicOrder(t, rows, s), s)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Score, heuristicScore)
}

// adjacentTranspositionIndex returns the index i such that b equals a with
// a[i] and a[i+1] swapped, or -1 if b is not reachable from a by exactly one
// adjacent transposition.
func adjacentTranspositionIndex(a, b []string) int {
	if len(a) != len(b) {
		return -1
	}
	diff := -1
	for i := range a {
		if a[i] != b[i] {
			if diff != -1 {
				if i == diff+1 {
					continue
				}
				return -1
			}
			diff = i
		}
	}
	if diff == -1 || diff+1 >= len(a) {
		return -1
	}
	if a[diff] != b[diff+1] || a[diff+1] != b[diff] {
		return -1
	}
	return diff
}

func TestProposeAdjacentSwapOnlyTransposesNeighbors(t *testing.T) {
	order := []string{"a", "b", "c", "d", "e"}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		cand := proposeAdjacentSwap(order, rng)
		idx := adjacentTranspositionIndex(order, cand)
		require.NotEqual(t, -1, idx, "candidate %v is not an adjacent transposition of %v", cand, order)
	}
}

// TestSearchWithThreeDimensionsStaysAPermutation runs Search end to end on
// a schema with more than two dimensions, where a non-adjacent candidate
// would be distinguishable from an adjacent one (with only two dimensions
// every swap is trivially adjacent). Search only ever proposes candidates
// through proposeAdjacentSwap, which TestProposeAdjacentSwapOnlyTransposesNeighbors
// verifies directly, so this is a smoke test that the wiring between them
// still produces a valid order.
func TestSearchWithThreeDimensionsStaysAPermutation(t *testing.T) {
	s := scenario2Schema()
	rows := scenario2Rows()
	cfg := OrderingConfig{TimeBudget: 200 * time.Millisecond, MaxEvals: 30, BeamWidth: 3, Objective: PrefixDistinctSum, Seed: 3}

	result, err := Search(context.Background(), rows, s, cfg, newBuildLogger(nil, "t"))
	require.NoError(t, err)
	require.NoError(t, s.ValidatePermutation(result.Order))
}

func mustHeuristicOrder(t *testing.T, rows []Row, s *Schema) []string {
	t.Helper()
	eval, err := Heuristic(rows, s)
	require.NoError(t, err)
	return eval.Order
}
