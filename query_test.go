// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScenario1(t *testing.T) *MDD {
	t.Helper()
	b := NewBuilder(scenario1Schema(), WithOrdering(FixedOrdering))
	m, _, err := b.Fit(context.Background(), scenario1Rows())
	require.NoError(t, err)
	return m
}

func TestExistsRejectsUnknownDimension(t *testing.T) {
	m := buildScenario1(t)
	_, err := m.Exists(Pattern{"region": String("EU"), "priority": Int(1), "bogus": Int(1)})
	require.Error(t, err)
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "bogus", qe.Dimension)
}

func TestExistsRejectsIncompletePattern(t *testing.T) {
	m := buildScenario1(t)
	_, err := m.Exists(Pattern{"region": String("EU")})
	require.Error(t, err)
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "priority", qe.Dimension)
}

func TestCountRejectsUnknownDimension(t *testing.T) {
	m := buildScenario1(t)
	_, err := m.Count(Pattern{"bogus": Int(1)})
	require.Error(t, err)
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
}

func TestCountWildcardSumsAllRows(t *testing.T) {
	m := buildScenario1(t)
	count, err := m.Count(Pattern{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCountFixedDimensionFollowsOneArc(t *testing.T) {
	m := buildScenario1(t)
	count, err := m.Count(Pattern{"region": String("US")})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountUnmatchedPatternIsZero(t *testing.T) {
	m := buildScenario1(t)
	count, err := m.Count(Pattern{"region": String("EU"), "priority": Int(99)})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestExistsSliceSharedNodeDivergence guards against a compiler that forks
// a node's edge map by mutating an already-shared node in place: row 2
// diverges below a node two different a-branches both reach, so a=1 must
// not pick up row 2's new c=1 arc.
func TestExistsSliceSharedNodeDivergence(t *testing.T) {
	b := NewBuilder(scenario3Schema(), WithOrdering(FixedOrdering), WithCompilationMethod(Slice))
	m, _, err := b.Fit(context.Background(), scenario3Rows())
	require.NoError(t, err)

	for _, row := range scenario3Rows() {
		ok, err := m.Exists(Pattern(row))
		require.NoError(t, err)
		assert.True(t, ok, "row %v should exist", row)
	}

	ok, err := m.Exists(Pattern{"a": Int(1), "b": Int(0), "c": Int(1)})
	require.NoError(t, err)
	assert.False(t, ok, "a=1,b=0,c=1 was never one of the input rows")
}

func TestMatchRejectsUnknownDimension(t *testing.T) {
	m := buildScenario1(t)
	_, err := m.Match(Pattern{"bogus": Int(1)}, 10)
	require.Error(t, err)
}

func TestMatchZeroLimitReturnsEmpty(t *testing.T) {
	m := buildScenario1(t)
	results, err := m.Match(Pattern{}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatchEnumeratesInSortedLabelOrder(t *testing.T) {
	m := buildScenario1(t)
	results, err := m.Match(Pattern{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// EU's two priority arcs are visited before US's one, and within EU,
	// "1" is visited before "2" since labels are sorted. Match renders every
	// path value as a label string regardless of the dimension's own kind.
	assert.Equal(t, String("EU"), results[0].Path["region"])
	assert.Equal(t, String("1"), results[0].Path["priority"])
	assert.Equal(t, String("EU"), results[1].Path["region"])
	assert.Equal(t, String("2"), results[1].Path["priority"])
	assert.Equal(t, String("US"), results[2].Path["region"])
	assert.Equal(t, String("1"), results[2].Path["priority"])
}

func TestMatchFixedDimensionFiltersBranches(t *testing.T) {
	m := buildScenario1(t)
	results, err := m.Match(Pattern{"region": String("US")}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, String("US"), results[0].Path["region"])
}

func TestMatchLimitCapsResults(t *testing.T) {
	m := buildScenario1(t)
	results, err := m.Match(Pattern{}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
