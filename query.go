// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// Pattern is a partial specification passed to every query: dimension name
// to value, where dimensions absent from the map are wildcards.
type Pattern map[string]Value

// QueryResult is the common result shape for Complete and Nearest: a fully
// specified path, a score (higher is always better, by convention), and an
// operation-specific details map (logprob for Complete, distance for
// Nearest).
type QueryResult struct {
	Path    map[string]Value
	Score   float64
	Details map[string]float64
}

// Exists reports whether x, a fully-specified row, is one of the diagrams's
// input rows (after binning). x must supply a value for every dimension;
// missing dimensions cause a QueryError.
func (m *MDD) Exists(x Pattern) (bool, error) {
	if err := m.validatePattern("Exists", x); err != nil {
		return false, err
	}
	for _, dim := range m.DimNames {
		if _, ok := x[dim]; !ok {
			return false, &QueryError{Op: "Exists", Dimension: dim, Err: errIncompletePattern}
		}
	}
	cur := m.node(m.Root)
	for layer := 0; layer < m.TerminalLayer; layer++ {
		dim := m.DimNames[layer]
		label := m.labelFor(dim, x[dim])
		child, ok := cur.Edges[label]
		if !ok {
			return false, nil
		}
		cur = m.node(child)
	}
	return cur.isTerminal(m.TerminalLayer), nil
}

// errIncompletePattern is returned (wrapped in a QueryError) when Exists is
// called with a pattern missing one or more dimensions.
var errIncompletePattern = errIncomplete{}

type errIncomplete struct{}

func (errIncomplete) Error() string { return "pattern does not specify every dimension" }

// Count returns the number of input rows whose projection matches pattern.
// A fixed dimension follows only the matching arc; a wildcard dimension
// sums every outgoing arc. Because canonical reduction can make two arcs
// out of the same node (or two arcs from different nodes) land on the same
// child, an arc's contribution is not simply its child's own memoized
// count: it is that count rescaled by the arc's own edge_count against the
// child's reach_count, attributing to each arc only the share of the
// child's downstream matches that actually arrived via that arc.
func (m *MDD) Count(pattern Pattern) (int, error) {
	if err := m.validatePattern("Count", pattern); err != nil {
		return 0, err
	}
	memo := make(map[int]int)
	return m.countBelow(m.Root, 0, pattern, memo), nil
}

// countBelow is memoized on node id alone: because pattern is fixed for the
// whole query and layer is a function of node id's own layer, node id is
// a sufficient key; a pattern-fingerprint component is unnecessary here
// since a single Count call only ever evaluates one pattern. It returns
// the number of rows reaching n that match pattern on dimensions >= layer.
func (m *MDD) countBelow(nodeID int, layer int, pattern Pattern, memo map[int]int) int {
	if c, ok := memo[nodeID]; ok {
		return c
	}
	n := m.node(nodeID)
	if layer == m.TerminalLayer {
		memo[nodeID] = n.TerminalCount
		return n.TerminalCount
	}
	dim := m.DimNames[layer]
	total := 0
	if v, fixed := pattern[dim]; fixed {
		label := m.labelFor(dim, v)
		if child, ok := n.Edges[label]; ok {
			total = m.arcMatchCount(n, label, child, layer+1, pattern, memo)
		}
	} else {
		for label, child := range n.Edges {
			total += m.arcMatchCount(n, label, child, layer+1, pattern, memo)
		}
	}
	memo[nodeID] = total
	return total
}

// arcMatchCount returns how many of the edgeCount rows that traversed arc
// (label -> child) also match pattern on dimensions >= nextLayer. child's
// own match count, countBelow(child), is computed once per node regardless
// of how many parents reach it; it is exact here because canonical
// reduction guarantees every row reaching child shares the same downstream
// sub-language, so the fraction matching below is an invariant of child
// itself, and scaling it by edge_count/reach_count yields exactly the rows
// that arrived via this particular arc.
func (m *MDD) arcMatchCount(n *Node, label string, child int, nextLayer int, pattern Pattern, memo map[int]int) int {
	edgeCount := n.EdgeCounts[label]
	if edgeCount == 0 {
		return 0
	}
	childNode := m.node(child)
	below := m.countBelow(child, nextLayer, pattern, memo)
	if childNode.ReachCount == 0 {
		return 0
	}
	return edgeCount * below / childNode.ReachCount
}
