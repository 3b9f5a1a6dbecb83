// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import "sort"

// MatchResult is one complete path enumerated by Match: a value for every
// dimension in the diagram, in no particular key order (callers read by
// dimension name).
type MatchResult struct {
	Path map[string]Value
}

// Match enumerates up to limit complete root-to-terminal paths consistent
// with pattern, via depth-first search. Arcs are visited in sorted-label
// order at every node, so the result is deterministic for a given limit.
func (m *MDD) Match(pattern Pattern, limit int) ([]MatchResult, error) {
	if err := m.validatePattern("Match", pattern); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	var out []MatchResult
	path := make(map[string]Value, len(m.DimNames))
	m.matchDFS(m.Root, 0, pattern, path, limit, &out)
	return out, nil
}

func (m *MDD) matchDFS(nodeID, layer int, pattern Pattern, path map[string]Value, limit int, out *[]MatchResult) {
	if len(*out) >= limit {
		return
	}
	n := m.node(nodeID)
	if layer == m.TerminalLayer {
		cp := make(map[string]Value, len(path))
		for k, v := range path {
			cp[k] = v
		}
		*out = append(*out, MatchResult{Path: cp})
		return
	}
	dim := m.DimNames[layer]

	labels := make([]string, 0, len(n.Edges))
	for lab := range n.Edges {
		labels = append(labels, lab)
	}
	sort.Strings(labels)

	wanted, fixed := pattern[dim]
	var wantedLabel string
	if fixed {
		wantedLabel = m.labelFor(dim, wanted)
	}
	for _, lab := range labels {
		if len(*out) >= limit {
			return
		}
		if fixed && lab != wantedLabel {
			continue
		}
		path[dim] = String(lab)
		m.matchDFS(n.Edges[lab], layer+1, pattern, path, limit, out)
		delete(path, dim)
	}
}
