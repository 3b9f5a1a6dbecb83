// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import "fmt"

// defaultMissingTokens builds the per-dimension missing-token map used to
// normalize absent values while walking a row.
func defaultMissingTokens(schema *Schema) map[string]string {
	out := make(map[string]string, len(schema.Dims))
	for _, d := range schema.Dims {
		out[d.Name] = d.missingToken()
	}
	return out
}

// rowLabels resolves a Row to its per-dimension arc labels in the given
// order, applying bin models to numeric dimensions and missing tokens
// everywhere else. binModels may be nil for dimensions that are not
// numeric or that have not been fit yet.
func rowLabels(r Row, order []string, schema *Schema, binModels map[string]*BinModel, missingTokens map[string]string) ([]string, error) {
	out := make([]string, len(order))
	for i, name := range order {
		dim := schema.MustGet(name)
		v, ok := r[name]
		if dim.Type == Numeric {
			if bm, hasModel := binModels[name]; hasModel {
				if !ok || v.IsMissing() {
					out[i] = bm.MissingToken
					continue
				}
				if v.Kind() != KindInt && v.Kind() != KindFloat {
					return nil, &CompileError{Dimension: name, Value: v.Label(), Err: fmt.Errorf("expected numeric value")}
				}
				out[i] = bm.Apply(v.Float64(), false)
				continue
			}
		}
		if !ok || v.IsMissing() {
			out[i] = missingTokens[name]
			continue
		}
		out[i] = v.Label()
	}
	return out, nil
}

// buildTrie constructs the uncompressed prefix trie for rows, following
// order, one arc per dimension per row. It is phase 1 of the trie compiler:
// O(R*D) in arc operations, and its peak memory (the unreduced trie) is the
// method's dominant cost.
func buildTrie(rows []Row, schema *Schema, order []string, missingTokens map[string]string) ([]*Node, int, int, error) {
	return buildTrieBinned(rows, schema, order, nil, missingTokens)
}

// buildTrieBinned is buildTrie but with numeric dimensions pre-bound to
// already-fitted BinModels, used by Builder.Fit once binning has run.
func buildTrieBinned(rows []Row, schema *Schema, order []string, binModels map[string]*BinModel, missingTokens map[string]string) ([]*Node, int, int, error) {
	root := 0
	nodes := []*Node{newNode(0)}
	terminalLayer := len(order)

	for rowIdx, r := range rows {
		labels, err := rowLabels(r, order, schema, binModels, missingTokens)
		if err != nil {
			if ce, ok := err.(*CompileError); ok {
				ce.Row = rowIdx
				return nil, 0, 0, ce
			}
			return nil, 0, 0, err
		}
		nid := root
		nodes[nid].ReachCount++
		for layer, label := range labels {
			n := nodes[nid]
			child, ok := n.Edges[label]
			if !ok {
				child = len(nodes)
				n.Edges[label] = child
				nodes = append(nodes, newNode(layer+1))
			}
			n.EdgeCounts[label]++
			nid = child
			nodes[nid].ReachCount++
		}
		nodes[nid].TerminalCount++
	}
	return nodes, root, terminalLayer, nil
}
