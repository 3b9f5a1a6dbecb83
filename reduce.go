// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// reduceTrie performs the bottom-up canonical reduction pass: processing
// layers from the terminal layer down to 0, it groups nodes by structural
// signature (excluding edge counts),
// merges every group into one representative, aggregates counts, rewrites
// parent edges, and finally compacts and renumbers the node table in
// layer-major order for stable iteration.
//
// Within a layer, grouping is confluent (signature equality does not
// depend on processing order), so the per-layer signature computation is
// farmed out with one goroutine per node of the layer; only the merge/rewrite step,
// which must see every signature in the layer before it can know the
// groups, runs sequentially. This mirrors the "mark, sweep, renumber"
// shape of a generational garbage collector, minus the refcounting or
// finalizers a build-once structure has no use for.
func reduceTrie(nodes []*Node, root int, terminalLayer int, logger *zap.Logger) ([]*Node, int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	before := len(nodes)

	byLayer := make([][]int, terminalLayer+1)
	for id, n := range nodes {
		byLayer[n.Layer] = append(byLayer[n.Layer], id)
	}

	oldToNew := make(map[int]int, len(nodes))
	var newNodes []*Node
	newToOld := make(map[int][]int)

	for layer := terminalLayer; layer >= 0; layer-- {
		ids := byLayer[layer]
		sigs := make([]Signature, len(ids))

		// Compute signatures for this layer concurrently: each depends only
		// on already-finalized child ids from layer+1, never on a sibling
		// at the same layer.
		g, _ := errgroup.WithContext(context.Background())
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				n := nodes[id]
				remapped := n.Edges
				if layer < terminalLayer {
					remapped = make(map[string]int, len(n.Edges))
					for lab, ch := range n.Edges {
						remapped[lab] = oldToNew[ch]
					}
				}
				sigs[i] = newSignature(layer, n.TerminalCount, remapped)
				return nil
			})
		}
		_ = g.Wait()

		idx := newSignatureIndex()
		for i, id := range ids {
			sig := sigs[i]
			if rep, found := idx.lookup(sig); found {
				oldToNew[id] = rep
				newToOld[rep] = append(newToOld[rep], id)
				continue
			}
			rep := len(newNodes)
			idx.intern(sig, rep)
			oldToNew[id] = rep
			newToOld[rep] = []int{id}
			rn := &Node{Layer: layer, Edges: cloneEdges(sig.Edges), EdgeCounts: make(map[string]int)}
			newNodes = append(newNodes, rn)
		}
	}

	// Aggregate reach/edge/terminal counts from every merged old node into
	// its representative. Two nodes only ever merge when their
	// terminal_count already agrees (it is part of the signature), but a
	// terminal's terminal_count must still grow with the number of distinct
	// old nodes folded into it, exactly like reach_count, to keep
	// reach_count(terminal) equal to terminal_count(terminal) after the
	// merge.
	for newID, oldIDs := range newToOld {
		rn := newNodes[newID]
		for _, oldID := range oldIDs {
			on := nodes[oldID]
			rn.ReachCount += on.ReachCount
			rn.TerminalCount += on.TerminalCount
			for lab, c := range on.EdgeCounts {
				rn.EdgeCounts[lab] += c
			}
		}
	}

	// Renumber in layer-major order for stable iteration: node identifiers
	// stay small integers, with the root reserved and terminals at the last
	// layer.
	var ordered []int
	for layer := 0; layer <= terminalLayer; layer++ {
		for id := range newNodes {
			if newNodes[id].Layer == layer {
				ordered = append(ordered, id)
			}
		}
	}
	idMap := make(map[int]int, len(ordered))
	for newID, oldID := range ordered {
		idMap[oldID] = newID
	}
	final := make([]*Node, len(ordered))
	for newID, oldID := range ordered {
		n := newNodes[oldID]
		edges := make(map[string]int, len(n.Edges))
		for lab, ch := range n.Edges {
			edges[lab] = idMap[ch]
		}
		final[newID] = &Node{Layer: n.Layer, Edges: edges, EdgeCounts: n.EdgeCounts, ReachCount: n.ReachCount, TerminalCount: n.TerminalCount}
	}

	newRoot := idMap[oldToNew[root]]

	logger.Debug("reduction complete", zap.Int("before", before), zap.Int("after", len(final)))
	return final, newRoot, nil
}

func cloneEdges(items []LabeledChild) map[string]int {
	out := make(map[string]int, len(items))
	for _, e := range items {
		out[e.Label] = e.Child
	}
	return out
}
