// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"math"
	"sort"
)

// beamCandidate is one partial completion carried through the beam: the
// node it currently sits at, the dimensions fixed so far, and the
// accumulated Laplace-smoothed log-probability.
type beamCandidate struct {
	node    int
	layer   int
	logProb float64
	path    map[string]Value
}

// Complete returns the top-k completions of partial, ranked by cumulative
// Laplace-smoothed conditional log-probability on the free dimensions, via
// a beam search of width beam. α is m.LaplaceAlpha.
func (m *MDD) Complete(partial Pattern, k int, beam int) ([]QueryResult, error) {
	if err := m.validatePattern("Complete", partial); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	if beam < 1 {
		beam = 1
	}

	beamSet := []beamCandidate{{node: m.Root, layer: 0, path: map[string]Value{}}}

	for layer := 0; layer < m.TerminalLayer && len(beamSet) > 0; layer++ {
		dim := m.DimNames[layer]
		var next []beamCandidate
		for _, c := range beamSet {
			n := m.node(c.node)
			k_n := len(n.Edges)
			if k_n == 0 {
				continue
			}
			if wanted, fixed := partial[dim]; fixed {
				label := m.labelFor(dim, wanted)
				child, ok := n.Edges[label]
				if !ok {
					continue
				}
				// The partial's own dimensions are given, not part of what's
				// being completed, so they descend without contributing to
				// the candidate's score.
				next = append(next, extendCandidate(c, dim, label, child, 0))
				continue
			}
			labels := make([]string, 0, len(n.Edges))
			for lab := range n.Edges {
				labels = append(labels, lab)
			}
			sort.Strings(labels)
			for _, lab := range labels {
				lp := laplaceLogProb(n.EdgeCounts[lab], n.ReachCount, k_n, m.LaplaceAlpha)
				next = append(next, extendCandidate(c, dim, lab, n.Edges[lab], lp))
			}
		}
		next = trimBeam(next, beam)
		beamSet = next
	}

	results := make([]QueryResult, 0, len(beamSet))
	for _, c := range beamSet {
		n := m.node(c.node)
		results = append(results, QueryResult{
			Path:    c.path,
			Score:   c.logProb,
			Details: map[string]float64{"logprob": c.logProb, "reach": float64(n.ReachCount)},
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ri := results[i].Details["reach"]
		rj := results[j].Details["reach"]
		if ri != rj {
			return ri > rj
		}
		return false
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func extendCandidate(c beamCandidate, dim, label string, child int, logProbDelta float64) beamCandidate {
	path := make(map[string]Value, len(c.path)+1)
	for k, v := range c.path {
		path[k] = v
	}
	path[dim] = String(label)
	return beamCandidate{node: child, layer: c.layer + 1, logProb: c.logProb + logProbDelta, path: path}
}

// laplaceLogProb computes log((edgeCount+alpha)/(reachCount+alpha*branching)).
func laplaceLogProb(edgeCount, reachCount, branching int, alpha float64) float64 {
	num := float64(edgeCount) + alpha
	den := float64(reachCount) + alpha*float64(branching)
	if den <= 0 {
		return math.Inf(-1)
	}
	return math.Log(num / den)
}

// trimBeam keeps the beam top-scoring candidates by log-prob, breaking ties
// by lexicographically smaller path key, for a deterministic cut. Reach is
// not consulted here.
func trimBeam(cands []beamCandidate, beam int) []beamCandidate {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].logProb != cands[j].logProb {
			return cands[i].logProb > cands[j].logProb
		}
		return pathKey(cands[i].path) < pathKey(cands[j].path)
	})
	if len(cands) > beam {
		cands = cands[:beam]
	}
	return cands
}

func pathKey(path map[string]Value) string {
	names := make([]string, 0, len(path))
	for n := range path {
		names = append(names, n)
	}
	sort.Strings(names)
	key := ""
	for _, n := range names {
		key += n + "=" + path[n].Label() + "\x1f"
	}
	return key
}
