// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"container/heap"
	"sort"
	"strconv"
)

// DistanceFunc scores how far an observed arc label ("have") is from a
// caller-supplied target ("wanted") on one dimension. It must be
// non-negative; Nearest's default heuristic (h=0) is admissible regardless,
// but an optional per-layer-minimum heuristic installed via WithHeuristic
// is admissible only if every DistanceFunc in use is non-negative and the
// dimensions are scored independently.
type DistanceFunc func(wanted, have Value) float64

// NearestOption configures one call to Nearest.
type NearestOption func(*nearestConfig)

type nearestConfig struct {
	heuristic func(m *MDD, nodeID, layer int, distFns map[string]DistanceFunc) float64
}

// WithHeuristic installs an admissible A* heuristic in place of the default
// h=0. This is a policy hook: callers are responsible for the
// admissibility of whatever they install.
func WithHeuristic(h func(m *MDD, nodeID, layer int, distFns map[string]DistanceFunc) float64) NearestOption {
	return func(c *nearestConfig) { c.heuristic = h }
}

// astarState is one frontier entry in Nearest's priority queue: the node
// and layer it sits at, the accumulated distance g, the heuristic estimate
// h, and the path taken to reach it.
type astarState struct {
	node  int
	layer int
	g     float64
	h     float64
	path  map[string]Value
}

type astarQueue []*astarState

func (q astarQueue) Len() int { return len(q) }
func (q astarQueue) Less(i, j int) bool {
	fi, fj := q[i].g+q[i].h, q[j].g+q[j].h
	if fi != fj {
		return fi < fj
	}
	return pathKey(q[i].path) < pathKey(q[j].path)
}
func (q astarQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *astarQueue) Push(x interface{}) { *q = append(*q, x.(*astarState)) }
func (q *astarQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Nearest returns up to k complete rows minimizing total per-dimension
// distance to partial, via A* search over the layered DAG. distFns
// supplies a DistanceFunc for every dimension the caller wants scored;
// dimensions absent from partial contribute zero distance regardless of
// distFns.
func (m *MDD) Nearest(partial Pattern, distFns map[string]DistanceFunc, k int, opts ...NearestOption) ([]QueryResult, error) {
	if err := m.validatePattern("Nearest", partial); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	cfg := &nearestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	pq := &astarQueue{{node: m.Root, layer: 0, path: map[string]Value{}}}
	if cfg.heuristic != nil {
		(*pq)[0].h = cfg.heuristic(m, m.Root, 0, distFns)
	}
	heap.Init(pq)

	var results []QueryResult
	for pq.Len() > 0 && len(results) < k {
		cur := heap.Pop(pq).(*astarState)
		if cur.layer == m.TerminalLayer {
			results = append(results, QueryResult{
				Path:    cur.path,
				Score:   -cur.g,
				Details: map[string]float64{"distance": cur.g},
			})
			continue
		}
		dim := m.DimNames[cur.layer]
		n := m.node(cur.node)
		wanted, hasWant := partial[dim]
		fn := distFns[dim]

		labels := make([]string, 0, len(n.Edges))
		for lab := range n.Edges {
			labels = append(labels, lab)
		}
		sort.Strings(labels)

		for _, lab := range labels {
			d := 0.0
			if hasWant && fn != nil {
				d = fn(wanted, valueFromLabel(lab))
			}
			path := make(map[string]Value, len(cur.path)+1)
			for kk, vv := range cur.path {
				path[kk] = vv
			}
			path[dim] = String(lab)
			next := &astarState{node: n.Edges[lab], layer: cur.layer + 1, g: cur.g + d, path: path}
			if cfg.heuristic != nil {
				next.h = cfg.heuristic(m, next.node, next.layer, distFns)
			}
			heap.Push(pq, next)
		}
	}
	return results, nil
}

// valueFromLabel recovers a comparable Value from a rendered arc label, so
// a caller's DistanceFunc can compare against it numerically when the
// original dimension was numeric (or ordinal-as-number); labels that do not
// parse as a number are treated as opaque strings.
func valueFromLabel(label string) Value {
	if i, err := strconv.ParseInt(label, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(label, 64); err == nil {
		return Float(f)
	}
	return String(label)
}
