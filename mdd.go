// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"fmt"

	"github.com/google/uuid"
)

// Node is one vertex of a compiled MDD: its layer, its outgoing edges
// (label -> child id) and the count of input rows that traversed each
// edge, and the aggregate reach/terminal counts used for count
// conservation.
type Node struct {
	Layer         int
	Edges         map[string]int
	EdgeCounts    map[string]int
	ReachCount    int
	TerminalCount int
}

func newNode(layer int) *Node {
	return &Node{Layer: layer, Edges: make(map[string]int), EdgeCounts: make(map[string]int)}
}

func (n *Node) isTerminal(terminalLayer int) bool { return n.Layer == terminalLayer }

// signature computes the canonical structural signature of n, given its
// (already-renumbered) edge map.
func (n *Node) signature() Signature {
	return newSignature(n.Layer, n.TerminalCount, n.Edges)
}

// EdgeView is one outgoing arc of a Node, as exposed through the read-only
// renderer-facing iteration surface.
type EdgeView struct {
	Label string
	Child int
	Count int
}

// NodeView is the read-only shape of a Node exposed to renderers. It is a
// value type (no shared mutable state) so renderers can retain it freely.
type NodeView struct {
	ID            int
	Layer         int
	TerminalCount int
	ReachCount    int
	Edges         []EdgeView
}

// MDD is a reduced, layered, labeled directed acyclic graph compiled from a
// table of rows: the dimension order chosen by the ordering engine, the
// node table, the root, the terminal layer, the bin models used for
// numeric dimensions, and the Laplace smoothing parameter used by
// probability-ranked queries. It is read-only once constructed.
type MDD struct {
	BuildID       uuid.UUID
	DimNames      []string
	nodes         []*Node
	Root          int
	TerminalLayer int
	LaplaceAlpha  float64
	BinModels     map[string]*BinModel
	MissingTokens map[string]string

	nameToLayer map[string]int
}

func newMDD(dimNames []string, nodes []*Node, root int, terminalLayer int, alpha float64, binModels map[string]*BinModel, missingTokens map[string]string) *MDD {
	nameToLayer := make(map[string]int, len(dimNames))
	for i, n := range dimNames {
		nameToLayer[n] = i
	}
	return &MDD{
		BuildID:       uuid.New(),
		DimNames:      dimNames,
		nodes:         nodes,
		Root:          root,
		TerminalLayer: terminalLayer,
		LaplaceAlpha:  alpha,
		BinModels:     binModels,
		MissingTokens: missingTokens,
		nameToLayer:   nameToLayer,
	}
}

// String returns a one-line description of the diagram.
func (m *MDD) String() string {
	nodes, arcs, layers := m.Size()
	return fmt.Sprintf("MDD(dims=%v, nodes=%d, arcs=%d, layers=%d)", m.DimNames, nodes, arcs, layers)
}

// Size returns the node count, arc count and layer count of the diagram.
func (m *MDD) Size() (nodes, arcs, layers int) {
	nodes = len(m.nodes)
	for _, n := range m.nodes {
		arcs += len(n.Edges)
	}
	return nodes, arcs, m.TerminalLayer
}

// NodeCount returns the number of nodes in the node table.
func (m *MDD) NodeCount() int { return len(m.nodes) }

// node returns the internal Node for an id, without copying. It is used by
// the query engine; renderers should use Nodes/NodeView instead.
func (m *MDD) node(id int) *Node { return m.nodes[id] }

// Nodes returns a read-only view of every node at the given layer, in id
// order. Layer must be in [0, TerminalLayer].
func (m *MDD) Nodes(layer int) []NodeView {
	var out []NodeView
	for id, n := range m.nodes {
		if n.Layer != layer {
			continue
		}
		out = append(out, m.view(id, n))
	}
	return out
}

// AllNodes returns a read-only view of every node in the diagram, in id
// order.
func (m *MDD) AllNodes() []NodeView {
	out := make([]NodeView, len(m.nodes))
	for id, n := range m.nodes {
		out[id] = m.view(id, n)
	}
	return out
}

func (m *MDD) view(id int, n *Node) NodeView {
	edges := make([]EdgeView, 0, len(n.Edges))
	for lab, ch := range n.Edges {
		edges = append(edges, EdgeView{Label: lab, Child: ch, Count: n.EdgeCounts[lab]})
	}
	return NodeView{ID: id, Layer: n.Layer, TerminalCount: n.TerminalCount, ReachCount: n.ReachCount, Edges: edges}
}

// DimensionIndex returns the layer (0-based position in the compiled
// order) of a dimension name, or -1 if unknown.
func (m *MDD) DimensionIndex(name string) int {
	if i, ok := m.nameToLayer[name]; ok {
		return i
	}
	return -1
}

// validatePattern checks that every key in pattern names a known
// dimension.
func (m *MDD) validatePattern(op string, pattern map[string]Value) error {
	for k := range pattern {
		if _, ok := m.nameToLayer[k]; !ok {
			return &QueryError{Op: op, Dimension: k, Err: fmt.Errorf("unknown dimension")}
		}
	}
	return nil
}

// labelFor resolves the arc label to use for a pattern value on dimension
// dim: Int and Float values of numeric dimensions with a fitted BinModel get
// bin-applied, everything else (including an already-binned interval
// string) renders via Value.Label.
func (m *MDD) labelFor(dim string, v Value) string {
	if bm, ok := m.BinModels[dim]; ok {
		if v.IsMissing() {
			return bm.MissingToken
		}
		if v.Kind() == KindInt || v.Kind() == KindFloat {
			return bm.Apply(v.Float64(), false)
		}
		return v.Label()
	}
	if v.IsMissing() {
		if tok, ok := m.MissingTokens[dim]; ok {
			return tok
		}
		return DefaultMissingToken
	}
	return v.Label()
}
