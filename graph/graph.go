// Package graph is the shared node/edge representation the Thompson
// constructor builds into and the simulator walks. A single Graph holds the
// combined NFA for every loaded rule: each rule contributes its own start
// node and its own accepting node(s), but all rules share one node/edge
// address space so the simulator can advance every rule's frontier in
// lockstep.
package graph

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kallegustafsson/tnfa/alphabet"
)

// Edge kinds.
const (
	KEpsilon = iota // Consumes no input; always taken during closure.
	KSymbol         // Consumes exactly one input symbol matching Symbol.
)

// Edge is one out-edge of a Node.
type Edge struct {
	Kind   int
	Symbol alphabet.ID // meaningful only when Kind == KSymbol
	Dst    *Node
}

// Accept marks a Node as the accepting state of one rule. Rule is that
// rule's priority index (lower wins ties); Head is the rule's head symbol,
// carried through so the simulator can report it without a side table.
type Accept struct {
	Rule int
	Head alphabet.ID
}

// Node is one NFA state.
type Node struct {
	ID      int
	Out     []*Edge
	Accept  *Accept // nil unless this node accepts some rule
	OutDeg  int     // len(Out), kept current by AddEpsilon/AddSymbol and Build
}

// Graph is a complete, compacted, node-addressed NFA. Starts holds, for each
// rule in priority order, the entry node of that rule's sub-NFA.
type Graph struct {
	Nodes  []*Node
	Starts []*Node
}

// Builder assembles a Graph node by node. The zero value is ready to use.
type Builder struct {
	nodes []*Node
}

// NewNode allocates a fresh, edge-less, non-accepting node.
func (b *Builder) NewNode() *Node {
	n := &Node{ID: len(b.nodes), Accept: nil}
	b.nodes = append(b.nodes, n)
	return n
}

// AddEpsilon adds an epsilon edge from u to v.
func (b *Builder) AddEpsilon(u, v *Node) *Edge {
	e := &Edge{Kind: KEpsilon, Dst: v}
	u.Out = append(u.Out, e)
	u.OutDeg = len(u.Out)
	return e
}

// AddSymbol adds a symbol-consuming edge from u to v.
func (b *Builder) AddSymbol(u, v *Node, sym alphabet.ID) *Edge {
	e := &Edge{Kind: KSymbol, Symbol: sym, Dst: v}
	u.Out = append(u.Out, e)
	u.OutDeg = len(u.Out)
	return e
}

// MarkAccept sets u's Accept marker.
func (b *Builder) MarkAccept(u *Node, rule int, head alphabet.ID) {
	u.Accept = &Accept{Rule: rule, Head: head}
}

// Build finalizes the graph, renumbering nodes to their allocation order and
// recording the given per-rule start nodes.
func (b *Builder) Build(starts []*Node) *Graph {
	for i, n := range b.nodes {
		n.ID = i
		n.OutDeg = len(n.Out)
	}
	return &Graph{Nodes: b.nodes, Starts: starts}
}

// WriteDot renders g in Graphviz DOT format, labeling symbol edges with the
// dequantized string from a and epsilon edges unlabeled. This mirrors the
// teacher's WriteDotGraph, generalized to a multi-start graph and our own
// edge kinds.
func WriteDot(out io.Writer, g *Graph, name string, a *alphabet.Alphabet) {
	_, _ = fmt.Fprintf(out, "digraph %s {\n", name)
	for i, start := range g.Starts {
		_, _ = fmt.Fprintf(out, "  start%d -> %d;\n  start%d[shape=point];\n", i, start.ID, i)
	}
	for _, n := range g.Nodes {
		if n.Accept != nil {
			_, _ = fmt.Fprintf(out, "  %d[style=filled,color=green,label=%q];\n", n.ID, acceptLabel(n.Accept, a))
		}
		for _, e := range n.Out {
			switch e.Kind {
			case KEpsilon:
				_, _ = fmt.Fprintf(out, "  %d -> %d;\n", n.ID, e.Dst.ID)
			case KSymbol:
				_, _ = fmt.Fprintf(out, "  %d -> %d[label=%q];\n", n.ID, e.Dst.ID, symbolLabel(e.Symbol, a))
			}
		}
	}
	_, _ = fmt.Fprintln(out, "}")
}

func symbolLabel(id alphabet.ID, a *alphabet.Alphabet) string {
	if s, ok := a.Dequantize(id); ok {
		return s
	}
	return strconv.Itoa(int(id))
}

func acceptLabel(acc *Accept, a *alphabet.Alphabet) string {
	if s, ok := a.Dequantize(acc.Head); ok {
		return s
	}
	return strconv.Itoa(int(acc.Head))
}
