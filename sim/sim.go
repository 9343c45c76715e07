// Package sim implements the GraphTraveler: a multi-rule NFA simulator that
// advances every rule's frontier in lockstep, one input symbol at a time,
// and reports which rules (if any) accept at the current position. It knows
// nothing about runes, tokens or rule files — only graph.Graph and
// alphabet.ID.
package sim

import (
	"github.com/kallegustafsson/tnfa/alphabet"
	"github.com/kallegustafsson/tnfa/graph"
)

// Accept describes one rule accepting at the traveler's current position.
type Accept struct {
	Rule int
	Head alphabet.ID
	node *graph.Node
}

// Traveler walks a Graph's combined NFA. The zero value is not usable; build
// one with New.
type Traveler struct {
	g        *graph.Graph
	current  map[int]*graph.Node
	previous map[int]*graph.Node // nil unless a Step can still be reverted
}

// New returns a Traveler positioned at g's reset state (the epsilon-closure
// of every rule's start node).
func New(g *graph.Graph) *Traveler {
	t := &Traveler{g: g}
	t.Reset()
	return t
}

// Reset returns the traveler to its start-of-input position.
func (t *Traveler) Reset() {
	seed := make(map[int]*graph.Node, len(t.g.Starts))
	for _, s := range t.g.Starts {
		seed[s.ID] = s
	}
	t.current = closure(seed)
	t.previous = nil
}

// Step advances the frontier by one input symbol, always committing to the
// result — even an empty (dead) frontier. It reports whether the resulting
// position is still alive (ValidSoFar would return true). This is the
// traveler's half of the driver's "one-character lookahead": the driver
// steps speculatively, inspects the result, and calls RevertStep to undo
// the attempt if the step turned out to be a dead end.
func (t *Traveler) Step(sym alphabet.ID) bool {
	next := make(map[int]*graph.Node)
	for _, n := range t.current {
		for _, e := range n.Out {
			if e.Kind == graph.KSymbol && e.Symbol == sym {
				next[e.Dst.ID] = e.Dst
			}
		}
	}
	t.previous = t.current
	t.current = closure(next)
	return len(t.current) > 0
}

// RevertStep undoes the most recent Step, reporting false if there is
// nothing to undo (a second RevertStep without an intervening Step, or no
// Step has been taken since the last Reset).
func (t *Traveler) RevertStep() bool {
	if t.previous == nil {
		return false
	}
	t.current = t.previous
	t.previous = nil
	return true
}

// ValidSoFar reports whether the traveler's current position is reachable
// by at least one rule — i.e. whether the consumed prefix is still a
// candidate for some token.
func (t *Traveler) ValidSoFar() bool {
	return len(t.current) > 0
}

// ReachedAccepts returns every rule accepting at the traveler's current
// position, in no particular order; use Best to pick the one the driver
// should emit.
func (t *Traveler) ReachedAccepts() []Accept {
	var out []Accept
	for _, n := range t.current {
		if n.Accept != nil {
			out = append(out, Accept{Rule: n.Accept.Rule, Head: n.Accept.Head, node: n})
		}
	}
	return out
}

// Best picks the accepting rule the driver should emit among accepts
// reached at the same position: the accepting node with fewer outgoing
// edges wins, on the theory that a node with fewer continuations is the
// more specific (less greedy) match — this is how a keyword rule like
// "if" outranks a generic "name" rule without either needing an explicit
// priority in the rule file. Rule priority (declaration order) only
// breaks a literal tie in outgoing-edge count.
func Best(accepts []Accept) (Accept, bool) {
	if len(accepts) == 0 {
		return Accept{}, false
	}
	best := accepts[0]
	for _, a := range accepts[1:] {
		switch {
		case len(a.node.Out) < len(best.node.Out):
			best = a
		case len(a.node.Out) == len(best.node.Out) && a.Rule < best.Rule:
			best = a
		}
	}
	return best, true
}

// closure returns the epsilon-closure of seed: every node reachable from
// seed by following zero or more epsilon edges, including seed itself.
func closure(seed map[int]*graph.Node) map[int]*graph.Node {
	visited := make(map[int]*graph.Node, len(seed))
	queue := make([]*graph.Node, 0, len(seed))
	for _, n := range seed {
		visited[n.ID] = n
		queue = append(queue, n)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range n.Out {
			if e.Kind != graph.KEpsilon {
				continue
			}
			if _, ok := visited[e.Dst.ID]; ok {
				continue
			}
			visited[e.Dst.ID] = e.Dst
			queue = append(queue, e.Dst)
		}
	}
	return visited
}
