package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallegustafsson/tnfa/alphabet"
)

func TestBuilderAllocatesContiguousIDs(t *testing.T) {
	var b Builder
	n0 := b.NewNode()
	n1 := b.NewNode()
	n2 := b.NewNode()
	assert.Equal(t, 0, n0.ID)
	assert.Equal(t, 1, n1.ID)
	assert.Equal(t, 2, n2.ID)

	g := b.Build([]*Node{n0})
	require.Len(t, g.Nodes, 3)
	for i, n := range g.Nodes {
		assert.Equal(t, i, n.ID, "Build renumbers nodes to allocation order")
	}
}

func TestAddEpsilonAndAddSymbol(t *testing.T) {
	var b Builder
	u, v := b.NewNode(), b.NewNode()
	b.AddEpsilon(u, v)

	w := b.NewNode()
	b.AddSymbol(u, w, alphabet.ID(7))

	require.Len(t, u.Out, 2)
	assert.Equal(t, KEpsilon, u.Out[0].Kind)
	assert.Same(t, v, u.Out[0].Dst)
	assert.Equal(t, KSymbol, u.Out[1].Kind)
	assert.Equal(t, alphabet.ID(7), u.Out[1].Symbol)
	assert.Same(t, w, u.Out[1].Dst)
	assert.Equal(t, 2, u.OutDeg, "OutDeg tracks len(Out) as edges are added")
}

func TestMarkAccept(t *testing.T) {
	var b Builder
	n := b.NewNode()
	assert.Nil(t, n.Accept)

	b.MarkAccept(n, 3, alphabet.ID(12))
	require.NotNil(t, n.Accept)
	assert.Equal(t, 3, n.Accept.Rule)
	assert.Equal(t, alphabet.ID(12), n.Accept.Head)
}

func TestBuildRecordsStarts(t *testing.T) {
	var b Builder
	s0 := b.NewNode()
	s1 := b.NewNode()
	b.AddEpsilon(s0, s1)

	g := b.Build([]*Node{s0, s1})
	require.Len(t, g.Starts, 2)
	assert.Same(t, s0, g.Starts[0])
	assert.Same(t, s1, g.Starts[1])
}

func TestWriteDotMentionsEveryNodeAndAccept(t *testing.T) {
	a := alphabet.New()
	symA, _ := a.Quantize("A", true)

	var b Builder
	s, e := b.NewNode(), b.NewNode()
	b.AddSymbol(s, e, symA)
	headID, _ := a.Quantize("RULE", false)
	b.MarkAccept(e, 0, headID)
	g := b.Build([]*Node{s})

	var out strings.Builder
	WriteDot(&out, g, "test", a)
	dot := out.String()

	assert.Contains(t, dot, "digraph test {")
	assert.Contains(t, dot, "start0 -> 0;")
	assert.Contains(t, dot, `label="A"`)
	assert.Contains(t, dot, `label="RULE"`)
}

func TestSymbolLabelFallsBackToIDWhenUnknown(t *testing.T) {
	a := alphabet.New()
	assert.Equal(t, "999", symbolLabel(alphabet.ID(999), a))
}
