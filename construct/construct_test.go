package construct

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kallegustafsson/tnfa/alphabet"
	"github.com/kallegustafsson/tnfa/graph"
	"github.com/kallegustafsson/tnfa/rule"
)

func buildOne(t *testing.T, body string) (*graph.Graph, *alphabet.Alphabet) {
	t.Helper()
	raw := []rule.RawRule{{Head: "R", Tokens: strings.Fields(body)}}
	expanded, err := rule.Expand(raw)
	require.NoError(t, err)
	a := alphabet.New()
	quantized, err := rule.Quantize(expanded, a)
	require.NoError(t, err)
	g, err := Build(quantized)
	require.NoError(t, err)
	return g, a
}

// edgeShape is a go-cmp-friendly projection of a node's out-edges, so tests
// can assert on structure without caring about node allocation order noise
// beyond what each test explicitly pins down.
type edgeShape struct {
	Kind   int
	Symbol alphabet.ID
	Dst    int
}

func shapeOf(n *graph.Node) []edgeShape {
	out := make([]edgeShape, len(n.Out))
	for i, e := range n.Out {
		out[i] = edgeShape{Kind: e.Kind, Symbol: e.Symbol, Dst: e.Dst.ID}
	}
	return out
}

func TestBuildSingleLiteral(t *testing.T) {
	g, a := buildOne(t, "A")
	require.Len(t, g.Starts, 1)
	start := g.Starts[0]

	aID, ok := a.Quantize("A", true)
	require.True(t, ok)

	// The rule body "A" is wrapped as "( A )", a trivial one-child concat
	// group, so the literal's own fragment nodes are exactly the rule's
	// start and accept nodes: one symbol edge, no epsilons.
	if diff := cmp.Diff([]edgeShape{{Kind: graph.KSymbol, Symbol: aID, Dst: start.Out[0].Dst.ID}}, shapeOf(start)); diff != "" {
		t.Fatalf("start node edges mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, start.Out[0].Dst.Accept)
	require.Equal(t, 0, start.Out[0].Dst.Accept.Rule)
}

func TestBuildConcatenation(t *testing.T) {
	g, _ := buildOne(t, "A B C")
	start := g.Starts[0]
	// Three literals chained by epsilon edges: start -A-> n1 -eps-> n2 -B-> n3 ...
	require.Len(t, start.Out, 1)
	require.Equal(t, graph.KSymbol, start.Out[0].Kind)
}

func TestBuildStarReusesFragmentNodes(t *testing.T) {
	g, _ := buildOne(t, "( A ) *")
	start := g.Starts[0]
	// Star must add a skip edge (start -eps-> some accepting node) in
	// addition to the literal's own consuming edge, and the literal's end
	// node must loop back to its own start.
	var sawSkip, sawSymbol bool
	for _, e := range start.Out {
		switch e.Kind {
		case graph.KEpsilon:
			sawSkip = true
			require.NotNil(t, e.Dst.Accept, "star's skip edge must reach the accepting node directly (zero-length match)")
		case graph.KSymbol:
			sawSymbol = true
		}
	}
	require.True(t, sawSkip)
	require.True(t, sawSymbol)
}

func TestBuildPlusHasNoSkipEdge(t *testing.T) {
	g, _ := buildOne(t, "( A ) +")
	start := g.Starts[0]
	for _, e := range start.Out {
		require.Equal(t, graph.KSymbol, e.Kind, "plus must not add a start->end skip edge")
	}
}

func TestBuildAlternationOfLiterals(t *testing.T) {
	g, _ := buildOne(t, "( A B C ) |")
	start := g.Starts[0]
	// The group's children "A", "B", "C" were never parenthesized together,
	// so alternation fans out from its fresh start node to three independent
	// parallel branches, one epsilon edge into each literal's fragment.
	require.Len(t, start.Out, 3)
	for _, e := range start.Out {
		require.Equal(t, graph.KEpsilon, e.Kind)
	}
}

func TestBuildRejectsUnmatchedParen(t *testing.T) {
	raw := []rule.RawRule{{Head: "R", Tokens: []string{"(", "A"}}}
	a := alphabet.New()
	quantized, err := rule.Quantize(raw, a)
	require.NoError(t, err)
	_, err = Build(quantized)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnmatchedLParen))
}

func TestBuildRejectsUnmatchedCloseParen(t *testing.T) {
	raw := []rule.RawRule{{Head: "R", Tokens: []string{"A", ")", "B"}}}
	a := alphabet.New()
	quantized, err := rule.Quantize(raw, a)
	require.NoError(t, err)
	_, err = Build(quantized)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnmatchedRParen))
}

func TestBuildRejectsBareOperator(t *testing.T) {
	raw := []rule.RawRule{{Head: "R", Tokens: []string{"A", "*"}}}
	a := alphabet.New()
	quantized, err := rule.Quantize(raw, a)
	require.NoError(t, err)
	_, err = Build(quantized)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBareOperator))
}

func TestBuildRejectsEmptyBody(t *testing.T) {
	_, err := Build([]rule.QuantizedRule{{Head: 0, HeadName: "R"}})
	require.Error(t, err)
}

func TestBuildMultipleRulesGetDistinctStarts(t *testing.T) {
	raw := []rule.RawRule{
		{Head: "R1", Tokens: []string{"A"}},
		{Head: "R2", Tokens: []string{"B"}},
	}
	a := alphabet.New()
	quantized, err := rule.Quantize(raw, a)
	require.NoError(t, err)
	g, err := Build(quantized)
	require.NoError(t, err)
	require.Len(t, g.Starts, 2)
	require.NotEqual(t, g.Starts[0].ID, g.Starts[1].ID)
}
