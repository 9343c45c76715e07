// Package construct builds the combined multi-rule NFA from quantized rules,
// by Thompson construction over a hand-rolled recursive-descent grouping
// pass. It never looks at rule-file text or symbol names directly: it
// consumes alphabet.ID tokens only, exactly as produced by rule.Quantize.
//
// Every operator (*, ?, +, |) is postfix on a parenthesized group — a bare
// literal can never take one directly. A rule's body is implicitly wrapped
// in one outer group before construction, so a top-level sequence of
// literals and groups is itself just the contents of that synthetic group.
package construct

import (
	"errors"
	"fmt"

	"github.com/kallegustafsson/tnfa/alphabet"
	"github.com/kallegustafsson/tnfa/graph"
	"github.com/kallegustafsson/tnfa/rule"
)

// Sentinel errors for malformed rule bodies, named in the teacher's own
// style (nex.go's ErrUnmatchedLpar/ErrBareClosure): a caller can
// errors.Is against these instead of matching on message text.
var (
	ErrUnmatchedLParen = errors.New("unmatched '('")
	ErrUnmatchedRParen = errors.New("unmatched ')'")
	ErrBareOperator    = errors.New("operator with no preceding group")
)

// Build constructs one combined Graph holding every rule's sub-NFA, in
// priority order (rules[i] becomes g.Starts[i], and its accepting node
// carries Accept.Rule == i).
func Build(rules []rule.QuantizedRule) (*graph.Graph, error) {
	var b graph.Builder
	starts := make([]*graph.Node, len(rules))
	for i, r := range rules {
		if len(r.Tokens) == 0 {
			return nil, fmt.Errorf("construct: rule %q has an empty body", r.HeadName)
		}
		wrapped := make([]alphabet.ID, 0, len(r.Tokens)+2)
		wrapped = append(wrapped, alphabet.LParen)
		wrapped = append(wrapped, r.Tokens...)
		wrapped = append(wrapped, alphabet.RParen)

		frag, err := constructSubrule(&b, wrapped)
		if err != nil {
			return nil, fmt.Errorf("construct: rule %q: %w", r.HeadName, err)
		}
		b.MarkAccept(frag.end, i, r.Head)
		starts[i] = frag.start
	}
	return b.Build(starts), nil
}

// fragment is an in-progress sub-NFA: a single entry node and a single exit
// node, the classic Thompson construction invariant.
type fragment struct {
	start, end *graph.Node
}

// operation is what a bracketed span's closing token says to do with its
// first-tier children.
type operation int

const (
	opLiteral operation = iota
	opConcat
	opStarAny
	opOptional
	opAtLeastOne
	opAlternation
)

// whatOperation inspects a span's first and last token to classify it.
// toks[0] is a plain symbol (not LParen) exactly when the span is a single
// literal with no grouping at all.
func whatOperation(toks []alphabet.ID) (operation, error) {
	if toks[0] != alphabet.LParen {
		return opLiteral, nil
	}
	if len(toks) < 2 {
		return 0, fmt.Errorf("construct: unterminated group: %w", ErrUnmatchedLParen)
	}
	switch toks[len(toks)-1] {
	case alphabet.RParen:
		return opConcat, nil
	case alphabet.Star:
		return opStarAny, nil
	case alphabet.Question:
		return opOptional, nil
	case alphabet.Plus:
		return opAtLeastOne, nil
	case alphabet.Pipe:
		return opAlternation, nil
	default:
		return 0, fmt.Errorf("construct: group not closed by ')' or a trailing operator: %w", ErrUnmatchedLParen)
	}
}

// constructSubrule builds the fragment for one token span: either a single
// literal, or a parenthesized group whose first-tier children (possibly
// just one) combine per the span's trailing operation.
func constructSubrule(b *graph.Builder, toks []alphabet.ID) (fragment, error) {
	op, err := whatOperation(toks)
	if err != nil {
		return fragment{}, err
	}
	if op == opLiteral {
		if len(toks) != 1 {
			// A postfix operator (or '|') was attached directly to a bare
			// literal instead of a parenthesized group — the grammar only
			// allows that operator to follow ')'.
			return fragment{}, fmt.Errorf("construct: operator applied to a bare literal: %w", ErrBareOperator)
		}
		return literalFragment(b, toks[0]), nil
	}

	terms, err := childTerms(b, toks)
	if err != nil {
		return fragment{}, err
	}
	if len(terms) == 0 {
		// "( )" with nothing between the parens: not a paren-matching or
		// bare-operator problem, so it isn't wrapped in one of this
		// package's three sentinels — see DESIGN.md's construct/ entry.
		return fragment{}, fmt.Errorf("construct: empty group has no terms to combine")
	}

	switch op {
	case opConcat:
		return concatFragments(b, terms), nil
	case opStarAny:
		return starFragment(b, concatFragments(b, terms)), nil
	case opOptional:
		return optionalFragment(b, concatFragments(b, terms)), nil
	case opAtLeastOne:
		return plusFragment(b, concatFragments(b, terms)), nil
	case opAlternation:
		return altFragment(b, terms), nil
	default:
		panic("construct: unreachable operation")
	}
}

// childTerms strips toks' outer '(' ... ')' — skipping past whatever
// trailing operator follows the matching ')' — then splits the interior
// into first-tier spans and recursively builds each one's fragment.
func childTerms(b *graph.Builder, toks []alphabet.ID) ([]fragment, error) {
	end := len(toks) - 1
	for toks[end] != alphabet.RParen {
		end--
		if end < 1 {
			return nil, fmt.Errorf("construct: %w", ErrUnmatchedLParen)
		}
	}
	interior := toks[1:end]

	spans, err := firstTierSpans(interior)
	if err != nil {
		return nil, err
	}
	terms := make([]fragment, 0, len(spans))
	for _, sp := range spans {
		f, err := constructSubrule(b, interior[sp.start:sp.end+1])
		if err != nil {
			return nil, err
		}
		terms = append(terms, f)
	}
	return terms, nil
}

type tokenSpan struct{ start, end int }

// firstTierSpans scans toks at paren-depth 0, collecting one span per
// first-tier child. A trailing unary operator or infix '|' immediately
// following a depth-0 literal or a just-closed group extends that child's
// span by one token instead of starting a new child — this is how "(A)*"
// and "(A B)|" bind their operator to the group, and how "A" followed
// immediately by "|" at depth 0 would too (though the grammar never
// actually allows a bare literal at depth 0 to carry one, since
// constructSubrule rejects any non-singleton opLiteral span).
func firstTierSpans(toks []alphabet.ID) ([]tokenSpan, error) {
	var spans []tokenSpan
	depth := 0
	openIdx := -1
	for idx, sym := range toks {
		switch {
		case sym == alphabet.LParen:
			depth++
			if depth == 1 {
				openIdx = idx
			}
		case sym == alphabet.RParen:
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("construct: %w", ErrUnmatchedRParen)
			}
			if depth == 0 {
				spans = append(spans, tokenSpan{openIdx, idx})
				openIdx = -1
			}
		case isPostfixOperator(sym):
			if depth == 0 {
				if len(spans) == 0 {
					return nil, fmt.Errorf("construct: %w", ErrBareOperator)
				}
				spans[len(spans)-1].end++
			}
		default:
			if depth == 0 {
				spans = append(spans, tokenSpan{idx, idx})
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("construct: %w", ErrUnmatchedLParen)
	}
	return spans, nil
}

func isPostfixOperator(id alphabet.ID) bool {
	return id == alphabet.Star || id == alphabet.Question || id == alphabet.Plus || id == alphabet.Pipe
}

func literalFragment(b *graph.Builder, sym alphabet.ID) fragment {
	s, e := b.NewNode(), b.NewNode()
	b.AddSymbol(s, e, sym)
	return fragment{s, e}
}

// concatFragments chains terms end-to-start via epsilon edges. This is both
// plain sequencing and the "concatenate every first-tier child into one
// term first" step that Star/Optional/AtLeastOne wrap.
func concatFragments(b *graph.Builder, terms []fragment) fragment {
	if len(terms) == 1 {
		return terms[0]
	}
	for i := 0; i < len(terms)-1; i++ {
		b.AddEpsilon(terms[i].end, terms[i+1].start)
	}
	return fragment{terms[0].start, terms[len(terms)-1].end}
}

// starFragment, optionalFragment and plusFragment reuse inner's own start
// and end nodes — they only add the epsilon edges that realize the
// quantifier, never new nodes.
func starFragment(b *graph.Builder, inner fragment) fragment {
	b.AddEpsilon(inner.start, inner.end)
	b.AddEpsilon(inner.end, inner.start)
	return inner
}

func optionalFragment(b *graph.Builder, inner fragment) fragment {
	b.AddEpsilon(inner.start, inner.end)
	return inner
}

func plusFragment(b *graph.Builder, inner fragment) fragment {
	b.AddEpsilon(inner.end, inner.start)
	return inner
}

// altFragment gives each first-tier child its own independent parallel
// branch through fresh start/end nodes — no pre-concatenation, unlike
// concatFragments.
func altFragment(b *graph.Builder, terms []fragment) fragment {
	s, e := b.NewNode(), b.NewNode()
	for _, t := range terms {
		b.AddEpsilon(s, t.start)
		b.AddEpsilon(t.end, e)
	}
	return fragment{s, e}
}
