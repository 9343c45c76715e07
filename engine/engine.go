// Package engine wires the alphabet, rule front-end, Thompson constructor
// and lexical driver together into the single entry point external callers
// use: Compile a rule file into a ready-to-run Driver.
package engine

import (
	"fmt"
	"io"

	"github.com/kallegustafsson/tnfa/alphabet"
	"github.com/kallegustafsson/tnfa/construct"
	"github.com/kallegustafsson/tnfa/graph"
	"github.com/kallegustafsson/tnfa/lex"
	"github.com/kallegustafsson/tnfa/rule"
)

// Engine is the immutable result of compiling a rule set: the frozen
// alphabet and the combined NFA built from it. Both are safe to share
// read-only across goroutines; build one lex.Driver per consumer goroutine
// via NewDriver.
type Engine struct {
	Alphabet *alphabet.Alphabet
	Graph    *graph.Graph
}

// Compile reads rules from r, expands rule-head references, quantizes and
// Thompson-constructs them, and freezes the resulting alphabet. The
// alphabet is frozen so that, from this point on, an input rune the rule
// set never mentioned is reliably reported as "absent" by Quantize rather
// than silently growing the symbol space.
func Compile(r io.Reader) (*Engine, error) {
	raw, err := rule.Load(r)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("engine: no rules loaded")
	}

	expanded, err := rule.Expand(raw)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	a := alphabet.New()
	quantized, err := rule.Quantize(expanded, a)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	a.Freeze()

	g, err := construct.Build(quantized)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Engine{Alphabet: a, Graph: g}, nil
}

// NewDriver returns a fresh lex.Driver over e's graph and alphabet. Each
// returned Driver is owned by exactly one goroutine at a time; e itself may
// back any number of concurrently used Drivers.
func (e *Engine) NewDriver(opts lex.Options) *lex.Driver {
	return lex.New(e.Graph, e.Alphabet, opts)
}
