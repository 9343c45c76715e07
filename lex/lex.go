// Package lex is the lexical driver: it turns a rune stream into a sequence
// of Tokens by running a sim.Traveler with maximal munch and one-character
// lookahead/backtrack, and by grouping runs of unrecognized input into
// Unknown tokens. It is a synchronous, single-threaded, non-reentrant
// function call — there is no suspension point and no goroutine boundary
// anywhere in Tokenize.
package lex

import (
	"github.com/kallegustafsson/tnfa/alphabet"
	"github.com/kallegustafsson/tnfa/graph"
	"github.com/kallegustafsson/tnfa/sim"
)

// UnknownHead is the synthetic rule head reported for a run of input that no
// loaded rule could match.
const UnknownHead = "Unknown"

// Token is one emitted lexeme: the head of the rule that produced it (or
// UnknownHead) and the exact matched text.
type Token struct {
	Head string
	Text string
}

// Options configures a Driver's handling of unrecognized input.
type Options struct {
	// DropUnknown suppresses Unknown tokens entirely instead of emitting
	// them; callers that want to treat unrecognized input as fatal should
	// inspect Driver.Tokenize's return value for UnknownHead themselves,
	// since Tokenize never returns an error for bad input by design (only
	// malformed rules are a construction-time error).
	DropUnknown bool
}

// Driver tokenizes input against a fixed, already-constructed Graph.
type Driver struct {
	graph    *graph.Graph
	alphabet *alphabet.Alphabet
	opts     Options
}

// New returns a Driver that tokenizes against g, using a to quantize input
// runes the same way the rules that built g were quantized.
func New(g *graph.Graph, a *alphabet.Alphabet, opts Options) *Driver {
	return &Driver{graph: g, alphabet: a, opts: opts}
}

// Tokenize consumes the whole of input and returns its tokens in order.
// Nothing about Tokenize is reentrant: call it from one goroutine, to
// completion, before calling it again.
func (d *Driver) Tokenize(input string) []Token {
	tz := &tokenizer{d: d, t: sim.New(d.graph), runes: []rune(input)}
	for tz.i < len(tz.runes) {
		tz.step()
	}
	if len(tz.pending) > 0 {
		tz.finalizeToken()
	}
	tz.flushUnknown()
	return tz.tokens
}

// tokenizer holds one Tokenize call's mutable state.
type tokenizer struct {
	d     *Driver
	t     *sim.Traveler
	runes []rune
	i     int

	pending        []rune
	lastAccept     sim.Accept
	haveLastAccept bool
	lastAcceptLen  int

	unknown []rune
	tokens  []Token
}

// step consumes exactly one rune's worth of progress: either it extends the
// current candidate span, or it closes out whatever span/run is pending and
// leaves tz.i where the next attempt should resume.
func (tz *tokenizer) step() {
	r := tz.runes[tz.i]
	if id, ok := tz.d.alphabet.Quantize(string(r), false); ok {
		if tz.t.Step(id) {
			tz.flushUnknown()
			tz.pending = append(tz.pending, r)
			tz.i++
			if accepts := tz.t.ReachedAccepts(); len(accepts) > 0 {
				best, _ := sim.Best(accepts)
				tz.lastAccept = best
				tz.haveLastAccept = true
				tz.lastAcceptLen = len(tz.pending)
			}
			return
		}
		tz.t.RevertStep()
	}

	if len(tz.pending) > 0 {
		tz.finalizeToken()
		return
	}

	// No rule can even start with r: it joins the current unknown run.
	tz.unknown = append(tz.unknown, r)
	tz.i++
}

// finalizeToken closes the current candidate span: it emits a Token for the
// longest accepted prefix seen so far and rewinds tz.i so the unconsumed
// remainder of the span is retried from a fresh start. If the span never
// reached an accepting state at all, the whole span is unrecognized and
// joins the unknown run instead.
func (tz *tokenizer) finalizeToken() {
	if tz.haveLastAccept {
		tz.flushUnknown()
		text := string(tz.pending[:tz.lastAcceptLen])
		head := tz.d.alphabet.MustDequantize(tz.lastAccept.Head)
		tz.tokens = append(tz.tokens, Token{Head: head, Text: text})
		tz.i -= len(tz.pending) - tz.lastAcceptLen
	} else {
		tz.unknown = append(tz.unknown, tz.pending...)
	}
	tz.pending = nil
	tz.haveLastAccept = false
	tz.lastAcceptLen = 0
	tz.t.Reset()
}

// flushUnknown emits the accumulated unknown run as a single Unknown token,
// if there is one and the driver isn't configured to drop it.
func (tz *tokenizer) flushUnknown() {
	if len(tz.unknown) == 0 {
		return
	}
	if !tz.d.opts.DropUnknown {
		tz.tokens = append(tz.tokens, Token{Head: UnknownHead, Text: string(tz.unknown)})
	}
	tz.unknown = nil
}
