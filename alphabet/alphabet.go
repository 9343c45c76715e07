// Package alphabet provides the bidirectional mapping between rule-file
// strings (single characters, rule-head names, escaped literals) and the
// small nonnegative integer symbol IDs the rest of the engine operates on.
package alphabet

import "fmt"

// ID is a quantized symbol: a nonnegative integer assigned the first time a
// string is seen. It never changes once assigned.
type ID int

// Reserved IDs for the six structural operators, in the order the rule
// grammar lists them. Every other ID (>= numOperators) is a user symbol:
// either a single input character or a multi-character rule-head name.
const (
	LParen ID = iota
	RParen
	Star
	Question
	Plus
	Pipe
	numOperators
)

var operatorLiterals = [numOperators]rune{'(', ')', '*', '?', '+', '|'}

// escapeForms maps an escape token to the literal rune it denotes. The
// constructor never sees these as operators: quantization resolves the
// escape to the literal character's ID before the constructor runs.
var escapeForms = map[string]rune{
	"<:left_paren:>":    '(',
	"<:right_paren:>":   ')',
	"<:asterisk:>":      '*',
	"<:question_mark:>": '?',
	"<:plus_sign:>":     '+',
	"<:pipe:>":          '|',
}

// Alphabet interns strings into IDs and supports the reverse lookup. The
// zero value is not usable; construct one with New.
type Alphabet struct {
	bySymbol map[string]ID
	byID     []string
	frozen   bool
}

// New returns an Alphabet with the six structural operators occupying their
// reserved IDs. The operator characters are not entered in the symbol
// table, so quantizing one as a literal (escape form, or without
// treatOperatorsAsOperators) interns it under a user-symbol ID of its own.
func New() *Alphabet {
	a := &Alphabet{
		bySymbol: make(map[string]ID, numOperators),
		byID:     make([]string, 0, numOperators),
	}
	for _, r := range operatorLiterals {
		a.byID = append(a.byID, string(r))
	}
	return a
}

// Quantize interns s and returns its ID.
//
// If treatOperatorsAsOperators is true and s is exactly one of the six
// structural-operator characters, the reserved operator ID is returned
// directly. Otherwise, if s is one of the escape forms, it is first
// unescaped to the literal character it denotes; the (possibly unescaped)
// string is then interned as an ordinary user symbol.
//
// Interning a never-seen symbol after the alphabet has been frozen returns
// ok=false ("absent") instead of creating a new ID.
func (a *Alphabet) Quantize(s string, treatOperatorsAsOperators bool) (id ID, ok bool) {
	if treatOperatorsAsOperators {
		if id, ok := reservedOperator(s); ok {
			return id, true
		}
	}
	if r, isEscape := escapeForms[s]; isEscape {
		s = string(r)
	}
	if id, seen := a.bySymbol[s]; seen {
		return id, true
	}
	if a.frozen {
		return 0, false
	}
	id = ID(len(a.byID))
	a.byID = append(a.byID, s)
	a.bySymbol[s] = id
	return id, true
}

func reservedOperator(s string) (ID, bool) {
	if len(s) != 1 {
		return 0, false
	}
	for i, r := range operatorLiterals {
		if rune(s[0]) == r {
			return ID(i), true
		}
	}
	return 0, false
}

// Dequantize returns the original string for id, or ok=false if id was
// never assigned.
func (a *Alphabet) Dequantize(id ID) (s string, ok bool) {
	if int(id) < 0 || int(id) >= len(a.byID) {
		return "", false
	}
	return a.byID[id], true
}

// MustDequantize is Dequantize for call sites that treat an unknown ID as a
// programmer error rather than recoverable data, matching the teacher's
// Mustf/NoError convention for internal contract violations.
func (a *Alphabet) MustDequantize(id ID) string {
	s, ok := a.Dequantize(id)
	if !ok {
		panic(fmt.Sprintf("alphabet: dequantize of unassigned id %d", id))
	}
	return s
}

// Freeze stops interning: future Quantize calls for unseen symbols report
// ok=false instead of allocating a new ID. The engine freezes its alphabet
// once rule loading completes (§3 lifecycle: immutable after setup).
func (a *Alphabet) Freeze() {
	a.frozen = true
}

// Len reports how many symbols (including the six reserved operators) have
// been interned.
func (a *Alphabet) Len() int {
	return len(a.byID)
}

// IsOperatorID reports whether id is one of the six reserved structural
// operator IDs.
func IsOperatorID(id ID) bool {
	return id >= 0 && id < numOperators
}

// IsOperatorString reports whether s is exactly one of the six structural
// operator characters (unescaped).
func IsOperatorString(s string) bool {
	_, ok := reservedOperator(s)
	return ok
}
