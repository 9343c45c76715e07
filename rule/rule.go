// Package rule implements the rule front-end: loading "HEAD := tok tok tok"
// rule files into RawRule values, inlining rule-head references, and
// quantizing the result into QuantizedRule values the Thompson constructor
// consumes.
package rule

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/kallegustafsson/tnfa/alphabet"
)

// logger reports non-fatal rule-file diagnostics, prefixed the way the
// teacher's nex/parser/program.go prefixes its own parse logger.
var logger = log.New(os.Stderr, "[rule] ", log.LstdFlags|log.Lshortfile)

// RawRule is one parsed rule-file line: a head name plus its ordered body
// tokens, all still plain strings.
type RawRule struct {
	Head   string
	Tokens []string
}

// Load reads a rule file from r. Each non-blank line is split on ":="
// exactly once; the trimmed left side is the head, the trimmed right side is
// split on whitespace into tokens. A line whose split does not produce a
// nonempty head and a nonempty body is skipped and logged at a debug-ish
// level through logger, matching §7's "malformed rule line" policy.
//
// If the same head is defined more than once, the later definition replaces
// the earlier one in place — the rule keeps its original priority slot (the
// position of its first occurrence) but the later body wins. This is the
// documented resolution of the "duplicate rule heads" open question in
// SPEC_FULL.md §9.FULL.
func Load(r io.Reader) ([]RawRule, error) {
	var rules []RawRule
	index := make(map[string]int)
	skipped := 0

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		head, body, ok := splitRule(line)
		if !ok {
			skipped++
			logger.Printf("skipping malformed rule line %d: %q", lineno, line)
			continue
		}
		tokens := strings.Fields(body)
		if i, seen := index[head]; seen {
			rules[i].Tokens = tokens
			continue
		}
		index[head] = len(rules)
		rules = append(rules, RawRule{Head: head, Tokens: tokens})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("rule: read: %w", err)
	}
	if skipped > 0 {
		logger.Printf("skipped %d malformed rule line(s)", skipped)
	}
	return rules, nil
}

func splitRule(line string) (head, body string, ok bool) {
	parts := strings.SplitN(line, ":=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	head = strings.TrimSpace(parts[0])
	body = strings.TrimSpace(parts[1])
	if head == "" || body == "" {
		return "", "", false
	}
	return head, body, true
}

// QuantizedRule is a RawRule with every token replaced by its alphabet ID.
// Escape forms have already been resolved to the literal character's ID;
// structural-operator tokens remain at their reserved IDs.
type QuantizedRule struct {
	Head     alphabet.ID
	HeadName string
	Tokens   []alphabet.ID
}

// Expand inlines rule-head references: any multi-character token naming
// another rule's head is recursively replaced by that rule's own token list
// (a single-character token is always a literal, even if some rule has that
// character as its head), so the Thompson
// constructor only ever sees single-character literals, escape forms and
// structural operators (§4.3's construction base case requires this — a
// rule-head reference cannot otherwise be consumed from a one-rune-at-a-time
// input stream). A head may only reference rules textually; a reference
// cycle is a fatal construction error.
func Expand(raw []RawRule) ([]RawRule, error) {
	byHead := make(map[string][]string, len(raw))
	for _, r := range raw {
		byHead[r.Head] = r.Tokens
	}

	expanded := make([]RawRule, len(raw))
	cache := make(map[string][]string, len(raw))
	for i, r := range raw {
		tokens, err := expandTokens(r.Head, r.Tokens, byHead, cache, nil)
		if err != nil {
			return nil, err
		}
		expanded[i] = RawRule{Head: r.Head, Tokens: tokens}
	}
	return expanded, nil
}

func expandTokens(owner string, tokens []string, byHead map[string][]string, cache map[string][]string, stack []string) ([]string, error) {
	var out []string
	for _, tok := range tokens {
		if alphabet.IsOperatorString(tok) || isEscapeForm(tok) || len([]rune(tok)) == 1 {
			out = append(out, tok)
			continue
		}
		refBody, isRef := byHead[tok]
		if !isRef {
			// Not a known rule head: treat as an ordinary multi-character
			// literal token (interned whole by the alphabet).
			out = append(out, tok)
			continue
		}
		if cached, ok := cache[tok]; ok {
			out = append(out, cached...)
			continue
		}
		for _, onStack := range stack {
			if onStack == tok {
				return nil, fmt.Errorf("rule: cyclic head reference through %q", tok)
			}
		}
		sub, err := expandTokens(tok, refBody, byHead, cache, append(stack, owner))
		if err != nil {
			return nil, err
		}
		cache[tok] = sub
		out = append(out, sub...)
	}
	return out, nil
}

func isEscapeForm(tok string) bool {
	return strings.HasPrefix(tok, "<:") && strings.HasSuffix(tok, ":>")
}

// Quantize converts raw (already-expanded) rules into QuantizedRule values,
// interning every token through a. Rule-insertion order is preserved: the
// i-th returned rule has priority i.
func Quantize(raw []RawRule, a *alphabet.Alphabet) ([]QuantizedRule, error) {
	out := make([]QuantizedRule, 0, len(raw))
	for _, r := range raw {
		headID, _ := a.Quantize(r.Head, false)
		tokens := make([]alphabet.ID, 0, len(r.Tokens))
		for _, tok := range r.Tokens {
			id, ok := a.Quantize(tok, true)
			if !ok {
				return nil, fmt.Errorf("rule: unknown symbol %q in rule %q", tok, r.Head)
			}
			tokens = append(tokens, id)
		}
		out = append(out, QuantizedRule{Head: headID, HeadName: r.Head, Tokens: tokens})
	}
	return out, nil
}
