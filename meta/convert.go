package meta

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/grammar"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/parser"
	"github.com/gvmlang/gvm/scanner"
)

// Parse runs content through the bootstrap meta-grammar and returns the
// resulting combinator AST, a SequenceNode even when content names a single
// combinator (the `combinator_sequence` parselet is always the entry
// point). Mirrors helpers.py's parse_combinator.
func Parse(content string) (SequenceNode, *parser.Error) {
	g := Grammar()
	sc := scanner.NewDefault(g, "<combinator>", content)
	p := parser.New(sc, content, g)
	seqID, _ := g.LookupParselet("combinator_sequence")
	result, err := p.Parse(seqID)
	if err != nil {
		return SequenceNode{}, err
	}
	return result.(SequenceNode), nil
}

// ConvertNode walks a CombinatorNode AST, resolving every ReferenceNode
// against target's declared tokens and parselets and registering every
// ImplicitNode's literal on target on first use, to build a
// combinator.Combinator tree target's own grammar rules can use. Mirrors
// helpers.py's convert_node.
func ConvertNode(target *grammar.Grammar, node CombinatorNode, loc location.Location) (combinator.Combinator, *grammar.Error) {
	switch n := node.(type) {
	case SequenceNode:
		children := make([]combinator.Combinator, len(n.Combinators))
		for i, child := range n.Combinators {
			c, err := ConvertNode(target, child, loc)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return combinator.NewSequence(children...), nil

	case RepeatNode:
		inner, err := ConvertNode(target, n.Combinator, loc)
		if err != nil {
			return nil, err
		}
		return combinator.NewRepeat(inner), nil

	case OptionalNode:
		inner, err := ConvertNode(target, n.Combinator, loc)
		if err != nil {
			return nil, err
		}
		return combinator.NewOptional(inner), nil

	case NamedNode:
		inner, err := ConvertNode(target, n.Combinator, loc)
		if err != nil {
			return nil, err
		}
		return combinator.NewNamed(n.Name, inner), nil

	case ImplicitNode:
		literal, uerr := unquoteLiteral(n.Value)
		if uerr != nil {
			return nil, &grammar.Error{Location: loc, Message: uerr.Error()}
		}
		tok, err := target.AddImplicit(literal, loc)
		if err != nil {
			return nil, err
		}
		return combinator.NewToken(tok), nil

	case ReferenceNode:
		if tok, ok := target.LookupToken(n.Name); ok {
			if n.Priority != nil {
				return nil, &grammar.Error{Location: loc, Message: "token combinator can not have priority: " + n.Name}
			}
			return combinator.NewToken(tok), nil
		}
		if id, ok := target.LookupParselet(n.Name); ok {
			var priority *int
			if n.Priority != nil {
				v, perr := strconv.Atoi(n.Priority.Value)
				if perr != nil {
					return nil, &grammar.Error{Location: loc, Message: "invalid priority for " + n.Name + ": " + perr.Error()}
				}
				priority = &v
			}
			return combinator.NewParselet(id, priority, target.ParseletResultType(id)), nil
		}
		return nil, &grammar.Error{Location: loc, Message: "not found symbol " + n.Name + " in grammar"}

	default:
		return nil, &grammar.Error{Location: loc, Message: "meta: no conversion for combinator node"}
	}
}

// MakeCombinator parses content and converts it in one step, the
// convenience entry point hosts call when declaring a rule, mirroring
// helpers.py's make_combinator.
func MakeCombinator(target *grammar.Grammar, content string, loc location.Location) (combinator.Combinator, *parser.Error, *grammar.Error) {
	seq, perr := Parse(content)
	if perr != nil {
		return nil, perr, nil
	}
	c, gerr := ConvertNode(target, seq, loc)
	return c, nil, gerr
}

// unquoteLiteral strips a quoted string token's surrounding quote (either
// ' or ") and resolves backslash escapes one character at a time. This is
// deliberately narrower than Python's ast.literal_eval (which convert_node
// uses): it does not interpret numeric escapes, only "the character after a
// backslash is taken literally", which is all the implicit-token literals
// this notation ever needs to round-trip (punctuation and keywords).
func unquoteLiteral(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != raw[len(raw)-1] || (raw[0] != '\'' && raw[0] != '"') {
		return "", fmt.Errorf("meta: malformed string literal %q", raw)
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String(), nil
}
