// Package meta implements the bootstrap meta-grammar: a small textual
// notation for combinator rule bodies (`name: Name ":" value:String`-style
// expressions) that the meta-grammar itself parses into an AST, which is
// then converted into a runtime combinator.Combinator tree against whatever
// target grammar.Grammar a host is building. Grounded on
// original/language/helpers.py's create_combinator_grammar/convert_node
// pair — the same recursive-descent-over-itself trick the original uses to
// let rule bodies be written as strings instead of nested Go constructor
// calls.
package meta

import "github.com/gvmlang/gvm/syntax"

// CombinatorNode is the AST produced by parsing a textual combinator body,
// one variant per shape the notation supports. It is a distinct interface
// from syntax.Node (even though every variant also satisfies syntax.Node)
// so that ConvertNode's switch has a closed, meta-package-local set of
// cases to exhaust; combinatorNode is unexported so no type outside this
// package can implement it.
type CombinatorNode interface {
	syntax.Node
	combinatorNode()
}

type nodeBase struct{ syntax.Base }

func (nodeBase) combinatorNode() {}

// NamedNode is `name ":" combinator` — a capture.
type NamedNode struct {
	nodeBase
	Name       string
	Combinator CombinatorNode
}

// ReferenceNode is `name` or `name "<" priority ">"` — a reference to a
// token or parselet declared in the target grammar, optionally at a
// specific Pratt binding priority. Priority is nil when the notation omits
// the `<...>` suffix.
type ReferenceNode struct {
	nodeBase
	Name     string
	Priority *syntax.Token
}

// ImplicitNode is a quoted string literal — a reference to an implicit
// (literal) token, declared in the target grammar on first use if it isn't
// already. Value is the raw quoted source text, unescaped by ConvertNode.
type ImplicitNode struct {
	nodeBase
	Value string
}

// OptionalNode is `"[" combinator_sequence "]"`.
type OptionalNode struct {
	nodeBase
	Combinator SequenceNode
}

// RepeatNode is `"{" combinator_sequence "}"`.
type RepeatNode struct {
	nodeBase
	Combinator SequenceNode
}

// SequenceNode is one or more combinators written one after another with no
// separator.
type SequenceNode struct {
	nodeBase
	Combinators []CombinatorNode
}
