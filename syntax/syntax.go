// Package syntax defines the base value types that flow through the
// combinator and action layers: lexed tokens and the root of user-defined
// syntax tree node types.
package syntax

import "github.com/gvmlang/gvm/location"

// TokenID is the subset of grammar.TokenID that syntax.Token needs, kept
// here to avoid an import cycle between syntax and grammar (a token's
// description and implicit-ness live in the grammar's own tables, not in
// grammar.TokenID; the scanner and combinators only ever need to compare
// and print it).
type TokenID interface {
	ID() int
	Name() string
}

// Token is a single lexed unit of text: a token identity, the exact source
// text it covers, and its location.
type Token struct {
	ID       TokenID
	Value    string
	Location location.Location
}

func (t Token) String() string {
	return t.Value
}

// Node is the root of every user-defined syntax tree node type. Actions
// that build syntax trees return values assignable to Node; the engine
// itself never constructs concrete Node values, only combinators'
// Token/tuple results.
type Node interface {
	// SyntaxNode is a marker method distinguishing engine-produced tree
	// nodes from incidental Go values (strings, tokens, tuples) that also
	// flow through the combinator/action layer.
	SyntaxNode()
}

// Base can be embedded by concrete node types to satisfy Node without
// writing the marker method by hand.
type Base struct{}

func (Base) SyntaxNode() {}
