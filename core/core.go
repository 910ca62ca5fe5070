// Package core builds a ready-made base grammar so a host doesn't have to
// start every new language from an empty grammar.Grammar: comments and
// whitespace as trivia, names, integers and floats across the usual
// literal bases, quoted strings, and the bracket-like implicit tokens
// paired up as brackets.
package core

import (
	"github.com/gvmlang/gvm/grammar"
	"github.com/gvmlang/gvm/location"
)

// Pattern sources. Go's RE2 engine doesn't support Python's `\W`/`\d`
// negated-class composition, so RE_NAME is restated as an ASCII identifier
// with optional trailing '-' segments and '?'/'!' suffixes — same shape,
// RE2-expressible character classes.
const (
	reComment    = `#[^\r\n]*`
	reWhitespace = `[ \f\t]+`
	reNewLine    = `(\r?\n)+`
	reName       = `[a-zA-Z_][a-zA-Z0-9_-]*[?!]*`

	reNumberHexadecimal = `0[xX](?:_?[0-9a-fA-F])+`
	reNumberBinary      = `0[bB](?:_?[01])+`
	reNumberOctal       = `0[oO](?:_?[0-7])+`
	reNumberDecimal     = `(?:0(?:_?0)*|[1-9](?:_?[0-9])*)`

	reExponent     = `[eE][-+]?[0-9](?:_?[0-9])*`
	reFloatPoint   = `(?:[0-9](?:_?[0-9])*\.(?:[0-9](?:_?[0-9])*)?|\.[0-9](?:_?[0-9])*)(?:` + reExponent + `)?`
	reFloatExpo    = `[0-9](?:_?[0-9])*` + reExponent
	reStringSingle = `'[^\n'\\]*(?:\\.[^\n'\\]*)*'`
	reStringDouble = `"[^\n"\\]*(?:\\.[^\n"\\]*)*"`
)

var here = location.Location{}

// Grammar builds a fresh base grammar with comments, whitespace, names,
// newlines, quoted strings, integers/floats, and bracket tokens already
// registered. Every returned error indicates a bug in this constructor
// itself (names/patterns are fixed literals), so Grammar panics rather
// than propagating a *grammar.Error a caller could never act on.
func Grammar() *grammar.Grammar {
	g := grammar.New()

	mustPattern(g, mustToken(g, "Comment"), reComment)
	mustPattern(g, mustToken(g, "Whitespace"), reWhitespace)
	mustPattern(g, mustToken(g, "Name"), reName)
	mustPattern(g, mustToken(g, "NewLine"), reNewLine)

	stringID := mustToken(g, "String")
	mustPattern(g, stringID, reStringSingle)
	mustPattern(g, stringID, reStringDouble)

	integerID := mustToken(g, "Integer")
	mustPattern(g, integerID, reNumberBinary)
	mustPattern(g, integerID, reNumberOctal)
	mustPattern(g, integerID, reNumberDecimal)
	mustPattern(g, integerID, reNumberHexadecimal)

	floatID := mustToken(g, "Float")
	mustPattern(g, floatID, reFloatPoint)
	mustPattern(g, floatID, reFloatExpo)

	lparen := mustImplicit(g, "(")
	rparen := mustImplicit(g, ")")
	lbracket := mustImplicit(g, "[")
	rbracket := mustImplicit(g, "]")
	lbrace := mustImplicit(g, "{")
	rbrace := mustImplicit(g, "}")
	mustImplicit(g, "<")
	mustImplicit(g, ">")

	g.AddTrivia(mustToken(g, "Comment"))
	g.AddTrivia(mustToken(g, "Whitespace"))

	g.AddBrackets(lparen, rparen)
	g.AddBrackets(lbracket, rbracket)
	g.AddBrackets(lbrace, rbrace)

	return g
}

func mustToken(g *grammar.Grammar, name string) grammar.TokenID {
	id, err := g.AddToken(name, "", false, here)
	if err != nil {
		panic(err)
	}
	return id
}

func mustImplicit(g *grammar.Grammar, literal string) grammar.TokenID {
	id, err := g.AddImplicit(literal, here)
	if err != nil {
		panic(err)
	}
	return id
}

func mustPattern(g *grammar.Grammar, tok grammar.TokenID, pattern string) {
	if _, err := g.AddPattern(tok, pattern, grammar.PriorityMax, false, here); err != nil {
		panic(err)
	}
}
