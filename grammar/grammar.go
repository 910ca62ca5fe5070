// Package grammar assembles tokens, syntax patterns, and parselet rules into
// a single registry: the runtime structure a scanner tokenizes against and a
// parser.Parser dispatches through. Grammar.Table and Grammar.EOFTokenID
// satisfy parser.Grammar structurally, so parser never imports this package.
package grammar

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/gvmlang/gvm/action"
	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/parser"
	"github.com/gvmlang/gvm/syntax"
	"github.com/gvmlang/gvm/typing"
)

// syntaxNodeType is the default declared result type for a parselet that
// doesn't name one explicitly: any concrete syntax.Node.
var syntaxNodeType = typing.OfType(reflect.TypeOf((*syntax.Node)(nil)).Elem())

type tokenInfo struct {
	description string
	isImplicit  bool
}

type parseletInfo struct {
	kind       ParseletKind
	resultType typing.Type
}

// table is the internal registration surface a Grammar drives; PackratTable
// and PrattTable both implement it in addition to parser.Table.
type table interface {
	parser.Table
	register(id ParseletID, c combinator.Combinator, ps *Parselet) *Error
}

func (t *PackratTable) register(_ ParseletID, _ combinator.Combinator, ps *Parselet) *Error {
	t.AddParser(ps)
	return nil
}

func (t *PrattTable) register(id ParseletID, c combinator.Combinator, ps *Parselet) *Error {
	return t.AddParser(id, c, ps)
}

// Grammar is the mutable registry of tokens, patterns, trivia, brackets, and
// parselet tables that make up one grammar.
type Grammar struct {
	// ID distinguishes one Grammar instance from another (e.g. in logs); it
	// plays no part in any lookup or invariant, and the printer does not
	// write it.
	ID uuid.UUID

	nextID int

	symbols   map[string]bool
	tokens    map[string]TokenID
	tokenMeta map[int]tokenInfo

	parselets     map[string]ParseletID
	parseletMeta  map[int]parseletInfo
	tables        map[int]table
	parseletOrder []ParseletID

	patterns []SyntaxPattern

	trivia       map[int]bool
	brackets     map[[2]int]bool
	openBrackets map[int]bool
	closeBracket map[int]bool
	bracketPairs map[int]TokenID

	eof   TokenID
	error TokenID
}

// New builds an empty Grammar, pre-registering the reserved <EOF> and
// <ERROR> tokens at ids 1 and 2.
func New() *Grammar {
	g := &Grammar{
		ID:           uuid.New(),
		symbols:      make(map[string]bool),
		tokens:       make(map[string]TokenID),
		tokenMeta:    make(map[int]tokenInfo),
		parselets:    make(map[string]ParseletID),
		parseletMeta: make(map[int]parseletInfo),
		tables:       make(map[int]table),
		trivia:       make(map[int]bool),
		brackets:     make(map[[2]int]bool),
		openBrackets: make(map[int]bool),
		closeBracket: make(map[int]bool),
		bracketPairs: make(map[int]TokenID),
	}
	g.eof, _ = g.AddToken("<EOF>", "end of file", true, location.Location{})
	g.error, _ = g.AddToken("<ERROR>", "error token", true, location.Location{})
	return g
}

// Tokens returns every registered token, in registration order.
func (g *Grammar) Tokens() []TokenID {
	out := make([]TokenID, 0, len(g.tokens))
	for _, id := range g.tokens {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Parselets returns every registered parselet id, in registration order.
func (g *Grammar) Parselets() []ParseletID { return append([]ParseletID(nil), g.parseletOrder...) }

// Patterns returns the registered syntax patterns, priority-ordered.
func (g *Grammar) Patterns() []SyntaxPattern { return g.patterns }

// Trivia reports whether tok is marked as trivia (dropped by DefaultScanner).
func (g *Grammar) Trivia(tok TokenID) bool { return g.trivia[tok.ID()] }

// IsOpenBracket and IsCloseBracket report bracket membership, and
// CloseFor looks up the matching close token for an open one, for the
// IndentationScanner's bracket-depth tracking.
func (g *Grammar) IsOpenBracket(tok TokenID) bool  { return g.openBrackets[tok.ID()] }
func (g *Grammar) IsCloseBracket(tok TokenID) bool { return g.closeBracket[tok.ID()] }
func (g *Grammar) CloseFor(open TokenID) (TokenID, bool) {
	id, ok := g.bracketPairs[open.ID()]
	return id, ok
}

// EOFTokenID and ErrorTokenID return the grammar's reserved tokens.
func (g *Grammar) EOFTokenID() symbol.TokenID { return g.eof }
func (g *Grammar) ErrorTokenID() TokenID      { return g.error }

// LookupToken and LookupParselet resolve a declared name back to its id,
// the two maps meta's node-to-combinator conversion needs to tell a bare
// name reference (`Name`, a token) from a self/sibling reference (`expr`, a
// parselet) the way the original's convert_node inspects
// `grammar.tokens`/`grammar.parselets` directly.
func (g *Grammar) LookupToken(name string) (TokenID, bool) {
	id, ok := g.tokens[name]
	return id, ok
}

func (g *Grammar) LookupParselet(name string) (ParseletID, bool) {
	id, ok := g.parselets[name]
	return id, ok
}

// ParseletResultType returns id's declared result type, the value meta's
// ConvertNode supplies to combinator.NewParselet when building a reference
// to an already-declared parselet (the constructor needs it up front; it
// has no way to look the owning grammar back up itself).
func (g *Grammar) ParseletResultType(id ParseletID) typing.Type {
	return g.parseletMeta[id.ID()].resultType
}

// Table returns the parselet table registered for id, or nil if id names no
// parselet in this grammar (parser.Parselet treats that as a hard failure).
func (g *Grammar) Table(id symbol.ParseletID) parser.Table {
	t, ok := g.tables[id.ID()]
	if !ok {
		return nil
	}
	return t
}

func (g *Grammar) allocate(name string, kind symbol.Kind) symbol.SymbolID {
	g.nextID++
	return symbol.New(g.nextID, name, kind)
}

// AddToken registers a token name, or returns the existing TokenID if name
// was already registered as a token (idempotent re-registration, §4.E).
// description defaults to a lower-cased, space-separated rendering of name
// when empty and the token isn't implicit.
func (g *Grammar) AddToken(name, description string, isImplicit bool, loc location.Location) (TokenID, *Error) {
	if existing, ok := g.tokens[name]; ok {
		return existing, nil
	}
	if !isImplicit && !tokenNamePattern.MatchString(name) {
		return TokenID{}, errorf(loc, "symbol id for token must match %s", tokenNamePattern.String())
	}
	if g.symbols[name] {
		return TokenID{}, errorf(loc, "already registered symbol id: %s", name)
	}
	if description == "" {
		if isImplicit {
			description = name
		} else {
			description = camelToWords(name)
		}
	}
	id := symbol.NewToken(g.allocate(name, symbol.TokenKind))
	g.symbols[name] = true
	g.tokens[name] = id
	g.tokenMeta[id.ID()] = tokenInfo{description: description, isImplicit: isImplicit}
	return id, nil
}

// AddPattern registers a recognition pattern for an already-declared token,
// keeping the pattern list sorted by ascending priority (lower priority
// patterns are tried first, matching PRIORITY_MIN .. PRIORITY_MAX order).
func (g *Grammar) AddPattern(tok TokenID, pattern string, priority int, isImplicit bool, loc location.Location) (TokenID, *Error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return TokenID{}, errorf(loc, "invalid pattern for token %s: %v", tok.Name(), err)
	}
	sp := SyntaxPattern{TokenID: tok, Pattern: re, Priority: priority, Location: loc, IsImplicit: isImplicit}
	i := sort.Search(len(g.patterns), func(i int) bool { return g.patterns[i].Priority > priority })
	g.patterns = append(g.patterns, SyntaxPattern{})
	copy(g.patterns[i+1:], g.patterns[i:])
	g.patterns[i] = sp
	return tok, nil
}

// AddImplicit registers a fixed-text token (a keyword or punctuation
// literal): the token's own name is the literal text, and its priority is
// -len(literal) so that longer literals are preferred over shorter ones that
// are prefixes of them (e.g. "==" before "=").
func (g *Grammar) AddImplicit(literal string, loc location.Location) (TokenID, *Error) {
	tok, err := g.AddToken(literal, "", true, loc)
	if err != nil {
		return TokenID{}, err
	}
	return g.AddPattern(tok, regexp.QuoteMeta(literal), -len(literal), true, loc)
}

// AddTrivia marks tok as trivia: DefaultScanner drops it from the token
// stream a parser ever sees.
func (g *Grammar) AddTrivia(tok TokenID) { g.trivia[tok.ID()] = true }

// AddBrackets registers an open/close token pair the IndentationScanner uses
// to suppress offside-rule layout tokens while nested inside them.
func (g *Grammar) AddBrackets(open, closeTok TokenID) {
	g.brackets[[2]int{open.ID(), closeTok.ID()}] = true
	g.openBrackets[open.ID()] = true
	g.closeBracket[closeTok.ID()] = true
	g.bracketPairs[open.ID()] = closeTok
}

// AddParselet declares a parselet name, or returns the existing ParseletID if
// name was already declared with the same kind and result type (idempotent
// re-registration, §4.E); declaring it again with a different kind or result
// type is a grammar error.
func (g *Grammar) AddParselet(name string, kind ParseletKind, resultType typing.Type, loc location.Location) (ParseletID, *Error) {
	if resultType.Elem() == nil {
		resultType = syntaxNodeType
	}
	if !parseletNamePattern.MatchString(name) {
		return ParseletID{}, errorf(loc, "symbol id for parselet must match %s", parseletNamePattern.String())
	}
	if existing, ok := g.parselets[name]; ok {
		meta := g.parseletMeta[existing.ID()]
		if meta.kind != kind {
			return ParseletID{}, errorf(loc, "cannot define parser %s with different kind", name)
		}
		if !meta.resultType.Equal(resultType) {
			return ParseletID{}, errorf(loc, "cannot define parser %s with different return type", name)
		}
		return existing, nil
	}
	if g.symbols[name] {
		return ParseletID{}, errorf(loc, "already registered symbol id: %s", name)
	}

	id := symbol.NewParselet(g.allocate(name, symbol.ParseletKind))
	g.symbols[name] = true
	g.parselets[name] = id
	g.parseletOrder = append(g.parseletOrder, id)
	g.parseletMeta[id.ID()] = parseletInfo{kind: kind, resultType: resultType}

	if kind == Packrat {
		g.tables[id.ID()] = NewPackratTable()
	} else {
		g.tables[id.ID()] = NewPrattTable()
	}
	return id, nil
}

// AddParser registers one alternative of an already-declared parselet: a
// combinator tree plus an action generator, at the given priority
// (PriorityMax by default orders a rule last among equal-priority peers).
// The action's result type must be a subtype of the parselet's declared
// result type.
func (g *Grammar) AddParser(id ParseletID, c combinator.Combinator, gen action.Generator, priority int, loc location.Location) (*Parselet, *Error) {
	if gen == nil {
		gen = action.MakeReturnResult()
	}
	act := gen(c)

	meta, ok := g.parseletMeta[id.ID()]
	if !ok {
		return nil, errorf(loc, "add_parser: unknown parselet %s", id.Name())
	}
	if !act.ResultType().IsSubtype(meta.resultType) {
		return nil, errorf(loc, "cannot add parser to %s because return types differ: %s and %s",
			id.Name(), act.ResultType(), meta.resultType)
	}

	ps := NewParselet(id, c, act, priority, loc)
	if err := g.tables[id.ID()].register(id, c, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Declare is the convenience path that mirrors add_parser(name, ...) in the
// original: it declares the parselet with the action's result type and
// registers the rule in one call. If the parselet already exists, its kind
// and result type must equal kind and the action's result type, or
// AddParselet's error is returned.
func (g *Grammar) Declare(name string, kind ParseletKind, c combinator.Combinator, gen action.Generator, priority int, loc location.Location) (*Parselet, *Error) {
	if gen == nil {
		gen = action.MakeReturnResult()
	}
	resultType := gen(c).ResultType()
	id, err := g.AddParselet(name, kind, resultType, loc)
	if err != nil {
		return nil, err
	}
	return g.AddParser(id, c, gen, priority, loc)
}

// Extend copies every token, pattern, trivia marker, bracket pair, parselet
// declaration, and registered rule from other into g, allocating fresh ids
// in g's symbol space and rewriting every combinator's embedded ids to
// match (§4.E).
func (g *Grammar) Extend(other *Grammar, loc location.Location) *Error {
	tokenMap := make(map[int]TokenID)
	parseletMap := make(map[int]ParseletID)

	for _, tok := range other.Tokens() {
		meta := other.tokenMeta[tok.ID()]
		id, err := g.AddToken(tok.Name(), meta.description, meta.isImplicit, loc)
		if err != nil {
			return err
		}
		tokenMap[tok.ID()] = id
	}

	for _, ps := range other.Parselets() {
		meta := other.parseletMeta[ps.ID()]
		id, err := g.AddParselet(ps.Name(), meta.kind, meta.resultType, loc)
		if err != nil {
			return err
		}
		parseletMap[ps.ID()] = id
	}

	for tok := range other.trivia {
		g.AddTrivia(tokenMap[tok])
	}
	for pair := range other.brackets {
		g.AddBrackets(tokenMap[pair[0]], tokenMap[pair[1]])
	}

	remapToken := func(id symbol.TokenID) symbol.TokenID { return tokenMap[id.ID()] }
	remapParselet := func(id symbol.ParseletID) symbol.ParseletID { return parseletMap[id.ID()] }

	for _, sp := range other.patterns {
		if _, err := g.AddPattern(tokenMap[sp.TokenID.ID()], sp.Pattern.String(), sp.Priority, sp.IsImplicit, sp.Location); err != nil {
			return err
		}
	}

	for _, oldID := range other.Parselets() {
		newID := parseletMap[oldID.ID()]
		oldTable := other.tables[oldID.ID()]
		for _, ps := range parseletsOf(oldTable) {
			cloned := ps.Combinator.Clone(remapToken, remapParselet)
			if _, err := g.AddParser(newID, cloned, fixedAction(ps.Action), ps.Priority, ps.Location); err != nil {
				return err
			}
		}
	}
	return nil
}

// Merge builds a fresh Grammar by extending an empty one with every grammar
// given, in order.
func Merge(loc location.Location, grammars ...*Grammar) (*Grammar, *Error) {
	result := New()
	for _, g := range grammars {
		if err := result.Extend(g, loc); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// parseletsOf returns a table's registered parselets regardless of its kind.
func parseletsOf(t table) []*Parselet {
	switch tt := t.(type) {
	case *PackratTable:
		return tt.Parselets()
	case *PrattTable:
		return tt.Parselets()
	default:
		return nil
	}
}

// fixedAction wraps an already-built Action in a Generator that ignores its
// combinator argument, used when re-registering a cloned rule whose action
// was already resolved in the source grammar.
func fixedAction(act action.Action) action.Generator {
	return func(combinator.Combinator) action.Action { return act }
}

// camelToWords renders a PascalCase token name ("OpenParen") as a
// lower-cased, space-separated description ("open paren").
func camelToWords(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
