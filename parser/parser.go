// Package parser implements the hybrid Packrat/Pratt driver: a token buffer
// with a cursor, a position-keyed memo table, and the backtrack/choice
// primitives the combinator layer is built on. It knows nothing about
// combinators or grammars directly — it depends on the small Grammar and
// Table interfaces below, which grammar.Grammar and grammar.PackratTable/
// grammar.PrattTable satisfy structurally, keeping parser a leaf package.
package parser

import (
	"fmt"

	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/syntax"
)

// Table is one parselet's dispatch strategy (Packrat ordered-choice, or
// Pratt prefix/postfix precedence climbing). grammar.PackratTable and
// grammar.PrattTable implement this. Call returns either a result plus a
// soft diagnostic (the deepest error among alternatives that were tried and
// abandoned, even though this call overall succeeded), or a nil result plus
// a hard err when every alternative failed.
type Table interface {
	Call(p *Parser, priority int) (result any, soft *Error, err *Error)
}

// Grammar is the subset of grammar.Grammar the parser needs to dispatch a
// parselet reference: its table and its end-of-file token id.
type Grammar interface {
	Table(id symbol.ParseletID) Table
	EOFTokenID() symbol.TokenID
}

// Scanner is the subset of scanner.Scanner the parser pulls tokens from. The
// parser buffers tokens lazily, one at a time, exactly at the points where
// its cursor would otherwise run past the end of what it has already
// fetched.
type Scanner interface {
	Next() syntax.Token
}

type memoKey struct {
	pos      int
	parselet int
}

type memoEntry struct {
	result any
	soft   *Error
	err    *Error
	endPos int
}

// Parser drives a lazily-grown token buffer through a Grammar's parselet
// tables. It is single-use: construct a fresh Parser per call to Parse.
type Parser struct {
	scanner Scanner
	source  string
	grammar Grammar
	tokens  []syntax.Token
	pos     int
	memo    map[memoKey]memoEntry
}

// New builds a Parser pulling tokens from scanner on demand. source is the
// original text, kept only for diagnostic excerpts.
func New(scanner Scanner, source string, g Grammar) *Parser {
	p := &Parser{scanner: scanner, source: source, grammar: g, memo: make(map[memoKey]memoEntry)}
	p.tokens = append(p.tokens, scanner.Next())
	return p
}

func (p *Parser) ensure(pos int) {
	for pos >= len(p.tokens) {
		p.tokens = append(p.tokens, p.scanner.Next())
	}
}

// Source returns the original text the parser was built over.
func (p *Parser) Source() string { return p.source }

// Position returns the current cursor position in the token buffer.
func (p *Parser) Position() int { return p.pos }

// SetPosition restores the cursor, used by backtracking callers.
func (p *Parser) SetPosition(pos int) { p.pos = pos }

// Current returns the token under the cursor, pulling it from the scanner
// on first access.
func (p *Parser) Current() syntax.Token {
	p.ensure(p.pos)
	return p.tokens[p.pos]
}

// Advance returns the current token and, unless it is <EOF>, moves the
// cursor one token forward.
func (p *Parser) Advance() syntax.Token {
	tok := p.Current()
	if tok.ID.ID() != p.grammar.EOFTokenID().ID() {
		p.pos++
	}
	return tok
}

// Consume requires the current token to have identity id, advances past it,
// and returns it; otherwise it returns a one-token Error naming id as the
// sole expected token, without moving the cursor.
func (p *Parser) Consume(id symbol.TokenID) (syntax.Token, *Error) {
	if p.Current().ID.ID() != id.ID() {
		return syntax.Token{}, p.errorAt(map[symbol.TokenID]bool{id: true})
	}
	return p.Advance(), nil
}

// Match is a non-consuming equality check against the current token.
func (p *Parser) Match(id symbol.TokenID) bool {
	return p.Current().ID.ID() == id.ID()
}

func (p *Parser) errorAt(expected map[symbol.TokenID]bool) *Error {
	return &Error{
		Location: p.Current().Location,
		Actual:   p.Current(),
		Expected: expected,
	}
}

// Fail builds an Error at the current position naming expected as the
// tokens a combinator was looking for; combinators call this directly when
// they need to report failure without having attempted Consume.
func (p *Parser) Fail(expected ...symbol.TokenID) *Error {
	set := make(map[symbol.TokenID]bool, len(expected))
	for _, id := range expected {
		set[id] = true
	}
	return p.errorAt(set)
}

// Attempt is one try at producing a value: a result plus a soft diagnostic
// on success, or a hard err on failure.
type Attempt func() (result any, soft *Error, err *Error)

// Backtrack runs fn, restoring the cursor to its entry position if fn
// reports a hard error, so that a failed alternative never leaves partial
// progress behind for the next one to trip over.
func (p *Parser) Backtrack(fn Attempt) (any, *Error, *Error) {
	start := p.pos
	result, soft, err := fn()
	if err != nil {
		p.pos = start
	}
	return result, soft, err
}

// Choice tries each alternative in order inside Backtrack, returning the
// first success together with the merged deepest error among the
// alternatives abandoned before it. If every alternative fails, it returns
// the union of all alternatives' errors via Error.Merge (deepest position
// wins; ties union their expected-token sets).
func (p *Parser) Choice(alternatives ...Attempt) (any, *Error, *Error) {
	var merged *Error
	for _, alt := range alternatives {
		result, soft, err := p.Backtrack(alt)
		if err == nil {
			return result, merged.Merge(soft), nil
		}
		merged = merged.Merge(err)
	}
	return nil, nil, merged
}

// Parselet dispatches to the grammar's table for id at the given binding
// priority, memoizing strictly on (position, parselet) — not priority — so
// that the first call at a given position wins the cache regardless of
// what priority a later reference at that same position passes in. This
// matches the packrat memo a parselet reference at the same position must
// never invoke its table more than once, even across different Pratt
// binding priorities. The returned soft error is a diagnostic only; err is
// the failure signal.
func (p *Parser) Parselet(id symbol.ParseletID, priority int) (result any, soft *Error, err *Error) {
	key := memoKey{pos: p.pos, parselet: id.ID()}
	if entry, ok := p.memo[key]; ok {
		p.pos = entry.endPos
		return entry.result, entry.soft, entry.err
	}
	startPos := p.pos
	table := p.grammar.Table(id)
	if table == nil {
		err := p.Fail()
		p.memo[key] = memoEntry{err: err, endPos: startPos}
		return nil, nil, err
	}
	result, soft, err = table.Call(p, priority)
	endPos := p.pos
	if err != nil {
		endPos = startPos
		p.pos = startPos
	}
	p.memo[key] = memoEntry{result: result, soft: soft, err: err, endPos: endPos}
	return result, soft, err
}

// Parse is the top-level entry point: parse id, then require the cursor to
// land exactly on <EOF> with nothing left unconsumed. If the trailing EOF
// check fails, its error is merged with the parselet's soft diagnostic for
// a more informative message.
func (p *Parser) Parse(id symbol.ParseletID) (any, *Error) {
	result, soft, err := p.Parselet(id, 0)
	if err != nil {
		return nil, err
	}
	eof := p.grammar.EOFTokenID()
	if p.Current().ID.ID() != eof.ID() {
		return nil, soft.Merge(p.Fail(eof))
	}
	return result, nil
}

// ConsumeNothingError reports that a combinator inside a Repeat matched
// successfully but advanced the cursor by zero tokens, which would loop
// forever if repeated; Repeat's evaluator detects this case itself, but
// callers that hand-roll a loop over Parselet can use this to fail fast.
type ConsumeNothingError struct {
	Position int
}

func (e *ConsumeNothingError) Error() string {
	return fmt.Sprintf("parser: combinator consumed no input at position %d", e.Position)
}
