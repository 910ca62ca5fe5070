package grammar

import (
	"regexp"

	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/location"
)

// SymbolID, TokenID, and ParseletID are aliases of the identity types in
// internal/symbol: grammar is their conceptual owner (§3 of the engine's
// data model), but the types themselves live one package lower so that
// parser and combinator — both of which grammar depends on — can name them
// too without importing grammar back.
type SymbolID = symbol.SymbolID
type TokenID = symbol.TokenID
type ParseletID = symbol.ParseletID

// ParseletKind distinguishes the two dispatch strategies a parselet table
// can use.
type ParseletKind int

const (
	Packrat ParseletKind = iota
	Pratt
)

func (k ParseletKind) String() string {
	if k == Pratt {
		return "pratt"
	}
	return "packrat"
}

// PriorityMax and PriorityMin bound the priority space: MAX is the default
// insertion priority for patterns and parselet rules; MIN is the default
// binding priority a Pratt table is entered at.
const (
	PriorityMax = int(^uint(0) >> 1)
	PriorityMin = 0
)

var (
	tokenNamePattern    = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	parseletNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// SyntaxPattern pairs a token identity with the compiled regex that
// recognizes it and the priority used to order it against every other
// pattern in the grammar.
type SyntaxPattern struct {
	TokenID    TokenID
	Pattern    *regexp.Regexp
	Priority   int
	Location   location.Location
	IsImplicit bool
}
