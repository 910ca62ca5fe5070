package parser

import (
	"testing"

	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/syntax"
)

func tok(name string, id int) symbol.TokenID {
	return symbol.NewToken(symbol.New(id, name, symbol.TokenKind))
}

// listScanner replays a fixed token list, then repeats its final token
// (expected to be <EOF>) forever, mimicking a scanner that has reached the
// end of its source.
type listScanner struct {
	tokens []syntax.Token
	pos    int
}

func (s *listScanner) Next() syntax.Token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

func tokens(ids ...symbol.TokenID) *listScanner {
	loc := location.New("test")
	out := make([]syntax.Token, len(ids))
	for i, id := range ids {
		out[i] = syntax.Token{ID: id, Value: id.Name(), Location: loc}
		loc = loc.Step().Columns(len(id.Name()))
	}
	return &listScanner{tokens: out}
}

type constTable struct {
	result  any
	err     *Error
	advance int
}

func (t *constTable) Call(p *Parser, priority int) (any, *Error, *Error) {
	if t.err != nil {
		return nil, nil, t.err
	}
	p.pos += t.advance
	return t.result, nil, nil
}

type fakeGrammar struct {
	tables map[int]Table
	eof    symbol.TokenID
}

func (g *fakeGrammar) Table(id symbol.ParseletID) Table { return g.tables[id.ID()] }
func (g *fakeGrammar) EOFTokenID() symbol.TokenID       { return g.eof }

func TestConsumeAdvancesOnMatch(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof})

	got, err := p.Consume(a)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.ID.Name() != "A" {
		t.Fatalf("got %v", got)
	}
	if p.Position() != 1 {
		t.Fatalf("position = %d, want 1", p.Position())
	}
}

func TestConsumeMismatchReportsExpected(t *testing.T) {
	a := tok("A", 3)
	b := tok("B", 4)
	eof := tok("<EOF>", symbol.EOFID)
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof})

	_, err := p.Consume(b)
	if err == nil {
		t.Fatalf("expected error")
	}
	if names := err.ExpectedNames(); len(names) != 1 || names[0] != "B" {
		t.Fatalf("ExpectedNames = %v", names)
	}
}

func TestBacktrackRestoresPositionOnError(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof})

	p.Consume(a)
	pos := p.Position()
	_, _, err := p.Backtrack(func() (any, *Error, *Error) {
		p.pos++
		return nil, nil, p.Fail(eof)
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if p.Position() != pos {
		t.Fatalf("position = %d, want restored %d", p.Position(), pos)
	}
}

func TestChoiceReturnsFirstSuccess(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof})

	result, _, err := p.Choice(
		func() (any, *Error, *Error) { return nil, nil, p.Fail(tok("X", 5)) },
		func() (any, *Error, *Error) { return "ok", nil, nil },
	)
	if err != nil {
		t.Fatalf("Choice: %v", err)
	}
	if result != "ok" {
		t.Fatalf("result = %v", result)
	}
}

func TestChoiceCarriesSoftErrorFromAbandonedAlternatives(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof})

	x := tok("X", 5)
	_, soft, err := p.Choice(
		func() (any, *Error, *Error) { return nil, nil, p.Fail(x) },
		func() (any, *Error, *Error) { return "ok", nil, nil },
	)
	if err != nil {
		t.Fatalf("Choice: %v", err)
	}
	if soft == nil || len(soft.ExpectedNames()) != 1 || soft.ExpectedNames()[0] != "X" {
		t.Fatalf("expected soft diagnostic naming X, got %v", soft)
	}
}

func TestChoiceMergesErrorsOnAllFailure(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof})

	x := tok("X", 5)
	y := tok("Y", 6)
	_, _, err := p.Choice(
		func() (any, *Error, *Error) { return nil, nil, p.Fail(x) },
		func() (any, *Error, *Error) { return nil, nil, p.Fail(y) },
	)
	if err == nil {
		t.Fatalf("expected merged error")
	}
	names := err.ExpectedNames()
	if len(names) != 2 || names[0] != "X" || names[1] != "Y" {
		t.Fatalf("ExpectedNames = %v", names)
	}
}

func TestParseletMemoizesByPosition(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	pid := symbol.NewParselet(symbol.New(10, "expr", symbol.ParseletKind))
	calls := 0
	table := &callCountingTable{fn: func(p *Parser, priority int) (any, *Error, *Error) {
		calls++
		p.pos++
		return "v", nil, nil
	}}
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof, tables: map[int]Table{10: table}})

	r1, _, _ := p.Parselet(pid, 0)
	p.SetPosition(0)
	r2, _, _ := p.Parselet(pid, 0)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (memoized)", calls)
	}
	if r1 != r2 {
		t.Fatalf("memoized results differ: %v vs %v", r1, r2)
	}
}

type callCountingTable struct {
	fn func(p *Parser, priority int) (any, *Error, *Error)
}

func (t *callCountingTable) Call(p *Parser, priority int) (any, *Error, *Error) { return t.fn(p, priority) }

func TestParseRequiresTrailingEOF(t *testing.T) {
	a := tok("A", 3)
	b := tok("B", 4)
	eof := tok("<EOF>", symbol.EOFID)
	pid := symbol.NewParselet(symbol.New(10, "expr", symbol.ParseletKind))
	table := &constTable{result: "v", advance: 1}
	p := New(tokens(a, b, eof), "ab", &fakeGrammar{eof: eof, tables: map[int]Table{10: table}})

	_, err := p.Parse(pid)
	if err == nil {
		t.Fatalf("expected trailing-token error")
	}
}

func TestParseSucceedsOnExactConsumption(t *testing.T) {
	a := tok("A", 3)
	eof := tok("<EOF>", symbol.EOFID)
	pid := symbol.NewParselet(symbol.New(10, "expr", symbol.ParseletKind))
	table := &constTable{result: "v", advance: 1}
	p := New(tokens(a, eof), "a", &fakeGrammar{eof: eof, tables: map[int]Table{10: table}})

	result, err := p.Parse(pid)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result != "v" {
		t.Fatalf("result = %v", result)
	}
}

func TestErrorMergeKeepsDeepestPosition(t *testing.T) {
	shallow := &Error{Location: location.New("f"), Expected: map[symbol.TokenID]bool{tok("A", 3): true}}
	deepLoc := location.New("f").Lines(1)
	deep := &Error{Location: deepLoc, Expected: map[symbol.TokenID]bool{tok("B", 4): true}}

	merged := shallow.Merge(deep)
	if !merged.Location.Equal(deepLoc) {
		t.Fatalf("Merge did not keep deepest location")
	}
	if len(merged.Expected) != 1 {
		t.Fatalf("Merge should not union across different positions")
	}
}

func TestErrorMergeUnionsAtSamePosition(t *testing.T) {
	loc := location.New("f")
	a := &Error{Location: loc, Expected: map[symbol.TokenID]bool{tok("A", 3): true}}
	b := &Error{Location: loc, Expected: map[symbol.TokenID]bool{tok("B", 4): true}}

	merged := a.Merge(b)
	if len(merged.Expected) != 2 {
		t.Fatalf("Merge should union expected sets at same position, got %d", len(merged.Expected))
	}
}

func TestErrorMergeNilIdentity(t *testing.T) {
	var nilErr *Error
	e := &Error{Location: location.New("f")}
	if nilErr.Merge(e) != e {
		t.Fatalf("nil.Merge(e) should return e")
	}
	if e.Merge(nilErr) != e {
		t.Fatalf("e.Merge(nil) should return e")
	}
}
