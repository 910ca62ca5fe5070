// Package scanner implements the longest-match-at-position tokenizer every
// parser.Parser pulls tokens from: a base Scanner that yields every matched
// token verbatim (including trivia and lexical errors), a Default variant
// that filters trivia, and an Indentation variant that layers Python-style
// offside-rule Indent/Dedent synthesis on top.
package scanner

import (
	"regexp"

	"github.com/gvmlang/gvm/grammar"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/syntax"
)

// base drives the shared longest-match tokenizing loop; Default and
// Indentation wrap it with their own Next() to add filtering/synthesis.
type base struct {
	grammar  *grammar.Grammar
	buffer   string
	length   int
	position int
	loc      location.Location

	eofID   grammar.TokenID
	errorID grammar.TokenID
}

func newBase(g *grammar.Grammar, filename, content string) *base {
	return &base{
		grammar: g,
		buffer:  content,
		length:  len(content),
		loc:     location.New(filename),
		eofID:   g.EOFTokenID(),
		errorID: g.ErrorTokenID(),
	}
}

// next returns the single next raw token: the longest pattern match starting
// exactly at the current position, or a one-character <ERROR> token if none
// of the grammar's patterns match there. Once the buffer is exhausted it
// returns <EOF> forever.
func (s *base) next() syntax.Token {
	if s.position >= s.length {
		return syntax.Token{ID: s.eofID, Value: "", Location: s.loc}
	}
	return s.matchOne()
}

func (s *base) matchOne() syntax.Token {
	s.loc = s.loc.Step()

	bestEnd := -1
	var bestTok grammar.TokenID
	for _, p := range s.grammar.Patterns() {
		end, ok := matchAt(p.Pattern, s.buffer, s.position)
		if !ok {
			continue
		}
		if end > bestEnd {
			bestEnd = end
			bestTok = p.TokenID
		}
	}

	var value string
	var tokenID grammar.TokenID
	if bestEnd >= 0 {
		value = s.buffer[s.position:bestEnd]
		tokenID = bestTok
	} else {
		value = s.buffer[s.position : s.position+1]
		tokenID = s.errorID
	}

	s.position += len(value)
	loc := s.consumeLocation(value)
	return syntax.Token{ID: tokenID, Value: value, Location: loc}
}

// matchAt reports whether re matches buf starting exactly at pos (not merely
// somewhere at or after it), returning the absolute end offset of the match.
func matchAt(re *regexp.Regexp, buf string, pos int) (int, bool) {
	loc := re.FindStringIndex(buf[pos:])
	if loc == nil || loc[0] != 0 {
		return 0, false
	}
	return pos + loc[1], true
}

// consumeLocation advances s.loc past value's text, returning the span value
// itself covers. Columns count runes, not bytes, so a line containing
// multi-byte UTF-8 characters still reports correct column numbers.
func (s *base) consumeLocation(value string) location.Location {
	if value == "" {
		return s.loc
	}
	runes := []rune(value)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == '\n' {
			s.loc = s.loc.Lines(1)
		} else {
			s.loc = s.loc.Columns(1)
		}
	}
	span := s.loc
	if runes[len(runes)-1] == '\n' {
		s.loc = s.loc.Lines(1)
	} else {
		s.loc = s.loc.Columns(1)
	}
	return span
}

func tokenID(tok syntax.Token) grammar.TokenID {
	return tok.ID.(grammar.TokenID)
}

// Scanner yields every token the base tokenizer matches verbatim, trivia
// and lexical errors included.
type Scanner struct {
	*base
}

// NewScanner builds a raw Scanner over content, tokenizing against g's
// patterns.
func NewScanner(g *grammar.Grammar, filename, content string) *Scanner {
	return &Scanner{base: newBase(g, filename, content)}
}

func (s *Scanner) Next() syntax.Token { return s.next() }

// Default yields every token from the base tokenizer except ones the
// grammar marked as trivia.
type Default struct {
	*base
}

// NewDefault builds a Default scanner over content, tokenizing against g's
// patterns.
func NewDefault(g *grammar.Grammar, filename, content string) *Default {
	return &Default{base: newBase(g, filename, content)}
}

func (s *Default) Next() syntax.Token {
	for {
		tok := s.next()
		if tok.ID.ID() != s.eofID.ID() && s.grammar.Trivia(tokenID(tok)) {
			continue
		}
		return tok
	}
}

// Indentation layers Python-style offside-rule layout on top of the base
// tokenizer: newlines are collapsed to one per logical line (and suppressed
// entirely while nested inside brackets), leading whitespace on a fresh
// logical line is measured and compared against a stack of indentation
// widths, and Indent/Dedent tokens are synthesized as that stack grows or
// shrinks. Trivia is dropped, like Default.
type Indentation struct {
	*base

	newlineID    grammar.TokenID
	whitespaceID grammar.TokenID
	indentID     grammar.TokenID
	dedentID     grammar.TokenID

	indentations []int
	isNew        bool
	pending      *syntax.Token
	level        int

	queue    []syntax.Token
	finished bool
}

// NewIndentation builds an Indentation scanner over content. It registers
// the NewLine/Whitespace/Indent/Dedent tokens on g itself, so g must not
// already define conflicting tokens under those names.
func NewIndentation(g *grammar.Grammar, filename, content string) *Indentation {
	return &Indentation{
		base:         newBase(g, filename, content),
		newlineID:    mustToken(g, "NewLine"),
		whitespaceID: mustToken(g, "Whitespace"),
		indentID:     mustToken(g, "Indent"),
		dedentID:     mustToken(g, "Dedent"),
		indentations: []int{0},
		isNew:        true,
	}
}

func mustToken(g *grammar.Grammar, name string) grammar.TokenID {
	id, err := g.AddToken(name, "", false, location.Location{})
	if err != nil {
		panic(err)
	}
	return id
}

func (s *Indentation) Next() syntax.Token {
	for len(s.queue) == 0 {
		s.step()
	}
	tok := s.queue[0]
	s.queue = s.queue[1:]
	return tok
}

// step consumes exactly one raw token from base and appends zero or more
// output tokens to the queue.
func (s *Indentation) step() {
	if s.finished {
		s.queue = append(s.queue, syntax.Token{ID: s.eofID, Value: "", Location: s.loc})
		return
	}

	tok := s.next()
	tid := tokenID(tok)

	switch {
	case tid.ID() == s.newlineID.ID():
		if s.level > 0 {
			return
		}
		if !s.isNew {
			s.queue = append(s.queue, tok)
		}
		s.isNew = true

	case tid.ID() == s.whitespaceID.ID():
		if s.isNew {
			cp := tok
			s.pending = &cp
		}

	case tid.ID() == s.eofID.ID():
		loc := location.Location{Filename: tok.Location.Filename, Begin: tok.Location.End, End: tok.Location.End}
		if !s.isNew {
			s.queue = append(s.queue, syntax.Token{ID: s.newlineID, Value: "", Location: loc})
		}
		for s.indentations[len(s.indentations)-1] > 0 {
			s.queue = append(s.queue, syntax.Token{ID: s.dedentID, Value: "", Location: loc})
			s.indentations = s.indentations[:len(s.indentations)-1]
		}
		s.queue = append(s.queue, tok)
		s.finished = true

	case s.grammar.Trivia(tid):
		// dropped

	default:
		s.emitContent(tok, tid)
	}
}

func (s *Indentation) emitContent(tok syntax.Token, tid grammar.TokenID) {
	if s.isNew {
		var indent int
		var loc location.Location
		if s.pending != nil {
			indent = len(s.pending.Value)
			loc = s.pending.Location
			s.pending = nil
		} else {
			indent = 0
			loc = location.Location{Filename: tok.Location.Filename, Begin: tok.Location.Begin, End: tok.Location.Begin}
		}

		top := s.indentations[len(s.indentations)-1]
		if top < indent {
			s.queue = append(s.queue, syntax.Token{ID: s.indentID, Value: "", Location: loc})
			s.indentations = append(s.indentations, indent)
		} else {
			for s.indentations[len(s.indentations)-1] > indent {
				s.queue = append(s.queue, syntax.Token{ID: s.dedentID, Value: "", Location: loc})
				s.indentations = s.indentations[:len(s.indentations)-1]
			}
		}
	}

	s.isNew = false
	if s.grammar.IsOpenBracket(tid) {
		s.level++
	} else if s.grammar.IsCloseBracket(tid) {
		s.level--
	}
	s.queue = append(s.queue, tok)
}
