package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/syntax"
	"github.com/gvmlang/gvm/writer"
)

// Error is a parse-time failure: the position it was raised at, the token
// actually found there, and the set of tokens that would have been
// accepted instead. Error is a monoid under Merge with nil as the identity,
// which is what lets Choice fold together every failed alternative's error
// into one useful diagnostic.
type Error struct {
	Location location.Location
	Actual   syntax.Token
	Expected map[symbol.TokenID]bool
}

// Merge combines e and other, keeping whichever reports the deeper (later)
// position — a parse that got further is a better diagnostic than one that
// failed immediately — and unioning the expected-token sets when both sit
// at the same position. A nil receiver or argument acts as the identity.
func (e *Error) Merge(other *Error) *Error {
	if e == nil {
		return other
	}
	if other == nil {
		return e
	}
	switch {
	case other.Location.Less(e.Location):
		return e
	case e.Location.Less(other.Location):
		return other
	default:
		merged := &Error{Location: e.Location, Actual: e.Actual, Expected: make(map[symbol.TokenID]bool, len(e.Expected)+len(other.Expected))}
		for id := range e.Expected {
			merged.Expected[id] = true
		}
		for id := range other.Expected {
			merged.Expected[id] = true
		}
		return merged
	}
}

// ExpectedNames returns the expected token names in a stable, sorted order,
// suitable for rendering in a message.
func (e *Error) ExpectedNames() []string {
	names := make([]string, 0, len(e.Expected))
	for id := range e.Expected {
		names = append(names, id.Name())
	}
	sort.Strings(names)
	return names
}

func (e *Error) Error() string {
	return e.Message()
}

// Message renders a one-line diagnostic: what was found, what was wanted.
func (e *Error) Message() string {
	names := e.ExpectedNames()
	switch len(names) {
	case 0:
		return fmt.Sprintf("%s: unexpected %s %q", e.Location, e.Actual.ID.Name(), e.Actual.Value)
	case 1:
		return fmt.Sprintf("%s: expected %s, found %s %q", e.Location, names[0], e.Actual.ID.Name(), e.Actual.Value)
	default:
		return fmt.Sprintf("%s: expected one of %s, found %s %q", e.Location, strings.Join(names, ", "), e.Actual.ID.Name(), e.Actual.Value)
	}
}

// WriteExcerpt writes an annotated source excerpt to w: the offending line
// and up to two lines of context on either side, with a caret line pointing
// at the failing column, followed by the one-line message.
func (e *Error) WriteExcerpt(w writer.Writer, source string) {
	lines := strings.Split(source, "\n")
	lineIdx := e.Location.Begin.Line - 1
	first := lineIdx - 2
	if first < 0 {
		first = 0
	}
	last := lineIdx + 2
	if last >= len(lines) {
		last = len(lines) - 1
	}
	for i := first; i <= last; i++ {
		if i < 0 || i >= len(lines) {
			continue
		}
		prefix := fmt.Sprintf("%5d | ", i+1)
		w.Write(writer.Grey, prefix)
		w.Write(writer.NoColor, lines[i], "\n")
		if i == lineIdx {
			col := e.Location.Begin.Column - 1
			if col < 0 {
				col = 0
			}
			w.Write(writer.Grey, strings.Repeat(" ", len(prefix)))
			w.Write(writer.Red, strings.Repeat(" ", col)+"^", "\n")
		}
	}
	w.Write(writer.Red, e.Message(), "\n")
}
