// Package printer renders grammars, patterns, parselets, combinator trees,
// and inferred types as human-readable text. It is the engine's only
// human-facing package: grammar, parser, and combinator never import it,
// matching the original's own layering (gvm.language.printer depends on
// gvm.language and gvm.writers, never the reverse).
package printer

import (
	"fmt"
	"strings"

	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/grammar"
	"github.com/gvmlang/gvm/typing"
	"github.com/gvmlang/gvm/writer"
)

// DumpPattern writes "<Token> ::= r"<pattern>"" to w.
func DumpPattern(w writer.Writer, pattern grammar.SyntaxPattern) {
	DumpTokenID(w, pattern.TokenID)
	w.Write(writer.NoColor, " ::= ")
	w.Write(writer.Magenta, `r"`, pattern.Pattern.String(), `"`)
}

// DumpGrammar writes every non-implicit pattern, then every registered
// parselet of every declared parselet, one per line, in the grammar's own
// declaration order.
func DumpGrammar(w writer.Writer, g *grammar.Grammar) {
	for _, pattern := range g.Patterns() {
		if pattern.IsImplicit {
			continue
		}
		DumpPattern(w, pattern)
		w.Write(writer.NoColor, "\n")
	}

	for _, id := range g.Parselets() {
		table := g.Table(id)
		for _, ps := range parseletsOf(table) {
			DumpParselet(w, ps)
			w.Write(writer.NoColor, "\n")
		}
	}
}

// parseletsOf returns a table's registered parselets regardless of its kind,
// mirroring grammar.parseletsOf (unexported there, so printer keeps its own
// copy rather than reaching across the package boundary for it).
func parseletsOf(t any) []*grammar.Parselet {
	switch tt := t.(type) {
	case *grammar.PackratTable:
		return tt.Parselets()
	case *grammar.PrattTable:
		return tt.Parselets()
	default:
		return nil
	}
}

// DumpTokenID writes a token's name, quoted if it is implicit (a literal or
// reserved token whose name is the literal text itself, e.g. "+" or "<EOF>").
func DumpTokenID(w writer.Writer, id grammar.TokenID) {
	if isImplicitToken(id) {
		w.Write(writer.Red, fmt.Sprintf("%q", id.Name()))
		return
	}
	w.Write(writer.Red, id.Name())
}

// isImplicitToken reports whether id's name reads as a literal rather than a
// declared identifier (no grammar.TokenID accessor exposes is_implicit
// directly, so this mirrors the token name patterns grammar.AddToken itself
// enforces: a declared token name always matches tokenNamePattern,
// ^[A-Z][a-zA-Z0-9]*$; anything else — punctuation, <EOF>, <ERROR> — was
// registered implicit).
func isImplicitToken(id grammar.TokenID) bool {
	name := id.Name()
	if name == "" {
		return true
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return true
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

// DumpParseletID writes a parselet's name.
func DumpParseletID(w writer.Writer, id grammar.ParseletID) {
	w.Write(writer.Blue, id.Name())
}

// DumpParselet writes "name := <combinator> -> <type>".
func DumpParselet(w writer.Writer, ps *grammar.Parselet) {
	DumpParseletID(w, ps.ID)
	w.Write(writer.NoColor, " := ")
	DumpCombinator(w, ps.Combinator)
	w.Write(writer.NoColor, " -> ")
	DumpType(w, ps.ResultType())
}

// DumpCombinator dispatches on the seven concrete combinator.Combinator cases,
// mirroring printer.py's @multimethod-dispatched dump_combinator family.
// A combinator type the printer doesn't know about is a programmer error,
// not a data error, so it panics rather than returning one.
func DumpCombinator(w writer.Writer, c combinator.Combinator) {
	switch cc := c.(type) {
	case *combinator.Token:
		DumpTokenID(w, cc.ID)
	case *combinator.Parselet:
		DumpParseletID(w, cc.ID)
		if cc.Priority != nil && *cc.Priority != 0 {
			w.Write(writer.NoColor, "<")
			w.Write(writer.Grey, fmt.Sprintf("%d", *cc.Priority))
			w.Write(writer.NoColor, ">")
		}
	case *combinator.Named:
		w.Write(writer.Grey, cc.Name)
		w.Write(writer.NoColor, ":")
		if _, ok := cc.Inner.(*combinator.Sequence); ok {
			w.Write(writer.NoColor, "( ")
			DumpCombinator(w, cc.Inner)
			w.Write(writer.NoColor, " )")
		} else {
			DumpCombinator(w, cc.Inner)
		}
	case *combinator.Optional:
		w.Write(writer.NoColor, "[ ")
		DumpCombinator(w, cc.Inner)
		w.Write(writer.NoColor, " ]")
	case *combinator.Repeat:
		w.Write(writer.NoColor, "{ ")
		DumpCombinator(w, cc.Inner)
		w.Write(writer.NoColor, " }")
	case *combinator.Postfix:
		dumpSequence(w, cc.Children)
	case *combinator.Sequence:
		dumpSequence(w, cc.Children)
	default:
		panic(fmt.Sprintf("printer: no dump_combinator case for %T", c))
	}
}

func dumpSequence(w writer.Writer, children []combinator.Combinator) {
	for i, child := range children {
		if i > 0 {
			w.Write(writer.NoColor, " ")
		}
		DumpCombinator(w, child)
	}
}

// DumpType writes a typing.Type as "Optional[T]", "Sequence[T]", or the bare
// scalar Go type name, per printer.py's dump_type (which additionally
// branches on is_generic_type for Python's own parametrized containers; the
// Go type algebra has no third shape, so that branch has no counterpart
// here).
func DumpType(w writer.Writer, t typing.Type) {
	switch t.Kind() {
	case typing.Optional:
		w.Write(writer.Green, "Optional")
		w.Write(writer.NoColor, "[")
		DumpType(w, typing.Unpack(t))
		w.Write(writer.NoColor, "]")
	case typing.Sequence:
		w.Write(writer.Green, "Sequence")
		w.Write(writer.NoColor, "[")
		DumpType(w, typing.Unpack(t))
		w.Write(writer.NoColor, "]")
	default:
		w.Write(writer.Green, scalarName(t))
	}
}

// scalarName renders a scalar Type's Go type name, stripping a leading "*"
// and package qualifier the way printer.py's typ.__name__ strips a module
// path: callers want "Token", not "*syntax.Token".
func scalarName(t typing.Type) string {
	elem := t.Elem()
	if elem == nil {
		return "<nil>"
	}
	name := elem.String()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimPrefix(name, "*")
}

// ToString renders a pattern/grammar/parselet/combinator/type dump as a
// plain string, the way printer.py's dumper decorator attaches a to_string
// helper to every dump_* function by wrapping it over a StringIO.
func ToString(dump func(writer.Writer)) string {
	var b strings.Builder
	dump(plainWriter{&b})
	return b.String()
}

// plainWriter discards color, used by ToString so callers get undecorated
// text regardless of what writer.New would choose for os.Stdout.
type plainWriter struct {
	b *strings.Builder
}

func (w plainWriter) Write(_ writer.Color, fragments ...string) {
	for _, f := range fragments {
		w.b.WriteString(f)
	}
}
