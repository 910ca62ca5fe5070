package meta

import (
	"testing"

	"github.com/gvmlang/gvm/grammar"
	"github.com/gvmlang/gvm/location"
)

var here = location.Location{}

func TestParseReferenceNode(t *testing.T) {
	seq, err := Parse(`lhs`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(seq.Combinators) != 1 {
		t.Fatalf("Combinators = %+v, want 1 element", seq.Combinators)
	}
	ref, ok := seq.Combinators[0].(ReferenceNode)
	if !ok {
		t.Fatalf("Combinators[0] = %T, want ReferenceNode", seq.Combinators[0])
	}
	if ref.Name != "lhs" || ref.Priority != nil {
		t.Fatalf("ref = %+v", ref)
	}
}

func TestParseReferenceWithPriority(t *testing.T) {
	seq, err := Parse(`expr<600>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ref := seq.Combinators[0].(ReferenceNode)
	if ref.Name != "expr" {
		t.Fatalf("ref.Name = %q", ref.Name)
	}
	if ref.Priority == nil || ref.Priority.Value != "600" {
		t.Fatalf("ref.Priority = %+v", ref.Priority)
	}
}

func TestParseNamedAndImplicitAndSequence(t *testing.T) {
	seq, err := Parse(`lhs:Name "+" rhs:Name`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(seq.Combinators) != 3 {
		t.Fatalf("Combinators = %+v, want 3 elements", seq.Combinators)
	}
	lhs, ok := seq.Combinators[0].(NamedNode)
	if !ok || lhs.Name != "lhs" {
		t.Fatalf("Combinators[0] = %+v", seq.Combinators[0])
	}
	if _, ok := lhs.Combinator.(ReferenceNode); !ok {
		t.Fatalf("lhs.Combinator = %T, want ReferenceNode", lhs.Combinator)
	}
	implicit, ok := seq.Combinators[1].(ImplicitNode)
	if !ok || implicit.Value != `"+"` {
		t.Fatalf("Combinators[1] = %+v", seq.Combinators[1])
	}
}

func TestParseOptionalAndRepeat(t *testing.T) {
	seq, err := Parse(`[ Name ] { Name }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(seq.Combinators) != 2 {
		t.Fatalf("Combinators = %+v, want 2 elements", seq.Combinators)
	}
	if _, ok := seq.Combinators[0].(OptionalNode); !ok {
		t.Fatalf("Combinators[0] = %T, want OptionalNode", seq.Combinators[0])
	}
	if _, ok := seq.Combinators[1].(RepeatNode); !ok {
		t.Fatalf("Combinators[1] = %T, want RepeatNode", seq.Combinators[1])
	}
}

func TestConvertNodeBuildsWorkingCombinator(t *testing.T) {
	target := grammar.New()
	name, _ := target.AddToken("Name", "", false, here)
	target.AddPattern(name, `[a-zA-Z]+`, grammar.PriorityMax, false, here)

	seq, err := Parse(`lhs:Name "+" rhs:Name`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, gerr := ConvertNode(target, seq, here)
	if gerr != nil {
		t.Fatalf("ConvertNode: %v", gerr)
	}
	vars := c.Variables()
	if _, ok := vars["lhs"]; !ok {
		t.Fatalf("converted combinator missing lhs capture: %+v", vars)
	}
	if _, ok := vars["rhs"]; !ok {
		t.Fatalf("converted combinator missing rhs capture: %+v", vars)
	}
	if _, ok := target.LookupToken("+"); !ok {
		t.Fatalf("ConvertNode did not register the implicit \"+\" token on target")
	}
}

func TestConvertNodeUnknownSymbol(t *testing.T) {
	target := grammar.New()
	seq, err := Parse(`bogus`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, gerr := ConvertNode(target, seq, here); gerr == nil {
		t.Fatalf("expected an error resolving an undeclared symbol")
	}
}

func TestConvertNodeTokenCannotHavePriority(t *testing.T) {
	target := grammar.New()
	target.AddToken("Name", "", false, here)

	seq, err := Parse(`Name<5>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, gerr := ConvertNode(target, seq, here); gerr == nil {
		t.Fatalf("expected an error: token combinator cannot carry a priority")
	}
}

func TestMakeCombinator(t *testing.T) {
	target := grammar.New()
	name, _ := target.AddToken("Name", "", false, here)
	target.AddPattern(name, `[a-zA-Z]+`, grammar.PriorityMax, false, here)

	c, perr, gerr := MakeCombinator(target, `x:Name`, here)
	if perr != nil {
		t.Fatalf("MakeCombinator parse: %v", perr)
	}
	if gerr != nil {
		t.Fatalf("MakeCombinator convert: %v", gerr)
	}
	if _, ok := c.Variables()["x"]; !ok {
		t.Fatalf("expected capture x, got %+v", c.Variables())
	}
}
