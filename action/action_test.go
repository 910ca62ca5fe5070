package action

import (
	"testing"

	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/syntax"
	"github.com/gvmlang/gvm/typing"
)

func tokenID(name string, id int) symbol.TokenID {
	return symbol.NewToken(symbol.New(id, name, symbol.TokenKind))
}

func TestReturnResultInvokesToLastResult(t *testing.T) {
	c := combinator.NewToken(tokenID("A", 3))
	gen := MakeReturnResult()
	act := gen(c)

	if !act.ResultType().Equal(c.ResultType()) {
		t.Fatalf("ResultType = %s, want %s", act.ResultType(), c.ResultType())
	}
	if got := act.Invoke("last", nil); got != "last" {
		t.Fatalf("Invoke = %v, want %q", got, "last")
	}
}

func TestReturnVariableLooksUpNamespace(t *testing.T) {
	c := combinator.NewNamed("x", combinator.NewToken(tokenID("A", 3)))
	gen := MakeReturnVariable("x")
	act := gen(c)

	ns := combinator.Namespace{"x": "captured"}
	if got := act.Invoke(nil, ns); got != "captured" {
		t.Fatalf("Invoke = %v, want %q", got, "captured")
	}
}

func TestReturnVariablePanicsOnUndeclaredName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for undeclared variable")
		}
	}()
	c := combinator.NewToken(tokenID("A", 3))
	gen := MakeReturnVariable("missing")
	gen(c)
}

func TestCallInvokesFunctorWithNamespace(t *testing.T) {
	resultType := typing.Of(syntax.Token{})
	gen, err := MakeCall(func(ns combinator.Namespace) any {
		return ns["x"]
	}, resultType)
	if err != nil {
		t.Fatalf("MakeCall: %v", err)
	}
	c := combinator.NewToken(tokenID("A", 3))
	act := gen(c)

	if !act.ResultType().Equal(resultType) {
		t.Fatalf("ResultType = %s, want %s", act.ResultType(), resultType)
	}
	ns := combinator.Namespace{"x": 42}
	if got := act.Invoke(nil, ns); got != 42 {
		t.Fatalf("Invoke = %v, want 42", got)
	}
}

func TestMakeCallRequiresExplicitResultType(t *testing.T) {
	_, err := MakeCall(func(combinator.Namespace) any { return nil }, typing.Type{})
	if err == nil {
		t.Fatalf("expected error for missing result type")
	}
}

func TestMakeCallRejectsNilFunctor(t *testing.T) {
	_, err := MakeCall(nil, typing.Of(syntax.Token{}))
	if err == nil {
		t.Fatalf("expected error for nil functor")
	}
}
