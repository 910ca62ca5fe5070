package meta

import (
	"reflect"
	"sync"

	"github.com/gvmlang/gvm/action"
	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/core"
	"github.com/gvmlang/gvm/grammar"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/syntax"
	"github.com/gvmlang/gvm/typing"
)

var combinatorNodeType = typing.OfType(reflect.TypeOf((*CombinatorNode)(nil)).Elem())

var (
	bootstrapOnce    sync.Once
	bootstrapGrammar *grammar.Grammar
)

// Grammar returns the bootstrap combinator-notation grammar, built once and
// shared: it never changes across calls, so there is no reason to rebuild
// it per parse. Mirrors helpers.py's module-level
// `combinator_grammar = create_combinator_grammar()` singleton.
func Grammar() *grammar.Grammar {
	bootstrapOnce.Do(func() { bootstrapGrammar = CombinatorGrammar() })
	return bootstrapGrammar
}

// CombinatorGrammar builds a fresh instance of the combinator-notation
// grammar: core.Grammar() extended with the `:` literal, plus the
// `combinator`/`combinator_sequence` parselets whose rules are written
// directly with combinator.* constructors rather than parsed, since this is
// the one grammar in the system that cannot bootstrap itself from its own
// notation. Grounded on original/language/helpers.py's
// create_combinator_grammar.
func CombinatorGrammar() *grammar.Grammar {
	here := location.Location{}
	g := grammar.New()
	if err := g.Extend(core.Grammar(), here); err != nil {
		panic(err)
	}

	nameID, _ := g.LookupToken("Name")
	stringID, _ := g.LookupToken("String")
	numberID, _ := g.LookupToken("Integer")
	colonID := mustImplicit(g, ":")
	parenOpen, _ := g.LookupToken("(")
	parenClose, _ := g.LookupToken(")")
	squareOpen, _ := g.LookupToken("[")
	squareClose, _ := g.LookupToken("]")
	curlyOpen, _ := g.LookupToken("{")
	curlyClose, _ := g.LookupToken("}")
	lessID, _ := g.LookupToken("<")
	greatID, _ := g.LookupToken(">")

	combID, gerr := g.AddParselet("combinator", grammar.Packrat, combinatorNodeType, here)
	if gerr != nil {
		panic(gerr)
	}
	seqID, gerr := g.AddParselet("combinator_sequence", grammar.Packrat, typing.Of(SequenceNode{}), here)
	if gerr != nil {
		panic(gerr)
	}

	combRef := combinator.NewParselet(combID, nil, combinatorNodeType)
	seqRef := combinator.NewParselet(seqID, nil, typing.Of(SequenceNode{}))

	namedGen, err := action.MakeCall(func(ns combinator.Namespace) any {
		return NamedNode{Name: ns["name"].(syntax.Token).Value, Combinator: ns["combinator"].(CombinatorNode)}
	}, typing.Of(NamedNode{}))
	if err != nil {
		panic(err)
	}

	referenceGen, err := action.MakeCall(func(ns combinator.Namespace) any {
		var priority *syntax.Token
		if v := ns["priority"]; v != nil {
			tok := v.(syntax.Token)
			priority = &tok
		}
		return ReferenceNode{Name: ns["name"].(syntax.Token).Value, Priority: priority}
	}, typing.Of(ReferenceNode{}))
	if err != nil {
		panic(err)
	}

	implicitGen, err := action.MakeCall(func(ns combinator.Namespace) any {
		return ImplicitNode{Value: ns["value"].(syntax.Token).Value}
	}, typing.Of(ImplicitNode{}))
	if err != nil {
		panic(err)
	}

	optionalGen, err := action.MakeCall(func(ns combinator.Namespace) any {
		return OptionalNode{Combinator: ns["combinator"].(SequenceNode)}
	}, typing.Of(OptionalNode{}))
	if err != nil {
		panic(err)
	}

	repeatGen, err := action.MakeCall(func(ns combinator.Namespace) any {
		return RepeatNode{Combinator: ns["combinator"].(SequenceNode)}
	}, typing.Of(RepeatNode{}))
	if err != nil {
		panic(err)
	}

	sequenceGen, err := action.MakeCall(func(ns combinator.Namespace) any {
		items := ns["combinators"].([]any)
		nodes := make([]CombinatorNode, len(items))
		for i, item := range items {
			nodes[i] = item.(CombinatorNode)
		}
		return SequenceNode{Combinators: nodes}
	}, typing.Of(SequenceNode{}))
	if err != nil {
		panic(err)
	}

	// combinator := name:Name ":" combinator:combinator
	mustAddParser(g, combID,
		combinator.NewSequence(
			combinator.NewNamed("name", combinator.NewToken(nameID)),
			combinator.NewToken(colonID),
			combinator.NewNamed("combinator", combRef),
		),
		namedGen, grammar.PriorityMax, here)

	// combinator := name:Name [ "<" priority:Integer ">" ]
	mustAddParser(g, combID,
		combinator.NewSequence(
			combinator.NewNamed("name", combinator.NewToken(nameID)),
			combinator.NewOptional(combinator.NewSequence(
				combinator.NewToken(lessID),
				combinator.NewNamed("priority", combinator.NewToken(numberID)),
				combinator.NewToken(greatID),
			)),
		),
		referenceGen, grammar.PriorityMax, here)

	// combinator := value:String
	mustAddParser(g, combID,
		combinator.NewNamed("value", combinator.NewToken(stringID)),
		implicitGen, grammar.PriorityMax, here)

	// combinator := "[" combinator:combinator_sequence "]"
	mustAddParser(g, combID,
		combinator.NewSequence(
			combinator.NewToken(squareOpen),
			combinator.NewNamed("combinator", seqRef),
			combinator.NewToken(squareClose),
		),
		optionalGen, grammar.PriorityMax, here)

	// combinator := "{" combinator:combinator_sequence "}"
	mustAddParser(g, combID,
		combinator.NewSequence(
			combinator.NewToken(curlyOpen),
			combinator.NewNamed("combinator", seqRef),
			combinator.NewToken(curlyClose),
		),
		repeatGen, grammar.PriorityMax, here)

	// combinator := "(" combinator:combinator_sequence ")"
	mustAddParser(g, combID,
		combinator.NewSequence(
			combinator.NewToken(parenOpen),
			combinator.NewNamed("combinator", seqRef),
			combinator.NewToken(parenClose),
		),
		action.MakeReturnVariable("combinator"), grammar.PriorityMax, here)

	// combinator_sequence := combinators:combinator combinators:{combinator}
	mustAddParser(g, seqID,
		combinator.NewSequence(
			combinator.NewNamed("combinators", combRef),
			combinator.NewNamed("combinators", combinator.NewRepeat(combRef)),
		),
		sequenceGen, grammar.PriorityMax, here)

	return g
}

func mustImplicit(g *grammar.Grammar, literal string) grammar.TokenID {
	id, err := g.AddImplicit(literal, location.Location{})
	if err != nil {
		panic(err)
	}
	return id
}

func mustAddParser(g *grammar.Grammar, id grammar.ParseletID, c combinator.Combinator, gen action.Generator, priority int, loc location.Location) {
	if _, err := g.AddParser(id, c, gen, priority, loc); err != nil {
		panic(err)
	}
}
