package grammar

import (
	"github.com/gvmlang/gvm/action"
	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/location"
	"github.com/gvmlang/gvm/parser"
	"github.com/gvmlang/gvm/typing"
)

// Parselet is a single named grammar rule: a combinator tree that recognizes
// it, an action that converts the match into the rule's result value, and
// (for Pratt rules) the priority it binds at.
type Parselet struct {
	ID         ParseletID
	Combinator combinator.Combinator
	Action     action.Action
	Priority   int
	Location   location.Location

	declared      map[string]typing.Type
	dispatchToken TokenID
}

// NewParselet builds a Parselet. Its declared variable map is taken from
// c.Variables() verbatim.
func NewParselet(id ParseletID, c combinator.Combinator, act action.Action, priority int, loc location.Location) *Parselet {
	return &Parselet{
		ID:         id,
		Combinator: c,
		Action:     act,
		Priority:   priority,
		Location:   loc,
		declared:   c.Variables(),
	}
}

// ResultType is the value type this parselet's action produces.
func (ps *Parselet) ResultType() typing.Type { return ps.Action.ResultType() }

// Variables is the {name -> declared type} map of every capture this
// parselet's combinator tree can produce.
func (ps *Parselet) Variables() map[string]typing.Type { return ps.declared }

// mergeNamespace fills every declared-but-absent capture with its type's
// zero value, matching §4.D: a rule's action always sees a namespace with
// one entry per declared name, even along a path that never touched it (an
// Optional that backtracked away, or a Repeat that matched zero times).
func (ps *Parselet) mergeNamespace(ns combinator.Namespace) combinator.Namespace {
	merged := make(combinator.Namespace, len(ps.declared))
	for name, value := range ns {
		merged[name] = value
	}
	for name, typ := range ps.declared {
		if _, ok := merged[name]; !ok {
			merged[name] = typ.Default()
		}
	}
	return merged
}

// Invoke evaluates the parselet's combinator against p and runs its action
// over the resulting (possibly defaulted) namespace.
func (ps *Parselet) Invoke(p *parser.Parser) (any, *parser.Error, *parser.Error) {
	result, ns, soft, err := ps.Combinator.Evaluate(p, ps.declared)
	if err != nil {
		return nil, nil, err
	}
	return ps.Action.Invoke(result, ps.mergeNamespace(ns)), soft, nil
}

// invokePostfix evaluates a postfix parselet's combinator via FixLeft,
// injecting left as the left operand, then runs the action as Invoke does.
// It panics if ps was registered as anything but a postfix rule, which would
// be a PrattTable bug rather than a grammar-authoring error.
func (ps *Parselet) invokePostfix(p *parser.Parser, left any) (any, *parser.Error, *parser.Error) {
	pf, ok := ps.Combinator.(*combinator.Postfix)
	if !ok {
		panic("grammar: invokePostfix called on a non-postfix parselet")
	}
	result, ns, soft, err := pf.FixLeft(p, ps.declared, left)
	if err != nil {
		return nil, nil, err
	}
	return ps.Action.Invoke(result, ps.mergeNamespace(ns)), soft, nil
}

// lessThan orders two parselets competing at the same dispatch key: lower
// priority first (ascending), then declaration order (stable insertion
// breaks ties) — matching original/language/grammar.py's
// Parselet.__lt__ (`self.priority < other.priority`), which is what every
// bisect.insort_right call in that module sorts by.
func (ps *Parselet) lessThan(other *Parselet) bool {
	return ps.Priority < other.Priority
}
