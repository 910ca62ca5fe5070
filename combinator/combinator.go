// Package combinator implements the primitive grammar-rule algebra: Token,
// Parselet reference, Sequence, Postfix, Named, Optional, and Repeat.
// Each combinator knows its own inferred result type and the set of Named
// captures reachable beneath it, and knows how to evaluate itself against a
// running parser.Parser.
package combinator

import (
	"fmt"

	"github.com/gvmlang/gvm/internal/symbol"
	"github.com/gvmlang/gvm/parser"
	"github.com/gvmlang/gvm/syntax"
	"github.com/gvmlang/gvm/typing"
)

// Namespace is the {name -> captured value} map a combinator accumulates
// from its Named descendants.
type Namespace map[string]any

// Combinator is a single node of the grammar-rule algebra. ResultType and
// Variables are structural, derived once from the shape of the combinator
// tree; Evaluate runs it against a parser.
type Combinator interface {
	// ResultType is the value type Evaluate's result assumes on success.
	ResultType() typing.Type
	// Variables is the {name -> declared type} map of every Named capture
	// beneath this combinator; a Named reports only its own name, not
	// captures nested inside it.
	Variables() map[string]typing.Type
	// Evaluate runs the combinator against p. declared is the owning
	// parselet's full Variables() map, consulted only by Named to decide
	// whether a scalar capture must be wrapped in a singleton slice to
	// match a sibling occurrence's sequence type.
	Evaluate(p *parser.Parser, declared map[string]typing.Type) (result any, ns Namespace, soft *parser.Error, err *parser.Error)

	// Clone rebuilds the combinator tree with every embedded token and
	// parselet id passed through the given remap functions, used by
	// grammar.Grammar.Extend to graft a parselet table from one grammar's
	// symbol space into another's.
	Clone(remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator
}

// syntaxTokenType is the result_type of every TokenCombinator.
var syntaxTokenType = typing.Of(syntax.Token{})

// Token matches the current token by identity.
type Token struct {
	ID symbol.TokenID
}

func NewToken(id symbol.TokenID) *Token { return &Token{ID: id} }

func (t *Token) ResultType() typing.Type            { return syntaxTokenType }
func (t *Token) Variables() map[string]typing.Type { return nil }

func (t *Token) Evaluate(p *parser.Parser, _ map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	tok, err := p.Consume(t.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return tok, nil, nil, nil
}

func (t *Token) Clone(remapToken func(symbol.TokenID) symbol.TokenID, _ func(symbol.ParseletID) symbol.ParseletID) Combinator {
	return &Token{ID: remapToken(t.ID)}
}

// Parselet invokes another parselet by reference, optionally at a specific
// binding priority (used for Pratt prefix/postfix rules). A nil Priority
// means "the table's minimum priority".
type Parselet struct {
	ID         symbol.ParseletID
	Priority   *int
	resultType typing.Type
}

// NewParselet builds a Parselet reference. resultType is the referenced
// parselet's declared result type, supplied by the grammar at registration
// time (combinator has no visibility into the grammar's parselet table).
func NewParselet(id symbol.ParseletID, priority *int, resultType typing.Type) *Parselet {
	return &Parselet{ID: id, Priority: priority, resultType: resultType}
}

func (ps *Parselet) ResultType() typing.Type            { return ps.resultType }
func (ps *Parselet) Variables() map[string]typing.Type { return nil }

func (ps *Parselet) Evaluate(p *parser.Parser, _ map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	priority := 0
	if ps.Priority != nil {
		priority = *ps.Priority
	}
	result, soft, err := p.Parselet(ps.ID, priority)
	if err != nil {
		return nil, nil, nil, err
	}
	return result, nil, soft, nil
}

func (ps *Parselet) Clone(_ func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator {
	return &Parselet{ID: remapParselet(ps.ID), Priority: ps.Priority, resultType: ps.resultType}
}

// mergeVariables folds child Variables maps left-to-right, merging clashing
// names with typing.MergeSequence (two captures under the same name are
// always a sequence, per §4.C).
func mergeVariables(children []Combinator) map[string]typing.Type {
	vars := make(map[string]typing.Type)
	for _, c := range children {
		for name, typ := range c.Variables() {
			if existing, ok := vars[name]; ok {
				merged, err := typing.MergeSequence(existing, typ)
				if err != nil {
					panic(fmt.Sprintf("combinator: %v", err))
				}
				vars[name] = merged
			} else {
				vars[name] = typ
			}
		}
	}
	return vars
}

func mergeNamespace(into Namespace, from Namespace) Namespace {
	if from == nil {
		return into
	}
	if into == nil {
		into = make(Namespace, len(from))
	}
	for name, value := range from {
		if existing, ok := into[name]; ok {
			into[name] = appendValue(existing, value)
		} else {
			into[name] = value
		}
	}
	return into
}

// appendValue concatenates two capture values that share a name, flattening
// one level of slice on either side so repeated captures accumulate as a
// single flat slice rather than nesting.
func appendValue(existing, value any) any {
	left := asSlice(existing)
	right := asSlice(value)
	return append(left, right...)
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return append([]any(nil), s...)
	}
	return []any{v}
}

// Sequence evaluates its children in order, threading namespaces and the
// deepest soft diagnostic forward; its result is the last child's result.
type Sequence struct {
	Children []Combinator
	vars     map[string]typing.Type
}

// NewSequence builds a Sequence, or returns its single child directly when
// len(children) == 1 (the grammar layer's make_sequence collapsing rule).
func NewSequence(children ...Combinator) Combinator {
	if len(children) == 1 {
		return children[0]
	}
	return &Sequence{Children: children, vars: mergeVariables(children)}
}

func (s *Sequence) ResultType() typing.Type {
	return s.Children[len(s.Children)-1].ResultType()
}

func (s *Sequence) Variables() map[string]typing.Type { return s.vars }

func (s *Sequence) Evaluate(p *parser.Parser, declared map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	return evalSequence(p, declared, s.Children)
}

func (s *Sequence) Clone(remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator {
	cloned := cloneChildren(s.Children, remapToken, remapParselet)
	return &Sequence{Children: cloned, vars: mergeVariables(cloned)}
}

func cloneChildren(children []Combinator, remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) []Combinator {
	cloned := make([]Combinator, len(children))
	for i, c := range children {
		cloned[i] = c.Clone(remapToken, remapParselet)
	}
	return cloned
}

func evalSequence(p *parser.Parser, declared map[string]typing.Type, children []Combinator) (any, Namespace, *parser.Error, *parser.Error) {
	var result any
	var ns Namespace
	var soft *parser.Error
	for _, c := range children {
		r, childNS, childSoft, err := c.Evaluate(p, declared)
		soft = soft.Merge(childSoft)
		if err != nil {
			return nil, nil, nil, soft.Merge(err)
		}
		result = r
		ns = mergeNamespace(ns, childNS)
	}
	return result, ns, soft, nil
}

// Postfix is a Sequence variant used for Pratt led rules: the first child
// (the left-operand slot used only for dispatch) is skipped during normal
// evaluation; FixLeft additionally injects the named left operand into the
// resulting namespace when that first child is a Named reference to a
// parselet.
type Postfix struct {
	*Sequence
}

// NewPostfix wraps children as a Postfix combinator. Unlike NewSequence it
// never collapses to a bare child, since the first child is structurally
// significant even though it contributes nothing to evaluation.
func NewPostfix(children ...Combinator) *Postfix {
	return &Postfix{Sequence: &Sequence{Children: children, vars: mergeVariables(children)}}
}

func (ps *Postfix) Evaluate(p *parser.Parser, declared map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	return evalSequence(p, declared, ps.Children[1:])
}

func (ps *Postfix) Clone(remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator {
	cloned := cloneChildren(ps.Children, remapToken, remapParselet)
	return &Postfix{Sequence: &Sequence{Children: cloned, vars: mergeVariables(cloned)}}
}

// FixLeft evaluates the Postfix combinator as normal, then injects left
// into the namespace under the first child's capture name if that child is
// a Named wrapping a Parselet reference.
func (ps *Postfix) FixLeft(p *parser.Parser, declared map[string]typing.Type, left any) (any, Namespace, *parser.Error, *parser.Error) {
	result, ns, soft, err := ps.Evaluate(p, declared)
	if err != nil {
		return nil, nil, nil, err
	}
	if named, ok := ps.Children[0].(*Named); ok {
		if _, isParseletRef := named.Inner.(*Parselet); isParseletRef {
			ns = mergeNamespace(ns, Namespace{named.Name: left})
		}
	}
	return result, ns, soft, nil
}

// Named captures its inner combinator's result under name.
type Named struct {
	Name  string
	Inner Combinator
}

func NewNamed(name string, inner Combinator) *Named { return &Named{Name: name, Inner: inner} }

func (n *Named) ResultType() typing.Type { return n.Inner.ResultType() }

func (n *Named) Variables() map[string]typing.Type {
	return map[string]typing.Type{n.Name: n.Inner.ResultType()}
}

func (n *Named) Evaluate(p *parser.Parser, declared map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	result, _, soft, err := n.Inner.Evaluate(p, declared)
	if err != nil {
		return nil, nil, nil, err
	}
	return result, n.makeNamespace(declared, result), soft, nil
}

func (n *Named) Clone(remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator {
	return &Named{Name: n.Name, Inner: n.Inner.Clone(remapToken, remapParselet)}
}

// makeNamespace decides whether this capture's value needs wrapping in a
// singleton slice: if the inner combinator's own result type is already a
// sequence the value is used as-is, but if the owning parselet declared
// this name as a sequence (because a sibling occurrence elsewhere in the
// rule is repeated) a lone scalar occurrence must be wrapped so repeated
// accumulation stays homogeneous.
func (n *Named) makeNamespace(declared map[string]typing.Type, result any) Namespace {
	if n.Inner.ResultType().IsSequence() {
		return Namespace{n.Name: result}
	}
	if declaredType, ok := declared[n.Name]; ok && declaredType.IsSequence() {
		return Namespace{n.Name: []any{result}}
	}
	return Namespace{n.Name: result}
}

// Optional runs its inner combinator under backtracking; on failure it
// restores position and succeeds anyway, producing a nil result and an
// empty namespace, with the failure preserved as the soft diagnostic.
type Optional struct {
	Inner Combinator
}

func NewOptional(inner Combinator) *Optional { return &Optional{Inner: inner} }

func (o *Optional) ResultType() typing.Type { return typing.MakeOptional(o.Inner.ResultType()) }

func (o *Optional) Variables() map[string]typing.Type {
	vars := make(map[string]typing.Type, len(o.Inner.Variables()))
	for name, typ := range o.Inner.Variables() {
		vars[name] = typing.MakeOptional(typ)
	}
	return vars
}

func (o *Optional) Evaluate(p *parser.Parser, declared map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	result, soft, err := p.Backtrack(func() (any, *parser.Error, *parser.Error) {
		r, ns, innerSoft, err := o.Inner.Evaluate(p, declared)
		if err != nil {
			return nil, nil, err
		}
		return namespaceResult{r, ns}, innerSoft, nil
	})
	if err != nil {
		return nil, nil, err, nil
	}
	nr := result.(namespaceResult)
	return nr.result, nr.ns, soft, nil
}

func (o *Optional) Clone(remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator {
	return &Optional{Inner: o.Inner.Clone(remapToken, remapParselet)}
}

// namespaceResult threads a (result, namespace) pair through
// parser.Attempt's single-value success slot.
type namespaceResult struct {
	result any
	ns     Namespace
}

// Repeat evaluates its inner combinator zero or more times under
// backtracking, stopping at the first failing iteration; that iteration's
// error becomes the trailing soft diagnostic.
type Repeat struct {
	Inner Combinator
}

func NewRepeat(inner Combinator) *Repeat { return &Repeat{Inner: inner} }

func (r *Repeat) ResultType() typing.Type { return typing.MakeSequence(r.Inner.ResultType()) }

func (r *Repeat) Variables() map[string]typing.Type {
	vars := make(map[string]typing.Type, len(r.Inner.Variables()))
	for name, typ := range r.Inner.Variables() {
		vars[name] = typing.MakeSequence(typ)
	}
	return vars
}

func (r *Repeat) Evaluate(p *parser.Parser, declared map[string]typing.Type) (any, Namespace, *parser.Error, *parser.Error) {
	var items []any
	var ns Namespace
	var soft *parser.Error
	for {
		startPos := p.Position()
		result, itemSoft, err := p.Backtrack(func() (any, *parser.Error, *parser.Error) {
			v, itemNS, itemSoft, err := r.Inner.Evaluate(p, declared)
			if err != nil {
				return nil, nil, err
			}
			return namespaceResult{v, itemNS}, itemSoft, nil
		})
		if err != nil {
			soft = soft.Merge(err)
			break
		}
		soft = soft.Merge(itemSoft)
		nr := result.(namespaceResult)
		items = append(items, nr.result)
		ns = mergeNamespace(ns, nr.ns)
		if p.Position() == startPos {
			// A zero-width match would otherwise repeat forever without
			// ever advancing the cursor; one such match is accepted, then
			// the repetition stops.
			break
		}
	}
	return items, ns, soft, nil
}

func (r *Repeat) Clone(remapToken func(symbol.TokenID) symbol.TokenID, remapParselet func(symbol.ParseletID) symbol.ParseletID) Combinator {
	return &Repeat{Inner: r.Inner.Clone(remapToken, remapParselet)}
}
