package grammar

import (
	"sort"

	"github.com/gvmlang/gvm/combinator"
	"github.com/gvmlang/gvm/parser"
)

// unwrapNamed strips a leading Named wrapper, returning its Inner; any other
// combinator is returned unchanged. Used to look through `name:token` and
// `name:self` captures when deciding a Pratt rule's dispatch key.
func unwrapNamed(c combinator.Combinator) combinator.Combinator {
	if named, ok := c.(*combinator.Named); ok {
		return named.Inner
	}
	return c
}

// children returns the elements of c if it is a Sequence or Postfix, or a
// single-element slice of c itself otherwise — the same shape add_parser's
// dispatch logic inspects regardless of whether the rule was built from one
// combinator or several.
func children(c combinator.Combinator) []combinator.Combinator {
	if seq, ok := c.(*combinator.Sequence); ok {
		return seq.Children
	}
	if pf, ok := c.(*combinator.Postfix); ok {
		return pf.Children
	}
	return []combinator.Combinator{c}
}

// PackratTable dispatches a parselet's alternatives in declaration-stable
// priority order, trying each in turn and returning the first success (§4.F).
type PackratTable struct {
	parselets []*Parselet
}

func NewPackratTable() *PackratTable { return &PackratTable{} }

func (t *PackratTable) Parselets() []*Parselet { return t.parselets }

// AddParser appends ps to the table's alternatives, keeping the slice sorted
// by ascending priority with ties broken by insertion order (a stable sort
// re-run on every insert, since registrations are rare and tables small):
// the lowest-priority alternative that succeeds wins, per §4.F.
func (t *PackratTable) AddParser(ps *Parselet) {
	t.parselets = append(t.parselets, ps)
	sort.SliceStable(t.parselets, func(i, j int) bool { return t.parselets[i].lessThan(t.parselets[j]) })
}

func (t *PackratTable) Call(p *parser.Parser, _ int) (any, *parser.Error, *parser.Error) {
	attempts := make([]parser.Attempt, len(t.parselets))
	for i, ps := range t.parselets {
		ps := ps
		attempts[i] = func() (any, *parser.Error, *parser.Error) { return ps.Invoke(p) }
	}
	return p.Choice(attempts...)
}

// PrattTable dispatches by the current token's identity: a prefix parselet
// keyed by its leading token starts the climb, and postfix parselets keyed
// by their second element's token continue it while their priority strictly
// exceeds the caller's binding priority (§4.F).
type PrattTable struct {
	prefixes  map[int][]*Parselet
	postfixes map[int][]*Parselet
	parselets []*Parselet
}

func NewPrattTable() *PrattTable {
	return &PrattTable{prefixes: make(map[int][]*Parselet), postfixes: make(map[int][]*Parselet)}
}

func (t *PrattTable) Parselets() []*Parselet { return t.parselets }

// PrefixTokens is the set of token ids that can start this rule, used to
// build the "expected one of" diagnostic when no prefix matches.
func (t *PrattTable) PrefixTokens() []TokenID {
	ids := make([]TokenID, 0, len(t.prefixes))
	for _, group := range t.prefixes {
		ids = append(ids, group[0].dispatchToken)
	}
	return ids
}

// AddParser replicates grammar.py's PrattTable.add_parser dispatch exactly:
// unwrap a leading Named; a leading Token registers a prefix; a leading
// self-reference Parselet followed by a (possibly Named) Token registers a
// postfix keyed on that second token, with its combinator rewrapped as a
// combinator.Postfix (unless it already is one) so evaluation skips the
// self-reference. Anything else is a malformed rule.
func (t *PrattTable) AddParser(id ParseletID, c combinator.Combinator, ps *Parselet) *Error {
	elems := children(c)
	front := unwrapNamed(elems[0])

	if tok, ok := front.(*combinator.Token); ok {
		return t.addPrefix(tok.ID, ps)
	}

	if ref, ok := front.(*combinator.Parselet); ok && ref.ID.Equal(id.SymbolID) {
		if len(elems) < 2 {
			return errorf(ps.Location, "second combinator for Pratt postfix parselet must be token")
		}
		second := unwrapNamed(elems[1])
		if tok, ok := second.(*combinator.Token); ok {
			if _, isPostfix := ps.Combinator.(*combinator.Postfix); !isPostfix {
				ps.Combinator = combinator.NewPostfix(elems...)
			}
			return t.addPostfix(tok.ID, ps)
		}
		return errorf(ps.Location, "second combinator for Pratt postfix parselet must be token")
	}

	return errorf(ps.Location, "first combinator for Pratt parselet must be self parser or token")
}

func (t *PrattTable) addPrefix(tok TokenID, ps *Parselet) *Error {
	ps.dispatchToken = tok
	t.prefixes[tok.ID()] = insortParselet(t.prefixes[tok.ID()], ps)
	t.parselets = insortParselet(t.parselets, ps)
	return nil
}

func (t *PrattTable) addPostfix(tok TokenID, ps *Parselet) *Error {
	ps.dispatchToken = tok
	t.postfixes[tok.ID()] = insortParselet(t.postfixes[tok.ID()], ps)
	t.parselets = insortParselet(t.parselets, ps)
	return nil
}

// insortParselet inserts ps into list, kept sorted by ascending priority,
// after any existing entries of equal or lower priority — bisect.insort_right
// semantics: ties preserve declaration order, matching
// original/language/grammar.py's __add_prefix/__add_postfix, both of which
// call bisect.insort_right against Parselet.__lt__'s ascending comparison.
func insortParselet(list []*Parselet, ps *Parselet) []*Parselet {
	i := sort.Search(len(list), func(i int) bool { return list[i].Priority > ps.Priority })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = ps
	return list
}

func (t *PrattTable) Call(p *parser.Parser, priority int) (any, *parser.Error, *parser.Error) {
	tok := p.Current()
	candidates := t.prefixes[tok.ID.ID()]
	if len(candidates) == 0 {
		return nil, nil, p.Fail(t.PrefixTokens()...)
	}

	attempts := make([]parser.Attempt, len(candidates))
	for i, ps := range candidates {
		ps := ps
		attempts[i] = func() (any, *parser.Error, *parser.Error) { return ps.Invoke(p) }
	}
	left, merged, err := p.Choice(attempts...)
	if err != nil {
		return nil, nil, err
	}

	for {
		tok = p.Current()
		// t.postfixes[...] is sorted ascending; this is a literal
		// itertools.takewhile(lambda p: priority < p.priority, ...) over
		// that ascending order, per original/language/grammar.py's
		// PrattTable.__call__ — it stops at the first entry whose priority
		// no longer exceeds the caller's binding priority.
		var climbing []*Parselet
		for _, ps := range t.postfixes[tok.ID.ID()] {
			if priority >= ps.Priority {
				break
			}
			climbing = append(climbing, ps)
		}
		if len(climbing) == 0 {
			break
		}

		attempts := make([]parser.Attempt, len(climbing))
		for i, ps := range climbing {
			ps := ps
			attempts[i] = func() (any, *parser.Error, *parser.Error) { return ps.invokePostfix(p, left) }
		}
		next, soft, err := p.Choice(attempts...)
		if err != nil {
			merged = merged.Merge(err)
			break
		}
		merged = merged.Merge(soft)
		left = next
	}

	return left, merged, nil
}
