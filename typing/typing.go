// Package typing implements the small type algebra the combinator layer
// uses to infer the declared type of each Named capture: a scalar Go type,
// or that type wrapped in Optional or Sequence (never both nested the same
// way twice — Optional[Sequence[T]] collapses per the merge rules below,
// mirroring gvm.typing's unpack/merge helpers).
package typing

import (
	"fmt"
	"reflect"
)

// Kind distinguishes the three shapes a combinator's inferred type can take.
type Kind int

const (
	Scalar Kind = iota
	Optional
	Sequence
)

// Type is an immutable type-algebra value: a scalar Go reflect.Type, or an
// Optional/Sequence wrapping another Type.
type Type struct {
	kind  Kind
	elem  reflect.Type
	inner *Type
}

// Of builds a scalar Type from a Go value's type, e.g. typing.Of(syntax.Token{}).
func Of(v any) Type {
	return Type{kind: Scalar, elem: reflect.TypeOf(v)}
}

// OfType builds a scalar Type directly from a reflect.Type.
func OfType(t reflect.Type) Type {
	return Type{kind: Scalar, elem: t}
}

// MakeOptional wraps typ in Optional, unless it is already Optional or
// Sequence (§4.C: "each child variable T becomes Optional[T] unless already
// Sequence[_] or Optional[_]").
func MakeOptional(typ Type) Type {
	if typ.kind == Optional || typ.kind == Sequence {
		return typ
	}
	return Type{kind: Optional, inner: &typ}
}

// MakeSequence wraps the unpacked form of typ in Sequence (§4.C: "each child
// variable becomes Sequence[T]", always unpacking first).
func MakeSequence(typ Type) Type {
	unpacked := Unpack(typ)
	return Type{kind: Sequence, inner: &unpacked}
}

// Unpack strips one layer of Optional or Sequence, returning the same Type
// unchanged for a scalar.
func Unpack(typ Type) Type {
	if (typ.kind == Optional || typ.kind == Sequence) && typ.inner != nil {
		return *typ.inner
	}
	return typ
}

// MergeSequence implements merge_sequence(lhs, rhs): unwrap any Optional/
// Sequence wrapper on both sides, require the inner scalars to match, and
// always yield Sequence[T] — two captures sharing a name are always a
// sequence, regardless of whether either occurrence was itself optional or
// repeated.
func MergeSequence(lhs, rhs Type) (Type, error) {
	lu := Unpack(lhs)
	ru := Unpack(rhs)
	if !lu.Equal(ru) {
		return Type{}, fmt.Errorf("typing: cannot merge incompatible types %s and %s", lu, ru)
	}
	return Type{kind: Sequence, inner: &lu}, nil
}

// Equal reports structural equality between two Types.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	if t.kind == Scalar {
		return t.elem == other.elem
	}
	return t.inner.Equal(*other.inner)
}

// IsSequence reports whether typ is Sequence[_] at the top level.
func (t Type) IsSequence() bool { return t.kind == Sequence }

// IsOptional reports whether typ is Optional[_] at the top level.
func (t Type) IsOptional() bool { return t.kind == Optional }

// Kind returns the top-level shape of typ.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the scalar reflect.Type for a Scalar-kind Type; for Optional
// or Sequence it returns the reflect.Type of the (recursively unpacked)
// scalar at the bottom.
func (t Type) Elem() reflect.Type {
	if t.kind == Scalar {
		return t.elem
	}
	return t.inner.Elem()
}

// Default returns the zero value actions must substitute when a declared
// variable name is absent from the runtime namespace: nil for scalar and
// optional, an empty slice for sequence (§4.D).
func (t Type) Default() any {
	if t.kind == Sequence {
		elemType := t.inner.Elem()
		return reflect.MakeSlice(reflect.SliceOf(elemType), 0, 0).Interface()
	}
	return nil
}

// IsSubtype reports whether t is assignable where a value of want is
// expected, treating Sequence[A] <: Sequence[B] and Optional[A] <: Optional[B]
// variantly over A <: B (§4.D), and a scalar as a subtype of an interface
// want implements.
func (t Type) IsSubtype(want Type) bool {
	if t.kind != want.kind {
		return false
	}
	switch t.kind {
	case Scalar:
		if t.elem == want.elem {
			return true
		}
		return want.elem.Kind() == reflect.Interface && t.elem.Implements(want.elem)
	default:
		return t.inner.IsSubtype(*want.inner)
	}
}

func (t Type) String() string {
	switch t.kind {
	case Optional:
		return fmt.Sprintf("Optional[%s]", t.inner)
	case Sequence:
		return fmt.Sprintf("Sequence[%s]", t.inner)
	default:
		if t.elem == nil {
			return "<nil>"
		}
		return t.elem.String()
	}
}
