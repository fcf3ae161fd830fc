package types

import (
	"fmt"
	"strings"

	"chimera/report"
)

// Type represents a Chimera data type.
type Type interface {
	// Repr returns the string representation of a type for diagnostics.
	Repr() string

	// equals returns whether this type is exactly equal to other.  This method
	// does not handle any unwrapping of type variables: it should only be
	// called through the Equals function.
	equals(other Type) bool
}

// Equals returns whether two types are equal.
func Equals(a, b Type) bool {
	return InnerType(a).equals(InnerType(b))
}

// InnerType returns the innermost type of a given type: it unwraps solved
// type variables to the types they store.
func InnerType(typ Type) Type {
	if tv, ok := typ.(*TypeVar); ok && tv.Value != nil {
		return InnerType(tv.Value)
	}

	return typ
}

// -----------------------------------------------------------------------------

// PrimType represents a Chimera primitive type.
type PrimType int

// Enumeration of the primitive types.
const (
	PrimVoid PrimType = iota
	PrimBool
	PrimInt
	PrimString
)

func (pt PrimType) equals(other Type) bool {
	if opt, ok := other.(PrimType); ok {
		return pt == opt
	}

	return false
}

func (pt PrimType) Repr() string {
	switch pt {
	case PrimVoid:
		return "Void"
	case PrimBool:
		return "Bool"
	case PrimInt:
		return "Int"
	case PrimString:
		return "String"
	default:
		return "<unknown>"
	}
}

// -----------------------------------------------------------------------------

// ListType represents a homogenous list type.
type ListType struct {
	// The element type of the list.
	Elem Type
}

func (lt *ListType) equals(other Type) bool {
	if olt, ok := other.(*ListType); ok {
		return Equals(lt.Elem, olt.Elem)
	}

	return false
}

func (lt *ListType) Repr() string {
	return fmt.Sprintf("[%s]", lt.Elem.Repr())
}

// -----------------------------------------------------------------------------

// ArrowType represents a function type.  The parameter list is a curried
// spelling: `a -> b -> r` and `a -> (b -> r)` denote the same type, and
// unification treats them as such.
type ArrowType struct {
	// The parameter types of the function.
	Params []Type

	// The return type of the function.
	Return Type
}

func (at *ArrowType) equals(other Type) bool {
	if oat, ok := other.(*ArrowType); ok {
		a, b := spread(at), spread(oat)

		if len(a.Params) != len(b.Params) {
			return false
		}

		for i, param := range a.Params {
			if !Equals(param, b.Params[i]) {
				return false
			}
		}

		return Equals(a.Return, b.Return)
	}

	return false
}

func (at *ArrowType) Repr() string {
	sb := strings.Builder{}

	for _, param := range at.Params {
		if _, ok := InnerType(param).(*ArrowType); ok {
			sb.WriteRune('(')
			sb.WriteString(param.Repr())
			sb.WriteRune(')')
		} else {
			sb.WriteString(param.Repr())
		}

		sb.WriteString(" -> ")
	}

	sb.WriteString(at.Return.Repr())
	return sb.String()
}

// Arity returns the number of parameters the arrow accepts before yielding a
// non-arrow result.
func (at *ArrowType) Arity() int {
	return len(spread(at).Params)
}

// spread normalizes an arrow type by splicing any arrow nested in return
// position into the parameter list: `a -> (b -> r)` becomes `a -> b -> r`.
func spread(at *ArrowType) *ArrowType {
	params := at.Params
	ret := InnerType(at.Return)

	for {
		if rat, ok := ret.(*ArrowType); ok {
			params = append(append([]Type{}, params...), rat.Params...)
			ret = InnerType(rat.Return)
		} else {
			return &ArrowType{Params: params, Return: ret}
		}
	}
}

// -----------------------------------------------------------------------------

// NamedType represents a user-declared algebraic data type.  Named types are
// nominal: two named types are equal exactly when they come from the same
// declaration.
type NamedType struct {
	// The declared name of the type.
	Name string

	// The ID of the package the type is declared in.
	ParentID uint

	// The value constructors of the type.
	Constrs []*Constr
}

// Constr represents a single value constructor of a named type.
type Constr struct {
	// The declared name of the constructor.
	Name string

	// The record fields of the constructor, in declaration order.
	Fields []ConstrField
}

// ConstrField is a single named field of a constructor.
type ConstrField struct {
	Name string
	Type Type
}

func (nt *NamedType) equals(other Type) bool {
	if ont, ok := other.(*NamedType); ok {
		return nt.Name == ont.Name && nt.ParentID == ont.ParentID
	}

	return false
}

func (nt *NamedType) Repr() string {
	return nt.Name
}

// -----------------------------------------------------------------------------

// OpaqueType represents a reference to a named type that has not yet been
// resolved against the symbol table.  The walker replaces the resolution
// target before any unification involving the reference happens.
type OpaqueType struct {
	// The name being referenced.
	Name string

	// The span of the reference.
	Span *report.TextSpan

	// The type the reference resolves to.  This is nil until resolution.
	Resolved Type
}

func (ot *OpaqueType) equals(other Type) bool {
	if ot.Resolved != nil {
		return Equals(ot.Resolved, other)
	}

	return false
}

func (ot *OpaqueType) Repr() string {
	if ot.Resolved != nil {
		return ot.Resolved.Repr()
	}

	return ot.Name
}

// -----------------------------------------------------------------------------

// TypeVar represents a type variable created during inference.
type TypeVar struct {
	// The unique ID of the type variable.
	ID int

	// The value the type variable has been unified to.  This is nil while the
	// variable is undetermined.
	Value Type

	// The span of the expression the variable was created for.
	Span *report.TextSpan
}

func (tv *TypeVar) equals(other Type) bool {
	if otv, ok := other.(*TypeVar); ok {
		return tv.ID == otv.ID
	}

	return false
}

func (tv *TypeVar) Repr() string {
	if tv.Value != nil {
		return tv.Value.Repr()
	}

	return fmt.Sprintf("T%d", tv.ID)
}
