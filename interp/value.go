package interp

import (
	"fmt"
	"strings"
)

// Value represents a runtime value produced by the evaluator.
type Value interface {
	// Repr returns the display form of the value: the text `dump` prints.
	Repr() string

	// equals returns whether this value equals another value.
	equals(other Value) bool
}

// Equals returns whether two runtime values are equal.  Functions never
// compare equal, not even to themselves.
func Equals(a, b Value) bool {
	return a.equals(b)
}

// -----------------------------------------------------------------------------

// VoidValue is the unit value: the result of `()` and of every statement.
type VoidValue struct{}

func (v VoidValue) Repr() string {
	return "()"
}

func (v VoidValue) equals(other Value) bool {
	_, ok := other.(VoidValue)
	return ok
}

// IntValue is a 64-bit integer value.
type IntValue struct {
	Val int64
}

func (iv IntValue) Repr() string {
	return fmt.Sprintf("%d", iv.Val)
}

func (iv IntValue) equals(other Value) bool {
	if oiv, ok := other.(IntValue); ok {
		return iv.Val == oiv.Val
	}

	return false
}

// BoolValue is a boolean value.
type BoolValue struct {
	Val bool
}

func (bv BoolValue) Repr() string {
	if bv.Val {
		return "true"
	}

	return "false"
}

func (bv BoolValue) equals(other Value) bool {
	if obv, ok := other.(BoolValue); ok {
		return bv.Val == obv.Val
	}

	return false
}

// StringValue is a string value.  Its display form is the raw text with no
// surrounding quotes.
type StringValue struct {
	Val string
}

func (sv StringValue) Repr() string {
	return sv.Val
}

func (sv StringValue) equals(other Value) bool {
	if osv, ok := other.(StringValue); ok {
		return sv.Val == osv.Val
	}

	return false
}

// -----------------------------------------------------------------------------

// ListValue is a cell of a cons list.  The empty list is the nil ListValue
// pointer: `cons` never produces it and `head` and `tail` fault on it.
type ListValue struct {
	// The value stored in the cell.
	Head Value

	// The rest of the list.
	Tail *ListValue
}

func (lv *ListValue) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('[')

	for cell := lv; cell != nil; cell = cell.Tail {
		if cell != lv {
			sb.WriteString(", ")
		}

		sb.WriteString(cell.Head.Repr())
	}

	sb.WriteRune(']')
	return sb.String()
}

func (lv *ListValue) equals(other Value) bool {
	olv, ok := other.(*ListValue)
	if !ok {
		return false
	}

	a, b := lv, olv
	for a != nil && b != nil {
		if !Equals(a.Head, b.Head) {
			return false
		}

		a, b = a.Tail, b.Tail
	}

	return a == nil && b == nil
}

// -----------------------------------------------------------------------------

// FuncValue is a function value: one compiled parameter-taking body together
// with the environment it closed over.  Functions of several parameters are
// chains of single-parameter FuncValues.
type FuncValue struct {
	// The parameter name the body reads from its environment.
	Param string

	// The compiled body.
	Body compiledCode

	// The environment captured when the function expression was evaluated.
	Closure *Env
}

func (fv *FuncValue) Repr() string {
	return "<function>"
}

func (fv *FuncValue) equals(other Value) bool {
	// Functions are never comparable at the language level.
	return false
}

// -----------------------------------------------------------------------------

// ConstrValue is an applied value constructor: the constructor's name
// together with its field values.  Constant constructors carry no fields.
type ConstrValue struct {
	// The constructor name.
	Name string

	// The field names, in declaration order.  Empty for constant
	// constructors.
	FieldNames []string

	// The field values, parallel to FieldNames.
	Fields []Value
}

// Field returns the value of the named field.
func (cv *ConstrValue) Field(name string) (Value, bool) {
	for i, fname := range cv.FieldNames {
		if fname == name {
			return cv.Fields[i], true
		}
	}

	return nil, false
}

func (cv *ConstrValue) Repr() string {
	if len(cv.Fields) == 0 {
		return cv.Name
	}

	sb := strings.Builder{}
	sb.WriteString(cv.Name)
	sb.WriteString(" { ")

	for i, fname := range cv.FieldNames {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(fname)
		sb.WriteString(": ")
		sb.WriteString(cv.Fields[i].Repr())
	}

	sb.WriteString(" }")
	return sb.String()
}

func (cv *ConstrValue) equals(other Value) bool {
	ocv, ok := other.(*ConstrValue)
	if !ok || cv.Name != ocv.Name || len(cv.Fields) != len(ocv.Fields) {
		return false
	}

	for i, field := range cv.Fields {
		if !Equals(field, ocv.Fields[i]) {
			return false
		}
	}

	return true
}
