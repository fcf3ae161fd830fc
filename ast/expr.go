package ast

import (
	"chimera/report"
	"chimera/types"
)

// Expr represents an expression, simple or complex.  All expression nodes
// implement the Expr interface.
type Expr interface {
	ASTNode

	// Type is the yielded type of the expression.  It is nil until the walker
	// infers it.
	Type() types.Type

	// SetType sets the yielded type of the expression.
	SetType(types.Type)
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	ASTBase

	typ types.Type
}

// NewExprBase creates a new expression base with the given span.
func NewExprBase(span *report.TextSpan) ExprBase {
	return ExprBase{ASTBase: NewASTBaseOn(span)}
}

// NewExprBaseOver creates a new expression base spanning over two spans.
func NewExprBaseOver(start, end *report.TextSpan) ExprBase {
	return ExprBase{ASTBase: NewASTBaseOver(start, end)}
}

func (eb *ExprBase) Type() types.Type {
	return eb.typ
}

func (eb *ExprBase) SetType(typ types.Type) {
	eb.typ = typ
}

// -----------------------------------------------------------------------------

// Enumeration of literal kinds.
const (
	LitInt = iota
	LitBool
	LitString
)

// Literal represents a literal value.
type Literal struct {
	ExprBase

	// The kind of the literal: one of the enumerated literal kinds.
	Kind int

	// The source text of the literal.
	Value string

	// The parsed integer value for integer literals.
	IntValue int64

	// The parsed boolean value for boolean literals.
	BoolValue bool
}

// Void represents the `()` expression.
type Void struct {
	ExprBase
}

// Ellipsis represents the `...` filler expression.  It evaluates to a void
// value and satisfies any type, which lets it stand in for unwritten code and
// the bodies of intrinsic definitions.
type Ellipsis struct {
	ExprBase
}

// Name represents a reference to a declared name.
type Name struct {
	ExprBase

	// The name being referenced.
	Name string

	// Whether the name refers to a mutable binding.  Set by the walker.
	Mutable bool
}

// ListLit represents a list display: `[e1, e2, ...]`.
type ListLit struct {
	ExprBase

	// The element expressions, in order.
	Elems []Expr
}

// -----------------------------------------------------------------------------

// Lambda represents a function expression: `fn x, y -> expr`.  Multiple
// parameters spell a curried function.
type Lambda struct {
	ExprBase

	// The parameters of the function, in order.
	Params []*LambdaParam

	// The body expression of the function.
	Body Expr
}

// LambdaParam is a single parameter of a lambda expression.
type LambdaParam struct {
	// The parameter name.
	Name string

	// The span of the parameter name.
	Span *report.TextSpan

	// The inferred type of the parameter.  Set by the walker.
	Type types.Type
}

// Apply represents the application of a function to arguments by
// juxtaposition: `f x y`.
type Apply struct {
	ExprBase

	// The function expression being applied.
	Func Expr

	// The argument expressions, in order.
	Args []Expr

	// Whether the application is saturated: the argument count equals the
	// arity of the applied function.  Saturated applications compile to
	// direct calls; unsaturated ones yield a closure taking the remaining
	// parameters.  Set by the walker.
	Saturated bool
}

// Block represents a `do ... end` expression.  The value of a block is the
// value of its final statement if that statement is an expression and void
// otherwise.
type Block struct {
	ExprBase

	// The statements of the block, in order.
	Stmts []ASTNode
}

// Branch represents an `if/elif/else` expression.  The value of a branch is
// the value of the arm taken.
type Branch struct {
	ExprBase

	// The paths of the branch, in order.  The final path holds a nil Cond if
	// an `else` arm was written.
	Paths []*BranchPath
}

// BranchPath is a single arm of a branch expression.
type BranchPath struct {
	// The arm's condition.  A nil condition marks the `else` arm.
	Cond Expr

	// The arm's body.
	Body *Block
}

// FieldAccess represents a record field selection: `expr.name`.
type FieldAccess struct {
	ExprBase

	// The expression whose field is selected.
	Root Expr

	// The name of the selected field.
	Field string

	// The span of the selected field name.
	FieldSpan *report.TextSpan
}
