package ast

import (
	"chimera/report"
	"chimera/types"
)

// VarStmt represents a `var name = expr` statement introducing a mutable
// binding.  Unlike `let` definitions, `var` bindings are never generalized.
type VarStmt struct {
	ASTBase

	// The name being bound.
	Name string

	// The span of the name being bound.
	NameSpan *report.TextSpan

	// The type annotation of the binding.  This is nil when omitted.
	Ann types.Type

	// The initializer expression.
	Init Expr
}

// AssignStmt represents an assignment to a mutable binding: `name = expr`.
type AssignStmt struct {
	ASTBase

	// The name being assigned to.
	Name string

	// The span of the name being assigned to.
	NameSpan *report.TextSpan

	// The assigned expression.
	Value Expr
}

// LoopStmt represents an infinite `loop ... end` statement.
type LoopStmt struct {
	ASTBase

	// The loop body.
	Body *Block
}

// WhileStmt represents a `while cond do ... end` statement.
type WhileStmt struct {
	ASTBase

	// The loop condition.
	Cond Expr

	// The loop body.
	Body *Block
}

// BreakStmt represents a `break` statement.  It exits exactly one enclosing
// loop.
type BreakStmt struct {
	ASTBase
}
