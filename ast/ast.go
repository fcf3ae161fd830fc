package ast

import "chimera/report"

// The abstract interface for all AST nodes.
type ASTNode interface {
	// The text span of the AST node.
	Span() *report.TextSpan
}

// A utility base struct for all AST nodes.
type ASTBase struct {
	// The span over which the AST node occurs.
	span *report.TextSpan
}

// NewASTBaseOn creates a new AST base with the given span.
func NewASTBaseOn(span *report.TextSpan) ASTBase {
	return ASTBase{span: span}
}

// NewASTBaseOver creates a new AST base spanning over two spans.
func NewASTBaseOver(start, end *report.TextSpan) ASTBase {
	return ASTBase{span: report.NewSpanOver(start, end)}
}

func (ab *ASTBase) Span() *report.TextSpan {
	return ab.span
}

// SetSpan widens or replaces the span of the AST node.
func (ab *ASTBase) SetSpan(span *report.TextSpan) {
	ab.span = span
}

// -----------------------------------------------------------------------------

// Attribute represents an `@[name args...]` annotation attached to an item.
type Attribute struct {
	// The name of the attribute.
	Name string

	// The span of the attribute name.
	NameSpan *report.TextSpan

	// The arguments passed to the attribute, in order.
	Args []string
}
