package ast

import (
	"chimera/report"
	"chimera/types"
)

// Item represents a top level construct of a source file.
type Item interface {
	ASTNode

	item()
}

// Definition represents a value definition.  Definitions occur both at the
// top level of a file and nested inside blocks: in both positions they
// introduce an immutable, generalized binding.
type Definition struct {
	ASTBase

	// The attribute attached to the definition, if any.
	Attr *Attribute

	// The name being defined.
	Name string

	// The span of the name being defined.
	NameSpan *report.TextSpan

	// The type annotation of the definition.  This is nil when omitted.
	Ann types.Type

	// Whether the definition was marked impure: bound with `~` rather than
	// `=`.
	Impure bool

	// The bound expression.
	Body Expr
}

func (d *Definition) item() {}

// TypeDecl represents an algebraic data type declaration.
type TypeDecl struct {
	ASTBase

	// The declared type name.
	Name string

	// The span of the declared type name.
	NameSpan *report.TextSpan

	// The value constructors of the type, in declaration order.
	Variants []*TypeVariant
}

func (td *TypeDecl) item() {}

// TypeVariant is a single value constructor of a type declaration.
type TypeVariant struct {
	// The constructor name.
	Name string

	// The span of the constructor name.
	NameSpan *report.TextSpan

	// The record fields of the constructor.  Empty for constant constructors.
	Fields []*VariantField
}

// VariantField is a single named field of a type variant.
type VariantField struct {
	// The field name.
	Name string

	// The span of the field name.
	NameSpan *report.TextSpan

	// The annotated field type.
	Ann types.Type
}

// Import represents an `import name` item splicing the public definitions of
// a sibling package into scope.
type Import struct {
	ASTBase

	// The name of the package being imported.
	ModName string

	// The span of the imported name.
	NameSpan *report.TextSpan
}

func (im *Import) item() {}
