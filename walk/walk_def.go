package walk

import (
	"chimera/ast"
	"chimera/depm"
	"chimera/types"
)

// walkGlobalDefinition checks a top level definition, stores the generalized
// scheme on its global symbol, and resolves every type variable the
// definition created.
func (w *Walker) walkGlobalDefinition(def *ast.Definition) {
	sym, ok := w.chFile.Parent.GlobalTable.Lookup(def.Name)
	if !ok {
		// The parser declares every global before walking begins.
		w.error(def.NameSpan, "the name `%s` is not in scope", def.Name)
	}

	if def.Attr != nil {
		w.applyAttribute(def, sym)
	}

	// Recursive references see the definition as a monotype variable while
	// its own body is being walked.
	recVar := w.solver.NewTypeVar(def.NameSpan)
	sym.Type = recVar

	bodyType := w.walkDefinitionBody(def)
	w.solver.MustUnify(recVar, bodyType, def.NameSpan)

	scheme := types.Generalize(bodyType, w.assumptionFreeVars())
	sym.Type = bodyType
	sym.Scheme = scheme

	w.quantified = append(w.quantified, scheme.Quantified...)
	w.solver.Resolve(w.quantified)
}

// walkNestedDefinition checks a `let` definition appearing as a statement and
// binds it in the current local scope.  Nested definitions are generalized
// like global ones but their type variables are resolved with the enclosing
// top level definition.
func (w *Walker) walkNestedDefinition(def *ast.Definition) {
	recVar := w.solver.NewTypeVar(def.NameSpan)

	sym := &depm.Symbol{
		Name:       def.Name,
		PkgID:      w.chFile.Parent.ID,
		FileNumber: w.chFile.FileNumber,
		DefSpan:    def.NameSpan,
		Type:       recVar,
		DefKind:    depm.DefKindValue,
	}
	w.defineLocal(sym)

	bodyType := w.walkDefinitionBody(def)
	w.solver.MustUnify(recVar, bodyType, def.NameSpan)

	// The binding itself is not part of the enclosing assumptions when its
	// type is generalized.
	sym.Type = nil
	sym.Scheme = types.Generalize(bodyType, w.assumptionFreeVars())
	sym.Type = bodyType

	w.quantified = append(w.quantified, sym.Scheme.Quantified...)
}

// walkDefinitionBody infers the type of a definition's bound expression and
// checks it against the definition's annotation, if any.
func (w *Walker) walkDefinitionBody(def *ast.Definition) types.Type {
	if def.Ann != nil {
		w.resolveOpaques(def.Ann)
	}

	bodyType := w.walkExpr(def.Body)

	if def.Ann != nil {
		if !w.solver.Unify(bodyType, def.Ann) {
			w.error(def.NameSpan, "incompatible annotation")
		}

		bodyType = def.Ann
	}

	return bodyType
}

// The table of valid intrinsic function names.
var intrinsicFuncs = map[string]struct{}{
	"dump":    {},
	"read":    {},
	"cmp":     {},
	"add":     {},
	"sub":     {},
	"mul":     {},
	"div":     {},
	"mod":     {},
	"modulus": {},
	"cons":    {},
	"head":    {},
	"tail":    {},
}

// applyAttribute validates and applies the attribute of a definition.
// Attribute errors are recoverable: the definition is still checked as if it
// carried no attribute.
func (w *Walker) applyAttribute(def *ast.Definition, sym *depm.Symbol) {
	attr := def.Attr

	switch attr.Name {
	case "intrinsic":
		if len(attr.Args) != 1 {
			w.recError(attr.NameSpan, "attribute `intrinsic` takes exactly one argument")
			return
		}

		if _, ok := intrinsicFuncs[attr.Args[0]]; !ok {
			w.recError(attr.NameSpan, "no intrinsic function named `%s`", attr.Args[0])
			return
		}

		sym.Intrinsic = attr.Args[0]
	default:
		w.recError(attr.NameSpan, "unknown attribute `%s`", attr.Name)
	}
}

// -----------------------------------------------------------------------------

// walkTypeDecl builds the named type of a type declaration and the schemes of
// its constructors.  The declared symbol receives its named type before the
// constructor fields are resolved so that recursive types work.
func (w *Walker) walkTypeDecl(td *ast.TypeDecl) {
	typeSym, ok := w.chFile.Parent.GlobalTable.Lookup(td.Name)
	if !ok {
		w.error(td.NameSpan, "the name `%s` is not in scope", td.Name)
	}

	nt := &types.NamedType{Name: td.Name, ParentID: w.chFile.Parent.ID}
	typeSym.Type = nt

	for _, variant := range td.Variants {
		constr := &types.Constr{Name: variant.Name}

		var fieldTypes []types.Type
		for _, field := range variant.Fields {
			w.resolveOpaques(field.Ann)

			constr.Fields = append(constr.Fields, types.ConstrField{
				Name: field.Name,
				Type: field.Ann,
			})
			fieldTypes = append(fieldTypes, field.Ann)
		}

		nt.Constrs = append(nt.Constrs, constr)

		constrSym, ok := w.chFile.Parent.GlobalTable.Lookup(variant.Name)
		if !ok {
			w.error(variant.NameSpan, "the name `%s` is not in scope", variant.Name)
		}

		if len(fieldTypes) == 0 {
			constrSym.Type = nt
			constrSym.Scheme = types.MonoScheme(nt)
		} else {
			arrow := &types.ArrowType{Params: fieldTypes, Return: nt}
			constrSym.Type = arrow
			constrSym.Scheme = types.MonoScheme(arrow)
		}
	}
}

// resolveOpaques resolves every opaque type reference inside typ against the
// visible type declarations.
func (w *Walker) resolveOpaques(typ types.Type) {
	switch v := typ.(type) {
	case *types.ListType:
		w.resolveOpaques(v.Elem)
	case *types.ArrowType:
		for _, param := range v.Params {
			w.resolveOpaques(param)
		}
		w.resolveOpaques(v.Return)
	case *types.OpaqueType:
		if v.Resolved != nil {
			return
		}

		sym := w.lookup(v.Name, v.Span)
		if sym.DefKind != depm.DefKindType {
			w.error(v.Span, "`%s` does not name a type", v.Name)
		}

		v.Resolved = sym.Type
	}
}
