package walk

import (
	"chimera/ast"
	"chimera/depm"
	"chimera/report"
	"chimera/types"
)

// walkExpr infers the type of an expression, stores it on the expression
// node, and returns it.
func (w *Walker) walkExpr(expr ast.Expr) types.Type {
	var typ types.Type

	switch v := expr.(type) {
	case *ast.Literal:
		switch v.Kind {
		case ast.LitInt:
			typ = types.PrimType(types.PrimInt)
		case ast.LitBool:
			typ = types.PrimType(types.PrimBool)
		case ast.LitString:
			typ = types.PrimType(types.PrimString)
		}
	case *ast.Void:
		typ = types.PrimType(types.PrimVoid)
	case *ast.Ellipsis:
		// The filler expression satisfies any type.
		typ = w.solver.NewTypeVar(v.Span())
	case *ast.Name:
		typ = w.walkName(v)
	case *ast.ListLit:
		elemType := types.Type(w.solver.NewTypeVar(v.Span()))
		for _, elem := range v.Elems {
			w.solver.MustUnify(elemType, w.walkExpr(elem), elem.Span())
		}

		typ = &types.ListType{Elem: elemType}
	case *ast.Lambda:
		typ = w.walkLambda(v)
	case *ast.Apply:
		typ = w.walkApply(v)
	case *ast.Block:
		typ = w.walkBlock(v)
	case *ast.Branch:
		typ = w.walkBranch(v)
	case *ast.FieldAccess:
		typ = w.walkFieldAccess(v)
	default:
		report.ReportICE("unknown expression node in walker")
	}

	expr.SetType(typ)
	return typ
}

// walkName applies the variable rule: the scheme of the referenced symbol is
// instantiated with fresh type variables.
func (w *Walker) walkName(name *ast.Name) types.Type {
	sym := w.lookup(name.Name, name.Span())

	if sym.DefKind == depm.DefKindType {
		w.error(name.Span(), "`%s` names a type, not a value", name.Name)
	}

	name.Mutable = sym.Mutable

	if sym.Scheme != nil {
		return w.solver.Instantiate(sym.Scheme, name.Span())
	}

	if sym.Type == nil {
		// Globals are checked in file order: the body of this one has not
		// been walked yet.
		w.error(name.Span(), "the name `%s` is not in scope", name.Name)
	}

	return sym.Type
}

// walkLambda applies the abstraction rule: each parameter is assumed to have
// a fresh type variable (or its annotated type) while the body is walked.
func (w *Walker) walkLambda(lambda *ast.Lambda) types.Type {
	w.pushScope()
	defer w.popScope()

	paramTypes := make([]types.Type, len(lambda.Params))
	for i, param := range lambda.Params {
		if param.Type == nil {
			param.Type = w.solver.NewTypeVar(param.Span)
		} else {
			w.resolveOpaques(param.Type)
		}

		paramTypes[i] = param.Type

		w.defineLocal(&depm.Symbol{
			Name:       param.Name,
			PkgID:      w.chFile.Parent.ID,
			FileNumber: w.chFile.FileNumber,
			DefSpan:    param.Span,
			Type:       param.Type,
			DefKind:    depm.DefKindValue,
		})
	}

	return &types.ArrowType{Params: paramTypes, Return: w.walkExpr(lambda.Body)}
}

// walkApply applies the application rule: the applied expression is unified
// with an arrow from the argument types to a fresh result variable.  The
// application is marked saturated when the argument count matches the arity
// of the applied arrow.
func (w *Walker) walkApply(app *ast.Apply) types.Type {
	fnType := w.walkExpr(app.Func)

	argTypes := make([]types.Type, len(app.Args))
	for i, arg := range app.Args {
		argTypes[i] = w.walkExpr(arg)
	}

	result := w.solver.NewTypeVar(app.Span())
	w.solver.MustUnify(fnType, &types.ArrowType{Params: argTypes, Return: result}, app.Span())

	if arrow, ok := types.InnerType(fnType).(*types.ArrowType); ok {
		app.Saturated = arrow.Arity() == len(app.Args)
	}

	return result
}

// walkBranch checks a branch expression.  A branch with an else arm yields
// the common type of its arms; a branch without one yields void and leaves
// its arm types unconstrained.
func (w *Walker) walkBranch(branch *ast.Branch) types.Type {
	hasElse := branch.Paths[len(branch.Paths)-1].Cond == nil

	var result types.Type
	for _, path := range branch.Paths {
		if path.Cond != nil {
			w.solver.MustUnify(types.PrimType(types.PrimBool), w.walkExpr(path.Cond), path.Cond.Span())
		}

		armType := w.walkExpr(path.Body)

		if !hasElse {
			continue
		}

		if result == nil {
			result = armType
		} else {
			w.solver.MustUnify(result, armType, path.Body.Span())
		}
	}

	if !hasElse {
		return types.PrimType(types.PrimVoid)
	}

	return result
}

// walkFieldAccess checks a record field selection.  The accessed type must
// already be known to be a declared data type.
func (w *Walker) walkFieldAccess(fa *ast.FieldAccess) types.Type {
	rootType := w.walkExpr(fa.Root)

	nt, ok := types.InnerType(rootType).(*types.NamedType)
	if !ok {
		w.error(fa.Span(), "type %s has no fields", rootType.Repr())
	}

	for _, constr := range nt.Constrs {
		for _, field := range constr.Fields {
			if field.Name == fa.Field {
				return field.Type
			}
		}
	}

	w.error(fa.FieldSpan, "type %s has no field `%s`", nt.Repr(), fa.Field)
	return nil
}
