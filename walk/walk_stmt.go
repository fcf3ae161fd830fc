package walk

import (
	"chimera/ast"
	"chimera/depm"
	"chimera/types"
)

// walkBlock checks the statements of a block in a fresh scope.  The type of
// the block is the type of its final statement if that statement is an
// expression and void otherwise.
func (w *Walker) walkBlock(block *ast.Block) types.Type {
	w.pushScope()
	defer w.popScope()

	blockType := types.Type(types.PrimType(types.PrimVoid))
	for i, stmt := range block.Stmts {
		if expr, ok := stmt.(ast.Expr); ok {
			exprType := w.walkExpr(expr)
			if i == len(block.Stmts)-1 {
				blockType = exprType
			}

			continue
		}

		w.walkStmt(stmt)

		if _, ok := stmt.(*ast.BreakStmt); ok && i+1 < len(block.Stmts) {
			w.warn(block.Stmts[i+1].Span(), "unreachable code following `break`")
		}
	}

	return blockType
}

// walkStmt checks a single non-expression statement.
func (w *Walker) walkStmt(stmt ast.ASTNode) {
	switch v := stmt.(type) {
	case *ast.Definition:
		w.walkNestedDefinition(v)
	case *ast.VarStmt:
		w.walkVarStmt(v)
	case *ast.AssignStmt:
		w.walkAssignStmt(v)
	case *ast.LoopStmt:
		w.loopDepth++
		w.walkExpr(v.Body)
		w.loopDepth--
	case *ast.WhileStmt:
		w.solver.MustUnify(types.PrimType(types.PrimBool), w.walkExpr(v.Cond), v.Cond.Span())

		w.loopDepth++
		w.walkExpr(v.Body)
		w.loopDepth--
	case *ast.BreakStmt:
		if w.loopDepth == 0 {
			w.error(v.Span(), "break used outside of a loop")
		}
	}
}

// walkVarStmt checks a mutable binding.  Unlike `let` definitions, `var`
// bindings keep a monotype: mutation and generalization do not mix.
func (w *Walker) walkVarStmt(vs *ast.VarStmt) {
	initType := w.walkExpr(vs.Init)

	if vs.Ann != nil {
		w.resolveOpaques(vs.Ann)

		if !w.solver.Unify(initType, vs.Ann) {
			w.error(vs.NameSpan, "incompatible annotation")
		}

		initType = vs.Ann
	}

	w.defineLocal(&depm.Symbol{
		Name:       vs.Name,
		PkgID:      w.chFile.Parent.ID,
		FileNumber: w.chFile.FileNumber,
		DefSpan:    vs.NameSpan,
		Type:       initType,
		DefKind:    depm.DefKindValue,
		Mutable:    true,
	})
}

// walkAssignStmt checks an assignment to a mutable binding.
func (w *Walker) walkAssignStmt(as *ast.AssignStmt) {
	sym := w.lookup(as.Name, as.NameSpan)

	if !sym.Mutable {
		w.error(as.NameSpan, "cannot assign to immutable name `%s`", as.Name)
	}

	w.solver.MustUnify(sym.Type, w.walkExpr(as.Value), as.Value.Span())
}
