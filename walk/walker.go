package walk

import (
	"chimera/ast"
	"chimera/depm"
	"chimera/report"
	"chimera/types"
)

// Walker is responsible for walking source files and performing semantic
// analysis on their definitions: name resolution, mutability checking, and
// Hindley-Milner type inference.
type Walker struct {
	// The Chimera source file being walked.
	chFile *depm.ChimFile

	// The type solver used for inference in this file.
	solver *types.Solver

	// The stack of local scopes used to look up symbols.  Each scope holds
	// the assumptions introduced by one block or lambda.
	localScopes []map[string]*depm.Symbol

	// The IDs quantified by the schemes of nested definitions inside the
	// current top level definition.  Resolve must treat them as determined.
	quantified []int

	// The number of loops enclosing the current statement.
	loopDepth int
}

// WalkPackage semantically analyzes all the files of a package.  Type
// declarations across the whole package are walked before any definition so
// that definitions may freely reference types declared in sibling files.
func WalkPackage(pkg *depm.ChimPackage) {
	walkers := make([]*Walker, len(pkg.Files))
	for i, chFile := range pkg.Files {
		walkers[i] = &Walker{chFile: chFile, solver: types.NewSolver()}
	}

	for _, w := range walkers {
		for _, item := range w.chFile.Items {
			if td, ok := item.(*ast.TypeDecl); ok {
				w.walkItem(td)
			}
		}
	}

	for _, w := range walkers {
		for _, item := range w.chFile.Items {
			if _, ok := item.(*ast.TypeDecl); !ok {
				w.walkItem(item)
			}
		}
	}
}

// walkItem walks a single top level item and catches any errors that occur.
func (w *Walker) walkItem(item ast.Item) {
	// Reset the walker after recovery so one bad item cannot poison the next:
	// deferred calls run in reverse order.
	defer func() {
		w.solver.DropPending()
		w.localScopes = nil
		w.quantified = nil
		w.loopDepth = 0
	}()
	defer report.CatchErrors(w.chFile.AbsPath, w.chFile.ReprPath)

	switch v := item.(type) {
	case *ast.Definition:
		w.walkGlobalDefinition(v)
	case *ast.TypeDecl:
		w.walkTypeDecl(v)
	case *ast.Import:
		// Import wiring happens before walking; nothing to check here.
	}
}

// -----------------------------------------------------------------------------

// lookup looks up a symbol by name in all visible scopes.  Local scopes are
// traversed innermost first to implement shadowing; then the package's global
// table; then the global tables of every imported package.
func (w *Walker) lookup(name string, span *report.TextSpan) *depm.Symbol {
	for i := len(w.localScopes) - 1; i > -1; i-- {
		if sym, ok := w.localScopes[i][name]; ok {
			return sym
		}
	}

	if sym, ok := w.chFile.Parent.GlobalTable.Lookup(name); ok {
		return sym
	}

	for _, imported := range w.chFile.Parent.Imports {
		if sym, ok := imported.GlobalTable.Lookup(name); ok && sym.Public {
			return sym
		}
	}

	w.error(span, "the name `%s` is not in scope", name)
	return nil
}

// defineLocal defines a local symbol in the current local scope.  Rebinding a
// name already bound in the same scope shadows the earlier binding.
func (w *Walker) defineLocal(sym *depm.Symbol) {
	w.localScopes[len(w.localScopes)-1][sym.Name] = sym
}

// pushScope pushes a new local scope onto the scope stack.
func (w *Walker) pushScope() {
	w.localScopes = append(w.localScopes, make(map[string]*depm.Symbol))
}

// popScope removes the top local scope from the scope stack.
func (w *Walker) popScope() {
	w.localScopes = w.localScopes[:len(w.localScopes)-1]
}

// assumptionFreeVars collects the type variables free in the local
// assumptions.  Generalization must not quantify over them.
func (w *Walker) assumptionFreeVars() []int {
	var free []int
	for _, scope := range w.localScopes {
		for _, sym := range scope {
			if sym.Scheme != nil {
				free = append(free, sym.Scheme.FreeVars()...)
			} else if sym.Type != nil {
				free = append(free, types.FreeVars(sym.Type)...)
			}
		}
	}

	return free
}

// -----------------------------------------------------------------------------

// error reports an error on the given span that aborts walking of the
// current item.
func (w *Walker) error(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(span, msg, args...))
}

// recError reports a recoverable error on the given span.
func (w *Walker) recError(span *report.TextSpan, msg string, args ...interface{}) {
	report.ReportCompileError(
		w.chFile.AbsPath,
		w.chFile.ReprPath,
		span,
		msg,
		args...,
	)
}

// warn reports a compile warning.
func (w *Walker) warn(span *report.TextSpan, msg string, args ...interface{}) {
	report.ReportCompileWarning(
		w.chFile.AbsPath,
		w.chFile.ReprPath,
		span,
		msg,
		args...,
	)
}
