// Package lower collects the checked definitions of a package graph into
// the core form the backend pipeline starts from.
package lower

import (
	"chimera/ast"
	"chimera/depm"
	"chimera/mir"
	"chimera/util"
)

// Lower builds the core form of a program rooted at the given package: the
// definitions of the package and everything it imports in dependency order,
// and the root package's main expression.  Definitions of imported packages
// are emitted under qualified names; intrinsic definitions reduce to their
// built-in keys and emit nothing.
func Lower(root *depm.ChimPackage) (*mir.CCF, error) {
	l := &lowerer{root: root, lowered: make(map[uint]bool)}

	ccf := &mir.CCF{}
	l.lowerPackage(root, ccf)

	if ccf.Main == nil {
		return nil, mir.ErrNoMain
	}

	return ccf, nil
}

type lowerer struct {
	root    *depm.ChimPackage
	lowered map[uint]bool
}

// lowerPackage appends a package's definitions to the core form, after
// those of every package it imports.
func (l *lowerer) lowerPackage(pkg *depm.ChimPackage, ccf *mir.CCF) {
	if l.lowered[pkg.ID] {
		return
	}
	l.lowered[pkg.ID] = true

	for _, depName := range util.SortedKeys(pkg.Imports) {
		l.lowerPackage(pkg.Imports[depName], ccf)
	}

	renames := l.buildRenames(pkg)

	for _, chFile := range pkg.Files {
		for _, item := range chFile.Items {
			def, isDef := item.(*ast.Definition)
			if !isDef {
				continue
			}

			sym, _ := pkg.GlobalTable.Lookup(def.Name)
			if sym != nil && sym.Intrinsic != "" {
				continue
			}

			if pkg.ID == l.root.ID && def.Name == "main" {
				ccf.Main = def.Body
				ccf.MainFile = chFile
				ccf.MainRenames = renames
				continue
			}

			ccf.Defs = append(ccf.Defs, &mir.Definition{
				Name:    l.emittedName(pkg, def.Name),
				Expr:    def.Body,
				File:    chFile,
				Renames: renames,
			})
		}
	}
}

// buildRenames maps every name visible at a package's top level onto its
// emitted form: globals onto their qualified names, intrinsics onto their
// built-in keys, and constructors onto the empty marker.  Imported names
// resolve first so the package's own globals shadow them, mirroring the
// checker's lookup order.
func (l *lowerer) buildRenames(pkg *depm.ChimPackage) map[string]string {
	renames := make(map[string]string)

	for _, depName := range util.SortedKeys(pkg.Imports) {
		dep := pkg.Imports[depName]

		for _, name := range dep.GlobalTable.Names() {
			sym, ok := dep.GlobalTable.Lookup(name)
			if !ok || !sym.Public {
				continue
			}

			l.renameSymbol(renames, dep, sym)
		}
	}

	for _, name := range pkg.GlobalTable.Names() {
		sym, ok := pkg.GlobalTable.Lookup(name)
		if !ok {
			continue
		}

		l.renameSymbol(renames, pkg, sym)
	}

	return renames
}

func (l *lowerer) renameSymbol(renames map[string]string, pkg *depm.ChimPackage, sym *depm.Symbol) {
	switch {
	case sym.Intrinsic != "":
		renames[sym.Name] = sym.Intrinsic
	case sym.DefKind == depm.DefKindValue:
		renames[sym.Name] = l.emittedName(pkg, sym.Name)
	case sym.DefKind == depm.DefKindConstr:
		// Constructors have no flat form; the marker lets flattening
		// report them precisely.
		renames[sym.Name] = ""
	}
}

// emittedName qualifies a global's name with its package unless it belongs
// to the root package.
func (l *lowerer) emittedName(pkg *depm.ChimPackage, name string) string {
	if pkg.ID == l.root.ID {
		return name
	}

	return pkg.Name + "." + name
}
