package depm

import (
	"chimera/ast"
)

// ChimFile represents a single Chimera source file.
type ChimFile struct {
	// The package this file belongs to.
	Parent *ChimPackage

	// The absolute path to the file.
	AbsPath string

	// The path to the file to display in error messages.
	ReprPath string

	// The number identifying this file within its parent package.
	FileNumber int

	// The top level items of the file in source order.
	Items []ast.Item
}

// ChimPackage represents a single Chimera package: all the source files in one
// directory sharing a global namespace.
type ChimPackage struct {
	// The unique ID of the package.
	ID uint

	// The name of the package.
	Name string

	// The module this package belongs to.
	Parent *ChimModule

	// The files that make up this package.
	Files []*ChimFile

	// The global symbols of the package.
	GlobalTable *SymbolTable

	// The packages imported by this package, keyed by name.
	Imports map[string]*ChimPackage
}

// ChimModule represents a Chimera module: a directory tree of packages rooted
// at a `chimera.toml` manifest.
type ChimModule struct {
	// The unique ID of the module.
	ID uint

	// The name of the module.
	Name string

	// The absolute path to the root directory of the module.
	AbsPath string

	// The root package of the module.
	RootPackage *ChimPackage

	// Module sub-packages organized by sub-path: the package in `a/b` relative
	// to the module root has the sub-path `a.b`.
	SubPackages map[string]*ChimPackage

	// Whether compilation artifacts of this module should be cached.
	ShouldCache bool
}

// Packages returns all the packages of the module, root package first.
func (mod *ChimModule) Packages() []*ChimPackage {
	pkgs := []*ChimPackage{mod.RootPackage}
	for _, pkg := range mod.SubPackages {
		pkgs = append(pkgs, pkg)
	}

	return pkgs
}
