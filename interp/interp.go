// Package interp executes type-checked packages directly, without invoking
// the backend.  Expressions are compiled once into trees of Go closures and
// then executed against a chain of environment frames, so the evaluator
// never re-traverses the AST.
package interp

import (
	"io"
	"os"

	"chimera/ast"
	"chimera/depm"
)

// Run executes a checked package on the process's standard streams.  The
// package's items are evaluated in order and then its `main` binding, if it
// is a function, is applied to the unit value.
func Run(pkg *depm.ChimPackage) error {
	return RunWith(pkg, os.Stdin, os.Stdout)
}

// RunWith executes a checked package with the given input and output
// streams standing in for the process streams.
func RunWith(pkg *depm.ChimPackage, in io.Reader, out io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rf, ok := r.(*RuntimeFault); ok {
				err = rf
				return
			}

			panic(r)
		}
	}()

	cont := &Cont{in: in, out: out}
	ex := &executor{cont: cont, envs: make(map[uint]*Env)}

	env := ex.runPackage(pkg)

	mainValue, ok := env.names["main"]
	if !ok {
		return &RuntimeFault{Msg: "no main expression was defined."}
	}

	if fn, ok := mainValue.(*FuncValue); ok {
		applyValue(fn, VoidValue{}, cont)
	}

	return nil
}

// -----------------------------------------------------------------------------

// executor tracks the evaluation of a package graph: one environment per
// package, shared between importers.
type executor struct {
	cont *Cont

	// The completed package environments, keyed by package ID.
	envs map[uint]*Env

	// The packages currently being evaluated, for cycle detection.
	running map[uint]bool
}

// runPackage evaluates a package and every package it imports, returning
// the package's global environment.  Each package is evaluated once no
// matter how many importers it has.
func (ex *executor) runPackage(pkg *depm.ChimPackage) *Env {
	if env, ok := ex.envs[pkg.ID]; ok {
		return env
	}

	if ex.running == nil {
		ex.running = make(map[uint]bool)
	}

	if ex.running[pkg.ID] {
		fault("import cycle through package `%s`.", pkg.Name)
	}

	ex.running[pkg.ID] = true
	defer delete(ex.running, pkg.ID)

	// The frame chain grows outward: prelude built-ins at the base, public
	// names of imported packages above them, the package's own names on
	// top.
	importsEnv := newEnv(preludeEnv())
	for _, dep := range pkg.Imports {
		depEnv := ex.runPackage(dep)
		ex.splicePublic(importsEnv, dep, depEnv)
	}

	env := newEnv(importsEnv)

	// Constructors bind before any definition runs, matching the checker's
	// treatment of type declarations as visible to every file.
	for _, chFile := range pkg.Files {
		for _, item := range chFile.Items {
			if decl, ok := item.(*ast.TypeDecl); ok {
				compileTypeDecl(decl)(env, ex.cont)
			}
		}
	}

	for _, chFile := range pkg.Files {
		for _, item := range chFile.Items {
			switch v := item.(type) {
			case *ast.Definition:
				compileDefinition(v)(env, ex.cont)
			case *ast.TypeDecl, *ast.Import:
				// Already handled: constructors above, imports by splicing.
			}
		}
	}

	ex.envs[pkg.ID] = env
	return env
}

// splicePublic copies the public bindings of an evaluated package into an
// importer's import frame.
func (ex *executor) splicePublic(into *Env, dep *depm.ChimPackage, depEnv *Env) {
	for _, name := range dep.GlobalTable.Names() {
		sym, ok := dep.GlobalTable.Lookup(name)
		if !ok || !sym.Public || sym.Intrinsic != "" && sym.FileNumber < 0 {
			continue
		}

		if value, ok := depEnv.names[name]; ok {
			into.names[name] = value
		}
	}
}

// preludeEnv builds the base environment frame holding the ambient
// built-ins every package sees.
func preludeEnv() *Env {
	env := newEnv(nil)
	for _, sym := range depm.PreludeSymbols() {
		env.names[sym.Name] = intrinsicValue(sym.Intrinsic)
	}

	return env
}
