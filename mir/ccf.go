// Package mir defines the chain of middle representations between the typed
// AST and the backend: the core form, the flat form, and the SSA form, along
// with the transformations between them.  Every form renders itself as
// stable text for the driver's emit flags.
package mir

import (
	"errors"
	"strings"

	"chimera/ast"
	"chimera/depm"
)

// ErrNoMain is returned when the root package defines no main binding.
var ErrNoMain = errors.New("no main expression was defined.")

// CCF is the core form of a program: every definition of the package graph
// in dependency order, and the main expression extracted from the root
// package.  The main program is a function from unit to unit evaluating
// that expression.
type CCF struct {
	// The definitions of the program, in evaluation order.
	Defs []*Definition

	// The main expression.
	Main ast.Expr

	// The file that defined the main expression.
	MainFile *depm.ChimFile

	// The name renames of the root package, for resolving references in
	// Main.
	MainRenames map[string]string
}

// Definition is one core form binding: a checked expression under its
// emitted name.
type Definition struct {
	// The emitted name of the definition.  Definitions of imported packages
	// are qualified as `package.name`.
	Name string

	// The bound expression.
	Expr ast.Expr

	// The file the definition came from, for error reporting.
	File *depm.ChimFile

	// Renames maps the names visible to Expr onto their emitted names:
	// package globals onto their qualified names, intrinsic definitions onto
	// their built-in keys, and constructors onto the empty string.  Names
	// absent from the map are local.
	Renames map[string]string
}

func (ccf *CCF) Repr() string {
	sb := strings.Builder{}

	for _, def := range ccf.Defs {
		sb.WriteString("def ")
		sb.WriteString(def.Name)
		sb.WriteString(" =\n")
		sb.WriteString(indentLines(ast.SprintTyped(def.Expr)))
	}

	sb.WriteString("main =\n")
	sb.WriteString(indentLines(ast.SprintTyped(ccf.Main)))

	return sb.String()
}

// indentLines shifts every line of a rendered tree one level right.
func indentLines(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}

	return strings.Join(lines, "\n") + "\n"
}
