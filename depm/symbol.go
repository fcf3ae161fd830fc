package depm

import (
	"sync"

	"chimera/report"
	"chimera/types"
)

// Symbol represents a Chimera semantic symbol: a named value, constructor, or
// type.
type Symbol struct {
	// The name of the symbol.
	Name string

	// The ID of the package this symbol is defined in.
	PkgID uint

	// The number identifying the file which defines this symbol.
	FileNumber int

	// Where the symbol was defined.
	DefSpan *report.TextSpan

	// The monotype of the symbol.  This is only set for symbols whose
	// definitions are not generalized, such as `var` bindings and lambda
	// parameters.
	Type types.Type

	// The generalized type of the symbol.  This is set once the walker has
	// checked the symbol's definition.
	Scheme *types.Scheme

	// The symbol's kind: what kind of thing this symbol represents.  This
	// must be one of the enumerated definition kinds.
	DefKind int

	// Whether the symbol can be assigned to.
	Mutable bool

	// Whether the symbol is visible to importing packages.
	Public bool

	// The name of the runtime intrinsic backing this symbol, if any.
	Intrinsic string
}

// Enumeration of definition kinds.
const (
	DefKindValue  = iota // Value bindings and functions.
	DefKindType          // Algebraic data types.
	DefKindConstr        // Data type constructors.
)

// -----------------------------------------------------------------------------

// SymbolTable stores the globally declared symbols of a package.  Files of a
// package are parsed concurrently, so declaration is synchronized.
type SymbolTable struct {
	m       sync.Mutex
	symbols map[string]*Symbol
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define adds a symbol to the table.  If a symbol with the same name is
// already defined, the existing symbol is returned along with false.
func (st *SymbolTable) Define(sym *Symbol) (*Symbol, bool) {
	st.m.Lock()
	defer st.m.Unlock()

	if existing, ok := st.symbols[sym.Name]; ok {
		return existing, false
	}

	st.symbols[sym.Name] = sym
	return sym, true
}

// Lookup retrieves the symbol declared under name, if any.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	st.m.Lock()
	defer st.m.Unlock()

	sym, ok := st.symbols[name]
	return sym, ok
}

// Names returns the names declared in the table.
func (st *SymbolTable) Names() []string {
	st.m.Lock()
	defer st.m.Unlock()

	names := make([]string, 0, len(st.symbols))
	for name := range st.symbols {
		names = append(names, name)
	}

	return names
}
