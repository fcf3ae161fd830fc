package depm

import (
	"chimera/types"
)

// Prelude type variable IDs are negative so they can never collide with the
// non-negative IDs produced by a solver.
const (
	preludeVarA = -1
)

// preludeVar creates the quantified type variable of a prelude scheme.
func preludeVar(id int) *types.TypeVar {
	return &types.TypeVar{ID: id}
}

// monoPrelude produces the scheme of an unquantified prelude symbol.
func monoPrelude(params []types.Type, ret types.Type) *types.Scheme {
	return types.MonoScheme(&types.ArrowType{Params: params, Return: ret})
}

// polyPrelude produces the scheme of a prelude symbol quantified over one
// type variable.
func polyPrelude(params []types.Type, ret types.Type) *types.Scheme {
	return &types.Scheme{
		Quantified: []int{preludeVarA},
		Body:       &types.ArrowType{Params: params, Return: ret},
	}
}

// PreludeSymbols returns fresh symbols for the language intrinsics which are
// in scope in every Chimera package: I/O, comparison, integer arithmetic, and
// list primitives.
func PreludeSymbols() []*Symbol {
	a := preludeVar(preludeVarA)
	listA := &types.ListType{Elem: a}

	intT := types.PrimType(types.PrimInt)
	boolT := types.PrimType(types.PrimBool)
	strT := types.PrimType(types.PrimString)
	voidT := types.PrimType(types.PrimVoid)

	binaryInt := func() *types.Scheme {
		return monoPrelude([]types.Type{intT, intT}, intT)
	}

	schemes := []struct {
		name      string
		scheme    *types.Scheme
		intrinsic string
	}{
		{"dump", polyPrelude([]types.Type{a}, voidT), "dump"},
		{"read", monoPrelude([]types.Type{voidT}, strT), "read"},
		{"cmp", polyPrelude([]types.Type{a, a}, boolT), "cmp"},
		{"add", binaryInt(), "add"},
		{"sub", binaryInt(), "sub"},
		{"mul", binaryInt(), "mul"},
		{"div", binaryInt(), "div"},
		{"mod", binaryInt(), "mod"},
		{"cons", polyPrelude([]types.Type{a, listA}, listA), "cons"},
		{"head", polyPrelude([]types.Type{listA}, a), "head"},
		{"tail", polyPrelude([]types.Type{listA}, listA), "tail"},
	}

	syms := make([]*Symbol, len(schemes))
	for i, entry := range schemes {
		syms[i] = &Symbol{
			Name:       entry.name,
			FileNumber: -1,
			Scheme:     entry.scheme,
			DefKind:    DefKindValue,
			Public:     true,
			Intrinsic:  entry.intrinsic,
		}
	}

	return syms
}

// SeedPrelude declares the prelude symbols into a package's global table.
func SeedPrelude(pkg *ChimPackage) {
	for _, sym := range PreludeSymbols() {
		sym.PkgID = pkg.ID
		pkg.GlobalTable.Define(sym)
	}
}
