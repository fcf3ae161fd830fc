package walk

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"chimera/ast"
	"chimera/depm"
	"chimera/report"
	"chimera/syntax"
	"chimera/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	report.InitReporter(report.LogLevelSilent)
	os.Exit(m.Run())
}

// walkSource parses and walks src as the single file of a fresh package with
// the prelude in scope.
func walkSource(t *testing.T, src string) *depm.ChimPackage {
	pkg := &depm.ChimPackage{
		ID:          1,
		Name:        "test",
		GlobalTable: depm.NewSymbolTable(),
		Imports:     make(map[string]*depm.ChimPackage),
	}
	depm.SeedPrelude(pkg)

	chFile := &depm.ChimFile{
		Parent:   pkg,
		AbsPath:  "test.chim",
		ReprPath: "test.chim",
	}
	pkg.Files = []*depm.ChimFile{chFile}

	p := syntax.NewParser(chFile, bufio.NewReader(strings.NewReader(src)))
	require.True(t, p.Parse(), "parse failed for source:\n%s", src)

	WalkPackage(pkg)
	return pkg
}

// schemeOf fetches the checked scheme of a global symbol, failing the test if
// the symbol has none: a nil scheme means walking the definition failed.
func schemeOf(t *testing.T, pkg *depm.ChimPackage, name string) *types.Scheme {
	sym, ok := pkg.GlobalTable.Lookup(name)
	require.True(t, ok, "no global symbol %s", name)
	require.NotNil(t, sym.Scheme, "definition of %s failed to check", name)
	return sym.Scheme
}

// failsToCheck reports whether the named definition was aborted by a check
// error.
func failsToCheck(pkg *depm.ChimPackage, name string) bool {
	sym, ok := pkg.GlobalTable.Lookup(name)
	return ok && sym.Scheme == nil
}

func TestWalkLiteralDefinition(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let x = 5\n")

	scheme := schemeOf(t, pkg, "x")
	assert.Empty(t, scheme.Quantified)
	assert.Equal(t, "Int", scheme.Repr())
}

func TestWalkIdentityIsPolymorphic(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let id = fn x -> x\n")

	scheme := schemeOf(t, pkg, "id")
	require.Len(t, scheme.Quantified, 1)

	arrow, ok := types.InnerType(scheme.Body).(*types.ArrowType)
	require.True(t, ok)
	require.Len(t, arrow.Params, 1)
	assert.True(t, types.Equals(arrow.Params[0], arrow.Return))
}

func TestWalkInstantiatesAtEachUse(t *testing.T) {
	t.Parallel()

	src := "let id = fn x -> x\n\nlet a = id 1\n\nlet s = id \"hi\"\n"
	pkg := walkSource(t, src)

	assert.Equal(t, "Int", schemeOf(t, pkg, "a").Repr())
	assert.Equal(t, "String", schemeOf(t, pkg, "s").Repr())
}

func TestWalkSaturationClassification(t *testing.T) {
	t.Parallel()

	src := "let y = add 1 2\n\nlet inc = add 1\n"
	pkg := walkSource(t, src)

	sym, _ := pkg.GlobalTable.Lookup("y")
	require.NotNil(t, sym.Scheme)

	var full, partial *ast.Apply
	for _, chFile := range pkg.Files {
		full = chFile.Items[0].(*ast.Definition).Body.(*ast.Apply)
		partial = chFile.Items[1].(*ast.Definition).Body.(*ast.Apply)
	}

	assert.True(t, full.Saturated)
	assert.False(t, partial.Saturated)

	assert.Equal(t, "Int", schemeOf(t, pkg, "y").Repr())
	assert.Equal(t, "Int -> Int", schemeOf(t, pkg, "inc").Repr())
}

func TestWalkAnnotations(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let n : Int = 5\n")
	assert.Equal(t, "Int", schemeOf(t, pkg, "n").Repr())

	bad := walkSource(t, "let m : Bool = 5\n")
	assert.True(t, failsToCheck(bad, "m"))
}

func TestWalkRecursiveDefinition(t *testing.T) {
	t.Parallel()

	src := "let fac = fn n -> if cmp n 0 then 1 else mul n (fac (sub n 1)) end\n"
	pkg := walkSource(t, src)

	assert.Equal(t, "Int -> Int", schemeOf(t, pkg, "fac").Repr())
}

func TestWalkFunctionFormSignature(t *testing.T) {
	t.Parallel()

	src := "let plus : (a: Int) -> (b: Int) -> Int = add a b\n"
	pkg := walkSource(t, src)

	assert.Equal(t, "Int -> Int -> Int", schemeOf(t, pkg, "plus").Repr())
}

func TestWalkBranchArmsMustAgree(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let b = if true then 1 else 2 end\n")
	assert.Equal(t, "Int", schemeOf(t, pkg, "b").Repr())

	bad := walkSource(t, "let c = if true then 1 else \"x\" end\n")
	assert.True(t, failsToCheck(bad, "c"))
}

func TestWalkListsAndPrimitives(t *testing.T) {
	t.Parallel()

	src := "let l = cons 1 []\n\nlet h = head l\n"
	pkg := walkSource(t, src)

	assert.Equal(t, "[Int]", schemeOf(t, pkg, "l").Repr())
	assert.Equal(t, "Int", schemeOf(t, pkg, "h").Repr())
}

func TestWalkMutationRules(t *testing.T) {
	t.Parallel()

	good := "let f : Void ~\n    var n = 0\n    n = add n 1\n    dump n\nend\n"
	pkg := walkSource(t, good)
	assert.Equal(t, "Void", schemeOf(t, pkg, "f").Repr())

	immutable := "let g : Void ~\n    let n = 0\n    n = 1\n    dump n\nend\n"
	assert.True(t, failsToCheck(walkSource(t, immutable), "g"))

	mistyped := "let h : Void ~\n    var n = 0\n    n = \"one\"\n    dump n\nend\n"
	assert.True(t, failsToCheck(walkSource(t, mistyped), "h"))
}

func TestWalkBreakOutsideLoopFails(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let f : Void ~\n    break\nend\n")
	assert.True(t, failsToCheck(pkg, "f"))
}

func TestWalkDataTypes(t *testing.T) {
	t.Parallel()

	src := `type Pair =
    | P { a : Int, b : Int }
end

let p = P 1 2

let x = p.a
`
	pkg := walkSource(t, src)

	assert.Equal(t, "Pair", schemeOf(t, pkg, "p").Repr())
	assert.Equal(t, "Int", schemeOf(t, pkg, "x").Repr())

	sym, _ := pkg.GlobalTable.Lookup("Pair")
	assert.Equal(t, depm.DefKindType, sym.DefKind)
}

func TestWalkRecursiveDataType(t *testing.T) {
	t.Parallel()

	src := `type Tree =
    | Leaf
    | Node { value : Int, left : Tree, right : Tree }
end

let t = Node 1 Leaf Leaf

let v = t.value
`
	pkg := walkSource(t, src)

	assert.Equal(t, "Tree", schemeOf(t, pkg, "t").Repr())
	assert.Equal(t, "Int", schemeOf(t, pkg, "v").Repr())
}

func TestWalkNameNotInScope(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let z = nope\n")
	assert.True(t, failsToCheck(pkg, "z"))
}

func TestWalkIntrinsicAttribute(t *testing.T) {
	t.Parallel()

	src := "@[intrinsic modulus]\nlet remainder : (a: Int) -> (b: Int) -> Int = ...\n"
	pkg := walkSource(t, src)

	sym, ok := pkg.GlobalTable.Lookup("remainder")
	require.True(t, ok)
	assert.Equal(t, "modulus", sym.Intrinsic)
	assert.Equal(t, "Int -> Int -> Int", schemeOf(t, pkg, "remainder").Repr())
}

func TestWalkInvalidAttributesRecover(t *testing.T) {
	t.Parallel()

	// Attribute errors are reported but the definitions still check as if
	// they carried no attribute.
	src := "@[intrinsic frobnicate]\nlet f : (a: Int) -> Int = ...\n\n@[inline]\nlet g = 1\n"
	pkg := walkSource(t, src)

	f, ok := pkg.GlobalTable.Lookup("f")
	require.True(t, ok)
	assert.Empty(t, f.Intrinsic)
	assert.Equal(t, "Int -> Int", schemeOf(t, pkg, "f").Repr())

	g, ok := pkg.GlobalTable.Lookup("g")
	require.True(t, ok)
	assert.Empty(t, g.Intrinsic)
	assert.Equal(t, "Int", schemeOf(t, pkg, "g").Repr())
}

func TestWalkEllipsisSatisfiesAnnotation(t *testing.T) {
	t.Parallel()

	pkg := walkSource(t, "let stub : Int = ...\n")
	assert.Equal(t, "Int", schemeOf(t, pkg, "stub").Repr())
}
