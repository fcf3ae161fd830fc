package lower

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"chimera/depm"
	"chimera/mir"
	"chimera/report"
	"chimera/syntax"
	"chimera/walk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	report.InitReporter(report.LogLevelSilent)
	os.Exit(m.Run())
}

// buildPackage parses and checks src as the single file of a package.
func buildPackage(t *testing.T, id uint, name, src string, imports map[string]*depm.ChimPackage) *depm.ChimPackage {
	if imports == nil {
		imports = make(map[string]*depm.ChimPackage)
	}

	pkg := &depm.ChimPackage{
		ID:          id,
		Name:        name,
		GlobalTable: depm.NewSymbolTable(),
		Imports:     imports,
	}
	depm.SeedPrelude(pkg)

	chFile := &depm.ChimFile{
		Parent:   pkg,
		AbsPath:  name + ".chim",
		ReprPath: name + ".chim",
	}
	pkg.Files = []*depm.ChimFile{chFile}

	p := syntax.NewParser(chFile, bufio.NewReader(strings.NewReader(src)))
	require.True(t, p.Parse(), "parse failed for source:\n%s", src)

	walk.WalkPackage(pkg)
	return pkg
}

func TestLowerExtractsMain(t *testing.T) {
	t.Parallel()

	src := `let x = 5

let main ~ dump x
`
	pkg := buildPackage(t, 1, "main", src, nil)

	ccf, err := Lower(pkg)
	require.NoError(t, err)

	require.Len(t, ccf.Defs, 1)
	assert.Equal(t, "x", ccf.Defs[0].Name)
	require.NotNil(t, ccf.Main)
	assert.Equal(t, "x", ccf.MainRenames["x"])
}

func TestLowerRequiresMain(t *testing.T) {
	t.Parallel()

	pkg := buildPackage(t, 1, "main", "let x = 5\n", nil)

	_, err := Lower(pkg)
	assert.ErrorIs(t, err, mir.ErrNoMain)
}

func TestLowerQualifiesImportedDefinitions(t *testing.T) {
	t.Parallel()

	lib := buildPackage(t, 2, "lib", "let shared = 9\n", nil)
	pkg := buildPackage(t, 3, "main", "import lib\n\nlet main ~ dump shared\n",
		map[string]*depm.ChimPackage{"lib": lib})

	ccf, err := Lower(pkg)
	require.NoError(t, err)

	require.Len(t, ccf.Defs, 1)
	assert.Equal(t, "lib.shared", ccf.Defs[0].Name)
	assert.Equal(t, "lib.shared", ccf.MainRenames["shared"])
}

func TestLowerReducesIntrinsicDefinitions(t *testing.T) {
	t.Parallel()

	src := `@[intrinsic modulus]
let remainder : (a: Int) -> (b: Int) -> Int = ...

let main ~ dump (remainder 7 3)
`
	pkg := buildPackage(t, 1, "main", src, nil)

	ccf, err := Lower(pkg)
	require.NoError(t, err)

	assert.Empty(t, ccf.Defs)
	assert.Equal(t, "modulus", ccf.MainRenames["remainder"])
}

func TestLowerCoreFormRendering(t *testing.T) {
	t.Parallel()

	src := `let x = 5

let main ~ dump x
`
	pkg := buildPackage(t, 1, "main", src, nil)

	ccf, err := Lower(pkg)
	require.NoError(t, err)

	repr := ccf.Repr()
	assert.Contains(t, repr, "def x =\n  lit 5 :: Int\n")
	assert.Contains(t, repr, "main =\n")
	assert.Contains(t, repr, "name dump")
}

// -----------------------------------------------------------------------------

// flatten runs the front half of the backend pipeline on a program.
func flatten(t *testing.T, src string) (*mir.FCF, error) {
	pkg := buildPackage(t, 1, "main", src, nil)

	ccf, err := Lower(pkg)
	require.NoError(t, err)

	return mir.Flatten(ccf)
}

func TestFlattenSimpleProgram(t *testing.T) {
	t.Parallel()

	src := `let inc = fn n -> add n 1

let x = 5

let main ~ dump (inc x)
`
	fcf, err := flatten(t, src)
	require.NoError(t, err)

	assert.Equal(t, "bind x = 5\nfunc inc(n) = add(n, 1)\nfunc main(_) = dump(inc(x))\n", fcf.Repr())
}

func TestFlattenCollapsesCurriedLambdas(t *testing.T) {
	t.Parallel()

	src := `let plus = fn a -> fn b -> add a b

let main ~ dump (plus 1 2)
`
	fcf, err := flatten(t, src)
	require.NoError(t, err)

	assert.Equal(t, "func plus(a, b) = add(a, b)\nfunc main(_) = dump(plus(1, 2))\n", fcf.Repr())
}

func TestFlattenLiftsNestedFunctions(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    let double = fn n -> mul n 2
    dump (double 21)
end
`
	fcf, err := flatten(t, src)
	require.NoError(t, err)

	assert.Equal(t, "func __main_0(n) = mul(n, 2)\nfunc main(_) = dump(__main_0(21))\n", fcf.Repr())
}

func TestFlattenReducesAppliedLambdas(t *testing.T) {
	t.Parallel()

	fcf, err := flatten(t, "let main ~ dump ((fn x -> mul x x) 7)\n")
	require.NoError(t, err)

	assert.Equal(t, "func main(_) = dump(let x = 7 in mul(x, x))\n", fcf.Repr())
}

func TestFlattenSequencesBlocks(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    let a = 1
    dump a
    dump (add a 1)
end
`
	fcf, err := flatten(t, src)
	require.NoError(t, err)

	assert.Equal(t, "func main(_) = let a = 1 in let _ = dump(a) in dump(add(a, 1))\n", fcf.Repr())
}

func TestFlattenRejectsInterpreterOnlyConstructs(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"mutation": "let main ~ do\n    var i = 0\n    i = add i 1\n    dump i\nend\n",
		"loops":    "let main ~ do\n    loop\n        break\n    end\nend\n",
		"lists":    "let main ~ dump (cons 1 [])\n",
		"partial application": `let inc = add 1

let main ~ dump (inc 2)
`,
		"records": `type Pair =
    | P { a : Int, b : Int }
end

let main ~ dump (P 1 2)
`,
		"function values": `let twice = fn f -> fn x -> f (f x)

let main ~ dump 0
`,
	}

	for label, src := range sources {
		src := src
		t.Run(label, func(t *testing.T) {
			t.Parallel()

			_, err := flatten(t, src)
			assert.Error(t, err)
		})
	}
}

func TestFlattenRejectsClosureCaptures(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    let n = 10
    let addN = fn m -> add m n
    dump (addN 1)
end
`
	_, err := flatten(t, src)
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestPipelineLinearizesBranches(t *testing.T) {
	t.Parallel()

	src := `let classify = fn n -> if cmp n 0 then 1 else 2 end

let main ~ dump (classify 0)
`
	fcf, err := flatten(t, src)
	require.NoError(t, err)

	ssa := mir.ToSSA(fcf)

	expected := `proc classify(n):
  entry:
    %0 = const 0
    %1 = call cmp(n, %0)
    condbr %1, bb1, bb2
  bb1:
    %2 = const 1
    jump bb3(%2)
  bb2:
    %3 = const 2
    jump bb3(%3)
  bb3(v4):
    ret v4
proc main(_):
  entry:
    %0 = const 0
    %1 = call classify(%0)
    %2 = call dump(%1)
    ret %2
`
	assert.Equal(t, expected, ssa.Repr())
}

func TestPipelineInitializesNonConstantBindings(t *testing.T) {
	t.Parallel()

	src := `let x = add 2 3

let main ~ dump x
`
	fcf, err := flatten(t, src)
	require.NoError(t, err)

	ssa := mir.ToSSA(fcf)

	expected := `bind x = add(2, 3)
proc __init():
  entry:
    %0 = const 2
    %1 = const 3
    %2 = call add(%0, %1)
    store @x, %2
    ret
proc main(_):
  entry:
    %0 = call dump(@x)
    ret %0
`
	assert.Equal(t, expected, ssa.Repr())
}
