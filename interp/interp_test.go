package interp

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"testing"

	"chimera/depm"
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
func buildPackage(t *testing.T, id uint, name, src string) *depm.ChimPackage {
	pkg := &depm.ChimPackage{
		ID:          id,
		Name:        name,
		GlobalTable: depm.NewSymbolTable(),
		Imports:     make(map[string]*depm.ChimPackage),
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

// runProgram builds and executes src, returning everything it printed.
func runProgram(t *testing.T, src, input string) (string, error) {
	pkg := buildPackage(t, 1, "main", src)

	out := bytes.Buffer{}
	err := RunWith(pkg, strings.NewReader(input), &out)
	return out.String(), err
}

func TestRunDumpsValues(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    dump 42
    dump true
    dump "hi"
    dump (cons 1 (cons 2 []))
    dump (tail (cons 1 []))
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "42\ntrue\nhi\n[1, 2]\n[]\n", out)
}

func TestRunAppliesMainFunction(t *testing.T) {
	t.Parallel()

	out, err := runProgram(t, "let main = fn _ -> dump \"ran\"\n", "")
	require.NoError(t, err)
	assert.Equal(t, "ran\n", out)
}

func TestRunRequiresMain(t *testing.T) {
	t.Parallel()

	_, err := runProgram(t, "let x = 5\n", "")
	assert.EqualError(t, err, "no main expression was defined.")
}

func TestRunRecursion(t *testing.T) {
	t.Parallel()

	src := `let fac = fn n -> if cmp n 0 then 1 else mul n (fac (sub n 1)) end

let main ~ dump (fac 5)
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "120\n", out)
}

func TestRunClosuresCaptureTheirEnvironment(t *testing.T) {
	t.Parallel()

	src := `let adder = fn n -> fn m -> add n m

let main ~ do
    let addFive = adder 5
    dump (addFive 2)
    dump (addFive 10)
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "7\n15\n", out)
}

func TestRunWhileLoop(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    var i = 0
    while cmp (cmp i 3) false do
        dump i
        i = add i 1
    end
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestRunLoopWithBreak(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    var i = 0
    loop
        dump i
        i = add i 1
        if cmp i 3 then
            break
        end
    end
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestRunBreakSkipsRestOfBlock(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    var i = 0
    loop
        i = add i 1
        if cmp i 2 then
            break
            dump 99
        end
        dump i
    end
    dump i
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestRunLoopBodyScopePerIteration(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    var x = 1
    var i = 0
    while cmp (cmp i 2) false do
        var x = add i 10
        dump x
        i = add i 1
    end
    dump x
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "10\n11\n1\n", out)
}

func TestRunBlockValues(t *testing.T) {
	t.Parallel()

	src := `let main ~ do
    let x = do
        let y = 2
        mul y 3
    end
    dump x
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestRunDataTypes(t *testing.T) {
	t.Parallel()

	src := `type Pair =
    | P { a : Int, b : Int }
end

let main ~ do
    let p = P 1 2
    dump p
    dump p.a
    dump (cmp p (P 1 2))
    dump (cmp p (P 1 3))
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "P { a: 1, b: 2 }\n1\ntrue\nfalse\n", out)
}

func TestRunConstantConstructors(t *testing.T) {
	t.Parallel()

	src := `type Color =
    | Red
    | Green
end

let main ~ do
    dump Red
    dump (cmp Red Green)
end
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "Red\nfalse\n", out)
}

func TestRunIntrinsicAttribute(t *testing.T) {
	t.Parallel()

	src := `@[intrinsic modulus]
let remainder : (a: Int) -> (b: Int) -> Int = ...

let main ~ dump (remainder 7 3)
`
	out, err := runProgram(t, src, "")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestRunReadsInput(t *testing.T) {
	t.Parallel()

	out, err := runProgram(t, "let main ~ dump (read ())\n", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunHeadOfEmptyListFaults(t *testing.T) {
	t.Parallel()

	_, err := runProgram(t, "let main ~ dump (head (tail (cons 1 [])))\n", "")
	assert.EqualError(t, err, "head: empty list.")
}

func TestRunDivisionByZeroFaults(t *testing.T) {
	t.Parallel()

	_, err := runProgram(t, "let main ~ dump (div 1 0)\n", "")
	assert.EqualError(t, err, "division by zero.")
}

func TestRunImportedDefinitions(t *testing.T) {
	t.Parallel()

	lib := buildPackage(t, 2, "lib", "let shared = 9\n")

	pkg := &depm.ChimPackage{
		ID:          3,
		Name:        "main",
		GlobalTable: depm.NewSymbolTable(),
		Imports:     map[string]*depm.ChimPackage{"lib": lib},
	}
	depm.SeedPrelude(pkg)

	chFile := &depm.ChimFile{
		Parent:   pkg,
		AbsPath:  "main.chim",
		ReprPath: "main.chim",
	}
	pkg.Files = []*depm.ChimFile{chFile}

	src := "import lib\n\nlet main ~ dump shared\n"
	p := syntax.NewParser(chFile, bufio.NewReader(strings.NewReader(src)))
	require.True(t, p.Parse())
	walk.WalkPackage(pkg)

	out := bytes.Buffer{}
	err := RunWith(pkg, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Equal(t, "9\n", out.String())
}

func TestValueEquality(t *testing.T) {
	t.Parallel()

	assert.True(t, Equals(IntValue{Val: 3}, IntValue{Val: 3}))
	assert.False(t, Equals(IntValue{Val: 3}, BoolValue{Val: true}))
	assert.True(t, Equals(VoidValue{}, VoidValue{}))

	abc := &ListValue{Head: IntValue{Val: 1}, Tail: &ListValue{Head: IntValue{Val: 2}}}
	assert.True(t, Equals(abc, &ListValue{Head: IntValue{Val: 1}, Tail: &ListValue{Head: IntValue{Val: 2}}}))
	assert.False(t, Equals(abc, abc.Tail))

	fn := &FuncValue{Param: "x"}
	assert.False(t, Equals(fn, fn))
}
