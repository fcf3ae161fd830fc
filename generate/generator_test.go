package generate

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"chimera/depm"
	"chimera/lower"
	"chimera/mir"
	"chimera/report"
	"chimera/syntax"
	"chimera/types"
	"chimera/walk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	report.InitReporter(report.LogLevelSilent)
	os.Exit(m.Run())
}

// lowerToSSA runs the backend pipeline short of emission on a program.
func lowerToSSA(t *testing.T, src string) *mir.SSA {
	pkg := &depm.ChimPackage{
		ID:          1,
		Name:        "main",
		GlobalTable: depm.NewSymbolTable(),
		Imports:     make(map[string]*depm.ChimPackage),
	}
	depm.SeedPrelude(pkg)

	chFile := &depm.ChimFile{
		Parent:   pkg,
		AbsPath:  "main.chim",
		ReprPath: "main.chim",
	}
	pkg.Files = []*depm.ChimFile{chFile}

	p := syntax.NewParser(chFile, bufio.NewReader(strings.NewReader(src)))
	require.True(t, p.Parse(), "parse failed for source:\n%s", src)

	walk.WalkPackage(pkg)

	ccf, err := lower.Lower(pkg)
	require.NoError(t, err)

	fcf, err := mir.Flatten(ccf)
	require.NoError(t, err)

	return mir.ToSSA(fcf)
}

// emit generates a program and renders the LLVM module as text.
func emit(t *testing.T, src string) string {
	return NewGenerator(lowerToSSA(t, src)).Generate().String()
}

func TestGenerateSimpleProgram(t *testing.T) {
	t.Parallel()

	src := `let inc = fn n -> add n 1

let x = 5

let main ~ dump (inc x)
`
	text := emit(t, src)

	assert.Contains(t, text, "@x = global i64 5")
	assert.Contains(t, text, "define i64 @inc(i64 %n)")
	assert.Contains(t, text, "define i64 @__chim_main(i64 %_)")
	assert.Contains(t, text, "define i32 @main()")
	assert.Contains(t, text, "call i64 @__chim_main(i64 0)")
	assert.Contains(t, text, "ret i32 0")
}

func TestGenerateBranches(t *testing.T) {
	t.Parallel()

	src := `let classify = fn n -> if cmp n 0 then 1 else 2 end

let main ~ dump (classify 0)
`
	text := emit(t, src)

	assert.Contains(t, text, "icmp eq i64")
	assert.Contains(t, text, "zext i1")
	assert.Contains(t, text, "icmp ne i64")
	assert.Contains(t, text, "br i1")
	assert.Contains(t, text, "phi i64 [ 1, %bb1 ], [ 2, %bb2 ]")
}

func TestGenerateStrings(t *testing.T) {
	t.Parallel()

	src := `let greeting = "hello"

let main ~ dump greeting
`
	text := emit(t, src)

	assert.Contains(t, text, "@__strlit.0 = constant [6 x i8]")
	assert.Contains(t, text, "ptrtoint")
	assert.Contains(t, text, "call i64 @chim_dump_str")
	assert.NotContains(t, text, "call i64 @chim_dump(")
}

func TestGenerateInit(t *testing.T) {
	t.Parallel()

	src := `let x = add 2 3

let main ~ dump x
`
	text := emit(t, src)

	assert.Contains(t, text, "@x = global i64 0")
	assert.Contains(t, text, "define void @__init()")
	assert.Contains(t, text, "store i64 %0, i64* @x")
	assert.Contains(t, text, "call void @__init()")
}

func TestMachineType(t *testing.T) {
	t.Parallel()

	intT := types.PrimType(types.PrimInt)

	word, err := MachineType(intT)
	require.NoError(t, err)
	assert.Equal(t, "i64", word.String())

	arrow := &types.ArrowType{
		Params: []types.Type{intT},
		Return: &types.ArrowType{Params: []types.Type{intT}, Return: intT},
	}
	sig, err := MachineType(arrow)
	require.NoError(t, err)
	assert.Equal(t, "i64 (i64, i64)", sig.String())

	_, err = MachineType(&types.ListType{Elem: intT})
	assert.ErrorContains(t, err, "no machine representation")
}

func TestElimDeadBinds(t *testing.T) {
	t.Parallel()

	ssa := &mir.SSA{
		Binds: []*mir.Bind{
			{Name: "dead", Expr: &mir.FlatInt{Val: 1}},
			{Name: "kept", Expr: &mir.FlatInt{Val: 2}},
			{Name: "filled", Expr: &mir.FlatCall{
				Func: "add",
				Args: []mir.FlatExpr{&mir.FlatInt{Val: 1}, &mir.FlatInt{Val: 2}},
			}},
		},
		Procs: []*mir.Proc{
			{
				Name:   "main",
				Params: []string{"_"},
				Blocks: []*mir.Block{
					{
						Label: "entry",
						Instrs: []*mir.Instr{
							{ID: 0, Op: &mir.OpCall{
								Func: "dump",
								Args: []mir.Operand{&mir.GlobalRef{Name: "kept"}},
							}},
						},
						Transfer: &mir.Ret{Value: &mir.LocalRef{ID: 0}},
					},
				},
			},
		},
	}

	elimDeadBinds(ssa)

	require.Len(t, ssa.Binds, 2)
	assert.Equal(t, "kept", ssa.Binds[0].Name)
	assert.Equal(t, "filled", ssa.Binds[1].Name)
}
