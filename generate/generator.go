// Package generate emits LLVM IR for programs in SSA form using llir/llvm.
// The emitted module defines one function per procedure plus a C entry point
// and expects to be linked against a small runtime providing `chim_dump`,
// `chim_dump_str`, `chim_read`, and `chim_str_eq`.
package generate

import (
	"fmt"

	"chimera/mir"
	"chimera/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Generator converts the SSA form of a program into a single LLVM module.
// Every runtime value has machine word shape: integers and booleans
// directly, the unit value as zero, and strings as pointers cast into words.
type Generator struct {
	// ssa is the program being generated.
	ssa *mir.SSA

	// mod is the LLVM module being built.
	mod *ir.Module

	// funcs maps procedure names onto their LLVM functions.  The main
	// procedure is keyed under its own name but emitted as `__chim_main`.
	funcs map[string]*ir.Func

	// globals maps top level binding names onto their word cells.
	globals map[string]*ir.Global

	// strGlobals marks the bindings holding string data.
	strGlobals map[string]bool

	// strCounter numbers the interned string literals.
	strCounter int

	// The runtime boundary functions.
	dumpFunc    *ir.Func
	dumpStrFunc *ir.Func
	readFunc    *ir.Func
	strEqFunc   *ir.Func
}

// NewGenerator creates a generator for a program in SSA form.
func NewGenerator(ssa *mir.SSA) *Generator {
	return &Generator{
		ssa:        ssa,
		mod:        ir.NewModule(),
		funcs:      make(map[string]*ir.Func),
		globals:    make(map[string]*ir.Global),
		strGlobals: make(map[string]bool),
	}
}

// Generate runs the pre-emission passes and emits the module.  The forms
// reaching the generator are fully checked, so generation is assumed to
// succeed: any failure here is an internal error.
func (g *Generator) Generate() *ir.Module {
	runPrePasses(g.ssa)

	g.declareRuntime()
	g.genBinds()
	g.declareProcs()

	for _, proc := range g.ssa.Procs {
		genProc(g, proc)
	}

	g.genEntry()

	return g.mod
}

// declareRuntime declares the external runtime functions.  The runtime
// works in words like everything else; functions without a meaningful
// result return zero.
func (g *Generator) declareRuntime() {
	g.dumpFunc = g.mod.NewFunc("chim_dump", wordType, ir.NewParam("value", wordType))
	g.dumpStrFunc = g.mod.NewFunc("chim_dump_str", wordType, ir.NewParam("value", wordType))
	g.readFunc = g.mod.NewFunc("chim_read", wordType)
	g.strEqFunc = g.mod.NewFunc("chim_str_eq", wordType, ir.NewParam("a", wordType), ir.NewParam("b", wordType))
}

// genBinds emits the top level bindings.  Constant bindings are emitted
// initialized; the rest start at zero and are filled in by `__init`.
func (g *Generator) genBinds() {
	for _, bind := range g.ssa.Binds {
		var init constant.Constant

		switch v := bind.Expr.(type) {
		case *mir.FlatInt:
			init = constant.NewInt(wordType, v.Val)
		case *mir.FlatBool:
			init = constant.NewInt(wordType, boolWord(v.Val))
		case *mir.FlatString:
			init = constant.NewPtrToInt(g.internString(v.Val), wordType)
			g.strGlobals[bind.Name] = true
		default:
			init = constant.NewInt(wordType, 0)
		}

		g.globals[bind.Name] = g.mod.NewGlobalDef(bind.Name, init)
	}
}

// internString emits the data of one string literal as a NUL terminated
// character array.
func (g *Generator) internString(val string) *ir.Global {
	data := g.mod.NewGlobalDef(
		fmt.Sprintf("__strlit.%d", g.strCounter),
		constant.NewCharArrayFromString(val+"\x00"),
	)
	g.strCounter++

	data.Immutable = true
	return data
}

// declareProcs declares every procedure before any body is generated so
// calls can reference procedures defined later in the program.
func (g *Generator) declareProcs() {
	for _, proc := range g.ssa.Procs {
		params := make([]*ir.Param, len(proc.Params))
		for i, param := range proc.Params {
			params[i] = ir.NewParam(param, wordType)
		}

		retType := types.Type(wordType)
		if proc.Name == "__init" {
			retType = types.Void
		}

		fn := g.mod.NewFunc(emittedProcName(proc.Name), retType, params...)
		fn.Linkage = enum.LinkageExternal
		g.funcs[proc.Name] = fn
	}
}

// emittedProcName renames the main procedure out of the way of the C entry
// point the module also defines.
func emittedProcName(name string) string {
	if name == "main" {
		return "__chim_main"
	}

	return name
}

// genEntry emits the C entry point: it runs the binding initializer when
// one exists, then applies the program's main function to the unit value.
func (g *Generator) genEntry() {
	mainProc, ok := g.funcs["main"]
	if !ok {
		report.ReportICE("generate: program has no main procedure")
	}

	entry := g.mod.NewFunc("main", types.I32).NewBlock("entry")

	if initProc, hasInit := g.funcs["__init"]; hasInit {
		entry.NewCall(initProc)
	}

	args := make([]value.Value, len(mainProc.Params))
	for i := range args {
		args[i] = constant.NewInt(wordType, 0)
	}
	entry.NewCall(mainProc, args...)

	entry.NewRet(constant.NewInt(types.I32, 0))
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
