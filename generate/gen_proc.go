package generate

import (
	"chimera/mir"
	"chimera/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
)

// procGen emits the body of one procedure.  Blocks are generated in layout
// order; transfers only ever target later blocks, so every predecessor of a
// block is finished before the block itself begins.
type procGen struct {
	g    *Generator
	proc *mir.Proc
	fn   *ir.Func

	// blocks maps block labels onto their LLVM blocks.
	blocks map[string]*ir.Block

	// cur is the LLVM block being appended to.
	cur *ir.Block

	// locals maps numbered instruction results onto their values.
	locals map[int]value.Value

	// named maps procedure and block parameters onto their values.
	named map[string]value.Value

	// incomings collects, per target label, the values jumps pass for each
	// of the target's parameters.
	incomings map[string][][]*ir.Incoming

	// strings marks the values known to hold string data, so calls on them
	// can pick the string flavor of the runtime.
	strings map[value.Value]bool
}

func genProc(g *Generator, proc *mir.Proc) {
	pg := &procGen{
		g:         g,
		proc:      proc,
		fn:        g.funcs[proc.Name],
		blocks:    make(map[string]*ir.Block),
		locals:    make(map[int]value.Value),
		named:     make(map[string]value.Value),
		incomings: make(map[string][][]*ir.Incoming),
		strings:   make(map[value.Value]bool),
	}

	for i, param := range proc.Params {
		pg.named[param] = pg.fn.Params[i]
	}

	for _, block := range proc.Blocks {
		pg.blocks[block.Label] = pg.fn.NewBlock(block.Label)
		pg.incomings[block.Label] = make([][]*ir.Incoming, len(block.Params))
	}

	for _, block := range proc.Blocks {
		pg.genBlock(block)
	}
}

func (pg *procGen) genBlock(block *mir.Block) {
	pg.cur = pg.blocks[block.Label]

	// Merge parameters become phis over the values the jumps in have
	// recorded by now.
	for i, param := range block.Params {
		incs := pg.incomings[block.Label][i]

		phi := pg.cur.NewPhi(incs...)
		phi.LocalName = param
		pg.named[param] = phi

		if pg.allStrings(incs) {
			pg.strings[phi] = true
		}
	}

	for _, instr := range block.Instrs {
		pg.genInstr(instr)
	}

	pg.genTransfer(block.Transfer)
}

func (pg *procGen) genInstr(instr *mir.Instr) {
	switch op := instr.Op.(type) {
	case *mir.OpInt:
		pg.setLocal(instr.ID, constant.NewInt(wordType, op.Val))
	case *mir.OpBool:
		pg.setLocal(instr.ID, constant.NewInt(wordType, boolWord(op.Val)))
	case *mir.OpString:
		val := pg.cur.NewPtrToInt(pg.g.internString(op.Val), wordType)
		pg.strings[val] = true
		pg.setLocal(instr.ID, val)
	case *mir.OpCall:
		pg.setLocal(instr.ID, pg.genCall(op))
	case *mir.OpStoreGlobal:
		src := pg.useOperand(op.Src)
		if pg.strings[src] {
			pg.g.strGlobals[op.Name] = true
		}

		pg.cur.NewStore(src, pg.g.globals[op.Name])
	default:
		report.ReportICE("generate: unexpected instruction %T", instr.Op)
	}
}

// genCall lowers a call: the arithmetic and comparison built-ins become
// instructions, the effectful built-ins become runtime calls, and
// everything else resolves to a procedure of the program.
func (pg *procGen) genCall(call *mir.OpCall) value.Value {
	args := make([]value.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = pg.useOperand(arg)
	}

	switch call.Func {
	case "add":
		return pg.cur.NewAdd(args[0], args[1])
	case "sub":
		return pg.cur.NewSub(args[0], args[1])
	case "mul":
		return pg.cur.NewMul(args[0], args[1])
	case "div":
		return pg.cur.NewSDiv(args[0], args[1])
	case "mod", "modulus":
		return pg.cur.NewSRem(args[0], args[1])
	case "cmp":
		if pg.strings[args[0]] && pg.strings[args[1]] {
			return pg.cur.NewCall(pg.g.strEqFunc, args...)
		}

		eq := pg.cur.NewICmp(enum.IPredEQ, args[0], args[1])
		return pg.cur.NewZExt(eq, wordType)
	case "dump":
		if pg.strings[args[0]] {
			return pg.cur.NewCall(pg.g.dumpStrFunc, args[0])
		}

		return pg.cur.NewCall(pg.g.dumpFunc, args[0])
	case "read":
		// The unit argument carries nothing; the runtime takes none.
		return pg.cur.NewCall(pg.g.readFunc)
	}

	fn, ok := pg.g.funcs[call.Func]
	if !ok {
		report.ReportICE("generate: call to undefined procedure `%s`", call.Func)
	}

	return pg.cur.NewCall(fn, args...)
}

func (pg *procGen) genTransfer(transfer mir.Transfer) {
	switch v := transfer.(type) {
	case *mir.Ret:
		if v.Value == nil {
			pg.cur.NewRet(nil)
		} else {
			pg.cur.NewRet(pg.useOperand(v.Value))
		}
	case *mir.Jump:
		for i, arg := range v.Args {
			inc := ir.NewIncoming(pg.useOperand(arg), pg.cur)
			pg.incomings[v.Target][i] = append(pg.incomings[v.Target][i], inc)
		}

		pg.cur.NewBr(pg.blocks[v.Target])
	case *mir.CondBr:
		cond := pg.cur.NewICmp(enum.IPredNE, pg.useOperand(v.Cond), constant.NewInt(wordType, 0))
		pg.cur.NewCondBr(cond, pg.blocks[v.Then], pg.blocks[v.Else])
	default:
		report.ReportICE("generate: unexpected transfer %T", transfer)
	}
}

// useOperand resolves an operand to its value.  Globals are word cells and
// load on every use.
func (pg *procGen) useOperand(op mir.Operand) value.Value {
	switch v := op.(type) {
	case *mir.LocalRef:
		return pg.locals[v.ID]
	case *mir.NamedRef:
		return pg.named[v.Name]
	case *mir.GlobalRef:
		load := pg.cur.NewLoad(wordType, pg.g.globals[v.Name])
		if pg.g.strGlobals[v.Name] {
			pg.strings[load] = true
		}

		return load
	default:
		report.ReportICE("generate: unexpected operand %T", op)
		return nil
	}
}

func (pg *procGen) setLocal(id int, val value.Value) {
	if id >= 0 {
		pg.locals[id] = val
	}
}

func (pg *procGen) allStrings(incs []*ir.Incoming) bool {
	for _, inc := range incs {
		if !pg.strings[inc.X] {
			return false
		}
	}

	return len(incs) > 0
}
