package mir

import (
	"fmt"
	"strings"

	"chimera/util"
)

// SSA is the final middle form: flat form functions linearized into basic
// blocks of numbered instructions.  Branch results flow through block
// parameters rather than phi instructions.
type SSA struct {
	// Top level bindings, carried over from the flat form.  Non-constant
	// bindings are initialized by the `__init` procedure.
	Binds []*Bind

	// The procedures of the program.
	Procs []*Proc
}

// Proc is a procedure in basic block form.
type Proc struct {
	// The emitted name of the procedure.
	Name string

	// The parameter names, in order.
	Params []string

	// The basic blocks, in layout order.  The first block is the entry.
	Blocks []*Block
}

// Block is a single basic block.
type Block struct {
	// The block label, unique within its procedure.
	Label string

	// The block parameters: values passed by jumps from predecessors.
	Params []string

	// The instructions of the block, in order.
	Instrs []*Instr

	// The block terminator.
	Transfer Transfer
}

// Instr is one numbered instruction.  Instructions producing no value carry
// a negative number.
type Instr struct {
	// The number of the value the instruction defines.
	ID int

	// The operation performed.
	Op Op
}

// -----------------------------------------------------------------------------

// Op represents an SSA operation.
type Op interface {
	Repr() string

	op()
}

// OpInt materializes an integer constant.
type OpInt struct {
	Val int64
}

// OpBool materializes a boolean constant.
type OpBool struct {
	Val bool
}

// OpString materializes a string constant.
type OpString struct {
	Val string
}

// OpCall calls a named procedure or built-in.
type OpCall struct {
	Func string
	Args []Operand
}

// OpStoreGlobal stores a value into a top level binding.  It appears only
// in the `__init` procedure.
type OpStoreGlobal struct {
	Name string
	Src  Operand
}

func (oi *OpInt) op() {}
func (ob *OpBool) op() {}
func (os *OpString) op() {}
func (oc *OpCall) op() {}
func (og *OpStoreGlobal) op() {}

func (oi *OpInt) Repr() string {
	return fmt.Sprintf("const %d", oi.Val)
}

func (ob *OpBool) Repr() string {
	return fmt.Sprintf("const %t", ob.Val)
}

func (os *OpString) Repr() string {
	return fmt.Sprintf("const %q", os.Val)
}

func (oc *OpCall) Repr() string {
	args := util.Map(oc.Args, func(arg Operand) string { return arg.Repr() })
	return fmt.Sprintf("call %s(%s)", oc.Func, strings.Join(args, ", "))
}

func (og *OpStoreGlobal) Repr() string {
	return fmt.Sprintf("store @%s, %s", og.Name, og.Src.Repr())
}

// -----------------------------------------------------------------------------

// Operand represents a value reference in an instruction or transfer.
type Operand interface {
	Repr() string

	operand()
}

// LocalRef refers to the value a numbered instruction defines.
type LocalRef struct {
	ID int
}

// NamedRef refers to a procedure or block parameter by name.
type NamedRef struct {
	Name string
}

// GlobalRef refers to a top level binding.
type GlobalRef struct {
	Name string
}

func (lr *LocalRef) operand() {}
func (nr *NamedRef) operand() {}
func (gr *GlobalRef) operand() {}

func (lr *LocalRef) Repr() string {
	return fmt.Sprintf("%%%d", lr.ID)
}

func (nr *NamedRef) Repr() string {
	return nr.Name
}

func (gr *GlobalRef) Repr() string {
	return "@" + gr.Name
}

// -----------------------------------------------------------------------------

// Transfer represents a block terminator.
type Transfer interface {
	Repr() string

	transfer()
}

// Ret returns from the procedure.  A nil value returns nothing.
type Ret struct {
	Value Operand
}

// Jump transfers to another block, passing its parameters.
type Jump struct {
	Target string
	Args   []Operand
}

// CondBr transfers to one of two blocks on a boolean condition.
type CondBr struct {
	Cond Operand
	Then string
	Else string
}

func (r *Ret) transfer() {}
func (j *Jump) transfer() {}
func (c *CondBr) transfer() {}

func (r *Ret) Repr() string {
	if r.Value == nil {
		return "ret"
	}

	return "ret " + r.Value.Repr()
}

func (j *Jump) Repr() string {
	if len(j.Args) == 0 {
		return "jump " + j.Target
	}

	args := make([]string, len(j.Args))
	for i, arg := range j.Args {
		args[i] = arg.Repr()
	}

	return fmt.Sprintf("jump %s(%s)", j.Target, strings.Join(args, ", "))
}

func (c *CondBr) Repr() string {
	return fmt.Sprintf("condbr %s, %s, %s", c.Cond.Repr(), c.Then, c.Else)
}

// -----------------------------------------------------------------------------

func (ssa *SSA) Repr() string {
	sb := strings.Builder{}

	for _, bind := range ssa.Binds {
		fmt.Fprintf(&sb, "bind %s = %s\n", bind.Name, bind.Expr.Repr())
	}

	for _, proc := range ssa.Procs {
		fmt.Fprintf(&sb, "proc %s(%s):\n", proc.Name, strings.Join(proc.Params, ", "))

		for _, block := range proc.Blocks {
			if len(block.Params) == 0 {
				fmt.Fprintf(&sb, "  %s:\n", block.Label)
			} else {
				fmt.Fprintf(&sb, "  %s(%s):\n", block.Label, strings.Join(block.Params, ", "))
			}

			for _, instr := range block.Instrs {
				if instr.ID < 0 {
					fmt.Fprintf(&sb, "    %s\n", instr.Op.Repr())
				} else {
					fmt.Fprintf(&sb, "    %%%d = %s\n", instr.ID, instr.Op.Repr())
				}
			}

			if block.Transfer != nil {
				fmt.Fprintf(&sb, "    %s\n", block.Transfer.Repr())
			}
		}
	}

	return sb.String()
}

// -----------------------------------------------------------------------------

// ToSSA linearizes the flat form into SSA.  Each function becomes one
// procedure; non-constant top level bindings gather into a synthesized
// `__init` procedure run before main.
func ToSSA(fcf *FCF) *SSA {
	ssa := &SSA{Binds: fcf.Binds}

	var deferred []*Bind
	for _, bind := range fcf.Binds {
		if !bind.Constant() {
			deferred = append(deferred, bind)
		}
	}

	if len(deferred) > 0 {
		ssa.Procs = append(ssa.Procs, buildInitProc(deferred))
	}

	for _, fn := range fcf.Funcs {
		ssa.Procs = append(ssa.Procs, buildProc(fn))
	}

	return ssa
}

// buildInitProc builds the procedure initializing the non-constant top
// level bindings, in definition order.
func buildInitProc(binds []*Bind) *Proc {
	b := newProcBuilder("__init", nil)

	for _, bind := range binds {
		value := b.linearize(bind.Expr, nil)
		b.emitVoid(&OpStoreGlobal{Name: bind.Name, Src: value})
	}

	b.cur.Transfer = &Ret{}
	return b.proc
}

// buildProc linearizes one flat form function.
func buildProc(fn *Func) *Proc {
	b := newProcBuilder(fn.Name, fn.Params)

	scope := make(map[string]Operand, len(fn.Params))
	for _, param := range fn.Params {
		scope[param] = &NamedRef{Name: param}
	}

	result := b.linearize(fn.Body, scope)
	b.cur.Transfer = &Ret{Value: result}
	return b.proc
}

// procBuilder accumulates the blocks of one procedure.
type procBuilder struct {
	proc *Proc
	cur  *Block

	nextLocal int
	nextBlock int
}

func newProcBuilder(name string, params []string) *procBuilder {
	b := &procBuilder{proc: &Proc{Name: name, Params: params}}
	b.cur = b.newBlock("entry")
	return b
}

// newBlock appends a fresh block to the procedure and returns it without
// making it current.
func (b *procBuilder) newBlock(label string, params ...string) *Block {
	if label == "" {
		b.nextBlock++
		label = fmt.Sprintf("bb%d", b.nextBlock)
	}

	block := &Block{Label: label, Params: params}
	b.proc.Blocks = append(b.proc.Blocks, block)
	return block
}

// emit appends a value-producing instruction to the current block.
func (b *procBuilder) emit(op Op) Operand {
	instr := &Instr{ID: b.nextLocal, Op: op}
	b.nextLocal++

	b.cur.Instrs = append(b.cur.Instrs, instr)
	return &LocalRef{ID: instr.ID}
}

// emitVoid appends an instruction producing no value.
func (b *procBuilder) emitVoid(op Op) {
	b.cur.Instrs = append(b.cur.Instrs, &Instr{ID: -1, Op: op})
}

func (b *procBuilder) linearize(expr FlatExpr, scope map[string]Operand) Operand {
	switch v := expr.(type) {
	case *FlatInt:
		return b.emit(&OpInt{Val: v.Val})
	case *FlatBool:
		return b.emit(&OpBool{Val: v.Val})
	case *FlatString:
		return b.emit(&OpString{Val: v.Val})
	case *FlatVar:
		if op, ok := scope[v.Name]; ok {
			return op
		}

		return &GlobalRef{Name: v.Name}
	case *FlatCall:
		args := make([]Operand, len(v.Args))
		for i, arg := range v.Args {
			args[i] = b.linearize(arg, scope)
		}

		return b.emit(&OpCall{Func: v.Func, Args: args})
	case *FlatLet:
		bound := b.linearize(v.Bound, scope)

		inner := make(map[string]Operand, len(scope)+1)
		for name, op := range scope {
			inner[name] = op
		}
		inner[v.Name] = bound

		return b.linearize(v.Body, inner)
	case *FlatBranch:
		return b.linearizeBranch(v, scope)
	default:
		return nil
	}
}

// linearizeBranch lowers a conditional expression: the arms run in blocks
// of their own and pass their results to a merge block as a block
// parameter.
func (b *procBuilder) linearizeBranch(branch *FlatBranch, scope map[string]Operand) Operand {
	cond := b.linearize(branch.Cond, scope)

	thenBlock := b.newBlock("")
	elseBlock := b.newBlock("")
	b.cur.Transfer = &CondBr{Cond: cond, Then: thenBlock.Label, Else: elseBlock.Label}

	b.cur = thenBlock
	thenValue := b.linearize(branch.Then, scope)
	thenExit := b.cur

	b.cur = elseBlock
	elseValue := b.linearize(branch.Else, scope)
	elseExit := b.cur

	param := fmt.Sprintf("v%d", b.nextLocal)
	b.nextLocal++

	merge := b.newBlock("", param)
	thenExit.Transfer = &Jump{Target: merge.Label, Args: []Operand{thenValue}}
	elseExit.Transfer = &Jump{Target: merge.Label, Args: []Operand{elseValue}}

	b.cur = merge
	return &NamedRef{Name: param}
}
