package generate

import "chimera/mir"

// Pass is one pre-emission rewrite of the SSA form.
type Pass struct {
	// The registered name of the pass.
	Name string

	// Run applies the pass in place.
	Run func(ssa *mir.SSA)
}

// prePasses is the fixed list of passes run before emission, in order.
var prePasses = []Pass{
	{Name: "elim-dead-binds", Run: elimDeadBinds},
}

// PassNames returns the registered pre-emission pass names in run order.
func PassNames() []string {
	names := make([]string, len(prePasses))
	for i, pass := range prePasses {
		names[i] = pass.Name
	}

	return names
}

func runPrePasses(ssa *mir.SSA) {
	for _, pass := range prePasses {
		pass.Run(ssa)
	}
}

// elimDeadBinds drops constant bindings no procedure references.
// Non-constant bindings stay: the init procedure stores into them.
func elimDeadBinds(ssa *mir.SSA) {
	used := make(map[string]bool)

	for _, proc := range ssa.Procs {
		for _, block := range proc.Blocks {
			for _, instr := range block.Instrs {
				switch op := instr.Op.(type) {
				case *mir.OpCall:
					markGlobals(used, op.Args...)
				case *mir.OpStoreGlobal:
					markGlobals(used, op.Src)
				}
			}

			switch tr := block.Transfer.(type) {
			case *mir.Ret:
				if tr.Value != nil {
					markGlobals(used, tr.Value)
				}
			case *mir.Jump:
				markGlobals(used, tr.Args...)
			case *mir.CondBr:
				markGlobals(used, tr.Cond)
			}
		}
	}

	kept := ssa.Binds[:0]
	for _, bind := range ssa.Binds {
		if used[bind.Name] || !bind.Constant() {
			kept = append(kept, bind)
		}
	}

	ssa.Binds = kept
}

func markGlobals(used map[string]bool, operands ...mir.Operand) {
	for _, op := range operands {
		if ref, ok := op.(*mir.GlobalRef); ok {
			used[ref.Name] = true
		}
	}
}
