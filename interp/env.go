package interp

import (
	"fmt"
	"io"
)

// Env is one frame of the runtime environment: immutable names, mutable
// vars, and a link to the enclosing frame.  Name resolution walks the chain
// outward, checking names before vars at each frame.
type Env struct {
	names map[string]Value
	vars  map[string]Value
	outer *Env
}

// newEnv creates an empty environment frame enclosed by outer.
func newEnv(outer *Env) *Env {
	return &Env{
		names: make(map[string]Value),
		vars:  make(map[string]Value),
		outer: outer,
	}
}

// getName returns the value bound to name in the nearest frame that binds
// it.  The walker has already ruled out unbound names, so a miss here is a
// runtime fault.
func (env *Env) getName(name string) Value {
	for frame := env; frame != nil; frame = frame.outer {
		if value, ok := frame.names[name]; ok {
			return value
		}

		if value, ok := frame.vars[name]; ok {
			return value
		}
	}

	fault("`%s` is not a defined name.", name)
	return nil
}

// varEnv returns the nearest frame that binds name as a var, so assignment
// can mutate the binding in place.
func (env *Env) varEnv(name string) *Env {
	for frame := env; frame != nil; frame = frame.outer {
		if _, ok := frame.vars[name]; ok {
			return frame
		}
	}

	fault("`%s` is not a defined mutable name.", name)
	return nil
}

// -----------------------------------------------------------------------------

// Cont is the evaluator's continuation state, threaded through every piece
// of compiled code.
type Cont struct {
	// The number of loops currently being executed.  `break` decrements it;
	// a loop exits when the count drops below the level it started at.
	loops uint64

	// The program's input stream.
	in io.Reader

	// The program's output stream.
	out io.Writer
}

// -----------------------------------------------------------------------------

// RuntimeFault is an error produced by a fault during program execution,
// such as taking the head of an empty list.
type RuntimeFault struct {
	// The fault message.
	Msg string
}

func (rf *RuntimeFault) Error() string {
	return rf.Msg
}

// fault aborts execution with a runtime fault.  The panic is recovered at
// the Run boundary.
func fault(msg string, args ...interface{}) {
	panic(&RuntimeFault{Msg: fmt.Sprintf(msg, args...)})
}
