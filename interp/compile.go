package interp

import (
	"chimera/ast"
	"chimera/report"
)

// compiledCode is a unit of executable program: a closure from the runtime
// environment and continuation state to a value.  Compilation walks the
// typed AST once and produces a tree of these closures, so repeated
// execution (loop bodies, function bodies) pays no repeated tree traversal.
type compiledCode func(env *Env, cont *Cont) Value

// applyValue applies a function value to an argument: the argument is bound
// to the parameter in a fresh frame enclosed by the function's closure, and
// the body runs in that frame.
func applyValue(fn, arg Value, cont *Cont) Value {
	fv, ok := fn.(*FuncValue)
	if !ok {
		fault("only functions can be applied.")
	}

	fenv := newEnv(fv.Closure)
	fenv.names[fv.Param] = arg
	return fv.Body(fenv, cont)
}

// -----------------------------------------------------------------------------

// compileExpr compiles an expression to executable code.
func compileExpr(expr ast.Expr) compiledCode {
	switch v := expr.(type) {
	case *ast.Literal:
		return compileLiteral(v)
	case *ast.Void, *ast.Ellipsis:
		return func(_ *Env, _ *Cont) Value { return VoidValue{} }
	case *ast.Name:
		name := v.Name
		return func(env *Env, _ *Cont) Value { return env.getName(name) }
	case *ast.ListLit:
		return compileListLit(v)
	case *ast.Lambda:
		return compileLambda(v)
	case *ast.Apply:
		return compileApply(v)
	case *ast.Block:
		return compileBlock(v)
	case *ast.Branch:
		return compileBranch(v)
	case *ast.FieldAccess:
		return compileFieldAccess(v)
	default:
		report.ReportICE("interp: unexpected expression %T", expr)
		return nil
	}
}

func compileLiteral(lit *ast.Literal) compiledCode {
	switch lit.Kind {
	case ast.LitInt:
		value := IntValue{Val: lit.IntValue}
		return func(_ *Env, _ *Cont) Value { return value }
	case ast.LitBool:
		value := BoolValue{Val: lit.BoolValue}
		return func(_ *Env, _ *Cont) Value { return value }
	case ast.LitString:
		value := StringValue{Val: lit.Value}
		return func(_ *Env, _ *Cont) Value { return value }
	default:
		report.ReportICE("interp: unexpected literal kind %d", lit.Kind)
		return nil
	}
}

func compileListLit(lit *ast.ListLit) compiledCode {
	elems := make([]compiledCode, len(lit.Elems))
	for i, elem := range lit.Elems {
		elems[i] = compileExpr(elem)
	}

	return func(env *Env, cont *Cont) Value {
		values := make([]Value, len(elems))
		for i, elem := range elems {
			values[i] = elem(env, cont)
		}

		var list *ListValue
		for i := len(values) - 1; i >= 0; i-- {
			list = &ListValue{Head: values[i], Tail: list}
		}

		return list
	}
}

// compileLambda compiles a function expression.  A lambda of several
// parameters compiles to a chain of single-parameter functions: applying
// the outer function yields the next one, closed over the argument so far.
func compileLambda(lambda *ast.Lambda) compiledCode {
	body := compileExpr(lambda.Body)

	for i := len(lambda.Params) - 1; i >= 0; i-- {
		param := lambda.Params[i].Name
		inner := body

		body = func(env *Env, _ *Cont) Value {
			// Evaluating a function expression amounts to capturing the
			// current environment for the body's later executions.
			return &FuncValue{Param: param, Body: inner, Closure: env}
		}
	}

	return body
}

func compileApply(apply *ast.Apply) compiledCode {
	fn := compileExpr(apply.Func)

	args := make([]compiledCode, len(apply.Args))
	for i, arg := range apply.Args {
		args[i] = compileExpr(arg)
	}

	return func(env *Env, cont *Cont) Value {
		value := fn(env, cont)
		for _, arg := range args {
			value = applyValue(value, arg(env, cont), cont)
		}

		return value
	}
}

// compileBlock compiles a `do ... end` expression.  The block's statements
// run in a frame of their own; its value is the value of the final
// statement.  A `break` in one of the statements drops the loop count, which
// unwinds the block before its remaining statements run.
func compileBlock(block *ast.Block) compiledCode {
	if len(block.Stmts) == 0 {
		return func(_ *Env, _ *Cont) Value { return VoidValue{} }
	}

	stmts := make([]compiledCode, len(block.Stmts))
	for i, stmt := range block.Stmts {
		stmts[i] = compileStmt(stmt)
	}

	last := stmts[len(stmts)-1]
	stmts = stmts[:len(stmts)-1]

	return func(env *Env, cont *Cont) Value {
		benv := newEnv(env)
		level := cont.loops

		for _, stmt := range stmts {
			stmt(benv, cont)

			if cont.loops != level {
				return VoidValue{}
			}
		}

		return last(benv, cont)
	}
}

func compileBranch(branch *ast.Branch) compiledCode {
	type compiledPath struct {
		cond compiledCode
		body compiledCode
	}

	paths := make([]compiledPath, len(branch.Paths))
	for i, path := range branch.Paths {
		var cond compiledCode
		if path.Cond != nil {
			cond = compileExpr(path.Cond)
		}

		paths[i] = compiledPath{cond: cond, body: compileBlock(path.Body)}
	}

	return func(env *Env, cont *Cont) Value {
		for _, path := range paths {
			if path.cond == nil {
				return path.body(env, cont)
			}

			cond, ok := path.cond(env, cont).(BoolValue)
			if !ok {
				fault("branch condition must be a boolean.")
			}

			if cond.Val {
				return path.body(env, cont)
			}
		}

		return VoidValue{}
	}
}

func compileFieldAccess(fa *ast.FieldAccess) compiledCode {
	root := compileExpr(fa.Root)
	field := fa.Field

	return func(env *Env, cont *Cont) Value {
		cv, ok := root(env, cont).(*ConstrValue)
		if !ok {
			fault("only record values have fields.")
		}

		value, ok := cv.Field(field)
		if !ok {
			fault("`%s` has no field named `%s`.", cv.Name, field)
		}

		return value
	}
}

// -----------------------------------------------------------------------------

// compileStmt compiles a statement to executable code.  Statements which
// yield no value produce void; the value of an expression statement is the
// expression's value, which matters only in final position of a block.
func compileStmt(stmt ast.ASTNode) compiledCode {
	switch v := stmt.(type) {
	case ast.Expr:
		return compileExpr(v)
	case *ast.Definition:
		return compileDefinition(v)
	case *ast.VarStmt:
		return compileVarStmt(v)
	case *ast.AssignStmt:
		return compileAssignStmt(v)
	case *ast.LoopStmt:
		return compileLoop(v.Body, nil)
	case *ast.WhileStmt:
		return compileLoop(v.Body, compileExpr(v.Cond))
	case *ast.BreakStmt:
		return compileBreak()
	default:
		report.ReportICE("interp: unexpected statement %T", stmt)
		return nil
	}
}

// compileDefinition compiles a `let` binding, in nested or top level
// position.  Intrinsic definitions discard their placeholder body and bind
// the named built-in instead.
func compileDefinition(def *ast.Definition) compiledCode {
	name := def.Name

	if def.Attr != nil && def.Attr.Name == "intrinsic" {
		key := def.Attr.Args[0]
		return func(env *Env, _ *Cont) Value {
			env.names[name] = intrinsicValue(key)
			return VoidValue{}
		}
	}

	body := compileExpr(def.Body)
	return func(env *Env, cont *Cont) Value {
		// The binding is inserted after its body evaluates, but recursive
		// functions still work: the body's closure captured this frame, so
		// calls resolve the name once it exists.
		env.names[name] = body(env, cont)
		return VoidValue{}
	}
}

func compileVarStmt(vs *ast.VarStmt) compiledCode {
	name := vs.Name
	init := compileExpr(vs.Init)

	return func(env *Env, cont *Cont) Value {
		env.vars[name] = init(env, cont)
		return VoidValue{}
	}
}

func compileAssignStmt(as *ast.AssignStmt) compiledCode {
	name := as.Name
	value := compileExpr(as.Value)

	return func(env *Env, cont *Cont) Value {
		venv := env.varEnv(name)
		venv.vars[name] = value(env, cont)
		return VoidValue{}
	}
}

// compileLoop compiles a `loop` or `while` statement.  cond is nil for bare
// loops.  The loop counter tracks the level of nested loops being executed:
// `break` drops it by one, which both unwinds the body block and fails the
// loop's continuation test.  The body runs in a fresh frame per iteration.
func compileLoop(body *ast.Block, cond compiledCode) compiledCode {
	bodyCode := compileBlock(body)

	return func(env *Env, cont *Cont) Value {
		cont.loops++
		start := cont.loops

		for start == cont.loops {
			if cond != nil {
				check, ok := cond(env, cont).(BoolValue)
				if !ok {
					fault("loop condition must be a boolean.")
				}

				if !check.Val {
					cont.loops--
					break
				}
			}

			bodyCode(env, cont)
		}

		return VoidValue{}
	}
}

func compileBreak() compiledCode {
	return func(_ *Env, cont *Cont) Value {
		if cont.loops == 0 {
			fault("can only break out of a loop.")
		}

		cont.loops--
		return VoidValue{}
	}
}

// -----------------------------------------------------------------------------

// compileTypeDecl compiles a type declaration to code binding its value
// constructors.  A constant constructor binds its value directly; a record
// constructor binds a function chain that collects the fields.
func compileTypeDecl(decl *ast.TypeDecl) compiledCode {
	return func(env *Env, _ *Cont) Value {
		for _, variant := range decl.Variants {
			if len(variant.Fields) == 0 {
				env.names[variant.Name] = &ConstrValue{Name: variant.Name}
				continue
			}

			fields := make([]string, len(variant.Fields))
			for i, field := range variant.Fields {
				fields[i] = field.Name
			}

			env.names[variant.Name] = makeConstructor(variant.Name, fields)
		}

		return VoidValue{}
	}
}

// makeConstructor builds the function value for a record constructor: one
// parameter per field, producing the constructed value once all fields are
// collected.
func makeConstructor(name string, fields []string) Value {
	body := compiledCode(func(env *Env, _ *Cont) Value {
		values := make([]Value, len(fields))
		for i, field := range fields {
			values[i] = env.getName(field)
		}

		return &ConstrValue{Name: name, FieldNames: fields, Fields: values}
	})

	for i := len(fields) - 1; i >= 1; i-- {
		param := fields[i]
		inner := body

		body = func(env *Env, _ *Cont) Value {
			return &FuncValue{Param: param, Body: inner, Closure: env}
		}
	}

	return &FuncValue{Param: fields[0], Body: body, Closure: newEnv(nil)}
}
