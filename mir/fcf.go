package mir

import (
	"errors"
	"fmt"
	"strings"

	"chimera/ast"
	"chimera/report"
	"chimera/util"
)

// FCF is the flat form of a program: every function lives at the top level
// under a unique name, and every expression is built from literals, name
// references, saturated calls, lets, and branches.  The constructs the flat
// form cannot express are the interpreter-only ones; flattening reports
// them as compile errors.
type FCF struct {
	// Top level value bindings.
	Binds []*Bind

	// Top level functions, including those lifted out of nested position.
	Funcs []*Func
}

// Bind is a top level binding of a non-function value.
type Bind struct {
	// The emitted name of the binding.
	Name string

	// The bound flat expression.
	Expr FlatExpr
}

// Constant returns whether the binding can be emitted as an initialized
// constant, or needs runtime initialization.
func (b *Bind) Constant() bool {
	switch b.Expr.(type) {
	case *FlatInt, *FlatBool, *FlatString:
		return true
	default:
		return false
	}
}

// Func is a top level function of one or more parameters.  Lifted functions
// carry names of the form `__outer_n`.
type Func struct {
	// The emitted name of the function.
	Name string

	// The parameter names, in order.
	Params []string

	// The body expression.
	Body FlatExpr
}

func (fcf *FCF) Repr() string {
	sb := strings.Builder{}

	for _, bind := range fcf.Binds {
		fmt.Fprintf(&sb, "bind %s = %s\n", bind.Name, bind.Expr.Repr())
	}

	for _, fn := range fcf.Funcs {
		fmt.Fprintf(&sb, "func %s(%s) = %s\n", fn.Name, strings.Join(fn.Params, ", "), fn.Body.Repr())
	}

	return sb.String()
}

// -----------------------------------------------------------------------------

// FlatExpr represents a flat form expression.
type FlatExpr interface {
	Repr() string

	flat()
}

// FlatInt is an integer literal.  The unit value also flattens to the zero
// integer: the backend gives every value machine word shape.
type FlatInt struct {
	Val int64
}

// FlatBool is a boolean literal.
type FlatBool struct {
	Val bool
}

// FlatString is a string literal.
type FlatString struct {
	Val string
}

// FlatVar is a reference to a name: a parameter, a let binding, or a top
// level binding.
type FlatVar struct {
	Name string
}

// FlatCall is a saturated call of a named top level function or built-in.
type FlatCall struct {
	// The emitted name of the callee.
	Func string

	// The argument expressions, in order.
	Args []FlatExpr
}

// FlatLet binds a value over a body expression.  Sequenced side effects use
// the name `_`.
type FlatLet struct {
	Name  string
	Bound FlatExpr
	Body  FlatExpr
}

// FlatBranch is a two-way conditional expression.  Multi-arm branches
// flatten into nested ones; a missing else arm becomes the unit value.
type FlatBranch struct {
	Cond FlatExpr
	Then FlatExpr
	Else FlatExpr
}

func (fi *FlatInt) flat() {}
func (fb *FlatBool) flat() {}
func (fs *FlatString) flat() {}
func (fv *FlatVar) flat() {}
func (fc *FlatCall) flat() {}
func (fl *FlatLet) flat() {}
func (fb *FlatBranch) flat() {}

func (fi *FlatInt) Repr() string {
	return fmt.Sprintf("%d", fi.Val)
}

func (fb *FlatBool) Repr() string {
	if fb.Val {
		return "true"
	}

	return "false"
}

func (fs *FlatString) Repr() string {
	return fmt.Sprintf("%q", fs.Val)
}

func (fv *FlatVar) Repr() string {
	return fv.Name
}

func (fc *FlatCall) Repr() string {
	args := util.Map(fc.Args, func(arg FlatExpr) string { return arg.Repr() })
	return fmt.Sprintf("%s(%s)", fc.Func, strings.Join(args, ", "))
}

func (fl *FlatLet) Repr() string {
	return fmt.Sprintf("let %s = %s in %s", fl.Name, fl.Bound.Repr(), fl.Body.Repr())
}

func (fb *FlatBranch) Repr() string {
	return fmt.Sprintf("if %s then %s else %s", fb.Cond.Repr(), fb.Then.Repr(), fb.Else.Repr())
}

// -----------------------------------------------------------------------------

// listIntrinsics are the built-ins whose values live beyond machine words;
// the backend has no shape for them.
var listIntrinsics = map[string]bool{
	"cons": true,
	"head": true,
	"tail": true,
}

// Flatten lowers the core form to the flat form, lifting every nested
// function to the top level.  Constructs outside the backend's reach are
// reported as compile errors against their definition's file.
func Flatten(ccf *CCF) (*FCF, error) {
	fcf := &FCF{}

	ok := true
	for _, def := range ccf.Defs {
		ok = flattenDef(fcf, def) && ok
	}

	mainDef := &Definition{
		Name:    "main",
		Expr:    ccf.Main,
		File:    ccf.MainFile,
		Renames: ccf.MainRenames,
	}
	ok = flattenMain(fcf, mainDef) && ok

	if !ok {
		return nil, errors.New("lowering to the flat form failed")
	}

	return fcf, nil
}

// flattenDef lowers a single definition, reporting any errors against its
// file and recovering at the definition boundary.
func flattenDef(fcf *FCF, def *Definition) (ok bool) {
	defer report.CatchErrors(def.File.AbsPath, def.File.ReprPath)

	f := &flattener{fcf: fcf, def: def}

	if lambda, isFunc := def.Expr.(*ast.Lambda); isFunc {
		params, body := collectParams(lambda)
		fcf.Funcs = append(fcf.Funcs, &Func{
			Name:   def.Name,
			Params: params,
			Body:   f.flattenExpr(body, paramScope(params)),
		})
	} else {
		fcf.Binds = append(fcf.Binds, &Bind{
			Name: def.Name,
			Expr: f.flattenExpr(def.Expr, nil),
		})
	}

	return true
}

// flattenMain lowers the main expression.  A function main keeps its own
// parameters; any other expression is wrapped into a function of one
// ignored parameter, making the program a function from unit to unit.
func flattenMain(fcf *FCF, def *Definition) (ok bool) {
	defer report.CatchErrors(def.File.AbsPath, def.File.ReprPath)

	f := &flattener{fcf: fcf, def: def}

	if lambda, isFunc := def.Expr.(*ast.Lambda); isFunc {
		params, body := collectParams(lambda)
		fcf.Funcs = append(fcf.Funcs, &Func{
			Name:   "main",
			Params: params,
			Body:   f.flattenExpr(body, paramScope(params)),
		})
	} else {
		fcf.Funcs = append(fcf.Funcs, &Func{
			Name:   "main",
			Params: []string{"_"},
			Body:   f.flattenExpr(def.Expr, nil),
		})
	}

	return true
}

// collectParams gathers the parameters of a curried run of lambdas and
// returns the innermost body: `fn x -> fn y -> e` yields the same flat
// function as `fn x, y -> e`.
func collectParams(lambda *ast.Lambda) ([]string, ast.Expr) {
	var params []string

	body := ast.Expr(lambda)
	for {
		inner, isLambda := body.(*ast.Lambda)
		if !isLambda {
			break
		}

		for _, param := range inner.Params {
			params = append(params, param.Name)
		}

		body = inner.Body
	}

	return params, body
}

// -----------------------------------------------------------------------------

// scopeEntry records what a local name resolves to: itself for parameters
// and plain let bindings, or the name of a lifted function.
type scopeEntry struct {
	ref    string
	lifted bool
}

func paramScope(params []string) map[string]scopeEntry {
	scope := make(map[string]scopeEntry, len(params))
	for _, param := range params {
		scope[param] = scopeEntry{ref: param}
	}

	return scope
}

func cloneScope(scope map[string]scopeEntry) map[string]scopeEntry {
	clone := make(map[string]scopeEntry, len(scope)+1)
	for name, entry := range scope {
		clone[name] = entry
	}

	return clone
}

// flattener lowers the expressions of one definition.
type flattener struct {
	fcf *FCF
	def *Definition

	// The number of functions lifted out of this definition so far, for
	// fresh name generation.
	lifted int

	// The local scopes enclosing the function currently being flattened.
	// Names visible here but not in the current scope are captures, which
	// the flat form cannot express.
	enclosing []map[string]scopeEntry
}

func (f *flattener) flattenExpr(expr ast.Expr, scope map[string]scopeEntry) FlatExpr {
	switch v := expr.(type) {
	case *ast.Literal:
		switch v.Kind {
		case ast.LitInt:
			return &FlatInt{Val: v.IntValue}
		case ast.LitBool:
			return &FlatBool{Val: v.BoolValue}
		default:
			return &FlatString{Val: v.Value}
		}
	case *ast.Void, *ast.Ellipsis:
		return &FlatInt{Val: 0}
	case *ast.Name:
		return f.flattenName(v, scope)
	case *ast.Apply:
		return f.flattenApply(v, scope)
	case *ast.Lambda:
		panic(report.Raise(v.Span(), "first-class function values are not supported by the backend"))
	case *ast.Block:
		return f.flattenBlock(v.Stmts, scope)
	case *ast.Branch:
		return f.flattenBranch(v, scope)
	case *ast.ListLit:
		panic(report.Raise(v.Span(), "lists are not supported by the backend"))
	case *ast.FieldAccess:
		panic(report.Raise(v.Span(), "records are not supported by the backend"))
	default:
		report.ReportICE("flatten: unexpected expression %T", expr)
		return nil
	}
}

// flattenName resolves a name reference: local names resolve through the
// scope, package names through the definition's rename table.
func (f *flattener) flattenName(name *ast.Name, scope map[string]scopeEntry) FlatExpr {
	if entry, ok := scope[name.Name]; ok {
		return &FlatVar{Name: entry.ref}
	}

	if emitted, ok := f.def.Renames[name.Name]; ok {
		if emitted == "" {
			panic(report.Raise(name.Span(), "constructors are not supported by the backend"))
		}

		if listIntrinsics[emitted] {
			panic(report.Raise(name.Span(), "lists are not supported by the backend"))
		}

		return &FlatVar{Name: emitted}
	}

	for _, outer := range f.enclosing {
		if _, ok := outer[name.Name]; ok {
			panic(report.Raise(name.Span(), "closures over local state are not supported by the backend"))
		}
	}

	report.ReportICE("flatten: unresolved name `%s`", name.Name)
	return nil
}

func (f *flattener) flattenApply(apply *ast.Apply, scope map[string]scopeEntry) FlatExpr {
	// A function literal applied on the spot reduces to let bindings.
	if lambda, ok := apply.Func.(*ast.Lambda); ok {
		params, body := collectParams(lambda)
		if len(params) != len(apply.Args) {
			panic(report.Raise(apply.Span(), "partial application is not supported by the backend"))
		}

		inner := cloneScope(scope)
		for _, param := range params {
			inner[param] = scopeEntry{ref: param}
		}

		result := f.flattenExpr(body, inner)
		for i := len(params) - 1; i >= 0; i-- {
			result = &FlatLet{
				Name:  params[i],
				Bound: f.flattenExpr(apply.Args[i], scope),
				Body:  result,
			}
		}

		return result
	}

	name, ok := apply.Func.(*ast.Name)
	if !ok {
		panic(report.Raise(apply.Span(), "only named functions can be called in compiled code"))
	}

	if !apply.Saturated {
		panic(report.Raise(apply.Span(), "partial application is not supported by the backend"))
	}

	callee := ""
	if entry, scoped := scope[name.Name]; scoped {
		if !entry.lifted {
			panic(report.Raise(name.Span(), "calling a function value is not supported by the backend"))
		}

		callee = entry.ref
	} else {
		callee = f.flattenName(name, scope).(*FlatVar).Name
	}

	args := make([]FlatExpr, len(apply.Args))
	for i, arg := range apply.Args {
		args[i] = f.flattenExpr(arg, scope)
	}

	return &FlatCall{Func: callee, Args: args}
}

// flattenBlock folds a statement run into nested lets ending in the value
// of the final expression, or the unit value.
func (f *flattener) flattenBlock(stmts []ast.ASTNode, scope map[string]scopeEntry) FlatExpr {
	if len(stmts) == 0 {
		return &FlatInt{Val: 0}
	}

	head, rest := stmts[0], stmts[1:]

	switch v := head.(type) {
	case *ast.Definition:
		if lambda, isFunc := v.Body.(*ast.Lambda); isFunc {
			lifted := f.lift(lambda, scope)

			inner := cloneScope(scope)
			inner[v.Name] = scopeEntry{ref: lifted, lifted: true}
			return f.flattenBlock(rest, inner)
		}

		bound := f.flattenExpr(v.Body, scope)

		inner := cloneScope(scope)
		inner[v.Name] = scopeEntry{ref: v.Name}
		return &FlatLet{Name: v.Name, Bound: bound, Body: f.flattenBlock(rest, inner)}
	case ast.Expr:
		flat := f.flattenExpr(v, scope)
		if len(rest) == 0 {
			return flat
		}

		return &FlatLet{Name: "_", Bound: flat, Body: f.flattenBlock(rest, scope)}
	case *ast.VarStmt, *ast.AssignStmt:
		panic(report.Raise(head.Span(), "mutable state is not supported by the backend"))
	case *ast.LoopStmt, *ast.WhileStmt, *ast.BreakStmt:
		panic(report.Raise(head.Span(), "loops are not supported by the backend"))
	default:
		report.ReportICE("flatten: unexpected statement %T", head)
		return nil
	}
}

func (f *flattener) flattenBranch(branch *ast.Branch, scope map[string]scopeEntry) FlatExpr {
	// Fold the arms right to left: elif chains nest in the else position
	// and a missing else arm yields unit.
	result := FlatExpr(&FlatInt{Val: 0})

	for i := len(branch.Paths) - 1; i >= 0; i-- {
		path := branch.Paths[i]
		body := f.flattenBlock(path.Body.Stmts, scope)

		if path.Cond == nil {
			result = body
			continue
		}

		result = &FlatBranch{
			Cond: f.flattenExpr(path.Cond, scope),
			Then: body,
			Else: result,
		}
	}

	return result
}

// lift turns a nested function into a top level one under a fresh name.
// The lifted body sees its own parameters and package names only; names of
// the lifting scope are captures and fail flattening.
func (f *flattener) lift(lambda *ast.Lambda, scope map[string]scopeEntry) string {
	name := fmt.Sprintf("__%s_%d", f.def.Name, f.lifted)
	f.lifted++

	params, body := collectParams(lambda)

	f.enclosing = append(f.enclosing, scope)
	flatBody := f.flattenExpr(body, paramScope(params))
	f.enclosing = f.enclosing[:len(f.enclosing)-1]

	f.fcf.Funcs = append(f.fcf.Funcs, &Func{Name: name, Params: params, Body: flatBody})
	return name
}
