package interp

import (
	"fmt"
	"io"
)

// intrinsicValue returns the function value of the named built-in.  These
// are the values bound by `@[intrinsic name]` definitions and seeded for
// the ambient prelude.
func intrinsicValue(name string) Value {
	switch name {
	case "dump":
		return native1("value", func(value Value, cont *Cont) Value {
			fmt.Fprintln(cont.out, value.Repr())
			return VoidValue{}
		})
	case "read":
		return native1("_", func(_ Value, cont *Cont) Value {
			buffer, err := io.ReadAll(cont.in)
			if err != nil {
				fault("error reading from stdin. You are on your own.")
			}

			return StringValue{Val: string(buffer)}
		})
	case "cmp":
		return native2("x", "y", func(x, y Value, _ *Cont) Value {
			return BoolValue{Val: Equals(x, y)}
		})
	case "add":
		return arith2(func(l, r int64) int64 { return l + r })
	case "sub":
		return arith2(func(l, r int64) int64 { return l - r })
	case "mul":
		return arith2(func(l, r int64) int64 { return l * r })
	case "div":
		return native2("x", "y", func(x, y Value, _ *Cont) Value {
			l, r := asInt(x), asInt(y)
			if r == 0 {
				fault("division by zero.")
			}

			return IntValue{Val: l / r}
		})
	case "mod", "modulus":
		return native2("x", "y", func(x, y Value, _ *Cont) Value {
			l, r := asInt(x), asInt(y)
			if r == 0 {
				fault("division by zero.")
			}

			return IntValue{Val: l % r}
		})
	case "cons":
		return native2("elem", "list", func(elem, list Value, _ *Cont) Value {
			lv, ok := list.(*ListValue)
			if !ok {
				fault("can only call cons on a list.")
			}

			return &ListValue{Head: elem, Tail: lv}
		})
	case "head":
		return native1("list", func(list Value, _ *Cont) Value {
			lv, ok := list.(*ListValue)
			if !ok {
				fault("can only get the head of a list.")
			}

			if lv == nil {
				fault("head: empty list.")
			}

			return lv.Head
		})
	case "tail":
		return native1("list", func(list Value, _ *Cont) Value {
			lv, ok := list.(*ListValue)
			if !ok {
				fault("can only get the tail of a list.")
			}

			if lv == nil {
				fault("tail: empty list.")
			}

			return lv.Tail
		})
	default:
		fault("unknown intrinsic `%s`.", name)
		return nil
	}
}

// native1 builds a one-parameter built-in function value.
func native1(param string, f func(Value, *Cont) Value) Value {
	return &FuncValue{
		Param: param,
		Body: func(env *Env, cont *Cont) Value {
			return f(env.getName(param), cont)
		},
		Closure: newEnv(nil),
	}
}

// native2 builds a curried two-parameter built-in function value.
func native2(p1, p2 string, f func(Value, Value, *Cont) Value) Value {
	return &FuncValue{
		Param: p1,
		Body: func(env *Env, _ *Cont) Value {
			return &FuncValue{
				Param: p2,
				Body: func(env *Env, cont *Cont) Value {
					return f(env.getName(p1), env.getName(p2), cont)
				},
				Closure: env,
			}
		},
		Closure: newEnv(nil),
	}
}

// arith2 builds a built-in over two integers.
func arith2(f func(int64, int64) int64) Value {
	return native2("x", "y", func(x, y Value, _ *Cont) Value {
		return IntValue{Val: f(asInt(x), asInt(y))}
	})
}

// asInt unwraps an integer value.
func asInt(value Value) int64 {
	iv, ok := value.(IntValue)
	if !ok {
		fault("arithmetic on a non-integer value.")
	}

	return iv.Val
}
