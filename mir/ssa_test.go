package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatExprRepr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr     FlatExpr
		expected string
	}{
		{&FlatInt{Val: 7}, "7"},
		{&FlatBool{Val: true}, "true"},
		{&FlatBool{Val: false}, "false"},
		{&FlatString{Val: "hi"}, `"hi"`},
		{&FlatVar{Name: "x"}, "x"},
		{&FlatCall{Func: "add", Args: []FlatExpr{&FlatVar{Name: "x"}, &FlatInt{Val: 1}}}, "add(x, 1)"},
		{&FlatLet{Name: "y", Bound: &FlatInt{Val: 2}, Body: &FlatVar{Name: "y"}}, "let y = 2 in y"},
		{
			&FlatBranch{Cond: &FlatVar{Name: "c"}, Then: &FlatInt{Val: 1}, Else: &FlatInt{Val: 0}},
			"if c then 1 else 0",
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, c.expr.Repr())
	}
}

func TestBindConstant(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Bind{Name: "a", Expr: &FlatInt{Val: 1}}).Constant())
	assert.True(t, (&Bind{Name: "b", Expr: &FlatString{Val: "s"}}).Constant())
	assert.False(t, (&Bind{Name: "c", Expr: &FlatCall{Func: "add"}}).Constant())
	assert.False(t, (&Bind{Name: "d", Expr: &FlatVar{Name: "a"}}).Constant())
}

func TestToSSAStraightLine(t *testing.T) {
	t.Parallel()

	fcf := &FCF{
		Funcs: []*Func{{
			Name:   "g",
			Params: []string{"x"},
			Body: &FlatLet{
				Name:  "y",
				Bound: &FlatCall{Func: "add", Args: []FlatExpr{&FlatVar{Name: "x"}, &FlatInt{Val: 1}}},
				Body:  &FlatCall{Func: "mul", Args: []FlatExpr{&FlatVar{Name: "y"}, &FlatVar{Name: "y"}}},
			},
		}},
	}

	expected := `proc g(x):
  entry:
    %0 = const 1
    %1 = call add(x, %0)
    %2 = call mul(%1, %1)
    ret %2
`
	assert.Equal(t, expected, ToSSA(fcf).Repr())
}

func TestToSSANestedBranches(t *testing.T) {
	t.Parallel()

	fcf := &FCF{
		Funcs: []*Func{{
			Name:   "pick",
			Params: []string{"a", "b"},
			Body: &FlatBranch{
				Cond: &FlatVar{Name: "a"},
				Then: &FlatBranch{
					Cond: &FlatVar{Name: "b"},
					Then: &FlatInt{Val: 1},
					Else: &FlatInt{Val: 2},
				},
				Else: &FlatInt{Val: 3},
			},
		}},
	}

	expected := `proc pick(a, b):
  entry:
    condbr a, bb1, bb2
  bb1:
    condbr b, bb3, bb4
  bb2:
    %3 = const 3
    jump bb6(%3)
  bb3:
    %0 = const 1
    jump bb5(%0)
  bb4:
    %1 = const 2
    jump bb5(%1)
  bb5(v2):
    jump bb6(v2)
  bb6(v4):
    ret v4
`
	assert.Equal(t, expected, ToSSA(fcf).Repr())
}

func TestToSSAInitializesDependentBindings(t *testing.T) {
	t.Parallel()

	fcf := &FCF{
		Binds: []*Bind{
			{Name: "p", Expr: &FlatInt{Val: 5}},
			{Name: "q", Expr: &FlatCall{Func: "add", Args: []FlatExpr{&FlatVar{Name: "p"}, &FlatInt{Val: 2}}}},
		},
	}

	expected := `bind p = 5
bind q = add(p, 2)
proc __init():
  entry:
    %0 = const 2
    %1 = call add(@p, %0)
    store @q, %1
    ret
`
	assert.Equal(t, expected, ToSSA(fcf).Repr())
}
