package types

import (
	"testing"

	"chimera/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSpan = &report.TextSpan{}

func TestUnifyPrimitives(t *testing.T) {
	t.Parallel()

	s := NewSolver()
	assert.True(t, s.Unify(PrimInt, PrimInt))
	assert.False(t, s.Unify(PrimInt, PrimBool))
	assert.False(t, s.Unify(PrimString, &ListType{Elem: PrimString}))
}

func TestUnifySolvesTypeVars(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	tv := s.NewTypeVar(testSpan)
	require.True(t, s.Unify(tv, PrimInt))
	assert.True(t, Equals(tv, PrimInt))

	// Substitution works through either side.
	tv2 := s.NewTypeVar(testSpan)
	require.True(t, s.Unify(PrimBool, tv2))
	assert.True(t, Equals(tv2, PrimBool))
}

func TestUnifyLists(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	elem := s.NewTypeVar(testSpan)
	require.True(t, s.Unify(&ListType{Elem: elem}, &ListType{Elem: PrimInt}))
	assert.True(t, Equals(elem, PrimInt))

	assert.False(t, s.Unify(&ListType{Elem: PrimInt}, &ListType{Elem: PrimBool}))
}

func TestUnifyCurriedArrows(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	// `Int -> (Bool -> Int)` and `Int -> Bool -> Int` are the same type.
	curried := &ArrowType{
		Params: []Type{PrimInt},
		Return: &ArrowType{Params: []Type{PrimBool}, Return: PrimInt},
	}
	flat := &ArrowType{Params: []Type{PrimInt, PrimBool}, Return: PrimInt}
	assert.True(t, s.Unify(curried, flat))

	// A shorter arrow's return absorbs the remaining parameters.
	ret := s.NewTypeVar(testSpan)
	partial := &ArrowType{Params: []Type{PrimInt}, Return: ret}
	require.True(t, s.Unify(partial, flat))
	assert.True(t, Equals(ret, &ArrowType{Params: []Type{PrimBool}, Return: PrimInt}))
}

func TestOccursCheckPreventsInfiniteTypes(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	tv := s.NewTypeVar(testSpan)
	assert.False(t, s.Unify(tv, &ListType{Elem: tv}))
	assert.Nil(t, tv.Value)
}

func TestMustUnifyRaisesOnMismatch(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	assert.NotPanics(t, func() { s.MustUnify(PrimInt, PrimInt, testSpan) })
	assert.Panics(t, func() { s.MustUnify(PrimInt, PrimBool, testSpan) })
}

func TestInstantiateFreshensQuantifiedVars(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	q := &TypeVar{ID: -1}
	scheme := &Scheme{
		Quantified: []int{-1},
		Body:       &ArrowType{Params: []Type{q}, Return: q},
	}

	first := s.Instantiate(scheme, testSpan).(*ArrowType)
	second := s.Instantiate(scheme, testSpan).(*ArrowType)

	// Solving one instantiation solves both of its occurrences and leaves
	// other instantiations untouched.
	require.True(t, s.Unify(first.Params[0], PrimInt))
	assert.True(t, Equals(first.Return, PrimInt))
	assert.NotEmpty(t, FreeVars(second))
	assert.Nil(t, q.Value)
}

func TestGeneralizeQuantifiesOnlyLocalVars(t *testing.T) {
	t.Parallel()

	s := NewSolver()

	local := s.NewTypeVar(testSpan)
	outer := s.NewTypeVar(testSpan)
	typ := &ArrowType{Params: []Type{local}, Return: outer}

	scheme := Generalize(typ, []int{outer.ID})
	assert.Equal(t, []int{local.ID}, scheme.Quantified)
	assert.Equal(t, []int{outer.ID}, scheme.FreeVars())
}

func TestResolveRejectsUndeterminedVars(t *testing.T) {
	t.Parallel()

	s := NewSolver()
	s.NewTypeVar(testSpan)
	assert.Panics(t, func() { s.Resolve(nil) })

	// Determined and quantified variables both pass.
	solved := s.NewTypeVar(testSpan)
	require.True(t, s.Unify(solved, PrimInt))
	quantified := s.NewTypeVar(testSpan)
	assert.NotPanics(t, func() { s.Resolve([]int{quantified.ID}) })
}

func TestResolveOnlyCoversPendingVars(t *testing.T) {
	t.Parallel()

	s := NewSolver()
	s.NewTypeVar(testSpan)
	s.DropPending()
	assert.NotPanics(t, func() { s.Resolve(nil) })
}

func TestTypeReprs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		typ      Type
		expected string
	}{
		{PrimVoid, "Void"},
		{PrimBool, "Bool"},
		{PrimInt, "Int"},
		{PrimString, "String"},
		{&ListType{Elem: PrimInt}, "[Int]"},
		{&ArrowType{Params: []Type{PrimInt, PrimBool}, Return: PrimInt}, "Int -> Bool -> Int"},
		{
			&ArrowType{
				Params: []Type{&ArrowType{Params: []Type{PrimInt}, Return: PrimInt}},
				Return: PrimInt,
			},
			"(Int -> Int) -> Int",
		},
		{&NamedType{Name: "Shape"}, "Shape"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, c.typ.Repr())
	}
}

func TestNamedTypesAreNominal(t *testing.T) {
	t.Parallel()

	a := &NamedType{Name: "Shape", ParentID: 1}
	b := &NamedType{Name: "Shape", ParentID: 2}
	c := &NamedType{Name: "Shape", ParentID: 1}

	assert.False(t, Equals(a, b))
	assert.True(t, Equals(a, c))
}
