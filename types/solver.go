package types

import (
	"chimera/report"
	"chimera/util"
)

// Solver is the state machine responsible for Hindley-Milner type inference.
// It creates type variables, unifies types as the walker applies inference
// rules, and checks that every variable was determined once a definition has
// been fully walked.  Unification applies substitutions by storing the solved
// type into the variable itself, so all types holding a reference to the
// variable see the solution immediately.
type Solver struct {
	// The type variables created since the last call to Resolve.
	vars []*TypeVar

	// The ID to assign to the next type variable.
	nextID int
}

// NewSolver creates a new type solver.
func NewSolver() *Solver {
	return &Solver{}
}

// NewTypeVar creates a new type variable for the expression spanning span.
func (s *Solver) NewTypeVar(span *report.TextSpan) *TypeVar {
	tv := &TypeVar{ID: s.nextID, Span: span}
	s.nextID++
	s.vars = append(s.vars, tv)
	return tv
}

// Instantiate specializes a scheme into a monotype by replacing its
// quantified variables with fresh type variables.
func (s *Solver) Instantiate(scheme *Scheme, span *report.TextSpan) Type {
	if len(scheme.Quantified) == 0 {
		return scheme.Body
	}

	mapping := make(map[int]Type, len(scheme.Quantified))
	for _, id := range scheme.Quantified {
		mapping[id] = s.NewTypeVar(span)
	}

	return subst(scheme.Body, mapping)
}

// Generalize quantifies typ over every variable free in it but not free in
// the enclosing assumptions, producing a scheme.
func Generalize(typ Type, outerFree []int) *Scheme {
	var quantified []int

	for _, id := range FreeVars(typ) {
		if !util.Contains(outerFree, id) {
			quantified = append(quantified, id)
		}
	}

	return &Scheme{Quantified: quantified, Body: typ}
}

// -----------------------------------------------------------------------------

// MustUnify asserts that two types are equivalent, solving type variables as
// necessary.  It raises a compile error positioned over span on failure.
func (s *Solver) MustUnify(lhs, rhs Type, span *report.TextSpan) {
	if !s.unify(lhs, rhs) {
		panic(report.Raise(span, "type mismatch: %s v. %s", lhs.Repr(), rhs.Repr()))
	}
}

// Unify attempts to make two types equal by substitution and reports whether
// it succeeded.  Callers which want the standard mismatch error should use
// MustUnify instead.
func (s *Solver) Unify(lhs, rhs Type) bool {
	return s.unify(lhs, rhs)
}

// unify attempts to make two types equal by substitution.  It returns false
// if the types cannot be made equal.
func (s *Solver) unify(lhs, rhs Type) bool {
	lhs, rhs = InnerType(lhs), InnerType(rhs)

	if ltv, ok := lhs.(*TypeVar); ok {
		return s.unifyTypeVar(ltv, rhs)
	} else if rtv, ok := rhs.(*TypeVar); ok {
		return s.unifyTypeVar(rtv, lhs)
	}

	switch v := lhs.(type) {
	case PrimType:
		if rpt, ok := rhs.(PrimType); ok {
			return v == rpt
		}
	case *ListType:
		if rlt, ok := rhs.(*ListType); ok {
			return s.unify(v.Elem, rlt.Elem)
		}
	case *ArrowType:
		if rat, ok := rhs.(*ArrowType); ok {
			return s.unifyArrow(v, rat)
		}
	case *NamedType:
		if rnt, ok := rhs.(*NamedType); ok {
			return v.Name == rnt.Name && v.ParentID == rnt.ParentID
		}
	case *OpaqueType:
		if v.Resolved == nil {
			report.ReportICE("unify called on unresolved type reference `%s`", v.Name)
		}

		return s.unify(v.Resolved, rhs)
	}

	if rot, ok := rhs.(*OpaqueType); ok {
		if rot.Resolved == nil {
			report.ReportICE("unify called on unresolved type reference `%s`", rot.Name)
		}

		return s.unify(lhs, rot.Resolved)
	}

	return false
}

// unifyTypeVar unifies an undetermined type variable with a type.
func (s *Solver) unifyTypeVar(tv *TypeVar, typ Type) bool {
	if otv, ok := typ.(*TypeVar); ok && otv.ID == tv.ID {
		return true
	}

	// An infinite type would result, eg. from unifying `T0` with `[T0]`.
	if occurs(tv, typ) {
		return false
	}

	tv.Value = typ
	return true
}

// occurs returns whether tv occurs anywhere within typ.
func occurs(tv *TypeVar, typ Type) bool {
	found := false

	walkVars(typ, func(otv *TypeVar) {
		if otv.ID == tv.ID {
			found = true
		}
	})

	return found
}

// unifyArrow unifies two arrow types curried-wise: if one side expects fewer
// parameters, its return type is unified with the arrow formed by the other
// side's remaining parameters.
func (s *Solver) unifyArrow(lhs, rhs *ArrowType) bool {
	lhs, rhs = spread(lhs), spread(rhs)

	if len(lhs.Params) > len(rhs.Params) {
		lhs, rhs = rhs, lhs
	}

	for i, param := range lhs.Params {
		if !s.unify(param, rhs.Params[i]) {
			return false
		}
	}

	if len(lhs.Params) < len(rhs.Params) {
		rest := &ArrowType{Params: rhs.Params[len(lhs.Params):], Return: rhs.Return}
		return s.unify(lhs.Return, rest)
	}

	return s.unify(lhs.Return, rhs.Return)
}

// -----------------------------------------------------------------------------

// Resolve checks that every type variable created since the last call was
// either determined by unification or quantified by generalization.  It
// raises a compile error on the first undetermined variable found.
func (s *Solver) Resolve(quantified []int) {
	vars := s.vars
	s.vars = nil

	for _, tv := range vars {
		if tv.Value == nil && !util.Contains(quantified, tv.ID) {
			panic(report.Raise(tv.Span, "unable to infer type of expression"))
		}
	}
}

// DropPending discards the type variables of an aborted definition so they
// cannot leak into the resolution of the next one.
func (s *Solver) DropPending() {
	s.vars = nil
}
