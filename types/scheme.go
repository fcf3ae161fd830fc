package types

import "chimera/util"

// Scheme represents a polymorphic type scheme: a type universally quantified
// over a set of type variables.  Monomorphic types are schemes quantified over
// nothing.
type Scheme struct {
	// The IDs of the quantified type variables.
	Quantified []int

	// The body of the scheme.
	Body Type
}

// MonoScheme returns a scheme which quantifies over no variables.
func MonoScheme(typ Type) *Scheme {
	return &Scheme{Body: typ}
}

// FreeVars returns the IDs of the type variables free in the scheme: those
// free in its body and not quantified.
func (s *Scheme) FreeVars() []int {
	var free []int

	for _, id := range FreeVars(s.Body) {
		if !util.Contains(s.Quantified, id) {
			free = append(free, id)
		}
	}

	return free
}

func (s *Scheme) Repr() string {
	return s.Body.Repr()
}

// FreeVars returns the IDs of the undetermined type variables occurring in a
// type.
func FreeVars(typ Type) []int {
	var free []int

	walkVars(typ, func(tv *TypeVar) {
		if !util.Contains(free, tv.ID) {
			free = append(free, tv.ID)
		}
	})

	return free
}

// walkVars calls f on every undetermined type variable occurring in typ.
func walkVars(typ Type, f func(*TypeVar)) {
	switch v := InnerType(typ).(type) {
	case *TypeVar:
		f(v)
	case *ListType:
		walkVars(v.Elem, f)
	case *ArrowType:
		for _, param := range v.Params {
			walkVars(param, f)
		}

		walkVars(v.Return, f)
	case *OpaqueType:
		if v.Resolved != nil {
			walkVars(v.Resolved, f)
		}
	}
}

// subst returns typ with every type variable whose ID appears in mapping
// replaced by its mapped type.
func subst(typ Type, mapping map[int]Type) Type {
	switch v := InnerType(typ).(type) {
	case *TypeVar:
		if mapped, ok := mapping[v.ID]; ok {
			return mapped
		}

		return v
	case *ListType:
		return &ListType{Elem: subst(v.Elem, mapping)}
	case *ArrowType:
		params := make([]Type, len(v.Params))
		for i, param := range v.Params {
			params[i] = subst(param, mapping)
		}

		return &ArrowType{Params: params, Return: subst(v.Return, mapping)}
	case *OpaqueType:
		if v.Resolved != nil {
			return subst(v.Resolved, mapping)
		}

		return v
	default:
		return v
	}
}
