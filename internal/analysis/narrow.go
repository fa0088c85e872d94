package analysis

import (
	"strings"

	"phpc/internal/bound"
	"phpc/internal/flow"
	"phpc/internal/phpsyntax"
	"phpc/internal/types"
)

// typePredicates maps the is_* functions to the reference kinds they accept.
var typePredicates = map[string][]types.RefKind{
	"is_int":      {types.RefLong},
	"is_integer":  {types.RefLong},
	"is_long":     {types.RefLong},
	"is_float":    {types.RefDouble},
	"is_double":   {types.RefDouble},
	"is_string":   {types.RefString},
	"is_bool":     {types.RefBool},
	"is_array":    {types.RefArray},
	"is_null":     {types.RefNull},
	"is_object":   {types.RefObject, types.RefClass},
	"is_callable": {types.RefCallable, types.RefString, types.RefArray, types.RefObject, types.RefClass},
	"is_scalar":   {types.RefLong, types.RefDouble, types.RefString, types.RefBool},
	"is_numeric":  {types.RefLong, types.RefDouble, types.RefString},
	"is_iterable": {types.RefArray, types.RefObject, types.RefClass},
}

func kindOf(kinds []types.RefKind) func(types.TypeRef) bool {
	return func(r types.TypeRef) bool {
		for _, k := range kinds {
			if r.Kind == k {
				return true
			}
		}
		return false
	}
}

// narrow splits st into the states under which cond is true and false. The
// input state is never modified.
func (w *blockWalker) narrow(cond bound.Expression, st *flow.State) (t, f *flow.State) {
	switch c := cond.(type) {
	case *bound.UnaryEx:
		if c.Op == bound.UnaryNot {
			f, t = w.narrow(c.Operand, st)
			return t, f
		}
	case *bound.BinaryEx:
		switch c.Op {
		case bound.OpAnd:
			lt, lf := w.narrow(c.Left, st)
			rt, rf := w.narrow(c.Right, lt)
			return rt, flow.Merge(lf, rf)
		case bound.OpOr:
			lt, lf := w.narrow(c.Left, st)
			rt, rf := w.narrow(c.Right, lf)
			return flow.Merge(lt, rt), rf
		case bound.OpIdentical, bound.OpNotIdentical:
			if v := nullComparison(c); v != nil {
				t, f = w.narrowNull(v, st)
				if c.Op == bound.OpNotIdentical {
					t, f = f, t
				}
				return t, f
			}
		}
	case *bound.InstanceOf:
		if v := slotted(c.Operand); v != nil {
			return w.narrowInstanceOf(v, c.Class, st)
		}
	case *bound.GlobalFunctionCall:
		kinds, ok := typePredicates[strings.ToLower(c.Name)]
		if ok && len(c.Args) == 1 {
			if v := slotted(c.Args[0].Value); v != nil {
				return w.narrowPredicate(v, kinds, st)
			}
		}
	case *bound.Isset:
		t = st
		for _, x := range c.Vars {
			if v := slotted(x); v != nil {
				t = w.without(t, v, types.NullRef)
			}
		}
		return t, st
	case *bound.Variable:
		if c.Slot != bound.NoSlot && !c.IsThis() {
			return w.without(st, c, types.NullRef), st
		}
	}
	return st, st
}

func slotted(x bound.Expression) *bound.Variable {
	v, ok := x.(*bound.Variable)
	if !ok || v.Slot == bound.NoSlot || v.IsThis() {
		return nil
	}
	return v
}

func isNullLiteral(x bound.Expression) bool {
	lit, ok := x.(*bound.Literal)
	return ok && lit.Kind == phpsyntax.LitNull
}

// nullComparison returns the variable of "$v === null" or "null === $v".
func nullComparison(c *bound.BinaryEx) *bound.Variable {
	switch {
	case isNullLiteral(c.Right):
		return slotted(c.Left)
	case isNullLiteral(c.Left):
		return slotted(c.Right)
	}
	return nil
}

func (w *blockWalker) with(st *flow.State, v *bound.Variable, m types.TypeRefMask) *flow.State {
	out := st.Clone()
	out.Set(v.Slot, m)
	return out
}

// without removes refs from v's type; undefined and mixed variables stay.
func (w *blockWalker) without(st *flow.State, v *bound.Variable, refs ...types.TypeRef) *flow.State {
	cur := st.Get(v.Slot)
	if cur.IsVoid() || cur.IsAnyType() {
		return st
	}
	next := w.ctx.Without(cur, refs...)
	if next.IsVoid() || next == cur {
		return st
	}
	return w.with(st, v, next)
}

func (w *blockWalker) narrowNull(v *bound.Variable, st *flow.State) (t, f *flow.State) {
	return w.with(st, v, w.ctx.NullTypeMask()), w.without(st, v, types.NullRef)
}

func (w *blockWalker) narrowInstanceOf(v *bound.Variable, class string, st *flow.State) (t, f *flow.State) {
	cls := w.classMask(class, true)
	t = w.with(st, v, cls)
	f = st
	if cur := st.Get(v.Slot); !cur.IsAnyType() && !cur.IsVoid() {
		f = w.without(st, v, types.ClassRef(w.className(class)))
	}
	return t, f
}

func (w *blockWalker) narrowPredicate(v *bound.Variable, kinds []types.RefKind, st *flow.State) (t, f *flow.State) {
	pred := kindOf(kinds)
	cur := st.Get(v.Slot)
	if cur.IsAnyType() || cur.IsVoid() {
		var m types.TypeRefMask
		for _, k := range kinds {
			switch k {
			case types.RefClass:
			case types.RefObject:
				m |= w.ctx.ObjectTypeMask()
			default:
				m |= w.ctx.GetTypeMask(types.TypeRef{Kind: k}, false)
			}
		}
		return w.with(st, v, m), st
	}
	t, f = st, st
	if yes := w.ctx.Filter(cur, pred); !yes.IsVoid() {
		t = w.with(st, v, yes)
	}
	if no := w.ctx.Filter(cur, func(r types.TypeRef) bool { return !pred(r) }); !no.IsVoid() {
		f = w.with(st, v, no)
	}
	return t, f
}
