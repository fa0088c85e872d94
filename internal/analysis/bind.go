// Package analysis runs the type inference over routine graphs: initial
// states, variable slots, the per-block transfer function, condition
// narrowing and the call-site binding done once the worklist converged.
package analysis

import (
	"fmt"

	"phpc/internal/cfg"
	"phpc/internal/flow"
	"phpc/internal/phpsyntax"
	"phpc/internal/semantic"
	"phpc/internal/types"
)

// Task is one unit of worklist traffic: a block of a routine.
type Task struct {
	Routine *semantic.Routine
	Block   *cfg.Block
}

// Bind computes the initial flow state of r and builds its graph. Closures
// met while binding are registered with c as new routines.
func Bind(c *semantic.Compilation, r *semantic.Routine) *cfg.Graph {
	if r == nil {
		panic("analysis: Bind of nil routine")
	}
	if !r.HasBody {
		panic(fmt.Sprintf("analysis: %s has no body to bind", r))
	}
	b := r.Binder(c)
	r.CFG = cfg.Build(r.Body, b, InitialState(r))
	r.Generator = b.Yields
	return r.CFG
}

// InitialState is the state at routine entry: parameters typed from
// declarations, PHPDoc or defaults, "$this" and the captured variables of a
// closure (void until the enclosing routine passes them in).
func InitialState(r *semantic.Routine) *flow.State {
	ctx := r.TypeCtx()
	st := flow.NewState(len(r.Params) + 1)
	if r.HasThis() {
		st.Set(r.Flow.Slot("this"), ctx.ClassTypeMask(r.ClassName, true))
	}
	for _, p := range r.Params {
		st.Set(r.Flow.Slot(p.Name), paramMask(ctx, r, p))
	}
	if r.Lambda != nil {
		for _, u := range r.Lambda.Uses {
			r.Flow.Slot(u.Name)
		}
	}
	return st
}

func paramMask(ctx *types.TypeRefContext, r *semantic.Routine, p phpsyntax.Param) types.TypeRefMask {
	if p.Variadic {
		return ctx.ArrayTypeMask()
	}
	var m types.TypeRefMask
	switch hint := r.Doc.ParamHint(p.Name); {
	case p.Type != nil:
		m = semantic.HintMask(ctx, p.Type, r.ClassName)
	case hint != nil:
		m = semantic.HintMask(ctx, hint, r.ClassName).WithIsHint(true)
	default:
		return types.AnyType
	}
	if lit, ok := p.Default.(*phpsyntax.Literal); ok && lit.Kind == phpsyntax.LitNull {
		m |= ctx.NullTypeMask()
	}
	return m
}
