package analysis

import (
	"fmt"

	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/diag"
	"phpc/internal/resolve"
	"phpc/internal/semantic"
	"phpc/internal/source"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

// Stats counts what Finalize did to one routine.
type Stats struct {
	CallSites int
	Resolved  int
	Dynamic   int
}

// Finalize binds the call sites of a converged routine to symbols, records
// the argument conversions and reports what the types reveal: undefined
// names, inaccessible members, runtime-bound calls, argument counts,
// undefined variables and unreachable code. Unreached blocks are skipped.
func Finalize(c *semantic.Compilation, r *semantic.Routine, rep diag.Reporter) Stats {
	if r.CFG == nil {
		panic("analysis: Finalize before Bind of " + r.String())
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	f := &finalizer{c: c, r: r, rep: rep, ctx: r.TypeCtx()}
	cfg.WalkGraph(r.CFG, f)
	for _, b := range r.CFG.Unreachable() {
		if s := b.FirstStatement(); s != nil {
			diag.ReportWarning(rep, diag.SemaUnreachableCode, s.Span(), "unreachable code").Emit()
		}
	}
	return f.stats
}

type finalizer struct {
	c     *semantic.Compilation
	r     *semantic.Routine
	rep   diag.Reporter
	ctx   *types.TypeRefContext
	stats Stats
}

func (f *finalizer) VisitBlock(b *cfg.Block) bool { return b.FlowState != nil }

func (f *finalizer) VisitStatement(s bound.Statement) { bound.Inspect(s, f.node) }

func (f *finalizer) VisitExpression(e bound.Expression) { bound.Inspect(e, f.node) }

func (f *finalizer) table() *symbols.Table { return f.c.Table }

func (f *finalizer) node(n bound.Node) bool {
	switch n := n.(type) {
	case *bound.Variable:
		if n.Access.IsRead() && !n.IsThis() && n.TypeMask().IsVoid() {
			diag.ReportWarning(f.rep, diag.SemaUndefinedVariable, n.Span(),
				fmt.Sprintf("variable $%s might not be defined", n.Name)).Emit()
		}
	case *bound.GlobalFunctionCall:
		cands := f.table().Functions(n.Name)
		if len(cands) == 0 {
			diag.ReportError(f.rep, diag.SemaUndefinedFunction, n.Span(),
				fmt.Sprintf("call to undefined function %s()", n.Name)).Emit()
			return true
		}
		f.bind(&n.Call, n.Span(), n.Name+"()", cands)
	case *bound.InstanceMethodCall:
		f.instanceCall(n)
	case *bound.StaticMethodCall:
		f.staticCall(n)
	case *bound.NewEx:
		f.newEx(n)
	case *bound.Unsupported:
		diag.ReportWarning(f.rep, diag.SemaNotYetImplemented, n.Span(),
			fmt.Sprintf("%s is not supported yet", n.Kind)).Emit()
	case *bound.UnsupportedStatement:
		diag.ReportWarning(f.rep, diag.SemaNotYetImplemented, n.Span(),
			fmt.Sprintf("%s is not supported yet", n.Kind)).Emit()
	}
	return true
}

func (f *finalizer) lookup(name string, sp source.Span) (symbols.TypeID, bool) {
	id, ok := f.table().Lookup(name)
	if !ok {
		diag.ReportError(f.rep, diag.SemaUndefinedType, sp,
			fmt.Sprintf("class %s not found", name)).Emit()
	}
	return id, ok
}

func (f *finalizer) instanceCall(n *bound.InstanceMethodCall) {
	inst := n.Instance.TypeMask()
	if inst.IsAnyType() {
		return
	}
	classes := f.ctx.Classes(inst)
	if len(classes) != 1 {
		// unknown or several receivers; dispatch happens at runtime
		return
	}
	id, ok := f.table().Lookup(classes[0])
	if !ok {
		return
	}
	found := f.table().FindMethods(id, n.Name)
	if len(found) == 0 {
		if len(f.table().FindMethods(id, "__call")) > 0 {
			return
		}
		diag.ReportError(f.rep, diag.SemaUndefinedMethod, n.Span(),
			fmt.Sprintf("call to undefined method %s::%s()", f.table().TypeName(id), n.Name)).Emit()
		return
	}
	f.bind(&n.Call, n.Span(), f.table().TypeName(id)+"::"+n.Name+"()", found)
}

func (f *finalizer) staticCall(n *bound.StaticMethodCall) {
	id, ok := f.lookup(n.Class, n.Span())
	if !ok {
		return
	}
	found := f.table().FindMethods(id, n.Name)
	if len(found) == 0 {
		if len(f.table().FindMethods(id, "__callStatic")) > 0 {
			return
		}
		diag.ReportError(f.rep, diag.SemaUndefinedMethod, n.Span(),
			fmt.Sprintf("call to undefined method %s::%s()", f.table().TypeName(id), n.Name)).Emit()
		return
	}
	f.bind(&n.Call, n.Span(), f.table().TypeName(id)+"::"+n.Name+"()", found)
	if !n.ParentCall {
		return
	}
	if m := f.table().Method(n.ResolvedSymbol()); m != nil && m.Abstract {
		diag.ReportError(f.rep, diag.SemaAbstractCall, n.Span(),
			fmt.Sprintf("cannot call abstract method %s()", f.table().MethodName(m.ID))).
			WithNote(m.Span, "declared here").
			Emit()
	}
}

func (f *finalizer) newEx(n *bound.NewEx) {
	id, ok := f.lookup(n.Class, n.Span())
	if !ok {
		return
	}
	ty := f.table().Type(id)
	if ty.Abstract || ty.Kind != symbols.KindClass {
		diag.ReportError(f.rep, diag.SemaAbstractCall, n.Span(),
			fmt.Sprintf("cannot instantiate %s %s", kindWord(ty), ty.Name)).Emit()
		return
	}
	ctors := f.table().FindMethods(id, "__construct")
	if len(ctors) == 0 {
		return
	}
	f.bind(&n.Call, n.Span(), ty.Name+"::__construct()", ctors)
}

func kindWord(ty *symbols.Type) string {
	if ty.Kind == symbols.KindClass {
		return "abstract class"
	}
	return ty.Kind.String()
}

// bind resolves a call among cands from the routine's scope and records the
// outcome on the call.
func (f *finalizer) bind(call *bound.Call, sp source.Span, what string, cands []symbols.MethodID) {
	f.stats.CallSites++
	args := make([]resolve.Argument, len(call.Args))
	for i, a := range call.Args {
		args[i] = resolve.Argument{Type: f.c.HostType(f.ctx, a.Value.TypeMask()), IsUnpacking: a.Unpack}
	}
	res := resolve.Overloads(cands...).Resolve(f.table(), args, f.r.Scope)
	call.Resolution = res
	call.Bound = true

	switch res.Outcome {
	case resolve.Resolved:
		f.stats.Resolved++
		m := f.table().Method(res.Symbol)
		call.Conversions = f.conversions(m, args)
		f.checkArity(m, call, sp, what)
	case resolve.Ambiguous:
		f.stats.Dynamic++
		diag.ReportInfo(f.rep, diag.SemaAmbiguousCall, sp,
			fmt.Sprintf("%s is bound at runtime among %d candidates", what, len(res.Candidates))).Emit()
	case resolve.Inaccessible:
		m := f.table().Method(res.Candidates[0])
		diag.ReportError(f.rep, diag.SemaInaccessibleMember, sp,
			fmt.Sprintf("cannot access %s method %s from %s", m.Access, f.table().MethodName(m.ID), f.scopeName())).
			WithNote(m.Span, "declared here").
			Emit()
	case resolve.Missing:
		diag.ReportError(f.rep, diag.SemaUndefinedFunction, sp,
			fmt.Sprintf("call to undefined %s", what)).Emit()
	}
}

func (f *finalizer) scopeName() string {
	if f.r.Scope.Type.IsValid() {
		return "scope " + f.table().TypeName(f.r.Scope.Type)
	}
	return "global scope"
}

// conversions classifies every argument against its parameter. Arguments
// past a variadic parameter convert to it; surplus arguments get none.
func (f *finalizer) conversions(m *symbols.Method, args []resolve.Argument) []resolve.Conversion {
	params := m.UserParams()
	out := make([]resolve.Conversion, len(args))
	for i, a := range args {
		var p *symbols.Param
		switch {
		case i < len(params):
			p = &params[i]
		case len(params) > 0 && params[len(params)-1].IsVariadic:
			p = &params[len(params)-1]
		default:
			out[i] = resolve.NoConversion
			continue
		}
		out[i] = f.c.Conv.ClassifyConversion(a.Type, p.Type)
	}
	return out
}

func (f *finalizer) checkArity(m *symbols.Method, call *bound.Call, sp source.Span, what string) {
	for _, a := range call.Args {
		if a.Unpack {
			return
		}
	}
	mandatory, most := m.Arity()
	argc := len(call.Args)
	switch {
	case argc < mandatory:
		diag.ReportError(f.rep, diag.SemaArgumentCount, sp,
			fmt.Sprintf("%s expects at least %d arguments, %d given", what, mandatory, argc)).
			WithNote(m.Span, "declared here").
			Emit()
	case most >= 0 && argc > most:
		diag.ReportWarning(f.rep, diag.SemaArgumentCount, sp,
			fmt.Sprintf("%s expects at most %d arguments, %d given", what, most, argc)).Emit()
	}
}
