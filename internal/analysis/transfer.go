package analysis

import (
	"strings"

	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/flow"
	"phpc/internal/phpsyntax"
	"phpc/internal/semantic"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

// Analyzer is the transfer function of the fixpoint. It is not safe for
// concurrent use: a block may write into other routines' states.
type Analyzer struct {
	Comp *semantic.Compilation
}

// NewAnalyzer creates an analyzer over c.
func NewAnalyzer(c *semantic.Compilation) *Analyzer {
	return &Analyzer{Comp: c}
}

// Analyze runs the block of t over its entry state and propagates the
// result along its edge. It returns the tasks whose input changed: reached
// successors, callers of a routine whose return type grew, and closures that
// captured new types. Blocks not reached yet are skipped.
func (a *Analyzer) Analyze(t Task) []Task {
	if t.Routine == nil || t.Block == nil {
		panic("analysis: Analyze of incomplete task")
	}
	if t.Block.FlowState == nil {
		return nil
	}
	w := &blockWalker{
		a:     a,
		r:     t.Routine,
		block: t.Block,
		ctx:   t.Routine.TypeCtx(),
		state: t.Block.FlowState.Clone(),
	}
	// any statement of a guarded block may throw, so handlers see the
	// union of the states between statements
	var thrown *flow.State
	g := t.Block.Guard
	if g != nil {
		thrown = t.Block.FlowState
	}
	for _, s := range t.Block.Statements {
		w.stmt(s)
		if g != nil {
			thrown = flow.Merge(thrown, w.state)
		}
	}
	w.edge(t.Block.NextEdge)
	if g != nil {
		w.guard(g, flow.Merge(thrown, w.state))
	}
	return w.out
}

type blockWalker struct {
	a     *Analyzer
	r     *semantic.Routine
	block *cfg.Block
	ctx   *types.TypeRefContext
	state *flow.State
	out   []Task
}

func (w *blockWalker) table() *symbols.Table { return w.a.Comp.Table }

func (w *blockWalker) enqueue(r *semantic.Routine, b *cfg.Block) {
	w.out = append(w.out, Task{Routine: r, Block: b})
}

// propagate merges st into target's entry state and schedules target when
// it changed.
func (w *blockWalker) propagate(target *cfg.Block, st *flow.State) {
	if target == nil {
		return
	}
	if target.FlowState == nil {
		target.FlowState = st.Clone()
		w.enqueue(w.r, target)
		return
	}
	if target.FlowState.Includes(st) {
		return
	}
	target.FlowState = flow.Merge(target.FlowState, st)
	w.enqueue(w.r, target)
}

// guard feeds the state of a protected block into the handlers of g.
func (w *blockWalker) guard(g *cfg.TryCatchEdge, st *flow.State) {
	for _, c := range g.Catches {
		cst := st
		if c.Variable != nil && c.Variable.Slot != bound.NoSlot {
			var m types.TypeRefMask
			for _, name := range c.Types {
				m |= w.classMask(name, true)
			}
			if m.IsVoid() {
				m = w.classMask("Throwable", true)
			}
			cst = st.Clone()
			cst.Set(c.Variable.Slot, m)
			c.Variable.MergeType(m)
		}
		w.propagate(c.Block, cst)
	}
	w.propagate(g.Finally, st)
}

func (w *blockWalker) edge(e cfg.Edge) {
	switch e := e.(type) {
	case nil:
	case *cfg.SimpleEdge:
		w.propagate(e.Target, w.state)
	case *cfg.ConditionalEdge:
		w.expr(e.Condition)
		t, f := w.narrow(e.Condition, w.state)
		w.propagate(e.True, t)
		w.propagate(e.False, f)
	case *cfg.TryCatchEdge:
		w.propagate(e.Body, w.state)
	case *cfg.ForeachEnumereeEdge:
		w.expr(e.Enumeree)
		w.propagate(e.MoveNext, w.state)
	case *cfg.ForeachMoveNextEdge:
		body := w.state.Clone()
		saved := w.state
		w.state = body
		if e.Key != nil {
			w.assign(e.Key, w.ctx.LongTypeMask()|w.ctx.StringTypeMask())
		}
		w.assign(e.Value, types.AnyType)
		w.state = saved
		w.propagate(e.Body, body)
		w.propagate(e.End, w.state)
	case *cfg.SwitchEdge:
		w.expr(e.Value)
		for _, c := range e.Cases {
			if c.Value != nil {
				w.expr(c.Value)
			}
			w.propagate(c.Block, w.state)
		}
		if !e.HasDefault() {
			w.propagate(e.End, w.state)
		}
	default:
		panic("analysis: unknown edge")
	}
}

func (w *blockWalker) stmt(s bound.Statement) {
	switch s := s.(type) {
	case *bound.ExpressionStatement:
		w.expr(s.X)
	case *bound.ReturnStatement:
		m := w.ctx.NullTypeMask()
		if s.Result != nil {
			m = w.expr(s.Result)
		}
		if w.r.Generator {
			m = w.classMask("Generator", false)
		}
		if w.r.UnionReturn(m) {
			for _, site := range w.r.Callers() {
				w.enqueue(site.Routine, site.Block)
			}
		}
	case *bound.EchoStatement:
		for _, x := range s.Args {
			w.expr(x)
		}
	case *bound.UnsetStatement:
		for _, x := range s.Vars {
			if v, ok := x.(*bound.Variable); ok && v.Slot != bound.NoSlot {
				w.state.Set(v.Slot, types.VoidType)
				continue
			}
			w.expr(x)
		}
	case *bound.GlobalStatement:
		for _, v := range s.Vars {
			w.assign(v, types.AnyType)
		}
	case *bound.StaticStatement:
		for _, sv := range s.Vars {
			m := types.AnyType
			if sv.Default != nil {
				m = m.Union(w.expr(sv.Default))
			}
			w.assign(sv.Var, m)
		}
	case *bound.ThrowStatement:
		w.expr(s.Thrown)
	case *bound.ExitStatement:
		if s.Status != nil {
			w.expr(s.Status)
		}
	case *bound.DeclarationStatement, *bound.UnsupportedStatement:
	default:
		panic("analysis: unknown statement")
	}
}

// expr evaluates x in the current state, records the result on the node and
// returns it. Reading an undefined variable yields null.
func (w *blockWalker) expr(x bound.Expression) types.TypeRefMask {
	m := w.eval(x)
	x.MergeType(m)
	if _, ok := x.(*bound.Variable); ok && m.IsVoid() {
		return w.ctx.NullTypeMask()
	}
	return m
}

func (w *blockWalker) eval(x bound.Expression) types.TypeRefMask {
	ctx := w.ctx
	switch x := x.(type) {
	case *bound.Literal:
		return literalMask(ctx, x.Kind)
	case *bound.Variable:
		if x.Slot == bound.NoSlot {
			return types.AnyType
		}
		return w.state.Get(x.Slot)
	case *bound.Assign:
		m := w.expr(x.Value)
		w.assign(x.Target, m)
		return m
	case *bound.CompoundAssign:
		cur := w.expr(x.Target)
		m := w.binary(x.Op, cur, w.expr(x.Value))
		w.assign(x.Target, m)
		return m
	case *bound.IncDec:
		cur := w.expr(x.Target)
		next := w.step(cur, x.Increment)
		w.assign(x.Target, next)
		if x.Prefix {
			return next
		}
		return cur
	case *bound.BinaryEx:
		return w.binary(x.Op, w.expr(x.Left), w.expr(x.Right))
	case *bound.UnaryEx:
		return w.unary(x.Op, w.expr(x.Operand))
	case *bound.Conditional:
		cond := w.expr(x.Cond)
		then := ctx.WithoutNull(cond)
		if x.Then != nil {
			then = w.expr(x.Then)
		}
		return then.Union(w.expr(x.Else))
	case *bound.ArrayEx:
		var elem types.TypeRefMask
		for _, it := range x.Items {
			if it.Key != nil {
				w.expr(it.Key)
			}
			v := w.expr(it.Value)
			if it.Unpack {
				v = ctx.ElementType(v)
			}
			elem = elem.Union(v)
		}
		return ctx.ArrayOfTypeMask(elem)
	case *bound.FieldRef:
		w.expr(x.Instance)
		return types.AnyType
	case *bound.ArrayItemRef:
		arr := w.expr(x.Array)
		if x.Index != nil {
			w.expr(x.Index)
		}
		if ctx.IsString(arr) {
			return ctx.StringTypeMask()
		}
		if x.Index != nil && ctx.IsArray(arr) {
			return ctx.ElementType(arr)
		}
		return types.AnyType
	case *bound.GlobalFunctionCall:
		w.args(&x.Call)
		return w.callMask(w.table().Functions(x.Name))
	case *bound.IndirectCall:
		w.expr(x.Callee)
		w.args(&x.Call)
		return types.AnyType
	case *bound.InstanceMethodCall:
		inst := w.expr(x.Instance)
		w.args(&x.Call)
		return w.instanceCallMask(inst, x.Name)
	case *bound.StaticMethodCall:
		w.args(&x.Call)
		id, ok := w.table().Lookup(x.Class)
		if !ok {
			return types.AnyType
		}
		return w.callMask(w.table().FindMethods(id, x.Name))
	case *bound.NewEx:
		w.args(&x.Call)
		return w.classMask(x.Class, false)
	case *bound.Lambda:
		w.capture(x)
		return w.classMask("Closure", false)
	case *bound.InstanceOf:
		w.expr(x.Operand)
		return ctx.BoolTypeMask()
	case *bound.Isset:
		for _, v := range x.Vars {
			w.expr(v)
		}
		return ctx.BoolTypeMask()
	case *bound.Empty:
		w.expr(x.Operand)
		return ctx.BoolTypeMask()
	case *bound.Cast:
		w.expr(x.Operand)
		return castMask(ctx, x.Target)
	case *bound.Interpolated:
		for _, p := range x.Parts {
			w.expr(p)
		}
		return ctx.StringTypeMask()
	case *bound.ConstFetch:
		return constMask(ctx, x.Name)
	case *bound.ClassConst:
		if strings.EqualFold(x.Name, "class") {
			return ctx.StringTypeMask()
		}
		return types.AnyType
	case *bound.ThrowEx:
		w.expr(x.Thrown)
		return types.VoidType
	case *bound.YieldEx:
		if x.Key != nil {
			w.expr(x.Key)
		}
		if x.Value != nil {
			w.expr(x.Value)
		}
		// the value sent in by the consumer
		return types.AnyType
	case *bound.Unsupported:
		return types.AnyType
	}
	panic("analysis: unknown expression")
}

func (w *blockWalker) args(c *bound.Call) {
	for _, arg := range c.Args {
		w.expr(arg.Value)
	}
}

// assign stores m into the location target denotes.
func (w *blockWalker) assign(target bound.Expression, m types.TypeRefMask) {
	switch t := target.(type) {
	case *bound.Variable:
		if t.Slot != bound.NoSlot && !t.IsThis() {
			w.state.Set(t.Slot, m)
		}
		t.MergeType(m)
	case *bound.ArrayItemRef:
		if t.Index != nil {
			w.expr(t.Index)
		}
		w.writeArray(t.Array, m)
		t.MergeType(m)
	case *bound.FieldRef:
		w.expr(t.Instance)
		t.MergeType(m)
	case *bound.ArrayEx:
		// list() destructuring
		for _, it := range t.Items {
			if it.Key != nil {
				w.expr(it.Key)
			}
			w.assign(it.Value, w.ctx.ElementType(m))
		}
		t.MergeType(m)
	default:
		w.expr(target)
	}
}

// writeArray accounts for "$a[...] = m": an undefined or null base becomes
// an array of m and an array base takes m into its element type.
func (w *blockWalker) writeArray(base bound.Expression, m types.TypeRefMask) {
	switch b := base.(type) {
	case *bound.Variable:
		if b.Slot == bound.NoSlot || b.IsThis() {
			return
		}
		next := w.grownArray(w.state.Get(b.Slot), m)
		w.state.Set(b.Slot, next)
		b.MergeType(next)
	case *bound.ArrayItemRef:
		if b.Index != nil {
			w.expr(b.Index)
		}
		w.writeArray(b.Array, w.ctx.ArrayTypeMask())
		b.MergeType(w.ctx.ArrayTypeMask())
	default:
		w.expr(base)
	}
}

func isArrayRef(r types.TypeRef) bool { return r.Kind == types.RefArray }

// grownArray is the type of cur after an element of type m was stored in it.
// Non-array types other than null are kept.
func (w *blockWalker) grownArray(cur, m types.TypeRefMask) types.TypeRefMask {
	ctx := w.ctx
	if cur.IsAnyType() {
		return cur
	}
	elem := m
	if arrays := ctx.Filter(cur, isArrayRef); !arrays.IsVoid() {
		elem = elem.Union(ctx.ElementType(arrays))
	}
	rest := ctx.Filter(cur, func(r types.TypeRef) bool { return !isArrayRef(r) })
	return ctx.ArrayOfTypeMask(elem) | ctx.WithoutNull(rest)
}

func literalMask(ctx *types.TypeRefContext, k phpsyntax.LiteralKind) types.TypeRefMask {
	switch k {
	case phpsyntax.LitInt:
		return ctx.LongTypeMask()
	case phpsyntax.LitFloat:
		return ctx.DoubleTypeMask()
	case phpsyntax.LitString:
		return ctx.StringTypeMask()
	case phpsyntax.LitBool:
		return ctx.BoolTypeMask()
	case phpsyntax.LitNull:
		return ctx.NullTypeMask()
	}
	return types.AnyType
}

func castMask(ctx *types.TypeRefContext, target string) types.TypeRefMask {
	switch target {
	case "int":
		return ctx.LongTypeMask()
	case "float":
		return ctx.DoubleTypeMask()
	case "string":
		return ctx.StringTypeMask()
	case "bool":
		return ctx.BoolTypeMask()
	case "array":
		return ctx.ArrayTypeMask()
	case "object":
		return ctx.ObjectTypeMask()
	case "unset":
		return ctx.NullTypeMask()
	}
	return types.AnyType
}

func constMask(ctx *types.TypeRefContext, name string) types.TypeRefMask {
	switch strings.ToUpper(name) {
	case "PHP_EOL", "PHP_VERSION", "PHP_OS", "DIRECTORY_SEPARATOR", "__FILE__", "__DIR__",
		"__CLASS__", "__FUNCTION__", "__METHOD__", "__NAMESPACE__":
		return ctx.StringTypeMask()
	case "PHP_INT_MAX", "PHP_INT_MIN", "PHP_INT_SIZE", "E_ALL", "E_ERROR", "E_WARNING",
		"E_NOTICE", "__LINE__", "SORT_REGULAR", "COUNT_RECURSIVE":
		return ctx.LongTypeMask()
	case "PHP_FLOAT_EPSILON", "PHP_FLOAT_MAX", "M_PI", "M_E", "NAN", "INF":
		return ctx.DoubleTypeMask()
	}
	return types.AnyType
}

// className returns the declared spelling of a class name.
func (w *blockWalker) className(name string) string {
	if id, ok := w.table().Lookup(name); ok {
		return w.table().TypeName(id)
	}
	return name
}

func (w *blockWalker) classMask(name string, subclasses bool) types.TypeRefMask {
	return w.ctx.ClassTypeMask(w.className(name), subclasses)
}

func (w *blockWalker) numeric(m types.TypeRefMask) bool {
	return w.ctx.IsLong(m) || w.ctx.IsDouble(m) || w.ctx.IsNumber(m)
}

// binary is the result type of an operator over operand types.
func (w *blockWalker) binary(op bound.BinaryOp, l, r types.TypeRefMask) types.TypeRefMask {
	ctx := w.ctx
	switch op {
	case bound.OpConcat:
		return ctx.StringTypeMask()
	case bound.OpCoalesce:
		if l.IsAnyType() {
			return l
		}
		return ctx.WithoutNull(l).Union(r)
	case bound.OpSpaceship, bound.OpMod, bound.OpBitAnd, bound.OpBitOr, bound.OpBitXor, bound.OpShl, bound.OpShr:
		if op == bound.OpBitAnd || op == bound.OpBitOr || op == bound.OpBitXor {
			if ctx.IsString(l) && ctx.IsString(r) {
				return ctx.StringTypeMask()
			}
		}
		return ctx.LongTypeMask()
	case bound.OpAdd, bound.OpSub, bound.OpMul, bound.OpPow:
		if op == bound.OpAdd && ctx.IsArray(l) && ctx.IsArray(r) {
			return l.Union(r).WithoutFlags()
		}
		switch {
		case ctx.IsLong(l) && ctx.IsLong(r) && op != bound.OpPow:
			return ctx.LongTypeMask()
		case ctx.IsDouble(l) && w.numeric(r), ctx.IsDouble(r) && w.numeric(l):
			return ctx.DoubleTypeMask()
		}
		return ctx.NumberTypeMask()
	case bound.OpDiv:
		if ctx.IsDouble(l) || ctx.IsDouble(r) {
			return ctx.DoubleTypeMask()
		}
		return ctx.NumberTypeMask()
	}
	if op.IsComparison() {
		return ctx.BoolTypeMask()
	}
	return types.AnyType
}

func (w *blockWalker) unary(op bound.UnaryOp, m types.TypeRefMask) types.TypeRefMask {
	ctx := w.ctx
	switch op {
	case bound.UnaryNot:
		return ctx.BoolTypeMask()
	case bound.UnaryBitNot:
		return ctx.LongTypeMask()
	case bound.UnaryNeg, bound.UnaryPlus:
		if ctx.IsLong(m) || ctx.IsDouble(m) {
			return m.WithoutFlags()
		}
		return ctx.NumberTypeMask()
	case bound.UnarySilence:
		return m
	}
	return types.AnyType
}

// step is the type after "++" or "--". Null becomes int on increment and
// stays null on decrement.
func (w *blockWalker) step(m types.TypeRefMask, inc bool) types.TypeRefMask {
	ctx := w.ctx
	if m.IsAnyType() {
		return m
	}
	if m.IsVoid() || ctx.IsNull(m) {
		if inc {
			return ctx.LongTypeMask()
		}
		return ctx.NullTypeMask()
	}
	if ctx.IsNullable(m) && inc {
		return ctx.WithoutNull(m) | ctx.LongTypeMask()
	}
	return m
}

// callMask unions the return types of the candidates. Inferred return types
// register this block as a call site so it is revisited when they grow.
func (w *blockWalker) callMask(cands []symbols.MethodID) types.TypeRefMask {
	if len(cands) == 0 {
		return types.AnyType
	}
	var m types.TypeRefMask
	for _, mid := range cands {
		rm, callee := w.a.Comp.ReturnMaskOf(w.ctx, mid)
		if callee != nil {
			callee.AddCaller(w.r, w.block)
		}
		m |= rm
	}
	return m
}

// instanceCallMask resolves name on every class the receiver may hold.
func (w *blockWalker) instanceCallMask(inst types.TypeRefMask, name string) types.TypeRefMask {
	classes := w.ctx.Classes(inst)
	if len(classes) == 0 || inst.IsAnyType() {
		return types.AnyType
	}
	var m types.TypeRefMask
	for _, cls := range classes {
		id, ok := w.table().Lookup(cls)
		if !ok {
			return types.AnyType
		}
		found := w.table().FindMethods(id, name)
		if len(found) == 0 {
			return types.AnyType
		}
		m |= w.callMask(found)
	}
	return m
}

// capture passes the types of the captured variables into the closure's
// entry state and schedules the closure when they changed.
func (w *blockWalker) capture(l *bound.Lambda) {
	var uses []types.TypeRefMask
	for _, u := range l.Uses {
		uses = append(uses, w.expr(u.Value))
	}
	lr := w.a.Comp.Routine(l.Routine)
	if lr == nil || lr.CFG == nil {
		return
	}
	start := lr.CFG.Start
	next := start.FlowState.Clone()
	if next == nil {
		next = flow.NewState(lr.Flow.Len())
	}
	for i, u := range l.Uses {
		next.Union(lr.Flow.Slot(u.Name), lr.TypeCtx().TransferFrom(w.ctx, uses[i]))
	}
	if start.FlowState != nil && start.FlowState.Equal(next) {
		return
	}
	start.FlowState = next
	w.enqueue(lr, start)
}
