package bound

import (
	"strings"

	"phpc/internal/phpsyntax"
	"phpc/internal/source"
)

// Binder turns syntax into bound operations for one routine body.
type Binder struct {
	// Self and Parent are the enclosing class and its base; empty outside a
	// class.
	Self   string
	Parent string
	// OnLambda registers a closure found in the body and returns the handle
	// of the routine compiled from it.
	OnLambda func(*Lambda) int
	// Yields is set once a yield was bound: the body is a generator.
	Yields bool
}

// BindExpr binds e with the given access; nil input yields nil.
func (b *Binder) BindExpr(e phpsyntax.Expr, access Access) Expression {
	if e == nil {
		return nil
	}
	sp := e.Span()
	base := exprBase{Sp: sp}
	switch e := e.(type) {
	case *phpsyntax.Variable:
		return &Variable{exprBase: base, Name: e.Name, Slot: NoSlot, Access: access}
	case *phpsyntax.Literal:
		return &Literal{exprBase: base, Kind: e.Kind, Value: e.Value}
	case *phpsyntax.Interpolated:
		out := &Interpolated{exprBase: base}
		for _, p := range e.Parts {
			out.Parts = append(out.Parts, b.BindExpr(p, AccessRead))
		}
		return out
	case *phpsyntax.ArrayLit:
		out := &ArrayEx{exprBase: base}
		for _, it := range e.Items {
			item := ArrayItem{ByRef: it.ByRef, Unpack: it.Unpack}
			item.Key = b.BindExpr(it.Key, AccessRead)
			valueAccess := AccessRead
			switch {
			case access == AccessWrite:
				valueAccess = AccessWrite
			case it.ByRef:
				valueAccess = AccessReadWrite
			}
			item.Value = b.BindExpr(it.Value, valueAccess)
			out.Items = append(out.Items, item)
		}
		return out
	case *phpsyntax.Assign:
		targetAccess := AccessWrite
		valueAccess := AccessRead
		if e.ByRef {
			valueAccess = AccessReadWrite
		}
		return &Assign{
			exprBase: base,
			Target:   b.BindExpr(e.Target, targetAccess),
			Value:    b.BindExpr(e.Value, valueAccess),
			ByRef:    e.ByRef,
		}
	case *phpsyntax.CompoundAssign:
		return &CompoundAssign{
			exprBase: base,
			Op:       ParseBinaryOp(e.Op),
			Target:   b.BindExpr(e.Target, AccessReadWrite),
			Value:    b.BindExpr(e.Value, AccessRead),
		}
	case *phpsyntax.IncDec:
		return &IncDec{
			exprBase:  base,
			Target:    b.BindExpr(e.Target, AccessReadWrite),
			Increment: e.Op == "++",
			Prefix:    e.Prefix,
		}
	case *phpsyntax.Binary:
		op := ParseBinaryOp(strings.ToLower(e.Op))
		if op == OpInvalid {
			return &Unsupported{exprBase: base, Kind: "operator " + e.Op}
		}
		leftAccess := AccessRead
		if op == OpCoalesce {
			leftAccess = AccessQuiet
		}
		return &BinaryEx{
			exprBase: base,
			Op:       op,
			Left:     b.BindExpr(e.X, leftAccess),
			Right:    b.BindExpr(e.Y, AccessRead),
		}
	case *phpsyntax.Unary:
		op := ParseUnaryOp(e.Op)
		if op == UnaryInvalid {
			return &Unsupported{exprBase: base, Kind: "operator " + e.Op}
		}
		return &UnaryEx{exprBase: base, Op: op, Operand: b.BindExpr(e.X, AccessRead)}
	case *phpsyntax.InstanceOf:
		if e.Class == "" {
			return &Unsupported{exprBase: base, Kind: "dynamic instanceof"}
		}
		class, _, _ := b.className(e.Class)
		return &InstanceOf{exprBase: base, Operand: b.BindExpr(e.X, AccessRead), Class: class}
	case *phpsyntax.Cast:
		return &Cast{exprBase: base, Target: e.Type, Operand: b.BindExpr(e.X, AccessRead)}
	case *phpsyntax.Ternary:
		return &Conditional{
			exprBase: base,
			Cond:     b.BindExpr(e.Cond, AccessRead),
			Then:     b.BindExpr(e.Then, AccessRead),
			Else:     b.BindExpr(e.Else, AccessRead),
		}
	case *phpsyntax.Call:
		if e.Name == "" {
			return &IndirectCall{exprBase: base, Call: b.call(e.Args), Callee: b.BindExpr(e.Func, AccessRead)}
		}
		return &GlobalFunctionCall{exprBase: base, Call: b.call(e.Args), Name: e.Name}
	case *phpsyntax.MethodCall:
		if e.Name == "" {
			return &Unsupported{exprBase: base, Kind: "dynamic method call"}
		}
		return &InstanceMethodCall{
			exprBase: base,
			Call:     b.call(e.Args),
			Instance: b.BindExpr(e.Object, AccessRead),
			Name:     e.Name,
		}
	case *phpsyntax.StaticCall:
		if e.Name == "" || e.Class == "" {
			return &Unsupported{exprBase: base, Kind: "dynamic static call"}
		}
		class, late, parent := b.className(e.Class)
		return &StaticMethodCall{
			exprBase:   base,
			Call:       b.call(e.Args),
			Class:      class,
			Name:       e.Name,
			LateStatic: late,
			ParentCall: parent,
		}
	case *phpsyntax.New:
		if e.Class == "" {
			return &Unsupported{exprBase: base, Kind: "dynamic new"}
		}
		class, _, _ := b.className(e.Class)
		return &NewEx{exprBase: base, Call: b.call(e.Args), Class: class}
	case *phpsyntax.PropertyFetch:
		if e.Name == "" {
			return &Unsupported{exprBase: base, Kind: "dynamic property"}
		}
		return &FieldRef{exprBase: base, Instance: b.BindExpr(e.Object, AccessRead), Name: e.Name, Access: access}
	case *phpsyntax.ArrayDim:
		arrayAccess := access
		if access.IsWrite() || access == AccessUnset {
			arrayAccess = AccessReadWrite
		}
		return &ArrayItemRef{
			exprBase: base,
			Array:    b.BindExpr(e.X, arrayAccess),
			Index:    b.BindExpr(e.Index, AccessRead),
			Access:   access,
		}
	case *phpsyntax.ConstFetch:
		return &ConstFetch{exprBase: base, Name: e.Name}
	case *phpsyntax.ClassConstFetch:
		class, _, _ := b.className(e.Class)
		return &ClassConst{exprBase: base, Class: class, Name: e.Name}
	case *phpsyntax.Isset:
		out := &Isset{exprBase: base}
		for _, v := range e.Vars {
			out.Vars = append(out.Vars, b.BindExpr(v, AccessQuiet))
		}
		return out
	case *phpsyntax.Empty:
		return &Empty{exprBase: base, Operand: b.BindExpr(e.X, AccessQuiet)}
	case *phpsyntax.Closure:
		return b.lambda(e, base)
	case *phpsyntax.Throw:
		return &ThrowEx{exprBase: base, Thrown: b.BindExpr(e.X, AccessRead)}
	case *phpsyntax.Yield:
		b.Yields = true
		return &YieldEx{
			exprBase: base,
			Key:      b.BindExpr(e.Key, AccessRead),
			Value:    b.BindExpr(e.Value, AccessRead),
			From:     e.From,
		}
	case *phpsyntax.UnsupportedExpr:
		return &Unsupported{exprBase: base, Kind: e.Kind}
	}
	return &Unsupported{exprBase: base, Kind: "expression"}
}

func (b *Binder) lambda(e *phpsyntax.Closure, base exprBase) Expression {
	l := &Lambda{exprBase: base, Syntax: e, Static: e.Static, Routine: -1}
	for _, u := range e.Uses {
		access := AccessRead
		if u.ByRef {
			access = AccessQuiet
		}
		l.Uses = append(l.Uses, LambdaUse{
			Name:  u.Name,
			ByRef: u.ByRef,
			Value: &Variable{exprBase: exprBase{Sp: base.Sp}, Name: u.Name, Slot: NoSlot, Access: access},
		})
	}
	if e.Arrow {
		// Arrow functions capture by value every variable they mention.
		for _, name := range arrowCaptures(e) {
			l.Uses = append(l.Uses, LambdaUse{
				Name:  name,
				Value: &Variable{exprBase: exprBase{Sp: base.Sp}, Name: name, Slot: NoSlot, Access: AccessQuiet},
			})
		}
	}
	if b.OnLambda != nil {
		l.Routine = b.OnLambda(l)
	}
	return l
}

// arrowCaptures lists the free variables of an arrow function body in order
// of first use.
func arrowCaptures(e *phpsyntax.Closure) []string {
	params := make(map[string]bool, len(e.Params))
	for _, p := range e.Params {
		params[p.Name] = true
	}
	seen := make(map[string]bool)
	var out []string
	var visit func(x phpsyntax.Expr)
	visit = func(x phpsyntax.Expr) {
		phpsyntax.InspectExpr(x, func(n phpsyntax.Expr) bool {
			if v, ok := n.(*phpsyntax.Variable); ok && !params[v.Name] && v.Name != "this" && !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
			return true
		})
	}
	for _, s := range e.Body {
		if r, ok := s.(*phpsyntax.ReturnStmt); ok {
			visit(r.Result)
		}
	}
	return out
}

// className maps self/static/parent to the enclosing classes.
func (b *Binder) className(name string) (class string, lateStatic, parent bool) {
	switch strings.ToLower(name) {
	case "self":
		return b.Self, false, false
	case "static":
		return b.Self, true, false
	case "parent":
		return b.Parent, false, true
	}
	return name, false, false
}

func (b *Binder) call(args []phpsyntax.Arg) Call {
	c := Call{Args: make([]Argument, 0, len(args))}
	for _, a := range args {
		c.Args = append(c.Args, Argument{Value: b.BindExpr(a.Value, AccessRead), Unpack: a.Unpack})
	}
	return c
}

// BindStatement binds a statement without control flow. Control statements
// are split into blocks by the graph builder and must not reach here.
func (b *Binder) BindStatement(s phpsyntax.Stmt) Statement {
	base := stmtBase{Sp: s.Span()}
	switch s := s.(type) {
	case *phpsyntax.ExprStmt:
		if t, ok := s.X.(*phpsyntax.Throw); ok {
			return &ThrowStatement{stmtBase: base, Thrown: b.BindExpr(t.X, AccessRead)}
		}
		return &ExpressionStatement{stmtBase: base, X: b.BindExpr(s.X, AccessRead)}
	case *phpsyntax.EchoStmt:
		out := &EchoStatement{stmtBase: base}
		for _, a := range s.Args {
			out.Args = append(out.Args, b.BindExpr(a, AccessRead))
		}
		return out
	case *phpsyntax.ReturnStmt:
		return &ReturnStatement{stmtBase: base, Result: b.BindExpr(s.Result, AccessRead)}
	case *phpsyntax.UnsetStmt:
		out := &UnsetStatement{stmtBase: base}
		for _, v := range s.Vars {
			out.Vars = append(out.Vars, b.BindExpr(v, AccessUnset))
		}
		return out
	case *phpsyntax.GlobalStmt:
		out := &GlobalStatement{stmtBase: base}
		for _, name := range s.Names {
			out.Vars = append(out.Vars, b.variable(s.Span(), name, AccessWrite))
		}
		return out
	case *phpsyntax.StaticStmt:
		out := &StaticStatement{stmtBase: base}
		for _, v := range s.Vars {
			out.Vars = append(out.Vars, StaticVar{
				Var:     b.variable(s.Span(), v.Name, AccessWrite),
				Default: b.BindExpr(v.Default, AccessRead),
			})
		}
		return out
	case *phpsyntax.ExitStmt:
		return &ExitStatement{stmtBase: base, Status: b.BindExpr(s.Status, AccessRead)}
	case *phpsyntax.FuncDecl, *phpsyntax.ClassDecl:
		return &DeclarationStatement{stmtBase: base, Decl: s}
	case *phpsyntax.UnsupportedStmt:
		return &UnsupportedStatement{stmtBase: base, Kind: s.Kind}
	}
	return &UnsupportedStatement{stmtBase: base, Kind: "statement"}
}

func (b *Binder) variable(sp source.Span, name string, access Access) *Variable {
	return &Variable{exprBase: exprBase{Sp: sp}, Name: name, Slot: NoSlot, Access: access}
}

// NewVariable creates a variable reference; the graph builder uses it for
// foreach targets and catch variables.
func (b *Binder) NewVariable(sp source.Span, name string, access Access) *Variable {
	return b.variable(sp, name, access)
}
