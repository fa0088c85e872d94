package phpsyntax

// WalkStmts visits stmts depth-first, descending into nested statement lists
// of control statements. Function, class and closure bodies are not entered.
// Returning false from fn skips the children of that statement.
func WalkStmts(stmts []Stmt, fn func(Stmt) bool) {
	for _, s := range stmts {
		walkStmt(s, fn)
	}
}

func walkStmt(s Stmt, fn func(Stmt) bool) {
	if s == nil || !fn(s) {
		return
	}
	switch s := s.(type) {
	case *BlockStmt:
		WalkStmts(s.Stmts, fn)
	case *IfStmt:
		WalkStmts(s.Then, fn)
		for _, ei := range s.ElseIfs {
			WalkStmts(ei.Body, fn)
		}
		WalkStmts(s.Else, fn)
	case *WhileStmt:
		WalkStmts(s.Body, fn)
	case *DoWhileStmt:
		WalkStmts(s.Body, fn)
	case *ForStmt:
		WalkStmts(s.Body, fn)
	case *ForeachStmt:
		WalkStmts(s.Body, fn)
	case *SwitchStmt:
		for _, c := range s.Cases {
			WalkStmts(c.Body, fn)
		}
	case *TryStmt:
		WalkStmts(s.Body, fn)
		for _, c := range s.Catches {
			WalkStmts(c.Body, fn)
		}
		WalkStmts(s.Finally, fn)
	}
}

// InspectExpr visits x and its subexpressions in source order. Closure
// bodies are not entered. Returning false from fn skips the children.
func InspectExpr(x Expr, fn func(Expr) bool) {
	if x == nil || !fn(x) {
		return
	}
	each := func(xs ...Expr) {
		for _, y := range xs {
			InspectExpr(y, fn)
		}
	}
	args := func(as []Arg) {
		for _, a := range as {
			InspectExpr(a.Value, fn)
		}
	}
	switch x := x.(type) {
	case *Interpolated:
		each(x.Parts...)
	case *ArrayLit:
		for _, it := range x.Items {
			each(it.Key, it.Value)
		}
	case *Assign:
		each(x.Target, x.Value)
	case *CompoundAssign:
		each(x.Target, x.Value)
	case *IncDec:
		each(x.Target)
	case *Binary:
		each(x.X, x.Y)
	case *Unary:
		each(x.X)
	case *InstanceOf:
		each(x.X)
	case *Cast:
		each(x.X)
	case *Ternary:
		each(x.Cond, x.Then, x.Else)
	case *Call:
		each(x.Func)
		args(x.Args)
	case *MethodCall:
		each(x.Object)
		args(x.Args)
	case *StaticCall:
		args(x.Args)
	case *New:
		args(x.Args)
	case *PropertyFetch:
		each(x.Object)
	case *ArrayDim:
		each(x.X, x.Index)
	case *Isset:
		each(x.Vars...)
	case *Empty:
		each(x.X)
	case *Throw:
		each(x.X)
	case *Yield:
		each(x.Key, x.Value)
	}
}
