package bound

import (
	"testing"

	"phpc/internal/phpsyntax"
)

func v(name string) *phpsyntax.Variable { return &phpsyntax.Variable{Name: name} }

func TestBindAssignAccess(t *testing.T) {
	b := &Binder{}
	x := b.BindExpr(&phpsyntax.Assign{
		Target: &phpsyntax.ArrayDim{X: v("a"), Index: &phpsyntax.Literal{Kind: phpsyntax.LitInt, Value: "0"}},
		Value:  v("b"),
	}, AccessRead)
	as, ok := x.(*Assign)
	if !ok {
		t.Fatalf("expected *Assign, got %T", x)
	}
	dim := as.Target.(*ArrayItemRef)
	if dim.Access != AccessWrite {
		t.Fatalf("element access = %s", dim.Access)
	}
	if got := dim.Array.(*Variable).Access; got != AccessReadWrite {
		t.Fatalf("array variable access = %s, want readwrite", got)
	}
	if got := as.Value.(*Variable); got.Access != AccessRead || got.Slot != NoSlot {
		t.Fatalf("value variable = %+v", got)
	}
	if s := Format(x); s != "$a[0] = $b" {
		t.Fatalf("Format = %q", s)
	}
}

func TestBindCoalesceIsQuiet(t *testing.T) {
	b := &Binder{}
	x := b.BindExpr(&phpsyntax.Binary{Op: "??", X: v("a"), Y: v("b")}, AccessRead).(*BinaryEx)
	if x.Op != OpCoalesce {
		t.Fatalf("op = %s", x.Op)
	}
	if x.Left.(*Variable).Access != AccessQuiet {
		t.Fatalf("left operand of ?? must be a quiet read")
	}
}

func TestBindResolvesSelfAndParent(t *testing.T) {
	b := &Binder{Self: "B", Parent: "A"}
	sc := b.BindExpr(&phpsyntax.StaticCall{Class: "parent", Name: "foo"}, AccessRead).(*StaticMethodCall)
	if sc.Class != "A" || !sc.ParentCall {
		t.Fatalf("parent::foo bound to %+v", sc)
	}
	ls := b.BindExpr(&phpsyntax.StaticCall{Class: "static", Name: "make"}, AccessRead).(*StaticMethodCall)
	if ls.Class != "B" || !ls.LateStatic {
		t.Fatalf("static::make bound to %+v", ls)
	}
	ne := b.BindExpr(&phpsyntax.New{Class: "self"}, AccessRead).(*NewEx)
	if ne.Class != "B" {
		t.Fatalf("new self bound to %q", ne.Class)
	}
}

func TestBindLambdaRegistersRoutine(t *testing.T) {
	var seen []*Lambda
	b := &Binder{OnLambda: func(l *Lambda) int {
		seen = append(seen, l)
		return 7
	}}
	closure := &phpsyntax.Closure{
		Params: []phpsyntax.Param{{Name: "x"}},
		Uses:   []phpsyntax.ClosureUse{{Name: "y"}, {Name: "z", ByRef: true}},
	}
	l := b.BindExpr(closure, AccessRead).(*Lambda)
	if len(seen) != 1 || l.Routine != 7 {
		t.Fatalf("lambda not registered: %d, routine %d", len(seen), l.Routine)
	}
	if len(l.Uses) != 2 || l.Uses[0].Value.Access != AccessRead || l.Uses[1].Value.Access != AccessQuiet {
		t.Fatalf("unexpected uses %+v", l.Uses)
	}
}

func TestArrowFunctionCapturesFreeVariables(t *testing.T) {
	b := &Binder{}
	arrow := &phpsyntax.Closure{
		Arrow:  true,
		Params: []phpsyntax.Param{{Name: "x"}},
		Body: []phpsyntax.Stmt{&phpsyntax.ReturnStmt{
			Result: &phpsyntax.Binary{Op: "+", X: v("x"), Y: &phpsyntax.Binary{Op: "*", X: v("k"), Y: v("k")}},
		}},
	}
	l := b.BindExpr(arrow, AccessRead).(*Lambda)
	if len(l.Uses) != 1 || l.Uses[0].Name != "k" {
		t.Fatalf("captures = %+v", l.Uses)
	}
	if l.Routine != -1 {
		t.Fatalf("routine handle without registry = %d", l.Routine)
	}
}

func TestBindThrowStatement(t *testing.T) {
	b := &Binder{}
	s := b.BindStatement(&phpsyntax.ExprStmt{X: &phpsyntax.Throw{X: &phpsyntax.New{Class: "Exception"}}})
	if _, ok := s.(*ThrowStatement); !ok {
		t.Fatalf("expected *ThrowStatement, got %T", s)
	}
}

func TestInspectVisitsOperandsInOrder(t *testing.T) {
	b := &Binder{}
	x := b.BindExpr(&phpsyntax.Call{Name: "f", Args: []phpsyntax.Arg{
		{Value: v("a")},
		{Value: &phpsyntax.Binary{Op: ".", X: v("b"), Y: v("c")}},
	}}, AccessRead)
	var names []string
	Inspect(x, func(n Node) bool {
		if vr, ok := n.(*Variable); ok {
			names = append(names, vr.Name)
		}
		return true
	})
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("visited %v", names)
	}
}

func TestParseBinaryOp(t *testing.T) {
	cases := map[string]BinaryOp{"+": OpAdd, ".": OpConcat, "===": OpIdentical, "<>": OpNotEq, "and": OpAnd, "??": OpCoalesce, "@@": OpInvalid}
	for text, want := range cases {
		if got := ParseBinaryOp(text); got != want {
			t.Fatalf("ParseBinaryOp(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestBindYieldMarksGenerator(t *testing.T) {
	b := &Binder{}
	x := b.BindExpr(&phpsyntax.Yield{
		Key:   &phpsyntax.Literal{Kind: phpsyntax.LitString, Value: "k"},
		Value: v("v"),
	}, AccessRead)
	if _, ok := x.(*YieldEx); !ok {
		t.Fatalf("expected *YieldEx, got %T", x)
	}
	if !b.Yields {
		t.Fatalf("binder must remember the yield")
	}
	if s := Format(x); s != `yield "k" => $v` {
		t.Fatalf("Format = %q", s)
	}
	from := b.BindExpr(&phpsyntax.Yield{Value: v("inner"), From: true}, AccessRead)
	if s := Format(from); s != "yield from $inner" {
		t.Fatalf("Format = %q", s)
	}
}

func TestBindListTargetsAreWrites(t *testing.T) {
	b := &Binder{}
	x := b.BindExpr(&phpsyntax.Assign{
		Target: &phpsyntax.ArrayLit{Items: []phpsyntax.ArrayItem{{Value: v("x")}, {Value: v("y")}}},
		Value:  v("a"),
	}, AccessRead).(*Assign)
	for _, it := range x.Target.(*ArrayEx).Items {
		if got := it.Value.(*Variable).Access; got != AccessWrite {
			t.Fatalf("$%s access = %s, want write", it.Value.(*Variable).Name, got)
		}
	}
	if b.Yields {
		t.Fatalf("no yield was bound")
	}
}
