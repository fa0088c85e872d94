package semantic

import (
	"testing"

	"phpc/internal/diag"
	"phpc/internal/phpsyntax"
	"phpc/internal/resolve"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

func compile(t *testing.T, code string) (*Compilation, *diag.Bag) {
	t.Helper()
	f, err := phpsyntax.Parse(1, "test.php", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bag := diag.NewBag(100)
	c := New(diag.BagReporter{Bag: bag})
	c.AddFile(f)
	c.Declare()
	return c, bag
}

func mustType(t *testing.T, c *Compilation, name string) symbols.TypeID {
	t.Helper()
	id, ok := c.Table.Lookup(name)
	if !ok {
		t.Fatalf("type %s not declared", name)
	}
	return id
}

func TestDeclareClassHierarchy(t *testing.T) {
	c, bag := compile(t, `<?php
interface I { function foo(); }
class A implements I { function foo() { return 1; } }
class B extends A { function foo() { return 2; } }
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	i, a, b := mustType(t, c, "I"), mustType(t, c, "A"), mustType(t, c, "B")
	if c.Table.Type(b).Base != a {
		t.Fatalf("B base = %s, want A", c.Table.TypeName(c.Table.Type(b).Base))
	}
	if !c.Table.IsA(b, i) {
		t.Fatalf("B should implement I")
	}
	if c.Table.Type(a).Base != c.Table.Special(symbols.SpecialObject) {
		t.Fatalf("A should derive from object")
	}
	names := make([]string, 0)
	for _, r := range c.Routines() {
		names = append(names, r.Name)
	}
	want := []string{"main@test.php", "A::foo", "B::foo"}
	if len(names) != len(want) {
		t.Fatalf("routines = %v, want %v", names, want)
	}
	for k := range want {
		if names[k] != want[k] {
			t.Fatalf("routines = %v, want %v", names, want)
		}
	}
	foo := c.Table.MembersNamed(b, "FOO")
	if len(foo) != 1 || c.RoutineOf(foo[0]) == nil {
		t.Fatalf("B::foo has no routine")
	}
	if c.RoutineOf(foo[0]).Scope != resolve.ClassScope(b) {
		t.Fatalf("method scope should be its class")
	}
}

func TestDeclareReportsMissingImplementation(t *testing.T) {
	c, bag := compile(t, `<?php
interface I { function foo(); }
class A implements I {}
abstract class C implements I {}
`)
	if n := bag.Count(diag.SemaUnresolvedAbstract); n != 1 {
		t.Fatalf("unresolved abstract diagnostics = %d, want 1", n)
	}
	if c.Table.Type(mustType(t, c, "C")).Abstract != true {
		t.Fatalf("C should be abstract")
	}
}

func TestDuplicateDeclarations(t *testing.T) {
	_, bag := compile(t, `<?php
class A {}
class A {}
function f() {}
function f() {}
`)
	if n := bag.Count(diag.SemaDuplicateDecl); n != 2 {
		t.Fatalf("duplicate diagnostics = %d, want 2", n)
	}
}

func TestConditionalFunctionsAreCandidates(t *testing.T) {
	c, bag := compile(t, `<?php
if ($x) {
    function f(int $a) { return $a; }
} else {
    function f(string $a) { return $a; }
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if got := len(c.Table.Functions("f")); got != 2 {
		t.Fatalf("f candidates = %d, want 2", got)
	}
}

func TestUnknownBaseAndCycle(t *testing.T) {
	c, bag := compile(t, `<?php
class A extends Missing {}
class X extends Y {}
class Y extends X {}
`)
	if n := bag.Count(diag.SemaUndefinedType); n != 1 {
		t.Fatalf("undefined type diagnostics = %d, want 1", n)
	}
	if n := bag.Count(diag.SemaInheritanceCycle); n == 0 {
		t.Fatalf("expected an inheritance cycle diagnostic")
	}
	// the chain must be walkable after the cycle is cut
	_ = c.Table.BaseChain(mustType(t, c, "X"))
	if c.Table.Type(mustType(t, c, "A")).Base != c.Table.Special(symbols.SpecialObject) {
		t.Fatalf("unknown base should fall back to object")
	}
}

func TestTraitMethodsAreCopied(t *testing.T) {
	c, bag := compile(t, `<?php
trait T { function hello() { return "hi"; } }
class A { use T; }
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	a := mustType(t, c, "A")
	hello := c.Table.MembersNamed(a, "hello")
	if len(hello) != 1 {
		t.Fatalf("A::hello not copied")
	}
	r := c.RoutineOf(hello[0])
	if r == nil || r.Name != "T::hello" {
		t.Fatalf("copied method should share the trait routine, got %v", r)
	}
	if !r.Scope.IsDynamic {
		t.Fatalf("trait routines bind members dynamically")
	}
}

func TestMethodSymbols(t *testing.T) {
	c, _ := compile(t, `<?php
final class A {
    public function __construct(int $x = 0) {}
    private static function helper(string $s): int { return 1; }
    protected function p(A ...$rest) {}
}
`)
	a := mustType(t, c, "A")
	ctor := c.Table.Method(c.Table.MembersNamed(a, "__construct")[0])
	if ctor.Kind != symbols.MethodConstructor || !ctor.Params[0].HasDefault {
		t.Fatalf("constructor = %+v", ctor)
	}
	helper := c.Table.Method(c.Table.MembersNamed(a, "helper")[0])
	if helper.Access != symbols.Private || !helper.Static || helper.Virtual {
		t.Fatalf("helper = %+v", helper)
	}
	if !c.Table.Is(helper.Return, symbols.SpecialInt64) || !c.Table.Is(helper.Params[0].Type, symbols.SpecialString) {
		t.Fatalf("helper signature not mapped: %+v", helper)
	}
	p := c.Table.Method(c.Table.MembersNamed(a, "p")[0])
	if !p.Sealed || !p.Params[0].IsVariadic || p.Params[0].Type != a {
		t.Fatalf("p = %+v", p)
	}
}

func TestLibraryOverloads(t *testing.T) {
	c := New(nil)
	abs := c.Table.Functions("ABS")
	if len(abs) != 2 {
		t.Fatalf("abs overloads = %d, want 2", len(abs))
	}
	long := c.Table.Special(symbols.SpecialInt64)
	res := resolve.Overloads(abs...).Resolve(c.Table, []resolve.Argument{{Type: long}}, resolve.GlobalScope)
	if !res.IsResolved() || c.Table.Method(res.Symbol).Return != long {
		t.Fatalf("abs(int) = %+v", res)
	}
	value := c.Table.Special(symbols.SpecialPhpValue)
	res = resolve.Overloads(abs...).Resolve(c.Table, []resolve.Argument{{Type: value}}, resolve.GlobalScope)
	if res.Outcome != resolve.Ambiguous || !res.IsRuntimeDispatch {
		t.Fatalf("abs(mixed) = %+v", res)
	}
	if !c.Conv.ClassifyConversion(value, long).IsImplicit() {
		t.Fatalf("PhpValue -> int64 should convert implicitly")
	}
}

func TestHintMask(t *testing.T) {
	ctx := types.NewTypeRefContext()
	h := &phpsyntax.TypeHint{Names: []string{"int"}, Nullable: true}
	got := HintMask(ctx, h, "")
	if got != ctx.LongTypeMask()|ctx.NullTypeMask() {
		t.Fatalf("?int = %s", ctx.ToString(got))
	}
	if HintMask(ctx, nil, "") != types.AnyType {
		t.Fatalf("missing hint should be any type")
	}
	self := HintMask(ctx, &phpsyntax.TypeHint{Names: []string{"self"}}, "Foo")
	if ctx.ToString(self) != "Foo" || !self.IncludesSubclasses() {
		t.Fatalf("self = %s", ctx.ToString(self))
	}
}

func TestHostTypeRoundTrip(t *testing.T) {
	c, _ := compile(t, `<?php class Foo {}`)
	ctx := types.NewTypeRefContext()
	cases := []struct {
		mask types.TypeRefMask
		want symbols.TypeID
	}{
		{ctx.LongTypeMask(), c.Table.Special(symbols.SpecialInt64)},
		{ctx.NumberTypeMask(), c.Table.Special(symbols.SpecialPhpNumber)},
		{ctx.StringTypeMask() | ctx.NullTypeMask(), c.Table.Special(symbols.SpecialPhpValue)},
		{ctx.ClassTypeMask("foo", false), mustType(t, c, "Foo")},
		{types.AnyType, c.Table.Special(symbols.SpecialPhpValue)},
	}
	for _, tc := range cases {
		if got := c.HostType(ctx, tc.mask); got != tc.want {
			t.Fatalf("HostType(%s) = %s, want %s", ctx.ToString(tc.mask), c.Table.TypeName(got), c.Table.TypeName(tc.want))
		}
	}
	if got := c.HostMask(ctx, c.Table.Special(symbols.SpecialDouble)); got != ctx.DoubleTypeMask() {
		t.Fatalf("HostMask(double) = %s", ctx.ToString(got))
	}
}
