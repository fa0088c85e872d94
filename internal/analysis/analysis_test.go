package analysis

import (
	"slices"
	"strings"
	"testing"

	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/diag"
	"phpc/internal/phpsyntax"
	"phpc/internal/semantic"
)

// analyze runs the whole pipeline over code with a plain FIFO.
func analyze(t *testing.T, code string) (*semantic.Compilation, *diag.Bag) {
	t.Helper()
	f, err := phpsyntax.Parse(1, "test.php", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	c := semantic.New(rep)
	c.AddFile(f)
	c.Declare()

	var queue []Task
	done := make(map[*semantic.Routine]bool)
	for progressed := true; progressed; {
		progressed = false
		for _, r := range c.Routines() {
			if done[r] || !r.HasBody {
				continue
			}
			done[r] = true
			progressed = true
			Bind(c, r)
			ResolveVariables(r)
			queue = append(queue, Task{Routine: r, Block: r.CFG.Start})
		}
	}
	a := NewAnalyzer(c)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 10000 {
			t.Fatalf("no fixpoint after %d steps", steps)
		}
		task := queue[0]
		queue = queue[1:]
		queue = append(queue, a.Analyze(task)...)
	}
	for _, r := range c.Routines() {
		Finalize(c, r, rep)
	}
	return c, bag
}

func routine(t *testing.T, c *semantic.Compilation, name string) *semantic.Routine {
	t.Helper()
	for _, r := range c.Routines() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("routine %s not found", name)
	return nil
}

func exitType(t *testing.T, r *semantic.Routine, name string) string {
	t.Helper()
	slot, ok := r.Flow.Lookup(name)
	if !ok {
		t.Fatalf("%s: no variable $%s", r.Name, name)
	}
	st := r.CFG.Exit.FlowState
	if st == nil {
		t.Fatalf("%s: exit not reached", r.Name)
	}
	return r.TypeCtx().ToString(st.Get(slot))
}

func findCall(r *semantic.Routine, name string) *bound.Call {
	var found *bound.Call
	cfg.WalkGraph(r.CFG, cfg.NodeVisitor{Fn: func(n bound.Node) bool {
		switch n := n.(type) {
		case *bound.GlobalFunctionCall:
			if n.Name == name && found == nil {
				found = &n.Call
			}
		case *bound.InstanceMethodCall:
			if n.Name == name && found == nil {
				found = &n.Call
			}
		}
		return true
	}})
	return found
}

func TestStraightLineTypes(t *testing.T) {
	c, _ := analyze(t, `<?php
$a = 1;
$b = $a + 2;
$c = $a . "x";
$d = 1.5 * $a;
$e = $a > 0;
$f = [1, 2];
`)
	main := routine(t, c, "main@test.php")
	want := map[string]string{"a": "int", "b": "int", "c": "string", "d": "float", "e": "bool", "f": "int[]"}
	for name, typ := range want {
		if got := exitType(t, main, name); got != typ {
			t.Fatalf("$%s = %s, want %s", name, got, typ)
		}
	}
}

func TestArrayElementTypes(t *testing.T) {
	c, _ := analyze(t, `<?php
$a = [1, 2];
$b = $a[0];
$m = [1, "x"];
$n = $m[1];
$p = [1.5];
$q = $p[0];
$p["k"] = "s";
$r = $p["k"];
$w[] = 1;
$s = "str";
$t = $s[0];
$u = [[1]];
$v = $u[0];
[$x, $y] = $a;
`)
	main := routine(t, c, "main@test.php")
	want := map[string]string{
		"a": "int[]", "b": "int",
		"m": "(int|string)[]", "n": "int|string",
		"p": "(float|string)[]", "q": "float", "r": "float|string",
		"w": "int[]",
		"t": "string",
		"u": "array[]", "v": "array",
		"x": "int", "y": "int",
	}
	for name, typ := range want {
		if got := exitType(t, main, name); got != typ {
			t.Fatalf("$%s = %s, want %s", name, got, typ)
		}
	}
}

func TestDocArrayHintCarriesElements(t *testing.T) {
	c, _ := analyze(t, `<?php
/**
 * @param string[] $names
 */
function first($names) { return $names[0]; }
$f = first([]);
`)
	r := routine(t, c, "first")
	if got := r.TypeCtx().ToString(r.ReturnMask()); got != "string" {
		t.Fatalf("first returns %s, want string", got)
	}
}

func TestLoopWidensToFixpoint(t *testing.T) {
	c, _ := analyze(t, `<?php
$i = 1;
while ($i < 100) {
    $i = $i * 1.5;
}
`)
	if got := exitType(t, routine(t, c, "main@test.php"), "i"); got != "float|int" {
		t.Fatalf("$i = %s, want float|int", got)
	}
}

func TestCatchSeesStatesBetweenThrowPoints(t *testing.T) {
	c, _ := analyze(t, `<?php
function foo() {}
try {
    $a = 1;
    foo();
    $a = "x";
} catch (Exception $e) {
    $c = $a;
}
$r = $c;
`)
	main := routine(t, c, "main@test.php")
	for _, name := range []string{"c", "r"} {
		got := exitType(t, main, name)
		for _, part := range []string{"int", "string"} {
			if !slices.Contains(strings.Split(got, "|"), part) {
				t.Fatalf("$%s = %s, want %s in it", name, got, part)
			}
		}
	}
}

func TestReturnGrowthRequeuesCallers(t *testing.T) {
	c, bag := analyze(t, `<?php
function f() { return g(); }
function g() { return 1; }
$x = f();
`)
	if got := exitType(t, routine(t, c, "main@test.php"), "x"); got != "int" {
		t.Fatalf("$x = %s, want int", got)
	}
	f := routine(t, c, "f")
	if got := f.TypeCtx().ToString(f.ReturnMask()); got != "int" {
		t.Fatalf("f returns %s, want int", got)
	}
	if bag.Count(diag.SemaUndefinedVariable) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestDocHintsAreFlagged(t *testing.T) {
	c, _ := analyze(t, `<?php
/**
 * @param int $n
 */
function h($n) { return $n; }
`)
	h := routine(t, c, "h")
	slot, _ := h.Flow.Lookup("n")
	m := h.CFG.Start.FlowState.Get(slot)
	if !m.IsHint() {
		t.Fatalf("documented parameter should carry the hint flag")
	}
	if got := h.TypeCtx().ToString(m); got != "int" {
		t.Fatalf("$n = %s, want int", got)
	}
}

func TestInstanceOfNarrowing(t *testing.T) {
	c, _ := analyze(t, `<?php
class A {}
class B {}
function k(A|B $o) {
    if ($o instanceof A) {
        $r = $o;
    } else {
        $s = $o;
    }
    return 1;
}
`)
	k := routine(t, c, "k")
	if got := exitType(t, k, "r"); got != "A" {
		t.Fatalf("$r = %s, want A", got)
	}
	if got := exitType(t, k, "s"); got != "B" {
		t.Fatalf("$s = %s, want B", got)
	}
}

func TestPredicateAndNullNarrowing(t *testing.T) {
	c, _ := analyze(t, `<?php
class A {}
function m(int|string $v, ?A $x) {
    if (is_int($v)) {
        $a = $v;
    } else {
        $b = $v;
    }
    if ($x !== null) {
        $y = $x;
    }
    return 1;
}
`)
	m := routine(t, c, "m")
	cases := map[string]string{"a": "int", "b": "string", "y": "A"}
	for name, want := range cases {
		if got := exitType(t, m, name); got != want {
			t.Fatalf("$%s = %s, want %s", name, got, want)
		}
	}
}

func TestCallSiteBinding(t *testing.T) {
	c, bag := analyze(t, `<?php
class A {
    private function secret() { return 1; }
    public function run() {
        $f = function () { return $this->secret(); };
        return $f;
    }
}
function outside(A $a) { return $a->secret(); }
$n = strlen(42);
`)
	lambda := routine(t, c, "A::run{closure}")
	call := findCall(lambda, "secret")
	if call == nil || !call.Resolution.IsResolved() {
		t.Fatalf("closure call to a private method should bind statically, got %+v", call)
	}
	if got := bag.Count(diag.SemaInaccessibleMember); got != 1 {
		t.Fatalf("inaccessible diagnostics = %d, want 1", got)
	}
	strlen := findCall(routine(t, c, "main@test.php"), "strlen")
	if strlen == nil || !strlen.Resolution.IsResolved() {
		t.Fatalf("strlen not bound: %+v", strlen)
	}
	if len(strlen.Conversions) != 1 || !strlen.Conversions[0].IsUserDefined() {
		t.Fatalf("int argument to a string parameter should go through a conversion method, got %v", strlen.Conversions)
	}
}

func TestFinalizeDiagnostics(t *testing.T) {
	_, bag := analyze(t, `<?php
abstract class P {
    abstract function f();
}
class C extends P {
    function f() { parent::f(); }
}
function two($a, $b) { return $a; }
function early() {
    return 1;
    echo "never";
}
two(1);
nope();
echo $missing;
new P();
`)
	cases := map[diag.Code]int{
		diag.SemaAbstractCall:      2,
		diag.SemaArgumentCount:     1,
		diag.SemaUndefinedFunction: 1,
		diag.SemaUndefinedVariable: 1,
		diag.SemaUnreachableCode:   1,
	}
	for code, want := range cases {
		if got := bag.Count(code); got != want {
			t.Fatalf("%s: %d diagnostics, want %d: %+v", code.ID(), got, want, bag.Items())
		}
	}
}
