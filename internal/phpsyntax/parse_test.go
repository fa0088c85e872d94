package phpsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code string) *File {
	t.Helper()
	f, err := Parse(1, "test.php", []byte(code))
	require.NoError(t, err)
	require.NotNil(t, f)
	return f
}

func TestParseFunctionDeclaration(t *testing.T) {
	f := parse(t, `<?php
function add(int $a, ?float $b = 1.5, string ...$rest): int {
    return $a;
}
`)
	require.Len(t, f.Stmts, 1)
	fn, ok := f.Stmts[0].(*FuncDecl)
	require.True(t, ok, "got %T", f.Stmts[0])
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 3)

	assert.Equal(t, "a", fn.Params[0].Name)
	require.NotNil(t, fn.Params[0].Type)
	assert.Equal(t, []string{"int"}, fn.Params[0].Type.Names)

	assert.Equal(t, "b", fn.Params[1].Name)
	require.NotNil(t, fn.Params[1].Type)
	assert.True(t, fn.Params[1].Type.Nullable)
	assert.NotNil(t, fn.Params[1].Default)

	assert.True(t, fn.Params[2].Variadic)
	require.NotNil(t, fn.ReturnType)
	assert.Equal(t, []string{"int"}, fn.ReturnType.Names)

	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ReturnStmt)
	require.True(t, ok)
	v, ok := ret.Result.(*Variable)
	require.True(t, ok)
	assert.Equal(t, "a", v.Name)
}

func TestParseClassHierarchy(t *testing.T) {
	f := parse(t, `<?php
interface I { function foo(); }
abstract class A implements I {
    abstract function foo();
}
final class B extends A {
    private function bar() {}
    public static function make() { return new B(); }
    function foo() {}
}
`)
	require.Len(t, f.Stmts, 3)

	i := f.Stmts[0].(*ClassDecl)
	assert.Equal(t, ClassKindInterface, i.Kind)
	require.Len(t, i.Methods, 1)
	assert.True(t, i.Methods[0].Abstract)
	assert.False(t, i.Methods[0].HasBody)

	a := f.Stmts[1].(*ClassDecl)
	assert.Equal(t, "A", a.Name)
	assert.True(t, a.Abstract)
	assert.Equal(t, []string{"I"}, a.Implements)
	require.Len(t, a.Methods, 1)
	assert.True(t, a.Methods[0].Abstract)

	b := f.Stmts[2].(*ClassDecl)
	assert.True(t, b.Final)
	assert.Equal(t, []string{"A"}, b.Extends)
	require.Len(t, b.Methods, 3)
	assert.Equal(t, VisPrivate, b.Methods[0].Visibility)
	assert.True(t, b.Methods[1].Static)
	assert.True(t, b.Methods[2].HasBody)
}

func TestParseDocCommentAttachesToFunction(t *testing.T) {
	f := parse(t, `<?php
/**
 * @param int $n
 * @return string|null
 */
function f($n) { return null; }
`)
	require.Len(t, f.Stmts, 1)
	fn := f.Stmts[0].(*FuncDecl)
	require.NotNil(t, fn.Doc)
	hint := fn.Doc.ParamHint("n")
	require.NotNil(t, hint)
	assert.Equal(t, []string{"int"}, hint.Names)
	require.NotNil(t, fn.Doc.Return)
	assert.Equal(t, []string{"string"}, fn.Doc.Return.Names)
	assert.True(t, fn.Doc.Return.Nullable)
}

func TestParseControlFlow(t *testing.T) {
	f := parse(t, `<?php
$i = 0;
while ($i < 10) {
    if ($i > 5) { break; } else { $i++; }
}
foreach ($items as $k => $v) { echo $v; }
try { f(); } catch (Exception $e) { } finally { }
`)
	require.Len(t, f.Stmts, 4)

	w, ok := f.Stmts[1].(*WhileStmt)
	require.True(t, ok)
	require.Len(t, w.Body, 1)
	ifs := w.Body[0].(*IfStmt)
	assert.True(t, ifs.HasElse)
	_, isBreak := ifs.Then[0].(*BreakStmt)
	assert.True(t, isBreak)

	fe := f.Stmts[2].(*ForeachStmt)
	assert.NotNil(t, fe.Key)
	assert.Equal(t, "v", fe.Value.(*Variable).Name)

	tr := f.Stmts[3].(*TryStmt)
	require.Len(t, tr.Catches, 1)
	assert.Equal(t, []string{"Exception"}, tr.Catches[0].Types)
	assert.Equal(t, "e", tr.Catches[0].Var)
	assert.True(t, tr.HasFinally)
}

func TestParseCallsAndClosures(t *testing.T) {
	f := parse(t, `<?php
$f = function ($x) use ($y) { return $x; };
$o->run(1, ...$rest);
A::make();
isset($a, $b);
`)
	require.Len(t, f.Stmts, 4)

	as := f.Stmts[0].(*ExprStmt).X.(*Assign)
	cl, ok := as.Value.(*Closure)
	require.True(t, ok, "got %T", as.Value)
	require.Len(t, cl.Uses, 1)
	assert.Equal(t, "y", cl.Uses[0].Name)

	mc := f.Stmts[1].(*ExprStmt).X.(*MethodCall)
	assert.Equal(t, "run", mc.Name)
	require.Len(t, mc.Args, 2)
	assert.True(t, mc.Args[1].Unpack)

	sc := f.Stmts[2].(*ExprStmt).X.(*StaticCall)
	assert.Equal(t, "A", sc.Class)
	assert.Equal(t, "make", sc.Name)

	is := f.Stmts[3].(*ExprStmt).X.(*Isset)
	assert.Len(t, is.Vars, 2)
}

func TestParseYieldForms(t *testing.T) {
	f := parse(t, `<?php
function g() {
    yield;
    $v = yield 1;
    yield "k" => $v;
    yield from h();
}
`)
	fn := f.Stmts[0].(*FuncDecl)
	require.Len(t, fn.Body, 4)

	bare, ok := fn.Body[0].(*ExprStmt).X.(*Yield)
	require.True(t, ok, "got %T", fn.Body[0].(*ExprStmt).X)
	assert.Nil(t, bare.Value)

	y := fn.Body[1].(*ExprStmt).X.(*Assign).Value.(*Yield)
	assert.Nil(t, y.Key)
	assert.IsType(t, &Literal{}, y.Value)

	kv := fn.Body[2].(*ExprStmt).X.(*Yield)
	require.NotNil(t, kv.Key)
	assert.IsType(t, &Variable{}, kv.Value)

	from := fn.Body[3].(*ExprStmt).X.(*Yield)
	assert.True(t, from.From)
	assert.IsType(t, &Call{}, from.Value)
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	f := parse(t, "<?php\nfunction (\n")
	assert.NotEmpty(t, f.Errors)
}

func TestParseDocComment(t *testing.T) {
	doc := ParseDocComment("/** @param $x Foo[] \n * @return ?\\Bar */")
	require.NotNil(t, doc)
	assert.Equal(t, []string{"Foo[]"}, doc.ParamHint("x").Names)
	assert.Equal(t, []string{"Bar"}, doc.Return.Names)
	assert.True(t, doc.Return.Nullable)

	assert.Nil(t, ParseDocComment("/* @param int $x */"))
	assert.Nil(t, ParseDocComment("/** plain text */"))
}
