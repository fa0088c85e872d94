package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phpc/internal/analysis"
	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/diag"
	"phpc/internal/emit"
	"phpc/internal/semantic"
	"phpc/internal/source"
)

func newSession(t *testing.T, code string, opts Options) (*Session, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.php", []byte(code))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	c, err := Compile(context.Background(), fs, []source.FileID{id}, rep, 2, nil)
	require.NoError(t, err)
	return NewSession(c, rep, opts), bag
}

func run(t *testing.T, code string) (*Session, *diag.Bag) {
	t.Helper()
	s, bag := newSession(t, code, Options{Jobs: 4})
	require.NoError(t, s.Run(context.Background()))
	return s, bag
}

func routineNamed(t *testing.T, s *Session, name string) *semantic.Routine {
	t.Helper()
	for _, r := range s.Comp.Routines() {
		if r.Name == name {
			return r
		}
	}
	require.FailNow(t, "routine not found", name)
	return nil
}

func methodCall(r *semantic.Routine, name string) *bound.InstanceMethodCall {
	var found *bound.InstanceMethodCall
	cfg.WalkGraph(r.CFG, cfg.NodeVisitor{Fn: func(n bound.Node) bool {
		if call, ok := n.(*bound.InstanceMethodCall); ok && call.Name == name && found == nil {
			found = call
		}
		return true
	}})
	return found
}

func TestInheritedInterfaceSlotIsImplemented(t *testing.T) {
	s, bag := run(t, `<?php
interface I { function foo(); }
abstract class A implements I {}
class B extends A { function foo() { return 1; } }
$b = new B();
$r = $b->foo();
`)
	assert.Zero(t, bag.Count(diag.SemaUnresolvedAbstract))

	call := methodCall(routineNamed(t, s, "main@test.php"), "foo")
	require.NotNil(t, call)
	require.True(t, call.Resolution.IsResolved())
	assert.Equal(t, "B::foo", s.Comp.Table.MethodName(call.Resolution.Symbol))

	snap := s.Snapshot()
	main, ok := snap.Routine("main@test.php")
	require.True(t, ok)
	assert.Equal(t, "int", main.Variables["r"])
}

func TestClosureBindsPrivateMethodOfItsClass(t *testing.T) {
	s, bag := run(t, `<?php
class A {
    private function secret() { return "s"; }
    public function run() {
        $f = function () { return $this->secret(); };
        return $f;
    }
}
`)
	call := methodCall(routineNamed(t, s, "A::run{closure}"), "secret")
	require.NotNil(t, call)
	assert.True(t, call.Resolution.IsResolved())
	assert.Zero(t, bag.Count(diag.SemaInaccessibleMember))
}

func TestSnapshotReflectsNarrowingAndWidening(t *testing.T) {
	s, _ := run(t, `<?php
class A {}
class B {}
/**
 * @param int $n
 */
function h($n) { return $n; }
function k(A|B $o) {
    if ($o instanceof A) {
        $r = $o;
    } else {
        $q = $o;
    }
    return 1;
}
$i = 1;
while ($i < 100) {
    $i = $i * 1.5;
}
`)
	snap := s.Snapshot()
	k, ok := snap.Routine("k")
	require.True(t, ok)
	assert.Equal(t, "A", k.Variables["r"])
	assert.Equal(t, "B", k.Variables["q"])

	main, _ := snap.Routine("main@test.php")
	assert.Equal(t, "float|int", main.Variables["i"])

	h := routineNamed(t, s, "h")
	slot, ok := h.Flow.Lookup("n")
	require.True(t, ok)
	assert.True(t, h.CFG.Start.FlowState.Get(slot).IsHint())
	hs, ok := snap.Routine("h")
	require.True(t, ok)
	assert.Equal(t, "int", hs.Return)
}

func TestReturnGrowthRequeuesCallers(t *testing.T) {
	s, _ := run(t, `<?php
function f() { return g(); }
function g() { return 1; }
$x = f();
`)
	counters := s.Counters.Snapshot()
	assert.GreaterOrEqual(t, counters.CallersRequeued, int64(2))
	assert.Equal(t, StateAnalyzed, s.State(routineNamed(t, s, "main@test.php")))

	main, _ := s.Snapshot().Routine("main@test.php")
	assert.Equal(t, "int", main.Variables["x"])
	assert.Zero(t, s.Pending())
}

func TestGeneratorCallYieldsGeneratorObject(t *testing.T) {
	s, bag := run(t, `<?php
function g() {
    $sent = yield 1;
    yield "k" => $sent;
    return 2;
}
$x = g();
$ok = $x->valid();
`)
	assert.Zero(t, bag.Count(diag.SemaNotYetImplemented))
	assert.True(t, routineNamed(t, s, "g").Generator)

	snap := s.Snapshot()
	g, ok := snap.Routine("g")
	require.True(t, ok)
	assert.Equal(t, "Generator", g.Return)
	assert.Equal(t, "mixed", g.Variables["sent"])

	main, _ := snap.Routine("main@test.php")
	assert.Equal(t, "Generator", main.Variables["x"])
	assert.Equal(t, "bool", main.Variables["ok"])

	call := methodCall(routineNamed(t, s, "main@test.php"), "valid")
	require.NotNil(t, call)
	require.True(t, call.Resolution.IsResolved())
	assert.Equal(t, "Generator::valid", s.Comp.Table.MethodName(call.Resolution.Symbol))
}

func TestReanalyzeKeepsConvergedTypes(t *testing.T) {
	s, _ := newSession(t, `<?php
function f($a) { return $a + 1; }
$x = f(2);
$y = [$x];
`, Options{Jobs: 2})
	ctx := context.Background()
	require.NoError(t, s.Bind(ctx))
	require.NoError(t, s.ResolveVariables(ctx))
	require.NoError(t, s.Analyze(ctx))
	before := s.Snapshot().Routines

	require.NoError(t, s.Reanalyze(ctx))
	assert.Equal(t, before, s.Snapshot().Routines)
	require.NoError(t, s.Emit(ctx))
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, _ := run(t, `<?php
function f() { return "x"; }
$a = f();
$b = 2;
`)
	path := filepath.Join(t.TempDir(), "out", "snap.mp")
	want := s.Snapshot()
	require.NoError(t, WriteSnapshot(path, want))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSnapshotSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.mp")
	require.NoError(t, WriteSnapshot(path, &Snapshot{Schema: snapshotSchemaVersion + 1}))

	_, err := ReadSnapshot(path)
	assert.ErrorIs(t, err, ErrSnapshotSchema)
}

func TestWorklistDeduplicates(t *testing.T) {
	w := NewWorklist[string]()
	assert.True(t, w.Enqueue("a"))
	assert.True(t, w.Enqueue("b"))
	assert.False(t, w.Enqueue("a"))
	assert.Equal(t, 2, w.Len())

	item, ok := w.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", item)
	assert.True(t, w.Enqueue("a"), "a dequeued item may be queued again")

	item, _ = w.Dequeue()
	assert.Equal(t, "b", item)
	item, _ = w.Dequeue()
	assert.Equal(t, "a", item)
	_, ok = w.Dequeue()
	assert.False(t, ok)
}

func TestSessionCountsDuplicateEnqueues(t *testing.T) {
	s, _ := newSession(t, `<?php
$a = 1;
`, Options{})
	ctx := context.Background()
	require.NoError(t, s.Bind(ctx))
	main := routineNamed(t, s, "main@test.php")
	s.enqueue(analysis.Task{Routine: main, Block: main.CFG.Start})
	assert.Equal(t, int64(1), s.Counters.Snapshot().Deduplicated)
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, StateQueued, s.State(main))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	s, _ := newSession(t, `<?php
$a = 1;
`, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestAnalyzeStepLimit(t *testing.T) {
	s, _ := newSession(t, `<?php
$i = 0;
while ($i < 10) { $i++; }
`, Options{MaxSteps: 1})
	ctx := context.Background()
	require.NoError(t, s.Bind(ctx))
	require.NoError(t, s.ResolveVariables(ctx))
	assert.Error(t, s.Analyze(ctx))
}

func TestEmitAbortsOnUnsupportedConstruct(t *testing.T) {
	s, bag := newSession(t, `<?php
$m = "run";
$o = new stdClass();
$o->$m();
`, Options{})
	s.opts.Emitter = emit.NewTextEmitter(s.Comp.Table, true)

	err := s.Run(context.Background())
	var unsupported *emit.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "dynamic method call", unsupported.Kind)
	assert.Equal(t, 1, bag.Count(diag.SemaNotYetImplemented))
}

func TestLoadFilesAndProgressEvents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.php"), []byte("<?php\nfunction twice(int $n) { return $n * 2; }\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "b.php"), []byte("<?php\n$v = twice(4);\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	fs, ids, err := LoadFiles([]string{dir}, rep)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	c, err := Compile(context.Background(), fs, ids, rep, 2, nil)
	require.NoError(t, err)

	events := make(chan Event, 256)
	s := NewSession(c, rep, Options{Jobs: 2, Sink: ChannelSink{Ch: events}})
	require.NoError(t, s.Run(context.Background()))
	close(events)

	phases := make(map[Phase]bool)
	for evt := range events {
		if evt.Routine == "" && evt.Status == StatusDone {
			phases[evt.Phase] = true
		}
	}
	for _, p := range []Phase{PhaseBind, PhaseResolveVariables, PhaseAnalyze, PhaseEmit} {
		assert.True(t, phases[p], "missing done event for %s", p)
	}

	main, ok := s.Snapshot().Routine("main@" + filepath.ToSlash(filepath.Join(dir, "lib", "b.php")))
	require.True(t, ok)
	assert.Equal(t, "int", main.Variables["v"])
	assert.False(t, bag.HasErrors(), "%v", bag.Items())
}
