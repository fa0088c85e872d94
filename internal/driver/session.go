package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"phpc/internal/analysis"
	"phpc/internal/diag"
	"phpc/internal/emit"
	"phpc/internal/observ"
	"phpc/internal/semantic"
	"phpc/internal/trace"
)

// RoutineState is the progress of one routine through a session.
type RoutineState uint8

const (
	StateUnbound RoutineState = iota
	StateBound
	StateQueued
	StateAnalyzed
	StateRequeued
)

func (s RoutineState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StateQueued:
		return "queued"
	case StateAnalyzed:
		return "analyzed"
	case StateRequeued:
		return "requeued"
	}
	return "unknown"
}

// Options configures a Session.
type Options struct {
	// Jobs limits the parallel phases; <= 0 means GOMAXPROCS.
	Jobs int
	// Reanalyze runs the fixpoint a second time from every start block.
	Reanalyze bool
	// MaxSteps aborts Analyze after that many blocks; 0 means no limit.
	MaxSteps int
	Emitter  emit.Emitter
	Sink     ProgressSink
}

// Session drives one compilation through bind, resolve-variables, analyze
// and emit. Phases run one after another; bind, resolve-variables and emit
// are parallel across routines, analyze drains the worklist on the calling
// goroutine.
type Session struct {
	Comp     *semantic.Compilation
	Reporter diag.Reporter
	Timer    *observ.Timer
	Counters *observ.Counters

	opts     Options
	worklist *Worklist[analysis.Task]
	analyzer *analysis.Analyzer

	mu     sync.Mutex
	states map[*semantic.Routine]RoutineState
	stats  analysis.Stats
}

// NewSession creates a session over a declared compilation.
func NewSession(c *semantic.Compilation, rep diag.Reporter, opts Options) *Session {
	if c == nil {
		panic("driver: nil compilation")
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Emitter == nil {
		opts.Emitter = emit.Discard{}
	}
	if opts.Sink == nil {
		opts.Sink = nopSink{}
	}
	return &Session{
		Comp:     c,
		Reporter: rep,
		Timer:    observ.NewTimer(),
		Counters: &observ.Counters{},
		opts:     opts,
		worklist: NewWorklist[analysis.Task](),
		analyzer: analysis.NewAnalyzer(c),
		states:   make(map[*semantic.Routine]RoutineState),
	}
}

// State returns the progress of r.
func (s *Session) State(r *semantic.Routine) RoutineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[r]
}

func (s *Session) setState(r *semantic.Routine, st RoutineState) {
	s.mu.Lock()
	s.states[r] = st
	s.mu.Unlock()
}

// Stats returns the call-site totals of the last Emit.
func (s *Session) Stats() analysis.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Pending returns the number of queued blocks.
func (s *Session) Pending() int { return s.worklist.Len() }

func (s *Session) event(r *semantic.Routine, p Phase, st Status) {
	name := ""
	if r != nil {
		name = r.Name
	}
	s.opts.Sink.OnEvent(Event{Routine: name, Phase: p, Status: st})
}

// enqueue schedules t and keeps the routine state in step.
func (s *Session) enqueue(t analysis.Task) {
	if !s.worklist.Enqueue(t) {
		s.Counters.Deduplicated.Add(1)
		return
	}
	s.Counters.Enqueued.Add(1)
	s.mu.Lock()
	switch s.states[t.Routine] {
	case StateAnalyzed:
		s.states[t.Routine] = StateRequeued
	case StateBound:
		s.states[t.Routine] = StateQueued
	}
	s.mu.Unlock()
}

// routinesWithGraph returns the routines that have been bound, in id order.
func (s *Session) routinesWithGraph() []*semantic.Routine {
	var out []*semantic.Routine
	for _, r := range s.Comp.Routines() {
		if r.CFG != nil {
			out = append(out, r)
		}
	}
	return out
}

// parallel runs fn over rs with the session's job limit.
func (s *Session) parallel(ctx context.Context, rs []*semantic.Routine, fn func(context.Context, *semantic.Routine) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Jobs)
	for _, r := range rs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, r)
		})
	}
	return g.Wait()
}

// Bind builds the graph of every routine that has a body and none yet, and
// enqueues its start block. Closures found while binding are bound in
// following rounds until none is left.
func (s *Session) Bind(ctx context.Context) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "bind", 0)
	idx := s.Timer.Begin("bind")
	s.event(nil, PhaseBind, StatusWorking)

	total := 0
	for {
		var todo []*semantic.Routine
		for _, r := range s.Comp.Routines() {
			if r.HasBody && r.CFG == nil {
				todo = append(todo, r)
			}
		}
		if len(todo) == 0 {
			break
		}
		err := s.parallel(ctx, todo, func(ctx context.Context, r *semantic.Routine) error {
			rs := span.Routine("bind", r.Name)
			s.event(r, PhaseBind, StatusWorking)
			analysis.Bind(s.Comp, r)
			s.setState(r, StateBound)
			s.Counters.RoutinesBound.Add(1)
			s.event(r, PhaseBind, StatusDone)
			rs.End(fmt.Sprintf("%d blocks", len(r.CFG.Blocks)))
			return nil
		})
		if err != nil {
			s.Timer.End(idx, "cancelled")
			span.End(err.Error())
			return err
		}
		// enqueue in id order so the fixpoint is deterministic
		for _, r := range todo {
			s.enqueue(analysis.Task{Routine: r, Block: r.CFG.Start})
		}
		total += len(todo)
	}

	note := fmt.Sprintf("%d routines", total)
	s.Timer.End(idx, note)
	s.event(nil, PhaseBind, StatusDone)
	span.End(note)
	return nil
}

// ResolveVariables maps the variable references of every bound routine to
// slots.
func (s *Session) ResolveVariables(ctx context.Context) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "resolve-variables", 0)
	idx := s.Timer.Begin("resolve-variables")
	s.event(nil, PhaseResolveVariables, StatusWorking)

	err := s.parallel(ctx, s.routinesWithGraph(), func(ctx context.Context, r *semantic.Routine) error {
		n := analysis.ResolveVariables(r)
		span.Point(trace.ScopeRoutine, "variables "+r.Name, fmt.Sprintf("%d references", n))
		return nil
	})
	s.Timer.End(idx, "")
	s.event(nil, PhaseResolveVariables, StatusDone)
	span.End("")
	return err
}

// Analyze drains the worklist. Cancellation is checked between blocks.
func (s *Session) Analyze(ctx context.Context) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "analyze", 0)
	idx := s.Timer.Begin("analyze")
	s.event(nil, PhaseAnalyze, StatusWorking)

	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			s.Timer.End(idx, "cancelled")
			span.End(err.Error())
			return err
		}
		t, ok := s.worklist.Dequeue()
		if !ok {
			break
		}
		steps++
		if s.opts.MaxSteps > 0 && steps > s.opts.MaxSteps {
			err := fmt.Errorf("analyze: no fixpoint after %d blocks", s.opts.MaxSteps)
			s.Timer.End(idx, "aborted")
			span.End(err.Error())
			return err
		}
		s.Counters.BlocksAnalyzed.Add(1)
		s.setState(t.Routine, StateAnalyzed)
		for _, next := range s.analyzer.Analyze(t) {
			if next.Routine != t.Routine {
				s.Counters.CallersRequeued.Add(1)
				span.Block(next.Routine.Name, next.Block.Ordinal, "requeued after "+t.Routine.Name)
			}
			s.enqueue(next)
		}
	}

	note := fmt.Sprintf("%d blocks", steps)
	s.Timer.End(idx, note)
	s.event(nil, PhaseAnalyze, StatusDone)
	span.End(note)
	return nil
}

// Reanalyze enqueues every start block again and drains the worklist.
// Converged states do not change, so a second run only confirms them.
func (s *Session) Reanalyze(ctx context.Context) error {
	for _, r := range s.routinesWithGraph() {
		s.enqueue(analysis.Task{Routine: r, Block: r.CFG.Start})
	}
	return s.Analyze(ctx)
}

// Emit binds the call sites of every converged routine, reports what the
// types reveal and hands the routine to the emitter. Stubs are planned for
// the declared classes afterwards.
func (s *Session) Emit(ctx context.Context) error {
	if n := s.worklist.Len(); n != 0 {
		panic(fmt.Sprintf("driver: Emit with %d queued blocks", n))
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "emit", 0)
	idx := s.Timer.Begin("emit")
	s.event(nil, PhaseEmit, StatusWorking)

	err := s.parallel(ctx, s.routinesWithGraph(), func(ctx context.Context, r *semantic.Routine) error {
		rs := span.Routine("emit", r.Name)
		st := analysis.Finalize(s.Comp, r, s.Reporter)
		s.mu.Lock()
		s.stats.CallSites += st.CallSites
		s.stats.Resolved += st.Resolved
		s.stats.Dynamic += st.Dynamic
		s.mu.Unlock()
		s.Counters.CallSitesResolve.Add(int64(st.Resolved))
		if err := s.opts.Emitter.EmitRoutine(r); err != nil {
			s.event(r, PhaseEmit, StatusError)
			rs.End(err.Error())
			return fmt.Errorf("emit %s: %w", r.Name, err)
		}
		s.event(r, PhaseEmit, StatusDone)
		if st.Dynamic > 0 {
			rs.WithExtra("dynamic", strconv.Itoa(st.Dynamic))
		}
		rs.End(fmt.Sprintf("%d/%d calls bound", st.Resolved, st.CallSites))
		return nil
	})
	if err == nil {
		err = s.opts.Emitter.EmitStubs(emit.PlanStubs(s.Comp.Table, s.Comp.UserTypes()))
	}

	s.Timer.End(idx, "")
	s.event(nil, PhaseEmit, StatusDone)
	span.End("")
	return err
}

// Run executes every phase.
func (s *Session) Run(ctx context.Context) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "session", 0)
	defer span.End("")

	phases := []func(context.Context) error{s.Bind, s.ResolveVariables, s.Analyze}
	if s.opts.Reanalyze {
		phases = append(phases, s.Reanalyze)
	}
	phases = append(phases, s.Emit)
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := phase(ctx); err != nil {
			return err
		}
	}
	return nil
}
