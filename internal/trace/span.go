package trace

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Spans nest driver, phase, routine; worklist traffic hangs off a phase span
// as block points.

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// nextSeq stamps events in emission order; tracers call it in Emit.
func nextSeq() uint64 { return seq.Add(1) }

// goroutineID reads N from the "goroutine N [running]:" stack header, so
// routine spans of parallel phases can be told apart.
func goroutineID() uint64 {
	var buf [64]byte
	head := string(buf[:runtime.Stack(buf[:], false)])
	rest, ok := strings.CutPrefix(head, "goroutine ")
	if !ok {
		return 0
	}
	num, _, _ := strings.Cut(rest, " ")
	id, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Span is an open begin/end pair. A span that is filtered out or belongs to
// a disabled tracer accepts every call and emits nothing.
type Span struct {
	t     Tracer
	head  Event // scope, ids and name shared by the begin and end events
	start time.Time
	extra map[string]string
}

func (s *Span) live() bool { return s != nil && s.t != nil && s.t.Enabled() }

// Begin opens a span under parent, 0 for a root.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		t:     t,
		start: time.Now(),
		head: Event{
			Scope:    scope,
			SpanID:   spanIDs.Add(1),
			ParentID: parent,
			GID:      goroutineID(),
			Name:     name,
		},
	}
	ev := s.head
	ev.Time, ev.Kind = s.start, KindSpanBegin
	t.Emit(&ev)
	return s
}

// Routine opens the span of one routine's work in the phase s, named
// "<phase> <routine>".
func (s *Span) Routine(phase, routine string) *Span {
	if !s.live() {
		return &Span{}
	}
	return Begin(s.t, ScopeRoutine, phase+" "+routine, s.ID())
}

// Point records an instant event under s.
func (s *Span) Point(scope Scope, name, detail string) {
	if !s.live() || !s.t.Level().ShouldEmit(scope) {
		return
	}
	s.t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: s.ID(),
		GID:      goroutineID(),
		Name:     name,
		Detail:   detail,
	})
}

// Block records worklist traffic on block #ordinal of routine.
func (s *Span) Block(routine string, ordinal int, detail string) {
	s.Point(ScopeBlock, routine+" #"+strconv.Itoa(ordinal), detail)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	ev := s.head
	ev.Time, ev.Kind, ev.Detail, ev.Extra = time.Now(), KindSpanEnd, detail, s.extra
	s.t.Emit(&ev)
	return ev.Time.Sub(s.start)
}

// ID returns the span ID, 0 for a span that emits nothing.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.head.SpanID
}
