// Package trace is the logging layer of the analyzer.
//
// The driver opens a span per phase (bind, resolve-variables, analyze, emit),
// a span per routine at detail level and point events for worklist traffic at
// debug level. Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "analyze", 0)
//	defer span.End("")
//
// Implementations: Nop (disabled), StreamTracer (text or NDJSON to a writer),
// RingTracer (last N events, dumped on panic) and MultiTracer.
package trace
