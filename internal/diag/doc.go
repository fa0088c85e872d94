// Package diag defines the diagnostic model shared by all analysis phases.
//
// Analysis never unwinds on user-code errors: binding, flow analysis and
// call-site resolution append a Diagnostic to a Reporter and continue with a
// conservative fallback (usually the "any" type mask). Only broken internal
// contracts panic.
//
// Phases report through diag.Reporter. The driver collects into a Bag, which
// is safe for concurrent use because bind, variable resolution and emission
// run routines in parallel.
//
//	diag.ReportError(r, diag.SemaUndefinedFunction, span, "call to undefined function foo()").
//		WithNote(declSpan, "did you mean bar()?").
//		Emit()
//
// Rendering lives in cmd/phpc; this package does no IO.
package diag
