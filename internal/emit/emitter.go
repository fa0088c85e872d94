// Package emit hands analyzed routines to a code generator. The only
// generator in the tree is TextEmitter, which renders the typed graphs.
package emit

import (
	"fmt"

	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/semantic"
	"phpc/internal/source"
)

// Emitter receives converged routines. EmitRoutine is called from parallel
// workers; EmitStubs once, after every routine.
type Emitter interface {
	EmitRoutine(r *semantic.Routine) error
	EmitStubs(stubs []Stub) error
}

// UnsupportedError aborts a compilation whose code reaches a construct the
// generator cannot lower.
type UnsupportedError struct {
	Kind    string
	Routine string
	Span    source.Span
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s is not supported by the code generator", e.Routine, e.Kind)
}

// FirstUnsupported finds the first construct of r the binder did not model.
// Blocks that were never reached are ignored.
func FirstUnsupported(r *semantic.Routine) *UnsupportedError {
	if r.CFG == nil {
		return nil
	}
	var found *UnsupportedError
	check := func(n bound.Node) bool {
		if found != nil {
			return false
		}
		switch n := n.(type) {
		case *bound.Unsupported:
			found = &UnsupportedError{Kind: n.Kind, Routine: r.Name, Span: n.Span()}
		case *bound.UnsupportedStatement:
			found = &UnsupportedError{Kind: n.Kind, Routine: r.Name, Span: n.Span()}
		case *bound.YieldEx:
			found = &UnsupportedError{Kind: "yield", Routine: r.Name, Span: n.Span()}
		}
		return found == nil
	}
	cfg.WalkGraph(r.CFG, reachedVisitor{fn: check})
	return found
}

type reachedVisitor struct {
	fn func(bound.Node) bool
}

func (v reachedVisitor) VisitBlock(b *cfg.Block) bool { return b.FlowState != nil }

func (v reachedVisitor) VisitStatement(s bound.Statement) { bound.Inspect(s, v.fn) }

func (v reachedVisitor) VisitExpression(e bound.Expression) { bound.Inspect(e, v.fn) }
