package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"phpc/internal/phpsyntax"
	"phpc/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) every statement span points to the file and lies within its content
// 2) top-level statements do not overlap and appear in source order
// 3) syntax error spans lie within the content
func CheckSpanInvariants(f *phpsyntax.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil syntax tree or file")
	}
	if f.ID != sf.ID {
		return fmt.Errorf("tree belongs to file %d, not %d", f.ID, sf.ID)
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	inBounds := func(what string, sp source.Span) error {
		if sp.File != sf.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("%s span is inverted: %v", what, sp)
		}
		if sp.End > size {
			return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, size)
		}
		return nil
	}

	var failure error
	phpsyntax.WalkStmts(f.Stmts, func(s phpsyntax.Stmt) bool {
		if failure != nil {
			return false
		}
		failure = inBounds(fmt.Sprintf("%T", s), s.Span())
		return failure == nil
	})
	if failure != nil {
		return failure
	}

	var prev source.Span
	for i, s := range f.Stmts {
		sp := s.Span()
		if i > 0 && sp.Start < prev.End {
			return fmt.Errorf("statement %v overlaps its predecessor %v", sp, prev)
		}
		prev = sp
	}

	for _, e := range f.Errors {
		if err := inBounds("syntax error", e.Span); err != nil {
			return err
		}
	}
	return nil
}
