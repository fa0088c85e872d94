package emit

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"phpc/internal/cfg"
	"phpc/internal/semantic"
	"phpc/internal/symbols"
)

// TextEmitter renders every routine as its typed graph. Output is buffered
// and written in routine order by WriteTo, so parallel emission stays
// deterministic.
type TextEmitter struct {
	// Strict rejects routines with unsupported constructs.
	Strict bool

	table    *symbols.Table
	mu       sync.Mutex
	routines map[int]string
	stubs    string
}

// NewTextEmitter creates an emitter; table names the types of stubs.
func NewTextEmitter(table *symbols.Table, strict bool) *TextEmitter {
	return &TextEmitter{Strict: strict, table: table, routines: make(map[int]string)}
}

func (e *TextEmitter) EmitRoutine(r *semantic.Routine) error {
	if r == nil || r.CFG == nil {
		panic("emit: routine without a graph")
	}
	if e.Strict {
		if err := FirstUnsupported(r); err != nil {
			return err
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %s\n", r.Kind, r.Name, r.TypeCtx().ToString(r.ReturnMask()))
	if err := cfg.Print(&sb, r.CFG, r.Flow); err != nil {
		return err
	}
	e.mu.Lock()
	e.routines[r.ID] = sb.String()
	e.mu.Unlock()
	return nil
}

func (e *TextEmitter) EmitStubs(stubs []Stub) error {
	var sb strings.Builder
	for _, s := range stubs {
		fmt.Fprintf(&sb, "stub %s %s: %s -> %s\n", s.Kind, e.table.TypeName(s.Type),
			e.table.MethodName(s.Slot), e.table.MethodName(s.Target))
	}
	e.mu.Lock()
	e.stubs = sb.String()
	e.mu.Unlock()
	return nil
}

// WriteTo writes the buffered output.
func (e *TextEmitter) WriteTo(w io.Writer) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int, 0, len(e.routines))
	for id := range e.routines {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var total int64
	for _, id := range ids {
		n, err := io.WriteString(w, e.routines[id]+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err := io.WriteString(w, e.stubs)
	total += int64(n)
	return total, err
}

// Discard accepts everything.
type Discard struct{}

func (Discard) EmitRoutine(*semantic.Routine) error { return nil }
func (Discard) EmitStubs([]Stub) error             { return nil }
