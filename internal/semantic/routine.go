package semantic

import (
	"fmt"
	"slices"
	"sync"

	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/flow"
	"phpc/internal/phpsyntax"
	"phpc/internal/resolve"
	"phpc/internal/source"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

// RoutineKind distinguishes the bodies the analysis runs over.
type RoutineKind uint8

const (
	RoutineMain RoutineKind = iota
	RoutineFunction
	RoutineMethod
	RoutineLambda
)

func (k RoutineKind) String() string {
	switch k {
	case RoutineMain:
		return "main"
	case RoutineFunction:
		return "function"
	case RoutineMethod:
		return "method"
	case RoutineLambda:
		return "lambda"
	}
	return fmt.Sprintf("RoutineKind(%d)", k)
}

// CallSite is a block whose types depend on a routine's return mask.
type CallSite struct {
	Routine *Routine
	Block   *cfg.Block
}

// Routine is one analyzable body: a file's main code, a function, a method
// or a closure.
type Routine struct {
	ID   int
	Name string
	Kind RoutineKind
	File source.FileID
	Span source.Span

	Params     []phpsyntax.Param
	ReturnHint *phpsyntax.TypeHint
	Doc        *phpsyntax.DocComment
	Body       []phpsyntax.Stmt
	HasBody    bool
	Static     bool
	// Generator is set while binding when the body yields; calls then
	// produce a Generator object instead of the returned values.
	Generator bool

	// Symbol is the function or method symbol; NoMethodID for main code and
	// closures.
	Symbol symbols.MethodID
	// Class is the declaring class of a method or the class a closure was
	// created in.
	Class      symbols.TypeID
	ClassName  string
	ParentName string
	Scope      resolve.Scope

	// Parent and Lambda link a closure routine to its creation site.
	Parent *Routine
	Lambda *bound.Lambda

	Flow *flow.Context
	CFG  *cfg.Graph

	mu         sync.Mutex
	returnMask types.TypeRefMask
	callers    []CallSite
}

// TypeCtx returns the routine's type context.
func (r *Routine) TypeCtx() *types.TypeRefContext { return r.Flow.TypeCtx }

// HasThis reports whether "$this" is bound in the body.
func (r *Routine) HasThis() bool {
	switch r.Kind {
	case RoutineMethod:
		return !r.Static
	case RoutineLambda:
		return !r.Static && r.Parent != nil && r.Parent.HasThis()
	}
	return false
}

// ReturnMask returns the union of every returned value seen so far.
func (r *Routine) ReturnMask() types.TypeRefMask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.returnMask
}

// UnionReturn widens the return mask and reports whether it grew.
func (r *Routine) UnionReturn(m types.TypeRefMask) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.returnMask.Union(m)
	if next == r.returnMask {
		return false
	}
	r.returnMask = next
	return true
}

// AddCaller records that block of caller reads the return mask. Duplicate
// registrations are ignored.
func (r *Routine) AddCaller(caller *Routine, block *cfg.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	site := CallSite{Routine: caller, Block: block}
	if slices.Contains(r.callers, site) {
		return
	}
	r.callers = append(r.callers, site)
}

// Callers returns a copy of the registered call sites.
func (r *Routine) Callers() []CallSite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.callers)
}

// Binder returns a binder for the routine's body. Closures found while
// binding are registered with c.
func (r *Routine) Binder(c *Compilation) *bound.Binder {
	return &bound.Binder{
		Self:   r.ClassName,
		Parent: r.ParentName,
		OnLambda: func(l *bound.Lambda) int {
			return c.RegisterLambda(r, l).ID
		},
	}
}

func (r *Routine) String() string { return r.Name }
