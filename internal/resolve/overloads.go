package resolve

import (
	"phpc/internal/symbols"
)

// Outcome is the kind of a resolution result.
type Outcome uint8

const (
	Resolved Outcome = iota
	Missing
	Ambiguous
	Inaccessible
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Missing:
		return "missing"
	case Ambiguous:
		return "ambiguous"
	case Inaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// Result is the outcome of Resolve.
type Result struct {
	Outcome Outcome
	// Symbol is set when Outcome is Resolved.
	Symbol symbols.MethodID
	// Candidates lists the symbols behind a non-resolved outcome.
	Candidates []symbols.MethodID
	// IsRuntimeDispatch marks outcomes the code generator must bind at
	// runtime among Candidates.
	IsRuntimeDispatch bool
}

// IsResolved reports a single statically bound symbol.
func (r Result) IsResolved() bool { return r.Outcome == Resolved }

// Argument describes one call-site argument.
type Argument struct {
	// Type is the host type inferred for the value. Host types carry no
	// nullability.
	Type symbols.TypeID
	// IsUnpacking marks "...$args".
	IsUnpacking bool
}

// OverloadsList is a single known symbol or a fixed set of candidates.
type OverloadsList struct {
	single     symbols.MethodID
	candidates []symbols.MethodID
}

// SingleOverload wraps one known symbol.
func SingleOverload(m symbols.MethodID) OverloadsList { return OverloadsList{single: m} }

// Overloads wraps a candidate set. A set of one behaves like SingleOverload.
func Overloads(ms ...symbols.MethodID) OverloadsList {
	if len(ms) == 1 {
		return OverloadsList{single: ms[0]}
	}
	return OverloadsList{candidates: ms}
}

// Len returns the number of symbols in the list.
func (l OverloadsList) Len() int {
	if l.single.IsValid() {
		return 1
	}
	return len(l.candidates)
}

// Symbols returns every symbol in the list.
func (l OverloadsList) Symbols() []symbols.MethodID {
	if l.single.IsValid() {
		return []symbols.MethodID{l.single}
	}
	return l.candidates
}

// Resolve picks the call target for args as seen from scope. It is a pure
// function of its inputs.
func (l OverloadsList) Resolve(table *symbols.Table, args []Argument, scope Scope) Result {
	if l.single.IsValid() {
		return resolveSingle(table, l.single, scope)
	}
	if len(l.candidates) == 0 {
		return Result{Outcome: Missing}
	}

	valid := make([]symbols.MethodID, 0, len(l.candidates))
	for _, mid := range l.candidates {
		if m := table.Method(mid); m != nil && !m.Invalid {
			valid = append(valid, mid)
		}
	}
	accessible := valid[:0:0]
	for _, mid := range valid {
		if IsAccessible(table, table.Method(mid), scope) {
			accessible = append(accessible, mid)
		}
	}
	if len(accessible) == 0 {
		return Result{Outcome: Inaccessible, Candidates: l.candidates}
	}
	if scope.IsDynamic {
		for _, mid := range accessible {
			if table.Method(mid).Access != symbols.Public {
				return runtimeDispatch(accessible)
			}
		}
	}
	if len(accessible) == 1 {
		return Result{Outcome: Resolved, Symbol: accessible[0]}
	}

	unpacking := false
	for _, a := range args {
		if a.IsUnpacking {
			unpacking = true
			break
		}
	}

	var viable []symbols.MethodID
	for _, mid := range accessible {
		m := table.Method(mid)
		if !isViable(m, len(args), unpacking) {
			continue
		}
		if !unpacking && isPerfectMatch(m, args) {
			return Result{Outcome: Resolved, Symbol: mid}
		}
		viable = append(viable, mid)
	}
	switch len(viable) {
	case 1:
		return Result{Outcome: Resolved, Symbol: viable[0]}
	case 0:
		// nothing fits the call shape; leave the choice to the runtime
		return runtimeDispatch(accessible)
	default:
		return runtimeDispatch(viable)
	}
}

func resolveSingle(table *symbols.Table, mid symbols.MethodID, scope Scope) Result {
	m := table.Method(mid)
	if !IsAccessible(table, m, scope) {
		return Result{Outcome: Inaccessible, Candidates: []symbols.MethodID{mid}}
	}
	if scope.IsDynamic && m.Access != symbols.Public {
		return runtimeDispatch([]symbols.MethodID{mid})
	}
	return Result{Outcome: Resolved, Symbol: mid}
}

func runtimeDispatch(cands []symbols.MethodID) Result {
	return Result{Outcome: Ambiguous, Candidates: cands, IsRuntimeDispatch: true}
}

// isViable checks the argument count against mandatory and total parameter
// counts. Unpacking disables the mandatory check.
func isViable(m *symbols.Method, argc int, unpacking bool) bool {
	mandatory, max := m.Arity()
	if !unpacking && argc < mandatory {
		return false
	}
	return max < 0 || argc <= max
}

// isPerfectMatch reports a variadic-free candidate whose parameters have the
// exact types of the positional arguments.
func isPerfectMatch(m *symbols.Method, args []Argument) bool {
	params := m.UserParams()
	for _, p := range params {
		if p.IsVariadic {
			return false
		}
	}
	if len(args) > len(params) {
		return false
	}
	for i, a := range args {
		if a.Type != params[i].Type {
			return false
		}
	}
	return true
}
