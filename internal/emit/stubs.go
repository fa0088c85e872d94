package emit

import (
	"slices"

	"phpc/internal/symbols"
)

// StubKind tells how a stub bridges its slot.
type StubKind uint8

const (
	// StubGhost forwards a base method slot to a same-named member whose
	// signature differs.
	StubGhost StubKind = iota
	// StubInterfaceThunk does the same for a slot introduced by an interface.
	StubInterfaceThunk
)

func (k StubKind) String() string {
	if k == StubInterfaceThunk {
		return "interface-thunk"
	}
	return "ghost"
}

// Stub is a synthesized member of Type that implements Slot by calling Target.
type Stub struct {
	Type   symbols.TypeID
	Slot   symbols.MethodID
	Target symbols.MethodID
	Kind   StubKind
}

// PlanStubs lists the stubs the given types need. A slot bridged by a base
// class is not bridged again in its descendants. Interfaces and traits get
// none. The override tables must be complete.
func PlanStubs(t *symbols.Table, ids []symbols.TypeID) []Stub {
	var out []Stub
	ids = slices.Clone(ids)
	slices.Sort(ids)
	for _, id := range ids {
		ty := t.Type(id)
		if ty == nil || ty.Kind != symbols.KindClass {
			continue
		}
		inherited := make(map[[2]symbols.MethodID]bool)
		if ty.Base.IsValid() {
			for _, info := range t.ResolveOverrides(ty.Base) {
				inherited[[2]symbols.MethodID{info.Method, info.OverrideCandidate}] = true
			}
		}
		for _, info := range t.ResolveOverrides(id) {
			if !info.OverrideCandidate.IsValid() || info.HasOverride() {
				continue
			}
			if inherited[[2]symbols.MethodID{info.Method, info.OverrideCandidate}] {
				continue
			}
			kind := StubGhost
			if info.ImplementsInterface {
				kind = StubInterfaceThunk
			}
			out = append(out, Stub{Type: id, Slot: info.Method, Target: info.OverrideCandidate, Kind: kind})
		}
	}
	return out
}
