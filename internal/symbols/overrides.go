package symbols

import (
	"fmt"

	"phpc/internal/diag"
)

// OverrideInfo pairs an overridable slot with the member that fills it.
type OverrideInfo struct {
	// Method is the slot: a virtual or abstract method of a base type or an
	// interface, or a new member of the type itself.
	Method MethodID
	// Override is the member with an exact signature match.
	Override MethodID
	// OverrideCandidate matches by name only; code generation bridges it
	// with a ghost stub.
	OverrideCandidate MethodID
	// ImplementsInterface marks slots introduced by an interface of the type.
	ImplementsInterface bool

	abstractSlot     bool
	abstractOverride bool
}

// HasOverride reports whether a member with a matching signature fills the slot.
func (o OverrideInfo) HasOverride() bool { return o.Override.IsValid() }

// IsUnresolvedAbstract reports whether the slot still needs an implementation.
// An abstract override re-opens the slot for descendants.
func (o OverrideInfo) IsUnresolvedAbstract() bool {
	if o.OverrideCandidate.IsValid() {
		return false
	}
	if o.Override.IsValid() {
		return o.abstractOverride
	}
	return o.abstractSlot
}

func (o OverrideInfo) needsOverride() bool {
	return !o.Override.IsValid() || o.abstractOverride
}

// ResolveOverrides returns the override table of type id. The result is
// memoized and shared; callers must not modify it. The type graph must be
// complete before the first call.
func (t *Table) ResolveOverrides(id TypeID) []OverrideInfo {
	return t.overrides.Get(id, func() []OverrideInfo { return t.resolveOverrides(id) })
}

func (t *Table) resolveOverrides(id TypeID) []OverrideInfo {
	ty := t.Type(id)
	if ty == nil {
		return nil
	}

	var result []OverrideInfo
	if ty.Base.IsValid() && ty.Base != t.Special(SpecialObject) {
		result = append(result, t.ResolveOverrides(ty.Base)...)
	}

	// own overridable members grouped by folded name, in declaration order
	own := make(map[string][]MethodID)
	var order []MethodID
	for _, mid := range ty.Members {
		m := t.Method(mid)
		if !m.IsOverridable() {
			continue
		}
		key := FoldName(m.Name)
		own[key] = append(own[key], mid)
		order = append(order, mid)
	}
	used := make(map[MethodID]bool)

	// inherited slots
	for i := range result {
		t.fillOverride(&result[i], own, used)
	}

	// interfaces not already covered by the base or by another interface
	covered := make(map[TypeID]bool)
	if ty.Base.IsValid() {
		covered = t.AllInterfaces(ty.Base)
	}
	for _, iface := range ty.Interfaces {
		if covered[iface] || t.coveredBySibling(iface, ty.Interfaces) {
			continue
		}
		for _, entry := range t.ResolveOverrides(iface) {
			slot := t.Method(entry.Method)
			if covered[slot.Declaring] {
				continue
			}
			if t.hasEntryWithSignature(result, entry.Method) {
				continue
			}
			added := OverrideInfo{
				Method:              entry.Method,
				ImplementsInterface: true,
				abstractSlot:        slot.Abstract,
			}
			t.fillOverride(&added, own, used)
			result = append(result, added)
		}
	}

	// members new to this type
	for _, mid := range order {
		if used[mid] {
			continue
		}
		result = append(result, OverrideInfo{
			Method:       mid,
			abstractSlot: t.Method(mid).Abstract,
		})
	}
	return result
}

// fillOverride binds an open slot to one of the type's own members: a firm
// override on exact signature match of a virtual member, otherwise the first
// name match becomes a candidate. A slot that is already resolved is only
// re-bound by an exact override.
func (t *Table) fillOverride(info *OverrideInfo, own map[string][]MethodID, used map[MethodID]bool) {
	slot := t.Method(info.Method)
	open := info.needsOverride()
	if !open && t.Method(info.Override).Sealed {
		return
	}
	for _, mid := range own[FoldName(slot.Name)] {
		m := t.Method(mid)
		if t.SignatureEquals(mid, info.Method) && (m.Virtual || m.Abstract) {
			info.Override = mid
			info.abstractOverride = m.Abstract
			info.OverrideCandidate = NoMethodID
			used[mid] = true
			return
		}
		if open && !info.OverrideCandidate.IsValid() {
			info.OverrideCandidate = mid
			used[mid] = true
		}
	}
}

func (t *Table) coveredBySibling(iface TypeID, siblings []TypeID) bool {
	for _, other := range siblings {
		if other != iface && t.AllInterfaces(other)[iface] {
			return true
		}
	}
	return false
}

func (t *Table) hasEntryWithSignature(entries []OverrideInfo, mid MethodID) bool {
	name := FoldName(t.Method(mid).Name)
	for _, e := range entries {
		for _, cand := range []MethodID{e.Method, e.Override} {
			if cand.IsValid() && FoldName(t.Method(cand).Name) == name && t.SignatureEquals(cand, mid) {
				return true
			}
		}
	}
	return false
}

// UnresolvedAbstracts returns the slots a concrete class leaves open. Abstract
// classes, interfaces and traits never report.
func (t *Table) UnresolvedAbstracts(id TypeID) []OverrideInfo {
	ty := t.Type(id)
	if ty == nil || ty.Abstract || ty.Kind != KindClass {
		return nil
	}
	var out []OverrideInfo
	for _, info := range t.ResolveOverrides(id) {
		if info.IsUnresolvedAbstract() {
			out = append(out, info)
		}
	}
	return out
}

// ReportUnresolvedAbstracts reports every open slot of every concrete source
// class, once per class and slot.
func (t *Table) ReportUnresolvedAbstracts(r diag.Reporter) int {
	count := 0
	for _, id := range t.TypeIDs() {
		ty := t.Type(id)
		if ty.Library {
			continue
		}
		for _, info := range t.UnresolvedAbstracts(id) {
			slot := t.Method(info.Method)
			diag.ReportError(r, diag.SemaUnresolvedAbstract, ty.Span,
				fmt.Sprintf("class %s does not implement %s", ty.Name, t.MethodName(info.Method))).
				WithNote(slot.Span, "declared here").
				Emit()
			count++
		}
	}
	return count
}
