package flow

import (
	"strings"

	"phpc/internal/types"
)

// State is the type mask of every variable slot at a program point. A zero
// mask means the variable is not assigned on any path.
type State struct {
	vars []types.TypeRefMask
}

// NewState creates a state with room for n slots.
func NewState(n int) *State {
	return &State{vars: make([]types.TypeRefMask, n)}
}

// FromMasks creates a state owning a copy of masks.
func FromMasks(masks []types.TypeRefMask) *State {
	s := &State{vars: make([]types.TypeRefMask, len(masks))}
	copy(s.vars, masks)
	return s
}

// Len returns the number of tracked slots.
func (s *State) Len() int { return len(s.vars) }

// Get returns the mask of slot; slots never written read as void.
func (s *State) Get(slot int) types.TypeRefMask {
	if slot < 0 || slot >= len(s.vars) {
		return types.VoidType
	}
	return s.vars[slot]
}

func (s *State) grow(slot int) {
	if slot >= len(s.vars) {
		next := make([]types.TypeRefMask, slot+1)
		copy(next, s.vars)
		s.vars = next
	}
}

// Set replaces the mask of slot.
func (s *State) Set(slot int, mask types.TypeRefMask) {
	if slot < 0 {
		return
	}
	s.grow(slot)
	s.vars[slot] = mask
}

// Union widens the mask of slot.
func (s *State) Union(slot int, mask types.TypeRefMask) {
	if slot < 0 {
		return
	}
	s.grow(slot)
	s.vars[slot] = s.vars[slot].Union(mask)
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	return FromMasks(s.vars)
}

// Masks returns a copy of the slot masks.
func (s *State) Masks() []types.TypeRefMask {
	out := make([]types.TypeRefMask, len(s.vars))
	copy(out, s.vars)
	return out
}

// Merge returns the slot-wise union of a and b. Either may be nil; the
// result is always a fresh state (nil only when both are nil).
func Merge(a, b *State) *State {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b.Clone()
	case b == nil:
		return a.Clone()
	}
	out := a.Clone()
	for i, m := range b.vars {
		out.Union(i, m)
	}
	return out
}

// Includes reports whether every mask of other is contained in s.
func (s *State) Includes(other *State) bool {
	if other == nil {
		return true
	}
	if s == nil {
		return false
	}
	for i, m := range other.vars {
		if !s.Get(i).Includes(m) {
			return false
		}
	}
	return true
}

// Equal reports slot-wise equality; missing slots compare as void.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	n := max(len(s.vars), len(other.vars))
	for i := range n {
		if s.Get(i) != other.Get(i) {
			return false
		}
	}
	return true
}

// Format renders the state with variable names and type names.
func (s *State) Format(ctx *Context) string {
	if s == nil {
		return "<unreached>"
	}
	parts := make([]string, 0, len(s.vars))
	for i, m := range s.vars {
		if m.IsUninitialized() {
			continue
		}
		parts = append(parts, "$"+ctx.Name(i)+": "+ctx.TypeCtx.ToString(m))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
